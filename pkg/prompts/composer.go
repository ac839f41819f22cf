// Package prompts は絵本の下絵・本絵・パネル指示書の各プロンプトを
// 決定論的に組み立てる純粋なコンポーザです。欠けた任意データは
// 文ごと省略し、エラーにはしません。
package prompts

import (
	"strings"

	"github.com/shouni/go-ehon-kit/pkg/domain"
)

// Composer は設定資料集を参照しながらプロンプトを構築します。
// 状態を持たず、同じ入力からは常に同じ文字列を返すのだ。
type Composer struct {
	styleSuffix string // 本絵の既定スタイル。空なら DefaultFinalStyle を使う
}

// NewComposer は新しい Composer を生成します。
func NewComposer(styleSuffix string) *Composer {
	return &Composer{styleSuffix: styleSuffix}
}

// finalStyle は本絵用のスタイル句を優先順位に従って解決します。
// propBible の globalStyle、設定のサフィックス、固定既定値の順なのだ。
func (c *Composer) finalStyle(bible *domain.PropBible) string {
	if bible != nil && bible.GlobalStyle != "" {
		return bible.GlobalStyle
	}
	if c.styleSuffix != "" {
		return c.styleSuffix
	}
	return DefaultFinalStyle
}

// sketchStyle は下絵用のスタイル句を解決します。
func (c *Composer) sketchStyle(bible *domain.PropBible) string {
	if bible != nil && bible.GlobalStyle != "" {
		return bible.GlobalStyle
	}
	return DefaultSketchStyle
}

// resolveComposition は構図スロットとレイアウトスロットを解決します。
// 上書き指示がある場合は構図の全権を持ち、レイアウト句は出しません。
// 構図ヒントがない場合はレイアウト句が構図スロットへ繰り上がります。
func resolveComposition(page domain.Page, bible *domain.PropBible) (composition, layout string) {
	if override := bible.CompositionFor(page.Page); override != "" {
		return override, ""
	}
	composition = compositionPhrases[page.CompositionHint]
	layout = layoutPhrases[page.Layout]
	if composition == "" {
		composition = layout
		layout = ""
	}
	return composition, layout
}

// joinParts は空要素を除き、各句の末尾ピリオドを整えてから
// 「. 」で連結して終端ピリオドを1つだけ付けます。
func joinParts(parts []string) string {
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.TrimRight(p, ".")
		p = strings.TrimSpace(p)
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		return ""
	}
	return strings.Join(cleaned, ". ") + "."
}
