package prompts

import (
	"strings"

	"github.com/shouni/go-ehon-kit/pkg/domain"
)

// BuildSketchPrompt は下絵（ストーリーボード）用のプロンプトを組み立てます。
// 主人公は白抜きシルエットとして配置し、顔や髪などの個人特徴は
// 一切記述しないのだ。
func (c *Composer) BuildSketchPrompt(page domain.Page, bible *domain.PropBible) string {
	parts := make([]string, 0, 7)

	// 1. プレースホルダ配置とシーン
	if page.Scene != "" {
		parts = append(parts, placeholderInstruction+": "+page.Scene)
	} else {
		parts = append(parts, placeholderInstruction)
	}

	// 2. 小道具。ページの明示キーを優先し、なければ登場ページから逆引き
	propKeys := page.Props
	if len(propKeys) == 0 {
		propKeys = bible.PropKeysForPage(page.Page)
	}
	if descs := bible.DescriptionsFor(propKeys); len(descs) > 0 {
		parts = append(parts, "Key objects: "+strings.Join(descs, "; "))
	}

	// 3. 環境。ページのキー指定を優先し、なければ登場ページから逆引き
	if env := c.environmentFor(page, bible); env != "" {
		parts = append(parts, "Environment: "+env)
	}

	// 4. 構図スロットとレイアウトスロット
	composition, layout := resolveComposition(page, bible)
	if composition != "" {
		parts = append(parts, composition)
	}
	if layout != "" {
		parts = append(parts, layout)
	}

	// 5. 全体指示とスタイル
	if bible != nil && bible.GlobalInstructions != "" {
		parts = append(parts, bible.GlobalInstructions)
	}
	parts = append(parts, c.sketchStyle(bible))

	return joinParts(parts)
}

// environmentFor はページの環境記述を解決する内部ヘルパーなのだ。
func (c *Composer) environmentFor(page domain.Page, bible *domain.PropBible) string {
	if page.Environment != "" {
		if desc := bible.EnvironmentDescription(page.Environment); desc != "" {
			return desc
		}
		return ""
	}
	if _, env := bible.EnvironmentForPage(page.Page); env != nil {
		return env.Description
	}
	return ""
}
