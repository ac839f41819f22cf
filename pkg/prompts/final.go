package prompts

import (
	"github.com/shouni/go-ehon-kit/pkg/domain"
)

// BuildFinalPrompt は本絵（完成イラスト）用のプロンプトを組み立てます。
// characterSummary にはプロフィール要約を渡し、アイデンティティの
// アンカーをページ単位のプロンプトへ届けます。
func (c *Composer) BuildFinalPrompt(page domain.Page, characterSummary string, bible *domain.PropBible) string {
	parts := make([]string, 0, 8)

	// 1. キャラクター同一性ブロック
	if characterSummary != "" {
		parts = append(parts, "The main character: "+characterSummary)
	}

	// 2. シーン・動作・感情・舞台
	if page.Scene != "" {
		parts = append(parts, page.Scene)
	}
	if page.Action != "" {
		parts = append(parts, page.Action)
	}
	if page.Emotion != "" {
		parts = append(parts, "The character's expression and body language show "+page.Emotion)
	}
	if page.Setting != "" {
		parts = append(parts, "Setting: "+page.Setting)
	}

	// 3. スタイル、構図、レイアウト
	parts = append(parts, c.finalStyle(bible))
	composition, layout := resolveComposition(page, bible)
	if composition != "" {
		parts = append(parts, composition)
	}
	if layout != "" {
		parts = append(parts, layout)
	}

	return joinParts(parts)
}

// AppendStyleSuffix は事前作成済みプロンプトへスタイル句だけを足します。
// パイプライン経路のフェーズ5 imagePrompt 用なのだ。
func (c *Composer) AppendStyleSuffix(prompt string, bible *domain.PropBible) string {
	if prompt == "" {
		return ""
	}
	return joinParts([]string{prompt, c.finalStyle(bible)})
}
