package domain

import (
	"fmt"
	"strings"
)

// FullDescription はリファレンスシート生成向けの詳細な外見記述を組み立てます。
// 空のフィールドは文ごと省略し、決定論的に同じ文字列を返します。
func (p CharacterProfile) FullDescription() string {
	var parts []string

	subject := describeSubject(p)
	parts = append(parts, subject)

	if hair := describeHair(p.Hair); hair != "" {
		parts = append(parts, hair)
	}
	if p.Eyes.Color != "" {
		eye := fmt.Sprintf("%s eyes", p.Eyes.Color)
		if p.Eyes.Shape != "" {
			eye = fmt.Sprintf("%s %s eyes", p.Eyes.Shape, p.Eyes.Color)
		}
		parts = append(parts, capitalize(eye))
	}
	if p.FaceShape != "" {
		parts = append(parts, fmt.Sprintf("%s face", capitalize(p.FaceShape)))
	}
	if p.SkinTone != "" {
		parts = append(parts, fmt.Sprintf("%s skin tone", capitalize(p.SkinTone)))
	}
	if p.DefaultExpression != "" {
		parts = append(parts, fmt.Sprintf("Usually wears a %s expression", p.DefaultExpression))
	}
	if len(p.DistinctiveFeatures) > 0 {
		parts = append(parts, "Distinctive features: "+strings.Join(p.DistinctiveFeatures, ", "))
	}
	if p.Clothing != "" {
		parts = append(parts, "Wearing "+p.Clothing)
	}
	if len(p.ColorPalette) > 0 {
		parts = append(parts, "Signature colors: "+strings.Join(p.ColorPalette, ", "))
	}

	return joinSentences(parts)
}

// PromptSummary はページ単位のプロンプトに埋め込む一行要約を返します。
// DoNotChange の各アンカーは要約に必ず含めます。本文に現れない
// アンカーは末尾の Never change 節として補われます。
func (p CharacterProfile) PromptSummary() string {
	var parts []string
	parts = append(parts, describeSubject(p))
	if hair := describeHair(p.Hair); hair != "" {
		parts = append(parts, hair)
	}
	if p.Eyes.Color != "" {
		parts = append(parts, p.Eyes.Color+" eyes")
	}
	if p.Clothing != "" {
		parts = append(parts, "wearing "+p.Clothing)
	}

	summary := strings.Join(parts, ", ")

	// アンカーの取りこぼし確認。要約に居ないものだけを末尾節へ集めるのだ。
	var missing []string
	for _, anchor := range p.IdentityAnchors() {
		if !containsFold(summary, anchor) {
			missing = append(missing, anchor)
		}
	}
	if len(missing) > 0 {
		summary += ". Never change: " + strings.Join(missing, "; ")
	}
	return summary
}

// IdentityAnchors は正規化済みのアイデンティティ・アンカー一覧を返すのだ。
func (p CharacterProfile) IdentityAnchors() []string {
	anchors := make([]string, 0, len(p.DoNotChange))
	for _, a := range p.DoNotChange {
		a = strings.TrimSpace(a)
		if a != "" {
			anchors = append(anchors, a)
		}
	}
	return anchors
}

// describeSubject は「A young child named Mira」のような主語句を作ります。
func describeSubject(p CharacterProfile) string {
	age := "child"
	switch p.AgeBracket {
	case AgeToddler:
		age = "toddler"
	case AgeYoungChild:
		age = "young child"
	case AgeOlderChild:
		age = "school-age child"
	}
	subject := fmt.Sprintf("A %s named %s", age, p.Name)
	if p.Gender != "" {
		subject = fmt.Sprintf("A %s %s named %s", p.Gender, age, p.Name)
	}
	return subject
}

// describeHair は髪の特徴を一句にまとめる内部ヘルパーなのだ。
func describeHair(h HairAttributes) string {
	var attrs []string
	for _, v := range []string{h.Length, h.Texture, h.Color} {
		if v != "" {
			attrs = append(attrs, v)
		}
	}
	if len(attrs) == 0 {
		return ""
	}
	phrase := strings.Join(attrs, " ") + " hair"
	if h.Style != "" {
		phrase += " in " + h.Style
	}
	return phrase
}

// joinSentences は各句の末尾ピリオドを整えてから「. 」で連結します。
func joinSentences(parts []string) string {
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(p), "."))
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		return ""
	}
	return strings.Join(cleaned, ". ") + "."
}

// containsFold は大文字小文字を無視した部分一致判定なのだ。
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// capitalize は先頭一文字だけを大文字化します。ASCII想定で十分です。
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
