package pipeline

import (
	"regexp"
	"strings"
)

// 挿絵メモは自由文で届くため、ここでの抽出はすべてベストエフォートです。
// どのフィールドも解析に失敗したら既定値へ落ち、変換全体を失敗させる
// ことはありません。欠損をエラーにしないのは仕様なのだ。

var (
	// wideHintRegex は引きの構図を示す語彙に一致します。
	wideHintRegex = regexp.MustCompile(`(?i)\b(?:wide(?:[ -]angle)?(?: shot)?|establishing shot|panorama|panoramic|bird'?s[- ]eye)\b`)

	// closeHintRegex は寄りの構図を示す語彙に一致します。
	closeHintRegex = regexp.MustCompile(`(?i)\b(?:close[- ]?up|extreme close|macro|zoomed in)\b`)

	// fullBleedRegex は裁ち落とし（全面絵）指定に一致します。
	fullBleedRegex = regexp.MustCompile(`(?i)\bfull[- ]?bleed\b`)

	// leftTextRegex / rightTextRegex は本文の置き場所の指定に一致します。
	leftTextRegex  = regexp.MustCompile(`(?i)\btext (?:on|at|to) the left\b|\bleft[- ]text\b|\btext left\b`)
	rightTextRegex = regexp.MustCompile(`(?i)\btext (?:on|at|to) the right\b|\bright[- ]text\b|\btext right\b`)

	// actionRegex は「reaching toward the door」のような -ing 動詞句を拾います。
	actionRegex = regexp.MustCompile(`(?i)\b(\p{L}+ing\b[^.!?;,]*)`)

	// settingRegex は「in/at/inside 〜」の場所句を節の終わりまで拾います。
	settingRegex = regexp.MustCompile(`(?i)\b((?:in|at|inside)\s+(?:the|a|an)\s+[^.!?;,]+)`)
)

// emotionLexicon は挿絵メモに現れやすい感情語の固定リストです。
// 先に並んだ語が優先され、どれも現れなければ "curious" に落ちます。
var emotionLexicon = []string{
	"curious",
	"excited",
	"joyful",
	"happy",
	"delighted",
	"amazed",
	"surprised",
	"wonder",
	"brave",
	"determined",
	"proud",
	"scared",
	"worried",
	"nervous",
	"shy",
	"sad",
	"lonely",
	"calm",
	"peaceful",
	"sleepy",
	"cozy",
}

// extractCompositionHint は構図ヒントを抽出します。既定値は "medium" です。
func extractCompositionHint(notes string) string {
	switch {
	case wideHintRegex.MatchString(notes):
		return "wide"
	case closeHintRegex.MatchString(notes):
		return "close"
	default:
		return "medium"
	}
}

// extractLayout は本文配置を抽出します。既定値は "bottom_text" です。
func extractLayout(notes string) string {
	switch {
	case fullBleedRegex.MatchString(notes):
		return "full_bleed"
	case leftTextRegex.MatchString(notes):
		return "left_text"
	case rightTextRegex.MatchString(notes):
		return "right_text"
	default:
		return "bottom_text"
	}
}

// extractEmotion は感情語のリスト照合で感情を決めます。既定値は "curious" です。
func extractEmotion(notes string) string {
	lower := strings.ToLower(notes)
	for _, emotion := range emotionLexicon {
		if strings.Contains(lower, emotion) {
			return emotion
		}
	}
	return "curious"
}

// extractAction は最初の -ing 動詞句を動作として抽出します。
// 見つからなければ空文字のままにするのだ。
func extractAction(notes string) string {
	m := actionRegex.FindStringSubmatch(notes)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// extractSetting は「in/at/inside 〜」の場所句を舞台として抽出します。
// 見つからなければ空文字のままにするのだ。
func extractSetting(notes string) string {
	m := settingRegex.FindStringSubmatch(notes)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// extractScene はシーン記述を決めます。メモ全体を整えたものを使い、
// メモが空なら本文へ落ちます。
func extractScene(notes, text string) string {
	scene := strings.TrimSpace(notes)
	if scene == "" {
		return strings.TrimSpace(text)
	}
	return scene
}
