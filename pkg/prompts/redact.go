package prompts

import (
	"regexp"
	"strings"
)

// 下絵段階では主人公の個人特徴を一切描かせないため、指示書から
// 顔まわりの言及を文単位で取り除き、主人公への言い回しを
// プレースホルダ呼びに置き換えます。

// facialPattern は顔・表情に触れる語彙の検出パターンです。
var facialPattern = regexp.MustCompile(`(?i)\b(?:face|facial|eyes?|eyebrows?|eyelashes?|expressions?|smiles?|smiled|smiling|smirks?|smirked|smirking|grins?|grinned|grinning|frowns?|frowned|frowning|mouth|lips|teeth|cheeks?|nose|freckles?|freckled|gazes?|gazed|gazing|stares?|stared|staring|glances?|glanced|glancing|tears?|tearful|winks?|winked|winking|blushes?|blushed|blushing|hair|hairstyle)\b`)

// sentenceSplit は終端記号の直後で文を区切るパターンなのだ。
var sentenceSplit = regexp.MustCompile(`(?s)(.*?[.!?])(?:\s+|$)`)

// nameRefPattern は主人公を指す一般名詞の言い回しです。
// 長い言い回しを先に並べ、部分一致の取り違えを防ぎます。
var nameRefPattern = regexp.MustCompile(`(?i)\b(?:the|our)\s+(?:main character|protagonist|heroine|hero|little girl|little boy|young child|child|kid|girl|boy)\b`)

// nameTokenPattern はテンプレートの名前差し込みトークンです。
var nameTokenPattern = regexp.MustCompile(`\{\{name\}\}`)

// StripFacialSentences は顔や表情に触れる文を丸ごと取り除きます。
// 文の区切りが見つからない入力はひとつの文として扱うのだ。
func StripFacialSentences(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	matches := sentenceSplit.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		// 終端記号なし。全体を1文と見なす
		if facialPattern.MatchString(text) {
			return ""
		}
		return text
	}

	var kept []string
	consumed := 0
	for _, m := range matches {
		sentence := strings.TrimSpace(m[1])
		consumed += len(m[0])
		if sentence == "" || facialPattern.MatchString(sentence) {
			continue
		}
		kept = append(kept, sentence)
	}
	// 終端記号で終わらない残りも1文として判定する
	if rest := strings.TrimSpace(text[consumed:]); rest != "" && !facialPattern.MatchString(rest) {
		kept = append(kept, rest)
	}
	return strings.Join(kept, " ")
}

// SanitizeNameReferences は主人公を指す言い回しを replacement に統一します。
func SanitizeNameReferences(text, replacement string) string {
	if text == "" {
		return ""
	}
	text = nameTokenPattern.ReplaceAllString(text, replacement)
	return nameRefPattern.ReplaceAllString(text, replacement)
}
