package pipeline

import (
	"regexp"
	"strings"
)

// jsonBlockRegex はAIが付けがちなMarkdownコードブロックを検出します。
var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*\\S)\\s*```")

// ExtractJSON はモデル応答からJSON本体を切り出します。コードフェンスと
// 前後の散文は許容しますが、スキーマの修復は行いません。
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if matches := jsonBlockRegex.FindStringSubmatch(raw); len(matches) > 1 {
		return matches[1]
	}

	// Fallback 1: 最外の波括弧の範囲を取り出す
	firstBracket := strings.Index(raw, "{")
	lastBracket := strings.LastIndex(raw, "}")
	if firstBracket != -1 && lastBracket > firstBracket {
		return raw[firstBracket : lastBracket+1]
	}

	// Fallback 2: 全体をJSONと見なす
	return raw
}

// truncateString はエラーメッセージ用の応答抜粋を作る内部ヘルパーなのだ。
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
