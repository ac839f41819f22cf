package template

import (
	"strings"

	"github.com/shouni/go-ehon-kit/pkg/domain"
)

// NameToken は子どもの名前を差し込むリテラルトークンなのだ。
const NameToken = "{{name}}"

// ReplacePlaceholders は文字列中の名前トークンを置換します。
// トークンを含まない文字列はそのまま返り、置換は冪等です。
func ReplacePlaceholders(s, name string) string {
	if name == "" || !strings.Contains(s, NameToken) {
		return s
	}
	return strings.ReplaceAll(s, NameToken, name)
}

// substitutePages は利用者向けテキストフィールドへ名前を差し込みます。
func substitutePages(pages domain.Pages, name string) {
	for i := range pages {
		pages[i].Scene = ReplacePlaceholders(pages[i].Scene, name)
		pages[i].Action = ReplacePlaceholders(pages[i].Action, name)
		pages[i].Setting = ReplacePlaceholders(pages[i].Setting, name)
		pages[i].Text = ReplacePlaceholders(pages[i].Text, name)
	}
}

// substitutePrompts は事前作成済みプロンプトへ名前を差し込むのだ。
func substitutePrompts(table domain.PromptTable, name string) {
	for i := range table {
		table[i].Prompt = ReplacePlaceholders(table[i].Prompt, name)
	}
}
