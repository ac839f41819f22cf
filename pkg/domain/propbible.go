package domain

import (
	"sort"
	"strings"
	"unicode"
)

// Prop は物語に繰り返し登場する小道具や脇役の外見定義です。
type Prop struct {
	Description string `json:"description"`
	Appearances []int  `json:"appearances"`
}

// Environment は舞台となる場所の外見定義です。
type Environment struct {
	Description string `json:"description"`
	Appearances []int  `json:"appearances"`
}

// PropBible は物語全体の視覚的な連続性を支える設定資料集なのだ。
// Compositions はページ番号ごとの構図上書き指示を保持します。
type PropBible struct {
	StoryID            string                 `json:"storyId"`
	Props              map[string]Prop        `json:"props"`
	Environments       map[string]Environment `json:"environments"`
	GlobalStyle        string                 `json:"globalStyle,omitempty"`
	GlobalInstructions string                 `json:"globalInstructions,omitempty"`
	Compositions       map[int]string         `json:"compositions,omitempty"`
}

// DescriptionsFor はページが参照する小道具キーを外見記述に解決します。
// 未登録のキーは黙って読み飛ばすのだ。
func (b *PropBible) DescriptionsFor(keys []string) []string {
	if b == nil || len(b.Props) == 0 {
		return nil
	}
	var descs []string
	for _, key := range keys {
		if prop, ok := b.Props[key]; ok && prop.Description != "" {
			descs = append(descs, prop.Description)
		}
	}
	return descs
}

// PropKeysForPage は登場ページから逆引きした小道具キーの一覧を返します。
// 常に同じ結果を得るため、キーをソートした順に走査します。
func (b *PropBible) PropKeysForPage(page int) []string {
	if b == nil || len(b.Props) == 0 {
		return nil
	}
	keys := make([]string, 0, len(b.Props))
	for k := range b.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var hit []string
	for _, k := range keys {
		if containsPage(b.Props[k].Appearances, page) {
			hit = append(hit, k)
		}
	}
	return hit
}

// EnvironmentForPage はページが属する環境を返します。複数が該当する場合は
// キーのソート順で最初の1件を採用するのだ。
func (b *PropBible) EnvironmentForPage(page int) (string, *Environment) {
	if b == nil || len(b.Environments) == 0 {
		return "", nil
	}
	keys := make([]string, 0, len(b.Environments))
	for k := range b.Environments {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		env := b.Environments[k]
		if containsPage(env.Appearances, page) {
			res := env
			return k, &res
		}
	}
	return "", nil
}

// EnvironmentDescription はキー指定で環境の外見記述を引くのだ。
func (b *PropBible) EnvironmentDescription(key string) string {
	if b == nil || key == "" {
		return ""
	}
	if env, ok := b.Environments[key]; ok {
		return env.Description
	}
	return ""
}

// CompositionFor はページの構図上書き指示を返します。未設定なら空文字です。
func (b *PropBible) CompositionFor(page int) string {
	if b == nil || len(b.Compositions) == 0 {
		return ""
	}
	return b.Compositions[page]
}

// Normalize は登場ページ一覧をソートと重複排除で整えます。
// 範囲外のページ番号は除去せずデータとして保持するのだ。
func (b *PropBible) Normalize() {
	if b == nil {
		return
	}
	for k, p := range b.Props {
		p.Appearances = normalizePages(p.Appearances)
		b.Props[k] = p
	}
	for k, e := range b.Environments {
		e.Appearances = normalizePages(e.Appearances)
		b.Environments[k] = e
	}
}

// SlugKey は表示名を保存用のキーに変換します。
// 例: "Magical Door" -> "magical_door"
func SlugKey(name string) string {
	var sb strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				sb.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(sb.String(), "_")
}

func containsPage(pages []int, page int) bool {
	for _, p := range pages {
		if p == page {
			return true
		}
	}
	return false
}

func normalizePages(pages []int) []int {
	if len(pages) == 0 {
		return pages
	}
	seen := make(map[int]struct{}, len(pages))
	out := make([]int, 0, len(pages))
	for _, p := range pages {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}
