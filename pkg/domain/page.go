package domain

// 構図ヒントとレイアウトの既知値。テンプレート変換時の既定値は
// それぞれ HintMedium と LayoutBottomText です。
const (
	HintWide   = "wide"
	HintMedium = "medium"
	HintClose  = "close"

	LayoutBottomText = "bottom_text"
	LayoutLeftText   = "left_text"
	LayoutRightText  = "right_text"
	LayoutFullBleed  = "full_bleed"
)

// Page は絵本の見開き1ページ分のランタイム表現です。
// 生成結果のURL以外は読み取り専用として扱います。
type Page struct {
	Page            int      `json:"page"`
	Scene           string   `json:"scene"`
	Emotion         string   `json:"emotion"`
	Action          string   `json:"action"`
	Setting         string   `json:"setting"`
	CompositionHint string   `json:"composition_hint"`
	Text            string   `json:"text"`
	Layout          string   `json:"layout"`
	Props           []string `json:"props,omitempty"`
	Environment     string   `json:"environment,omitempty"`
	SketchURL       string   `json:"sketch_url,omitempty"`
	ImageURL        string   `json:"image_url,omitempty"`
}

// Pages はページ番号順を前提としたページ列なのだ。
type Pages []Page

// Find はページ番号で1ページを特定します。見つからなければ nil です。
func (ps Pages) Find(number int) *Page {
	for i := range ps {
		if ps[i].Page == number {
			return &ps[i]
		}
	}
	return nil
}

// PromptEntry は1ページ分の事前作成済みプロンプトです。
type PromptEntry struct {
	Page   int    `json:"page"`
	Prompt string `json:"prompt"`
}

// PromptTable はページ番号からプロンプトを引く平坦な一覧なのだ。
type PromptTable []PromptEntry

// For はページ番号に対応するプロンプトを返します。
func (pt PromptTable) For(page int) (string, bool) {
	for _, e := range pt {
		if e.Page == page {
			return e.Prompt, true
		}
	}
	return "", false
}

// Book はある物語とある子どもを結合したランタイムの作業単位です。
// テンプレート読み出しの時点で名前差し込みは完了しています。
type Book struct {
	StoryID         string            `json:"story_id"`
	Title           string            `json:"title"`
	ChildName       string            `json:"child_name"`
	Profile         *CharacterProfile `json:"profile,omitempty"`
	Pages           Pages             `json:"pages"`
	Bible           *PropBible        `json:"bible,omitempty"`
	Prompts         PromptTable       `json:"prompts,omitempty"`
	CharacterRefURL string            `json:"character_ref_url,omitempty"`
}

// PageCount は総ページ数を返すのだ。
func (b *Book) PageCount() int {
	return len(b.Pages)
}

// SketchedCount は下絵URLが付与済みのページ数を返します。
func (b *Book) SketchedCount() int {
	n := 0
	for i := range b.Pages {
		if b.Pages[i].SketchURL != "" {
			n++
		}
	}
	return n
}

// IllustratedCount は本絵URLが付与済みのページ数を返します。
func (b *Book) IllustratedCount() int {
	n := 0
	for i := range b.Pages {
		if b.Pages[i].ImageURL != "" {
			n++
		}
	}
	return n
}
