package template

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/shouni/go-ehon-kit/pkg/domain"
)

//go:embed legacy_story.json
var legacyStoryJSON []byte

// legacyStory は埋め込みJSONの構造です。月明かりの扉の12ページと
// 専用の設定資料集を持ち、プロンプト表は持ちません（読み出し時に
// 合成されます）。
type legacyStory struct {
	Title string            `json:"title"`
	Pages domain.Pages      `json:"pages"`
	Bible *domain.PropBible `json:"bible"`
}

// loadLegacyResolved は組み込みストーリーを展開して返します。呼び出しの
// たびに新しいコピーを返し、呼び出し元の差し込みが埋め込み内容へ
// 波及しないようにするのだ。
func loadLegacyResolved() (*resolved, error) {
	var ls legacyStory
	if err := json.Unmarshal(legacyStoryJSON, &ls); err != nil {
		return nil, fmt.Errorf("組み込みストーリーの展開に失敗したのだ: %w", err)
	}
	ls.Bible.Normalize()
	return &resolved{
		StoryID: domain.LegacyStoryID,
		Title:   ls.Title,
		Pages:   ls.Pages,
		Bible:   ls.Bible,
	}, nil
}
