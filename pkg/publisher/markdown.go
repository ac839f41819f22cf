package publisher

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/shouni/go-ehon-kit/pkg/asset"
	"github.com/shouni/go-ehon-kit/pkg/domain"
)

// relativeImagePath は索引からの画像リンクを相対化します。このキットの
// 命名規則に一致するファイルは images/ 配下への相対リンクとし、
// それ以外のURL（外部ホスティング等）はそのまま使います。
func relativeImagePath(rawURL string) string {
	base := filepath.Base(rawURL)
	if asset.IsBundleImage(base) {
		return path.Join(asset.DefaultImageDir, base)
	}
	return rawURL
}

// buildIndexMarkdown はブック全体を一覧できる索引 Markdown を構築します。
// 本絵があるページは本絵を、まだ下絵しかないページは下絵を載せます。
func buildIndexMarkdown(book *domain.Book) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", book.Title))
	sb.WriteString(fmt.Sprintf("- Child: %s\n", book.ChildName))
	sb.WriteString(fmt.Sprintf("- Story: %s\n", book.StoryID))
	sb.WriteString(fmt.Sprintf("- Pages: %d (sketched %d, illustrated %d)\n",
		book.PageCount(), book.SketchedCount(), book.IllustratedCount()))
	if book.CharacterRefURL != "" {
		sb.WriteString(fmt.Sprintf("- Character reference: ![character reference](%s)\n",
			relativeImagePath(book.CharacterRefURL)))
	}
	sb.WriteString("\n")

	for _, page := range book.Pages {
		sb.WriteString(fmt.Sprintf("## Page %d\n\n", page.Page))

		switch {
		case page.ImageURL != "":
			sb.WriteString(fmt.Sprintf("![page %d](%s)\n\n", page.Page, relativeImagePath(page.ImageURL)))
		case page.SketchURL != "":
			sb.WriteString(fmt.Sprintf("![page %d sketch](%s)\n\n", page.Page, relativeImagePath(page.SketchURL)))
		}

		if page.Text != "" {
			sb.WriteString(fmt.Sprintf("> %s\n\n", page.Text))
		}
	}

	return sb.String()
}
