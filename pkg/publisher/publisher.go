// Package publisher は完成したブックの永続化と、人が確認するための
// 索引 Markdown の生成を担います。書き込み先はローカル/GCS を問いません。
package publisher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/shouni/go-ehon-kit/pkg/asset"
	"github.com/shouni/go-ehon-kit/pkg/domain"
)

// OutputWriter はデータを外部ストレージに保存するためのインターフェースです。
type OutputWriter interface {
	Write(ctx context.Context, path string, data io.Reader, contentType string) error
}

// InputReader は保存済みブックの読み出し元を抽象化します。
type InputReader interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// Options はパブリッシュ動作を制御する設定項目です。
type Options struct {
	OutputDir string
}

// PublishResult はパブリッシュ処理の結果として生成されたファイルの情報を保持します。
type PublishResult struct {
	BookPath   string   // 書き出した book.json のパス
	IndexPath  string   // 書き出した index.md のパス
	ImagePaths []string // ブックに添付済みの全画像パス
}

// BookPublisher は成果物の永続化と索引の生成を担います。
type BookPublisher struct {
	writer OutputWriter
}

// NewBookPublisher は依存を検証して BookPublisher を生成します。
func NewBookPublisher(writer OutputWriter) (*BookPublisher, error) {
	if writer == nil {
		return nil, fmt.Errorf("writer は必須です")
	}
	return &BookPublisher{writer: writer}, nil
}

// Publish はブックの保存と索引 Markdown の構築・書き出しを一括して
// 実行し、生成されたファイル情報を返却するのだ！
func (p *BookPublisher) Publish(ctx context.Context, book *domain.Book, opts Options) (PublishResult, error) {
	result := PublishResult{}
	if book == nil {
		return result, fmt.Errorf("ブックが空なのだ")
	}

	// 1. book.json の書き出し
	bookPath, err := SaveBook(ctx, p.writer, opts.OutputDir, book)
	if err != nil {
		return result, err
	}
	result.BookPath = bookPath

	// 2. 索引 Markdown の構築と書き出し
	indexPath, err := asset.ResolveOutputPath(opts.OutputDir, asset.DefaultIndexFileName)
	if err != nil {
		return result, fmt.Errorf("索引の出力パス解決に失敗したのだ: %w", err)
	}
	content := buildIndexMarkdown(book)
	if err := p.writer.Write(ctx, indexPath, strings.NewReader(content), "text/markdown; charset=utf-8"); err != nil {
		return result, fmt.Errorf("索引の書き込みに失敗したのだ (%s): %w", indexPath, err)
	}
	result.IndexPath = indexPath

	// 3. 添付済み画像の一覧
	result.ImagePaths = collectImagePaths(book)

	slog.Info("ブックを公開しました",
		"book", result.BookPath, "index", result.IndexPath, "images", len(result.ImagePaths))
	return result, nil
}

// collectImagePaths はブックに添付済みの画像パスをページ順に集めます。
func collectImagePaths(book *domain.Book) []string {
	var paths []string
	if book.CharacterRefURL != "" {
		paths = append(paths, book.CharacterRefURL)
	}
	for _, page := range book.Pages {
		if page.SketchURL != "" {
			paths = append(paths, page.SketchURL)
		}
		if page.ImageURL != "" {
			paths = append(paths, page.ImageURL)
		}
	}
	return paths
}
