package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/shouni/go-ehon-kit/pkg/asset"
	"github.com/shouni/go-ehon-kit/pkg/domain"
)

// SaveBook はブックを出力先の book.json へ書き出し、パスを返します。
// 下絵と本絵の工程をまたいでブックを持ち回るための中間保存にも使います。
func SaveBook(ctx context.Context, writer OutputWriter, outputDir string, book *domain.Book) (string, error) {
	bookPath, err := asset.ResolveOutputPath(outputDir, asset.DefaultBookFileName)
	if err != nil {
		return "", fmt.Errorf("ブックの出力パス解決に失敗したのだ: %w", err)
	}

	data, err := json.MarshalIndent(book, "", "  ")
	if err != nil {
		return "", fmt.Errorf("ブックのエンコードに失敗したのだ: %w", err)
	}
	data = append(data, '\n')

	if err := writer.Write(ctx, bookPath, bytes.NewReader(data), "application/json; charset=utf-8"); err != nil {
		return "", fmt.Errorf("ブックの書き込みに失敗したのだ (%s): %w", bookPath, err)
	}
	return bookPath, nil
}

// LoadBook は出力先に保存済みの book.json を読み出します。
func LoadBook(ctx context.Context, reader InputReader, outputDir string) (*domain.Book, error) {
	bookPath, err := asset.ResolveOutputPath(outputDir, asset.DefaultBookFileName)
	if err != nil {
		return nil, fmt.Errorf("ブックの出力パス解決に失敗したのだ: %w", err)
	}

	rc, err := reader.Open(ctx, bookPath)
	if err != nil {
		return nil, fmt.Errorf("ブックが開けないのだ。先に下絵の工程を実行したか確認してほしいのだ (%s): %w", bookPath, err)
	}
	defer rc.Close()

	var book domain.Book
	if err := json.NewDecoder(rc).Decode(&book); err != nil {
		return nil, fmt.Errorf("ブックのデコードに失敗したのだ (%s): %w", bookPath, err)
	}
	return &book, nil
}
