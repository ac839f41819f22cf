// Package generator は1冊分の画像成果物（リファレンスシート・下絵・
// 本絵）を組み立てる中核です。生成はレートリミッタで抑えながら並列
// 実行し、参照画像の取得はキャッシュと singleflight で多重化します。
package generator

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/shouni/go-ehon-kit/pkg/asset"
	"github.com/shouni/go-ehon-kit/pkg/domain"
	"github.com/shouni/go-ehon-kit/pkg/gemini"
	"github.com/shouni/go-ehon-kit/pkg/prompts"
)

// BookComposer は絵本1冊分の画像生成を司ります。
type BookComposer struct {
	imageClient ImageClient
	composer    *prompts.Composer
	reader      AssetReader
	writer      AssetWriter
	httpClient  *http.Client
	limiter     *rate.Limiter

	mu         sync.RWMutex
	refCache   map[string]gemini.ImageData // URL -> 取得済み参照画像
	fetchGroup singleflight.Group
}

// NewBookComposer は依存を検証して BookComposer を生成します。
func NewBookComposer(
	imageClient ImageClient,
	composer *prompts.Composer,
	reader AssetReader,
	writer AssetWriter,
	httpClient *http.Client,
	limiter *rate.Limiter,
) (*BookComposer, error) {
	if imageClient == nil {
		return nil, fmt.Errorf("imageClient は必須です")
	}
	if composer == nil {
		return nil, fmt.Errorf("composer は必須です")
	}
	if reader == nil {
		return nil, fmt.Errorf("reader は必須です")
	}
	if writer == nil {
		return nil, fmt.Errorf("writer は必須です")
	}
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient は必須です")
	}
	if limiter == nil {
		return nil, fmt.Errorf("limiter は必須です")
	}
	return &BookComposer{
		imageClient: imageClient,
		composer:    composer,
		reader:      reader,
		writer:      writer,
		httpClient:  httpClient,
		limiter:     limiter,
		refCache:    make(map[string]gemini.ImageData),
	}, nil
}

// sketchPromptFor は下絵用プロンプトを選びます。フェーズ5の指示書が
// あるページは指示書のストーリーボード変種を、なければページ内容から
// 合成した下絵プロンプトを使います。どちらも主人公は白抜きシルエット
// 扱いで、顔の特徴は含みません。
func (bc *BookComposer) sketchPromptFor(book *domain.Book, page domain.Page, briefs map[int]prompts.Brief) string {
	if brief, ok := briefs[page.Page]; ok {
		return bc.composer.BuildBriefPrompt(brief, book.Bible, true)
	}
	return bc.composer.BuildSketchPrompt(page, book.Bible)
}

// finalPromptFor は本絵用プロンプトを選びます。指示書を持つ物語の
// プロンプト表は変換時の素のプロンプトなのでスタイル句を追記し、
// 指示書を持たない物語の表は読み出し時に合成済みなのでそのまま
// 使います。表にないページはその場で合成します。
func (bc *BookComposer) finalPromptFor(book *domain.Book, page domain.Page, briefs map[int]prompts.Brief) string {
	stored, hasStored := book.Prompts.For(page.Page)
	brief, hasBrief := briefs[page.Page]

	switch {
	case hasStored && len(briefs) > 0:
		return bc.composer.AppendStyleSuffix(stored, book.Bible)
	case hasStored:
		return stored
	case hasBrief:
		return bc.composer.BuildBriefPrompt(brief, book.Bible, false)
	default:
		summary := ""
		if book.Profile != nil {
			summary = book.Profile.PromptSummary()
		}
		return bc.composer.BuildFinalPrompt(page, summary, book.Bible)
	}
}

// saveImage は生成画像を出力先配下の images ディレクトリへ書き出し、
// 書き込んだパスを返します。
func (bc *BookComposer) saveImage(ctx context.Context, outputDir, fileName string, img *gemini.ImageResult) (string, error) {
	imageDir, err := asset.ResolveOutputPath(outputDir, asset.DefaultImageDir)
	if err != nil {
		return "", fmt.Errorf("画像ディレクトリの解決に失敗したのだ: %w", err)
	}
	path, err := asset.ResolveOutputPath(imageDir, fileName)
	if err != nil {
		return "", fmt.Errorf("画像パスの解決に失敗したのだ: %w", err)
	}
	if err := bc.writer.Write(ctx, path, bytes.NewReader(img.Data), img.MIMEType); err != nil {
		return "", fmt.Errorf("画像の書き込みに失敗したのだ (%s): %w", path, err)
	}
	return path, nil
}

// attachImages は生成済みの画像を保存し、対応するページへURLを
// 書き込みます。nil の結果（未生成）は飛ばすため、途中失敗時の
// 部分保存にも使えます。
func (bc *BookComposer) attachImages(
	ctx context.Context,
	pages domain.Pages,
	results []*gemini.ImageResult,
	outputDir string,
	nameFor func(int) string,
	attach func(*domain.Page, string),
) (int, error) {
	saved := 0
	for i := range pages {
		if results[i] == nil {
			continue
		}
		path, err := bc.saveImage(ctx, outputDir, nameFor(pages[i].Page), results[i])
		if err != nil {
			return saved, err
		}
		attach(&pages[i], path)
		saved++
	}
	return saved, nil
}
