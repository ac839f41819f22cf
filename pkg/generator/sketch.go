package generator

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/shouni/go-ehon-kit/pkg/asset"
	"github.com/shouni/go-ehon-kit/pkg/domain"
	"github.com/shouni/go-ehon-kit/pkg/gemini"
	"github.com/shouni/go-ehon-kit/pkg/prompts"
)

// GenerateSketches は全ページの下絵（ストーリーボード）を並列生成し、
// 保存したパスを各ページの SketchURL へ書き込みます。主人公は白抜き
// シルエットの参照画像で表現し、プロンプトにも顔の特徴は含めません。
// 途中で失敗しても生成済みのページは保存し、件数とともに報告します。
func (bc *BookComposer) GenerateSketches(ctx context.Context, book *domain.Book, briefs map[int]prompts.Brief, opts BatchOptions) (*BatchResult, error) {
	pages := limitPages(book.Pages, opts.PageLimit)
	total := len(pages)
	if total == 0 {
		return &BatchResult{}, fmt.Errorf("生成対象のページがないのだ")
	}

	var refs []gemini.ImageData
	if opts.SilhouettePath != "" {
		refs = bc.collectReferences(ctx, []string{opts.SilhouettePath})
	}

	slog.Info("下絵の一括生成を開始します", "story_id", book.StoryID, "pages", total)

	results := make([]*gemini.ImageResult, total)
	eg, egCtx := errgroup.WithContext(ctx)
	for i := range pages {
		index := i
		page := pages[index]
		eg.Go(func() error {
			if err := bc.limiter.Wait(egCtx); err != nil {
				return err
			}
			result, err := bc.imageClient.GenerateImage(egCtx, gemini.ImageRequest{
				Prompt:          bc.sketchPromptFor(book, page, briefs),
				ReferenceImages: refs,
				AspectRatio:     gemini.AspectRatioPage,
				OutputFormat:    gemini.DefaultOutputFormat,
			})
			if err != nil {
				return fmt.Errorf("ページ%dの下絵生成に失敗したのだ: %w", page.Page, err)
			}
			results[index] = result
			return nil
		})
	}
	genErr := eg.Wait()

	// 失敗していても生成済みのページは保存して添付する
	saved, saveErr := bc.attachImages(ctx, pages, results, opts.OutputDir,
		asset.SketchImageName,
		func(p *domain.Page, path string) { p.SketchURL = path })

	result := &BatchResult{Generated: saved, Total: total}
	if saveErr != nil {
		return result, saveErr
	}
	if genErr != nil {
		slog.Warn("下絵の一括生成が途中で失敗しました", "generated", saved, "total", total)
		return result, fmt.Errorf("下絵の一括生成が途中で失敗したのだ (%d/%d 保存済み): %w", saved, total, genErr)
	}

	slog.Info("下絵の一括生成が完了しました", "generated", saved, "total", total)
	return result, nil
}
