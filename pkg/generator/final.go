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

// GenerateFinalPages は全ページの本絵を並列生成し、保存したパスを
// 各ページの ImageURL へ書き込みます。リファレンスシートと各ページの
// 下絵を参照画像として渡し、構図を保ったまま主人公の同一性を固定
// します。参照が取得できないページは残りの参照だけで続行します。
func (bc *BookComposer) GenerateFinalPages(ctx context.Context, book *domain.Book, briefs map[int]prompts.Brief, opts BatchOptions) (*BatchResult, error) {
	pages := limitPages(book.Pages, opts.PageLimit)
	total := len(pages)
	if total == 0 {
		return &BatchResult{}, fmt.Errorf("生成対象のページがないのだ")
	}

	// リファレンスシートは先に1回だけ取得を試し、失敗時は全ページを
	// 参照なしで進める（ページごとに同じ警告を繰り返さない）
	charRefURL := book.CharacterRefURL
	if charRefURL != "" {
		if _, err := bc.fetchReference(ctx, charRefURL); err != nil {
			slog.Warn("リファレンスシートが取得できないため、参照なしで続行します",
				"url", charRefURL, "error", err)
			charRefURL = ""
		}
	}
	seed := domain.GetSeedFromName(book.ChildName)

	slog.Info("本絵の一括生成を開始します", "story_id", book.StoryID, "pages", total)

	results := make([]*gemini.ImageResult, total)
	eg, egCtx := errgroup.WithContext(ctx)
	for i := range pages {
		index := i
		page := pages[index]
		eg.Go(func() error {
			if err := bc.limiter.Wait(egCtx); err != nil {
				return err
			}
			refs := bc.collectReferences(egCtx, []string{charRefURL, page.SketchURL})
			result, err := bc.imageClient.GenerateImage(egCtx, gemini.ImageRequest{
				Prompt:          bc.finalPromptFor(book, page, briefs),
				ReferenceImages: refs,
				AspectRatio:     gemini.AspectRatioPage,
				OutputFormat:    gemini.DefaultOutputFormat,
				Seed:            seed,
			})
			if err != nil {
				return fmt.Errorf("ページ%dの本絵生成に失敗したのだ: %w", page.Page, err)
			}
			results[index] = result
			return nil
		})
	}
	genErr := eg.Wait()

	// 失敗していても生成済みのページは保存して添付する
	saved, saveErr := bc.attachImages(ctx, pages, results, opts.OutputDir,
		asset.FinalImageName,
		func(p *domain.Page, path string) { p.ImageURL = path })

	result := &BatchResult{Generated: saved, Total: total}
	if saveErr != nil {
		return result, saveErr
	}
	if genErr != nil {
		slog.Warn("本絵の一括生成が途中で失敗しました", "generated", saved, "total", total)
		return result, fmt.Errorf("本絵の一括生成が途中で失敗したのだ (%d/%d 保存済み): %w", saved, total, genErr)
	}

	slog.Info("本絵の一括生成が完了しました", "generated", saved, "total", total)
	return result, nil
}
