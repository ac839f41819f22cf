package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/shouni/go-ehon-kit/pkg/config"
	"github.com/shouni/go-ehon-kit/pkg/domain"
	"github.com/shouni/go-ehon-kit/pkg/generator"
	"github.com/shouni/go-ehon-kit/pkg/profile"
	"github.com/shouni/go-ehon-kit/pkg/publisher"
	"github.com/shouni/go-ehon-kit/pkg/template"
)

// BuildProfileRunner は、写真からのプロフィール抽出を担当する Runner を作成します。
func (m *Manager) BuildProfileRunner() (ProfileRunner, error) {
	extractor, err := profile.NewExtractor(m.ai, m.reader)
	if err != nil {
		return nil, fmt.Errorf("extractor の初期化に失敗しました: %w", err)
	}
	return &profileRunner{extractor: extractor, writer: m.writer}, nil
}

// BuildPhaseRunner は、物語パイプラインのフェーズ操作を担当する Runner を作成します。
func (m *Manager) BuildPhaseRunner() (PhaseRunner, error) {
	return m.pipeline, nil
}

// BuildSketchRunner は、下絵の一括生成を担当する Runner を作成します。
func (m *Manager) BuildSketchRunner() (SketchRunner, error) {
	return &sketchRunner{
		templates: m.templates,
		books:     m.books,
		reader:    m.reader,
		writer:    m.writer,
		cfg:       m.cfg,
	}, nil
}

// BuildBookRunner は、リファレンスシートと本絵の生成を担当する Runner を作成します。
func (m *Manager) BuildBookRunner() (BookRunner, error) {
	return &bookRunner{
		templates: m.templates,
		books:     m.books,
		reader:    m.reader,
		writer:    m.writer,
		cfg:       m.cfg,
	}, nil
}

// BuildPublishRunner は、成果物のパブリッシュを担当する Runner を作成します。
func (m *Manager) BuildPublishRunner() (PublishRunner, error) {
	pub, err := publisher.NewBookPublisher(m.writer)
	if err != nil {
		return nil, fmt.Errorf("publisher の初期化に失敗しました: %w", err)
	}
	return &publishRunner{publisher: pub, reader: m.reader}, nil
}

// --- 各 Runner の実装 ---

type profileRunner struct {
	extractor *profile.Extractor
	writer    generator.AssetWriter
}

func (r *profileRunner) Run(ctx context.Context, photoPath, childName, outputPath string) (*domain.CharacterProfile, error) {
	p, err := r.extractor.ExtractFromPhoto(ctx, photoPath, childName)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("プロフィールのエンコードに失敗したのだ: %w", err)
	}
	data = append(data, '\n')

	if err := r.writer.Write(ctx, outputPath, bytes.NewReader(data), "application/json; charset=utf-8"); err != nil {
		return nil, fmt.Errorf("プロフィールの書き込みに失敗したのだ (%s): %w", outputPath, err)
	}

	slog.Info("プロフィールを保存しました", "path", outputPath, "child", p.Name)
	return p, nil
}

type sketchRunner struct {
	templates *template.Store
	books     *generator.BookComposer
	reader    generator.AssetReader
	writer    generator.AssetWriter
	cfg       config.Config
}

func (r *sketchRunner) Run(ctx context.Context, storyID, profilePath, outputDir string) (*domain.Book, *generator.BatchResult, error) {
	prof, err := r.loadProfile(ctx, profilePath)
	if err != nil {
		return nil, nil, err
	}

	book, err := r.templates.Compile(ctx, storyID, prof)
	if err != nil {
		return nil, nil, err
	}
	briefs, err := r.templates.Briefs(ctx, book.StoryID)
	if err != nil {
		return nil, nil, err
	}

	result, genErr := r.books.GenerateSketches(ctx, book, briefs, generator.BatchOptions{
		OutputDir:      outputDir,
		SilhouettePath: r.cfg.SilhouettePath,
		PageLimit:      r.cfg.PageLimit,
	})

	// 途中で失敗していても、生成済みの下絵ごとブックを保存して
	// 後続の工程（再実行や本絵）が拾えるようにする
	if _, saveErr := publisher.SaveBook(ctx, r.writer, outputDir, book); saveErr != nil {
		if genErr != nil {
			slog.Error("失敗後のブック保存にも失敗しました", "error", saveErr)
			return book, result, genErr
		}
		return book, result, saveErr
	}
	return book, result, genErr
}

// loadProfile はリーダー経由（ローカル/GCS）でプロフィールを読み出します。
func (r *sketchRunner) loadProfile(ctx context.Context, profilePath string) (*domain.CharacterProfile, error) {
	rc, err := r.reader.Open(ctx, profilePath)
	if err != nil {
		return nil, fmt.Errorf("プロフィールファイルのオープンに失敗したのだ (%s): %w", profilePath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("プロフィールファイルの読み込みに失敗したのだ: %w", err)
	}
	return domain.ParseProfile(data)
}

type bookRunner struct {
	templates *template.Store
	books     *generator.BookComposer
	reader    generator.AssetReader
	writer    generator.AssetWriter
	cfg       config.Config
}

func (r *bookRunner) Run(ctx context.Context, outputDir string) (*domain.Book, *generator.BatchResult, error) {
	book, err := publisher.LoadBook(ctx, r.reader, outputDir)
	if err != nil {
		return nil, nil, err
	}
	briefs, err := r.templates.Briefs(ctx, book.StoryID)
	if err != nil {
		return nil, nil, err
	}

	// リファレンスシートは同一性の要なので、無ければ先に作る
	if book.CharacterRefURL == "" {
		if _, err := r.books.GenerateCharacterReference(ctx, book, outputDir); err != nil {
			return book, nil, err
		}
	}

	result, genErr := r.books.GenerateFinalPages(ctx, book, briefs, generator.BatchOptions{
		OutputDir: outputDir,
		PageLimit: r.cfg.PageLimit,
	})

	if _, saveErr := publisher.SaveBook(ctx, r.writer, outputDir, book); saveErr != nil {
		if genErr != nil {
			slog.Error("失敗後のブック保存にも失敗しました", "error", saveErr)
			return book, result, genErr
		}
		return book, result, saveErr
	}
	return book, result, genErr
}

type publishRunner struct {
	publisher *publisher.BookPublisher
	reader    generator.AssetReader
}

func (r *publishRunner) Run(ctx context.Context, outputDir string) (publisher.PublishResult, error) {
	book, err := publisher.LoadBook(ctx, r.reader, outputDir)
	if err != nil {
		return publisher.PublishResult{}, err
	}
	return r.publisher.Publish(ctx, book, publisher.Options{OutputDir: outputDir})
}
