// Package workflow は絵本制作の工程（プロフィール抽出・物語パイプライン・
// 下絵・本絵・公開）を束ね、各工程の Runner を構築します。
package workflow

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/shouni/go-ehon-kit/pkg/config"
	"github.com/shouni/go-ehon-kit/pkg/generator"
	"github.com/shouni/go-ehon-kit/pkg/pipeline"
	"github.com/shouni/go-ehon-kit/pkg/prompts"
	"github.com/shouni/go-ehon-kit/pkg/store"
	"github.com/shouni/go-ehon-kit/pkg/template"
)

// ManagerArgs は Manager の構築に必要な依存一式です。
type ManagerArgs struct {
	Config     config.Config
	Stores     *store.Set
	AI         AIClient
	Reader     generator.AssetReader
	Writer     generator.AssetWriter
	HTTPClient *http.Client
}

// Manager は、ワークフローの各工程を担う Runner 群を構築・管理します。
type Manager struct {
	cfg       config.Config
	stores    *store.Set
	ai        AIClient
	reader    generator.AssetReader
	writer    generator.AssetWriter
	pipeline  *pipeline.Service
	templates *template.Store
	books     *generator.BookComposer
}

// New は、設定と依存一式を基に新しい Manager を初期化します。
func New(args ManagerArgs) (*Manager, error) {
	if args.Stores == nil {
		return nil, fmt.Errorf("stores は必須です")
	}
	if args.AI == nil {
		return nil, fmt.Errorf("aiClient は必須です")
	}
	if args.Reader == nil {
		return nil, fmt.Errorf("InputReader は必須です")
	}
	if args.Writer == nil {
		return nil, fmt.Errorf("OutputWriter は必須です")
	}
	if args.HTTPClient == nil {
		return nil, fmt.Errorf("httpClient は必須です")
	}

	service, err := pipeline.NewService(args.Stores, args.AI)
	if err != nil {
		return nil, fmt.Errorf("パイプラインの初期化に失敗しました: %w", err)
	}

	composer := prompts.NewComposer(args.Config.StyleSuffix)

	templates, err := template.NewStore(args.Stores, composer)
	if err != nil {
		return nil, fmt.Errorf("テンプレートストアの初期化に失敗しました: %w", err)
	}

	interval := args.Config.RateInterval
	if interval <= 0 {
		interval = config.DefaultRateInterval
	}
	limiter := rate.NewLimiter(rate.Every(interval), 2)

	books, err := generator.NewBookComposer(args.AI, composer, args.Reader, args.Writer, args.HTTPClient, limiter)
	if err != nil {
		return nil, fmt.Errorf("画像生成エンジンの初期化に失敗しました: %w", err)
	}

	return &Manager{
		cfg:       args.Config,
		stores:    args.Stores,
		ai:        args.AI,
		reader:    args.Reader,
		writer:    args.Writer,
		pipeline:  service,
		templates: templates,
		books:     books,
	}, nil
}

// Templates はテンプレートストアを返します。キャッシュの無効化など、
// Runner を介さない読み出し側の操作に使います。
func (m *Manager) Templates() *template.Store {
	return m.templates
}
