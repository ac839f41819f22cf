package builder

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shouni/go-ehon-kit/internal/config"
	ehoncfg "github.com/shouni/go-ehon-kit/pkg/config"
	"github.com/shouni/go-ehon-kit/pkg/gemini"
	"github.com/shouni/go-ehon-kit/pkg/store"
	"github.com/shouni/go-ehon-kit/pkg/workflow"

	"github.com/shouni/go-remote-io/pkg/gcsfactory"
)

// NewAppContext は、設定からストア・AIクライアント・入出力・ワークフローを
// 一度だけ初期化して AppContext を構築するのだ。
func NewAppContext(ctx context.Context, cfg *config.Config) (*AppContext, error) {
	stores, closer, err := InitializeStores(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ストアの初期化に失敗しました: %w", err)
	}

	aiClient, err := InitializeAIClient(ctx, cfg)
	if err != nil {
		closeQuietly(ctx, closer)
		return nil, err
	}

	gcsFactory, err := gcsfactory.NewGCSClientFactory(ctx)
	if err != nil {
		closeQuietly(ctx, closer)
		return nil, fmt.Errorf("GCSクライアントファクトリの生成に失敗しました: %w", err)
	}

	reader, err := gcsFactory.NewInputReader()
	if err != nil {
		closeQuietly(ctx, closer)
		return nil, err
	}
	writer, err := gcsFactory.NewOutputWriter()
	if err != nil {
		closeQuietly(ctx, closer)
		return nil, err
	}

	timeout := cfg.Options.HTTPTimeout
	if timeout <= 0 {
		timeout = config.DefaultHTTPTimeout
	}
	httpClient := &http.Client{Timeout: timeout}

	// ワークフローを一度だけ初期化
	manager, err := workflow.New(workflow.ManagerArgs{
		Config:     toKitConfig(cfg),
		Stores:     stores,
		AI:         aiClient,
		Reader:     reader,
		Writer:     writer,
		HTTPClient: httpClient,
	})
	if err != nil {
		closeQuietly(ctx, closer)
		return nil, fmt.Errorf("ワークフローの構築に失敗したのだ: %w", err)
	}

	return &AppContext{
		Config:  cfg,
		Options: cfg.Options,
		Stores:  stores,
		Reader:  reader,
		Writer:  writer,
		Manager: manager,
		closer:  closer,
	}, nil
}

// InitializeStores は保存先を判定してストア一式を構築します。
// MONGODB_URI が設定されていれば MongoDB、なければローカルファイル保存なのだ。
func InitializeStores(ctx context.Context, cfg *config.Config) (*store.Set, func(context.Context) error, error) {
	if cfg.MongoURI != "" {
		return store.NewMongoSet(ctx, cfg.MongoURI, cfg.MongoDatabase)
	}

	dataDir := cfg.Options.DataDir
	if dataDir == "" {
		dataDir = config.DefaultDataDir
	}
	stores, err := store.NewFileSet(dataDir)
	if err != nil {
		return nil, nil, err
	}
	return stores, nil, nil
}

// InitializeAIClient は gemini クライアントを初期化します。
func InitializeAIClient(ctx context.Context, cfg *config.Config) (*gemini.Client, error) {
	aiClient, err := gemini.New(ctx, gemini.Config{
		APIKey:     cfg.GeminiAPIKey,
		TextModel:  cfg.GeminiModel,
		ImageModel: cfg.GeminiImageModel,
	})
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return aiClient, nil
}

// toKitConfig は CLI 層の設定をライブラリ層の設定へ写し替えるのだ。
func toKitConfig(cfg *config.Config) ehoncfg.Config {
	kit := ehoncfg.DefaultConfig()
	kit.GeminiAPIKey = cfg.GeminiAPIKey
	kit.GeminiModel = cfg.GeminiModel
	kit.ImageModel = cfg.GeminiImageModel
	if cfg.StyleSuffix != "" {
		kit.StyleSuffix = cfg.StyleSuffix
	}
	if cfg.Options.RateInterval > 0 {
		kit.RateInterval = cfg.Options.RateInterval
	}
	kit.PageLimit = cfg.Options.PageLimit
	kit.SilhouettePath = cfg.Options.SilhouetteFile
	kit.RequestTimeout = cfg.Options.HTTPTimeout
	return kit
}

func closeQuietly(ctx context.Context, closer func(context.Context) error) {
	if closer == nil {
		return
	}
	if err := closer(ctx); err != nil {
		slog.Warn("ストア接続のクローズに失敗しました", "error", err)
	}
}
