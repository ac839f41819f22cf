package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/shouni/go-ehon-kit/internal/builder"
	"github.com/shouni/go-ehon-kit/internal/config"
	ehoncfg "github.com/shouni/go-ehon-kit/pkg/config"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"
)

// opts は addAppFlags で各フラグに紐付けられる実行時パラメータなのだ。
var opts config.GenerateOptions

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
// 工程固有のフラグ（--photo や --notes など）は各コマンド側で定義するのだよ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- ストレージ・出力設定 ---
	rootCmd.PersistentFlags().StringVarP(&opts.DataDir, "data-dir", "d", config.DefaultDataDir, "物語プロジェクトの保存先ディレクトリなのだ（MONGODB_URI があればそちらが優先）。")
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", config.DefaultOutputDir, "ブック成果物の保存先（ローカル or gs://...）なのだ。")

	// --- AIモデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.TextModel, "model", "", "フェーズ生成に使う Gemini モデル名なのだ（未指定なら GEMINI_MODEL）。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageModel, "image-model", "", "画像生成に使う Gemini モデル名なのだ（未指定なら IMAGE_GEMINI_MODEL）。")
	rootCmd.PersistentFlags().DurationVar(&opts.HTTPTimeout, "http-timeout", config.DefaultHTTPTimeout, "Webリクエストのタイムアウトなのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.RateInterval, "rate-interval", ehoncfg.DefaultRateInterval, "画像リクエストの最小間隔なのだ。")

	// --- 画像生成固有設定 ---
	rootCmd.PersistentFlags().IntVarP(&opts.PageLimit, "page-limit", "p", 0, "画像を生成するページの最大数（0なら全ページ）なのだ。")
}

// preRunAppE は、コマンド実行前に環境変数などの必須チェックを行うのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	// Gemini APIを利用するため、APIキーの存在チェックは欠かせないのだ！
	if os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("エラー: 環境変数 GEMINI_API_KEY が設定されていません。Gemini APIの利用には必須なのだ")
	}

	return nil
}

// newAppContext は環境変数とフラグを束ね、全工程が使う共通コンテキストを構築するのだ。
func newAppContext(ctx context.Context) (*builder.AppContext, error) {
	cfg := config.LoadConfig()
	cfg.Options = opts
	if opts.TextModel != "" {
		cfg.GeminiModel = opts.TextModel
	}
	if opts.ImageModel != "" {
		cfg.GeminiImageModel = opts.ImageModel
	}
	return builder.NewAppContext(ctx, cfg)
}

// closeAppContext は共通コンテキストの後始末なのだ。defer から呼ぶのだよ。
func closeAppContext(ctx context.Context, appCtx *builder.AppContext) {
	if err := appCtx.Close(ctx); err != nil {
		slog.Warn("接続のクローズに失敗しました", "error", err)
	}
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	clibase.Execute(
		"ap-ehon-go",
		addAppFlags,
		preRunAppE,
		storyCmd,
		phaseCmd,
		profileCmd,
		sketchCmd,
		bookCmd,
		publishCmd,
	)
}
