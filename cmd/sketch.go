package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-ehon-kit/internal/config"

	"github.com/spf13/cobra"
)

// sketchCmd は、物語テンプレートとプロフィールからブックを組み立て、
// 全ページの下絵を一括生成するコマンドなのだ。
var sketchCmd = &cobra.Command{
	Use:   "sketch",
	Short: "ブックを組み立てて全ページの下絵を一括生成するのだ。",
	Long: `テンプレート変換済みの物語と主人公プロフィールを結合してブックを作り、
各ページの白黒下絵（人物は白抜きシルエット）を並列生成するのだ。
結果は <output-dir>/book.json と <output-dir>/images/ に保存されて、
途中で失敗しても完成済みのページはそのまま残るのだよ。`,
	Example: "  ap-ehon-go sketch --story 2f0c... --profile examples/profile_mira.json",
	RunE:    sketchCommand,
}

func init() {
	sketchCmd.Flags().StringVar(&opts.StoryID, "story", "", "ブック化する物語プロジェクトIDなのだ（未指定なら同梱の月夜の物語）。")
	sketchCmd.Flags().StringVar(&opts.ProfileFile, "profile", config.DefaultProfileFile, "主人公プロフィールJSONのパスなのだ。")
	sketchCmd.Flags().StringVar(&opts.SilhouetteFile, "silhouette", "", "下絵に添える白抜きシルエット参照画像なのだ（省略可）。")
}

func sketchCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	appCtx, err := newAppContext(ctx)
	if err != nil {
		return err
	}
	defer closeAppContext(ctx, appCtx)

	runner, err := appCtx.Manager.BuildSketchRunner()
	if err != nil {
		return fmt.Errorf("SketchRunnerの構築に失敗したのだ: %w", err)
	}

	slog.Info("下絵の一括生成を開始するのだ！",
		"story_id", opts.StoryID,
		"profile", opts.ProfileFile,
		"output_dir", opts.OutputDir,
		"image_model", appCtx.Config.GeminiImageModel)

	book, result, err := runner.Run(ctx, opts.StoryID, opts.ProfileFile, opts.OutputDir)
	if result != nil {
		slog.Info("下絵の生成結果なのだ", "generated", result.Generated, "total", result.Total)
	}
	if err != nil {
		return fmt.Errorf("下絵の生成に失敗したのだ: %w", err)
	}

	slog.Info("下絵がそろったのだ！次は book コマンドで本絵を仕上げるのだよ。",
		"title", book.Title,
		"pages", len(book.Pages))
	return nil
}
