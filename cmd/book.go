package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// bookCmd は、下絵まで済んだブックの本絵を仕上げるコマンドなのだ。
var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "保存済みブックのリファレンスシートと本絵を生成するのだ。",
	Long: `sketch 工程が保存した <output-dir>/book.json を読み込み、
主人公のキャラクターリファレンスシートと全ページのフルカラー本絵を
生成するのだ。各ページは下絵とリファレンスを参照画像に、名前由来の
固定シードで描かれるから、全ページで同じ子に見えるのだよ。`,
	Example: "  ap-ehon-go book -o output/book",
	RunE:    bookCommand,
}

// publishCmd は、完成したブックを索引付きで公開するコマンドなのだ。
var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "完成したブックに索引Markdownを添えて公開するのだ。",
	Long: `<output-dir>/book.json を読み込み、表紙情報・ページ本文・画像への
リンクをまとめた index.md を書き出すのだ。画像リンクは同じバンドル内の
相対パスに揃えるから、ディレクトリごと配布できるのだよ。`,
	Example: "  ap-ehon-go publish -o output/book",
	RunE:    publishCommand,
}

func bookCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	appCtx, err := newAppContext(ctx)
	if err != nil {
		return err
	}
	defer closeAppContext(ctx, appCtx)

	runner, err := appCtx.Manager.BuildBookRunner()
	if err != nil {
		return fmt.Errorf("BookRunnerの構築に失敗したのだ: %w", err)
	}

	slog.Info("本絵の仕上げを開始するのだ！",
		"output_dir", opts.OutputDir,
		"image_model", appCtx.Config.GeminiImageModel)

	book, result, err := runner.Run(ctx, opts.OutputDir)
	if result != nil {
		slog.Info("本絵の生成結果なのだ", "generated", result.Generated, "total", result.Total)
	}
	if err != nil {
		return fmt.Errorf("本絵の生成に失敗したのだ: %w", err)
	}

	slog.Info("本絵が仕上がったのだ！publish コマンドで配布用の索引を作れるのだよ。",
		"title", book.Title,
		"pages", len(book.Pages))
	return nil
}

func publishCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	appCtx, err := newAppContext(ctx)
	if err != nil {
		return err
	}
	defer closeAppContext(ctx, appCtx)

	runner, err := appCtx.Manager.BuildPublishRunner()
	if err != nil {
		return fmt.Errorf("PublishRunnerの構築に失敗したのだ: %w", err)
	}

	result, err := runner.Run(ctx, opts.OutputDir)
	if err != nil {
		return fmt.Errorf("公開に失敗したのだ: %w", err)
	}

	slog.Info("公開が完了したのだ！最高の絵本ができたのだよ。",
		"book", result.BookPath,
		"index", result.IndexPath,
		"images", len(result.ImagePaths))
	return nil
}
