package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-ehon-kit/internal/config"

	"github.com/spf13/cobra"
)

// profileCmd は、写真1枚から主人公のプロフィールJSONを作るコマンドなのだ。
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "写真から主人公の外見プロフィールを抽出して保存するのだ。",
	Long: `子どもの写真1枚をAIで解析し、髪・瞳・服装・持ち物を「描けることば」に
構造化したプロフィールJSONを作るのだ。顔立ちそのものの記述は含めない
ルールで抽出するから、生成画像へ顔の特徴が写り込むことはないのだよ。`,
	Example: "  ap-ehon-go profile --photo photos/mira.jpg --name Mira --profile examples/profile_mira.json",
	RunE:    profileCommand,
}

func init() {
	profileCmd.Flags().StringVar(&opts.PhotoFile, "photo", "", "主人公の写真のパス（ローカル or gs://...）なのだ。")
	profileCmd.Flags().StringVar(&opts.ChildName, "name", "", "主人公（子ども）の名前なのだ。")
	profileCmd.Flags().StringVar(&opts.ProfileFile, "profile", config.DefaultProfileFile, "プロフィールJSONの保存先なのだ。")
}

func profileCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 必須チェック（写真と名前がないと始まらないのだ）
	if opts.PhotoFile == "" {
		return fmt.Errorf("主人公の写真（--photo）を指定してほしいのだ")
	}
	if opts.ChildName == "" {
		return fmt.Errorf("主人公の名前（--name）を指定してほしいのだ")
	}

	appCtx, err := newAppContext(ctx)
	if err != nil {
		return err
	}
	defer closeAppContext(ctx, appCtx)

	runner, err := appCtx.Manager.BuildProfileRunner()
	if err != nil {
		return fmt.Errorf("ProfileRunnerの構築に失敗したのだ: %w", err)
	}

	slog.Info("プロフィール抽出を開始するのだ！",
		"photo", opts.PhotoFile,
		"name", opts.ChildName,
		"output", opts.ProfileFile)

	profile, err := runner.Run(ctx, opts.PhotoFile, opts.ChildName, opts.ProfileFile)
	if err != nil {
		return fmt.Errorf("プロフィール抽出に失敗したのだ: %w", err)
	}

	slog.Info("プロフィールを保存したのだ！",
		"path", opts.ProfileFile,
		"name", profile.Name,
		"anchors", strings.Join(profile.DoNotChange, ", "))
	fmt.Println("中身を確認して、気になる表現があれば直接JSONを直してよいのだ。")
	return nil
}
