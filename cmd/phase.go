package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shouni/go-ehon-kit/pkg/pipeline"

	"github.com/spf13/cobra"
)

// phaseCmd は、物語パイプラインのフェーズを進める親コマンドなのだ。
var phaseCmd = &cobra.Command{
	Use:   "phase",
	Short: "物語のフェーズを進めるのだ（生成・承認・差し戻し・テンプレート変換）。",
	Long: `物語づくりは コンセプト(0) → ストーリーボード(1) → 原稿(2) →
小道具設定(4) → パネル指示(5) の順で進むのだ（3は原稿フェーズに
折り込み済みの欠番なのだよ）。

run で成果物をAI生成し、内容を確認したら approve で次へ進むか、
reject --notes "..." で修正指示とともに差し戻すのだ。5フェーズが
そろったら convert でブック生成用テンプレートに変換するのだよ。`,
}

var phaseRunCmd = &cobra.Command{
	Use:     "run [phase]",
	Short:   "指定フェーズの成果物をAI生成してレビュー待ちにするのだ。",
	Example: "  ap-ehon-go phase run 0 --story 2f0c...\n  ap-ehon-go phase run storyboard --story 2f0c...",
	Args:    cobra.ExactArgs(1),
	RunE:    phaseRunCommand,
}

var phaseApproveCmd = &cobra.Command{
	Use:   "approve [phase]",
	Short: "レビュー中のフェーズを承認して次のフェーズへ進むのだ。",
	Args:  cobra.ExactArgs(1),
	RunE:  phaseApproveCommand,
}

var phaseRejectCmd = &cobra.Command{
	Use:     "reject [phase]",
	Short:   "レビュー中のフェーズへ修正指示を添えて差し戻すのだ。",
	Example: `  ap-ehon-go phase reject 2 --story 2f0c... --notes "3ページ目の文をもっと短く"`,
	Args:    cobra.ExactArgs(1),
	RunE:    phaseRejectCommand,
}

var phaseStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "対象プロジェクトのフェーズ進行状況を表示するのだ。",
	Args:  cobra.NoArgs,
	RunE:  phaseStatusCommand,
}

var phaseConvertCmd = &cobra.Command{
	Use:   "convert",
	Short: "承認済みの全フェーズからブック生成用テンプレートを作るのだ。",
	Args:  cobra.NoArgs,
	RunE:  phaseConvertCommand,
}

func init() {
	phaseCmd.PersistentFlags().StringVar(&opts.StoryID, "story", "", "対象の物語プロジェクトIDなのだ。")
	phaseRejectCmd.Flags().StringVar(&opts.Notes, "notes", "", "差し戻しの修正指示なのだ（必須）。")
	phaseCmd.AddCommand(phaseRunCmd, phaseApproveCmd, phaseRejectCmd, phaseStatusCmd, phaseConvertCmd)
}

// phaseAliases は番号の代わりに使えるフェーズ名なのだ。
var phaseAliases = map[string]int{
	"concept":      pipeline.PhaseConcept,
	"storyboard":   pipeline.PhaseStoryboard,
	"manuscript":   pipeline.PhaseManuscript,
	"props_bible":  pipeline.PhasePropsBible,
	"props":        pipeline.PhasePropsBible,
	"panel_briefs": pipeline.PhasePanelBriefs,
	"briefs":       pipeline.PhasePanelBriefs,
}

// parsePhaseArg はフェーズ指定（番号 or 名前）を番号に解決するのだ。
// 番号の妥当性チェック自体はパイプライン側の仕様テーブルに任せるのだよ。
func parsePhaseArg(arg string) (int, error) {
	if num, ok := phaseAliases[strings.ToLower(arg)]; ok {
		return num, nil
	}
	num, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("フェーズは番号（0,1,2,4,5）か名前（concept など）で指定してほしいのだ: %q", arg)
	}
	return num, nil
}

// requireStoryID は --story の指定漏れを入口で弾くのだ。
func requireStoryID() error {
	if opts.StoryID == "" {
		return fmt.Errorf("対象の物語プロジェクト（--story）を指定してほしいのだ")
	}
	return nil
}

func phaseRunCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := requireStoryID(); err != nil {
		return err
	}
	phase, err := parsePhaseArg(args[0])
	if err != nil {
		return err
	}

	appCtx, err := newAppContext(ctx)
	if err != nil {
		return err
	}
	defer closeAppContext(ctx, appCtx)

	runner, err := appCtx.Manager.BuildPhaseRunner()
	if err != nil {
		return fmt.Errorf("PhaseRunnerの構築に失敗したのだ: %w", err)
	}

	slog.Info("フェーズ生成を開始するのだ！",
		"story_id", opts.StoryID,
		"phase", phase,
		"phase_name", pipeline.PhaseName(phase),
		"text_model", appCtx.Config.GeminiModel)

	story, err := runner.Generate(ctx, opts.StoryID, phase)
	if err != nil {
		return fmt.Errorf("フェーズ%dの生成に失敗したのだ: %w", phase, err)
	}

	printPhaseOutput(story, phase)
	fmt.Printf("\nフェーズ%d (%s) がレビュー待ちなのだ。approve か reject --notes で応えてほしいのだ。\n",
		phase, pipeline.PhaseName(phase))
	return nil
}

func phaseApproveCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := requireStoryID(); err != nil {
		return err
	}
	phase, err := parsePhaseArg(args[0])
	if err != nil {
		return err
	}

	appCtx, err := newAppContext(ctx)
	if err != nil {
		return err
	}
	defer closeAppContext(ctx, appCtx)

	runner, err := appCtx.Manager.BuildPhaseRunner()
	if err != nil {
		return fmt.Errorf("PhaseRunnerの構築に失敗したのだ: %w", err)
	}

	story, err := runner.Approve(ctx, opts.StoryID, phase)
	if err != nil {
		return fmt.Errorf("フェーズ%dの承認に失敗したのだ: %w", phase, err)
	}

	slog.Info("フェーズを承認したのだ！",
		"story_id", story.ID,
		"approved", phase,
		"current_phase", story.CurrentPhase,
		"phase_name", pipeline.PhaseName(story.CurrentPhase))

	if phase == pipeline.PhasePanelBriefs {
		fmt.Println("全フェーズ承認済みなのだ。`phase convert` でテンプレート化できるのだよ。")
	}
	return nil
}

func phaseRejectCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := requireStoryID(); err != nil {
		return err
	}
	if strings.TrimSpace(opts.Notes) == "" {
		return fmt.Errorf("差し戻しには修正指示（--notes）が必要なのだ")
	}
	phase, err := parsePhaseArg(args[0])
	if err != nil {
		return err
	}

	appCtx, err := newAppContext(ctx)
	if err != nil {
		return err
	}
	defer closeAppContext(ctx, appCtx)

	runner, err := appCtx.Manager.BuildPhaseRunner()
	if err != nil {
		return fmt.Errorf("PhaseRunnerの構築に失敗したのだ: %w", err)
	}

	if _, err := runner.Reject(ctx, opts.StoryID, phase, opts.Notes); err != nil {
		return fmt.Errorf("フェーズ%dの差し戻しに失敗したのだ: %w", phase, err)
	}

	slog.Info("フェーズを差し戻したのだ。次の run で修正指示が反映されるのだよ。",
		"story_id", opts.StoryID,
		"phase", phase,
		"notes", opts.Notes)
	return nil
}

func phaseStatusCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := requireStoryID(); err != nil {
		return err
	}

	appCtx, err := newAppContext(ctx)
	if err != nil {
		return err
	}
	defer closeAppContext(ctx, appCtx)

	runner, err := appCtx.Manager.BuildPhaseRunner()
	if err != nil {
		return fmt.Errorf("PhaseRunnerの構築に失敗したのだ: %w", err)
	}

	story, err := runner.GetStory(ctx, opts.StoryID)
	if err != nil {
		return fmt.Errorf("プロジェクトの取得に失敗したのだ: %w", err)
	}

	printStoryStatus(story)
	return nil
}

func phaseConvertCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := requireStoryID(); err != nil {
		return err
	}

	appCtx, err := newAppContext(ctx)
	if err != nil {
		return err
	}
	defer closeAppContext(ctx, appCtx)

	runner, err := appCtx.Manager.BuildPhaseRunner()
	if err != nil {
		return fmt.Errorf("PhaseRunnerの構築に失敗したのだ: %w", err)
	}

	story, err := runner.ConvertToTemplate(ctx, opts.StoryID)
	if err != nil {
		return fmt.Errorf("テンプレート変換に失敗したのだ: %w", err)
	}

	slog.Info("テンプレート変換が完了したのだ！", "story_id", story.ID, "template_ready", story.TemplateReady)
	fmt.Println("次は `ap-ehon-go sketch --story " + story.ID + " --profile <プロフィールJSON>` なのだ。")
	return nil
}

// printPhaseOutput は保存済みの成果物JSONを整形して表示するのだ。
func printPhaseOutput(story *pipeline.StoryProject, phase int) {
	state := story.Phase(phase)
	if !state.HasOutput() {
		return
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, state.Output, "", "  "); err != nil {
		fmt.Println(string(state.Output))
		return
	}
	fmt.Println(pretty.String())
}
