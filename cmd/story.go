package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-ehon-kit/pkg/pipeline"

	"github.com/spf13/cobra"
)

// storyCmd は、物語プロジェクトの台帳を管理する親コマンドなのだ。
// フェーズを進める操作は phase コマンド側が担当するのだよ。
var storyCmd = &cobra.Command{
	Use:   "story",
	Short: "物語プロジェクトを管理するのだ（作成・一覧・詳細・削除）。",
	Long: `絵本の物語づくりは「プロジェクト」単位で進むのだ。
new で空のプロジェクトを作り、phase run/approve でフェーズを進め、
show で進行状況をいつでも確認できるのだよ。`,
}

var storyNewCmd = &cobra.Command{
	Use:     "new [name]",
	Short:   "新しい物語プロジェクトを作成するのだ。",
	Example: `  ap-ehon-go story new "ミラと月明かりの扉" --brief "眠れない夜、月の光が扉になる話"`,
	Args:    cobra.ExactArgs(1),
	RunE:    storyNewCommand,
}

var storyListCmd = &cobra.Command{
	Use:   "list",
	Short: "物語プロジェクトの一覧を表示するのだ。",
	Args:  cobra.NoArgs,
	RunE:  storyListCommand,
}

var storyShowCmd = &cobra.Command{
	Use:   "show [story-id]",
	Short: "物語プロジェクトの進行状況を表示するのだ。",
	Args:  cobra.ExactArgs(1),
	RunE:  storyShowCommand,
}

var storyDeleteCmd = &cobra.Command{
	Use:   "delete [story-id]",
	Short: "物語プロジェクトを削除するのだ。",
	Args:  cobra.ExactArgs(1),
	RunE:  storyDeleteCommand,
}

func init() {
	storyNewCmd.Flags().StringVar(&opts.Brief, "brief", "", "物語のあらすじメモなのだ。フェーズ0の生成に使われるのだよ。")
	storyCmd.AddCommand(storyNewCmd, storyListCmd, storyShowCmd, storyDeleteCmd)
}

func storyNewCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	appCtx, err := newAppContext(ctx)
	if err != nil {
		return err
	}
	defer closeAppContext(ctx, appCtx)

	runner, err := appCtx.Manager.BuildPhaseRunner()
	if err != nil {
		return fmt.Errorf("PhaseRunnerの構築に失敗したのだ: %w", err)
	}

	story, err := runner.CreateStory(ctx, args[0], opts.Brief)
	if err != nil {
		return fmt.Errorf("物語プロジェクトの作成に失敗したのだ: %w", err)
	}

	slog.Info("物語プロジェクトを作成したのだ！", "story_id", story.ID, "name", story.Name)
	fmt.Printf("story ID: %s\n", story.ID)
	fmt.Println("次は `ap-ehon-go phase run 0 --story <ID>` でコンセプトづくりなのだ。")
	return nil
}

func storyListCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	appCtx, err := newAppContext(ctx)
	if err != nil {
		return err
	}
	defer closeAppContext(ctx, appCtx)

	runner, err := appCtx.Manager.BuildPhaseRunner()
	if err != nil {
		return fmt.Errorf("PhaseRunnerの構築に失敗したのだ: %w", err)
	}

	index, err := runner.ListStories(ctx)
	if err != nil {
		return fmt.Errorf("一覧の取得に失敗したのだ: %w", err)
	}

	if len(index.Stories) == 0 {
		fmt.Println("物語プロジェクトはまだないのだ。`ap-ehon-go story new <name>` から始めるのだよ。")
		return nil
	}

	for _, entry := range index.Stories {
		marker := " "
		if entry.TemplateReady {
			marker = "*"
		}
		suffix := ""
		if entry.IsLegacy {
			suffix = " (同梱サンプル)"
		}
		fmt.Printf("%s %-36s  phase %d %-14s %s%s\n",
			marker, entry.ID, entry.CurrentPhase, pipeline.PhaseName(entry.CurrentPhase), entry.Name, suffix)
	}
	fmt.Println("\n* はテンプレート変換済み（sketch 工程に進めるもの）なのだ。")
	return nil
}

func storyShowCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	appCtx, err := newAppContext(ctx)
	if err != nil {
		return err
	}
	defer closeAppContext(ctx, appCtx)

	runner, err := appCtx.Manager.BuildPhaseRunner()
	if err != nil {
		return fmt.Errorf("PhaseRunnerの構築に失敗したのだ: %w", err)
	}

	story, err := runner.GetStory(ctx, args[0])
	if err != nil {
		return fmt.Errorf("プロジェクトの取得に失敗したのだ: %w", err)
	}

	printStoryStatus(story)
	return nil
}

// printStoryStatus はプロジェクトの進行状況を一枚にまとめて表示するのだ。
// story show と phase status の両方から使われるのだよ。
func printStoryStatus(story *pipeline.StoryProject) {
	fmt.Printf("ID:     %s\n", story.ID)
	fmt.Printf("名前:   %s\n", story.Name)
	if story.Brief != "" {
		fmt.Printf("メモ:   %s\n", story.Brief)
	}
	fmt.Printf("現在地: phase %d (%s)\n\n", story.CurrentPhase, pipeline.PhaseName(story.CurrentPhase))

	for _, num := range pipeline.PhaseOrder {
		state := story.Phase(num)
		line := fmt.Sprintf("  [%d] %-14s %s", num, pipeline.PhaseName(num), state.Status)
		if state.RevisionNotes != "" {
			line += "  (修正メモあり)"
		}
		fmt.Println(line)
	}

	if story.TemplateReady {
		fmt.Println("\nテンプレート変換済みなのだ。`ap-ehon-go sketch --story " + story.ID + "` に進めるのだよ。")
	}
}

func storyDeleteCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	appCtx, err := newAppContext(ctx)
	if err != nil {
		return err
	}
	defer closeAppContext(ctx, appCtx)

	runner, err := appCtx.Manager.BuildPhaseRunner()
	if err != nil {
		return fmt.Errorf("PhaseRunnerの構築に失敗したのだ: %w", err)
	}

	if err := runner.DeleteStory(ctx, args[0]); err != nil {
		return fmt.Errorf("プロジェクトの削除に失敗したのだ: %w", err)
	}

	slog.Info("物語プロジェクトを削除したのだ", "story_id", args[0])
	return nil
}
