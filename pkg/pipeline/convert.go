package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shouni/go-ehon-kit/pkg/domain"
)

// ConvertToTemplate は承認済みのフェーズ成果物を、本文生成が読む3つの
// ランタイム成果物（ページ一覧・設定資料集・プロンプト表）へ決定論的に
// 変換します。同じフェーズ成果物からは常にバイト一致の成果物が生まれ、
// 何度呼んでも安全です。フェーズ0と2の成果物は必須、4と5は任意ですが、
// 5が無い場合プロンプト表は書かず、読み出し側の合成に任せるのだ。
func (s *Service) ConvertToTemplate(ctx context.Context, storyID string) (*StoryProject, error) {
	project, err := s.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}

	if !project.Phase(PhaseConcept).HasOutput() || !project.Phase(PhaseManuscript).HasOutput() {
		return nil, fmt.Errorf("テンプレート化にはフェーズ%dと%dの成果物が必要なのだ: %w",
			PhaseConcept, PhaseManuscript, ErrMissingPhases)
	}

	manuscript, err := decodeManuscript(project)
	if err != nil {
		return nil, err
	}

	pages := buildPages(manuscript)
	if err := s.stores.Pages.Put(ctx, storyID, pages); err != nil {
		return nil, fmt.Errorf("ページ一覧の保存に失敗したのだ: %w", err)
	}

	bible, err := buildBible(storyID, project)
	if err != nil {
		return nil, err
	}
	if err := s.stores.Bibles.Put(ctx, storyID, bible); err != nil {
		return nil, fmt.Errorf("設定資料集の保存に失敗したのだ: %w", err)
	}

	promptsWritten := false
	if project.Phase(PhasePanelBriefs).HasOutput() {
		table, err := buildPromptTable(project, pages)
		if err != nil {
			return nil, err
		}
		if err := s.stores.Prompts.Put(ctx, storyID, table); err != nil {
			return nil, fmt.Errorf("プロンプト表の保存に失敗したのだ: %w", err)
		}
		promptsWritten = true
	}

	project.TemplateReady = true
	if err := s.saveProject(ctx, project); err != nil {
		return nil, err
	}

	slog.Info("ランタイムテンプレートへ変換しました",
		"story_id", storyID, "pages", len(pages),
		"props", len(bible.Props), "environments", len(bible.Environments),
		"prompts", promptsWritten)
	return project, nil
}

// decodeManuscript はフェーズ2成果物を取り出し、見開き番号順に整えます。
func decodeManuscript(project *StoryProject) (*ManuscriptOutput, error) {
	out, err := DecodePhaseOutput(PhaseManuscript, project.Phase(PhaseManuscript).Output)
	if err != nil {
		return nil, err
	}
	manuscript := out.(*ManuscriptOutput)
	sort.SliceStable(manuscript.Spreads, func(i, j int) bool {
		return manuscript.Spreads[i].Spread < manuscript.Spreads[j].Spread
	})
	return manuscript, nil
}

// buildPages は原稿の各見開きを1ページのレコードへ写します。
// 挿絵メモからの抽出はベストエフォートで、失敗したフィールドは既定値に
// 落ちます（構図 "medium"、配置 "bottom_text"、感情 "curious"）。
func buildPages(manuscript *ManuscriptOutput) domain.Pages {
	pages := make(domain.Pages, 0, len(manuscript.Spreads))
	for i, spread := range manuscript.Spreads {
		number := spread.Spread
		if number <= 0 {
			number = i + 1
		}
		notes := spread.IllustrationNotes
		pages = append(pages, domain.Page{
			Page:            number,
			Scene:           extractScene(notes, spread.Text),
			Emotion:         extractEmotion(notes),
			Action:          extractAction(notes),
			Setting:         extractSetting(notes),
			CompositionHint: extractCompositionHint(notes),
			Text:            strings.TrimSpace(spread.Text),
			Layout:          extractLayout(notes),
		})
	}
	return pages
}

// buildBible はフェーズ4成果物を設定資料集の形へ写します。環境以外の
// 全セクション（脇役・小道具・モチーフ）は小道具側に入り、表示名は
// スラッグ化してキーにします。フェーズ4が無い場合は空の資料集です。
func buildBible(storyID string, project *StoryProject) (*domain.PropBible, error) {
	bible := &domain.PropBible{
		StoryID:      storyID,
		Props:        map[string]domain.Prop{},
		Environments: map[string]domain.Environment{},
	}
	state := project.Phase(PhasePropsBible)
	if !state.HasOutput() {
		return bible, nil
	}

	out, err := DecodePhaseOutput(PhasePropsBible, state.Output)
	if err != nil {
		return nil, err
	}
	props := out.(*PropsBibleOutput)

	for _, section := range [][]PropsEntry{props.SupportingCharacters, props.Objects, props.VisualMotifs} {
		for _, entry := range section {
			key := domain.SlugKey(entry.Name)
			if key == "" || strings.TrimSpace(entry.Description) == "" {
				continue
			}
			bible.Props[key] = domain.Prop{
				Description: entry.Description,
				Appearances: entry.AppearsInSpreads,
			}
		}
	}
	for _, entry := range props.Environments {
		key := domain.SlugKey(entry.Name)
		if key == "" || strings.TrimSpace(entry.Description) == "" {
			continue
		}
		bible.Environments[key] = domain.Environment{
			Description: entry.Description,
			Appearances: entry.AppearsInSpreads,
		}
	}
	bible.GlobalStyle = strings.TrimSpace(props.GlobalStyle)
	bible.Normalize()
	return bible, nil
}

// buildPromptTable はフェーズ5の指示書をページ→プロンプトの平坦な表へ
// 写します。表はページ一覧の全ページを必ずカバーし、指示書が欠けた
// ページはページレコードから組んだ素朴なプロンプトで埋めるのだ。
func buildPromptTable(project *StoryProject, pages domain.Pages) (domain.PromptTable, error) {
	out, err := DecodePhaseOutput(PhasePanelBriefs, project.Phase(PhasePanelBriefs).Output)
	if err != nil {
		return nil, err
	}
	briefs := out.(*PanelBriefsOutput)

	bySpread := make(map[int]PanelBrief, len(briefs.Briefs))
	for _, b := range briefs.Briefs {
		bySpread[b.Spread] = b
	}

	table := make(domain.PromptTable, 0, len(pages))
	for _, page := range pages {
		prompt := ""
		if brief, ok := bySpread[page.Page]; ok {
			prompt = strings.TrimSpace(brief.ImagePrompt)
			if prompt == "" {
				prompt = strings.TrimSpace(brief.Scene)
			}
		}
		if prompt == "" {
			prompt = fallbackPagePrompt(page)
		}
		table = append(table, domain.PromptEntry{Page: page.Page, Prompt: prompt})
	}
	return table, nil
}

// fallbackPagePrompt は指示書を持たないページ用の素朴なプロンプトです。
func fallbackPagePrompt(page domain.Page) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{page.Scene, page.Action, page.Setting} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ". ")
}
