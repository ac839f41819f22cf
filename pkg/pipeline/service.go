package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shouni/go-ehon-kit/pkg/domain"
	"github.com/shouni/go-ehon-kit/pkg/store"
)

// indexKey はストーリー一覧を保持する固定キーなのだ。
const indexKey = "stories"

// StructuredClient は構造化JSONを生成する協調者の契約です。
// 画像付き呼び出し（プロフィール抽出など）と共通の形なのだ。
type StructuredClient interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, imageData []byte, imageMIME string) (string, error)
}

// Service はフェーズパイプラインの全操作の入口です。
// 同時実行の調停は行わず、保存は常に後勝ちです。
type Service struct {
	stores *store.Set
	ai     StructuredClient
}

// NewService は依存を検証してサービスを生成します。
func NewService(stores *store.Set, ai StructuredClient) (*Service, error) {
	if stores == nil {
		return nil, fmt.Errorf("ストア一式が設定されていないのだ")
	}
	if ai == nil {
		return nil, fmt.Errorf("構造化生成クライアントが設定されていないのだ")
	}
	return &Service{stores: stores, ai: ai}, nil
}

// CreateStory は全フェーズ pending の新しいプロジェクトを作ります。
func (s *Service) CreateStory(ctx context.Context, name, brief string) (*StoryProject, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("ストーリー名が空なのだ")
	}

	now := time.Now().UTC()
	project := &StoryProject{
		ID:           uuid.NewString(),
		Name:         name,
		Brief:        brief,
		Phases:       make(map[int]*PhaseState, len(PhaseOrder)),
		CurrentPhase: PhaseConcept,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, num := range PhaseOrder {
		project.Phases[num] = &PhaseState{Status: StatusPending}
	}

	if err := s.saveProject(ctx, project); err != nil {
		return nil, err
	}
	slog.Info("新しいストーリーを作成しました", "story_id", project.ID, "name", name)
	return project, nil
}

// GetStory はプロジェクトを読み出します。
func (s *Service) GetStory(ctx context.Context, storyID string) (*StoryProject, error) {
	var project StoryProject
	if err := s.stores.Projects.Get(ctx, storyID, &project); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", storyID, ErrStoryNotFound)
		}
		return nil, fmt.Errorf("プロジェクトの読み出しに失敗したのだ: %w", err)
	}
	return &project, nil
}

// ListStories は非正規化された一覧を返します。一覧がまだ無い場合は
// 組み込みストーリーだけの一覧を返すのだ。
func (s *Service) ListStories(ctx context.Context) (*StoriesIndex, error) {
	var idx StoriesIndex
	err := s.stores.Index.Get(ctx, indexKey, &idx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &StoriesIndex{Stories: []StoryIndexEntry{legacyIndexEntry()}}, nil
		}
		return nil, fmt.Errorf("ストーリー一覧の読み出しに失敗したのだ: %w", err)
	}
	return &idx, nil
}

// DeleteStory はプロジェクトと関連成果物を削除し、一覧から行を外します。
func (s *Service) DeleteStory(ctx context.Context, storyID string) error {
	if storyID == domain.LegacyStoryID {
		return fmt.Errorf("組み込みストーリーは削除できないのだ")
	}
	for _, st := range []store.DocStore{s.stores.Projects, s.stores.Pages, s.stores.Bibles, s.stores.Prompts} {
		if err := st.Delete(ctx, storyID); err != nil {
			return fmt.Errorf("ストーリー削除に失敗したのだ (story_id=%s): %w", storyID, err)
		}
	}
	if err := s.removeIndexEntry(ctx, storyID); err != nil {
		return err
	}
	slog.Info("ストーリーを削除しました", "story_id", storyID)
	return nil
}

// Generate はフェーズ成果物を生成してレビュー待ちにします。
// 依存フェーズが未承認なら何も起こさず、生成失敗時は直前の状態へ
// 戻して部分的な出力を残しません。
func (s *Service) Generate(ctx context.Context, storyID string, phase int) (*StoryProject, error) {
	spec, err := specFor(phase)
	if err != nil {
		return nil, err
	}
	project, err := s.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}

	// 依存フェーズの承認チェック
	for _, dep := range spec.Dependencies {
		if project.Phase(dep).Status != StatusApproved {
			return nil, fmt.Errorf("フェーズ%d(%s)はフェーズ%d(%s)の承認待ちなのだ: %w",
				phase, spec.Name, dep, PhaseName(dep), ErrDependencyNotReady)
		}
	}

	ps := project.Phase(phase)

	// 進行中であることを先に永続化する
	ps.Status = StatusGenerating
	if err := s.saveProject(ctx, project); err != nil {
		return nil, err
	}

	slog.Info("フェーズ生成を開始します",
		"story_id", storyID, "phase", phase, "phase_name", spec.Name,
		"revision", ps.RevisionNotes != "")

	systemPrompt, err := spec.systemPrompt()
	if err != nil {
		return nil, s.revertPhase(ctx, project, ps, err)
	}
	userPrompt := buildUserPrompt(project, spec, ps)

	raw, err := s.ai.CompleteJSON(ctx, systemPrompt, userPrompt, nil, "")
	if err != nil {
		return nil, s.revertPhase(ctx, project, ps,
			fmt.Errorf("フェーズ%d(%s)の生成に失敗したのだ: %w", phase, spec.Name, err))
	}

	out, err := decodeOutput(spec, []byte(ExtractJSON(raw)))
	if err != nil {
		return nil, s.revertPhase(ctx, project, ps,
			fmt.Errorf("モデル応答が不正な形式なのだ (応答抜粋: %q): %w", truncateString(raw, 200), err))
	}

	// 成功時のみ出力を差し替え、消費済みの修正メモを消す
	canonical, err := marshalOutput(out)
	if err != nil {
		return nil, s.revertPhase(ctx, project, ps, err)
	}
	now := time.Now().UTC()
	ps.Output = canonical
	ps.RevisionNotes = ""
	ps.GeneratedAt = &now
	ps.Status = StatusReview

	if err := s.saveProject(ctx, project); err != nil {
		return nil, err
	}
	slog.Info("フェーズ生成が完了しました", "story_id", storyID, "phase", phase, "phase_name", spec.Name)
	return project, nil
}

// Approve はレビュー待ちのフェーズを承認し、現在フェーズを固定順序の
// 次へ進めます。最終フェーズの承認では進みません。
func (s *Service) Approve(ctx context.Context, storyID string, phase int) (*StoryProject, error) {
	spec, err := specFor(phase)
	if err != nil {
		return nil, err
	}
	project, err := s.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}

	ps := project.Phase(phase)
	if ps.Status != StatusReview {
		return nil, fmt.Errorf("フェーズ%d(%s)は%s状態なのだ: %w", phase, spec.Name, ps.Status, ErrNotInReview)
	}

	now := time.Now().UTC()
	ps.Status = StatusApproved
	ps.ApprovedAt = &now
	project.CurrentPhase = NextPhase(phase)

	if err := s.saveProject(ctx, project); err != nil {
		return nil, err
	}
	slog.Info("フェーズを承認しました",
		"story_id", storyID, "phase", phase, "current_phase", project.CurrentPhase)
	return project, nil
}

// Reject はレビュー待ちのフェーズに修正メモを残します。出力は保持した
// ままレビュー状態に留まり、メモは次の生成が改訂指示として扱うのだ。
func (s *Service) Reject(ctx context.Context, storyID string, phase int, notes string) (*StoryProject, error) {
	spec, err := specFor(phase)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(notes) == "" {
		return nil, fmt.Errorf("フェーズ%d(%s)の差し戻し: %w", phase, spec.Name, ErrEmptyNotes)
	}
	project, err := s.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}

	ps := project.Phase(phase)
	if ps.Status != StatusReview {
		return nil, fmt.Errorf("フェーズ%d(%s)は%s状態なのだ: %w", phase, spec.Name, ps.Status, ErrNotInReview)
	}

	ps.RevisionNotes = strings.TrimSpace(notes)

	if err := s.saveProject(ctx, project); err != nil {
		return nil, err
	}
	slog.Info("フェーズを差し戻しました", "story_id", storyID, "phase", phase)
	return project, nil
}

// revertPhase は失敗したフェーズを最後の正常な状態へ戻して元エラーを
// 返します。以前の成果物があればレビュー状態（成果物は保持）、無ければ
// pending です。保存自体に失敗した場合はその旨も連結するのだ。
func (s *Service) revertPhase(ctx context.Context, project *StoryProject, ps *PhaseState, cause error) error {
	restored := StatusPending
	if ps.HasOutput() {
		restored = StatusReview
	}
	ps.Status = restored

	if err := s.saveProject(ctx, project); err != nil {
		return fmt.Errorf("%w (状態復元の保存にも失敗: %v)", cause, err)
	}
	slog.Warn("フェーズ生成に失敗したため状態を戻しました",
		"story_id", project.ID, "restored_status", restored, "error", cause)
	return cause
}

// saveProject は更新時刻を進めて保存し、一覧を同期します。
func (s *Service) saveProject(ctx context.Context, project *StoryProject) error {
	project.UpdatedAt = time.Now().UTC()
	if err := s.stores.Projects.Put(ctx, project.ID, project); err != nil {
		return fmt.Errorf("プロジェクトの保存に失敗したのだ: %w", err)
	}
	return s.upsertIndexEntry(ctx, StoryIndexEntry{
		ID:            project.ID,
		Name:          project.Name,
		CurrentPhase:  project.CurrentPhase,
		TemplateReady: project.TemplateReady,
	})
}

// upsertIndexEntry は一覧の該当行を差し替えます。組み込みストーリーの
// 行は常に先頭に保つのだ。
func (s *Service) upsertIndexEntry(ctx context.Context, entry StoryIndexEntry) error {
	var idx StoriesIndex
	if err := s.stores.Index.Get(ctx, indexKey, &idx); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("ストーリー一覧の読み出しに失敗したのだ: %w", err)
	}

	replaced := false
	for i := range idx.Stories {
		if idx.Stories[i].ID == entry.ID {
			idx.Stories[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		idx.Stories = append(idx.Stories, entry)
	}
	normalizeIndex(&idx)

	if err := s.stores.Index.Put(ctx, indexKey, &idx); err != nil {
		return fmt.Errorf("ストーリー一覧の保存に失敗したのだ: %w", err)
	}
	return nil
}

// removeIndexEntry は一覧から行を取り除きます。
func (s *Service) removeIndexEntry(ctx context.Context, storyID string) error {
	var idx StoriesIndex
	if err := s.stores.Index.Get(ctx, indexKey, &idx); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("ストーリー一覧の読み出しに失敗したのだ: %w", err)
	}

	kept := idx.Stories[:0]
	for _, e := range idx.Stories {
		if e.ID != storyID {
			kept = append(kept, e)
		}
	}
	idx.Stories = kept
	normalizeIndex(&idx)

	if err := s.stores.Index.Put(ctx, indexKey, &idx); err != nil {
		return fmt.Errorf("ストーリー一覧の保存に失敗したのだ: %w", err)
	}
	return nil
}

// normalizeIndex は組み込み行の存在を保証し、行順を安定させます。
func normalizeIndex(idx *StoriesIndex) {
	hasLegacy := false
	for _, e := range idx.Stories {
		if e.IsLegacy {
			hasLegacy = true
			break
		}
	}
	if !hasLegacy {
		idx.Stories = append(idx.Stories, legacyIndexEntry())
	}

	sort.Slice(idx.Stories, func(i, j int) bool {
		a, b := idx.Stories[i], idx.Stories[j]
		if a.IsLegacy != b.IsLegacy {
			return a.IsLegacy
		}
		return a.ID < b.ID
	})
}

// legacyIndexEntry は組み込みストーリーの一覧行なのだ。
func legacyIndexEntry() StoryIndexEntry {
	return StoryIndexEntry{
		ID:            domain.LegacyStoryID,
		Name:          domain.LegacyStoryName,
		CurrentPhase:  PhasePanelBriefs,
		TemplateReady: true,
		IsLegacy:      true,
	}
}

// buildUserPrompt は物語の文脈、承認済みの依存成果物、改訂指示を
// テンプレートの期待するセクション形式に組み立てます。
func buildUserPrompt(project *StoryProject, spec *phaseSpec, ps *PhaseState) string {
	var sb strings.Builder

	sb.WriteString("### STORY TITLE ###\n")
	sb.WriteString(project.Name)
	sb.WriteString("\n")

	if project.Brief != "" {
		sb.WriteString("\n### STORY BRIEF ###\n")
		sb.WriteString(project.Brief)
		sb.WriteString("\n")
	}

	for _, dep := range spec.Dependencies {
		depState := project.Phase(dep)
		if !depState.HasOutput() {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n### APPROVED %s (PHASE %d) ###\n", sectionLabel(dep), dep))
		sb.Write(depState.Output)
		sb.WriteString("\n")
	}

	if ps.RevisionNotes != "" {
		if ps.HasOutput() {
			sb.WriteString("\n### PREVIOUS OUTPUT ###\n")
			sb.Write(ps.Output)
			sb.WriteString("\n")
		}
		sb.WriteString("\n### REVISION REQUEST ###\n")
		sb.WriteString(ps.RevisionNotes)
		sb.WriteString("\n")
	}

	return sb.String()
}

// sectionLabel はフェーズ名を見出し用に整える内部ヘルパーなのだ。
func sectionLabel(num int) string {
	return strings.ToUpper(strings.ReplaceAll(PhaseName(num), "_", " "))
}

// marshalOutput は成果物を正規形のJSONへ直し直すのだ。キー順が安定する
// ため、同じ成果物からの変換は常に同じバイト列になります。
func marshalOutput(out Output) ([]byte, error) {
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("成果物の保存形式への変換に失敗したのだ: %w", err)
	}
	return data, nil
}
