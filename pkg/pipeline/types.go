// Package pipeline は絵本コンテンツの5フェーズ制作パイプラインを
// 司る状態機械です。フェーズ番号は {0,1,2,4,5} の固定集合で、
// 3番（原稿の自己監査）はフェーズ2の生成プロンプトに折り込み済みの
// 欠番として保たれています。呼び出し側はこの番号をそのまま使います。
package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// フェーズ番号の固定集合なのだ。
const (
	PhaseConcept     = 0
	PhaseStoryboard  = 1
	PhaseManuscript  = 2
	PhasePropsBible  = 4
	PhasePanelBriefs = 5
)

// PhaseOrder は承認が進む固定順序です。
var PhaseOrder = []int{PhaseConcept, PhaseStoryboard, PhaseManuscript, PhasePropsBible, PhasePanelBriefs}

// Status はフェーズの進行状態です。
type Status string

const (
	StatusPending    Status = "pending"
	StatusGenerating Status = "generating"
	StatusReview     Status = "review"
	StatusApproved   Status = "approved"
)

// 状態遷移の失敗を呼び出し側が分岐できるようにする番兵エラーなのだ。
var (
	ErrStoryNotFound      = errors.New("ストーリーが見つからないのだ")
	ErrUnknownPhase       = errors.New("未知のフェーズ番号なのだ")
	ErrDependencyNotReady = errors.New("依存フェーズがまだ承認されていないのだ")
	ErrNotInReview        = errors.New("レビュー状態のフェーズではないのだ")
	ErrEmptyNotes         = errors.New("修正メモが空なのだ")
	ErrMissingPhases      = errors.New("テンプレート化に必要なフェーズが揃っていないのだ")
)

// PhaseState はフェーズ1つ分の進行状態と成果物を保持します。
// Output は成功した生成でのみ差し替わり、部分的な出力は決して
// 永続化されません。
type PhaseState struct {
	Status        Status          `json:"status"`
	Output        json.RawMessage `json:"output,omitempty"`
	RevisionNotes string          `json:"revision_notes,omitempty"`
	GeneratedAt   *time.Time      `json:"generated_at,omitempty"`
	ApprovedAt    *time.Time      `json:"approved_at,omitempty"`
}

// HasOutput は成果物が保存済みかどうかを返すのだ。
func (ps *PhaseState) HasOutput() bool {
	return ps != nil && len(ps.Output) > 0
}

// StoryProject は1つの物語の制作プロジェクト全体です。
type StoryProject struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Brief         string              `json:"brief,omitempty"`
	Phases        map[int]*PhaseState `json:"phases"`
	CurrentPhase  int                 `json:"current_phase"`
	TemplateReady bool                `json:"template_ready"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// Phase は番号のフェーズ状態を返し、未初期化なら pending で補います。
func (p *StoryProject) Phase(num int) *PhaseState {
	if p.Phases == nil {
		p.Phases = make(map[int]*PhaseState)
	}
	if _, ok := p.Phases[num]; !ok {
		p.Phases[num] = &PhaseState{Status: StatusPending}
	}
	return p.Phases[num]
}

// StoryIndexEntry はストーリー一覧の1行分の非正規化ビューです。
type StoryIndexEntry struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	CurrentPhase  int    `json:"current_phase"`
	TemplateReady bool   `json:"template_ready"`
	IsLegacy      bool   `json:"is_legacy,omitempty"`
}

// StoriesIndex はプロジェクト保存のたびに書き直される一覧なのだ。
type StoriesIndex struct {
	Stories []StoryIndexEntry `json:"stories"`
}

// Output はフェーズ成果物が満たす契約です。フェーズ番号をキーに
// した仕様テーブル経由でのみ生成・復号されます。
type Output interface {
	Validate() error
}

// ConceptOutput はフェーズ0（コンセプト）の成果物です。
type ConceptOutput struct {
	Title        string   `json:"title"`
	Premise      string   `json:"premise"`
	Themes       []string `json:"themes,omitempty"`
	EmotionalArc string   `json:"emotional_arc,omitempty"`
	Setting      string   `json:"setting,omitempty"`
	TargetAge    string   `json:"target_age,omitempty"`
	Tone         string   `json:"tone,omitempty"`
}

func (o *ConceptOutput) Validate() error {
	if strings.TrimSpace(o.Title) == "" {
		return fmt.Errorf("コンセプトに題名がないのだ")
	}
	if strings.TrimSpace(o.Premise) == "" {
		return fmt.Errorf("コンセプトに前提がないのだ")
	}
	return nil
}

// StoryboardSpread は見開き1つ分の構成案です。
type StoryboardSpread struct {
	Spread     int    `json:"spread"`
	Summary    string `json:"summary"`
	StoryBeat  string `json:"story_beat,omitempty"`
	VisualIdea string `json:"visual_idea,omitempty"`
}

// StoryboardOutput はフェーズ1（ストーリーボード）の成果物です。
type StoryboardOutput struct {
	Spreads []StoryboardSpread `json:"spreads"`
}

func (o *StoryboardOutput) Validate() error {
	if len(o.Spreads) == 0 {
		return fmt.Errorf("ストーリーボードに見開きが1つもないのだ")
	}
	return nil
}

// ManuscriptSpread は見開き1つ分の本文と挿絵メモです。
type ManuscriptSpread struct {
	Spread            int    `json:"spread"`
	Text              string `json:"text"`
	IllustrationNotes string `json:"illustration_notes,omitempty"`
}

// ManuscriptOutput はフェーズ2（原稿）の成果物です。読み聞かせ
// 向けの自己監査はこのフェーズの生成プロンプトに折り込まれています。
type ManuscriptOutput struct {
	Spreads []ManuscriptSpread `json:"spreads"`
}

func (o *ManuscriptOutput) Validate() error {
	if len(o.Spreads) == 0 {
		return fmt.Errorf("原稿に見開きが1つもないのだ")
	}
	for _, s := range o.Spreads {
		if strings.TrimSpace(s.Text) == "" {
			return fmt.Errorf("見開き%dの本文が空なのだ", s.Spread)
		}
	}
	return nil
}

// PropsEntry は設定資料集の1項目（脇役・小道具・環境・モチーフ）です。
type PropsEntry struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	AppearsInSpreads []int  `json:"appears_in_spreads,omitempty"`
}

// PropsBibleOutput はフェーズ4（設定資料集）の成果物です。
type PropsBibleOutput struct {
	SupportingCharacters []PropsEntry `json:"supporting_characters,omitempty"`
	Objects              []PropsEntry `json:"objects,omitempty"`
	Environments         []PropsEntry `json:"environments,omitempty"`
	VisualMotifs         []PropsEntry `json:"visual_motifs,omitempty"`
	GlobalStyle          string       `json:"global_style,omitempty"`
}

func (o *PropsBibleOutput) Validate() error {
	// 全セクションが空の資料集は生成失敗として扱うのだ
	if len(o.SupportingCharacters) == 0 && len(o.Objects) == 0 &&
		len(o.Environments) == 0 && len(o.VisualMotifs) == 0 && o.GlobalStyle == "" {
		return fmt.Errorf("設定資料集が空なのだ")
	}
	return nil
}

// PanelBrief は見開き1つ分の濃密なパネル指示書です。
type PanelBrief struct {
	Spread           int      `json:"spread"`
	Scene            string   `json:"scene"`
	Environment      string   `json:"environment,omitempty"`
	CharacterStaging string   `json:"character_staging,omitempty"`
	Objects          []string `json:"objects,omitempty"`
	VisualMotifs     string   `json:"visual_motifs,omitempty"`
	Mood             string   `json:"mood,omitempty"`
	ImagePrompt      string   `json:"image_prompt,omitempty"`
}

// PanelBriefsOutput はフェーズ5（パネル指示書）の成果物です。
type PanelBriefsOutput struct {
	Briefs []PanelBrief `json:"briefs"`
}

func (o *PanelBriefsOutput) Validate() error {
	if len(o.Briefs) == 0 {
		return fmt.Errorf("パネル指示書が1つもないのだ")
	}
	return nil
}
