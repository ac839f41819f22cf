package pipeline

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
)

//go:embed templates/*.md
var templateFS embed.FS

// phaseSpec はフェーズ番号をキーにした仕様テーブルの1行です。
// 成果物の型分岐は条件分岐の連鎖ではなく、このテーブル参照で行います。
type phaseSpec struct {
	Number       int
	Name         string
	Dependencies []int
	templateFile string
	newOutput    func() Output

	promptOnce   sync.Once
	promptCached string
	promptErr    error
}

// phaseSpecs が生成の依存集合の唯一の定義場所なのだ。
var phaseSpecs = map[int]*phaseSpec{
	PhaseConcept: {
		Number:       PhaseConcept,
		Name:         "concept",
		Dependencies: nil,
		templateFile: "templates/phase0_concept.md",
		newOutput:    func() Output { return &ConceptOutput{} },
	},
	PhaseStoryboard: {
		Number:       PhaseStoryboard,
		Name:         "storyboard",
		Dependencies: []int{PhaseConcept},
		templateFile: "templates/phase1_storyboard.md",
		newOutput:    func() Output { return &StoryboardOutput{} },
	},
	PhaseManuscript: {
		Number:       PhaseManuscript,
		Name:         "manuscript",
		Dependencies: []int{PhaseConcept, PhaseStoryboard},
		templateFile: "templates/phase2_manuscript.md",
		newOutput:    func() Output { return &ManuscriptOutput{} },
	},
	PhasePropsBible: {
		Number:       PhasePropsBible,
		Name:         "props_bible",
		Dependencies: []int{PhaseConcept, PhaseManuscript},
		templateFile: "templates/phase4_props_bible.md",
		newOutput:    func() Output { return &PropsBibleOutput{} },
	},
	PhasePanelBriefs: {
		Number:       PhasePanelBriefs,
		Name:         "panel_briefs",
		Dependencies: []int{PhaseManuscript, PhasePropsBible},
		templateFile: "templates/phase5_panel_briefs.md",
		newOutput:    func() Output { return &PanelBriefsOutput{} },
	},
}

// specFor は番号から仕様行を引きます。欠番の3もここで弾かれるのだ。
func specFor(num int) (*phaseSpec, error) {
	spec, ok := phaseSpecs[num]
	if !ok {
		return nil, fmt.Errorf("フェーズ%d: %w", num, ErrUnknownPhase)
	}
	return spec, nil
}

// PhaseName は表示用のフェーズ名を返します。未知の番号は空文字です。
func PhaseName(num int) string {
	if spec, ok := phaseSpecs[num]; ok {
		return spec.Name
	}
	return ""
}

// NextPhase は固定順序上の次のフェーズを返します。
// 最終フェーズの次は自分自身であり、進みません。
func NextPhase(num int) int {
	for i, p := range PhaseOrder {
		if p == num {
			if i+1 < len(PhaseOrder) {
				return PhaseOrder[i+1]
			}
			return p
		}
	}
	return num
}

// systemPrompt は埋め込みテンプレートに出力スキーマを連結した
// システムプロンプトを返します。初回だけ組み立ててキャッシュするのだ。
func (s *phaseSpec) systemPrompt() (string, error) {
	s.promptOnce.Do(func() {
		data, err := templateFS.ReadFile(s.templateFile)
		if err != nil {
			s.promptErr = fmt.Errorf("フェーズ%dのテンプレート読み込みに失敗したのだ: %w", s.Number, err)
			return
		}

		var sb strings.Builder
		sb.WriteString(strings.TrimSpace(string(data)))
		if schema := schemaFor(s.newOutput()); schema != "" {
			sb.WriteString("\n\n### OUTPUT SCHEMA ###\n")
			sb.WriteString("Respond with a single JSON object matching this schema exactly:\n")
			sb.WriteString(schema)
		}
		s.promptCached = sb.String()
	})
	return s.promptCached, s.promptErr
}

// schemaFor は成果物型からJSONスキーマを反射生成します。
// 失敗時はスキーマ節を諦めてテンプレートだけで続行するのだ。
func schemaFor(out Output) string {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := r.Reflect(out)

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		slog.Warn("出力スキーマの生成に失敗しました", "error", err)
		return ""
	}
	return string(data)
}

// decodeOutput は仕様行の型で成果物を復号し、最小限の形を検証します。
func decodeOutput(spec *phaseSpec, data []byte) (Output, error) {
	out := spec.newOutput()
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("フェーズ%d成果物のデコードに失敗したのだ: %w", spec.Number, err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("フェーズ%d成果物の検証に失敗したのだ: %w", spec.Number, err)
	}
	return out, nil
}

// DecodePhaseOutput は保存済み成果物をフェーズに応じた型へ復号します。
// テンプレート変換やランタイム読み出しが使う公開入口なのだ。
func DecodePhaseOutput(num int, data []byte) (Output, error) {
	spec, err := specFor(num)
	if err != nil {
		return nil, err
	}
	return decodeOutput(spec, data)
}
