package pipeline

import (
	"errors"
	"strings"
	"testing"
)

func TestSpecFor(t *testing.T) {
	t.Run("既知の番号は仕様行が引けること", func(t *testing.T) {
		for _, num := range PhaseOrder {
			spec, err := specFor(num)
			if err != nil {
				t.Errorf("フェーズ%dの仕様行が引けないのだ: %v", num, err)
				continue
			}
			if spec.Number != num {
				t.Errorf("期待値 %d, 実際の値 %d", num, spec.Number)
			}
		}
	})

	t.Run("欠番の3は未知フェーズとして弾かれること", func(t *testing.T) {
		if _, err := specFor(3); !errors.Is(err, ErrUnknownPhase) {
			t.Errorf("ErrUnknownPhase が返るはずなのだ: %v", err)
		}
	})
}

func TestNextPhase(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{name: "コンセプトの次は絵コンテ", in: PhaseConcept, want: PhaseStoryboard},
		{name: "絵コンテの次は原稿", in: PhaseStoryboard, want: PhaseManuscript},
		{name: "原稿の次は欠番を跨いで設定資料集", in: PhaseManuscript, want: PhasePropsBible},
		{name: "設定資料集の次はパネル指示書", in: PhasePropsBible, want: PhasePanelBriefs},
		{name: "最終フェーズは自分自身に留まる", in: PhasePanelBriefs, want: PhasePanelBriefs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextPhase(tt.in); got != tt.want {
				t.Errorf("期待値 %d, 実際の値 %d", tt.want, got)
			}
		})
	}
}

func TestSystemPrompt(t *testing.T) {
	for _, num := range PhaseOrder {
		spec, err := specFor(num)
		if err != nil {
			t.Fatalf("フェーズ%dの仕様行が引けないのだ: %v", num, err)
		}
		prompt, err := spec.systemPrompt()
		if err != nil {
			t.Fatalf("フェーズ%dのシステムプロンプト組み立てに失敗しました: %v", num, err)
		}
		if !strings.Contains(prompt, "### OUTPUT SCHEMA ###") {
			t.Errorf("フェーズ%dのプロンプトに出力スキーマ節がないのだ", num)
		}
		// 全テンプレートは主人公を {{name}} プレースホルダーでのみ参照する
		if !strings.Contains(prompt, "{{name}}") {
			t.Errorf("フェーズ%dのテンプレートに {{name}} 参照がないのだ", num)
		}
	}
}

func TestDecodePhaseOutput(t *testing.T) {
	t.Run("フェーズに応じた型へ復号されること", func(t *testing.T) {
		out, err := DecodePhaseOutput(PhaseManuscript, []byte(`{"spreads": [{"spread": 1, "text": "Hello."}]}`))
		if err != nil {
			t.Fatalf("復号に失敗しました: %v", err)
		}
		manuscript, ok := out.(*ManuscriptOutput)
		if !ok {
			t.Fatalf("ManuscriptOutput 型ではないのだ: %T", out)
		}
		if len(manuscript.Spreads) != 1 {
			t.Errorf("期待値 1見開き, 実際の値 %d見開き", len(manuscript.Spreads))
		}
	})

	t.Run("形の検証に失敗したら復号エラーになること", func(t *testing.T) {
		if _, err := DecodePhaseOutput(PhaseManuscript, []byte(`{"spreads": []}`)); err == nil {
			t.Error("空の原稿は検証エラーになるはずなのだ")
		}
	})
}
