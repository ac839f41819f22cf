package prompts

import (
	"strings"
	"testing"

	"github.com/shouni/go-ehon-kit/pkg/domain"
)

func scenarioBible() *domain.PropBible {
	return &domain.PropBible{
		StoryID: "moonlit-door",
		Props: map[string]domain.Prop{
			"magical_door": {Description: "an old wooden door with a glowing crescent handle", Appearances: []int{2, 3}},
		},
		Environments: map[string]domain.Environment{
			"backyard_garden": {Description: "a small backyard garden with tomato plants and a crooked wooden fence", Appearances: []int{1, 2}},
		},
	}
}

func scenarioPage() domain.Page {
	return domain.Page{
		Page:            2,
		Scene:           "discovering a small glowing door hidden behind the tomato plants",
		CompositionHint: domain.HintMedium,
		Layout:          domain.LayoutBottomText,
		Props:           []string{"magical_door"},
		Environment:     "backyard_garden",
	}
}

func TestBuildSketchPrompt_Scenario(t *testing.T) {
	c := NewComposer("")
	prompt := c.BuildSketchPrompt(scenarioPage(), scenarioBible())

	// 順序: 配置指示+シーン → 小道具 → 環境 → 構図句 → レイアウト句 → スタイル
	wantInOrder := []string{
		"white outline placeholder figure",
		"discovering a small glowing door",
		"Key objects: an old wooden door with a glowing crescent handle",
		"Environment: a small backyard garden",
		compositionPhrases[domain.HintMedium],
		layoutPhrases[domain.LayoutBottomText],
		DefaultSketchStyle,
	}
	last := -1
	for _, want := range wantInOrder {
		idx := strings.Index(prompt, want)
		if idx < 0 {
			t.Fatalf("'%s' がプロンプトに含まれていないのだ:\n%s", want, prompt)
		}
		if idx < last {
			t.Errorf("'%s' の出現順が違うのだ:\n%s", want, prompt)
		}
		last = idx
	}

	if !strings.HasSuffix(prompt, ".") {
		t.Errorf("終端ピリオドがないのだ: %s", prompt)
	}
	if strings.HasSuffix(prompt, "..") {
		t.Errorf("終端ピリオドが重複しているのだ: %s", prompt)
	}
}

func TestBuildSketchPrompt_Deterministic(t *testing.T) {
	c := NewComposer("")
	first := c.BuildSketchPrompt(scenarioPage(), scenarioBible())
	second := c.BuildSketchPrompt(scenarioPage(), scenarioBible())
	if first != second {
		t.Error("同じ入力から異なるプロンプトが生成されました。決定論的ではありません")
	}
}

func TestBuildSketchPrompt_CompositionOverride(t *testing.T) {
	c := NewComposer("")
	bible := scenarioBible()
	bible.Compositions = map[int]string{2: "Bird's-eye view of the entire garden from above the fence"}

	prompt := c.BuildSketchPrompt(scenarioPage(), bible)

	if !strings.Contains(prompt, "Bird's-eye view of the entire garden from above the fence") {
		t.Errorf("上書き指示がそのまま現れていないのだ:\n%s", prompt)
	}
	if strings.Contains(prompt, compositionPhrases[domain.HintMedium]) {
		t.Errorf("上書き時にヒント由来の既定句が混入したのだ:\n%s", prompt)
	}
	if strings.Contains(prompt, layoutPhrases[domain.LayoutBottomText]) {
		t.Errorf("上書きは構図の全権を持つのでレイアウト句も出さないのだ:\n%s", prompt)
	}
}

func TestBuildSketchPrompt_MissingDataDegrades(t *testing.T) {
	c := NewComposer("")

	t.Run("小道具と環境が無ければ文ごと省略されること", func(t *testing.T) {
		page := domain.Page{Page: 9, Scene: "walking along a quiet road"}
		prompt := c.BuildSketchPrompt(page, &domain.PropBible{})

		if strings.Contains(prompt, "Key objects") {
			t.Errorf("空の小道具セクションが出力されたのだ:\n%s", prompt)
		}
		if strings.Contains(prompt, "Environment:") {
			t.Errorf("空の環境セクションが出力されたのだ:\n%s", prompt)
		}
	})

	t.Run("nilの設定資料集でも落ちないこと", func(t *testing.T) {
		page := domain.Page{Page: 1, Scene: "a quiet morning"}
		prompt := c.BuildSketchPrompt(page, nil)
		if !strings.Contains(prompt, "a quiet morning") {
			t.Errorf("シーンが含まれていないのだ: %s", prompt)
		}
	})

	t.Run("未知の小道具キーは黙って読み飛ばすこと", func(t *testing.T) {
		page := scenarioPage()
		page.Props = []string{"unknown_prop"}
		prompt := c.BuildSketchPrompt(page, scenarioBible())
		if strings.Contains(prompt, "Key objects") {
			t.Errorf("未知キーだけなら小道具の文は出さないのだ:\n%s", prompt)
		}
	})
}

func TestBuildSketchPrompt_LayoutFallback(t *testing.T) {
	c := NewComposer("")

	// 構図ヒントなしの場合、レイアウト句が構図スロットへ繰り上がり重複しない
	page := domain.Page{Page: 4, Scene: "s", Layout: domain.LayoutBottomText}
	prompt := c.BuildSketchPrompt(page, &domain.PropBible{})

	if n := strings.Count(prompt, layoutPhrases[domain.LayoutBottomText]); n != 1 {
		t.Errorf("レイアウト句はちょうど1回のはずなのだ (実際 %d回):\n%s", n, prompt)
	}
}

func TestBuildSketchPrompt_GlobalStyleWins(t *testing.T) {
	c := NewComposer("")
	bible := scenarioBible()
	bible.GlobalStyle = "Colored pencil illustration with grainy texture"

	prompt := c.BuildSketchPrompt(scenarioPage(), bible)
	if !strings.Contains(prompt, "Colored pencil illustration with grainy texture") {
		t.Errorf("globalStyle が使われていないのだ:\n%s", prompt)
	}
	if strings.Contains(prompt, DefaultSketchStyle) {
		t.Errorf("globalStyle がある場合は既定スタイルを出さないのだ:\n%s", prompt)
	}
}
