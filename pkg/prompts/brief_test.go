package prompts

import (
	"strings"
	"testing"

	"github.com/shouni/go-ehon-kit/pkg/domain"
)

func testBrief() Brief {
	return Brief{
		Page:             3,
		Scene:            "The main character steps through the doorway into silver light",
		Environment:      "a moonlit forest of birch trees",
		CharacterStaging: "The main character stands at the center, one hand on the door. Her eyes are wide and a huge smile spreads across her face. She leans forward with curiosity.",
		Objects:          []string{"the magical door, half open", "an acorn lantern on the ground"},
		VisualMotifs:     "crescent moons repeated on the door and in the sky",
		Mood:             "hushed wonder",
	}
}

func TestBuildBriefPrompt_StoryboardVariant(t *testing.T) {
	c := NewComposer("")
	prompt := c.BuildBriefPrompt(testBrief(), nil, true)

	t.Run("セクションが規定の順で現れること", func(t *testing.T) {
		wantInOrder := []string{"SCENE:", "ENVIRONMENT:", "CHARACTERS:", "OBJECTS:", "VISUAL MOTIFS:", "MOOD:", "STYLE:"}
		last := -1
		for _, want := range wantInOrder {
			idx := strings.Index(prompt, want)
			if idx < 0 {
				t.Fatalf("セクション '%s' が無いのだ:\n%s", want, prompt)
			}
			if idx < last {
				t.Errorf("セクション '%s' の順序が違うのだ:\n%s", want, prompt)
			}
			last = idx
		}
	})

	t.Run("顔や表情の文が取り除かれること", func(t *testing.T) {
		for _, banned := range []string{"eyes", "smile", "face"} {
			if strings.Contains(strings.ToLower(prompt), banned) {
				t.Errorf("下絵変種に顔の言及 '%s' が残っているのだ:\n%s", banned, prompt)
			}
		}
	})

	t.Run("主人公の言い回しがプレースホルダ呼びになること", func(t *testing.T) {
		if strings.Contains(prompt, "The main character stands") {
			t.Errorf("CHARACTERS の主語が置換されていないのだ:\n%s", prompt)
		}
		if !strings.Contains(prompt, PlaceholderLabel) {
			t.Errorf("プレースホルダ呼びが無いのだ:\n%s", prompt)
		}
	})

	t.Run("先頭に配置指示が置かれること", func(t *testing.T) {
		if !strings.HasPrefix(prompt, placeholderInstruction) {
			t.Errorf("配置指示で始まっていないのだ:\n%s", prompt)
		}
	})

	t.Run("下絵スタイルが使われること", func(t *testing.T) {
		if !strings.Contains(prompt, DefaultSketchStyle) {
			t.Errorf("下絵スタイルが無いのだ:\n%s", prompt)
		}
	})
}

func TestBuildBriefPrompt_FinalVariant(t *testing.T) {
	c := NewComposer("")
	prompt := c.BuildBriefPrompt(testBrief(), nil, false)

	t.Run("表情の記述が保持されること", func(t *testing.T) {
		if !strings.Contains(prompt, "a huge smile spreads across") {
			t.Errorf("本絵変種で表情の記述が失われたのだ:\n%s", prompt)
		}
	})

	t.Run("主語が the character に統一されること", func(t *testing.T) {
		if strings.Contains(prompt, "The main character stands") {
			t.Errorf("CHARACTERS の主語が置換されていないのだ:\n%s", prompt)
		}
		if !strings.Contains(prompt, "the character stands") {
			t.Errorf("the character への置換が見当たらないのだ:\n%s", prompt)
		}
	})

	t.Run("配置指示は付かないこと", func(t *testing.T) {
		if strings.Contains(prompt, placeholderInstruction) {
			t.Errorf("本絵変種に下絵の配置指示が混入したのだ:\n%s", prompt)
		}
	})

	t.Run("本絵スタイルが使われること", func(t *testing.T) {
		if !strings.Contains(prompt, DefaultFinalStyle) {
			t.Errorf("本絵スタイルが無いのだ:\n%s", prompt)
		}
	})
}

func TestBuildBriefPrompt_EmptySectionsOmitted(t *testing.T) {
	c := NewComposer("")
	brief := Brief{Page: 1, Scene: "a simple scene"}

	prompt := c.BuildBriefPrompt(brief, nil, false)

	for _, label := range []string{"ENVIRONMENT:", "OBJECTS:", "VISUAL MOTIFS:", "MOOD:"} {
		if strings.Contains(prompt, label) {
			t.Errorf("空セクション '%s' が出力されたのだ:\n%s", label, prompt)
		}
	}
}

func TestBuildBriefPrompt_AllFacialStagingDegrades(t *testing.T) {
	c := NewComposer("")
	brief := testBrief()
	brief.CharacterStaging = "Her face is lit with joy. Wide eyes and a big smile."

	prompt := c.BuildBriefPrompt(brief, nil, true)

	if !strings.Contains(prompt, "CHARACTERS: Stage "+PlaceholderLabel) {
		t.Errorf("全滅時はプレースホルダのみの配置文になるはずなのだ:\n%s", prompt)
	}
}

func TestBuildBriefPrompt_EnvironmentFallsBackToBible(t *testing.T) {
	c := NewComposer("")
	brief := testBrief()
	brief.Environment = ""
	bible := &domain.PropBible{
		Environments: map[string]domain.Environment{
			"moonlit_forest": {Description: "a silver forest under a full moon", Appearances: []int{3}},
		},
	}

	prompt := c.BuildBriefPrompt(brief, bible, true)
	if !strings.Contains(prompt, "ENVIRONMENT: a silver forest under a full moon") {
		t.Errorf("設定資料集からの環境補完が効いていないのだ:\n%s", prompt)
	}
}
