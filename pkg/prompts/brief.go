package prompts

import (
	"strings"

	"github.com/shouni/go-ehon-kit/pkg/domain"
)

// BuildBriefPrompt はパネル指示書からプロンプトを組み立てます。
// forStoryboard が真のときは主人公を白抜きシルエット扱いにし、
// 顔まわりの記述を文単位で取り除いた下絵向けの変種を返すのだ。
// セクションは SCENE, ENVIRONMENT, CHARACTERS, OBJECTS,
// VISUAL MOTIFS, MOOD, STYLE の順で、空のセクションは出しません。
func (c *Composer) BuildBriefPrompt(brief Brief, bible *domain.PropBible, forStoryboard bool) string {
	var lines []string

	if forStoryboard {
		lines = append(lines, placeholderInstruction+".")
	}

	appendSection(&lines, "SCENE", brief.Scene)
	appendSection(&lines, "ENVIRONMENT", c.briefEnvironment(brief, bible))
	appendSection(&lines, "CHARACTERS", c.briefCharacters(brief, forStoryboard))
	appendSection(&lines, "OBJECTS", strings.Join(brief.Objects, "; "))
	appendSection(&lines, "VISUAL MOTIFS", brief.VisualMotifs)
	appendSection(&lines, "MOOD", brief.Mood)
	if forStoryboard {
		appendSection(&lines, "STYLE", c.sketchStyle(bible))
	} else {
		appendSection(&lines, "STYLE", c.finalStyle(bible))
	}

	return strings.Join(lines, "\n")
}

// briefEnvironment は指示書の環境記述を優先し、空なら設定資料集の
// 登場ページ逆引きで補います。
func (c *Composer) briefEnvironment(brief Brief, bible *domain.PropBible) string {
	if brief.Environment != "" {
		return brief.Environment
	}
	if _, env := bible.EnvironmentForPage(brief.Page); env != nil {
		return env.Description
	}
	return ""
}

// briefCharacters はキャラクター配置の記述を変種ごとに整形します。
// 下絵変種で記述が全滅した場合はプレースホルダのみの配置文へ
// 置き換えるのだ。
func (c *Composer) briefCharacters(brief Brief, forStoryboard bool) string {
	staging := strings.TrimSpace(brief.CharacterStaging)
	if !forStoryboard {
		return SanitizeNameReferences(staging, "the character")
	}

	redacted := StripFacialSentences(staging)
	redacted = SanitizeNameReferences(redacted, PlaceholderLabel)
	if strings.TrimSpace(redacted) == "" {
		return "Stage " + PlaceholderLabel + " figure as the only character in the scene."
	}
	return redacted
}

// appendSection は空でないセクションだけを追記する内部ヘルパーなのだ。
func appendSection(lines *[]string, label, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	*lines = append(*lines, label+": "+text)
}
