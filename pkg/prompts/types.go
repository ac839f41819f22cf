package prompts

// Brief は1ページ分の濃密なパネル指示書の入力表現です。
// パイプライン経路のフェーズ5成果物から写し取られます。
type Brief struct {
	Page             int
	Scene            string
	Environment      string
	CharacterStaging string
	Objects          []string
	VisualMotifs     string
	Mood             string
}

// 既定スタイルと下絵用プレースホルダの定型句なのだ。
const (
	// DefaultSketchStyle は下絵（ストーリーボード）用の固定既定スタイルです。
	DefaultSketchStyle = "Black and white storyboard sketch, clean pencil line art, soft shading, no color"

	// DefaultFinalStyle は本絵用の既定スタイルです。通常は propBible の
	// globalStyle が優先されます。
	DefaultFinalStyle = "Warm watercolor children's picture book illustration, soft natural lighting, gentle colors"

	// PlaceholderLabel は下絵段階で主人公の代わりに置く白抜きシルエットの呼び名です。
	PlaceholderLabel = "the white outline placeholder"

	// placeholderInstruction は下絵プロンプトの先頭に置く配置指示です。
	placeholderInstruction = "Place the white outline placeholder figure from the reference image into this scene"
)

// compositionPhrases は構図ヒントから導く既定の構図句です。
var compositionPhrases = map[string]string{
	"wide":   "Wide establishing shot showing the full scene",
	"medium": "Medium shot framing the character within the scene",
	"close":  "Close-up framing on the character and the key detail",
}

// layoutPhrases はレイアウトから導く文字配置の指示句です。
var layoutPhrases = map[string]string{
	"bottom_text": "Keep the lower quarter of the frame calm and uncluttered for the printed text",
	"left_text":   "Keep the left third of the frame calm and uncluttered for the printed text",
	"right_text":  "Keep the right third of the frame calm and uncluttered for the printed text",
	"full_bleed":  "Full-bleed artwork reaching every edge of the page",
}
