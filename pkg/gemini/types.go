package gemini

// ImageData は参照画像1枚分のバイト列とMIMEタイプです。
type ImageData struct {
	Data     []byte
	MIMEType string
}

// ImageRequest は画像生成1回分の要求です。ReferenceImages には
// キャラクターシートや下絵など同一性維持のための画像を渡します。
// Seed が 0 の場合は未指定として扱うのだ。
type ImageRequest struct {
	Prompt          string
	ReferenceImages []ImageData
	AspectRatio     string
	OutputFormat    string
	Seed            int32
}

// ImageResult は生成された画像のバイト列とMIMEタイプです。
type ImageResult struct {
	Data     []byte
	MIMEType string
}

// 絵本の判型に合わせた既定のアスペクト比なのだ。
const (
	AspectRatioPage   = "3:4"
	AspectRatioSquare = "1:1"

	DefaultOutputFormat = "png"
)
