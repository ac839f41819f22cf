package config

import (
	"time"
)

// デフォルト値の定義
const (
	DefaultGeminiModel  = "gemini-3-flash-preview"
	DefaultImageModel   = "gemini-3-pro-image-preview"
	DefaultRateInterval = 10 * time.Second

	// DefaultStyleSuffix は本絵の推奨スタイルです。設定資料集の
	// globalStyle が存在する場合はそちらが優先されます。
	DefaultStyleSuffix = "Warm watercolor children's picture book illustration, soft pencil outlines, gentle pastel palette, storybook lighting, consistent character design, high resolution"
)

// Config は Go Ehon Kit の各 Runner を動作させるための基本設定です。
type Config struct {
	// --- AI Model Settings (Common) ---
	GeminiModel string // フェーズ生成・プロフィール抽出などテキスト系
	ImageModel  string // 下絵・本絵・リファレンスシートの画像系

	// --- Google AI (Gemini API) Settings ---
	GeminiAPIKey string

	// --- Generation Settings ---
	StyleSuffix  string
	RateInterval time.Duration

	// --- Batch Settings ---
	PageLimit      int    // 0 なら全ページ
	SilhouettePath string // 下絵の白抜きシルエット参照画像（省略可）

	// --- Timeout & Retries ---
	RequestTimeout time.Duration
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		GeminiModel:  DefaultGeminiModel,
		ImageModel:   DefaultImageModel,
		StyleSuffix:  DefaultStyleSuffix,
		RateInterval: DefaultRateInterval,
	}
}
