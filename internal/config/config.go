package config

import (
	"time"

	"github.com/shouni/go-utils/envutil"

	ehoncfg "github.com/shouni/go-ehon-kit/pkg/config"
)

// デフォルト値の定義なのだ
const (
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultDataDir       = "data/stories"               // 物語プロジェクト（フェーズ成果物）の保存先なのだ
	DefaultOutputDir     = "output/book"                // ブック一式（book.json と images/）の保存先なのだ
	DefaultMongoDatabase = "ehon"                       // MONGODB_URI 指定時に使うデータベース名なのだ
	DefaultProfileFile   = "examples/profile_mira.json" // 主人公プロフィールのサンプルJSONパスなのだ
)

// Config はアプリケーション全体の環境設定（APIキーや接続先）を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string
	MongoURI         string
	MongoDatabase    string
	StyleSuffix      string

	Options GenerateOptions
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	cfg := &Config{
		GeminiAPIKey:     envutil.GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:      envutil.GetEnv("GEMINI_MODEL", ehoncfg.DefaultGeminiModel),
		GeminiImageModel: envutil.GetEnv("IMAGE_GEMINI_MODEL", ehoncfg.DefaultImageModel),
		MongoURI:         envutil.GetEnv("MONGODB_URI", ""),
		MongoDatabase:    envutil.GetEnv("MONGODB_DATABASE", DefaultMongoDatabase),
		StyleSuffix:      envutil.GetEnv("IMAGE_STYLE_SUFFIX", ehoncfg.DefaultStyleSuffix),
	}
	return cfg
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// ストレージ・入出力関連
	DataDir   string // --data-dir: 物語プロジェクトの保存先（MONGODB_URI があればそちらが優先）
	OutputDir string // --output-dir: ブック成果物の保存先（ローカル or gs://...）

	// 工程の対象指定
	StoryID        string // --story
	ProfileFile    string // --profile
	PhotoFile      string // --photo
	ChildName      string // --name
	SilhouetteFile string // --silhouette: 下絵に添える白抜きシルエット参照画像

	// 生成制御
	PageLimit int    // --page-limit
	Notes     string // --notes: 差し戻し時の修正指示
	Brief     string // --brief: 物語作成時のあらすじメモ

	// AI挙動設定
	TextModel  string // --model: フェーズ生成・プロフィール抽出用のGeminiモデル
	ImageModel string // --image-model: 下絵・本絵用のGeminiモデル

	// 実行制御
	HTTPTimeout  time.Duration // --http-timeout
	RateInterval time.Duration // --rate-interval: 画像リクエストの最小間隔
}
