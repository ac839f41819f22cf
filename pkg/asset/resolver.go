package asset

import (
	"fmt"
	"regexp"

	"github.com/shouni/go-utils/urlpath"
)

const (
	// DefaultImageDir は生成された画像を格納するデフォルトのディレクトリ名です。
	DefaultImageDir = "images"
	// DefaultBookFileName は作業単位（ブック）のデフォルト JSON ファイル名です。
	DefaultBookFileName = "book.json"
	// DefaultIndexFileName は人間が確認するための索引 Markdown のファイル名です。
	DefaultIndexFileName = "index.md"
	// DefaultCharacterRefName はキャラクターリファレンスシートのファイル名です。
	DefaultCharacterRefName = "character_ref.png"
)

var (
	// SketchFileRegex は下絵画像 (page_01_sketch.png 等) に一致します
	SketchFileRegex = regexp.MustCompile(`^page_\d{2}_sketch\.png$`)
	// PageFileRegex は本絵画像 (page_01.png 等) に一致します
	PageFileRegex = regexp.MustCompile(`^page_\d{2}\.png$`)
)

// SketchImageName はページ番号から下絵のファイル名を生成します。
// 例: 3 -> "page_03_sketch.png"
func SketchImageName(page int) string {
	return fmt.Sprintf("page_%02d_sketch.png", page)
}

// FinalImageName はページ番号から本絵のファイル名を生成します。
// 例: 3 -> "page_03.png"
func FinalImageName(page int) string {
	return fmt.Sprintf("page_%02d.png", page)
}

// IsBundleImage はファイル名がこのキットの生成画像の命名規則に
// 一致するかを返します。索引 Markdown の相対リンク化の判定に使います。
func IsBundleImage(fileName string) bool {
	if fileName == DefaultCharacterRefName {
		return true
	}
	return SketchFileRegex.MatchString(fileName) || PageFileRegex.MatchString(fileName)
}

// ResolveOutputPath は、ベースとなるディレクトリパスとファイル名から、
// GCS/ローカルを考慮した最終的な出力パスを生成します。
func ResolveOutputPath(baseDir, fileName string) (string, error) {
	return urlpath.ResolvePath(baseDir, fileName)
}

// ResolveBaseURL は、入力パス（URLまたはローカルパス）から
// 親ディレクトリのパスを解決し、末尾がセパレータで終わるように正規化します。
func ResolveBaseURL(rawPath string) string {
	return urlpath.ResolveBaseDir(rawPath)
}

// GenerateIndexedPath は、指定されたベースパスの拡張子の前に連番を挿入し、
// 新しいパス文字列を生成します。index は1以上の整数である必要があります。
// 例: "path/to/image.png", 1 -> "path/to/image_1.png"
func GenerateIndexedPath(basePath string, index int) (string, error) {
	return urlpath.GenerateIndexedPath(basePath, index)
}
