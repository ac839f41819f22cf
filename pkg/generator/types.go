package generator

import (
	"github.com/shouni/go-ehon-kit/pkg/domain"
)

// BatchOptions は一括生成の実行時オプションです。
type BatchOptions struct {
	// OutputDir は成果物を書き出すベースディレクトリ（ローカル/GCS）です。
	// 画像は配下の images ディレクトリへ入ります。
	OutputDir string

	// SilhouettePath は下絵に渡す白抜きシルエットの参照画像です。省略可。
	SilhouettePath string

	// PageLimit が正の場合、先頭からこの件数だけ生成します。
	PageLimit int
}

// BatchResult は一括生成の結果件数です。途中で失敗した場合も
// Generated には保存まで完了した件数が入ります。
type BatchResult struct {
	Generated int
	Total     int
}

// limitPages は上限が正の場合に先頭から上限件数のページだけを返します。
// 返り値は元のスライスを共有するため、URLの書き込みは元へ反映されます。
func limitPages(pages domain.Pages, limit int) domain.Pages {
	if limit > 0 && len(pages) > limit {
		return pages[:limit]
	}
	return pages
}
