package generator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shouni/go-ehon-kit/pkg/gemini"
)

// fetchReference は参照画像を取得して MIME タイプ付きで返します。
// 結果はURL単位でキャッシュし、同一URLへの同時要求は singleflight で
// 1回の取得にまとめます。
func (bc *BookComposer) fetchReference(ctx context.Context, url string) (gemini.ImageData, error) {
	// RLock でキャッシュ（マップ）を素早く確認
	bc.mu.RLock()
	cached, ok := bc.refCache[url]
	bc.mu.RUnlock()
	if ok {
		return cached, nil
	}

	val, err, _ := bc.fetchGroup.Do(url, func() (interface{}, error) {
		// singleflight で待機中に他のゴルーチンが取得を完了させている
		// 可能性があるため、コールバック内で再度マップを確認
		bc.mu.RLock()
		existing, ok := bc.refCache[url]
		bc.mu.RUnlock()
		if ok {
			return existing, nil
		}

		raw, fetchErr := bc.readAll(ctx, url)
		if fetchErr != nil {
			return nil, fetchErr
		}

		img := gemini.ImageData{Data: raw, MIMEType: http.DetectContentType(raw)}
		bc.mu.Lock()
		bc.refCache[url] = img
		bc.mu.Unlock()
		return img, nil
	})
	if err != nil {
		return gemini.ImageData{}, err
	}

	img, ok := val.(gemini.ImageData)
	if !ok {
		return gemini.ImageData{}, fmt.Errorf("unexpected return type from singleflight: %T", val)
	}
	return img, nil
}

// readAll は http(s) のURLをHTTPクライアントで、それ以外のパスを
// リーダー経由（ローカル/GCS）で読み出します。
func (bc *BookComposer) readAll(ctx context.Context, url string) ([]byte, error) {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("参照画像のリクエスト生成に失敗したのだ: %w", err)
		}
		resp, err := bc.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("参照画像の取得に失敗したのだ (%s): %w", url, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("参照画像の取得に失敗したのだ (%s): status %d", url, resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}

	rc, err := bc.reader.Open(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("参照画像のオープンに失敗したのだ (%s): %w", url, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// collectReferences は複数URLの参照画像をまとめて取得します。
// 空のURLは無視し、取得できないURLは警告を出してスキップして
// 残りの参照だけで生成を続けます。
func (bc *BookComposer) collectReferences(ctx context.Context, urls []string) []gemini.ImageData {
	refs := make([]gemini.ImageData, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		img, err := bc.fetchReference(ctx, u)
		if err != nil {
			slog.Warn("参照画像が取得できないため、この参照なしで続行します", "url", u, "error", err)
			continue
		}
		refs = append(refs, img)
	}
	return refs
}
