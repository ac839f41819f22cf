package generator

import (
	"context"
	"io"

	"github.com/shouni/go-ehon-kit/pkg/gemini"
)

// ImageClient は画像生成1回分の呼び出しを抽象化するインターフェースです。
type ImageClient interface {
	GenerateImage(ctx context.Context, req gemini.ImageRequest) (*gemini.ImageResult, error)
}

// AssetReader は参照画像の読み出し元（ローカル/GCS）を抽象化します。
type AssetReader interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// AssetWriter は生成画像の書き込み先（ローカル/GCS）を抽象化します。
type AssetWriter interface {
	Write(ctx context.Context, path string, data io.Reader, contentType string) error
}
