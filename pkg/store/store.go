// Package store は絵本パイプラインの成果物を種類ごとに保存する
// 小さなキーバリューストア抽象を提供します。ロックは行わず、
// 書き込みは常に後勝ちです。
package store

import (
	"context"
	"errors"
)

// ErrNotFound はキーに対応するドキュメントが存在しないことを表すのだ。
var ErrNotFound = errors.New("対象のドキュメントが見つからないのだ")

// DocStore は1種類の成果物を保存するストアの契約です。
// v には対象型へのポインタを渡します。
type DocStore interface {
	Get(ctx context.Context, key string, v any) error
	Put(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]string, error)
}

// Set は成果物の種類ごとのストア一式なのだ。
// Index はストーリー一覧の非正規化ビューを1キーで保持します。
type Set struct {
	Projects DocStore
	Index    DocStore
	Pages    DocStore
	Bibles   DocStore
	Prompts  DocStore
}
