package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/patrickmn/go-cache"
)

// CachedStore は読み出しの手前にインメモリキャッシュを挟むデコレータです。
// キャッシュにはエンコード済みJSONを保持し、取り出すたびに新しい値へ
// デコードすることで呼び出し元との共有状態を作らないのだ。
type CachedStore struct {
	inner DocStore
	cache *cache.Cache
}

// NewCached はストアをキャッシュ付きで包んで返します。
func NewCached(inner DocStore, c *cache.Cache) *CachedStore {
	return &CachedStore{inner: inner, cache: c}
}

// Get はキャッシュを優先し、ミス時だけ内側のストアへ読みに行きます。
func (s *CachedStore) Get(ctx context.Context, key string, v any) error {
	if raw, ok := s.cache.Get(key); ok {
		if data, ok := raw.([]byte); ok {
			if err := json.Unmarshal(data, v); err == nil {
				return nil
			}
			// 壊れたキャッシュは捨てて通常経路へ戻るのだ
			s.cache.Delete(key)
		}
	}

	if err := s.inner.Get(ctx, key, v); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		s.cache.Set(key, data, cache.DefaultExpiration)
	}
	return nil
}

// Put は内側へ書き込んだ後にキャッシュを更新します。
func (s *CachedStore) Put(ctx context.Context, key string, v any) error {
	if err := s.inner.Put(ctx, key, v); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("キャッシュ用エンコードに失敗したのだ (key=%s): %w", key, err)
	}
	s.cache.Set(key, data, cache.DefaultExpiration)
	return nil
}

// Delete は内側の削除とキャッシュの無効化を行います。
func (s *CachedStore) Delete(ctx context.Context, key string) error {
	if err := s.inner.Delete(ctx, key); err != nil {
		return err
	}
	s.cache.Delete(key)
	return nil
}

// List はキャッシュを介さず内側へ委譲するのだ。
func (s *CachedStore) List(ctx context.Context) ([]string, error) {
	return s.inner.List(ctx)
}
