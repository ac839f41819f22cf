package store

import (
	"context"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
)

func TestCachedStore_ServesFromCache(t *testing.T) {
	ctx := context.Background()
	inner, err := NewFileStore(t.TempDir(), "pages")
	if err != nil {
		t.Fatalf("ストア作成に失敗したのだ: %v", err)
	}
	s := NewCached(inner, cache.New(5*time.Minute, 15*time.Minute))

	if err := s.Put(ctx, "story-1", testDoc{Name: "cached", Count: 1}); err != nil {
		t.Fatalf("Put失敗なのだ: %v", err)
	}

	// 内側だけ消してもキャッシュから読めること
	if err := inner.Delete(ctx, "story-1"); err != nil {
		t.Fatalf("内側の削除に失敗したのだ: %v", err)
	}
	var out testDoc
	if err := s.Get(ctx, "story-1", &out); err != nil {
		t.Fatalf("キャッシュヒットするはずなのだ: %v", err)
	}
	if out.Name != "cached" {
		t.Errorf("期待値 'cached', 実際の値 '%s'", out.Name)
	}
}

func TestCachedStore_DeleteInvalidates(t *testing.T) {
	ctx := context.Background()
	inner, err := NewFileStore(t.TempDir(), "pages")
	if err != nil {
		t.Fatalf("ストア作成に失敗したのだ: %v", err)
	}
	s := NewCached(inner, cache.New(5*time.Minute, 15*time.Minute))

	if err := s.Put(ctx, "story-1", testDoc{Name: "x"}); err != nil {
		t.Fatalf("Put失敗なのだ: %v", err)
	}
	if err := s.Delete(ctx, "story-1"); err != nil {
		t.Fatalf("Delete失敗なのだ: %v", err)
	}

	var out testDoc
	if err := s.Get(ctx, "story-1", &out); err == nil {
		t.Error("削除後もキャッシュが残っているのだ")
	}
}

func TestCachedStore_FillsCacheOnMiss(t *testing.T) {
	ctx := context.Background()
	inner, err := NewFileStore(t.TempDir(), "pages")
	if err != nil {
		t.Fatalf("ストア作成に失敗したのだ: %v", err)
	}
	if err := inner.Put(ctx, "story-1", testDoc{Name: "warm"}); err != nil {
		t.Fatalf("Put失敗なのだ: %v", err)
	}

	s := NewCached(inner, cache.New(5*time.Minute, 15*time.Minute))

	// 1回目はミスして内側から読み、キャッシュが温まる
	var first testDoc
	if err := s.Get(ctx, "story-1", &first); err != nil {
		t.Fatalf("Get失敗なのだ: %v", err)
	}

	// 内側を消しても2回目はキャッシュから返ること
	if err := inner.Delete(ctx, "story-1"); err != nil {
		t.Fatalf("内側の削除に失敗したのだ: %v", err)
	}
	var second testDoc
	if err := s.Get(ctx, "story-1", &second); err != nil {
		t.Fatalf("ミス後のキャッシュ充填が効いていないのだ: %v", err)
	}
	if second.Name != "warm" {
		t.Errorf("期待値 'warm', 実際の値 '%s'", second.Name)
	}
}
