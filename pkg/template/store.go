// Package template はストーリーIDと子どものプロフィールから、画像生成が
// そのまま読めるランタイム成果物（名前差し込み済みのページ一覧・設定
// 資料集・プロンプト表）を組み立てる読み出し側です。パイプライン産の
// ストーリーが見つからないIDは組み込みストーリーへ落ちます。
package template

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/shouni/go-ehon-kit/pkg/domain"
	"github.com/shouni/go-ehon-kit/pkg/pipeline"
	"github.com/shouni/go-ehon-kit/pkg/prompts"
	"github.com/shouni/go-ehon-kit/pkg/store"
)

const (
	defaultCacheExpiration = 5 * time.Minute
	cacheCleanupInterval   = 15 * time.Minute
)

// Store はランタイム成果物の読み出し口です。ストア読み出しの結果は
// 差し込み前の形でキャッシュし、取り出すたびに新しいコピーへ
// デコードして呼び出し元と状態を共有しないのだ。
type Store struct {
	stores   *store.Set
	composer *prompts.Composer
	cache    *cache.Cache
}

// resolved は名前差し込み前のストーリー内容一式です。
type resolved struct {
	StoryID string             `json:"story_id"`
	Title   string             `json:"title"`
	Pages   domain.Pages       `json:"pages"`
	Bible   *domain.PropBible  `json:"bible,omitempty"`
	Table   domain.PromptTable `json:"table,omitempty"`
}

// NewStore は依存を検証してストアを生成します。
func NewStore(stores *store.Set, composer *prompts.Composer) (*Store, error) {
	if stores == nil {
		return nil, fmt.Errorf("ストア一式が設定されていないのだ")
	}
	if composer == nil {
		return nil, fmt.Errorf("コンポーザが設定されていないのだ")
	}
	return &Store{
		stores:   stores,
		composer: composer,
		cache:    cache.New(defaultCacheExpiration, cacheCleanupInterval),
	}, nil
}

// Compile はストーリーと子どもを結合した作業単位を組み立てます。
// タイトル・シーン・動作・舞台・本文・プロンプトの名前トークンを置換し、
// 保存済みプロンプト表が無い場合は本絵コンポーザでその場で合成します。
func (s *Store) Compile(ctx context.Context, storyID string, profile *domain.CharacterProfile) (*domain.Book, error) {
	if profile == nil {
		return nil, fmt.Errorf("プロフィールが設定されていないのだ")
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if storyID == "" {
		storyID = domain.LegacyStoryID
	}

	r, err := s.resolve(ctx, storyID)
	if err != nil {
		return nil, err
	}

	name := profile.Name
	book := &domain.Book{
		StoryID:   r.StoryID,
		Title:     ReplacePlaceholders(r.Title, name),
		ChildName: name,
		Profile:   profile,
		Pages:     r.Pages,
		Bible:     r.Bible,
		Prompts:   r.Table,
	}
	substitutePages(book.Pages, name)
	substitutePrompts(book.Prompts, name)

	if len(book.Prompts) == 0 {
		book.Prompts = s.composeTable(book.Pages, profile, book.Bible)
	}

	slog.Info("ストーリーを組み立てました",
		"story_id", book.StoryID, "child", name, "pages", len(book.Pages))
	return book, nil
}

// Briefs はパイプライン産ストーリーのフェーズ5指示書をページ番号で
// 引ける形にして返します。指示書を持たない物語（組み込み含む）は
// 空の表を返すのだ。
func (s *Store) Briefs(ctx context.Context, storyID string) (map[int]prompts.Brief, error) {
	briefs := map[int]prompts.Brief{}
	if storyID == "" || storyID == domain.LegacyStoryID {
		return briefs, nil
	}

	var project pipeline.StoryProject
	if err := s.stores.Projects.Get(ctx, storyID, &project); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return briefs, nil
		}
		return nil, fmt.Errorf("プロジェクトの読み出しに失敗したのだ: %w", err)
	}

	state := project.Phase(pipeline.PhasePanelBriefs)
	if !state.HasOutput() {
		return briefs, nil
	}
	out, err := pipeline.DecodePhaseOutput(pipeline.PhasePanelBriefs, state.Output)
	if err != nil {
		return nil, err
	}
	for _, b := range out.(*pipeline.PanelBriefsOutput).Briefs {
		briefs[b.Spread] = prompts.Brief{
			Page:             b.Spread,
			Scene:            b.Scene,
			Environment:      b.Environment,
			CharacterStaging: b.CharacterStaging,
			Objects:          b.Objects,
			VisualMotifs:     b.VisualMotifs,
			Mood:             b.Mood,
		}
	}
	return briefs, nil
}

// Invalidate はストーリーの解決済みキャッシュを無効化します。
// テンプレート再変換の直後に呼びます。
func (s *Store) Invalidate(storyID string) {
	if storyID == "" {
		storyID = domain.LegacyStoryID
	}
	s.cache.Delete(storyID)
}

// resolve はキャッシュを優先してストーリー内容を解決します。キャッシュは
// エンコード済みJSONを保持し、ヒットのたびに新しい値へ展開します。
func (s *Store) resolve(ctx context.Context, storyID string) (*resolved, error) {
	if raw, ok := s.cache.Get(storyID); ok {
		if data, ok := raw.([]byte); ok {
			var r resolved
			if err := json.Unmarshal(data, &r); err == nil {
				return &r, nil
			}
			s.cache.Delete(storyID)
		}
	}

	r, err := s.load(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(r); err == nil {
		s.cache.Set(storyID, data, cache.DefaultExpiration)
	}
	return r, nil
}

// load はストアからストーリー内容一式を読み出します。ページ一覧が
// 見つからないIDは組み込みストーリーへ落ち、資料集とプロンプト表の
// 欠如はエラーにしません。
func (s *Store) load(ctx context.Context, storyID string) (*resolved, error) {
	if storyID == domain.LegacyStoryID {
		return loadLegacyResolved()
	}

	var pages domain.Pages
	if err := s.stores.Pages.Get(ctx, storyID, &pages); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.Warn("ストーリーが見つからないため組み込みストーリーへ落ちます", "story_id", storyID)
			return loadLegacyResolved()
		}
		return nil, fmt.Errorf("ページ一覧の読み出しに失敗したのだ: %w", err)
	}

	r := &resolved{StoryID: storyID, Title: storyID, Pages: pages}

	var project pipeline.StoryProject
	if err := s.stores.Projects.Get(ctx, storyID, &project); err == nil {
		r.Title = project.Name
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("プロジェクトの読み出しに失敗したのだ: %w", err)
	}

	var bible domain.PropBible
	if err := s.stores.Bibles.Get(ctx, storyID, &bible); err == nil {
		r.Bible = &bible
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("設定資料集の読み出しに失敗したのだ: %w", err)
	}

	var table domain.PromptTable
	if err := s.stores.Prompts.Get(ctx, storyID, &table); err == nil {
		r.Table = table
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("プロンプト表の読み出しに失敗したのだ: %w", err)
	}

	return r, nil
}

// composeTable は保存済みプロンプト表を持たない物語のために、本絵
// コンポーザでページ単位のプロンプトをその場で合成するのだ。
func (s *Store) composeTable(pages domain.Pages, profile *domain.CharacterProfile, bible *domain.PropBible) domain.PromptTable {
	summary := profile.PromptSummary()
	table := make(domain.PromptTable, 0, len(pages))
	for _, page := range pages {
		table = append(table, domain.PromptEntry{
			Page:   page.Page,
			Prompt: s.composer.BuildFinalPrompt(page, summary, bible),
		})
	}
	return table
}
