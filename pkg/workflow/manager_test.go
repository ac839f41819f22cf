package workflow

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shouni/go-ehon-kit/examples"
	"github.com/shouni/go-ehon-kit/pkg/config"
	"github.com/shouni/go-ehon-kit/pkg/gemini"
	"github.com/shouni/go-ehon-kit/pkg/store"
)

// fakeAI はテキスト系と画像系の両方を満たすテスト用クライアントです。
type fakeAI struct {
	mu         sync.Mutex
	imageCalls int
	jsonReply  string
}

func (f *fakeAI) CompleteJSON(_ context.Context, _, _ string, _ []byte, _ string) (string, error) {
	if f.jsonReply == "" {
		return "", errors.New("テキスト応答は未設定です")
	}
	return f.jsonReply, nil
}

func (f *fakeAI) GenerateImage(_ context.Context, _ gemini.ImageRequest) (*gemini.ImageResult, error) {
	f.mu.Lock()
	f.imageCalls++
	f.mu.Unlock()
	return &gemini.ImageResult{Data: []byte("png-bytes"), MIMEType: "image/png"}, nil
}

// memoryStorage は読み書き両用のインメモリストレージです。
type memoryStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{files: map[string][]byte{}}
}

func (m *memoryStorage) Open(_ context.Context, path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, errors.New("そのようなファイルはありません: " + path)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryStorage) Write(_ context.Context, path string, data io.Reader, _ string) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = raw
	return nil
}

func (m *memoryStorage) has(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[path]
	return ok
}

func newTestManager(t *testing.T, ai AIClient, storage *memoryStorage) *Manager {
	t.Helper()
	stores, err := store.NewFileSet(t.TempDir())
	if err != nil {
		t.Fatalf("ストア一式の生成に失敗しました: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.PageLimit = 2
	cfg.RateInterval = time.Millisecond

	m, err := New(ManagerArgs{
		Config:     cfg,
		Stores:     stores,
		AI:         ai,
		Reader:     storage,
		Writer:     storage,
		HTTPClient: &http.Client{},
	})
	if err != nil {
		t.Fatalf("Manager の生成に失敗しました: %v", err)
	}
	return m
}

func TestNew_MissingDependencies(t *testing.T) {
	storage := newMemoryStorage()
	stores, err := store.NewFileSet(t.TempDir())
	if err != nil {
		t.Fatalf("ストア一式の生成に失敗しました: %v", err)
	}
	args := ManagerArgs{
		Config:     config.DefaultConfig(),
		Stores:     stores,
		AI:         &fakeAI{},
		Reader:     storage,
		Writer:     storage,
		HTTPClient: &http.Client{},
	}

	broken := args
	broken.Stores = nil
	if _, err := New(broken); err == nil {
		t.Error("stores が nil でもエラーになりませんでした")
	}

	broken = args
	broken.AI = nil
	if _, err := New(broken); err == nil {
		t.Error("AI が nil でもエラーになりませんでした")
	}

	broken = args
	broken.HTTPClient = nil
	if _, err := New(broken); err == nil {
		t.Error("httpClient が nil でもエラーになりませんでした")
	}

	if _, err := New(args); err != nil {
		t.Errorf("揃った依存でエラーが発生しました: %v", err)
	}
}

func TestManager_BuildRunners(t *testing.T) {
	m := newTestManager(t, &fakeAI{}, newMemoryStorage())

	if _, err := m.BuildProfileRunner(); err != nil {
		t.Errorf("ProfileRunner の構築に失敗しました: %v", err)
	}
	if _, err := m.BuildPhaseRunner(); err != nil {
		t.Errorf("PhaseRunner の構築に失敗しました: %v", err)
	}
	if _, err := m.BuildSketchRunner(); err != nil {
		t.Errorf("SketchRunner の構築に失敗しました: %v", err)
	}
	if _, err := m.BuildBookRunner(); err != nil {
		t.Errorf("BookRunner の構築に失敗しました: %v", err)
	}
	if _, err := m.BuildPublishRunner(); err != nil {
		t.Errorf("PublishRunner の構築に失敗しました: %v", err)
	}
}

// 下絵 → 本絵 → 公開の一連の工程を組み込みストーリーで通すのだ。
func TestManager_SketchBookPublishFlow(t *testing.T) {
	ai := &fakeAI{}
	storage := newMemoryStorage()
	storage.files["profiles/mira.json"] = examples.ProfileJSON
	m := newTestManager(t, ai, storage)

	ctx := context.Background()

	// 1. 下絵の生成（ストーリーID省略で組み込みストーリーに落ちる）
	sketcher, err := m.BuildSketchRunner()
	if err != nil {
		t.Fatalf("SketchRunner の構築に失敗しました: %v", err)
	}
	book, result, err := sketcher.Run(ctx, "", "profiles/mira.json", "out")
	if err != nil {
		t.Fatalf("下絵工程でエラーが発生しました: %v", err)
	}
	if book.ChildName != "Mira" {
		t.Errorf("名前差し込みが行われていません: %s", book.ChildName)
	}
	if result.Generated != 2 || result.Total != 2 {
		t.Errorf("ページ上限2の期待値 2/2, 実際の値 %d/%d", result.Generated, result.Total)
	}
	if book.SketchedCount() != 2 {
		t.Errorf("下絵の添付数の期待値 2, 実際の値 %d", book.SketchedCount())
	}

	// ブックが中間保存されていること
	bookSaved := false
	for path := range storage.files {
		if strings.HasSuffix(path, "book.json") {
			bookSaved = true
		}
	}
	if !bookSaved {
		t.Fatal("book.json が保存されていません")
	}

	// 2. 本絵の生成（保存済みブックから再開する）
	illustrator, err := m.BuildBookRunner()
	if err != nil {
		t.Fatalf("BookRunner の構築に失敗しました: %v", err)
	}
	book2, result2, err := illustrator.Run(ctx, "out")
	if err != nil {
		t.Fatalf("本絵工程でエラーが発生しました: %v", err)
	}
	if book2.CharacterRefURL == "" {
		t.Error("リファレンスシートが生成されていません")
	}
	if result2.Generated != 2 {
		t.Errorf("本絵の生成数の期待値 2, 実際の値 %d", result2.Generated)
	}
	if book2.IllustratedCount() != 2 {
		t.Errorf("本絵の添付数の期待値 2, 実際の値 %d", book2.IllustratedCount())
	}

	// 3. 公開
	pub, err := m.BuildPublishRunner()
	if err != nil {
		t.Fatalf("PublishRunner の構築に失敗しました: %v", err)
	}
	published, err := pub.Run(ctx, "out")
	if err != nil {
		t.Fatalf("公開工程でエラーが発生しました: %v", err)
	}
	if !storage.has(published.IndexPath) {
		t.Error("索引が書き込まれていません")
	}
	if len(published.ImagePaths) == 0 {
		t.Error("画像一覧が空です")
	}
}

func TestProfileRunner_ExtractAndSave(t *testing.T) {
	profileJSON := `{
		"name": "Mira",
		"age_bracket": "young_child",
		"hair": {"color": "dark brown", "length": "shoulder-length", "texture": "wavy"},
		"eyes": {"color": "brown"},
		"do_not_change": ["dark brown wavy hair"]
	}`
	ai := &fakeAI{jsonReply: "```json\n" + profileJSON + "\n```"}
	storage := newMemoryStorage()
	// PNGシグネチャ付きのダミー写真
	storage.files["photos/mira.png"] = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)
	m := newTestManager(t, ai, storage)

	runner, err := m.BuildProfileRunner()
	if err != nil {
		t.Fatalf("ProfileRunner の構築に失敗しました: %v", err)
	}

	p, err := runner.Run(context.Background(), "photos/mira.png", "Mira", "profiles/mira.json")
	if err != nil {
		t.Fatalf("プロフィール工程でエラーが発生しました: %v", err)
	}
	if p.Name != "Mira" {
		t.Errorf("期待値 'Mira', 実際の値 '%s'", p.Name)
	}
	if !storage.has("profiles/mira.json") {
		t.Error("プロフィールが保存されていません")
	}
}
