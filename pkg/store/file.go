package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileStore はディレクトリ直下に <key>.json を置くファイル実装です。
// ローカル運用の既定バックエンドなのだ。
type FileStore struct {
	dir string
}

// NewFileStore は保存先ディレクトリを作成してストアを返します。
func NewFileStore(baseDir, name string) (*FileStore, error) {
	dir := filepath.Join(baseDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ストアディレクトリの作成に失敗したのだ: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// NewFileSet はベースディレクトリ配下に成果物ごとのストア一式を作るのだ。
func NewFileSet(baseDir string) (*Set, error) {
	set := &Set{}
	for name, target := range map[string]*DocStore{
		"projects": &set.Projects,
		"index":    &set.Index,
		"pages":    &set.Pages,
		"bibles":   &set.Bibles,
		"prompts":  &set.Prompts,
	} {
		s, err := NewFileStore(baseDir, name)
		if err != nil {
			return nil, err
		}
		*target = s
	}
	return set, nil
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("不正なストアキーなのだ: %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

// Get はキーのJSONを読み込んで v へデコードします。
func (s *FileStore) Get(_ context.Context, key string, v any) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("ストアの読み込みに失敗したのだ: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("ストア内容のデコードに失敗したのだ (key=%s): %w", key, err)
	}
	return nil
}

// Put は v をインデント付きJSONで書き込みます。後勝ちで上書きします。
func (s *FileStore) Put(_ context.Context, key string, v any) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("ストア内容のエンコードに失敗したのだ (key=%s): %w", key, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("ストアの書き込みに失敗したのだ: %w", err)
	}
	return nil
}

// Delete はキーのファイルを削除します。存在しない場合も成功扱いなのだ。
func (s *FileStore) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ストアの削除に失敗したのだ: %w", err)
	}
	return nil
}

// List は保存済みキーをソート順で返します。
func (s *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("ストア一覧の取得に失敗したのだ: %w", err)
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}
