package profile

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

type fakeVision struct {
	response   string
	err        error
	lastSystem string
	lastUser   string
	lastMIME   string
	imageSize  int
}

func (f *fakeVision) CompleteJSON(_ context.Context, systemPrompt, userPrompt string, imageData []byte, imageMIME string) (string, error) {
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	f.lastMIME = imageMIME
	f.imageSize = len(imageData)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakePhotoReader struct {
	files map[string][]byte
}

func (f *fakePhotoReader) Open(_ context.Context, path string) (io.ReadCloser, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, errors.New("そのようなファイルはありません")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// PNGシグネチャ付きのダミー写真。MIME判定が image/png になるのだ。
func dummyPhoto() []byte {
	return append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)
}

const extractedJSON = `{
	"name": "wrong name",
	"age_bracket": "young_child",
	"hair": {"color": "brown", "length": "shoulder-length", "texture": "wavy"},
	"eyes": {"color": "brown"},
	"do_not_change": ["brown wavy hair", "star-shaped hairclip"]
}`

func TestExtractFromPhoto(t *testing.T) {
	reader := &fakePhotoReader{files: map[string][]byte{"photos/mira.png": dummyPhoto()}}

	t.Run("写真からプロフィールが抽出されること", func(t *testing.T) {
		ai := &fakeVision{response: "```json\n" + extractedJSON + "\n```"}
		ex, err := NewExtractor(ai, reader)
		if err != nil {
			t.Fatalf("Extractor の生成に失敗しました: %v", err)
		}

		p, err := ex.ExtractFromPhoto(context.Background(), "photos/mira.png", "Mira")
		if err != nil {
			t.Fatalf("抽出でエラーが発生しました: %v", err)
		}
		if p.Name != "Mira" {
			t.Errorf("名前は指定値で固定される想定です。期待値 'Mira', 実際の値 '%s'", p.Name)
		}
		if p.Hair.Color != "brown" || p.Hair.Texture != "wavy" {
			t.Errorf("髪の特徴が抽出されていません: %+v", p.Hair)
		}
		if len(p.DoNotChange) != 2 {
			t.Errorf("アンカー数の期待値 2, 実際の値 %d", len(p.DoNotChange))
		}
		if ai.lastMIME != "image/png" {
			t.Errorf("MIMEタイプの期待値 'image/png', 実際の値 '%s'", ai.lastMIME)
		}
		if ai.imageSize == 0 {
			t.Error("写真のバイト列が渡されていません")
		}
		if !strings.Contains(ai.lastUser, `"Mira"`) {
			t.Errorf("ユーザープロンプトに名前が含まれていません: %s", ai.lastUser)
		}
		if !strings.Contains(ai.lastSystem, "OUTPUT SCHEMA") {
			t.Error("システムプロンプトにスキーマ節がありません")
		}
	})

	t.Run("アンカーが無い場合は外見から補われること", func(t *testing.T) {
		ai := &fakeVision{response: `{
			"name": "Mira",
			"age_bracket": "young_child",
			"hair": {"color": "black"},
			"eyes": {"color": "dark brown"},
			"do_not_change": []
		}`}
		ex, _ := NewExtractor(ai, reader)

		p, err := ex.ExtractFromPhoto(context.Background(), "photos/mira.png", "Mira")
		if err != nil {
			t.Fatalf("抽出でエラーが発生しました: %v", err)
		}
		if len(p.DoNotChange) == 0 {
			t.Fatal("アンカーが補われていません")
		}
		if p.DoNotChange[0] != "black hair" {
			t.Errorf("期待値 'black hair', 実際の値 '%s'", p.DoNotChange[0])
		}
	})

	t.Run("名前なしはエラーになること", func(t *testing.T) {
		ex, _ := NewExtractor(&fakeVision{response: extractedJSON}, reader)
		if _, err := ex.ExtractFromPhoto(context.Background(), "photos/mira.png", "  "); err == nil {
			t.Error("名前なしでもエラーになりませんでした")
		}
	})

	t.Run("写真が見つからない場合はエラーになること", func(t *testing.T) {
		ex, _ := NewExtractor(&fakeVision{response: extractedJSON}, reader)
		if _, err := ex.ExtractFromPhoto(context.Background(), "photos/missing.png", "Mira"); err == nil {
			t.Error("写真なしでもエラーになりませんでした")
		}
	})

	t.Run("壊れた応答はエラーになること", func(t *testing.T) {
		ex, _ := NewExtractor(&fakeVision{response: "ここにはJSONがありません"}, reader)
		if _, err := ex.ExtractFromPhoto(context.Background(), "photos/mira.png", "Mira"); err == nil {
			t.Error("壊れた応答でもエラーになりませんでした")
		}
	})

	t.Run("不正な年齢帯はエラーになること", func(t *testing.T) {
		ai := &fakeVision{response: `{"name": "Mira", "age_bracket": "adult"}`}
		ex, _ := NewExtractor(ai, reader)
		if _, err := ex.ExtractFromPhoto(context.Background(), "photos/mira.png", "Mira"); err == nil {
			t.Error("不正な年齢帯でもエラーになりませんでした")
		}
	})
}
