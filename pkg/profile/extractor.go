// Package profile は子どもの写真から構造化プロフィールを抽出します。
// 写真そのものは抽出にだけ使い、後段の生成工程には渡しません。
package profile

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/shouni/go-ehon-kit/pkg/domain"
	"github.com/shouni/go-ehon-kit/pkg/pipeline"
)

//go:embed extract_prompt.md
var extractPromptMD string

var (
	systemPromptOnce   sync.Once
	systemPromptCached string
)

// VisionClient は画像つきの構造化補完1回分を抽象化します。
type VisionClient interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, imageData []byte, imageMIME string) (string, error)
}

// ImageReader は写真の読み出し元（ローカル/GCS）を抽象化します。
type ImageReader interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// Extractor は写真からのプロフィール抽出を担います。
type Extractor struct {
	ai     VisionClient
	reader ImageReader
}

// NewExtractor は依存を検証して Extractor を生成します。
func NewExtractor(ai VisionClient, reader ImageReader) (*Extractor, error) {
	if ai == nil {
		return nil, fmt.Errorf("ai は必須です")
	}
	if reader == nil {
		return nil, fmt.Errorf("reader は必須です")
	}
	return &Extractor{ai: ai, reader: reader}, nil
}

// ExtractFromPhoto は写真を読み込み、外見の構造化プロフィールを
// 抽出して返します。名前は写真からは分からないため呼び出し側が
// 指定し、モデルの出力に関わらずその名前で上書きします。
func (e *Extractor) ExtractFromPhoto(ctx context.Context, photoPath, childName string) (*domain.CharacterProfile, error) {
	if strings.TrimSpace(childName) == "" {
		return nil, fmt.Errorf("子どもの名前が指定されていないのだ")
	}

	photo, mime, err := e.readPhoto(ctx, photoPath)
	if err != nil {
		return nil, err
	}

	userPrompt := fmt.Sprintf(
		"The child's name is %q. Extract the structured appearance profile from the attached photo.",
		childName)

	slog.Info("写真からプロフィールを抽出します", "photo", photoPath, "child", childName)
	raw, err := e.ai.CompleteJSON(ctx, systemPrompt(), userPrompt, photo, mime)
	if err != nil {
		return nil, fmt.Errorf("プロフィール抽出の呼び出しに失敗したのだ: %w", err)
	}

	var p domain.CharacterProfile
	if err := json.Unmarshal([]byte(pipeline.ExtractJSON(raw)), &p); err != nil {
		return nil, fmt.Errorf("プロフィールのデコードに失敗したのだ (応答: %s): %w", truncate(raw, 200), err)
	}

	// 名前は必ず指定値で固定する
	p.Name = childName
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// アンカーが空だと以降の要約で同一性が揺れるため、外見から補う
	if len(p.IdentityAnchors()) == 0 {
		p.DoNotChange = fallbackAnchors(p)
		slog.Warn("アンカーが抽出されなかったため外見から補いました", "anchors", p.DoNotChange)
	}

	slog.Info("プロフィールを抽出しました", "child", p.Name, "age_bracket", p.AgeBracket)
	return &p, nil
}

// readPhoto は写真のバイト列とMIMEタイプを読み出します。
func (e *Extractor) readPhoto(ctx context.Context, photoPath string) ([]byte, string, error) {
	rc, err := e.reader.Open(ctx, photoPath)
	if err != nil {
		return nil, "", fmt.Errorf("写真のオープンに失敗したのだ (%s): %w", photoPath, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", fmt.Errorf("写真の読み込みに失敗したのだ (%s): %w", photoPath, err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("写真が空なのだ (%s)", photoPath)
	}
	return data, http.DetectContentType(data), nil
}

// systemPrompt は埋め込みテンプレートに出力スキーマを連結した
// システムプロンプトを返します。初回だけ組み立ててキャッシュするのだ。
func systemPrompt() string {
	systemPromptOnce.Do(func() {
		var sb strings.Builder
		sb.WriteString(strings.TrimSpace(extractPromptMD))

		r := &jsonschema.Reflector{
			DoNotReference: true,
			ExpandedStruct: true,
		}
		if data, err := json.MarshalIndent(r.Reflect(&domain.CharacterProfile{}), "", "  "); err == nil {
			sb.WriteString("\n\n### OUTPUT SCHEMA ###\n")
			sb.WriteString("Respond with a single JSON object matching this schema exactly:\n")
			sb.Write(data)
		} else {
			slog.Warn("出力スキーマの生成に失敗しました", "error", err)
		}
		systemPromptCached = sb.String()
	})
	return systemPromptCached
}

// fallbackAnchors は髪・目・特徴から最低限のアンカーを合成します。
func fallbackAnchors(p domain.CharacterProfile) []string {
	var anchors []string
	if p.Hair.Color != "" {
		anchors = append(anchors, strings.TrimSpace(p.Hair.Color+" hair"))
	}
	if p.Eyes.Color != "" {
		anchors = append(anchors, strings.TrimSpace(p.Eyes.Color+" eyes"))
	}
	if len(p.DistinctiveFeatures) > 0 {
		anchors = append(anchors, p.DistinctiveFeatures[0])
	}
	return anchors
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
