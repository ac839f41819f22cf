// Package gemini は google.golang.org/genai を絵本パイプラインの
// 2つの細い契約（構造化JSON生成と画像生成)へ適合させるアダプタです。
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// Config はアダプタの接続設定です。
type Config struct {
	APIKey     string
	TextModel  string
	ImageModel string
}

// Client は genai クライアントを包み、モデル名を固定したアダプタなのだ。
type Client struct {
	ai         *genai.Client
	textModel  string
	imageModel string
}

// New はAPIキーを検証してクライアントを生成します。
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("GeminiのAPIキーが設定されていないのだ")
	}
	if cfg.TextModel == "" || cfg.ImageModel == "" {
		return nil, fmt.Errorf("Geminiのモデル名が設定されていないのだ")
	}

	ai, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("Geminiクライアントの生成に失敗したのだ: %w", err)
	}
	return &Client{ai: ai, textModel: cfg.TextModel, imageModel: cfg.ImageModel}, nil
}

// CompleteJSON はシステムプロンプトとユーザープロンプト（任意で画像1枚）から
// JSONテキストを生成します。返り値はモデルの生テキストであり、コードフェンス
// 除去などの寛容なパースは呼び出し側の責務です。
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, imageData []byte, imageMIME string) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(userPrompt)}
	if len(imageData) > 0 {
		if imageMIME == "" {
			imageMIME = "image/png"
		}
		parts = append(parts, genai.NewPartFromBytes(imageData, imageMIME))
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}

	resp, err := c.ai.Models.GenerateContent(ctx, c.textModel,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, cfg)
	if err != nil {
		return "", fmt.Errorf("構造化コンテンツの生成に失敗したのだ: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("モデルから空のレスポンスが返ったのだ (model=%s)", c.textModel)
	}
	return text, nil
}

// GenerateImage はプロンプトと参照画像から1枚の画像を生成します。
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("画像プロンプトが空なのだ")
	}

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	for _, ref := range req.ReferenceImages {
		if len(ref.Data) == 0 {
			continue
		}
		mime := ref.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts, genai.NewPartFromBytes(ref.Data, mime))
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	}
	if req.AspectRatio != "" {
		cfg.ImageConfig = &genai.ImageConfig{AspectRatio: req.AspectRatio}
	}
	if req.Seed != 0 {
		cfg.Seed = genai.Ptr(req.Seed)
	}

	resp, err := c.ai.Models.GenerateContent(ctx, c.imageModel,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, cfg)
	if err != nil {
		return nil, fmt.Errorf("画像の生成に失敗したのだ: %w", err)
	}

	result := extractImage(resp, fallbackMIME(req.OutputFormat))
	if result == nil {
		slog.Warn("レスポンスに画像が含まれていません", "model", c.imageModel)
		return nil, fmt.Errorf("モデルから画像が返らなかったのだ (model=%s)", c.imageModel)
	}
	return result, nil
}

// extractImage はレスポンスから最初の画像パートを取り出す内部ヘルパーなのだ。
// MIMEタイプが空の場合は要求時のフォーマットから補います。
func extractImage(resp *genai.GenerateContentResponse, fallback string) *ImageResult {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mime := part.InlineData.MIMEType
				if mime == "" {
					mime = fallback
				}
				return &ImageResult{Data: part.InlineData.Data, MIMEType: mime}
			}
		}
	}
	return nil
}

// fallbackMIME は出力フォーマット指定をMIMEタイプに変換するのだ。
func fallbackMIME(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	default:
		return "image/" + strings.ToLower(strings.TrimSpace(format))
	}
}
