package generator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-ehon-kit/pkg/asset"
	"github.com/shouni/go-ehon-kit/pkg/domain"
	"github.com/shouni/go-ehon-kit/pkg/gemini"
)

// characterSheetTemplate はリファレンスシート用プロンプトの骨格です。
// %s にはプロフィールの詳細な外見記述が入ります。
const characterSheetTemplate = "Children's picture book character reference sheet. %s Full body, three views (front, side, back), standing in a relaxed pose, plain white background, no text labels."

// GenerateCharacterReference はプロフィールの外見記述から
// キャラクターリファレンスシートを1枚生成してブックへ添付します。
// シードは名前から決定論的に導くため、同じ子どもには毎回同じ
// 顔立ちが出ます。
func (bc *BookComposer) GenerateCharacterReference(ctx context.Context, book *domain.Book, outputDir string) (string, error) {
	if book.Profile == nil {
		return "", fmt.Errorf("プロフィールが設定されていないのだ")
	}

	prompt := fmt.Sprintf(characterSheetTemplate, book.Profile.FullDescription())
	prompt = bc.composer.AppendStyleSuffix(prompt, book.Bible)

	slog.Info("リファレンスシートを生成します", "child", book.ChildName)
	result, err := bc.imageClient.GenerateImage(ctx, gemini.ImageRequest{
		Prompt:       prompt,
		AspectRatio:  gemini.AspectRatioSquare,
		OutputFormat: gemini.DefaultOutputFormat,
		Seed:         domain.GetSeedFromName(book.ChildName),
	})
	if err != nil {
		return "", fmt.Errorf("リファレンスシートの生成に失敗したのだ: %w", err)
	}

	path, err := bc.saveImage(ctx, outputDir, asset.DefaultCharacterRefName, result)
	if err != nil {
		return "", err
	}

	book.CharacterRefURL = path
	slog.Info("リファレンスシートを保存しました", "path", path)
	return path, nil
}
