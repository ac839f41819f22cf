package workflow

import (
	"context"

	"github.com/shouni/go-ehon-kit/pkg/domain"
	"github.com/shouni/go-ehon-kit/pkg/generator"
	"github.com/shouni/go-ehon-kit/pkg/pipeline"
	"github.com/shouni/go-ehon-kit/pkg/publisher"
)

// AIClient は絵本制作に必要なAI呼び出しの合成インターフェースです。
// テキスト系（フェーズ生成・プロフィール抽出）と画像系の両方を担います。
type AIClient interface {
	pipeline.StructuredClient
	generator.ImageClient
}

// Workflow は、絵本制作の各工程を担う Runner 群を構築するためのビルダー・インターフェースを定義します。
type Workflow interface {
	BuildProfileRunner() (ProfileRunner, error)
	BuildPhaseRunner() (PhaseRunner, error)
	BuildSketchRunner() (SketchRunner, error)
	BuildBookRunner() (BookRunner, error)
	BuildPublishRunner() (PublishRunner, error)
}

// ProfileRunner は、写真から主人公の構造化プロフィールを抽出し、指定パスへ保存する責務を持ちます。
type ProfileRunner interface {
	Run(ctx context.Context, photoPath, childName, outputPath string) (*domain.CharacterProfile, error)
}

// PhaseRunner は、物語パイプラインのフェーズ操作（作成・生成・承認・差し戻し・変換）を担う責務を持ちます。
type PhaseRunner interface {
	CreateStory(ctx context.Context, name, brief string) (*pipeline.StoryProject, error)
	GetStory(ctx context.Context, storyID string) (*pipeline.StoryProject, error)
	ListStories(ctx context.Context) (*pipeline.StoriesIndex, error)
	DeleteStory(ctx context.Context, storyID string) error
	Generate(ctx context.Context, storyID string, phase int) (*pipeline.StoryProject, error)
	Approve(ctx context.Context, storyID string, phase int) (*pipeline.StoryProject, error)
	Reject(ctx context.Context, storyID string, phase int, notes string) (*pipeline.StoryProject, error)
	ConvertToTemplate(ctx context.Context, storyID string) (*pipeline.StoryProject, error)
}

// SketchRunner は、ストーリーとプロフィールを結合したブックを組み立て、全ページの下絵を生成する責務を持ちます。
type SketchRunner interface {
	Run(ctx context.Context, storyID, profilePath, outputDir string) (*domain.Book, *generator.BatchResult, error)
}

// BookRunner は、保存済みのブックからリファレンスシートと本絵を生成する責務を持ちます。
type BookRunner interface {
	Run(ctx context.Context, outputDir string) (*domain.Book, *generator.BatchResult, error)
}

// PublishRunner は、完成したブックを索引付きで公開する責務を持ちます。
type PublishRunner interface {
	Run(ctx context.Context, outputDir string) (publisher.PublishResult, error)
}
