package builder

import (
	"context"

	"github.com/shouni/go-ehon-kit/internal/config"
	"github.com/shouni/go-ehon-kit/pkg/store"
	"github.com/shouni/go-ehon-kit/pkg/workflow"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各コマンドに渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config  *config.Config         // Configは、環境変数から読み込まれたグローバルな設定です（APIキー、接続先など）。
	Options config.GenerateOptions // Optionsは、コマンドラインから渡された実行時の設定です（対象ID、モデル名など）。
	Stores  *store.Set             // Storesは、物語プロジェクトと索引の永続化層です（ローカルファイル or MongoDB）。
	Reader  remoteio.InputReader   // Readerは、写真や参照画像など入力素材の読み込みに使用する入力元です。
	Writer  remoteio.OutputWriter  // Writerは、生成された画像やブックを保存するための出力先です。
	Manager *workflow.Manager      // Managerは、絵本制作の各工程 Runner を構築するワークフローです。

	closer func(context.Context) error
}

// Close は、AppContext が保持する接続（MongoDBなど）を解放するのだ。
// 接続を持たない構成（ローカルファイル保存）では何もしないのだよ。
func (a *AppContext) Close(ctx context.Context) error {
	if a.closer == nil {
		return nil
	}
	return a.closer(ctx)
}
