package main

import (
	"github.com/joho/godotenv"

	"github.com/shouni/go-ehon-kit/cmd"
)

// main はアプリケーションの唯一のエントリーポイントなのだ！
// コマンドライン引数の解析と実行はすべて cmd パッケージに委ねるのだよ。
func main() {
	// .env があれば読み込む（なくてもエラーにはしないのだ）
	_ = godotenv.Load()

	cmd.Execute()
}
