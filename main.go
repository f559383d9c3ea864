package main

import "github.com/shouni/go-phone-exact/cmd"

// main 関数は、ルートコマンドを実行します。エラー処理と終了コードは cmd.Execute が担当します。
func main() {
	cmd.Execute()
}
