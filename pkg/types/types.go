package types

import (
	"time"

	"github.com/shouni/go-phone-exact/pkg/phone"
)

// ScanResult は、特定のURLに対する1回のスキャン結果を保持します。
// これは、Pipelineの出力、Reporterの入力として利用されます。
type ScanResult struct {
	URL           string        // 処理対象のURL
	Content       string        // 取得したコンテンツ (デコード済み)
	Tally         phone.Tally   // マッチした番号と出現回数
	FetchDuration time.Duration // コンテンツ取得にかかった時間
	MatchDuration time.Duration // 正規表現検索にかかった時間
}
