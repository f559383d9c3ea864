package report

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/shouni/go-phone-exact/pkg/phone"
	"github.com/shouni/go-phone-exact/pkg/types"
)

// NoMatchesMessage はマッチが一件もなかった場合に出力されるメッセージです。
const NoMatchesMessage = "No phone numbers found."

// Reporter はスキャンの進捗と結果を人間が読める形式で出力します。
type Reporter struct {
	w      io.Writer
	name   *color.Color // ステップ名
	value  *color.Color // 時間とヒット数
	number *color.Color // マッチした番号
}

// Option はReporterの設定を行うための関数型です。
type Option func(*Reporter)

// WithColor は色付けを強制的に有効化または無効化します。
// 指定しない場合、標準出力が端末かどうかで fatih/color が判断します。
func WithColor(enabled bool) Option {
	return func(r *Reporter) {
		for _, c := range []*color.Color{r.name, r.value, r.number} {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

// New は w に出力する Reporter を生成します。
func New(w io.Writer, options ...Option) *Reporter {
	r := &Reporter{
		w:      w,
		name:   color.New(color.FgMagenta),
		value:  color.New(color.FgGreen),
		number: color.New(color.FgBlue),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Start はスキャン開始メッセージを出力します。
func (r *Reporter) Start(url string) {
	fmt.Fprintf(r.w, "Scraping %s for phone numbers...\n", url)
}

// Timing はステップ名と所要時間 (ミリ秒単位、切り捨て) を出力します。
func (r *Reporter) Timing(name string, d time.Duration) {
	fmt.Fprintf(r.w, "%s took %s\n", r.name.Sprint(name), r.value.Sprintf("%d ms", d.Milliseconds()))
}

// Content は取得したコンテンツ全体を出力します (--debug 用)。
func (r *Reporter) Content(content string) {
	fmt.Fprintf(r.w, "Content: %s\n", content)
}

// Results は集計結果を出力します。マッチがない場合は NoMatchesMessage を出力します。
func (r *Reporter) Results(tally phone.Tally) {
	if tally.Empty() {
		fmt.Fprintln(r.w, NoMatchesMessage)
		return
	}
	for _, entry := range tally.Entries() {
		fmt.Fprintf(r.w, "%s: %s hits\n", r.number.Sprint(entry.Number), r.value.Sprint(entry.Hits))
	}
}

// Fetched は取得時間と、debug の場合は取得したコンテンツを出力します。
// 検索の開始前に呼び出されます。
func (r *Reporter) Fetched(d time.Duration, content string, debug bool) {
	r.Timing("Content Fetch", d)
	if debug {
		r.Content(content)
	}
}

// Matched は検索時間と集計結果を出力します。
func (r *Reporter) Matched(result *types.ScanResult) {
	r.Timing("Regex Search", result.MatchDuration)
	r.Results(result.Tally)
}
