package phone

import (
	"regexp"
	"sort"
)

// ----------------------------------------------------------------------
// パターン定義
// ----------------------------------------------------------------------

// patternExpr は北米形式の電話番号の形を表す正規表現です。
// 開き括弧と閉じ括弧はそれぞれ独立して省略可能で、対になっている必要はありません。
// \p{Nd} は Unicode の10進数字すべてにマッチします。
const patternExpr = `\(?\p{Nd}{3}\)?[ -]\p{Nd}{3}[ -]\p{Nd}{4}`

// Pattern は起動時に一度だけコンパイルされる電話番号パターンです。
// コンパイルに失敗した場合は設定の欠陥とみなし、MustCompile により起動時に panic します。
var Pattern = regexp.MustCompile(patternExpr)

// ----------------------------------------------------------------------
// 集計の型
// ----------------------------------------------------------------------

// Tally は、マッチした文字列（リテラル）からその出現回数へのマッピングです。
// 書式が異なる同じ番号（例: "555-123-4567" と "(555) 123-4567"）は別のキーとして扱います。
type Tally map[string]int

// Entry は Tally の1行分です。
type Entry struct {
	Number string // マッチしたテキストそのもの
	Hits   int    // 出現回数
}

// Empty はマッチが一件もなかったかどうかを返します。
func (t Tally) Empty() bool {
	return len(t) == 0
}

// Total はすべての出現回数の合計を返します。
func (t Tally) Total() int {
	total := 0
	for _, hits := range t {
		total += hits
	}
	return total
}

// Entries は出力用に決定的な順序で並べたエントリを返します。
// 出現回数の降順、同数の場合は番号の昇順です。
func (t Tally) Entries() []Entry {
	entries := make([]Entry, 0, len(t))
	for number, hits := range t {
		entries = append(entries, Entry{Number: number, Hits: hits})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Hits != entries[j].Hits {
			return entries[i].Hits > entries[j].Hits
		}
		return entries[i].Number < entries[j].Number
	})
	return entries
}

// ----------------------------------------------------------------------
// メイン関数
// ----------------------------------------------------------------------

// FindAll はテキストを左から右へ走査し、重複しないすべてのマッチを出現順に返します。
func FindAll(text string) []string {
	return Pattern.FindAllString(text, -1)
}

// Count はテキスト中の電話番号らしき部分文字列を集計します。
// マッチがない場合は空の（nil ではない）Tally を返します。
func Count(text string) Tally {
	tally := make(Tally)
	for _, number := range FindAll(text) {
		tally[number]++
	}
	return tally
}
