package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	textUtils "github.com/shouni/go-utils/text"
)

// ----------------------------------------------------------------------
// 定数定義
// ----------------------------------------------------------------------

const (
	// noiseSelectors はブラウザに表示されない要素です。
	noiseSelectors = "script, style, noscript, template"
)

// ----------------------------------------------------------------------
// メイン関数
// ----------------------------------------------------------------------

// VisibleText はHTMLを解析し、表示される部分のテキストだけを返します。
// タグはすべて取り除かれ、空白は正規化されます。
func VisibleText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("HTML解析に失敗しました: %w", err)
	}

	doc.Find(noiseSelectors).Remove()

	return textUtils.NormalizeText(doc.Text()), nil
}
