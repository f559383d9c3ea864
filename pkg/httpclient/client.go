package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// ----------------------------------------------------------------------
// 定数とインターフェース
// ----------------------------------------------------------------------

const (
	// サイトからのブロックを避けるためのUser-Agent
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"
)

// Doer は、標準の *http.Client.Do() と互換性のあるHTTPクライアントのインターフェースを定義します。
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ----------------------------------------------------------------------
// エラー定義
// ----------------------------------------------------------------------

// Kind はフェッチ失敗の種類を表します。
type Kind int

const (
	// KindRequest はリクエストを組み立てられなかったことを示します (net/http が拒否したURLなど)。
	KindRequest Kind = iota
	// KindTransport はDNS解決、接続、TLS、ボディ読み込みの失敗を示します。
	KindTransport
	// KindDecode はレスポンスボディをテキストとして解釈できなかったことを示します。
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "リクエスト作成エラー"
	case KindTransport:
		return "通信エラー"
	case KindDecode:
		return "デコードエラー"
	default:
		return "不明なエラー"
	}
}

// FetchError はフェッチ処理の失敗を表すエラー型です。
type FetchError struct {
	URL  string
	Kind Kind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("URL(%s)のフェッチに失敗しました (%s): %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsTransportError は与えられたエラーが通信エラーであるかを判断します。
func IsTransportError(err error) bool {
	return hasKind(err, KindTransport)
}

// IsDecodeError は与えられたエラーがデコードエラーであるかを判断します。
func IsDecodeError(err error) bool {
	return hasKind(err, KindDecode)
}

func hasKind(err error, kind Kind) bool {
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		return false
	}
	return fetchErr.Kind == kind
}

// ----------------------------------------------------------------------
// 設定とコンストラクタ
// ----------------------------------------------------------------------

// Page はフェッチしたページの内容です。ステータスコードに関わらず Body は常に設定されます。
type Page struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        string // UTF-8にデコード済みのボディ
}

// Client は1回だけのHTTP GETを実行し、レスポンスボディをテキストとして返します。
// リトライは行いません。
type Client struct {
	httpClient Doer
	userAgent  string
	logger     *zap.Logger
}

// Option はClientの設定を行うための関数型です。
type Option func(*Client)

// WithHTTPClient はカスタムのDoerを設定します。
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithUserAgent はUser-Agentヘッダーを上書きします。
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger は診断ログの出力先を設定します。
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New は新しいClientを初期化します。
// timeout が 0 の場合、タイムアウトは設定されません (net/http のデフォルト)。
func New(timeout time.Duration, options ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: UserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// ----------------------------------------------------------------------
// メイン関数
// ----------------------------------------------------------------------

// Fetch は指定されたURLへGETリクエストを1回だけ送り、ボディをテキストとして返します。
// 2xx以外のステータスコードもエラーにはせず、そのままページとして返します。
func (c *Client) Fetch(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Kind: KindRequest, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("GETリクエストを送信します", zap.String("url", url))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Kind: KindTransport, Err: fmt.Errorf("レスポンスボディの読み込みに失敗しました: %w", err)}
	}

	contentType := resp.Header.Get("Content-Type")
	body, err := decodeBody(raw, contentType)
	if err != nil {
		return nil, &FetchError{URL: url, Kind: KindDecode, Err: err}
	}

	c.logger.Debug("レスポンスを受信しました",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.String("content_type", contentType),
		zap.Int("bytes", len(raw)),
	)

	return &Page{
		URL:         url,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
	}, nil
}

// FetchText は Fetch を実行し、デコード済みのボディのみを返します。
func (c *Client) FetchText(ctx context.Context, url string) (string, error) {
	page, err := c.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return page.Body, nil
}

// sniffLen は charset.DetermineEncoding が参照する先頭バイト数です。
const sniffLen = 1024

var utf8BOM = []byte("\xef\xbb\xbf")

// decodeBody はボディをUTF-8の文字列に変換します。
// Content-Type の charset、BOM、<meta> の宣言があればそれに従い、宣言がなければUTF-8として扱います。
// UTF-8として不正なバイト列は U+FFFD に置き換えます。
func decodeBody(raw []byte, contentType string) (string, error) {
	enc, name, certain := charset.DetermineEncoding(raw, contentType)
	if !certain && !declaresCharset(raw) {
		// 推定のみの結果 (windows-1252 へのフォールバックを含む) は使わない
		name = "utf-8"
	}

	if name == "utf-8" {
		return strings.ToValidUTF8(string(bytes.TrimPrefix(raw, utf8BOM)), "\uFFFD"), nil
	}

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("テキストへのデコードに失敗しました (charset: %s): %w", name, err)
	}
	return string(decoded), nil
}

// declaresCharset は先頭部分に <meta> による文字コード宣言がありそうかを返します。
func declaresCharset(raw []byte) bool {
	head := raw
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("charset"))
}
