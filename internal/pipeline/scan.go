package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shouni/go-phone-exact/pkg/extract"
	"github.com/shouni/go-phone-exact/pkg/phone"
	"github.com/shouni/go-phone-exact/pkg/types"
)

// Fetcher は、URLからデコード済みのテキストを取得する機能のインターフェースです。
// *httpclient.Client はこのインターフェースを満たします。
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// Scanner は取得と検索を順番に実行し、各ステップの所要時間を計測します。
type Scanner struct {
	fetcher     Fetcher
	logger      *zap.Logger
	visibleOnly bool
	onFetched   FetchedHook
	now         func() time.Time
}

// FetchedHook は取得が成功した直後、検索を始める前に呼ばれます。
type FetchedHook func(content string, elapsed time.Duration)

// Option はScannerの設定を行うための関数型です。
type Option func(*Scanner)

// WithLogger は診断ログの出力先を設定します。
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithVisibleTextOnly が true の場合、HTMLの表示テキストだけを検索対象にします。
func WithVisibleTextOnly(enabled bool) Option {
	return func(s *Scanner) {
		s.visibleOnly = enabled
	}
}

// WithFetchedHook は取得完了時に呼ばれる関数を設定します。
// 取得時間や取得内容を検索より先に出力したい場合に使います。
func WithFetchedHook(hook FetchedHook) Option {
	return func(s *Scanner) {
		s.onFetched = hook
	}
}

// NewScanner は、新しいScannerのインスタンスを生成します。
func NewScanner(fetcher Fetcher, options ...Option) (*Scanner, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("pipeline.NewScanner: Fetcher cannot be nil")
	}
	s := &Scanner{
		fetcher: fetcher,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// timeit は fn を実行し、その所要時間を返します。
func (s *Scanner) timeit(fn func()) time.Duration {
	start := s.now()
	fn()
	return s.now().Sub(start)
}

// Scan はURLのコンテンツを取得し、電話番号を集計します。
// 取得に失敗した場合は部分的な結果を返さず、エラーのみを返します。
func (s *Scanner) Scan(ctx context.Context, url string) (*types.ScanResult, error) {
	// 1. コンテンツの取得
	var (
		content  string
		fetchErr error
	)
	fetchDuration := s.timeit(func() {
		content, fetchErr = s.fetcher.FetchText(ctx, url)
	})
	if fetchErr != nil {
		return nil, fmt.Errorf("コンテンツ取得エラー (URL: %s): %w", url, fetchErr)
	}
	s.logger.Debug("コンテンツを取得しました",
		zap.String("url", url),
		zap.Int("length", len(content)),
		zap.Duration("elapsed", fetchDuration),
	)
	if s.onFetched != nil {
		s.onFetched(content, fetchDuration)
	}

	// 2. 検索対象テキストの決定
	target := content
	if s.visibleOnly {
		text, err := extract.VisibleText(content)
		if err != nil {
			return nil, fmt.Errorf("表示テキストの抽出エラー (URL: %s): %w", url, err)
		}
		target = text
	}

	// 3. 電話番号の検索と集計
	var tally phone.Tally
	matchDuration := s.timeit(func() {
		tally = phone.Count(target)
	})
	s.logger.Debug("電話番号を検索しました",
		zap.Int("distinct", len(tally)),
		zap.Int("total", tally.Total()),
		zap.Duration("elapsed", matchDuration),
	)

	return &types.ScanResult{
		URL:           url,
		Content:       content,
		Tally:         tally,
		FetchDuration: fetchDuration,
		MatchDuration: matchDuration,
	}, nil
}
