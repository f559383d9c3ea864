package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/shouni/go-phone-exact/internal/pipeline"
	"github.com/shouni/go-phone-exact/pkg/httpclient"
	"github.com/shouni/go-phone-exact/pkg/report"
)

// --- グローバル定数 ---

const (
	appName           = "phone-exact"
	defaultTimeoutSec = 0 // 0 はタイムアウトなし (HTTPクライアントのデフォルト)
)

// --- フラグ構造体 ---

// AppFlags はこのアプリケーション固有のフラグを保持
type AppFlags struct {
	Debug      bool // --debug 取得したコンテンツ全体を出力
	Text       bool // --text HTMLの表示テキストのみを検索
	TimeoutSec int  // --timeout タイムアウト
	NoColor    bool // --no-color 色付けを無効化
	Verbose    bool // --verbose 診断ログを標準エラーに出力
}

// newLogger は verbose の場合のみ w (通常は標準エラー) へ出力するロガーを返します。
// レポートを書く標準出力には診断ログを混ぜません。
func newLogger(verbose bool, w io.Writer) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		zap.DebugLevel,
	)
	return zap.New(core, zap.Development(), zap.AddCaller())
}

// runScan は、1つのURLに対するスキャンを実行し、結果を出力するメインロジックです。
func runScan(cmd *cobra.Command, url string, flags *AppFlags) error {
	logger := newLogger(flags.Verbose, cmd.ErrOrStderr())
	defer func() { _ = logger.Sync() }()

	var reportOpts []report.Option
	if flags.NoColor {
		reportOpts = append(reportOpts, report.WithColor(false))
	}
	reporter := report.New(cmd.OutOrStdout(), reportOpts...)

	// 1. 依存性の初期化 (Fetcher -> Scanner)
	timeout := time.Duration(flags.TimeoutSec) * time.Second
	logger.Debug("HTTPクライアントを初期化します", zap.Duration("timeout", timeout))
	client := httpclient.New(timeout, httpclient.WithLogger(logger))

	scanner, err := pipeline.NewScanner(client,
		pipeline.WithLogger(logger),
		pipeline.WithVisibleTextOnly(flags.Text),
		pipeline.WithFetchedHook(func(content string, elapsed time.Duration) {
			reporter.Fetched(elapsed, content, flags.Debug)
		}),
	)
	if err != nil {
		return fmt.Errorf("Scannerの初期化エラー: %w", err)
	}

	// 2. メインロジックの実行
	reporter.Start(url)
	result, err := scanner.Scan(cmd.Context(), url)
	if err != nil {
		return fmt.Errorf("スキャンの実行エラー: %w", err)
	}

	// 3. 結果の出力
	reporter.Matched(result)
	return nil
}

// newRootCmd はルートコマンドを生成します。
func newRootCmd() *cobra.Command {
	flags := &AppFlags{}

	rootCmd := &cobra.Command{
		Use:   appName + " <url>",
		Short: "Webページを取得し、電話番号らしき文字列を出現回数付きで一覧表示します",
		Long: `指定されたURLのページを1回だけ取得し、本文中の北米形式の電話番号
((555) 123-4567, 555-123-4567, 555 123 4567 など) を検索して、
見つかった文字列ごとの出現回数を表示します。`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args[0], flags)
		},
	}

	rootCmd.Flags().BoolVar(&flags.Debug, "debug", false, "取得したコンテンツ全体を検索前に出力します")
	rootCmd.Flags().BoolVar(&flags.Text, "text", false, "HTMLのタグやスクリプトを除いた表示テキストのみを検索します")
	rootCmd.Flags().IntVar(&flags.TimeoutSec, "timeout", defaultTimeoutSec, "HTTPリクエストのタイムアウト時間（秒）、0 は無制限")
	rootCmd.Flags().BoolVar(&flags.NoColor, "no-color", false, "色付けを無効にします")
	rootCmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "診断ログを標準エラーに出力します")

	return rootCmd
}

// --- エントリポイント ---

// Execute は、ルートコマンドを実行するメイン関数です。
// エラーが発生した場合は標準エラーに出力し、終了コード 1 で終了します。
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
