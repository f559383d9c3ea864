package cmd

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-phone-exact/pkg/httpclient"
	"github.com/shouni/go-phone-exact/pkg/report"
)

// executeRoot はルートコマンドを引数付きで実行し、標準出力と標準エラーの内容を返します。
func executeRoot(t *testing.T, args ...string) (stdout string, stderr string, err error) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	rootCmd := newRootCmd()
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func newTestServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

// lines は出力を行ごとに分割します。
func lines(out string) []string {
	return strings.Split(strings.TrimSuffix(out, "\n"), "\n")
}

func TestRootCmd_Matches(t *testing.T) {
	server := newTestServer(t, "(555) 123-4567 or 555-123-4567 again, 555-123-4567")

	stdout, _, err := executeRoot(t, server.URL, "--no-color")
	require.NoError(t, err)

	out := lines(stdout)
	require.Len(t, out, 5)
	assert.Equal(t, "Scraping "+server.URL+" for phone numbers...", out[0])
	assert.Regexp(t, `^Content Fetch took \d+ ms$`, out[1])
	assert.Regexp(t, `^Regex Search took \d+ ms$`, out[2])
	assert.Equal(t, "555-123-4567: 2 hits", out[3])
	assert.Equal(t, "(555) 123-4567: 1 hits", out[4])
}

func TestRootCmd_NoMatches(t *testing.T) {
	server := newTestServer(t, "no numbers here")

	stdout, _, err := executeRoot(t, server.URL, "--no-color")
	require.NoError(t, err)

	out := lines(stdout)
	require.Len(t, out, 4)
	assert.Equal(t, report.NoMatchesMessage, out[3])
}

func TestRootCmd_Debug(t *testing.T) {
	server := newTestServer(t, "Call 555-123-4567 now")

	stdout, _, err := executeRoot(t, server.URL, "--debug", "--no-color")
	require.NoError(t, err)

	out := lines(stdout)
	require.Len(t, out, 5)
	assert.Equal(t, "Content: Call 555-123-4567 now", out[2])
	assert.Equal(t, "555-123-4567: 1 hits", out[4])
}

func TestRootCmd_TextMode(t *testing.T) {
	server := newTestServer(t, `<a href="tel:555-123-4567">(555) 123-4567</a>`)

	stdout, _, err := executeRoot(t, server.URL, "--text", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, stdout, "(555) 123-4567: 1 hits")
	assert.NotContains(t, stdout, "555-123-4567: 1 hits")
}

func TestRootCmd_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "gone, call 555-123-4567")
	}))
	t.Cleanup(server.Close)

	stdout, _, err := executeRoot(t, server.URL, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, stdout, "555-123-4567: 1 hits")
}

func TestRootCmd_FetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	stdout, _, err := executeRoot(t, url, "--no-color")
	require.Error(t, err)
	assert.True(t, httpclient.IsTransportError(err))

	// 開始メッセージ以外は何も出力されない
	assert.Equal(t, []string{"Scraping " + url + " for phone numbers..."}, lines(stdout))
}

func TestRootCmd_Args(t *testing.T) {
	t.Run("missing url", func(t *testing.T) {
		stdout, _, err := executeRoot(t)
		require.Error(t, err)
		assert.Empty(t, stdout)
	})
	t.Run("too many args", func(t *testing.T) {
		_, _, err := executeRoot(t, "https://a.example", "https://b.example")
		require.Error(t, err)
	})
}

func TestRootCmd_UndeclaredUTF8Body(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, strings.Repeat("a", 1100)+" café ５５５-１２３-４５６７")
	}))
	t.Cleanup(server.Close)

	stdout, _, err := executeRoot(t, server.URL, "--no-color")
	require.NoError(t, err)

	out := lines(stdout)
	require.Len(t, out, 4)
	assert.Equal(t, "５５５-１２３-４５６７: 1 hits", out[3])
}

func TestRootCmd_VerboseLogsGoToStderr(t *testing.T) {
	server := newTestServer(t, "Call 555-123-4567 now")

	stdout, stderr, err := executeRoot(t, server.URL, "-v", "--no-color")
	require.NoError(t, err)

	assert.Contains(t, stderr, "GETリクエストを送信します")
	assert.Contains(t, stderr, "電話番号を検索しました")

	out := lines(stdout)
	require.Len(t, out, 4)
	assert.Equal(t, "Scraping "+server.URL+" for phone numbers...", out[0])
	assert.Regexp(t, `^Content Fetch took \d+ ms$`, out[1])
	assert.Regexp(t, `^Regex Search took \d+ ms$`, out[2])
	assert.Equal(t, "555-123-4567: 1 hits", out[3])
}

func TestNewLogger(t *testing.T) {
	t.Run("quiet", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(false, &buf)
		logger.Debug("hidden")
		logger.Info("hidden")
		assert.Empty(t, buf.String())
	})

	t.Run("verbose", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger(true, &buf)
		logger.Debug("debug message")
		require.NoError(t, logger.Sync())
		assert.Contains(t, buf.String(), "DEBUG")
		assert.Contains(t, buf.String(), "debug message")
	})
}
