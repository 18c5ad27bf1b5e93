package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func newTestApp(t *testing.T, upstreamURL string) *fiber.App {
	t.Helper()
	cfg := defaultConfig()
	cfg.AIServiceURL = upstreamURL
	cfg.UpstreamTimeout = 2 * time.Second
	return newApp(cfg)
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func errorMessage(t *testing.T, data []byte) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(data, &body), string(data))
	return body.Error
}

func TestRequestIDIsEchoed(t *testing.T) {
	app := newTestApp(t, "http://127.0.0.1:1")

	req := httptest.NewRequest(http.MethodPost, "/api/product", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, "abc-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, "abc-123", resp.Header.Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodPost, "/api/product", strings.NewReader(`{}`))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Len(t, resp.Header.Get(requestIDHeader), 36)
}

func TestUnknownRouteReturnsJSONError(t *testing.T) {
	app := newTestApp(t, "http://127.0.0.1:1")

	resp, data := doJSON(t, app, http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotEmpty(t, errorMessage(t, data))
}

func TestRootCmdRejectsBadConfig(t *testing.T) {
	t.Setenv("AI_SERVICE_URL", "not-a-url")

	cmd := newRootCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	require.Error(t, cmd.Execute())
}

type upstreamCall struct {
	Path      string
	Body      string
	RequestID string
}

// recorder captures requests seen by a fake upstream.
type recorder struct {
	mu    sync.Mutex
	calls []upstreamCall
}

func (r *recorder) record(req *http.Request) {
	b, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, upstreamCall{
		Path:      req.URL.Path,
		Body:      string(b),
		RequestID: req.Header.Get(requestIDHeader),
	})
}

func (r *recorder) all() []upstreamCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]upstreamCall(nil), r.calls...)
}

func (r *recorder) last(t *testing.T) upstreamCall {
	t.Helper()
	calls := r.all()
	require.NotEmpty(t, calls, "upstream was not called")
	return calls[len(calls)-1]
}
