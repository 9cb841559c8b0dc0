package analyzer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gunitk/testforge/logger"
	"github.com/gunitk/testforge/target"
)

type fakeSource struct {
	pageHTML string
	err      error
	calls    int
}

func (f *fakeSource) FetchHTML(ctx context.Context, url string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.pageHTML, nil
}

func TestAnalyze_StaticSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(fixturePage))
	}))
	defer server.Close()

	a := New(Config{DisableBrowser: true}, logger.NewTestLogger())
	appCtx, err := a.Analyze(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, server.URL, appCtx.URL)
	assert.Equal(t, "Task Tracker", appCtx.Title)
	assert.Equal(t, SourceStatic, appCtx.Source)
	assert.False(t, appCtx.AnalyzedAt.IsZero())
	assert.Len(t, appCtx.Forms, 1)
}

func TestAnalyze_BrowserFallsBackToStatic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><head><title>Plain</title></head><body></body></html>"))
	}))
	defer server.Close()

	log := logger.NewTestLogger()
	a := New(Config{DisableBrowser: true}, log)
	broken := &fakeSource{err: errors.New("chromium not found")}
	a.browser = broken

	appCtx, err := a.Analyze(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, 1, broken.calls)
	assert.Equal(t, SourceStatic, appCtx.Source)
	assert.Equal(t, "Plain", appCtx.Title)
	assert.True(t, log.HasMessage("Browser analysis failed, falling back to static fetch"))
}

func TestAnalyze_BrowserSourcePreferred(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>static body</body></html>"))
	}))
	defer server.Close()

	a := New(Config{DisableBrowser: true}, logger.NewTestLogger())
	a.browser = &fakeSource{pageHTML: "<html><head><title>Rendered</title></head><body></body></html>"}

	appCtx, err := a.Analyze(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, SourceBrowser, appCtx.Source)
	assert.Equal(t, "Rendered", appCtx.Title)
}

func TestAnalyze_RejectsNonLocalTarget(t *testing.T) {
	a := New(Config{DisableBrowser: true}, logger.NewTestLogger())

	_, err := a.Analyze(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, target.ErrUnsupportedTarget)
}

func TestAnalyze_RejectsInvalidURL(t *testing.T) {
	a := New(Config{DisableBrowser: true}, logger.NewTestLogger())

	_, err := a.Analyze(context.Background(), "not a url")
	assert.ErrorIs(t, err, target.ErrInvalidURL)
}

func TestAnalyze_UnreachableTarget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	a := New(Config{DisableBrowser: true}, logger.NewTestLogger())

	_, err := a.Analyze(context.Background(), url)
	assert.ErrorIs(t, err, target.ErrUnreachable)
}

func TestAnalyze_FetchFailureAfterProbe(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits > 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer server.Close()

	a := New(Config{DisableBrowser: true}, logger.NewTestLogger())

	_, err := a.Analyze(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch application page")
}
