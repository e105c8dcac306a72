package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spacesedan/writeclean/internal/analyzer"
	"github.com/spacesedan/writeclean/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	entries map[string]*models.AnalysisResult
	getErr  error
	sets    int
	ttl     time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]*models.AnalysisResult{}}
}

func (c *fakeCache) GetAnalysis(_ context.Context, text string) (*models.AnalysisResult, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	r, ok := c.entries[text]
	return r, ok, nil
}

func (c *fakeCache) SetAnalysis(_ context.Context, text string, result *models.AnalysisResult, ttl time.Duration) error {
	c.sets++
	c.ttl = ttl
	c.entries[text] = result
	return nil
}

func newTestServer(t *testing.T, cfg Config, opts ...Option) http.Handler {
	t.Helper()
	engine, err := analyzer.Default()
	require.NoError(t, err)
	return New(engine, cfg, opts...).Handler()
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeEndpoint(t *testing.T) {
	h := newTestServer(t, DefaultConfig())

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"plain text", `{"text":"That movie was totally mid, no cap."}`, http.StatusOK},
		{"markdown", `{"text":"## Review\n\nI *love* it.","format":"markdown"}`, http.StatusOK},
		{"empty text", `{"text":"   "}`, http.StatusBadRequest},
		{"missing text", `{}`, http.StatusBadRequest},
		{"bad json", `{"text":`, http.StatusBadRequest},
		{"unknown format", `{"text":"hi","format":"rtf"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(h, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			if tt.status != http.StatusOK {
				var resp map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp["error"])
				return
			}

			var result models.AnalysisResult
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
			assert.NotEmpty(t, result.Tokens)
			assert.Equal(t, models.LabelForScore(result.Sentiment.Score), result.Sentiment.Label)
		})
	}
}

func TestAnalyzeEndpointContract(t *testing.T) {
	h := newTestServer(t, DefaultConfig())

	rec := post(h, `{"text":"Hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	for _, key := range []string{"tokens", "sentiment", "improvement", "rawText"} {
		assert.Contains(t, raw, key)
	}
	assert.Contains(t, string(raw["sentiment"]), `"slangDetected":[]`)
}

func TestAnalyzeTimeout(t *testing.T) {
	h := newTestServer(t, Config{AnalyzeTimeout: time.Nanosecond})

	rec := post(h, `{"text":"Hello world"}`)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestAnalyzeCaching(t *testing.T) {
	cache := newFakeCache()
	cfg := DefaultConfig()
	cfg.CacheTTL = time.Hour
	h := newTestServer(t, cfg, WithCache(cache, nil))

	first := post(h, `{"text":"Great job!"}`)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, time.Hour, cache.ttl)

	second := post(h, `{"text":"Great job!"}`)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, cache.sets)
}

func TestAnalyzeCacheUnavailable(t *testing.T) {
	t.Run("lookup error falls through", func(t *testing.T) {
		cache := newFakeCache()
		cache.getErr = errors.New("connection refused")
		h := newTestServer(t, DefaultConfig(), WithCache(cache, nil))

		rec := post(h, `{"text":"Great job!"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unhealthy cache is bypassed", func(t *testing.T) {
		cache := newFakeCache()
		healthy := &atomic.Bool{}
		h := newTestServer(t, DefaultConfig(), WithCache(cache, healthy))

		rec := post(h, `{"text":"Great job!"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Zero(t, cache.sets)
	})
}

func TestHealthEndpoint(t *testing.T) {
	get := func(h http.Handler) map[string]string {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp
	}

	assert.Equal(t, "disabled", get(newTestServer(t, DefaultConfig()))["cache"])

	healthy := &atomic.Bool{}
	assert.Equal(t, "unavailable", get(newTestServer(t, DefaultConfig(), WithCache(newFakeCache(), healthy)))["cache"])

	healthy.Store(true)
	assert.Equal(t, "ok", get(newTestServer(t, DefaultConfig(), WithCache(newFakeCache(), healthy)))["cache"])
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, DefaultConfig())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analyze", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
