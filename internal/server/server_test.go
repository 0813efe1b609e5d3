package server

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/moodjournal/internal/app"
	"github.com/sakif/moodjournal/internal/config"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		DB:     config.DBConfig{Path: ":memory:"},
		Unlock: config.UnlockConfig{TTL: time.Minute},
		Search: config.SearchConfig{MaxPageSize: 50},
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	a, err := app.New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	ts := httptest.NewServer(New(Config{Port: 0}, a).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) (*http.Response, string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, body := do(t, http.MethodGet, ts.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", body)
}

func TestRoutes(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := do(t, http.MethodPut, ts.URL+"/api/entries/2024-03-01", `{"title":"Walk","primaryMood":"Calm","tags":["outdoors"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		want   string
	}{
		{"search", http.MethodGet, "/api/entries?tag=outdoors", "", http.StatusOK, `"totalCount":1`},
		{"recent", http.MethodGet, "/api/entries/recent", "", http.StatusOK, `"title":"Walk"`},
		{"range", http.MethodGet, "/api/entries/range?from=2024-03-01&to=2024-03-31", "", http.StatusOK, `"dateKey":"2024-03-01"`},
		{"get", http.MethodGet, "/api/entries/2024-03-01", "", http.StatusOK, `"primaryCategory":"Neutral"`},
		{"get missing", http.MethodGet, "/api/entries/2024-03-02", "", http.StatusNotFound, `"not_found"`},
		{"bad date", http.MethodGet, "/api/entries/tomorrow", "", http.StatusBadRequest, `"field":"date"`},
		{"streaks", http.MethodGet, "/api/stats/streaks", "", http.StatusOK, `"longestStreak":1`},
		{"summary", http.MethodGet, "/api/stats/summary?from=2024-03-01&to=2024-03-31", "", http.StatusOK, `"neutralPercent":100`},
		{"moods", http.MethodGet, "/api/moods", "", http.StatusOK, `["Calm"]`},
		{"taxonomy", http.MethodGet, "/api/moods/taxonomy", "", http.StatusOK, `"name":"Happy"`},
		{"tags", http.MethodGet, "/api/tags", "", http.StatusOK, `["outdoors"]`},
		{"custom tag", http.MethodPost, "/api/custom-tags", `{"name":"Family"}`, http.StatusCreated, `"name":"Family"`},
		{"custom tags", http.MethodGet, "/api/custom-tags", "", http.StatusOK, `"Family"`},
		{"event", http.MethodPut, "/api/events/birthday", `{"title":"Birthday","start":"2024-03-09","allDay":true}`, http.StatusOK, `"id":"birthday"`},
		{"events month", http.MethodGet, "/api/events?month=2024-03", "", http.StatusOK, `"title":"Birthday"`},
		{"event get", http.MethodGet, "/api/events/birthday", "", http.StatusOK, `"allDay":true`},
		{"event create", http.MethodPost, "/api/events", `{"title":"Call","start":"2024-03-10T09:00:00Z"}`, http.StatusCreated, `"title":"Call"`},
		{"event delete", http.MethodDelete, "/api/events/birthday", "", http.StatusOK, `{"deleted":1}`},
		{"huge page", http.MethodGet, "/api/entries?page=9223372036854775807&pageSize=10", "", http.StatusOK, `"items":[]`},
		{"lock", http.MethodPost, "/api/entries/2024-03-01/lock", "", http.StatusNoContent, ``},
		{"delete", http.MethodDelete, "/api/entries/2024-03-01", "", http.StatusOK, `{"deleted":1}`},
		{"delete again", http.MethodDelete, "/api/entries/2024-03-01", "", http.StatusOK, `{"deleted":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, tt.method, ts.URL+tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode, body)
			assert.Contains(t, body, tt.want)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	do(t, http.MethodGet, ts.URL+"/api/entries/2024-03-01", "")
	resp, body := do(t, http.MethodGet, ts.URL+"/metrics", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "moodjournal_http_requests_total")
	assert.True(t, strings.Contains(body, `route="/api/entries/{date}"`), "series labelled by route pattern")
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := &config.Config{
		DB:     config.DBConfig{Path: ":memory:"},
		Unlock: config.UnlockConfig{TTL: time.Minute},
		Search: config.SearchConfig{MaxPageSize: 50},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := app.New(cfg, logger)
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(Config{Port: 0}, a).Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
