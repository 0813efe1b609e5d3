package mcptools

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/moodjournal/internal/app"
	"github.com/sakif/moodjournal/internal/config"
	"github.com/sakif/moodjournal/internal/model"
)

func newToolset(t *testing.T) (*toolset, *app.App) {
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

	return &toolset{journal: a.Journal, streaks: a.Streaks, dashboard: a.Dashboard, calendar: a.Calendar, logger: logger}, a
}

func seed(t *testing.T, a *app.App, inputs ...model.EntryInput) {
	t.Helper()
	for _, in := range inputs {
		_, err := a.Journal.Save(context.Background(), in)
		require.NoError(t, err)
	}
}

func day(key string) time.Time {
	d, err := model.ParseDateKey(key)
	if err != nil {
		panic(err)
	}
	return d
}

func call(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestSearchEntries(t *testing.T) {
	tools, a := newToolset(t)
	seed(t, a,
		model.EntryInput{Date: day("2024-02-01"), Title: "Run", PrimaryMood: "Happy", Tags: []string{"sport"}},
		model.EntryInput{Date: day("2024-02-02"), Title: "Rest", PrimaryMood: "Bored"},
		model.EntryInput{Date: day("2024-02-03"), Title: "Swim", PrimaryMood: "Calm", Tags: []string{"Sport", "water"}},
	)

	res, err := tools.searchEntries(context.Background(), call(map[string]interface{}{
		"tags":      "sport",
		"ascending": true,
		"page_size": float64(1),
		"page":      float64(2),
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	var body struct {
		Items      []model.JournalEntry `json:"items"`
		TotalCount int                  `json:"totalCount"`
		TotalPages int                  `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &body))
	assert.Equal(t, 2, body.TotalCount)
	assert.Equal(t, 2, body.TotalPages)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "Swim", body.Items[0].Title)
}

func TestSearchEntries_BadDate(t *testing.T) {
	tools, _ := newToolset(t)

	res, err := tools.searchEntries(context.Background(), call(map[string]interface{}{"from": "last week"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "YYYY-MM-DD")
}

func TestGetEntry(t *testing.T) {
	tools, a := newToolset(t)
	seed(t, a, model.EntryInput{
		Date: day("2024-02-14"), Title: "Private", Content: "dear diary",
		PrimaryMood: "Nostalgic", HasPin: true, Pin: "4321",
	})

	tests := []struct {
		name    string
		args    map[string]interface{}
		isError bool
		want    string
	}{
		{"missing date", map[string]interface{}{}, true, "date"},
		{"no entry", map[string]interface{}{"date": "2024-02-15"}, true, "not found"},
		{"locked", map[string]interface{}{"date": "2024-02-14"}, true, "locked"},
		{"wrong pin", map[string]interface{}{"date": "2024-02-14", "pin": "0000"}, true, "incorrect PIN"},
		{"right pin", map[string]interface{}{"date": "2024-02-14", "pin": "4321"}, false, "dear diary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tools.getEntry(context.Background(), call(tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.isError, res.IsError)
			assert.Contains(t, text(t, res), tt.want)
		})
	}
}

func TestStatsTools(t *testing.T) {
	tools, a := newToolset(t)
	seed(t, a,
		model.EntryInput{Date: day("2024-03-01"), Title: "a", PrimaryMood: "Happy", SecondaryMoods: []string{"Calm"}, Tags: []string{"work"}},
		model.EntryInput{Date: day("2024-03-02"), Title: "b", PrimaryMood: "happy", Tags: []string{"Work", "family"}},
	)
	ctx := context.Background()

	res, err := tools.listMoods(ctx, call(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `["Calm","Happy"]`, text(t, res))

	res, err = tools.listTags(ctx, call(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `["family","work"]`, text(t, res))

	res, err = tools.calculateStreaks(ctx, call(nil))
	require.NoError(t, err)
	var streaks model.StreakResult
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &streaks))
	assert.Equal(t, 2, streaks.LongestStreak)
	assert.Equal(t, 0, streaks.MissedDays)

	res, err = tools.moodSummary(ctx, call(map[string]interface{}{"from": "2024-03-01", "to": "2024-03-31"}))
	require.NoError(t, err)
	var summary model.MoodSummary
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &summary))
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 100, summary.PositivePercent)
	assert.Equal(t, "Happy", summary.MostFrequentMood.Name)

	res, err = tools.moodSummary(ctx, call(map[string]interface{}{"from": "2024-03-31", "to": "2024-03-01"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestNewServer_RegistersTools(t *testing.T) {
	_, a := newToolset(t)
	s := NewServer(a, "test")

	msg := s.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	b, err := json.Marshal(msg)
	require.NoError(t, err)

	for _, name := range []string{"search_entries", "get_entry", "calculate_streaks", "list_moods", "list_tags", "mood_summary", "list_events"} {
		assert.Contains(t, string(b), `"`+name+`"`)
	}
}

func TestListEvents(t *testing.T) {
	tools, a := newToolset(t)
	ctx := context.Background()
	for _, key := range []string{"2024-03-01", "2024-03-20", "2024-04-01"} {
		_, err := a.Calendar.Save(ctx, model.EventInput{Title: "event " + key, Start: day(key), AllDay: true})
		require.NoError(t, err)
	}

	res, err := tools.listEvents(ctx, call(map[string]interface{}{"month": "2024-03"}))
	require.NoError(t, err)
	var events []model.CalendarEvent
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &events))
	require.Len(t, events, 2)
	assert.Equal(t, "event 2024-03-01", events[0].Title)

	res, err = tools.listEvents(ctx, call(map[string]interface{}{"from": "2024-03-20", "to": "2024-04-02"}))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &events))
	assert.Len(t, events, 2)

	res, err = tools.listEvents(ctx, call(map[string]interface{}{"month": "March"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "YYYY-MM")

	res, err = tools.listEvents(ctx, call(map[string]interface{}{"from": "2024-03-01"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
