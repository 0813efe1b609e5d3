package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/moodjournal/internal/handler"
	"github.com/sakif/moodjournal/internal/model"
	"github.com/sakif/moodjournal/internal/repository/sqlite"
	"github.com/sakif/moodjournal/internal/service"
	"github.com/sakif/moodjournal/internal/unlock"
)

type fixture struct {
	entries  *handler.EntryHandler
	stats    *handler.StatsHandler
	tags     *handler.CustomTagHandler
	calendar *handler.CalendarHandler
	journal  *service.JournalService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	journal := service.NewJournalService(db, unlock.NewCache(), service.JournalConfig{}, logger)
	customTags := service.NewCustomTagService(db, logger)
	return &fixture{
		entries: handler.NewEntryHandler(journal, logger),
		stats: handler.NewStatsHandler(journal, service.NewStreakService(db, logger),
			service.NewDashboardService(db, logger), customTags, logger),
		tags:     handler.NewCustomTagHandler(customTags, logger),
		calendar: handler.NewCalendarHandler(service.NewCalendarService(db, logger), logger),
		journal:  journal,
	}
}

// withParams attaches chi URL parameters the way the router would.
func withParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func (f *fixture) save(t *testing.T, date, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, "/api/entries/"+date, bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	f.entries.HandleSave(rr, withParams(req, "date", date))
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}

func TestEntryHandler_SaveAndGet(t *testing.T) {
	f := newFixture(t)

	rr := f.save(t, "2024-01-01", `{"title":"New year","primaryMood":"Happy","tags":["work","Gym"]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	saved := decode[model.JournalEntry](t, rr)
	assert.Equal(t, "2024-01-01", saved.DateKey)
	assert.Equal(t, model.CategoryPositive, saved.PrimaryCategory)
	assert.Equal(t, []string{"Gym", "work"}, saved.Tags)

	req := httptest.NewRequest(http.MethodGet, "/api/entries/2024-01-01", nil)
	rr = httptest.NewRecorder()
	f.entries.HandleGet(rr, withParams(req, "date", "2024-01-01"))

	assert.Equal(t, http.StatusOK, rr.Code)
	got := decode[model.JournalEntry](t, rr)
	assert.Equal(t, saved.ID, got.ID)
}

func TestEntryHandler_SaveValidation(t *testing.T) {
	f := newFixture(t)

	t.Run("blank title", func(t *testing.T) {
		rr := f.save(t, "2024-01-01", `{"title":"  ","primaryMood":"Happy"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := decode[handler.ErrorResponse](t, rr)
		assert.Equal(t, "validation_error", body.Error)
		assert.Equal(t, "title", body.Field)
	})

	t.Run("bad date", func(t *testing.T) {
		rr := f.save(t, "01-01-2024", `{"title":"x","primaryMood":"Happy"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("invalid json", func(t *testing.T) {
		rr := f.save(t, "2024-01-01", `{"title":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		rr := f.save(t, "2024-01-01", `{"title":"x","primaryMood":"Happy","mood":"typo"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestEntryHandler_PinFlow(t *testing.T) {
	f := newFixture(t)
	rr := f.save(t, "2024-01-02", `{"title":"secret","content":"diary","primaryMood":"Sad","hasPin":true,"pin":"1234"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.NotContains(t, rr.Body.String(), "1234", "PIN must never be serialized")

	get := func(pin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/entries/2024-01-02", nil)
		if pin != "" {
			req.Header.Set(handler.PinHeader, pin)
		}
		rr := httptest.NewRecorder()
		f.entries.HandleGet(rr, withParams(req, "date", "2024-01-02"))
		return rr
	}

	assert.Equal(t, http.StatusForbidden, get("").Code)
	assert.Equal(t, http.StatusForbidden, get("0000").Code)

	ok := get("1234")
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.Equal(t, "diary", decode[model.JournalEntry](t, ok).Content)

	// The correct PIN unlocked the day for a while.
	assert.Equal(t, http.StatusOK, get("").Code)

	req := httptest.NewRequest(http.MethodPost, "/api/entries/2024-01-02/lock", nil)
	rr = httptest.NewRecorder()
	f.entries.HandleLock(rr, withParams(req, "date", "2024-01-02"))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, http.StatusForbidden, get("").Code)

	req = httptest.NewRequest(http.MethodPost, "/api/entries/2024-01-02/unlock", bytes.NewBufferString(`{"pin":"1234"}`))
	rr = httptest.NewRecorder()
	f.entries.HandleUnlock(rr, withParams(req, "date", "2024-01-02"))
	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decode[handler.UnlockResponse](t, rr)
	assert.True(t, resp.Unlocked)
	assert.NotNil(t, resp.Until)
	assert.Equal(t, http.StatusOK, get("").Code)
}

func TestEntryHandler_GetMissing(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/entries/2024-05-05", nil)
	rr := httptest.NewRecorder()
	f.entries.HandleGet(rr, withParams(req, "date", "2024-05-05"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEntryHandler_Search(t *testing.T) {
	f := newFixture(t)
	f.save(t, "2024-01-01", `{"title":"Gallery","primaryMood":"Happy","tags":["art"]}`)
	f.save(t, "2024-01-02", `{"title":"Shopping","primaryMood":"Sad","tags":["cart"]}`)
	f.save(t, "2024-01-03", `{"title":"Locked","primaryMood":"Calm","tags":["art"],"hasPin":true,"pin":"1111","content":"hidden"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/entries?tag=art&sort=DateKey&asc=true&pageSize=1&page=2", nil)
	rr := httptest.NewRecorder()
	f.entries.HandleSearch(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decode[handler.SearchResponse](t, rr)
	assert.Equal(t, 2, res.TotalCount)
	assert.Equal(t, 2, res.TotalPages)
	assert.Equal(t, 2, res.Page)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "2024-01-03", res.Items[0].DateKey)
	assert.Empty(t, res.Items[0].Content)
}

func TestEntryHandler_SearchHugePage(t *testing.T) {
	f := newFixture(t)
	f.save(t, "2024-01-01", `{"title":"a","primaryMood":"Happy"}`)
	f.save(t, "2024-01-02", `{"title":"b","primaryMood":"Sad"}`)

	rr := httptest.NewRecorder()
	f.entries.HandleSearch(rr, httptest.NewRequest(http.MethodGet, "/api/entries?page=9223372036854775807&pageSize=10", nil))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decode[handler.SearchResponse](t, rr)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Equal(t, 2, res.TotalCount)
	assert.Equal(t, 1, res.TotalPages)
}

func TestEntryHandler_SearchUnicodeAndDelimitedTags(t *testing.T) {
	f := newFixture(t)
	f.save(t, "2024-01-01", `{"title":"Étude","primaryMood":"Ängstlich","tags":["Été"]}`)
	f.save(t, "2024-01-02", `{"title":"Plain","primaryMood":"Happy","tags":["art","work"]}`)

	for _, q := range []string{"title=%C3%A9tude", "mood=%C3%A4ngstlich", "tag=%C3%A9t%C3%A9"} {
		rr := httptest.NewRecorder()
		f.entries.HandleSearch(rr, httptest.NewRequest(http.MethodGet, "/api/entries?"+q, nil))
		require.Equal(t, http.StatusOK, rr.Code, q)
		res := decode[handler.SearchResponse](t, rr)
		require.Len(t, res.Items, 1, q)
		assert.Equal(t, "2024-01-01", res.Items[0].DateKey, q)
	}
}

func TestEntryHandler_SearchBadParams(t *testing.T) {
	f := newFixture(t)

	for _, q := range []string{"page=abc", "from=yesterday", "asc=maybe", "from=2024-02-01&to=2024-01-01"} {
		rr := httptest.NewRecorder()
		f.entries.HandleSearch(rr, httptest.NewRequest(http.MethodGet, "/api/entries?"+q, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
	}
}

func TestEntryHandler_DeleteIdempotent(t *testing.T) {
	f := newFixture(t)
	f.save(t, "2024-01-01", `{"title":"x","primaryMood":"Happy"}`)

	for _, want := range []int64{1, 0} {
		req := httptest.NewRequest(http.MethodDelete, "/api/entries/2024-01-01", nil)
		rr := httptest.NewRecorder()
		f.entries.HandleDelete(rr, withParams(req, "date", "2024-01-01"))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, want, decode[handler.DeleteResponse](t, rr).Deleted)
	}
}

func TestEntryHandler_RangeRequiresBounds(t *testing.T) {
	f := newFixture(t)

	rr := httptest.NewRecorder()
	f.entries.HandleRange(rr, httptest.NewRequest(http.MethodGet, "/api/entries/range?from=2024-01-01", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	f.entries.HandleRange(rr, httptest.NewRequest(http.MethodGet, "/api/entries/range?from=2024-01-01&to=2024-01-31", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
