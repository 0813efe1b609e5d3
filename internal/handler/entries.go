package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/moodjournal/internal/model"
	"github.com/sakif/moodjournal/internal/service"
)

// PinHeader carries the PIN for reading a protected entry.
const PinHeader = "X-Entry-PIN"

// EntryHandler serves the /api/entries routes.
type EntryHandler struct {
	journal *service.JournalService
	logger  *slog.Logger
}

func NewEntryHandler(journal *service.JournalService, logger *slog.Logger) *EntryHandler {
	return &EntryHandler{journal: journal, logger: logger}
}

// SaveEntryRequest is the PUT /api/entries/{date} body.
type SaveEntryRequest struct {
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	HasPin          bool     `json:"hasPin"`
	Pin             string   `json:"pin"`
	PrimaryMood     string   `json:"primaryMood"`
	SecondaryMoods  []string `json:"secondaryMoods"`
	PrimaryCategory string   `json:"primaryCategory"`
	Tags            []string `json:"tags"`
}

// SearchResponse is one page of search results.
type SearchResponse struct {
	Items      []model.JournalEntry `json:"items"`
	TotalCount int                  `json:"totalCount"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"pageSize"`
	TotalPages int                  `json:"totalPages"`
}

type UnlockRequest struct {
	Pin string `json:"pin"`
}

type UnlockResponse struct {
	Unlocked bool       `json:"unlocked"`
	Until    *time.Time `json:"until,omitempty"`
}

type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// HandleSearch handles GET /api/entries.
//
//	?title=walk&from=2024-01-01&to=2024-01-31&mood=Happy&tag=work&tag=gym
//	&sort=UpdatedAt&asc=false&page=2&pageSize=10
func (h *EntryHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	spec, err := searchSpecFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.journal.Search(r.Context(), spec)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages(),
	})
}

func searchSpecFromQuery(r *http.Request) (model.SearchSpec, error) {
	q := r.URL.Query()
	spec := model.SearchSpec{
		TitleContains: q.Get("title"),
		Moods:         listParam(r, "mood"),
		Tags:          listParam(r, "tag"),
		Sort:          model.SortColumn(q.Get("sort")),
	}

	var err error
	if spec.From, err = optionalDate(r, "from"); err != nil {
		return spec, err
	}
	if spec.To, err = optionalDate(r, "to"); err != nil {
		return spec, err
	}
	if spec.Ascending, err = boolParam(r, "asc"); err != nil {
		return spec, err
	}
	if spec.Page, err = intParam(r, "page", 1); err != nil {
		return spec, err
	}
	if spec.PageSize, err = intParam(r, "pageSize", service.DefaultPageSize); err != nil {
		return spec, err
	}
	return spec, nil
}

// HandleRecent handles GET /api/entries/recent?limit=5.
func (h *EntryHandler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", service.DefaultRecentLimit)
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := h.journal.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleRange handles GET /api/entries/range?from=&to=.
func (h *EntryHandler) HandleRange(w http.ResponseWriter, r *http.Request) {
	from, err := requiredDate(r, "from")
	if err != nil {
		writeError(w, err)
		return
	}
	to, err := requiredDate(r, "to")
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := h.journal.Range(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleGet handles GET /api/entries/{date}. Protected entries need the PIN
// in the X-Entry-PIN header or a prior unlock.
func (h *EntryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	entry, err := h.journal.Open(r.Context(), date, r.Header.Get(PinHeader))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// HandleSave handles PUT /api/entries/{date}: create or replace the day.
func (h *EntryHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req SaveEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("invalid entry JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	entry, err := h.journal.Save(r.Context(), model.EntryInput{
		Date:            date,
		Title:           req.Title,
		Content:         req.Content,
		HasPin:          req.HasPin,
		Pin:             req.Pin,
		PrimaryMood:     req.PrimaryMood,
		SecondaryMoods:  req.SecondaryMoods,
		PrimaryCategory: req.PrimaryCategory,
		Tags:            req.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// HandleDelete handles DELETE /api/entries/{date}. Deleting an empty day
// succeeds with deleted=0.
func (h *EntryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	n, err := h.journal.Delete(r.Context(), date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Deleted: n})
}

// HandleUnlock handles POST /api/entries/{date}/unlock.
func (h *EntryHandler) HandleUnlock(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req UnlockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	until, err := h.journal.Unlock(r.Context(), date, req.Pin)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := UnlockResponse{Unlocked: true}
	if !until.IsZero() {
		resp.Until = &until
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleLock handles POST /api/entries/{date}/lock.
func (h *EntryHandler) HandleLock(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	h.journal.Lock(date)
	w.WriteHeader(http.StatusNoContent)
}
