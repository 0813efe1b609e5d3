package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/moodjournal/internal/apperror"
	"github.com/sakif/moodjournal/internal/model"
	"github.com/sakif/moodjournal/internal/service"
)

// monthLayout is the ?month= form, e.g. 2024-03.
const monthLayout = "2006-01"

// CalendarHandler serves /api/events.
type CalendarHandler struct {
	calendar *service.CalendarService
	logger   *slog.Logger
}

func NewCalendarHandler(calendar *service.CalendarService, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{calendar: calendar, logger: logger}
}

// SaveEventRequest is the body of POST /api/events and PUT /api/events/{id}.
// start and end take RFC 3339 or YYYY-MM-DD.
type SaveEventRequest struct {
	Title  string `json:"title"`
	Start  string `json:"start"`
	End    string `json:"end,omitempty"`
	AllDay bool   `json:"allDay"`
	Notes  string `json:"notes,omitempty"`
}

func (req SaveEventRequest) toInput(id string) (model.EventInput, error) {
	in := model.EventInput{ID: id, Title: req.Title, AllDay: req.AllDay, Notes: req.Notes}

	start, err := eventTime("start", req.Start)
	if err != nil {
		return in, err
	}
	if start == nil {
		return in, apperror.ValidationFailed("start", "start is required")
	}
	in.Start = *start

	if in.End, err = eventTime("end", req.End); err != nil {
		return in, err
	}
	return in, nil
}

func eventTime(field, raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := model.ParseEventTime(raw)
	if err != nil {
		return nil, apperror.ValidationFailed(field,
			fmt.Sprintf("%s must be RFC 3339 or YYYY-MM-DD, got %q", field, raw))
	}
	return &t, nil
}

// HandleList handles GET /api/events. ?month=2024-03 selects one month;
// ?from=&to= selects [from, to); no parameters lists everything.
func (h *CalendarHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		events []model.CalendarEvent
		err    error
	)
	if raw := strings.TrimSpace(q.Get("month")); raw != "" {
		m, perr := time.Parse(monthLayout, raw)
		if perr != nil {
			writeError(w, apperror.ValidationFailed("month", fmt.Sprintf("month must be YYYY-MM, got %q", raw)))
			return
		}
		events, err = h.calendar.Month(r.Context(), m.Year(), m.Month())
	} else {
		var from, to *time.Time
		if from, err = eventTime("from", q.Get("from")); err != nil {
			writeError(w, err)
			return
		}
		if to, err = eventTime("to", q.Get("to")); err != nil {
			writeError(w, err)
			return
		}
		events, err = h.calendar.List(r.Context(), from, to)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *CalendarHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ev, err := h.calendar.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// HandleCreate handles POST /api/events.
func (h *CalendarHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "", http.StatusCreated)
}

// HandleUpdate handles PUT /api/events/{id}: replace the event, or create
// it under that id.
func (h *CalendarHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (h *CalendarHandler) save(w http.ResponseWriter, r *http.Request, id string, status int) {
	var req SaveEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	in, err := req.toInput(id)
	if err != nil {
		writeError(w, err)
		return
	}

	ev, err := h.calendar.Save(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, ev)
}

func (h *CalendarHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	n, err := h.calendar.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Deleted: n})
}
