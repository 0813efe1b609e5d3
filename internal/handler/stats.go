package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/moodjournal/internal/model"
	"github.com/sakif/moodjournal/internal/service"
)

// StatsHandler serves streaks, the dashboard summary and the mood/tag
// vocabularies.
type StatsHandler struct {
	journal    *service.JournalService
	streaks    *service.StreakService
	dashboard  *service.DashboardService
	customTags *service.CustomTagService
	logger     *slog.Logger
}

func NewStatsHandler(
	journal *service.JournalService,
	streaks *service.StreakService,
	dashboard *service.DashboardService,
	customTags *service.CustomTagService,
	logger *slog.Logger,
) *StatsHandler {
	return &StatsHandler{
		journal:    journal,
		streaks:    streaks,
		dashboard:  dashboard,
		customTags: customTags,
		logger:     logger,
	}
}

// HandleStreaks handles GET /api/stats/streaks.
func (h *StatsHandler) HandleStreaks(w http.ResponseWriter, r *http.Request) {
	result, err := h.streaks.Calculate(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleSummary handles GET /api/stats/summary?from=&to=.
func (h *StatsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
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

	summary, err := h.dashboard.Summary(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleMoods handles GET /api/moods: every mood used on an entry.
func (h *StatsHandler) HandleMoods(w http.ResponseWriter, r *http.Request) {
	moods, err := h.journal.DistinctMoods(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, moods)
}

// HandleTags handles GET /api/tags. With ?custom=true the custom tag
// vocabulary is merged in.
func (h *StatsHandler) HandleTags(w http.ResponseWriter, r *http.Request) {
	withCustom, err := boolParam(r, "custom")
	if err != nil {
		writeError(w, err)
		return
	}

	tags, err := h.journal.DistinctTags(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if withCustom {
		if tags, err = h.customTags.Suggestions(r.Context(), tags); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, tags)
}

// HandleTaxonomy handles GET /api/moods/taxonomy: the fixed mood list.
func (h *StatsHandler) HandleTaxonomy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.Moods)
}
