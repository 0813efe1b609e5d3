package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/moodjournal/internal/service"
)

// CustomTagHandler serves /api/custom-tags.
type CustomTagHandler struct {
	tags   *service.CustomTagService
	logger *slog.Logger
}

func NewCustomTagHandler(tags *service.CustomTagService, logger *slog.Logger) *CustomTagHandler {
	return &CustomTagHandler{tags: tags, logger: logger}
}

type CreateCustomTagRequest struct {
	Name string `json:"name"`
}

func (h *CustomTagHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

func (h *CustomTagHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomTagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	tag, err := h.tags.Add(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (h *CustomTagHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	n, err := h.tags.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Deleted: n})
}
