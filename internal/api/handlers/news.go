package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/voicenews/internal/models"
	"github.com/nikhilbhutani/voicenews/internal/news"
	"github.com/nikhilbhutani/voicenews/internal/pipeline"
	"github.com/nikhilbhutani/voicenews/internal/preference"
	"github.com/nikhilbhutani/voicenews/internal/tts"
)

const (
	msgNoFieldForUser = "no field selected for this user"
	msgNoField        = "no field selected"
)

type NewsHandler struct {
	prefs    *preference.Store
	pipeline *pipeline.Service
}

func NewNewsHandler(prefs *preference.Store, p *pipeline.Service) *NewsHandler {
	return &NewsHandler{prefs: prefs, pipeline: p}
}

// SelectField stores the caller's category. Unknown categories are
// rejected while decoding, before the store is touched.
func (h *NewsHandler) SelectField(w http.ResponseWriter, r *http.Request) {
	var req models.UserPreference
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, models.ErrInvalidCategory) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusUnprocessableEntity, "user_id required")
		return
	}
	if err := h.prefs.Set(req.UserID, req.Field); err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("%v (expected one of %s)", err, categoryList()))
		return
	}

	slog.Info("preference set", "user_id", req.UserID, "category", req.Field)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "success",
		"user_id":        req.UserID,
		"selected_field": req.Field,
	})
}

func (h *NewsHandler) GetField(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	field, ok := h.prefs.Get(userID)
	if !ok {
		writeError(w, http.StatusOK, msgNoFieldForUser)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":        userID,
		"selected_field": field,
	})
}

func (h *NewsHandler) Fields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"fields": models.Categories()})
}

func (h *NewsHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	pageSize := news.DefaultPageSize
	if v := r.URL.Query().Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "page_size must be an integer")
			return
		}
		pageSize = n
	}
	if err := news.ValidatePageSize(pageSize); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	res, err := h.pipeline.List(r.Context(), chi.URLParam(r, "user_id"), pageSize)
	if err != nil {
		writePipelineError(w, err, msgNoFieldForUser)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *NewsHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	res, err := h.pipeline.Summarize(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		writePipelineError(w, err, msgNoFieldForUser)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *NewsHandler) VoiceSummary(w http.ResponseWriter, r *http.Request) {
	res, err := h.pipeline.Speak(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		writePipelineError(w, err, msgNoField)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// writePipelineError renders expected outcomes as 200 with an error body
// and dependency failures with a gateway status.
func writePipelineError(w http.ResponseWriter, err error, noFieldMsg string) {
	switch {
	case errors.Is(err, pipeline.ErrNoFieldSelected):
		writeError(w, http.StatusOK, noFieldMsg)
	case errors.Is(err, pipeline.ErrNoArticles):
		writeError(w, http.StatusOK, pipeline.ErrNoArticles.Error())
	case errors.Is(err, pipeline.ErrNoContent), errors.Is(err, tts.ErrNoContent):
		writeError(w, http.StatusOK, pipeline.ErrNoContent.Error())
	case errors.Is(err, news.ErrInvalidPageSize), errors.Is(err, models.ErrInvalidCategory):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, news.ErrUpstreamTimeout):
		writeError(w, http.StatusGatewayTimeout, news.ErrUpstreamTimeout.Error())
	case errors.Is(err, news.ErrUpstreamMalformed):
		writeError(w, http.StatusBadGateway, news.ErrUpstreamMalformed.Error())
	case errors.Is(err, news.ErrUpstreamUnavailable):
		writeError(w, http.StatusBadGateway, news.ErrUpstreamUnavailable.Error())
	case errors.Is(err, tts.ErrSynthesis):
		slog.Error("speech synthesis failed", "error", err)
		writeError(w, http.StatusBadGateway, tts.ErrSynthesis.Error())
	default:
		slog.Error("pipeline failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func categoryList() string {
	cats := models.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
