package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/voicenews/internal/storage"
	"github.com/nikhilbhutani/voicenews/internal/tts"
)

type AudioHandler struct {
	store storage.Storage
}

func NewAudioHandler(store storage.Storage) *AudioHandler {
	return &AudioHandler{store: store}
}

// Serve streams a stored audio file. Seekable sources get range support.
func (h *AudioHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if err := storage.ValidName(name); err != nil {
		writeError(w, http.StatusNotFound, "audio file not found")
		return
	}

	rc, err := h.store.Open(r.Context(), name)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "audio file not found")
		return
	}
	if err != nil {
		slog.Error("open audio", "file", name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read audio file")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", tts.ContentTypeFor(name))
	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, name, time.Time{}, rs)
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("stream audio", "file", name, "error", err)
	}
}
