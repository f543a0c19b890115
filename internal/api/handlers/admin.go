package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/nikhilbhutani/voicenews/internal/queue"
)

// PurgeEnqueuer queues audio retention runs.
type PurgeEnqueuer interface {
	EnqueueAudioPurge(ctx context.Context, payload queue.AudioPurgePayload) (string, error)
}

type AdminHandler struct {
	queue PurgeEnqueuer
}

func NewAdminHandler(q PurgeEnqueuer) *AdminHandler {
	return &AdminHandler{queue: q}
}

// PurgeAudio enqueues a purge. ?max_age=72h overrides the configured retention.
func (h *AdminHandler) PurgeAudio(w http.ResponseWriter, r *http.Request) {
	if h.queue == nil {
		writeError(w, http.StatusServiceUnavailable, "task queue not configured")
		return
	}

	payload := queue.AudioPurgePayload{Trigger: "admin"}
	if v := r.URL.Query().Get("max_age"); v != "" {
		d, err := time.ParseDuration(v)
		// The task carries whole seconds; anything shorter would become 0,
		// which means "use the configured retention".
		if err != nil || d < time.Second {
			writeError(w, http.StatusUnprocessableEntity, "max_age must be a duration of at least 1s, such as 24h")
			return
		}
		payload.MaxAgeSeconds = int64(d / time.Second)
	}

	taskID, err := h.queue.EnqueueAudioPurge(r.Context(), payload)
	if err != nil {
		slog.Error("enqueue audio purge", "error", err)
		writeError(w, http.StatusServiceUnavailable, "failed to enqueue purge")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "enqueued", "task_id": taskID})
}
