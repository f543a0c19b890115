package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/voicenews/internal/queue"
	"github.com/nikhilbhutani/voicenews/internal/retention"
)

type Purger interface {
	Purge(ctx context.Context, maxAge time.Duration) (retention.Result, error)
}

// PurgeWorker handles audio:purge tasks.
type PurgeWorker struct {
	purger Purger
}

func NewPurgeWorker(p Purger) *PurgeWorker {
	return &PurgeWorker{purger: p}
}

func (w *PurgeWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.AudioPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	slog.Info("purging audio", "trigger", payload.Trigger, "max_age_seconds", payload.MaxAgeSeconds)

	res, err := w.purger.Purge(ctx, payload.MaxAge())
	if err != nil {
		return fmt.Errorf("purge audio: %w", err)
	}
	if res.Failed > 0 {
		return fmt.Errorf("purge audio: %d of %d deletions failed", res.Failed, res.Scanned)
	}
	return nil
}
