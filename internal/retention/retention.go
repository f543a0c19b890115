package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikhilbhutani/voicenews/internal/metrics"
	"github.com/nikhilbhutani/voicenews/internal/storage"
)

// Result summarises one purge pass.
type Result struct {
	Scanned int `json:"scanned"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// Purger removes audio files older than a maximum age.
type Purger struct {
	store   storage.Storage
	maxAge  time.Duration
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewPurger(store storage.Storage, maxAge time.Duration, m *metrics.Metrics) *Purger {
	return &Purger{store: store, maxAge: maxAge, metrics: m, now: time.Now}
}

// Purge deletes files last modified more than maxAge ago. A non-positive
// maxAge falls back to the configured retention; if that is also zero
// nothing is removed.
func (p *Purger) Purge(ctx context.Context, maxAge time.Duration) (Result, error) {
	if maxAge <= 0 {
		maxAge = p.maxAge
	}
	if maxAge <= 0 {
		return Result{}, nil
	}

	objects, err := p.store.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list audio: %w", err)
	}

	cutoff := p.now().Add(-maxAge)
	res := Result{Scanned: len(objects)}
	for _, o := range objects {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !o.ModTime.Before(cutoff) {
			continue
		}
		err := p.store.Delete(ctx, o.Name)
		switch {
		case err == nil, errors.Is(err, storage.ErrNotFound):
			res.Deleted++
		default:
			res.Failed++
			slog.Warn("audio purge failed", "file", o.Name, "error", err)
		}
	}

	p.metrics.AudioPurged(res.Deleted)
	slog.Info("audio purge complete",
		"storage", p.store.Name(),
		"max_age", maxAge.String(),
		"scanned", res.Scanned,
		"deleted", res.Deleted,
		"failed", res.Failed,
	)
	return res, nil
}
