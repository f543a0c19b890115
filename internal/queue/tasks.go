package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeAudioPurge = "audio:purge"
)

type AudioPurgePayload struct {
	MaxAgeSeconds int64  `json:"max_age_seconds,omitempty"` // 0 means configured retention
	Trigger       string `json:"trigger"`                   // "schedule" or "admin"
}

func (p AudioPurgePayload) MaxAge() time.Duration {
	return time.Duration(p.MaxAgeSeconds) * time.Second
}

// NewAudioPurgeTask builds the purge task used by both the scheduler and
// on-demand enqueues.
func NewAudioPurgeTask(payload AudioPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(TypeAudioPurge, data, asynq.MaxRetry(1), asynq.Timeout(5*time.Minute)), nil
}
