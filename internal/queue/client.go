package queue

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/voicenews/internal/config"
)

type Client struct {
	client *asynq.Client
}

func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{client: asynq.NewClient(RedisOpt(cfg))}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueAudioPurge queues a one-off purge and returns its task ID.
func (c *Client) EnqueueAudioPurge(ctx context.Context, payload AudioPurgePayload) (string, error) {
	task, err := NewAudioPurgeTask(payload)
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task, asynq.TaskID(uuid.NewString()))
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", TypeAudioPurge, err)
	}
	return info.ID, nil
}
