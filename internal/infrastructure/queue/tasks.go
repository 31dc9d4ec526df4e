package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TypeGenerateVariants is enqueued after an asset is stored.
	TypeGenerateVariants = "media:generate_variants"
	// TypeSweepVariants retries assets whose variants never completed.
	TypeSweepVariants = "media:sweep_variants"

	QueueMedia = "media"
)

// Queues maps queue name to priority for the worker server.
var Queues = map[string]int{
	QueueMedia: 5,
	"default":  1,
}

type GenerateVariantsPayload struct {
	AssetID string `json:"asset_id"`
}

type SweepVariantsPayload struct {
	Limit int `json:"limit"`
}

// Enqueuer is the subset of *asynq.Client used by producers.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// EnqueueGenerateVariants schedules variant processing for one asset.
func EnqueueGenerateVariants(ctx context.Context, client Enqueuer, payload GenerateVariantsPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	task := asynq.NewTask(TypeGenerateVariants, data)
	_, err = client.EnqueueContext(ctx, task,
		asynq.Queue(QueueMedia),
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		return fmt.Errorf("enqueue generate variants: %w", err)
	}
	return nil
}
