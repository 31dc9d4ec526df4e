package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (r *recordingEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.tasks = append(r.tasks, task)
	return &asynq.TaskInfo{ID: "1", Type: task.Type()}, nil
}

func TestEnqueueGenerateVariants(t *testing.T) {
	enq := &recordingEnqueuer{}

	err := EnqueueGenerateVariants(context.Background(), enq, GenerateVariantsPayload{AssetID: "abc"})
	require.NoError(t, err)
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TypeGenerateVariants, enq.tasks[0].Type())

	var p GenerateVariantsPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &p))
	assert.Equal(t, "abc", p.AssetID)
}

func TestEnqueueGenerateVariants_Error(t *testing.T) {
	enq := &recordingEnqueuer{err: errors.New("redis down")}

	err := EnqueueGenerateVariants(context.Background(), enq, GenerateVariantsPayload{AssetID: "abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}
