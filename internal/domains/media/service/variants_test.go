package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-importer/internal/domains/media/model"
	"catalog-importer/internal/infrastructure/memory"
	"catalog-importer/internal/infrastructure/queue"
	"catalog-importer/internal/infrastructure/storage"
)

type recordingEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (e *recordingEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.tasks = append(e.tasks, task)
	return &asynq.TaskInfo{ID: "t-1", Type: task.Type()}, nil
}

func TestQueuedVariants(t *testing.T) {
	client := &recordingEnqueuer{}
	f := newFixture(t, func(repo *memory.MediaRepository, _ *memory.BlobStorage) VariantGenerator {
		return QueuedVariants{Client: client, Repo: repo}
	})

	id, err := f.svc.Acquire(context.Background(), f.server.URL+"/stones/RD-001.png")
	require.NoError(t, err)

	require.Len(t, client.tasks, 1)
	assert.Equal(t, queue.TypeGenerateVariants, client.tasks[0].Type())

	var payload queue.GenerateVariantsPayload
	require.NoError(t, json.Unmarshal(client.tasks[0].Payload(), &payload))
	assert.Equal(t, id.String(), payload.AssetID)

	asset, err := f.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.VariantQueued, asset.VariantStatus)
}

func TestQueuedVariants_EnqueueFailureLeavesAssetPending(t *testing.T) {
	client := &recordingEnqueuer{err: errors.New("redis down")}
	f := newFixture(t, func(repo *memory.MediaRepository, _ *memory.BlobStorage) VariantGenerator {
		return QueuedVariants{Client: client, Repo: repo}
	})

	id, err := f.svc.Acquire(context.Background(), f.server.URL+"/stones/RD-001.png")
	require.NoError(t, err)

	asset, err := f.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.VariantPending, asset.VariantStatus)
}

func TestVariantService_Sweep(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	good, err := f.svc.Acquire(ctx, f.server.URL+"/stones/RD-001.png")
	require.NoError(t, err)

	// record without a stored original
	orphan := &model.Asset{
		ID:            uuid.New(),
		OriginURL:     "https://img.example.com/missing.png",
		FileName:      "missing.png",
		MimeType:      "image/png",
		Variants:      map[string]string{},
		VariantStatus: model.VariantPending,
	}
	orphan.StorageKey = model.StorageKeyFor(orphan.ID, orphan.FileName)
	require.NoError(t, f.repo.Create(ctx, orphan))

	variants := NewVariantService(f.repo, f.blobs, storage.NewImageProcessor())
	processed, failed, err := variants.Sweep(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Equal(t, 1, failed)

	asset, err := f.svc.Get(ctx, good)
	require.NoError(t, err)
	assert.Equal(t, model.VariantReady, asset.VariantStatus)
	assert.Len(t, asset.Variants, 3)

	asset, err = f.svc.Get(ctx, orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.VariantFailed, asset.VariantStatus)

	// ready assets are not picked up again
	processed, failed, err = variants.Sweep(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
	assert.Equal(t, 1, failed)
}
