package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"catalog-importer/internal/domains/importer/model"
	"catalog-importer/pkg/cache"
)

// ProgressStore persists JobState between batch calls, one slot per job id.
type ProgressStore interface {
	// GetOrComputeTotal returns the cached total for jobID, calling count
	// when nothing is cached or the cached total belongs to another file.
	GetOrComputeTotal(ctx context.Context, jobID, filePath string, count func() (int, error)) (int, error)

	// RecordProgress adds delta to the cumulative count (capped at
	// state.Total) and stores the furthest of state.Cursor and the stored
	// cursor as the resume cursor.
	RecordProgress(ctx context.Context, state model.JobState, delta int) (*model.JobState, error)

	// Get returns nil when no run is active for jobID.
	Get(ctx context.Context, jobID string) (*model.JobState, error)

	// Clear removes both the total and the progress of jobID.
	Clear(ctx context.Context, jobID string) error
}

type totalEntry struct {
	FilePath string `json:"file_path"`
	Total    int    `json:"total"`
}

type cacheProgressStore struct {
	cache cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

func NewProgressStore(c cache.Cache, ttl time.Duration) ProgressStore {
	return &cacheProgressStore{cache: c, ttl: ttl, now: time.Now}
}

func totalKey(jobID string) string    { return fmt.Sprintf("import:%s:total", jobID) }
func progressKey(jobID string) string { return fmt.Sprintf("import:%s:progress", jobID) }

func (s *cacheProgressStore) GetOrComputeTotal(ctx context.Context, jobID, filePath string, count func() (int, error)) (int, error) {
	var entry totalEntry
	found, err := s.cache.Get(ctx, totalKey(jobID), &entry)
	if err != nil {
		return 0, fmt.Errorf("load total: %w", err)
	}
	if found && entry.FilePath == filePath {
		return entry.Total, nil
	}

	total, err := count()
	if err != nil {
		return 0, err
	}

	entry = totalEntry{FilePath: filePath, Total: total}
	if err := s.cache.Set(ctx, totalKey(jobID), entry, s.ttl); err != nil {
		return 0, fmt.Errorf("store total: %w", err)
	}
	if found {
		// the file changed under the job, old progress is meaningless
		if err := s.cache.Delete(ctx, progressKey(jobID)); err != nil {
			return 0, fmt.Errorf("reset progress: %w", err)
		}
	}

	log.Info().Str("job_id", jobID).Str("file", filePath).Int("total", total).Msg("Counted import rows")
	return total, nil
}

func (s *cacheProgressStore) RecordProgress(ctx context.Context, state model.JobState, delta int) (*model.JobState, error) {
	current, err := s.Get(ctx, state.JobID)
	if err != nil {
		return nil, err
	}

	next := state
	next.Imported = delta
	if current != nil {
		next.Imported += current.Imported
		if current.Cursor > next.Cursor {
			next.Cursor = current.Cursor
		}
	}
	if next.Imported > state.Total {
		next.Imported = state.Total
	}
	next.UpdatedAt = s.now()

	if err := s.cache.Set(ctx, progressKey(state.JobID), next, s.ttl); err != nil {
		return nil, fmt.Errorf("store progress: %w", err)
	}
	return &next, nil
}

func (s *cacheProgressStore) Get(ctx context.Context, jobID string) (*model.JobState, error) {
	var state model.JobState
	found, err := s.cache.Get(ctx, progressKey(jobID), &state)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &state, nil
}

func (s *cacheProgressStore) Clear(ctx context.Context, jobID string) error {
	if err := s.cache.Delete(ctx, totalKey(jobID), progressKey(jobID)); err != nil {
		return fmt.Errorf("clear progress: %w", err)
	}
	return nil
}
