package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

type Scheduler struct {
	scheduler  *asynq.Scheduler
	sweepSpec  string
	sweepLimit int
}

func NewScheduler(redisOpt asynq.RedisClientOpt, sweepSpec string, sweepLimit int) *Scheduler {
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: time.UTC,
		LogLevel: asynq.WarnLevel,
	})

	return &Scheduler{
		scheduler:  scheduler,
		sweepSpec:  sweepSpec,
		sweepLimit: sweepLimit,
	}
}

// Register adds the periodic jobs.
func (s *Scheduler) Register() error {
	if s.sweepSpec == "" {
		return nil
	}

	payload, err := json.Marshal(SweepVariantsPayload{Limit: s.sweepLimit})
	if err != nil {
		return err
	}

	id, err := s.scheduler.Register(
		s.sweepSpec,
		asynq.NewTask(TypeSweepVariants, payload),
		asynq.Queue(QueueMedia),
		asynq.MaxRetry(1),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		return fmt.Errorf("register %s: %w", TypeSweepVariants, err)
	}

	log.Info().Str("entry", id).Str("spec", s.sweepSpec).Msg("registered variant sweep")
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
