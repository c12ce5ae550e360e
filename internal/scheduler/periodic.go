package scheduler

import (
	"context"
	"fmt"
	"time"

	"fdpg_backend/platform/config"
	"fdpg_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Periodic enqueues cron-driven tasks.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

// NewPeriodic registers the location sync cron entry.
func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	s := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: time.UTC})
	if cron := cfg.GetLocationSyncCron(); cron != "" {
		entryID, err := s.Register(cron, NewLocationSyncTask(), asynq.Queue(queueName(cfg)), asynq.MaxRetry(0))
		if err != nil {
			return nil, fmt.Errorf("register location sync cron: %w", err)
		}
		log.Info("location sync scheduled", "cron", cron, "entryId", entryID)
	}
	return &Periodic{scheduler: s, log: log}, nil
}

// Run blocks until ctx is cancelled.
func (p *Periodic) Run(ctx context.Context) error {
	if err := p.scheduler.Start(); err != nil {
		return fmt.Errorf("start periodic scheduler: %w", err)
	}
	<-ctx.Done()
	p.scheduler.Shutdown()
	return nil
}
