package scheduler

import (
	"context"
	"fmt"
	"time"

	"fdpg_backend/internal/events"
	"fdpg_backend/platform/config"
	"fdpg_backend/platform/logger"

	"github.com/hibiken/asynq"
)

const (
	locationSyncLease   = 15 * time.Minute
	locationSyncRenewal = locationSyncLease / 3
)

// LocationSyncer runs one reconciliation against the external registry.
type LocationSyncer interface {
	Run(ctx context.Context) error
}

// Worker executes asynq tasks: reminder delivery and the location sync.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	bus    events.Bus
	lock   *JobLock
	syncer LocationSyncer
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, bus events.Bus, lock *JobLock, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		bus:    bus,
		lock:   lock,
		log:    log,
	}

	mux.HandleFunc(TaskProposalReminder, w.handleProposalReminder)
	mux.HandleFunc(TaskLocationSync, w.handleLocationSync)

	return w, nil
}

// SetLocationSyncer wires the location sync job.
func (w *Worker) SetLocationSyncer(s LocationSyncer) {
	w.syncer = s
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return nil
	}

	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start scheduler worker: %w", err)
	}
	<-ctx.Done()
	w.server.Shutdown()
	return nil
}

func (w *Worker) handleProposalReminder(ctx context.Context, task *asynq.Task) error {
	if w.bus == nil {
		return nil
	}

	payload, err := ParseProposalReminderPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	summary := make([]events.SummaryEntry, 0, len(payload.Summary))
	for _, s := range payload.Summary {
		summary = append(summary, events.SummaryEntry{Type: s.Type, Location: s.Location, CreatedAt: s.CreatedAt})
	}

	return w.bus.PublishSync(ctx, events.ProposalReminderDue{
		BaseEvent:           events.NewBaseEvent(),
		ProposalID:          payload.ProposalID,
		ProjectAbbreviation: payload.ProjectAbbreviation,
		ReminderType:        payload.Type,
		Audience:            string(payload.Audience),
		DueDate:             payload.DueDate,
		Locations:           payload.Locations,
		Recipients:          payload.Recipients,
		Summary:             summary,
	})
}

func (w *Worker) handleLocationSync(ctx context.Context, _ *asynq.Task) error {
	if w.syncer == nil {
		w.log.Warn("location sync requested but not configured")
		return nil
	}

	if w.lock != nil {
		lease, err := w.lock.Acquire(ctx, TaskLocationSync, locationSyncLease)
		if err != nil {
			return err
		}
		if lease == nil {
			w.log.Info("location sync already running elsewhere")
			return nil
		}
		defer func() {
			if err := w.lock.Release(context.WithoutCancel(ctx), lease); err != nil {
				w.log.Warn("location sync lock release failed", "error", err)
			}
		}()

		renewCtx, stop := context.WithCancel(ctx)
		defer stop()
		go w.renewLease(renewCtx, lease, locationSyncRenewal)
	}

	return w.syncer.Run(ctx)
}

// renewLease keeps lease alive while a long sync runs.
func (w *Worker) renewLease(ctx context.Context, lease *Lease, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			held, err := w.lock.Extend(ctx, lease, locationSyncLease)
			if err != nil {
				w.log.Warn("location sync lock renewal failed", "error", err)
				continue
			}
			if !held {
				w.log.Warn("location sync lock lost", "jobType", lease.JobType)
				return
			}
		}
	}
}
