package scheduler

import (
	"context"
	"time"

	"fdpg_backend/platform/logger"
)

const (
	defaultLease      = 5 * time.Minute
	defaultRetryDelay = 60 * time.Second
	defaultMaxPoll    = 30 * time.Minute
)

// EventHandler executes a claimed schedule.
type EventHandler interface {
	HandleEvent(ctx context.Context, s Schedule) error
}

// ProcessorOptions tunes the processor loop. Zero values take the defaults.
type ProcessorOptions struct {
	Lease      time.Duration
	RetryDelay time.Duration
	MaxPoll    time.Duration
}

// Processor claims and handles one due schedule per tick. It owns a single
// timer that is re-armed after each tick.
type Processor struct {
	store   Store
	handler EventHandler
	log     *logger.Logger
	opts    ProcessorOptions
	now     func() time.Time
}

// NewProcessor creates a processor.
func NewProcessor(store Store, handler EventHandler, log *logger.Logger, opts ProcessorOptions) *Processor {
	if opts.Lease <= 0 {
		opts.Lease = defaultLease
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if opts.MaxPoll <= 0 {
		opts.MaxPoll = defaultMaxPoll
	}
	return &Processor{
		store:   store,
		handler: handler,
		log:     log,
		opts:    opts,
		now:     time.Now,
	}
}

// Run loops until ctx is cancelled.
func (p *Processor) Run(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		wait := p.Tick(ctx)
		timer.Reset(wait)
	}
}

// Tick claims at most one due schedule, handles it and returns how long to
// wait before the next tick.
func (p *Processor) Tick(ctx context.Context) time.Duration {
	now := p.now()
	claimed, err := p.store.ClaimNext(ctx, now, p.opts.Lease)
	if err != nil {
		p.log.Error("schedule claim failed", "error", err)
		return p.opts.MaxPoll
	}
	if claimed != nil {
		p.process(ctx, *claimed)
	}
	return p.nextWait(ctx)
}

func (p *Processor) process(ctx context.Context, s Schedule) {
	if err := p.handler.HandleEvent(ctx, s); err != nil {
		p.log.Error("schedule handler failed", "scheduleId", s.ID, "type", s.Type, "tries", s.NumberOfTries, "error", err)
		if retryErr := p.store.Retry(ctx, s.ID, p.now().Add(p.opts.RetryDelay)); retryErr != nil {
			p.log.Error("schedule retry failed", "scheduleId", s.ID, "error", retryErr)
		}
		outcome := "retry"
		if s.NumberOfTries >= MaxTries {
			outcome = "exhausted"
		}
		p.log.ScheduleEvent(string(s.Type), s.ID.String(), outcome, s.NumberOfTries)
		return
	}

	if err := p.store.Delete(ctx, s.ID); err != nil {
		p.log.Error("schedule delete failed", "scheduleId", s.ID, "error", err)
		return
	}
	p.log.ScheduleEvent(string(s.Type), s.ID.String(), "handled", s.NumberOfTries)
}

func (p *Processor) nextWait(ctx context.Context) time.Duration {
	next, err := p.store.NextEligibleAt(ctx)
	if err != nil {
		p.log.Error("schedule lookup failed", "error", err)
		return p.opts.MaxPoll
	}
	if next == nil {
		return p.opts.MaxPoll
	}
	wait := next.Sub(p.now())
	if wait < 0 {
		wait = 0
	}
	if wait > p.opts.MaxPoll {
		wait = p.opts.MaxPoll
	}
	return wait
}
