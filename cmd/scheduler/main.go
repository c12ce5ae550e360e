package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"fdpg_backend/internal/email"
	"fdpg_backend/internal/events"
	"fdpg_backend/internal/locations/client"
	"fdpg_backend/internal/locations/reconcile"
	locationrepo "fdpg_backend/internal/locations/repository"
	"fdpg_backend/internal/notification"
	proposalrepo "fdpg_backend/internal/proposals/repository"
	"fdpg_backend/internal/scheduler"
	"fdpg_backend/platform/config"
	"fdpg_backend/platform/db"
	"fdpg_backend/platform/logger"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, log, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)

	notificationModule := notification.New(email.NewSender(cfg), cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	redisClient, err := scheduler.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to initialize redis client", "error", err)
		panic("failed to initialize redis client: " + err.Error())
	}
	defer func() { _ = redisClient.Close() }()

	taskClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize task client", "error", err)
		panic("failed to initialize task client: " + err.Error())
	}
	defer func() { _ = taskClient.Close() }()

	worker, err := scheduler.NewWorker(cfg, eventBus, scheduler.NewJobLock(redisClient), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}
	if cfg.IsLocationSyncEnabled() {
		syncer := reconcile.NewSyncer(client.New(cfg, log), locationrepo.New(pool), eventBus, log)
		worker.SetLocationSyncer(syncer)
	} else {
		log.Warn("CODESYSTEM_URL not configured; location sync disabled")
	}

	periodic, err := scheduler.NewPeriodic(cfg, log)
	if err != nil {
		log.Error("failed to initialize periodic scheduler", "error", err)
		panic("failed to initialize periodic scheduler: " + err.Error())
	}

	handler := scheduler.NewReminderHandler(proposalrepo.New(pool), taskClient, log)
	processor := scheduler.NewProcessor(scheduler.NewPostgresStore(pool), handler, log, scheduler.ProcessorOptions{
		Lease:      cfg.GetScheduleLease(),
		RetryDelay: cfg.GetScheduleRetryDelay(),
		MaxPoll:    cfg.GetScheduleMaxPoll(),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		processor.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		return periodic.Run(gctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("scheduler stopped", "error", err)
		os.Exit(1)
	}
	log.Info("scheduler stopped")
}
