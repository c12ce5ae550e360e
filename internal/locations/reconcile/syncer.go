package reconcile

import (
	"context"
	"fmt"
	"time"

	"fdpg_backend/internal/events"
	"fdpg_backend/internal/locations/client"
	"fdpg_backend/internal/locations/repository"
	"fdpg_backend/platform/logger"
)

// Fetcher loads the codesystem.
type Fetcher interface {
	FetchLocations(ctx context.Context) (map[string]client.ExternalRecord, error)
}

// Store is the persistence a sync run needs.
type Store interface {
	ChangelogWriter
	FindAll(ctx context.Context) ([]repository.Location, error)
}

// Syncer runs one reconciliation between the codesystem and the registry.
type Syncer struct {
	fetcher Fetcher
	store   Store
	bus     events.Bus
	log     *logger.Logger
	now     func() time.Time
}

// NewSyncer creates a syncer. bus may be nil.
func NewSyncer(fetcher Fetcher, store Store, bus events.Bus, log *logger.Logger) *Syncer {
	return &Syncer{fetcher: fetcher, store: store, bus: bus, log: log, now: time.Now}
}

// Run fetches the codesystem, resolves replacement chains and writes the
// resulting changelogs.
func (s *Syncer) Run(ctx context.Context) error {
	external, err := s.fetcher.FetchLocations(ctx)
	if err != nil {
		return fmt.Errorf("fetch codesystem: %w", err)
	}
	resolved := ResolveReplacementChains(external)

	persisted, err := s.store.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}

	count, err := GenerateChangelogsFromApi(ctx, s.store, resolved, persisted, s.now())
	if err != nil {
		s.log.Error("location changelog generation failed", "error", err)
		return err
	}

	s.log.Info("location sync finished", "external", len(external), "resolved", len(resolved), "changelogs", count)
	if count > 0 && s.bus != nil {
		s.bus.Publish(ctx, events.LocationChangelogsGenerated{BaseEvent: events.NewBaseEvent(), Count: count})
	}
	return nil
}
