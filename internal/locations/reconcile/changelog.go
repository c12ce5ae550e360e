package reconcile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fdpg_backend/internal/locations/client"
	"fdpg_backend/internal/locations/repository"

	"github.com/google/uuid"
)

// ChangelogWriter is the changelog persistence used by the generator.
type ChangelogWriter interface {
	FindPendingByCode(ctx context.Context, codes []string) (map[string]repository.Changelog, error)
	BulkUpsert(ctx context.Context, changelogs []repository.Changelog) error
}

// ToLocationData maps an external record onto the compared registry fields.
func ToLocationData(r client.ExternalRecord) repository.LocationData {
	return repository.LocationData{
		Code:                  r.Code,
		Display:               r.Display,
		Definition:            r.Definition,
		Consortium:            r.Consortium,
		Contract:              r.Contract,
		Abbreviation:          r.Abbreviation,
		URI:                   r.URI,
		DataIntegrationCenter: r.DataIntegrationCenter,
		DataManagementCenter:  r.DataManagementCenter,
		Deprecated:            r.IsDeprecated(),
	}
}

// Classify decides the strategy for one code. ok is false when nothing changed.
func Classify(persisted *repository.LocationData, incoming repository.LocationData) (repository.ChangelogStrategy, bool) {
	if persisted == nil {
		return repository.StrategyInsert, true
	}
	if *persisted == incoming {
		return "", false
	}
	if incoming.Deprecated && !persisted.Deprecated {
		return repository.StrategyDeprecate, true
	}
	return repository.StrategyUpdate, true
}

// GenerateChangelogsFromApi diffs external against persisted and upserts one
// changelog per changed code. A pending changelog of the same code is
// rewritten in place. It returns the number of changelogs written.
func GenerateChangelogsFromApi(ctx context.Context, store ChangelogWriter, external map[string]client.ExternalRecord, persisted []repository.Location, now time.Time) (int, error) {
	byCode := make(map[string]repository.LocationData, len(persisted))
	for _, l := range persisted {
		byCode[l.Code] = l.LocationData
	}

	codes := make([]string, 0, len(external))
	for code := range external {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	type change struct {
		strategy repository.ChangelogStrategy
		old      *repository.LocationData
		data     repository.LocationData
	}
	changes := make(map[string]change)
	changed := make([]string, 0)
	for _, code := range codes {
		incoming := ToLocationData(external[code])
		var old *repository.LocationData
		if current, ok := byCode[code]; ok {
			current := current
			old = &current
		}
		strategy, ok := Classify(old, incoming)
		if !ok {
			continue
		}
		changes[code] = change{strategy: strategy, old: old, data: incoming}
		changed = append(changed, code)
	}
	if len(changed) == 0 {
		return 0, nil
	}

	pending, err := store.FindPendingByCode(ctx, changed)
	if err != nil {
		return 0, fmt.Errorf("load pending changelogs: %w", err)
	}

	writes := make([]repository.Changelog, 0, len(changed))
	for _, code := range changed {
		c := changes[code]
		existing, ok := pending[code]
		if !ok {
			writes = append(writes, repository.Changelog{
				ID:              uuid.New(),
				Created:         now,
				Status:          repository.ChangelogPending,
				Strategy:        c.strategy,
				ForCode:         code,
				OldLocationData: c.old,
				NewLocationData: c.data,
			})
			continue
		}

		updated, err := coalesce(existing, c.strategy, c.old, c.data)
		if err != nil {
			return 0, err
		}
		if updated == nil {
			continue
		}
		writes = append(writes, *updated)
	}

	if err := store.BulkUpsert(ctx, writes); err != nil {
		return 0, fmt.Errorf("upsert changelogs: %w", err)
	}
	return len(writes), nil
}

// coalesce rewrites a pending changelog with the latest diff. It returns nil
// when the stored changelog already says the same.
func coalesce(existing repository.Changelog, strategy repository.ChangelogStrategy, old *repository.LocationData, data repository.LocationData) (*repository.Changelog, error) {
	if existing.Status != repository.ChangelogPending {
		return nil, fmt.Errorf("changelog %s for %s is %s and cannot be updated", existing.ID, existing.ForCode, existing.Status)
	}
	if existing.Strategy == strategy && existing.NewLocationData == data {
		return nil, nil
	}
	existing.Strategy = strategy
	existing.OldLocationData = old
	existing.NewLocationData = data
	return &existing, nil
}
