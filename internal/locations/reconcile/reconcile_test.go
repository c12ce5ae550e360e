package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"fdpg_backend/internal/events"
	"fdpg_backend/internal/locations/client"
	"fdpg_backend/internal/locations/repository"
	"fdpg_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var syncNow = time.Date(2026, 5, 4, 3, 0, 0, 0, time.UTC)

type fakeStore struct {
	locations []repository.Location
	rows      map[uuid.UUID]repository.Changelog
	upserts   int
}

func newFakeStore(locations ...repository.Location) *fakeStore {
	return &fakeStore{locations: locations, rows: map[uuid.UUID]repository.Changelog{}}
}

func (f *fakeStore) FindAll(context.Context) ([]repository.Location, error) {
	return f.locations, nil
}

func (f *fakeStore) FindPendingByCode(_ context.Context, codes []string) (map[string]repository.Changelog, error) {
	out := map[string]repository.Changelog{}
	for _, row := range f.rows {
		if row.Status != repository.ChangelogPending {
			continue
		}
		for _, code := range codes {
			if row.ForCode == code {
				out[code] = row
			}
		}
	}
	return out, nil
}

func (f *fakeStore) BulkUpsert(_ context.Context, changelogs []repository.Changelog) error {
	for _, c := range changelogs {
		if existing, ok := f.rows[c.ID]; ok && existing.Status != repository.ChangelogPending {
			return errors.New("not pending")
		}
		f.rows[c.ID] = c
		f.upserts++
	}
	return nil
}

func (f *fakeStore) only(t *testing.T) repository.Changelog {
	t.Helper()
	require.Len(t, f.rows, 1)
	for _, row := range f.rows {
		return row
	}
	return repository.Changelog{}
}

func ukl() client.ExternalRecord {
	return client.ExternalRecord{
		Code:                  "UKL",
		Display:               "Universitätsklinikum Leipzig",
		Consortium:            "SMITH",
		Abbreviation:          "UKL",
		DataIntegrationCenter: true,
	}
}

func persistedFrom(r client.ExternalRecord) repository.Location {
	return repository.Location{LocationData: ToLocationData(r), UpdatedAt: syncNow.Add(-time.Hour)}
}

func TestIdenticalRecordProducesNoChangelog(t *testing.T) {
	store := newFakeStore(persistedFrom(ukl()))

	count, err := GenerateChangelogsFromApi(context.Background(), store, map[string]client.ExternalRecord{"UKL": ukl()}, store.locations, syncNow)

	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, store.upserts)
}

func TestNewCodeIsInsert(t *testing.T) {
	store := newFakeStore()

	count, err := GenerateChangelogsFromApi(context.Background(), store, map[string]client.ExternalRecord{"UKL": ukl()}, nil, syncNow)

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	row := store.only(t)
	assert.Equal(t, repository.StrategyInsert, row.Strategy)
	assert.Equal(t, repository.ChangelogPending, row.Status)
	assert.Nil(t, row.OldLocationData)
	assert.Equal(t, syncNow, row.Created)
}

func TestClassification(t *testing.T) {
	deprecatedStatus := ukl()
	deprecatedStatus.Status = "deprecated"

	deprecatedByDate := ukl()
	deprecatedByDate.DeprecationDate = "2026-01-01"
	deprecatedByDate.Display = "Renamed"

	renamed := ukl()
	renamed.Display = "UK Leipzig"

	cases := []struct {
		name     string
		incoming client.ExternalRecord
		want     repository.ChangelogStrategy
	}{
		{"status only", deprecatedStatus, repository.StrategyDeprecate},
		{"deprecation wins over update", deprecatedByDate, repository.StrategyDeprecate},
		{"plain update", renamed, repository.StrategyUpdate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore(persistedFrom(ukl()))
			_, err := GenerateChangelogsFromApi(context.Background(), store, map[string]client.ExternalRecord{"UKL": tc.incoming}, store.locations, syncNow)
			require.NoError(t, err)
			row := store.only(t)
			assert.Equal(t, tc.want, row.Strategy)
			require.NotNil(t, row.OldLocationData)
			assert.False(t, row.OldLocationData.Deprecated)
		})
	}
}

func TestAlreadyDeprecatedChangeIsUpdate(t *testing.T) {
	old := ukl()
	old.Status = "deprecated"
	incoming := old
	incoming.Display = "Closed site"

	strategy, ok := Classify(&repository.LocationData{}, ToLocationData(incoming))
	require.True(t, ok)
	assert.Equal(t, repository.StrategyDeprecate, strategy)

	persisted := ToLocationData(old)
	strategy, ok = Classify(&persisted, ToLocationData(incoming))
	require.True(t, ok)
	assert.Equal(t, repository.StrategyUpdate, strategy)
}

func TestPendingChangelogIsCoalesced(t *testing.T) {
	store := newFakeStore(persistedFrom(ukl()))
	first := ukl()
	first.Display = "First rename"
	second := ukl()
	second.Display = "Second rename"
	ctx := context.Background()

	_, err := GenerateChangelogsFromApi(ctx, store, map[string]client.ExternalRecord{"UKL": first}, store.locations, syncNow)
	require.NoError(t, err)
	original := store.only(t)

	_, err = GenerateChangelogsFromApi(ctx, store, map[string]client.ExternalRecord{"UKL": second}, store.locations, syncNow.Add(24*time.Hour))
	require.NoError(t, err)

	row := store.only(t)
	assert.Equal(t, original.ID, row.ID)
	assert.Equal(t, "Second rename", row.NewLocationData.Display)
	assert.Equal(t, syncNow, row.Created)

	count, err := GenerateChangelogsFromApi(ctx, store, map[string]client.ExternalRecord{"UKL": second}, store.locations, syncNow.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, count, "unchanged pending changelog is not rewritten")
}

func TestCoalesceRejectsResolvedChangelog(t *testing.T) {
	resolved := repository.Changelog{ID: uuid.New(), ForCode: "UKL", Status: repository.ChangelogApproved}

	_, err := coalesce(resolved, repository.StrategyUpdate, nil, ToLocationData(ukl()))

	require.Error(t, err)
}

func TestResolveReplacementChainsIsOrderIndependent(t *testing.T) {
	a := client.ExternalRecord{Code: "A", Display: "Old", ReplacedBy: "B"}
	b := client.ExternalRecord{Code: "B", Display: "Middle", Replaces: "A"}
	c := client.ExternalRecord{Code: "C", Display: "Current", Replaces: "B"}
	other := client.ExternalRecord{Code: "X", Display: "Unrelated"}

	forward := ResolveReplacementChains(map[string]client.ExternalRecord{"A": a, "B": b, "C": c, "X": other})

	bOnlyReplacedBy := client.ExternalRecord{Code: "B", Display: "Middle", ReplacedBy: "C"}
	aOnlyReplaces := client.ExternalRecord{Code: "A", Display: "Old"}
	bReplaces := bOnlyReplacedBy
	bReplaces.Replaces = "A"
	backward := ResolveReplacementChains(map[string]client.ExternalRecord{"C": {Code: "C", Display: "Current"}, "B": bReplaces, "A": aOnlyReplaces, "X": other})

	for name, resolved := range map[string]map[string]client.ExternalRecord{"forward": forward, "backward": backward} {
		t.Run(name, func(t *testing.T) {
			require.Len(t, resolved, 3)
			assert.NotContains(t, resolved, "B")
			start := resolved["A"]
			assert.Equal(t, "A", start.Code)
			assert.Equal(t, "Current", start.Display)
			assert.Equal(t, "C", start.ReplacedBy)
			assert.True(t, start.IsDeprecated())
			assert.Equal(t, "Current", resolved["C"].Display)
			assert.Equal(t, other, resolved["X"])
		})
	}
}

func TestResolveReplacementChainsPrefersExplicitSuccessor(t *testing.T) {
	records := map[string]client.ExternalRecord{
		"A": {Code: "A", Display: "Old", ReplacedBy: "B"},
		"B": {Code: "B", Display: "Named successor"},
		"C": {Code: "C", Display: "Claimed successor", Replaces: "A"},
	}

	first := ResolveReplacementChains(records)
	require.Equal(t, "B", first["A"].ReplacedBy)
	assert.Equal(t, "Named successor", first["A"].Display)
	assert.Equal(t, records["C"], first["C"])

	for range 200 {
		assert.Equal(t, first, ResolveReplacementChains(records))
	}
}

func TestResolveReplacementChainsIgnoresUnknownSuccessor(t *testing.T) {
	a := client.ExternalRecord{Code: "A", Display: "Old", ReplacedBy: "GONE"}

	resolved := ResolveReplacementChains(map[string]client.ExternalRecord{"A": a})

	assert.Equal(t, a, resolved["A"])
}

type stubFetcher struct {
	records map[string]client.ExternalRecord
	err     error
}

func (s stubFetcher) FetchLocations(context.Context) (map[string]client.ExternalRecord, error) {
	return s.records, s.err
}

type recordingBus struct{ published []events.Event }

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.published = append(b.published, e)
}
func (b *recordingBus) PublishSync(_ context.Context, e events.Event) error {
	b.published = append(b.published, e)
	return nil
}
func (b *recordingBus) Subscribe(string, events.Handler) {}

func TestSyncerRun(t *testing.T) {
	store := newFakeStore()
	bus := &recordingBus{}
	s := NewSyncer(stubFetcher{records: map[string]client.ExternalRecord{"UKL": ukl()}}, store, bus, logger.Discard())
	s.now = func() time.Time { return syncNow }

	require.NoError(t, s.Run(context.Background()))

	assert.Len(t, store.rows, 1)
	require.Len(t, bus.published, 1)
	assert.Equal(t, 1, bus.published[0].(events.LocationChangelogsGenerated).Count)
}

func TestSyncerRunPropagatesFetchFailure(t *testing.T) {
	store := newFakeStore()
	s := NewSyncer(stubFetcher{err: client.ErrInvalidResponse}, store, nil, logger.Discard())

	err := s.Run(context.Background())

	require.ErrorIs(t, err, client.ErrInvalidResponse)
	assert.Empty(t, store.rows)
}
