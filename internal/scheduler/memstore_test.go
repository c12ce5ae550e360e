package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore mirrors the conditional claim of PostgresStore under a mutex.
type memStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*Schedule
}

func newMemStore() *memStore {
	return &memStore{rows: map[uuid.UUID]*Schedule{}}
}

func (m *memStore) Insert(_ context.Context, schedules ...Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range schedules {
		row := s
		m.rows[s.ID] = &row
	}
	return nil
}

func (m *memStore) DeleteByIDs(_ context.Context, ids []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.rows, id)
	}
	return nil
}

func (m *memStore) ClaimNext(_ context.Context, now time.Time, lease time.Duration) (*Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var eligible []*Schedule
	for _, row := range m.rows {
		if !row.DueAfter.After(now) && row.LockedUntil.Before(now) && row.NumberOfTries < MaxTries {
			eligible = append(eligible, row)
		}
	}
	if len(eligible) == 0 {
		return nil, nil
	}
	sort.Slice(eligible, func(i, j int) bool { return eligible[i].DueAfter.Before(eligible[j].DueAfter) })

	row := eligible[0]
	row.LockedUntil = now.Add(lease)
	row.NumberOfTries++
	row.UpdatedAt = now
	claimed := *row
	return &claimed, nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) error {
	return m.DeleteByIDs(context.Background(), []uuid.UUID{id})
}

func (m *memStore) Retry(_ context.Context, id uuid.UUID, dueAfter time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[id]; ok {
		row.DueAfter = dueAfter
		row.LockedUntil = time.Time{}
	}
	return nil
}

func (m *memStore) NextEligibleAt(_ context.Context) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var next *time.Time
	for _, row := range m.rows {
		if row.NumberOfTries >= MaxTries {
			continue
		}
		at := row.DueAfter
		if row.LockedUntil.After(at) {
			at = row.LockedUntil
		}
		if next == nil || at.Before(*next) {
			next = &at
		}
	}
	return next, nil
}

func (m *memStore) get(id uuid.UUID) (Schedule, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return Schedule{}, false
	}
	return *row, true
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

var _ Store = (*memStore)(nil)
