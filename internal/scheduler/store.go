package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fdpg_backend/internal/proposals/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps schedules in the schedules table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a schedule store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var _ Store = (*PostgresStore)(nil)

func (s *PostgresStore) Insert(ctx context.Context, schedules ...Schedule) error {
	if len(schedules) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, sc := range schedules {
		batch.Queue(`
			INSERT INTO schedules (id, type, reference_document_id, due_after, locked_until, number_of_tries, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 'epoch', 0, $5, $5)`,
			sc.ID, string(sc.Type), sc.ReferenceDocumentID, sc.DueAfter, sc.CreatedAt,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range schedules {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert schedule: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM schedules WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("delete schedules: %w", err)
	}
	return nil
}

func (s *PostgresStore) ClaimNext(ctx context.Context, now time.Time, lease time.Duration) (*Schedule, error) {
	query := `
		UPDATE schedules
		SET locked_until = $2, number_of_tries = number_of_tries + 1, updated_at = $1
		WHERE id = (
			SELECT id FROM schedules
			WHERE due_after <= $1 AND locked_until < $1 AND number_of_tries < $3
			ORDER BY due_after
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, type, reference_document_id, due_after, locked_until, number_of_tries, created_at, updated_at`

	var (
		sc      Schedule
		schType string
	)
	err := s.pool.QueryRow(ctx, query, now, now.Add(lease), MaxTries).Scan(
		&sc.ID, &schType, &sc.ReferenceDocumentID, &sc.DueAfter, &sc.LockedUntil,
		&sc.NumberOfTries, &sc.CreatedAt, &sc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("claim schedule: %w", err)
	}
	sc.Type = domain.ScheduleType(schType)
	return &sc, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}

func (s *PostgresStore) Retry(ctx context.Context, id uuid.UUID, dueAfter time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE schedules
		SET due_after = $2, locked_until = 'epoch', updated_at = now()
		WHERE id = $1`, id, dueAfter)
	if err != nil {
		return fmt.Errorf("retry schedule: %w", err)
	}
	return nil
}

// NextEligibleAt takes the later of due_after and locked_until so rows leased
// by another process do not cause a busy loop.
func (s *PostgresStore) NextEligibleAt(ctx context.Context) (*time.Time, error) {
	var next *time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT MIN(GREATEST(due_after, locked_until))
		FROM schedules
		WHERE number_of_tries < $1`, MaxTries).Scan(&next)
	if err != nil {
		return nil, fmt.Errorf("next schedule: %w", err)
	}
	return next, nil
}
