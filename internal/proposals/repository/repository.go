package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fdpg_backend/internal/proposals/document"
	"fdpg_backend/internal/proposals/domain"
	"fdpg_backend/internal/proposals/filter"
	"fdpg_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const proposalNotFoundMessage = "proposal not found"

const uniqueViolation = "23505"

// Repository persists proposal aggregates.
type Repository interface {
	Create(ctx context.Context, p *domain.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Proposal, error)
	Save(ctx context.Context, p *domain.Proposal) error
	Find(ctx context.Context, pred filter.Predicate) ([]*domain.Proposal, error)
	Delete(ctx context.Context, id uuid.UUID) error
	RemoveScheduledEvent(ctx context.Context, proposalID, scheduleID uuid.UUID) error
}

// Repo stores proposals as JSONB documents in PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new proposals repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// Create inserts a new proposal. Duplicate abbreviations are conflicts.
func (r *Repo) Create(ctx context.Context, p *domain.Proposal) error {
	doc, err := encode(p)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO proposals (id, project_abbreviation, status, owner_id, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.ProjectAbbreviation, string(p.Status), p.OwnerID, doc, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("create proposal", err)
	}
	return nil
}

// GetByID loads a proposal by id.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Proposal, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT doc FROM proposals WHERE id = $1`, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(proposalNotFoundMessage)
		}
		return nil, fmt.Errorf("get proposal by id: %w", err)
	}
	return decode(raw)
}

// Save replaces the stored document of an existing proposal.
func (r *Repo) Save(ctx context.Context, p *domain.Proposal) error {
	doc, err := encode(p)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE proposals
		SET project_abbreviation = $2, status = $3, owner_id = $4, doc = $5, updated_at = $6
		WHERE id = $1`,
		p.ID, p.ProjectAbbreviation, string(p.Status), p.OwnerID, doc, p.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("save proposal", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(proposalNotFoundMessage)
	}
	return nil
}

// Find returns every proposal matching pred, newest first.
func (r *Repo) Find(ctx context.Context, pred filter.Predicate) ([]*domain.Proposal, error) {
	where, args := Compile(pred)
	rows, err := r.pool.Query(ctx, `SELECT doc FROM proposals WHERE `+where+` ORDER BY updated_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("find proposals: %w", err)
	}
	defer rows.Close()

	var out []*domain.Proposal
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		p, err := decode(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate proposals: %w", err)
	}
	return out, nil
}

// Delete removes a proposal.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM proposals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete proposal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(proposalNotFoundMessage)
	}
	return nil
}

// RemoveScheduledEvent drops one schedule back-reference in place so a
// concurrent edit of the rest of the document is not overwritten.
func (r *Repo) RemoveScheduledEvent(ctx context.Context, proposalID, scheduleID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE proposals
		SET doc = jsonb_set(doc, '{scheduledEvents}', COALESCE((
			SELECT jsonb_agg(ev)
			FROM jsonb_array_elements(CASE WHEN jsonb_typeof(doc->'scheduledEvents') = 'array'
				THEN doc->'scheduledEvents' ELSE '[]'::jsonb END) AS ev
			WHERE ev->>'scheduleId' <> $2
		), '[]'::jsonb))
		WHERE id = $1`, proposalID, scheduleID.String())
	if err != nil {
		return fmt.Errorf("remove scheduled event: %w", err)
	}
	return nil
}

// encode assigns storage identities to new sub-documents and serialises p.
func encode(p *domain.Proposal) ([]byte, error) {
	for _, list := range [][]document.Document{p.Participants, p.SelectedDataSources, p.OpenFdpgTasks, p.LocationConditionDraft} {
		for _, item := range list {
			if document.IDOf(item) == "" {
				item[document.IDField] = uuid.NewString()
			}
			document.AssignMissingIDs(item)
		}
	}
	for _, doc := range []document.Document{p.Applicant, p.ProjectResponsible, p.UserProject, p.FdpgChecklist} {
		document.AssignMissingIDs(doc)
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode proposal: %w", err)
	}
	return raw, nil
}

func decode(raw []byte) (*domain.Proposal, error) {
	var p domain.Proposal
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode proposal: %w", err)
	}
	return &p, nil
}

func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperr.Conflict("project abbreviation already in use").WithOp(op)
	}
	return fmt.Errorf("%s: %w", op, err)
}
