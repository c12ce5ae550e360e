package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fdpg_backend/platform/apperr"
)

const changelogNotFoundMessage = "location sync changelog not found"

// DBTX is satisfied by both the pool and a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	db   DBTX
}

// New creates a new locations repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool, db: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

const locationColumns = `code, display, definition, consortium, contract, abbreviation, uri,
	data_integration_center, data_management_center, deprecated, updated_at`

func scanLocation(row pgx.Row) (Location, error) {
	var l Location
	err := row.Scan(
		&l.Code, &l.Display, &l.Definition, &l.Consortium, &l.Contract, &l.Abbreviation, &l.URI,
		&l.DataIntegrationCenter, &l.DataManagementCenter, &l.Deprecated, &l.UpdatedAt,
	)
	return l, err
}

// FindAll lists the registry ordered by code.
func (r *Repo) FindAll(ctx context.Context) ([]Location, error) {
	rows, err := r.db.Query(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// FindAllLookUpMap returns the registry keyed by code.
func (r *Repo) FindAllLookUpMap(ctx context.Context) (map[string]Location, error) {
	all, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	lookup := make(map[string]Location, len(all))
	for _, l := range all {
		lookup[l.Code] = l
	}
	return lookup, nil
}

// Update writes data onto the registry, inserting the code when it is new.
func (r *Repo) Update(ctx context.Context, data LocationData) (Location, error) {
	query := `
		INSERT INTO locations (code, display, definition, consortium, contract, abbreviation, uri,
			data_integration_center, data_management_center, deprecated, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (code) DO UPDATE SET
			display = EXCLUDED.display,
			definition = EXCLUDED.definition,
			consortium = EXCLUDED.consortium,
			contract = EXCLUDED.contract,
			abbreviation = EXCLUDED.abbreviation,
			uri = EXCLUDED.uri,
			data_integration_center = EXCLUDED.data_integration_center,
			data_management_center = EXCLUDED.data_management_center,
			deprecated = EXCLUDED.deprecated,
			updated_at = now()
		RETURNING ` + locationColumns

	l, err := scanLocation(r.db.QueryRow(ctx, query,
		data.Code, data.Display, data.Definition, data.Consortium, data.Contract, data.Abbreviation, data.URI,
		data.DataIntegrationCenter, data.DataManagementCenter, data.Deprecated,
	))
	if err != nil {
		return Location{}, fmt.Errorf("update location %s: %w", data.Code, err)
	}
	return l, nil
}

const changelogColumns = `id, created, status, strategy, for_code, status_set_by, status_set_date,
	old_location_data, new_location_data`

func scanChangelog(row pgx.Row) (Changelog, error) {
	var (
		c        Changelog
		oldData  []byte
		newData  []byte
		status   string
		strategy string
	)
	if err := row.Scan(&c.ID, &c.Created, &status, &strategy, &c.ForCode, &c.StatusSetBy, &c.StatusSetDate, &oldData, &newData); err != nil {
		return Changelog{}, err
	}
	c.Status = ChangelogStatus(status)
	c.Strategy = ChangelogStrategy(strategy)
	if len(oldData) > 0 {
		var old LocationData
		if err := json.Unmarshal(oldData, &old); err != nil {
			return Changelog{}, fmt.Errorf("decode old location data: %w", err)
		}
		c.OldLocationData = &old
	}
	if err := json.Unmarshal(newData, &c.NewLocationData); err != nil {
		return Changelog{}, fmt.Errorf("decode new location data: %w", err)
	}
	return c, nil
}

// FindPendingByCode returns the pending changelog of each code that has one.
func (r *Repo) FindPendingByCode(ctx context.Context, codes []string) (map[string]Changelog, error) {
	out := map[string]Changelog{}
	if len(codes) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+changelogColumns+`
		FROM location_sync_changelogs
		WHERE status = $1 AND for_code = ANY($2::text[])`, string(ChangelogPending), codes)
	if err != nil {
		return nil, fmt.Errorf("find pending changelogs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanChangelog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan changelog: %w", err)
		}
		out[c.ForCode] = c
	}
	return out, rows.Err()
}

// BulkUpsert inserts new changelogs and rewrites pending ones in place.
// Upserting a changelog that is no longer pending fails.
func (r *Repo) BulkUpsert(ctx context.Context, changelogs []Changelog) error {
	if len(changelogs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, c := range changelogs {
		var oldData []byte
		if c.OldLocationData != nil {
			encoded, err := json.Marshal(c.OldLocationData)
			if err != nil {
				return fmt.Errorf("encode old location data: %w", err)
			}
			oldData = encoded
		}
		newData, err := json.Marshal(c.NewLocationData)
		if err != nil {
			return fmt.Errorf("encode new location data: %w", err)
		}
		batch.Queue(`
			INSERT INTO location_sync_changelogs (id, created, status, strategy, for_code, old_location_data, new_location_data)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				strategy = EXCLUDED.strategy,
				old_location_data = EXCLUDED.old_location_data,
				new_location_data = EXCLUDED.new_location_data
			WHERE location_sync_changelogs.status = 'PENDING'`,
			c.ID, c.Created, string(c.Status), string(c.Strategy), c.ForCode, oldData, newData)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()
	for _, c := range changelogs {
		tag, err := results.Exec()
		if err != nil {
			return fmt.Errorf("upsert changelog %s: %w", c.ForCode, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("changelog %s for %s is not pending", c.ID, c.ForCode)
		}
	}
	return nil
}

// GetChangelog retrieves a changelog by id.
func (r *Repo) GetChangelog(ctx context.Context, id uuid.UUID) (Changelog, error) {
	c, err := scanChangelog(r.db.QueryRow(ctx, `SELECT `+changelogColumns+` FROM location_sync_changelogs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Changelog{}, apperr.NotFound(changelogNotFoundMessage)
		}
		return Changelog{}, fmt.Errorf("get changelog: %w", err)
	}
	return c, nil
}

// ListChangelogs returns a page of changelogs, newest first, and the total.
func (r *Repo) ListChangelogs(ctx context.Context, params ListParams) ([]Changelog, int, error) {
	var status *string
	if params.Status != nil {
		s := string(*params.Status)
		status = &s
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM location_sync_changelogs
		WHERE ($1::text IS NULL OR status = $1)`, status).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count changelogs: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT `+changelogColumns+`
		FROM location_sync_changelogs
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created DESC, for_code
		LIMIT $2 OFFSET $3`, status, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list changelogs: %w", err)
	}
	defer rows.Close()

	items := make([]Changelog, 0)
	for rows.Next() {
		c, err := scanChangelog(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan changelog: %w", err)
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

// SetChangelogStatus resolves a pending changelog.
func (r *Repo) SetChangelogStatus(ctx context.Context, id uuid.UUID, status ChangelogStatus, setBy string, setAt time.Time) (Changelog, error) {
	c, err := scanChangelog(r.db.QueryRow(ctx, `
		UPDATE location_sync_changelogs
		SET status = $2, status_set_by = $3, status_set_date = $4
		WHERE id = $1 AND status = 'PENDING'
		RETURNING `+changelogColumns, id, string(status), setBy, setAt))
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Changelog{}, fmt.Errorf("set changelog status: %w", err)
	}

	existing, getErr := r.GetChangelog(ctx, id)
	if getErr != nil {
		return Changelog{}, getErr
	}
	return Changelog{}, apperr.InvalidTransition("status", string(existing.Status), string(status))
}

// WithTx runs fn inside one transaction.
func (r *Repo) WithTx(ctx context.Context, fn func(Repository) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&Repo{pool: r.pool, db: tx})
	})
}
