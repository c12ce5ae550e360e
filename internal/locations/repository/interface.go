package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LocationData holds the registry fields compared during a sync.
type LocationData struct {
	Code                  string `json:"code"`
	Display               string `json:"display"`
	Definition            string `json:"definition"`
	Consortium            string `json:"consortium"`
	Contract              string `json:"contract"`
	Abbreviation          string `json:"abbreviation"`
	URI                   string `json:"uri"`
	DataIntegrationCenter bool   `json:"dataIntegrationCenter"`
	DataManagementCenter  bool   `json:"dataManagementCenter"`
	Deprecated            bool   `json:"deprecated"`
}

// Location is a row of the live location registry.
type Location struct {
	LocationData
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChangelogStatus is the review state of a changelog. Only Pending is mutable.
type ChangelogStatus string

const (
	ChangelogPending  ChangelogStatus = "PENDING"
	ChangelogApproved ChangelogStatus = "APPROVED"
	ChangelogDeclined ChangelogStatus = "DECLINED"
)

// ChangelogStrategy tells how a changelog alters the registry.
type ChangelogStrategy string

const (
	StrategyInsert    ChangelogStrategy = "INSERT"
	StrategyUpdate    ChangelogStrategy = "UPDATE"
	StrategyDeprecate ChangelogStrategy = "DEPRECATE"
)

// Changelog is a reviewable diff between the codesystem and the registry.
type Changelog struct {
	ID              uuid.UUID         `json:"_id"`
	Created         time.Time         `json:"created"`
	Status          ChangelogStatus   `json:"status"`
	Strategy        ChangelogStrategy `json:"strategy"`
	ForCode         string            `json:"forCode"`
	StatusSetBy     *string           `json:"statusSetBy,omitempty"`
	StatusSetDate   *time.Time        `json:"statusSetDate,omitempty"`
	OldLocationData *LocationData     `json:"oldLocationData,omitempty"`
	NewLocationData LocationData      `json:"newLocationData"`
}

// ListParams filters changelog listings.
type ListParams struct {
	Status *ChangelogStatus
	Offset int
	Limit  int
}

// LocationReader provides read access to the registry.
type LocationReader interface {
	FindAll(ctx context.Context) ([]Location, error)
	FindAllLookUpMap(ctx context.Context) (map[string]Location, error)
}

// LocationWriter writes to the registry.
type LocationWriter interface {
	Update(ctx context.Context, data LocationData) (Location, error)
}

// ChangelogStore persists changelogs.
type ChangelogStore interface {
	FindPendingByCode(ctx context.Context, codes []string) (map[string]Changelog, error)
	BulkUpsert(ctx context.Context, changelogs []Changelog) error
	GetChangelog(ctx context.Context, id uuid.UUID) (Changelog, error)
	ListChangelogs(ctx context.Context, params ListParams) ([]Changelog, int, error)
	SetChangelogStatus(ctx context.Context, id uuid.UUID, status ChangelogStatus, setBy string, setAt time.Time) (Changelog, error)
}

// Repository combines all location repository operations.
type Repository interface {
	LocationReader
	LocationWriter
	ChangelogStore
	// WithTx runs fn against a repository bound to one transaction.
	WithTx(ctx context.Context, fn func(Repository) error) error
}
