package scheduler

import (
	"context"
	"time"

	"fdpg_backend/internal/proposals/domain"

	"github.com/google/uuid"
)

// MaxTries is the number of claims after which a schedule is left inert.
const MaxTries = 2

// Schedule is one durable time-triggered task.
type Schedule struct {
	ID                  uuid.UUID
	Type                domain.ScheduleType
	ReferenceDocumentID *uuid.UUID
	DueAfter            time.Time
	LockedUntil         time.Time
	NumberOfTries       int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Store persists schedules and implements the lease-based claim.
type Store interface {
	Insert(ctx context.Context, schedules ...Schedule) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
	// ClaimNext leases the earliest due schedule that is unlocked and has
	// tries left. It returns nil when nothing is eligible.
	ClaimNext(ctx context.Context, now time.Time, lease time.Duration) (*Schedule, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Retry releases the lease and moves the schedule to dueAfter.
	Retry(ctx context.Context, id uuid.UUID, dueAfter time.Time) error
	// NextEligibleAt returns when the earliest schedule with tries left can
	// next be claimed, or nil when there is none.
	NextEligibleAt(ctx context.Context) (*time.Time, error)
}
