package week

import (
	"context"

	"github.com/construtek/nomina-backend-go/internal/pkg/isoweek"
)

// WeekRepository defines data access methods for payroll weeks.
// Insert is expected to fail on the (iso_year, iso_week) unique constraint
// with ErrWeekAlreadyExists; callers recover by fetching the existing row.
type WeekRepository interface {
	Insert(ctx context.Context, id isoweek.Identity) (PayrollWeek, error)
	GetByID(ctx context.Context, id string) (PayrollWeek, error)
	GetByYearWeek(ctx context.Context, isoYear, isoWeek int) (PayrollWeek, error)
	List(ctx context.Context, filter WeekFilter) ([]PayrollWeek, error)
	UpdateState(ctx context.Context, id string, state WeekState) error

	// Reconciliation
	ListAll(ctx context.Context) ([]PayrollWeek, error)
	UpdateIdentity(ctx context.Context, id string, identity isoweek.Identity) error
	DuplicateGroups(ctx context.Context) ([][]PayrollWeek, error)
	Delete(ctx context.Context, id string) error
}
