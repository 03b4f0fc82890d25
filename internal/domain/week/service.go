package week

import (
	"context"
	"time"
)

// WeekService resolves calendar dates to payroll weeks and manages week
// lifecycle. Resolution is getOrCreate: two callers racing on the same date
// converge on a single row.
type WeekService interface {
	Resolve(ctx context.Context, req ResolveWeekRequest) (WeekResponse, error)
	GetOrCreate(ctx context.Context, date time.Time) (PayrollWeek, error)
	SeedYear(ctx context.Context, year int, actorID string) (SeedYearResponse, error)
	GetByID(ctx context.Context, id string) (WeekResponse, error)
	Current(ctx context.Context) (WeekResponse, error)
	List(ctx context.Context, filter WeekFilter) ([]WeekResponse, error)
	Transition(ctx context.Context, req TransitionWeekRequest, actorID string) (WeekResponse, error)
}
