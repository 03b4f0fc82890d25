package week

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/construtek/nomina-backend-go/internal/domain/audit"
	"github.com/construtek/nomina-backend-go/internal/domain/week"
	"github.com/construtek/nomina-backend-go/internal/pkg/database"
	"github.com/construtek/nomina-backend-go/internal/pkg/isoweek"
	"github.com/construtek/nomina-backend-go/internal/repository/postgresql"
)

type WeekServiceImpl struct {
	db        *database.DB
	weekRepo  week.WeekRepository
	auditRepo audit.AuditRepository
}

func NewWeekService(
	db *database.DB,
	weekRepo week.WeekRepository,
	auditRepo audit.AuditRepository,
) week.WeekService {
	return &WeekServiceImpl{
		db:        db,
		weekRepo:  weekRepo,
		auditRepo: auditRepo,
	}
}

func (s *WeekServiceImpl) Resolve(ctx context.Context, req week.ResolveWeekRequest) (week.WeekResponse, error) {
	if err := req.Validate(); err != nil {
		return week.WeekResponse{}, err
	}

	date, _ := time.Parse("2006-01-02", req.Date)

	w, err := s.GetOrCreate(ctx, date)
	if err != nil {
		return week.WeekResponse{}, err
	}

	return toWeekResponse(w), nil
}

// GetOrCreate resolves a date to its week row, creating it when absent.
// Losing an insert race is not an error: the winner's row is fetched and
// returned, so concurrent resolves for the same date converge.
func (s *WeekServiceImpl) GetOrCreate(ctx context.Context, date time.Time) (week.PayrollWeek, error) {
	identity := isoweek.Compute(date)

	w, err := s.weekRepo.GetByYearWeek(ctx, identity.Year, identity.Week)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, week.ErrWeekNotFound) {
		return week.PayrollWeek{}, err
	}

	w, err = s.weekRepo.Insert(ctx, identity)
	if err != nil {
		if errors.Is(err, week.ErrWeekAlreadyExists) {
			return s.weekRepo.GetByYearWeek(ctx, identity.Year, identity.Week)
		}
		return week.PayrollWeek{}, err
	}

	return w, nil
}

// SeedYear pre-creates every week touching the given calendar year. Walking
// Jan 1 through Dec 31 in 7-day steps hits every week once; the explicit
// Dec 31 probe catches the trailing week a 7-day stride can step over.
func (s *WeekServiceImpl) SeedYear(ctx context.Context, year int, actorID string) (week.SeedYearResponse, error) {
	if year < 2000 || year > 2100 {
		return week.SeedYearResponse{}, week.ErrInvalidYear
	}

	resp := week.SeedYearResponse{Year: year}

	seen := make(map[string]bool)
	seed := func(date time.Time) error {
		identity := isoweek.Compute(date)
		key := fmt.Sprintf("%d-%d", identity.Year, identity.Week)
		if seen[key] {
			return nil
		}
		seen[key] = true

		_, err := s.weekRepo.GetByYearWeek(ctx, identity.Year, identity.Week)
		if err == nil {
			resp.Existed++
			return nil
		}
		if !errors.Is(err, week.ErrWeekNotFound) {
			return err
		}

		created, err := s.weekRepo.Insert(ctx, identity)
		if err != nil {
			if errors.Is(err, week.ErrWeekAlreadyExists) {
				resp.Existed++
				return nil
			}
			return err
		}
		resp.Created++

		entry := audit.NewEntry("payroll_week", created.ID, "seed", actorID, nil, created)
		return s.auditRepo.Append(ctx, entry)
	}

	start := time.Date(year, time.January, 1, 12, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 12, 0, 0, 0, time.UTC)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 7) {
		if err := seed(d); err != nil {
			return week.SeedYearResponse{}, err
		}
	}
	if err := seed(end); err != nil {
		return week.SeedYearResponse{}, err
	}

	return resp, nil
}

func (s *WeekServiceImpl) GetByID(ctx context.Context, id string) (week.WeekResponse, error) {
	w, err := s.weekRepo.GetByID(ctx, id)
	if err != nil {
		return week.WeekResponse{}, err
	}
	return toWeekResponse(w), nil
}

func (s *WeekServiceImpl) Current(ctx context.Context) (week.WeekResponse, error) {
	w, err := s.GetOrCreate(ctx, time.Now())
	if err != nil {
		return week.WeekResponse{}, err
	}
	return toWeekResponse(w), nil
}

func (s *WeekServiceImpl) List(ctx context.Context, filter week.WeekFilter) ([]week.WeekResponse, error) {
	weeks, err := s.weekRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]week.WeekResponse, 0, len(weeks))
	for _, w := range weeks {
		responses = append(responses, toWeekResponse(w))
	}
	return responses, nil
}

func (s *WeekServiceImpl) Transition(ctx context.Context, req week.TransitionWeekRequest, actorID string) (week.WeekResponse, error) {
	if err := req.Validate(); err != nil {
		return week.WeekResponse{}, err
	}

	var updated week.PayrollWeek
	err := postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		current, err := s.weekRepo.GetByID(txCtx, req.ID)
		if err != nil {
			return err
		}

		next := week.WeekState(req.State)
		if !current.State.CanTransitionTo(next) {
			return week.ErrInvalidTransition
		}

		if err := s.weekRepo.UpdateState(txCtx, current.ID, next); err != nil {
			return err
		}

		updated = current
		updated.State = next

		entry := audit.NewEntry("payroll_week", current.ID, "state_change", actorID, current, updated)
		return s.auditRepo.Append(txCtx, entry)
	})
	if err != nil {
		return week.WeekResponse{}, err
	}

	return toWeekResponse(updated), nil
}

func toWeekResponse(w week.PayrollWeek) week.WeekResponse {
	return week.WeekResponse{
		ID:        w.ID,
		ISOYear:   w.ISOYear,
		ISOWeek:   w.ISOWeek,
		WeekStart: w.WeekStart.Format("2006-01-02"),
		WeekEnd:   w.WeekEnd.Format("2006-01-02"),
		Label:     w.Label,
		State:     string(w.State),
	}
}
