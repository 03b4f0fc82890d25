package postgresql

import (
	"context"
	"fmt"

	"github.com/construtek/nomina-backend-go/internal/domain/week"
	"github.com/construtek/nomina-backend-go/internal/pkg/database"
	"github.com/construtek/nomina-backend-go/internal/pkg/isoweek"
	"github.com/jackc/pgx/v5"
)

type weekRepository struct {
	db *database.DB
}

func NewWeekRepository(db *database.DB) week.WeekRepository {
	return &weekRepository{db: db}
}

const weekColumns = `id, iso_year, iso_week, week_start, week_end, label, state, created_at, updated_at`

func scanWeek(row pgx.Row) (week.PayrollWeek, error) {
	var w week.PayrollWeek
	err := row.Scan(
		&w.ID, &w.ISOYear, &w.ISOWeek, &w.WeekStart, &w.WeekEnd,
		&w.Label, &w.State, &w.CreatedAt, &w.UpdatedAt,
	)
	return w, err
}

func (r *weekRepository) Insert(ctx context.Context, id isoweek.Identity) (week.PayrollWeek, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_weeks (iso_year, iso_week, week_start, week_end, label, state)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + weekColumns

	w, err := scanWeek(q.QueryRow(ctx, query,
		id.Year, id.Week, id.Start, id.End, id.Label, week.WeekStateDraft,
	))
	if err != nil {
		if IsUniqueViolation(err, "uk_payroll_weeks_iso_year_iso_week") {
			return week.PayrollWeek{}, week.ErrWeekAlreadyExists
		}
		return week.PayrollWeek{}, fmt.Errorf("failed to insert payroll week: %w", err)
	}

	return w, nil
}

func (r *weekRepository) GetByID(ctx context.Context, id string) (week.PayrollWeek, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + weekColumns + ` FROM payroll_weeks WHERE id = $1`

	w, err := scanWeek(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return week.PayrollWeek{}, week.ErrWeekNotFound
		}
		return week.PayrollWeek{}, fmt.Errorf("failed to get payroll week: %w", err)
	}

	return w, nil
}

func (r *weekRepository) GetByYearWeek(ctx context.Context, isoYear, isoWeek int) (week.PayrollWeek, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + weekColumns + ` FROM payroll_weeks WHERE iso_year = $1 AND iso_week = $2`

	w, err := scanWeek(q.QueryRow(ctx, query, isoYear, isoWeek))
	if err != nil {
		if err == pgx.ErrNoRows {
			return week.PayrollWeek{}, week.ErrWeekNotFound
		}
		return week.PayrollWeek{}, fmt.Errorf("failed to get payroll week by iso pair: %w", err)
	}

	return w, nil
}

func (r *weekRepository) List(ctx context.Context, filter week.WeekFilter) ([]week.PayrollWeek, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + weekColumns + ` FROM payroll_weeks WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.ISOYear != nil {
		query += fmt.Sprintf(" AND iso_year = $%d", argIdx)
		args = append(args, *filter.ISOYear)
		argIdx++
	}
	if filter.State != nil {
		query += fmt.Sprintf(" AND state = $%d", argIdx)
		args = append(args, *filter.State)
		argIdx++
	}
	query += " ORDER BY iso_year, iso_week"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll weeks: %w", err)
	}
	defer rows.Close()

	var weeks []week.PayrollWeek
	for rows.Next() {
		w, err := scanWeek(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll week: %w", err)
		}
		weeks = append(weeks, w)
	}

	return weeks, nil
}

func (r *weekRepository) UpdateState(ctx context.Context, id string, state week.WeekState) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_weeks
		SET state = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, id, state).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return week.ErrWeekNotFound
		}
		return fmt.Errorf("failed to update week state: %w", err)
	}

	return nil
}

func (r *weekRepository) ListAll(ctx context.Context) ([]week.PayrollWeek, error) {
	return r.List(ctx, week.WeekFilter{})
}

func (r *weekRepository) UpdateIdentity(ctx context.Context, id string, identity isoweek.Identity) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_weeks
		SET iso_year = $2, iso_week = $3, week_start = $4, week_end = $5, label = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, id, identity.Year, identity.Week, identity.Start, identity.End, identity.Label).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return week.ErrWeekNotFound
		}
		if IsUniqueViolation(err, "uk_payroll_weeks_iso_year_iso_week") {
			return week.ErrWeekAlreadyExists
		}
		return fmt.Errorf("failed to update week identity: %w", err)
	}

	return nil
}

func (r *weekRepository) DuplicateGroups(ctx context.Context) ([][]week.PayrollWeek, error) {
	q := GetQuerier(ctx, r.db)

	// Two rows with the same week_start describe the same real week under
	// different stored identities; the unique index on (iso_year, iso_week)
	// cannot catch those. Ordered by id inside each group so the first
	// member is the keeper.
	query := `
		SELECT ` + weekColumns + `
		FROM payroll_weeks
		WHERE week_start IN (
			SELECT week_start
			FROM payroll_weeks
			GROUP BY week_start
			HAVING COUNT(*) > 1
		)
		ORDER BY week_start, id
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find duplicate weeks: %w", err)
	}
	defer rows.Close()

	var groups [][]week.PayrollWeek
	var current []week.PayrollWeek
	for rows.Next() {
		w, err := scanWeek(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan duplicate week: %w", err)
		}
		if len(current) > 0 && !current[0].WeekStart.Equal(w.WeekStart) {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, w)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	return groups, nil
}

func (r *weekRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM payroll_weeks WHERE id = $1 RETURNING id`

	var deletedID string
	err := q.QueryRow(ctx, query, id).Scan(&deletedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return week.ErrWeekNotFound
		}
		return fmt.Errorf("failed to delete payroll week: %w", err)
	}

	return nil
}
