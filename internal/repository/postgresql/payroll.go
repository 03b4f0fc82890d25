package postgresql

import (
	"context"
	"fmt"

	"github.com/construtek/nomina-backend-go/internal/domain/payroll"
	"github.com/construtek/nomina-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

// ========== RECORDS ==========

const recordColumns = `
	pr.id, pr.employee_id, pr.week_id, pr.days_worked, pr.daily_rate,
	pr.overtime_amount, pr.bonus_amount,
	pr.deduction_tax, pr.deduction_social_security, pr.deduction_housing,
	pr.deduction_advance, pr.deduction_other,
	pr.total_amount, pr.payment_state, pr.is_partial_payment,
	pr.amount_paid, pr.amount_owed, pr.created_at, pr.updated_at`

const strippedRecordColumns = `
	id, employee_id, week_id, days_worked, daily_rate,
	overtime_amount, bonus_amount,
	deduction_tax, deduction_social_security, deduction_housing,
	deduction_advance, deduction_other,
	total_amount, payment_state, is_partial_payment,
	amount_paid, amount_owed, created_at, updated_at`

func scanRecord(row pgx.Row, joined bool) (payroll.PayrollRecord, error) {
	var rec payroll.PayrollRecord
	dest := []interface{}{
		&rec.ID, &rec.EmployeeID, &rec.WeekID, &rec.DaysWorked, &rec.DailyRate,
		&rec.OvertimeAmount, &rec.BonusAmount,
		&rec.Deductions.Tax, &rec.Deductions.SocialSecurity, &rec.Deductions.Housing,
		&rec.Deductions.Advance, &rec.Deductions.Other,
		&rec.TotalAmount, &rec.PaymentState, &rec.IsPartialPayment,
		&rec.AmountPaid, &rec.AmountOwed, &rec.CreatedAt, &rec.UpdatedAt,
	}
	if joined {
		dest = append(dest, &rec.WeekLabel, &rec.ISOYear, &rec.ISOWeek)
	}
	return rec, row.Scan(dest...)
}

func (r *payrollRepository) UpsertRecord(ctx context.Context, rec payroll.PayrollRecord) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	// Edits re-derive the total; money already paid is preserved and the
	// owed remainder recomputed against the new total.
	query := `
		INSERT INTO payroll_records (
			employee_id, week_id, days_worked, daily_rate,
			overtime_amount, bonus_amount,
			deduction_tax, deduction_social_security, deduction_housing,
			deduction_advance, deduction_other,
			total_amount, payment_state, is_partial_payment, amount_paid, amount_owed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, false, 0, $12)
		ON CONFLICT (employee_id, week_id) DO UPDATE SET
			days_worked = EXCLUDED.days_worked,
			daily_rate = EXCLUDED.daily_rate,
			overtime_amount = EXCLUDED.overtime_amount,
			bonus_amount = EXCLUDED.bonus_amount,
			deduction_tax = EXCLUDED.deduction_tax,
			deduction_social_security = EXCLUDED.deduction_social_security,
			deduction_housing = EXCLUDED.deduction_housing,
			deduction_advance = EXCLUDED.deduction_advance,
			deduction_other = EXCLUDED.deduction_other,
			total_amount = EXCLUDED.total_amount,
			amount_owed = EXCLUDED.total_amount - payroll_records.amount_paid,
			updated_at = NOW()
		RETURNING ` + strippedRecordColumns

	rec2, err := scanRecord(q.QueryRow(ctx, query,
		rec.EmployeeID, rec.WeekID, rec.DaysWorked, rec.DailyRate,
		rec.OvertimeAmount, rec.BonusAmount,
		rec.Deductions.Tax, rec.Deductions.SocialSecurity, rec.Deductions.Housing,
		rec.Deductions.Advance, rec.Deductions.Other,
		rec.TotalAmount, rec.PaymentState,
	), false)
	if err != nil {
		return payroll.PayrollRecord{}, fmt.Errorf("failed to upsert payroll record: %w", err)
	}

	return rec2, nil
}

func (r *payrollRepository) GetRecordByID(ctx context.Context, id string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `, pw.label, pw.iso_year, pw.iso_week
		FROM payroll_records pr
		JOIN payroll_weeks pw ON pr.week_id = pw.id
		WHERE pr.id = $1
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, id), true)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRecord{}, payroll.ErrRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}

	return rec, nil
}

func (r *payrollRepository) GetRecordByEmployeeWeek(ctx context.Context, employeeID, weekID string) (payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `, pw.label, pw.iso_year, pw.iso_week
		FROM payroll_records pr
		JOIN payroll_weeks pw ON pr.week_id = pw.id
		WHERE pr.employee_id = $1 AND pr.week_id = $2
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, employeeID, weekID), true)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.PayrollRecord{}, payroll.ErrRecordNotFound
		}
		return payroll.PayrollRecord{}, fmt.Errorf("failed to get payroll record: %w", err)
	}

	return rec, nil
}

func (r *payrollRepository) ListRecords(ctx context.Context, filter payroll.RecordFilter) ([]payroll.PayrollRecord, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseQuery := `
		FROM payroll_records pr
		JOIN payroll_weeks pw ON pr.week_id = pw.id
		WHERE 1=1
	`
	args := []interface{}{}
	argIdx := 1

	if filter.WeekID != nil {
		baseQuery += fmt.Sprintf(" AND pr.week_id = $%d", argIdx)
		args = append(args, *filter.WeekID)
		argIdx++
	}
	if filter.EmployeeID != nil {
		baseQuery += fmt.Sprintf(" AND pr.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.State != nil {
		baseQuery += fmt.Sprintf(" AND pr.payment_state = $%d", argIdx)
		args = append(args, *filter.State)
		argIdx++
	}

	var totalCount int64
	countQuery := "SELECT COUNT(*) " + baseQuery
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll records: %w", err)
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	selectQuery := fmt.Sprintf(`
		SELECT %s, pw.label, pw.iso_year, pw.iso_week
		%s
		ORDER BY pw.iso_year, pw.iso_week, pr.employee_id
		LIMIT $%d OFFSET $%d
	`, recordColumns, baseQuery, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanRecord(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}

	return records, totalCount, nil
}

func (r *payrollRepository) ListRecordsByWeek(ctx context.Context, weekID string) ([]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + strippedRecordColumns + `
		FROM payroll_records pr
		WHERE pr.week_id = $1
		ORDER BY pr.id
	`

	rows, err := q.Query(ctx, query, weekID)
	if err != nil {
		return nil, fmt.Errorf("failed to list records by week: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanRecord(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll record: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func (r *payrollRepository) UpdatePayment(ctx context.Context, id string, state payroll.PaymentState, isPartial bool, amountPaid, amountOwed decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_records
		SET payment_state = $2, is_partial_payment = $3, amount_paid = $4, amount_owed = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, id, state, isPartial, amountPaid, amountOwed).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.ErrRecordNotFound
		}
		return fmt.Errorf("failed to update payment: %w", err)
	}

	return nil
}

func (r *payrollRepository) UpdateState(ctx context.Context, id string, state payroll.PaymentState) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_records
		SET payment_state = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query, id, state).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.ErrRecordNotFound
		}
		return fmt.Errorf("failed to update payment state: %w", err)
	}

	return nil
}

func (r *payrollRepository) WeekTotals(ctx context.Context, weekID string) (payroll.WeekTotals, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*) as record_count,
			COALESCE(SUM(total_amount), 0) as total_amount,
			COALESCE(SUM(amount_paid), 0) as total_paid,
			COALESCE(SUM(amount_owed), 0) as total_owed,
			COUNT(*) FILTER (WHERE payment_state = 'paid') as paid_count,
			COUNT(*) FILTER (WHERE payment_state = 'cancelled') as cancelled_count
		FROM payroll_records
		WHERE week_id = $1
	`

	totals := payroll.WeekTotals{WeekID: weekID}
	err := q.QueryRow(ctx, query, weekID).Scan(
		&totals.RecordCount, &totals.TotalAmount, &totals.TotalPaid,
		&totals.TotalOwed, &totals.PaidCount, &totals.CancelledCount,
	)
	if err != nil {
		return payroll.WeekTotals{}, fmt.Errorf("failed to get week totals: %w", err)
	}

	return totals, nil
}

// ========== DEBTS ==========

const debtColumns = `
	id, payroll_record_id, employee_id, original_amount, amount_paid,
	amount_pending, state, settled_at, notes, created_at, updated_at`

func scanDebt(row pgx.Row) (payroll.DebtRecord, error) {
	var d payroll.DebtRecord
	err := row.Scan(
		&d.ID, &d.PayrollRecordID, &d.EmployeeID, &d.OriginalAmount, &d.AmountPaid,
		&d.AmountPending, &d.State, &d.SettledAt, &d.Notes, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

func (r *payrollRepository) UpsertDebt(ctx context.Context, debt payroll.DebtRecord) (payroll.DebtRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO debt_records (
			payroll_record_id, employee_id, original_amount, amount_paid,
			amount_pending, state, settled_at, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (payroll_record_id) DO UPDATE SET
			original_amount = EXCLUDED.original_amount,
			amount_paid = EXCLUDED.amount_paid,
			amount_pending = EXCLUDED.amount_pending,
			state = EXCLUDED.state,
			settled_at = EXCLUDED.settled_at,
			notes = COALESCE(EXCLUDED.notes, debt_records.notes),
			updated_at = NOW()
		RETURNING ` + debtColumns

	d, err := scanDebt(q.QueryRow(ctx, query,
		debt.PayrollRecordID, debt.EmployeeID, debt.OriginalAmount, debt.AmountPaid,
		debt.AmountPending, debt.State, debt.SettledAt, debt.Notes,
	))
	if err != nil {
		return payroll.DebtRecord{}, fmt.Errorf("failed to upsert debt record: %w", err)
	}

	return d, nil
}

func (r *payrollRepository) GetDebtByID(ctx context.Context, id string) (payroll.DebtRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + debtColumns + ` FROM debt_records WHERE id = $1`

	d, err := scanDebt(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.DebtRecord{}, payroll.ErrDebtNotFound
		}
		return payroll.DebtRecord{}, fmt.Errorf("failed to get debt record: %w", err)
	}

	return d, nil
}

func (r *payrollRepository) GetDebtByRecordID(ctx context.Context, recordID string) (payroll.DebtRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + debtColumns + ` FROM debt_records WHERE payroll_record_id = $1`

	d, err := scanDebt(q.QueryRow(ctx, query, recordID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.DebtRecord{}, payroll.ErrDebtNotFound
		}
		return payroll.DebtRecord{}, fmt.Errorf("failed to get debt record: %w", err)
	}

	return d, nil
}

func (r *payrollRepository) ListDebts(ctx context.Context, filter payroll.DebtFilter) ([]payroll.DebtRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + debtColumns + ` FROM debt_records WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil {
		query += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.State != nil {
		query += fmt.Sprintf(" AND state = $%d", argIdx)
		args = append(args, *filter.State)
		argIdx++
	}
	query += " ORDER BY created_at DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list debt records: %w", err)
	}
	defer rows.Close()

	var debts []payroll.DebtRecord
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debt record: %w", err)
		}
		debts = append(debts, d)
	}

	return debts, nil
}

func (r *payrollRepository) UpdateDebt(ctx context.Context, debt payroll.DebtRecord) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE debt_records
		SET amount_paid = $2, amount_pending = $3, state = $4, settled_at = $5,
			notes = COALESCE($6, notes), updated_at = NOW()
		WHERE id = $1
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query,
		debt.ID, debt.AmountPaid, debt.AmountPending, debt.State, debt.SettledAt, debt.Notes,
	).Scan(&updatedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.ErrDebtNotFound
		}
		return fmt.Errorf("failed to update debt record: %w", err)
	}

	return nil
}

// ========== RECONCILIATION ==========

// ReassignWeek moves records from one week onto another, skipping rows whose
// employee already has a record on the target week. Those collisions are
// duplicate payroll entries and get resolved by the record dedup policy, not
// by silently dropping money here.
func (r *payrollRepository) ReassignWeek(ctx context.Context, fromWeekID, toWeekID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_records pr
		SET week_id = $2, updated_at = NOW()
		WHERE pr.week_id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM payroll_records x
			WHERE x.week_id = $2 AND x.employee_id = pr.employee_id
		  )
	`

	tag, err := q.Exec(ctx, query, fromWeekID, toWeekID)
	if err != nil {
		return 0, fmt.Errorf("failed to reassign payroll records: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *payrollRepository) CountByWeek(ctx context.Context, weekID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var count int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM payroll_records WHERE week_id = $1`, weekID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count records by week: %w", err)
	}

	return count, nil
}

func (r *payrollRepository) DuplicateRecordGroups(ctx context.Context) ([][]payroll.PayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + strippedRecordColumns + `
		FROM payroll_records pr
		WHERE (pr.employee_id, pr.week_id) IN (
			SELECT employee_id, week_id
			FROM payroll_records
			GROUP BY employee_id, week_id
			HAVING COUNT(*) > 1
		)
		ORDER BY pr.employee_id, pr.week_id, pr.id
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find duplicate records: %w", err)
	}
	defer rows.Close()

	var groups [][]payroll.PayrollRecord
	var current []payroll.PayrollRecord
	for rows.Next() {
		rec, err := scanRecord(rows, false)
		if err != nil {
			return nil, fmt.Errorf("failed to scan duplicate record: %w", err)
		}
		if len(current) > 0 && (current[0].EmployeeID != rec.EmployeeID || current[0].WeekID != rec.WeekID) {
			groups = append(groups, current)
			current = nil
		}
		current = append(current, rec)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	return groups, nil
}

func (r *payrollRepository) DeleteRecord(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM payroll_records WHERE id = $1 RETURNING id`

	var deletedID string
	err := q.QueryRow(ctx, query, id).Scan(&deletedID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return payroll.ErrRecordNotFound
		}
		return fmt.Errorf("failed to delete payroll record: %w", err)
	}

	return nil
}
