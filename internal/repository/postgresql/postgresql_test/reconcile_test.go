package postgresql_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/construtek/nomina-backend-go/internal/domain/payroll"
	"github.com/construtek/nomina-backend-go/internal/domain/reconcile"
	"github.com/construtek/nomina-backend-go/internal/repository/postgresql"
	reconcileService "github.com/construtek/nomina-backend-go/internal/service/reconcile"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReconcileService(t *testing.T) reconcile.ReconcileService {
	conn := testDB(t)
	weekRepo := postgresql.NewWeekRepository(conn)
	payrollRepo := postgresql.NewPayrollRepository(conn)
	auditRepo := postgresql.NewAuditRepository(conn)
	return reconcileService.NewReconcileService(conn, weekRepo, payrollRepo, auditRepo, slog.Default())
}

// insertWeekRaw plants a week row exactly as given, bypassing the calendar
// logic, to simulate drifted historical data.
func insertWeekRaw(t *testing.T, ctx context.Context, isoYear, isoWeek int, weekStart, weekEnd, label string) string {
	t.Helper()
	var id string
	err := testDB(t).QueryRow(ctx, `
		INSERT INTO payroll_weeks (iso_year, iso_week, week_start, week_end, label, state)
		VALUES ($1, $2, $3, $4, $5, 'draft')
		RETURNING id
	`, isoYear, isoWeek, weekStart, weekEnd, label).Scan(&id)
	require.NoError(t, err)
	return id
}

func insertRecordRaw(t *testing.T, ctx context.Context, employeeID, weekID string, total int) string {
	t.Helper()
	var id string
	err := testDB(t).QueryRow(ctx, `
		INSERT INTO payroll_records (
			employee_id, week_id, days_worked, daily_rate, total_amount, amount_owed
		) VALUES ($1, $2, 6, $3, $3, $3)
		RETURNING id
	`, employeeID, weekID, total).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestReconcile_AuditReportsWithoutModifying(t *testing.T) {
	ctx := context.Background()
	truncateAll(t, ctx)
	svc := newReconcileService(t)

	// Week 42 of 2025 stored under the wrong number.
	badID := insertWeekRaw(t, ctx, 2025, 40, "2025-10-13", "2025-10-19", "Semana 40 2025 (Octubre)")

	report, err := svc.AuditWeeks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.WeeksScanned)
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, reconcile.KindWrongIdentity, report.Discrepancies[0].Kind)
	assert.Equal(t, badID, report.Discrepancies[0].WeekID)
	assert.Equal(t, "2025-W40", report.Discrepancies[0].Stored)
	assert.Equal(t, "2025-W42", report.Discrepancies[0].Expected)

	// Audit is read-only: the bad row is untouched.
	weekRepo := postgresql.NewWeekRepository(testDB(t))
	w, err := weekRepo.GetByID(ctx, badID)
	require.NoError(t, err)
	assert.Equal(t, 40, w.ISOWeek)
}

func TestReconcile_RepairRelabelsWeek(t *testing.T) {
	ctx := context.Background()
	truncateAll(t, ctx)
	svc := newReconcileService(t)

	badID := insertWeekRaw(t, ctx, 2025, 40, "2025-10-13", "2025-10-19", "Semana 40 2025 (Octubre)")

	report, err := svc.RepairWeeks(ctx, "tester")
	require.NoError(t, err)
	assert.Equal(t, 1, report.WeeksRepaired)
	assert.Equal(t, 0, report.WeeksMerged)
	assert.Empty(t, report.Failures)

	weekRepo := postgresql.NewWeekRepository(testDB(t))
	w, err := weekRepo.GetByID(ctx, badID)
	require.NoError(t, err)
	assert.Equal(t, 42, w.ISOWeek)
	assert.Equal(t, "Semana 42 2025 (Octubre)", w.Label)
}

func TestReconcile_RepairMergesIntoCanonicalWeek(t *testing.T) {
	ctx := context.Background()
	truncateAll(t, ctx)
	svc := newReconcileService(t)

	canonicalID := insertWeekRaw(t, ctx, 2025, 42, "2025-10-13", "2025-10-19", "Semana 42 2025 (Octubre)")
	badID := insertWeekRaw(t, ctx, 2025, 40, "2025-10-13", "2025-10-19", "Semana 40 2025 (Octubre)")

	employeeA := uuid.NewString()
	employeeB := uuid.NewString()
	keeperID := insertRecordRaw(t, ctx, employeeA, canonicalID, 600)
	insertRecordRaw(t, ctx, employeeA, badID, 600)
	movedID := insertRecordRaw(t, ctx, employeeB, badID, 450)

	report, err := svc.RepairWeeks(ctx, "tester")
	require.NoError(t, err)
	assert.Equal(t, 1, report.WeeksMerged)
	assert.Empty(t, report.Failures)

	// The stale week is gone; both employees keep exactly one record on the
	// canonical week.
	payrollRepo := postgresql.NewPayrollRepository(testDB(t))
	records, err := payrollRepo.ListRecordsByWeek(ctx, canonicalID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	byEmployee := map[string]payroll.PayrollRecord{}
	for _, rec := range records {
		byEmployee[rec.EmployeeID] = rec
	}
	assert.Equal(t, keeperID, byEmployee[employeeA].ID)
	assert.Equal(t, movedID, byEmployee[employeeB].ID)

	weekRepo := postgresql.NewWeekRepository(testDB(t))
	_, err = weekRepo.GetByID(ctx, badID)
	assert.Error(t, err)
}

func TestReconcile_DeduplicateWeeks(t *testing.T) {
	ctx := context.Background()
	truncateAll(t, ctx)
	svc := newReconcileService(t)

	// Two rows claim the same Monday under different identities; dedup
	// keeps the older row.
	keeperID := insertWeekRaw(t, ctx, 2025, 40, "2025-10-13", "2025-10-19", "Semana 40 2025 (Octubre)")
	dupID := insertWeekRaw(t, ctx, 2025, 41, "2025-10-13", "2025-10-19", "Semana 41 2025 (Octubre)")

	employeeID := uuid.NewString()
	recordID := insertRecordRaw(t, ctx, employeeID, dupID, 500)

	report, err := svc.DeduplicateWeeks(ctx, "tester")
	require.NoError(t, err)
	assert.Equal(t, 1, report.WeeksDeduped)
	assert.Equal(t, int64(1), report.RecordsMoved)
	assert.Empty(t, report.Failures)

	payrollRepo := postgresql.NewPayrollRepository(testDB(t))
	rec, err := payrollRepo.GetRecordByID(ctx, recordID)
	require.NoError(t, err)
	assert.Equal(t, keeperID, rec.WeekID)
}

func TestReconcile_RunFixesEverything(t *testing.T) {
	ctx := context.Background()
	truncateAll(t, ctx)
	svc := newReconcileService(t)

	insertWeekRaw(t, ctx, 2025, 40, "2025-10-13", "2025-10-19", "Semana 40 2025 (Octubre)")
	insertWeekRaw(t, ctx, 2024, 10, "2024-03-04", "2024-03-10", "Semana 10 2024 (Marzo)")

	report, err := svc.Run(ctx, "tester")
	require.NoError(t, err)
	assert.Equal(t, 2, report.WeeksScanned)
	assert.Len(t, report.Discrepancies, 1)
	assert.Equal(t, 1, report.WeeksRepaired)
	assert.Empty(t, report.Failures)

	// A second pass finds nothing left to fix.
	report, err = svc.Run(ctx, "tester")
	require.NoError(t, err)
	assert.Empty(t, report.Discrepancies)
	assert.Equal(t, 0, report.WeeksRepaired)
}
