package postgresql_test

import (
	"context"
	"testing"

	"github.com/construtek/nomina-backend-go/internal/domain/payroll"
	"github.com/construtek/nomina-backend-go/internal/domain/week"
	"github.com/construtek/nomina-backend-go/internal/repository/postgresql"
	payrollService "github.com/construtek/nomina-backend-go/internal/service/payroll"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPayrollService(t *testing.T) (payroll.PayrollService, week.WeekService) {
	conn := testDB(t)
	weekSvc := newWeekService(t)
	payrollRepo := postgresql.NewPayrollRepository(conn)
	auditRepo := postgresql.NewAuditRepository(conn)
	return payrollService.NewPayrollService(conn, payrollRepo, weekSvc, auditRepo), weekSvc
}

func upsertRequest(employeeID string) payroll.UpsertRecordRequest {
	return payroll.UpsertRecordRequest{
		EmployeeID: employeeID,
		Date:       "2025-10-15",
		DaysWorked: 6,
		DailyRate:  decimal.NewFromInt(600),
	}
}

func TestPayrollService_UpsertRecord(t *testing.T) {
	ctx := context.Background()
	truncateAll(t, ctx)
	svc, _ := newPayrollService(t)
	employeeID := uuid.NewString()

	rec, err := svc.UpsertRecord(ctx, upsertRequest(employeeID), "tester")
	require.NoError(t, err)
	assert.True(t, rec.TotalAmount.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, "draft", rec.PaymentState)
	assert.True(t, rec.AmountOwed.Equal(decimal.NewFromInt(600)))
	require.NotNil(t, rec.ISOWeek)
	assert.Equal(t, 42, *rec.ISOWeek)

	// Same employee and week: the row is replaced, not duplicated.
	req := upsertRequest(employeeID)
	req.DaysWorked = 4
	req.BonusAmount = decimal.NewFromInt(50)
	updated, err := svc.UpsertRecord(ctx, req, "tester")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, updated.ID)
	assert.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(450)))

	list, err := svc.ListRecords(ctx, payroll.RecordFilter{EmployeeID: &employeeID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.TotalCount)
}

func TestPayrollService_UpsertRecord_ManualTotalCapped(t *testing.T) {
	ctx := context.Background()
	truncateAll(t, ctx)
	svc, _ := newPayrollService(t)

	req := upsertRequest(uuid.NewString())
	over := decimal.NewFromInt(900)
	req.ManualTotal = &over
	_, err := svc.UpsertRecord(ctx, req, "tester")
	assert.ErrorIs(t, err, payroll.ErrInvalidAmount)

	req = upsertRequest(uuid.NewString())
	lower := decimal.NewFromInt(400)
	req.ManualTotal = &lower
	rec, err := svc.UpsertRecord(ctx, req, "tester")
	require.NoError(t, err)
	assert.True(t, rec.TotalAmount.Equal(lower))
}

func TestPayrollService_UpsertRecord_ClosedWeek(t *testing.T) {
	ctx := context.Background()
	truncateAll(t, ctx)
	svc, weekSvc := newPayrollService(t)
	employeeID := uuid.NewString()

	rec, err := svc.UpsertRecord(ctx, upsertRequest(employeeID), "tester")
	require.NoError(t, err)

	_, err = weekSvc.Transition(ctx, week.TransitionWeekRequest{ID: rec.WeekID, State: "closed"}, "tester")
	require.NoError(t, err)

	_, err = svc.UpsertRecord(ctx, upsertRequest(employeeID), "tester")
	assert.ErrorIs(t, err, payroll.ErrWeekClosed)
}

func TestPayrollService_ClosedWeekBlocksPaymentMutations(t *testing.T) {
	ctx := context.Background()
	truncateAll(t, ctx)
	svc, weekSvc := newPayrollService(t)
	employeeID := uuid.NewString()

	rec, err := svc.UpsertRecord(ctx, upsertRequest(employeeID), "tester")
	require.NoError(t, err)

	_, err = svc.RegisterPartialPayment(ctx, payroll.PartialPaymentRequest{
		RecordID: rec.ID,
		Amount:   decimal.NewFromInt(200),
	}, "tester")
	require.NoError(t, err)

	debts, err := svc.ListDebts(ctx, payroll.DebtFilter{EmployeeID: &employeeID})
	require.NoError(t, err)
	require.Len(t, debts, 1)

	_, err = weekSvc.Transition(ctx, week.TransitionWeekRequest{ID: rec.WeekID, State: "closed"}, "tester")
	require.NoError(t, err)

	_, err = svc.MarkPaid(ctx, rec.ID, "tester")
	assert.ErrorIs(t, err, payroll.ErrWeekClosed)

	_, err = svc.RegisterPartialPayment(ctx, payroll.PartialPaymentRequest{
		RecordID: rec.ID,
		Amount:   decimal.NewFromInt(100),
	}, "tester")
	assert.ErrorIs(t, err, payroll.ErrWeekClosed)

	_, err = svc.ChangeState(ctx, payroll.ChangeStateRequest{RecordID: rec.ID, State: "approved"}, "tester")
	assert.ErrorIs(t, err, payroll.ErrWeekClosed)

	_, err = svc.SettleDebt(ctx, payroll.SettleDebtRequest{DebtID: debts[0].ID, Amount: decimal.NewFromInt(100)}, "tester")
	assert.ErrorIs(t, err, payroll.ErrWeekClosed)

	// Reads stay available on a closed week.
	got, err := svc.GetRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.AmountPaid.Equal(decimal.NewFromInt(200)))
	assert.True(t, got.AmountOwed.Equal(decimal.NewFromInt(400)))
}

func TestPayrollService_EditPartiallyPaidRecord(t *testing.T) {
	ctx := context.Background()
	truncateAll(t, ctx)
	svc, _ := newPayrollService(t)
	employeeID := uuid.NewString()

	rec, err := svc.UpsertRecord(ctx, upsertRequest(employeeID), "tester")
	require.NoError(t, err)

	_, err = svc.RegisterPartialPayment(ctx, payroll.PartialPaymentRequest{
		RecordID: rec.ID,
		Amount:   decimal.NewFromInt(500),
	}, "tester")
	require.NoError(t, err)

	// Shrinking the total below what was already paid out is rejected and
	// the record keeps its amounts.
	req := upsertRequest(employeeID)
	req.DaysWorked = 3
	_, err = svc.UpsertRecord(ctx, req, "tester")
	assert.ErrorIs(t, err, payroll.ErrInvalidAmount)

	kept, err := svc.GetRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, kept.TotalAmount.Equal(decimal.NewFromInt(600)))
	assert.True(t, kept.AmountPaid.Equal(decimal.NewFromInt(500)))
	assert.True(t, kept.AmountOwed.Equal(decimal.NewFromInt(100)))

	// A valid edit recomputes the remainder and keeps the debt in line.
	// Five days at the same rate lands exactly on what was paid, so the
	// record and its debt settle.
	req = upsertRequest(employeeID)
	req.DaysWorked = 5
	updated, err := svc.UpsertRecord(ctx, req, "tester")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, updated.ID)
	assert.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(500)))
	assert.True(t, updated.AmountOwed.IsZero())
	assert.Equal(t, "paid", updated.PaymentState)
	assert.False(t, updated.IsPartialPayment)

	debts, err := svc.ListDebts(ctx, payroll.DebtFilter{EmployeeID: &employeeID})
	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Equal(t, "settled", debts[0].State)
	assert.True(t, debts[0].OriginalAmount.Equal(decimal.NewFromInt(500)))
	assert.True(t, debts[0].AmountPending.IsZero())
	assert.NotNil(t, debts[0].SettledAt)
}

func TestPayrollService_PartialPaymentLifecycle(t *testing.T) {
	ctx := context.Background()
	truncateAll(t, ctx)
	svc, _ := newPayrollService(t)
	employeeID := uuid.NewString()

	rec, err := svc.UpsertRecord(ctx, upsertRequest(employeeID), "tester")
	require.NoError(t, err)

	// A partial payment must be strictly below the record total.
	_, err = svc.RegisterPartialPayment(ctx, payroll.PartialPaymentRequest{
		RecordID: rec.ID,
		Amount:   decimal.NewFromInt(600),
	}, "tester")
	assert.ErrorIs(t, err, payroll.ErrInvalidAmount)

	paid, err := svc.RegisterPartialPayment(ctx, payroll.PartialPaymentRequest{
		RecordID: rec.ID,
		Amount:   decimal.NewFromInt(200),
	}, "tester")
	require.NoError(t, err)
	assert.Equal(t, "pending", paid.PaymentState)
	assert.True(t, paid.IsPartialPayment)
	assert.True(t, paid.AmountPaid.Equal(decimal.NewFromInt(200)))
	assert.True(t, paid.AmountOwed.Equal(decimal.NewFromInt(400)))

	debts, err := svc.ListDebts(ctx, payroll.DebtFilter{EmployeeID: &employeeID})
	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Equal(t, "partial", debts[0].State)
	assert.True(t, debts[0].AmountPending.Equal(decimal.NewFromInt(400)))

	// Paying more than what is owed is rejected.
	_, err = svc.RegisterPartialPayment(ctx, payroll.PartialPaymentRequest{
		RecordID: rec.ID,
		Amount:   decimal.NewFromInt(500),
	}, "tester")
	assert.ErrorIs(t, err, payroll.ErrInvalidAmount)

	// Paying the exact remainder settles everything.
	paid, err = svc.RegisterPartialPayment(ctx, payroll.PartialPaymentRequest{
		RecordID: rec.ID,
		Amount:   decimal.NewFromInt(400),
	}, "tester")
	require.NoError(t, err)
	assert.Equal(t, "paid", paid.PaymentState)
	assert.False(t, paid.IsPartialPayment)
	assert.True(t, paid.AmountOwed.IsZero())

	debts, err = svc.ListDebts(ctx, payroll.DebtFilter{EmployeeID: &employeeID})
	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Equal(t, "settled", debts[0].State)
	assert.NotNil(t, debts[0].SettledAt)
}

func TestPayrollService_MarkPaid_SettlesDebt(t *testing.T) {
	ctx := context.Background()
	truncateAll(t, ctx)
	svc, _ := newPayrollService(t)
	employeeID := uuid.NewString()

	rec, err := svc.UpsertRecord(ctx, upsertRequest(employeeID), "tester")
	require.NoError(t, err)

	_, err = svc.RegisterPartialPayment(ctx, payroll.PartialPaymentRequest{
		RecordID: rec.ID,
		Amount:   decimal.NewFromInt(100),
	}, "tester")
	require.NoError(t, err)

	paid, err := svc.MarkPaid(ctx, rec.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, "paid", paid.PaymentState)
	assert.True(t, paid.AmountPaid.Equal(decimal.NewFromInt(600)))
	assert.True(t, paid.AmountOwed.IsZero())

	debts, err := svc.ListDebts(ctx, payroll.DebtFilter{EmployeeID: &employeeID})
	require.NoError(t, err)
	require.Len(t, debts, 1)
	assert.Equal(t, "settled", debts[0].State)

	// Idempotent: paying again changes nothing.
	again, err := svc.MarkPaid(ctx, rec.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, "paid", again.PaymentState)
	assert.True(t, again.AmountPaid.Equal(decimal.NewFromInt(600)))
}

func TestPayrollService_SettleDebt(t *testing.T) {
	ctx := context.Background()
	truncateAll(t, ctx)
	svc, _ := newPayrollService(t)
	employeeID := uuid.NewString()

	rec, err := svc.UpsertRecord(ctx, upsertRequest(employeeID), "tester")
	require.NoError(t, err)

	_, err = svc.RegisterPartialPayment(ctx, payroll.PartialPaymentRequest{
		RecordID: rec.ID,
		Amount:   decimal.NewFromInt(250),
	}, "tester")
	require.NoError(t, err)

	debts, err := svc.ListDebts(ctx, payroll.DebtFilter{EmployeeID: &employeeID})
	require.NoError(t, err)
	require.Len(t, debts, 1)

	_, err = svc.SettleDebt(ctx, payroll.SettleDebtRequest{
		DebtID: debts[0].ID,
		Amount: decimal.NewFromInt(999),
	}, "tester")
	assert.ErrorIs(t, err, payroll.ErrInvalidAmount)

	settled, err := svc.SettleDebt(ctx, payroll.SettleDebtRequest{
		DebtID: debts[0].ID,
		Amount: decimal.NewFromInt(350),
	}, "tester")
	require.NoError(t, err)
	assert.Equal(t, "settled", settled.State)
	assert.True(t, settled.AmountPending.IsZero())

	// The payroll record mirrors the settlement.
	updated, err := svc.GetRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "paid", updated.PaymentState)
	assert.True(t, updated.AmountOwed.IsZero())

	_, err = svc.SettleDebt(ctx, payroll.SettleDebtRequest{
		DebtID: debts[0].ID,
		Amount: decimal.NewFromInt(1),
	}, "tester")
	assert.ErrorIs(t, err, payroll.ErrDebtAlreadySettled)
}

func TestPayrollService_WeekTotals(t *testing.T) {
	ctx := context.Background()
	truncateAll(t, ctx)
	svc, _ := newPayrollService(t)

	recA, err := svc.UpsertRecord(ctx, upsertRequest(uuid.NewString()), "tester")
	require.NoError(t, err)

	reqB := upsertRequest(uuid.NewString())
	reqB.DaysWorked = 3
	_, err = svc.UpsertRecord(ctx, reqB, "tester")
	require.NoError(t, err)

	_, err = svc.MarkPaid(ctx, recA.ID, "tester")
	require.NoError(t, err)

	totals, err := svc.WeekTotals(ctx, recA.WeekID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.RecordCount)
	assert.True(t, totals.TotalAmount.Equal(decimal.NewFromInt(900)))
	assert.True(t, totals.TotalPaid.Equal(decimal.NewFromInt(600)))
	assert.True(t, totals.TotalOwed.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, int64(1), totals.PaidCount)
}
