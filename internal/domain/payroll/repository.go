package payroll

import (
	"context"

	"github.com/shopspring/decimal"
)

// PayrollRepository defines data access methods for payroll and debt records.
// Upsert relies on the (employee_id, week_id) unique constraint; concurrent
// writers resolve to a single row via ON CONFLICT rather than read-then-write.
type PayrollRepository interface {
	// Records
	UpsertRecord(ctx context.Context, rec PayrollRecord) (PayrollRecord, error)
	GetRecordByID(ctx context.Context, id string) (PayrollRecord, error)
	GetRecordByEmployeeWeek(ctx context.Context, employeeID, weekID string) (PayrollRecord, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]PayrollRecord, int64, error)
	ListRecordsByWeek(ctx context.Context, weekID string) ([]PayrollRecord, error)
	UpdatePayment(ctx context.Context, id string, state PaymentState, isPartial bool, amountPaid, amountOwed decimal.Decimal) error
	UpdateState(ctx context.Context, id string, state PaymentState) error
	WeekTotals(ctx context.Context, weekID string) (WeekTotals, error)

	// Debts
	UpsertDebt(ctx context.Context, debt DebtRecord) (DebtRecord, error)
	GetDebtByID(ctx context.Context, id string) (DebtRecord, error)
	GetDebtByRecordID(ctx context.Context, recordID string) (DebtRecord, error)
	ListDebts(ctx context.Context, filter DebtFilter) ([]DebtRecord, error)
	UpdateDebt(ctx context.Context, debt DebtRecord) error

	// Reconciliation
	ReassignWeek(ctx context.Context, fromWeekID, toWeekID string) (int64, error)
	CountByWeek(ctx context.Context, weekID string) (int64, error)
	DuplicateRecordGroups(ctx context.Context) ([][]PayrollRecord, error)
	DeleteRecord(ctx context.Context, id string) error
}
