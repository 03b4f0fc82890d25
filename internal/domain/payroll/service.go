package payroll

import "context"

// PayrollService covers the weekly pay cycle: entering what an employee
// worked, paying in full or in parts, and tracking the debt that a partial
// payment leaves behind.
type PayrollService interface {
	UpsertRecord(ctx context.Context, req UpsertRecordRequest, actorID string) (RecordResponse, error)
	GetRecord(ctx context.Context, id string) (RecordResponse, error)
	ListRecords(ctx context.Context, filter RecordFilter) (ListRecordsResponse, error)
	Snapshot(ctx context.Context, id string) (SnapshotResponse, error)
	WeekTotals(ctx context.Context, weekID string) (WeekTotals, error)

	MarkPaid(ctx context.Context, recordID, actorID string) (RecordResponse, error)
	RegisterPartialPayment(ctx context.Context, req PartialPaymentRequest, actorID string) (RecordResponse, error)
	ChangeState(ctx context.Context, req ChangeStateRequest, actorID string) (RecordResponse, error)

	ListDebts(ctx context.Context, filter DebtFilter) ([]DebtResponse, error)
	SettleDebt(ctx context.Context, req SettleDebtRequest, actorID string) (DebtResponse, error)
}
