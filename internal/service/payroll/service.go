package payroll

import (
	"context"
	"errors"
	"time"

	"github.com/construtek/nomina-backend-go/internal/domain/audit"
	"github.com/construtek/nomina-backend-go/internal/domain/payroll"
	"github.com/construtek/nomina-backend-go/internal/domain/week"
	"github.com/construtek/nomina-backend-go/internal/pkg/database"
	"github.com/construtek/nomina-backend-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
)

type PayrollServiceImpl struct {
	db          *database.DB
	payrollRepo payroll.PayrollRepository
	weekService week.WeekService
	auditRepo   audit.AuditRepository
}

func NewPayrollService(
	db *database.DB,
	payrollRepo payroll.PayrollRepository,
	weekService week.WeekService,
	auditRepo audit.AuditRepository,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		db:          db,
		payrollRepo: payrollRepo,
		weekService: weekService,
		auditRepo:   auditRepo,
	}
}

// ========== RECORDS ==========

func (s *PayrollServiceImpl) UpsertRecord(ctx context.Context, req payroll.UpsertRecordRequest, actorID string) (payroll.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RecordResponse{}, err
	}

	date, _ := time.Parse("2006-01-02", req.Date)

	w, err := s.weekService.GetOrCreate(ctx, date)
	if err != nil {
		return payroll.RecordResponse{}, err
	}
	if w.State == week.WeekStateClosed {
		return payroll.RecordResponse{}, payroll.ErrWeekClosed
	}

	deductions := req.Deductions.ToDeductions()
	total := payroll.ComputeTotal(req.DailyRate, req.DaysWorked, req.OvertimeAmount, req.BonusAmount, deductions)
	if req.ManualTotal != nil {
		// Manual override can only lower the amount, never inflate it.
		if req.ManualTotal.GreaterThan(total) {
			return payroll.RecordResponse{}, payroll.ErrInvalidAmount
		}
		total = req.ManualTotal.Round(2)
	}

	var saved payroll.PayrollRecord
	err = postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		before, err := s.payrollRepo.GetRecordByEmployeeWeek(txCtx, req.EmployeeID, w.ID)
		isNew := errors.Is(err, payroll.ErrRecordNotFound)
		if err != nil && !isNew {
			return err
		}

		// An edit may not shrink the total below what was already paid out.
		if !isNew && total.LessThan(before.AmountPaid) {
			return payroll.ErrInvalidAmount
		}

		saved, err = s.payrollRepo.UpsertRecord(txCtx, payroll.PayrollRecord{
			EmployeeID:     req.EmployeeID,
			WeekID:         w.ID,
			DaysWorked:     req.DaysWorked,
			DailyRate:      req.DailyRate,
			OvertimeAmount: req.OvertimeAmount,
			BonusAmount:    req.BonusAmount,
			Deductions:     deductions,
			TotalAmount:    total,
			PaymentState:   payroll.PaymentStateDraft,
		})
		if err != nil {
			return err
		}

		if !isNew && before.AmountPaid.IsPositive() {
			if err := s.syncAfterEdit(txCtx, &saved); err != nil {
				return err
			}
		}

		action := "update"
		var beforeState interface{}
		if isNew {
			action = "create"
		} else {
			beforeState = before
		}

		entry := audit.NewEntry("payroll_record", saved.ID, action, actorID, beforeState, saved)
		return s.auditRepo.Append(txCtx, entry)
	})
	if err != nil {
		return payroll.RecordResponse{}, err
	}

	saved.WeekLabel = &w.Label
	saved.ISOYear = &w.ISOYear
	saved.ISOWeek = &w.ISOWeek

	return toRecordResponse(saved), nil
}

func (s *PayrollServiceImpl) GetRecord(ctx context.Context, id string) (payroll.RecordResponse, error) {
	rec, err := s.payrollRepo.GetRecordByID(ctx, id)
	if err != nil {
		return payroll.RecordResponse{}, err
	}
	return toRecordResponse(rec), nil
}

func (s *PayrollServiceImpl) ListRecords(ctx context.Context, filter payroll.RecordFilter) (payroll.ListRecordsResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	records, totalCount, err := s.payrollRepo.ListRecords(ctx, filter)
	if err != nil {
		return payroll.ListRecordsResponse{}, err
	}

	data := make([]payroll.RecordResponse, 0, len(records))
	for _, rec := range records {
		data = append(data, toRecordResponse(rec))
	}

	return payroll.ListRecordsResponse{
		Data:       data,
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *PayrollServiceImpl) Snapshot(ctx context.Context, id string) (payroll.SnapshotResponse, error) {
	rec, err := s.payrollRepo.GetRecordByID(ctx, id)
	if err != nil {
		return payroll.SnapshotResponse{}, err
	}

	weekLabel := ""
	if rec.WeekLabel != nil {
		weekLabel = *rec.WeekLabel
	}

	return payroll.SnapshotResponse{
		RecordID:         rec.ID,
		EmployeeID:       rec.EmployeeID,
		WeekLabel:        weekLabel,
		DaysWorked:       rec.DaysWorked,
		DailyRate:        rec.DailyRate,
		OvertimeAmount:   rec.OvertimeAmount,
		BonusAmount:      rec.BonusAmount,
		Deductions:       toDeductionsPayload(rec.Deductions),
		TotalAmount:      rec.TotalAmount,
		PaymentState:     string(rec.PaymentState),
		AmountPaid:       rec.AmountPaid,
		AmountOwed:       rec.AmountOwed,
		IsPartialPayment: rec.IsPartialPayment,
	}, nil
}

func (s *PayrollServiceImpl) WeekTotals(ctx context.Context, weekID string) (payroll.WeekTotals, error) {
	if _, err := s.weekService.GetByID(ctx, weekID); err != nil {
		return payroll.WeekTotals{}, err
	}
	return s.payrollRepo.WeekTotals(ctx, weekID)
}

// ========== PAYMENTS ==========

// MarkPaid settles a record in full. Calling it on an already paid record is
// a no-op; the full amount moves to AmountPaid and any companion debt is
// settled in the same transaction.
func (s *PayrollServiceImpl) MarkPaid(ctx context.Context, recordID, actorID string) (payroll.RecordResponse, error) {
	var updated payroll.PayrollRecord
	err := postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		rec, err := s.payrollRepo.GetRecordByID(txCtx, recordID)
		if err != nil {
			return err
		}
		if err := s.ensureWeekOpen(txCtx, rec.WeekID); err != nil {
			return err
		}

		if rec.PaymentState == payroll.PaymentStatePaid && rec.AmountOwed.IsZero() {
			updated = rec
			return nil
		}

		if err := s.payrollRepo.UpdatePayment(txCtx, rec.ID, payroll.PaymentStatePaid, false, rec.TotalAmount, decimal.Zero); err != nil {
			return err
		}

		if err := s.settleDebtForRecord(txCtx, rec, actorID); err != nil {
			return err
		}

		updated = rec
		updated.PaymentState = payroll.PaymentStatePaid
		updated.IsPartialPayment = false
		updated.AmountPaid = rec.TotalAmount
		updated.AmountOwed = decimal.Zero

		entry := audit.NewEntry("payroll_record", rec.ID, "pay", actorID, rec, updated)
		return s.auditRepo.Append(txCtx, entry)
	})
	if err != nil {
		return payroll.RecordResponse{}, err
	}

	return toRecordResponse(updated), nil
}

// RegisterPartialPayment pays part of a record and books the remainder as a
// debt. Cumulative payments may never exceed the total; reaching it exactly
// settles the record as paid.
func (s *PayrollServiceImpl) RegisterPartialPayment(ctx context.Context, req payroll.PartialPaymentRequest, actorID string) (payroll.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RecordResponse{}, err
	}

	var updated payroll.PayrollRecord
	err := postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		rec, err := s.payrollRepo.GetRecordByID(txCtx, req.RecordID)
		if err != nil {
			return err
		}
		if err := s.ensureWeekOpen(txCtx, rec.WeekID); err != nil {
			return err
		}

		// A single partial payment must be strictly inside (0, total); the
		// running sum may reach the total exactly, which settles the record.
		if req.Amount.GreaterThanOrEqual(rec.TotalAmount) {
			return payroll.ErrInvalidAmount
		}
		newPaid := rec.AmountPaid.Add(req.Amount)
		if newPaid.GreaterThan(rec.TotalAmount) {
			return payroll.ErrInvalidAmount
		}
		newOwed := rec.TotalAmount.Sub(newPaid)

		state := payroll.PaymentStatePending
		isPartial := true
		if newOwed.IsZero() {
			state = payroll.PaymentStatePaid
			isPartial = false
		}

		if err := s.payrollRepo.UpdatePayment(txCtx, rec.ID, state, isPartial, newPaid, newOwed); err != nil {
			return err
		}

		debtState := payroll.DebtStatePartial
		var settledAt *time.Time
		if newOwed.IsZero() {
			debtState = payroll.DebtStateSettled
			now := time.Now().UTC()
			settledAt = &now
		}
		if _, err := s.payrollRepo.UpsertDebt(txCtx, payroll.DebtRecord{
			PayrollRecordID: rec.ID,
			EmployeeID:      rec.EmployeeID,
			OriginalAmount:  rec.TotalAmount,
			AmountPaid:      newPaid,
			AmountPending:   newOwed,
			State:           debtState,
			SettledAt:       settledAt,
			Notes:           req.Notes,
		}); err != nil {
			return err
		}

		updated = rec
		updated.PaymentState = state
		updated.IsPartialPayment = isPartial
		updated.AmountPaid = newPaid
		updated.AmountOwed = newOwed

		entry := audit.NewEntry("payroll_record", rec.ID, "partial_payment", actorID, rec, updated)
		return s.auditRepo.Append(txCtx, entry)
	})
	if err != nil {
		return payroll.RecordResponse{}, err
	}

	return toRecordResponse(updated), nil
}

func (s *PayrollServiceImpl) ChangeState(ctx context.Context, req payroll.ChangeStateRequest, actorID string) (payroll.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.RecordResponse{}, err
	}

	var updated payroll.PayrollRecord
	err := postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		rec, err := s.payrollRepo.GetRecordByID(txCtx, req.RecordID)
		if err != nil {
			return err
		}
		if err := s.ensureWeekOpen(txCtx, rec.WeekID); err != nil {
			return err
		}

		next := payroll.PaymentState(req.State)
		if rec.PaymentState == next {
			updated = rec
			return nil
		}

		if err := s.payrollRepo.UpdateState(txCtx, rec.ID, next); err != nil {
			return err
		}

		updated = rec
		updated.PaymentState = next

		entry := audit.NewEntry("payroll_record", rec.ID, "state_change", actorID, rec, updated)
		return s.auditRepo.Append(txCtx, entry)
	})
	if err != nil {
		return payroll.RecordResponse{}, err
	}

	return toRecordResponse(updated), nil
}

// ========== DEBTS ==========

func (s *PayrollServiceImpl) ListDebts(ctx context.Context, filter payroll.DebtFilter) ([]payroll.DebtResponse, error) {
	debts, err := s.payrollRepo.ListDebts(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]payroll.DebtResponse, 0, len(debts))
	for _, d := range debts {
		responses = append(responses, toDebtResponse(d))
	}
	return responses, nil
}

// SettleDebt applies a payment against an outstanding debt and mirrors it
// onto the payroll record, so record and debt never disagree on what was
// paid.
func (s *PayrollServiceImpl) SettleDebt(ctx context.Context, req payroll.SettleDebtRequest, actorID string) (payroll.DebtResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.DebtResponse{}, err
	}

	var updated payroll.DebtRecord
	err := postgresql.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		debt, err := s.payrollRepo.GetDebtByID(txCtx, req.DebtID)
		if err != nil {
			return err
		}
		rec, err := s.payrollRepo.GetRecordByID(txCtx, debt.PayrollRecordID)
		if err != nil {
			return err
		}
		if err := s.ensureWeekOpen(txCtx, rec.WeekID); err != nil {
			return err
		}
		if debt.State == payroll.DebtStateSettled {
			return payroll.ErrDebtAlreadySettled
		}
		if req.Amount.GreaterThan(debt.AmountPending) {
			return payroll.ErrInvalidAmount
		}

		updated = debt
		updated.AmountPaid = debt.AmountPaid.Add(req.Amount)
		updated.AmountPending = debt.AmountPending.Sub(req.Amount)
		if req.Notes != nil {
			updated.Notes = req.Notes
		}
		if updated.AmountPending.IsZero() {
			updated.State = payroll.DebtStateSettled
			now := time.Now().UTC()
			updated.SettledAt = &now
		} else {
			updated.State = payroll.DebtStatePartial
		}

		if err := s.payrollRepo.UpdateDebt(txCtx, updated); err != nil {
			return err
		}

		recState := payroll.PaymentStatePending
		recPartial := true
		if updated.AmountPending.IsZero() {
			recState = payroll.PaymentStatePaid
			recPartial = false
		}
		if err := s.payrollRepo.UpdatePayment(txCtx, rec.ID, recState, recPartial, updated.AmountPaid, updated.AmountPending); err != nil {
			return err
		}

		entry := audit.NewEntry("debt_record", debt.ID, "settle", actorID, debt, updated)
		return s.auditRepo.Append(txCtx, entry)
	})
	if err != nil {
		return payroll.DebtResponse{}, err
	}

	return toDebtResponse(updated), nil
}

// ensureWeekOpen rejects mutations on records whose week is closed. A closed
// week is terminal: records on it can only be read.
func (s *PayrollServiceImpl) ensureWeekOpen(ctx context.Context, weekID string) error {
	w, err := s.weekService.GetByID(ctx, weekID)
	if err != nil {
		return err
	}
	if w.State == string(week.WeekStateClosed) {
		return payroll.ErrWeekClosed
	}
	return nil
}

// syncAfterEdit realigns a partially-paid record and its companion debt after
// an edit changed the total. When the new total matches what was already paid
// the record settles as paid; otherwise the debt tracks the new remainder.
func (s *PayrollServiceImpl) syncAfterEdit(ctx context.Context, rec *payroll.PayrollRecord) error {
	if rec.AmountOwed.IsZero() {
		rec.PaymentState = payroll.PaymentStatePaid
		rec.IsPartialPayment = false
		if err := s.payrollRepo.UpdatePayment(ctx, rec.ID, rec.PaymentState, false, rec.AmountPaid, rec.AmountOwed); err != nil {
			return err
		}
	}

	debt, err := s.payrollRepo.GetDebtByRecordID(ctx, rec.ID)
	if err != nil {
		if errors.Is(err, payroll.ErrDebtNotFound) {
			return nil
		}
		return err
	}

	updated := debt
	updated.OriginalAmount = rec.TotalAmount
	updated.AmountPaid = rec.AmountPaid
	updated.AmountPending = rec.AmountOwed
	if updated.AmountPending.IsZero() {
		updated.State = payroll.DebtStateSettled
		if updated.SettledAt == nil {
			now := time.Now().UTC()
			updated.SettledAt = &now
		}
	} else {
		updated.State = payroll.DebtStatePartial
		updated.SettledAt = nil
	}
	return s.payrollRepo.UpdateDebt(ctx, updated)
}

// settleDebtForRecord closes out a record's companion debt, if any.
func (s *PayrollServiceImpl) settleDebtForRecord(ctx context.Context, rec payroll.PayrollRecord, actorID string) error {
	debt, err := s.payrollRepo.GetDebtByRecordID(ctx, rec.ID)
	if err != nil {
		if errors.Is(err, payroll.ErrDebtNotFound) {
			return nil
		}
		return err
	}
	if debt.State == payroll.DebtStateSettled {
		return nil
	}

	updated := debt
	updated.AmountPaid = debt.OriginalAmount
	updated.AmountPending = decimal.Zero
	updated.State = payroll.DebtStateSettled
	now := time.Now().UTC()
	updated.SettledAt = &now

	if err := s.payrollRepo.UpdateDebt(ctx, updated); err != nil {
		return err
	}

	entry := audit.NewEntry("debt_record", debt.ID, "settle", actorID, debt, updated)
	return s.auditRepo.Append(ctx, entry)
}

// ========== MAPPERS ==========

func toDeductionsPayload(d payroll.Deductions) payroll.DeductionsPayload {
	return payroll.DeductionsPayload{
		Tax:            d.Tax,
		SocialSecurity: d.SocialSecurity,
		Housing:        d.Housing,
		Advance:        d.Advance,
		Other:          d.Other,
	}
}

func toRecordResponse(rec payroll.PayrollRecord) payroll.RecordResponse {
	return payroll.RecordResponse{
		ID:               rec.ID,
		EmployeeID:       rec.EmployeeID,
		WeekID:           rec.WeekID,
		WeekLabel:        rec.WeekLabel,
		ISOYear:          rec.ISOYear,
		ISOWeek:          rec.ISOWeek,
		DaysWorked:       rec.DaysWorked,
		DailyRate:        rec.DailyRate,
		OvertimeAmount:   rec.OvertimeAmount,
		BonusAmount:      rec.BonusAmount,
		Deductions:       toDeductionsPayload(rec.Deductions),
		TotalAmount:      rec.TotalAmount,
		PaymentState:     string(rec.PaymentState),
		IsPartialPayment: rec.IsPartialPayment,
		AmountPaid:       rec.AmountPaid,
		AmountOwed:       rec.AmountOwed,
	}
}

func toDebtResponse(d payroll.DebtRecord) payroll.DebtResponse {
	var settledAt *string
	if d.SettledAt != nil {
		s := d.SettledAt.UTC().Format(time.RFC3339)
		settledAt = &s
	}
	return payroll.DebtResponse{
		ID:              d.ID,
		PayrollRecordID: d.PayrollRecordID,
		EmployeeID:      d.EmployeeID,
		OriginalAmount:  d.OriginalAmount,
		AmountPaid:      d.AmountPaid,
		AmountPending:   d.AmountPending,
		State:           string(d.State),
		SettledAt:       settledAt,
		Notes:           d.Notes,
	}
}
