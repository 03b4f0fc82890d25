package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentState enum. The source workflows treat this as a free-form status
// label, so any-to-any transitions are allowed; every change is audited.
type PaymentState string

const (
	PaymentStateDraft      PaymentState = "draft"
	PaymentStatePending    PaymentState = "pending"
	PaymentStateInProgress PaymentState = "in_progress"
	PaymentStateApproved   PaymentState = "approved"
	PaymentStatePaid       PaymentState = "paid"
	PaymentStateCancelled  PaymentState = "cancelled"
)

var paymentStates = []PaymentState{
	PaymentStateDraft, PaymentStatePending, PaymentStateInProgress,
	PaymentStateApproved, PaymentStatePaid, PaymentStateCancelled,
}

func (s PaymentState) IsValid() bool {
	for _, st := range paymentStates {
		if s == st {
			return true
		}
	}
	return false
}

// PaymentStateNames lists the valid payment states as plain strings, for
// query-parameter filter validation.
func PaymentStateNames() []string {
	names := make([]string, len(paymentStates))
	for i, s := range paymentStates {
		names[i] = string(s)
	}
	return names
}

// Deductions - Weekly deduction breakdown. Zero means not applied,
// a positive amount means applied for that amount.
type Deductions struct {
	Tax            decimal.Decimal
	SocialSecurity decimal.Decimal
	Housing        decimal.Decimal
	Advance        decimal.Decimal
	Other          decimal.Decimal
}

func (d Deductions) Total() decimal.Decimal {
	return d.Tax.Add(d.SocialSecurity).Add(d.Housing).Add(d.Advance).Add(d.Other)
}

// Crews are contracted on a six-day week; the per-day amount is the
// contracted rate divided by 6.
var sixDayWeek = decimal.NewFromInt(6)

// ComputeTotal derives the full weekly amount:
// (dailyRate/6)*daysWorked + overtime + bonus - deductions.
func ComputeTotal(dailyRate decimal.Decimal, daysWorked int, overtime, bonus decimal.Decimal, deductions Deductions) decimal.Decimal {
	base := dailyRate.Div(sixDayWeek).Mul(decimal.NewFromInt(int64(daysWorked)))
	return base.Add(overtime).Add(bonus).Sub(deductions.Total()).Round(2)
}

// PayrollRecord - Per-employee weekly payroll entry. At most one record per
// (EmployeeID, WeekID) pair. AmountPaid + AmountOwed always equals TotalAmount.
type PayrollRecord struct {
	ID               string
	EmployeeID       string
	WeekID           string
	DaysWorked       int
	DailyRate        decimal.Decimal // six-day weekly wage snapshot taken at record creation
	OvertimeAmount   decimal.Decimal
	BonusAmount      decimal.Decimal
	Deductions       Deductions
	TotalAmount      decimal.Decimal
	PaymentState     PaymentState
	IsPartialPayment bool
	AmountPaid       decimal.Decimal
	AmountOwed       decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Joined fields
	WeekLabel *string
	ISOYear   *int
	ISOWeek   *int
}

// DebtState enum
type DebtState string

const (
	DebtStatePending DebtState = "pending"
	DebtStatePartial DebtState = "partial"
	DebtStateSettled DebtState = "settled"
)

// DebtStateNames lists the valid debt states as plain strings.
func DebtStateNames() []string {
	return []string{string(DebtStatePending), string(DebtStatePartial), string(DebtStateSettled)}
}

// DebtRecord - Residual owed amount of a partially paid payroll record.
// Settlement is append-only history plus a state transition; debts are
// never deleted. AmountPending == OriginalAmount - AmountPaid, >= 0.
type DebtRecord struct {
	ID              string
	PayrollRecordID string
	EmployeeID      string
	OriginalAmount  decimal.Decimal
	AmountPaid      decimal.Decimal
	AmountPending   decimal.Decimal
	State           DebtState
	SettledAt       *time.Time
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
