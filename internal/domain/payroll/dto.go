package payroll

import (
	"github.com/construtek/nomina-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== RECORD DTOs ==========

type DeductionsPayload struct {
	Tax            decimal.Decimal `json:"tax"`
	SocialSecurity decimal.Decimal `json:"social_security"`
	Housing        decimal.Decimal `json:"housing"`
	Advance        decimal.Decimal `json:"advance"`
	Other          decimal.Decimal `json:"other"`
}

func (p DeductionsPayload) ToDeductions() Deductions {
	return Deductions{
		Tax:            p.Tax,
		SocialSecurity: p.SocialSecurity,
		Housing:        p.Housing,
		Advance:        p.Advance,
		Other:          p.Other,
	}
}

type UpsertRecordRequest struct {
	EmployeeID     string            `json:"employee_id"`
	Date           string            `json:"date"` // any date inside the target week, "YYYY-MM-DD"
	DaysWorked     int               `json:"days_worked"`
	DailyRate      decimal.Decimal   `json:"daily_rate"`
	OvertimeAmount decimal.Decimal   `json:"overtime_amount"`
	BonusAmount    decimal.Decimal   `json:"bonus_amount"`
	Deductions     DeductionsPayload `json:"deductions"`

	// ManualTotal overrides the computed total for partial-payment scenarios.
	// Must not exceed the computed full total.
	ManualTotal *decimal.Decimal `json:"manual_total,omitempty"`
}

func (r *UpsertRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	} else if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "must be a valid UUID"})
	}
	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "is required"})
	} else if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "must be a valid YYYY-MM-DD date"})
	}
	if r.DaysWorked < 0 || r.DaysWorked > 7 {
		errs = append(errs, validator.ValidationError{Field: "days_worked", Message: "must be between 0 and 7"})
	}
	if r.DailyRate.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "daily_rate", Message: "must be non-negative"})
	}
	if r.OvertimeAmount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "overtime_amount", Message: "must be non-negative"})
	}
	if r.BonusAmount.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "bonus_amount", Message: "must be non-negative"})
	}
	for field, amount := range map[string]decimal.Decimal{
		"deductions.tax":             r.Deductions.Tax,
		"deductions.social_security": r.Deductions.SocialSecurity,
		"deductions.housing":         r.Deductions.Housing,
		"deductions.advance":         r.Deductions.Advance,
		"deductions.other":           r.Deductions.Other,
	} {
		if amount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field, Message: "must be non-negative"})
		}
	}
	if r.ManualTotal != nil && r.ManualTotal.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "manual_total", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PartialPaymentRequest struct {
	RecordID string          `json:"-"`
	Amount   decimal.Decimal `json:"amount"`
	Notes    *string         `json:"notes,omitempty"`
}

func (r *PartialPaymentRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ChangeStateRequest struct {
	RecordID string `json:"-"`
	State    string `json:"state"`
}

func (r *ChangeStateRequest) Validate() error {
	var errs validator.ValidationErrors

	if !PaymentState(r.State).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "state", Message: "must be one of 'draft', 'pending', 'in_progress', 'approved', 'paid', 'cancelled'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SettleDebtRequest struct {
	DebtID string          `json:"-"`
	Amount decimal.Decimal `json:"amount"`
	Notes  *string         `json:"notes,omitempty"`
}

func (r *SettleDebtRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RecordFilter struct {
	WeekID     *string
	EmployeeID *string
	State      *string
	Page       int
	Limit      int
}

type DebtFilter struct {
	EmployeeID *string
	State      *string
}

// ========== RESPONSES ==========

type RecordResponse struct {
	ID               string            `json:"id"`
	EmployeeID       string            `json:"employee_id"`
	WeekID           string            `json:"week_id"`
	WeekLabel        *string           `json:"week_label,omitempty"`
	ISOYear          *int              `json:"iso_year,omitempty"`
	ISOWeek          *int              `json:"iso_week,omitempty"`
	DaysWorked       int               `json:"days_worked"`
	DailyRate        decimal.Decimal   `json:"daily_rate"`
	OvertimeAmount   decimal.Decimal   `json:"overtime_amount"`
	BonusAmount      decimal.Decimal   `json:"bonus_amount"`
	Deductions       DeductionsPayload `json:"deductions"`
	TotalAmount      decimal.Decimal   `json:"total_amount"`
	PaymentState     string            `json:"payment_state"`
	IsPartialPayment bool              `json:"is_partial_payment"`
	AmountPaid       decimal.Decimal   `json:"amount_paid"`
	AmountOwed       decimal.Decimal   `json:"amount_owed"`
}

type ListRecordsResponse struct {
	Data       []RecordResponse `json:"data"`
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
}

type DebtResponse struct {
	ID              string          `json:"id"`
	PayrollRecordID string          `json:"payroll_record_id"`
	EmployeeID      string          `json:"employee_id"`
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	AmountPending   decimal.Decimal `json:"amount_pending"`
	State           string          `json:"state"`
	SettledAt       *string         `json:"settled_at,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
}

// SnapshotResponse is the read-only view handed to the document/export
// service to render a receipt.
type SnapshotResponse struct {
	RecordID         string            `json:"record_id"`
	EmployeeID       string            `json:"employee_id"`
	WeekLabel        string            `json:"week_label"`
	DaysWorked       int               `json:"days_worked"`
	DailyRate        decimal.Decimal   `json:"daily_rate"`
	OvertimeAmount   decimal.Decimal   `json:"overtime_amount"`
	BonusAmount      decimal.Decimal   `json:"bonus_amount"`
	Deductions       DeductionsPayload `json:"deductions"`
	TotalAmount      decimal.Decimal   `json:"total_amount"`
	PaymentState     string            `json:"payment_state"`
	AmountPaid       decimal.Decimal   `json:"amount_paid"`
	AmountOwed       decimal.Decimal   `json:"amount_owed"`
	IsPartialPayment bool              `json:"is_partial_payment"`
}

type WeekTotals struct {
	WeekID         string          `json:"week_id"`
	RecordCount    int64           `json:"record_count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	TotalOwed      decimal.Decimal `json:"total_owed"`
	PaidCount      int64           `json:"paid_count"`
	CancelledCount int64           `json:"cancelled_count"`
}
