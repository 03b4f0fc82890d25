package payroll

import "errors"

var (
	ErrRecordNotFound      = errors.New("payroll record not found")
	ErrRecordAlreadyExists = errors.New("payroll record already exists for this employee and week")
	ErrDebtNotFound        = errors.New("debt record not found")
	ErrDebtAlreadySettled  = errors.New("debt record already settled")
	ErrInvalidAmount       = errors.New("payment amount outside the valid range")
	ErrInvalidPaymentState = errors.New("invalid payment state")
	ErrWeekClosed          = errors.New("payroll week is closed, records can no longer be modified")
)
