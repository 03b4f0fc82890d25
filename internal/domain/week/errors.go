package week

import "errors"

var (
	ErrWeekNotFound      = errors.New("payroll week not found")
	ErrWeekAlreadyExists = errors.New("payroll week already exists for this iso year and week")
	ErrInvalidTransition = errors.New("invalid week state transition")
	ErrInvalidState      = errors.New("invalid week state")
	ErrInvalidYear       = errors.New("year must be between 2000 and 2100")
)
