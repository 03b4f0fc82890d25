package response

import (
	"errors"
	"net/http"

	"github.com/construtek/nomina-backend-go/internal/domain/payroll"
	"github.com/construtek/nomina-backend-go/internal/domain/week"
	"github.com/construtek/nomina-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Week domain errors
	case errors.Is(err, week.ErrWeekNotFound):
		NotFound(w, "Payroll week not found")
	case errors.Is(err, week.ErrWeekAlreadyExists):
		Conflict(w, "Payroll week already exists")
	case errors.Is(err, week.ErrInvalidTransition):
		Conflict(w, "Week state can only move forward")
	case errors.Is(err, week.ErrInvalidState):
		BadRequest(w, "Invalid week state", nil)
	case errors.Is(err, week.ErrInvalidYear):
		BadRequest(w, "Year out of supported range", nil)

	// Payroll domain errors
	case errors.Is(err, payroll.ErrRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, payroll.ErrRecordAlreadyExists):
		Conflict(w, "Payroll record already exists for this employee and week")
	case errors.Is(err, payroll.ErrWeekClosed):
		Conflict(w, "Week is closed for payroll changes")
	case errors.Is(err, payroll.ErrInvalidAmount):
		UnprocessableEntity(w, "Amount exceeds what is owed")
	case errors.Is(err, payroll.ErrInvalidPaymentState):
		BadRequest(w, "Invalid payment state", nil)
	case errors.Is(err, payroll.ErrDebtNotFound):
		NotFound(w, "Debt record not found")
	case errors.Is(err, payroll.ErrDebtAlreadySettled):
		Conflict(w, "Debt is already settled")

	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
