package week

import (
	"github.com/construtek/nomina-backend-go/internal/pkg/validator"
)

// ========== WEEK DTOs ==========

type ResolveWeekRequest struct {
	Date string `json:"date"` // "YYYY-MM-DD"
}

func (r *ResolveWeekRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "is required"})
	} else if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "must be a valid YYYY-MM-DD date"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TransitionWeekRequest struct {
	ID    string `json:"-"`
	State string `json:"state"`
}

func (r *TransitionWeekRequest) Validate() error {
	var errs validator.ValidationErrors

	if !WeekState(r.State).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "state", Message: "must be 'draft', 'in_progress' or 'closed'"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type WeekFilter struct {
	ISOYear *int
	State   *string
}

type SeedYearResponse struct {
	Year    int `json:"year"`
	Created int `json:"created"`
	Existed int `json:"existed"`
}

type WeekResponse struct {
	ID        string `json:"id"`
	ISOYear   int    `json:"iso_year"`
	ISOWeek   int    `json:"iso_week"`
	WeekStart string `json:"week_start"`
	WeekEnd   string `json:"week_end"`
	Label     string `json:"label"`
	State     string `json:"state"`
}
