package isoweek

import (
	"fmt"
	"time"
)

// Identity is the ISO-8601 calendar week a date belongs to. Year is the ISO
// year owning the Thursday of the week, which near year boundaries may differ
// from the calendar year of Start or End.
type Identity struct {
	Year  int
	Week  int
	Start time.Time // Monday, 00:00 UTC
	End   time.Time // Sunday, 00:00 UTC
	Label string
}

var monthNames = [13]string{"",
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// isoWeekday maps time.Weekday to ISO numbering: Monday=1 .. Sunday=7.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// Compute derives the ISO week identity of t. Pure and total over any date.
func Compute(t time.Time) Identity {
	// Midday anchor avoids day shifts from DST offsets in zoned inputs.
	d := time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC)

	// The ISO year is the year of the Thursday in the same week.
	thursday := d.AddDate(0, 0, 4-isoWeekday(d))
	year := thursday.Year()

	jan1 := time.Date(year, time.January, 1, 12, 0, 0, 0, time.UTC)
	firstThursday := jan1.AddDate(0, 0, (11-isoWeekday(jan1))%7)
	week := int(thursday.Sub(firstThursday)/(7*24*time.Hour)) + 1

	// Week start computed from the date itself, not the Thursday, so it stays
	// right when d sits on the far side of a year boundary.
	start := d.AddDate(0, 0, 1-isoWeekday(d))
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 6)

	return Identity{
		Year:  year,
		Week:  week,
		Start: start,
		End:   end,
		Label: label(year, week, start, end),
	}
}

// ComputeAt is Compute for a plain calendar date.
func ComputeAt(year int, month time.Month, day int) Identity {
	return Compute(time.Date(year, month, day, 12, 0, 0, 0, time.UTC))
}

func label(year, week int, start, end time.Time) string {
	months := monthNames[start.Month()]
	if end.Month() != start.Month() {
		months = months + "/" + monthNames[end.Month()]
	}
	return fmt.Sprintf("Semana %d %d (%s)", week, year, months)
}

// Covers reports whether t falls inside the Monday-Sunday span of the week.
func (id Identity) Covers(t time.Time) bool {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(id.Start) && !d.After(id.End)
}
