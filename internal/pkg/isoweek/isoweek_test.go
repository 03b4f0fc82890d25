package isoweek

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCompute_KnownWeeks(t *testing.T) {
	cases := []struct {
		in    time.Time
		year  int
		week  int
		start time.Time
		end   time.Time
	}{
		{date(2025, time.October, 18), 2025, 42, date(2025, time.October, 13), date(2025, time.October, 19)},
		{date(2025, time.January, 1), 2025, 1, date(2024, time.December, 30), date(2025, time.January, 5)},
		// Dec 31 2025 is a Wednesday, owned by week 1 of 2026.
		{date(2025, time.December, 31), 2026, 1, date(2025, time.December, 29), date(2026, time.January, 4)},
		// 2026 has 53 ISO weeks; Jan 1 2027 still belongs to it.
		{date(2027, time.January, 1), 2026, 53, date(2026, time.December, 28), date(2027, time.January, 3)},
		// Jan 1 2023 is a Sunday, tail of week 52 of 2022.
		{date(2023, time.January, 1), 2022, 52, date(2022, time.December, 26), date(2023, time.January, 1)},
		{date(2024, time.February, 29), 2024, 9, date(2024, time.February, 26), date(2024, time.March, 3)},
	}

	for _, c := range cases {
		got := Compute(c.in)
		assert.Equal(t, c.year, got.Year, "iso year of %s", c.in.Format("2006-01-02"))
		assert.Equal(t, c.week, got.Week, "iso week of %s", c.in.Format("2006-01-02"))
		assert.True(t, got.Start.Equal(c.start), "start of %s: got %s", c.in.Format("2006-01-02"), got.Start)
		assert.True(t, got.End.Equal(c.end), "end of %s: got %s", c.in.Format("2006-01-02"), got.End)
	}
}

func TestCompute_AgreesWithStdlib(t *testing.T) {
	// Sweep a decade day by day; the Thursday rule must reproduce time.ISOWeek.
	d := date(2019, time.January, 1)
	for d.Year() < 2029 {
		id := Compute(d)
		wantYear, wantWeek := d.ISOWeek()
		require.Equal(t, wantYear, id.Year, "date %s", d.Format("2006-01-02"))
		require.Equal(t, wantWeek, id.Week, "date %s", d.Format("2006-01-02"))
		d = d.AddDate(0, 0, 1)
	}
}

func TestCompute_SpanInvariants(t *testing.T) {
	d := date(2024, time.June, 1)
	for i := 0; i < 730; i++ {
		id := Compute(d)
		require.True(t, id.End.Equal(id.Start.AddDate(0, 0, 6)), "date %s", d.Format("2006-01-02"))
		require.Equal(t, time.Monday, id.Start.Weekday())
		require.Equal(t, time.Sunday, id.End.Weekday())
		require.True(t, id.Covers(d))
		d = d.AddDate(0, 0, 1)
	}
}

func TestCompute_SameWeekSameIdentity(t *testing.T) {
	monday := date(2025, time.October, 13)
	want := Compute(monday)
	for i := 0; i < 7; i++ {
		got := Compute(monday.AddDate(0, 0, i))
		assert.Equal(t, want, got)
	}
}

func TestCompute_TimezoneAndClockInsensitive(t *testing.T) {
	loc := time.FixedZone("UTC-6", -6*3600)
	late := time.Date(2025, time.October, 18, 23, 45, 0, 0, loc)
	assert.Equal(t, Compute(date(2025, time.October, 18)), Compute(late))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Semana 42 2025 (Octubre)", ComputeAt(2025, time.October, 18).Label)
	assert.Equal(t, "Semana 1 2025 (Diciembre/Enero)", ComputeAt(2025, time.January, 1).Label)
	assert.Equal(t, "Semana 14 2025 (Marzo/Abril)", ComputeAt(2025, time.April, 2).Label)
}
