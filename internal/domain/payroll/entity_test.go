package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestComputeTotal(t *testing.T) {
	cases := []struct {
		name       string
		dailyRate  string
		daysWorked int
		overtime   string
		bonus      string
		deductions Deductions
		want       string
	}{
		{
			name:      "full six-day week earns the whole rate",
			dailyRate: "300", daysWorked: 6,
			overtime: "0", bonus: "0",
			want: "300",
		},
		{
			name:      "partial week with overtime and bonus",
			dailyRate: "300", daysWorked: 4,
			overtime: "150", bonus: "50",
			want: "400",
		},
		{
			name:      "deductions subtract from the total",
			dailyRate: "600", daysWorked: 6,
			overtime: "0", bonus: "0",
			deductions: Deductions{
				Tax:            dec("120"),
				SocialSecurity: dec("80"),
				Housing:        dec("50"),
				Advance:        dec("200"),
				Other:          dec("10"),
			},
			want: "140",
		},
		{
			name:      "seven days paid above the six-day base",
			dailyRate: "300", daysWorked: 7,
			overtime: "0", bonus: "0",
			want: "350",
		},
		{
			name:      "zero days worked",
			dailyRate: "450", daysWorked: 0,
			overtime: "0", bonus: "75",
			want: "75",
		},
		{
			name:      "non-divisible rate rounds to cents",
			dailyRate: "1000", daysWorked: 1,
			overtime: "0", bonus: "0",
			want: "166.67",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ComputeTotal(dec(c.dailyRate), c.daysWorked, dec(c.overtime), dec(c.bonus), c.deductions)
			assert.True(t, got.Equal(dec(c.want)), "got %s, want %s", got, c.want)
		})
	}
}

func TestDeductions_Total(t *testing.T) {
	d := Deductions{Tax: dec("10"), Housing: dec("5.50")}
	assert.True(t, d.Total().Equal(dec("15.50")))

	assert.True(t, Deductions{}.Total().IsZero())
}

func TestPaymentState_IsValid(t *testing.T) {
	for _, s := range []PaymentState{
		PaymentStateDraft, PaymentStatePending, PaymentStateInProgress,
		PaymentStateApproved, PaymentStatePaid, PaymentStateCancelled,
	} {
		assert.True(t, s.IsValid(), string(s))
	}
	assert.False(t, PaymentState("pagado").IsValid())
	assert.False(t, PaymentState("").IsValid())
}

func TestUpsertRecordRequest_Validate(t *testing.T) {
	valid := UpsertRecordRequest{
		EmployeeID: "0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		Date:       "2025-10-18",
		DaysWorked: 6,
		DailyRate:  dec("300"),
	}
	assert.NoError(t, valid.Validate())

	tooManyDays := valid
	tooManyDays.DaysWorked = 8
	err := tooManyDays.Validate()
	assert.Error(t, err)

	negativeDays := valid
	negativeDays.DaysWorked = -1
	assert.Error(t, negativeDays.Validate())

	badDate := valid
	badDate.Date = "18/10/2025"
	assert.Error(t, badDate.Validate())

	negativeDeduction := valid
	negativeDeduction.Deductions.Advance = dec("-5")
	assert.Error(t, negativeDeduction.Validate())

	negativeOverride := valid
	override := dec("-1")
	negativeOverride.ManualTotal = &override
	assert.Error(t, negativeOverride.Validate())
}

func TestChangeStateRequest_Validate(t *testing.T) {
	ok := ChangeStateRequest{State: "approved"}
	assert.NoError(t, ok.Validate())

	bad := ChangeStateRequest{State: "archived"}
	assert.Error(t, bad.Validate())
}
