package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("   "))
	assert.True(t, IsEmpty("\t\n"))
	assert.False(t, IsEmpty("x"))
	assert.False(t, IsEmpty(" x "))
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("018f4f2e-7b1a-7c3d-8e5f-0123456789ab"))
	assert.True(t, IsValidUUID("F47AC10B-58CC-4372-A567-0E02B2C3D479"))
	assert.False(t, IsValidUUID("not-a-uuid"))
	assert.False(t, IsValidUUID("f47ac10b58cc4372a5670e02b2c3d479"))
	assert.False(t, IsValidUUID(""))
}

func TestIsValidDate(t *testing.T) {
	date, ok := IsValidDate("2025-10-18")
	assert.True(t, ok)
	assert.Equal(t, 2025, date.Year())

	_, ok = IsValidDate("18-10-2025")
	assert.False(t, ok)
	_, ok = IsValidDate("2025-02-30")
	assert.False(t, ok)
	_, ok = IsValidDate("")
	assert.False(t, ok)
}

func TestIsInSlice(t *testing.T) {
	states := []string{"draft", "in_progress", "closed"}

	assert.True(t, IsInSlice("draft", states))
	assert.True(t, IsInSlice("closed", states))
	assert.False(t, IsInSlice("Closed", states))
	assert.False(t, IsInSlice("archived", states))
	assert.False(t, IsInSlice("", states))
	assert.False(t, IsInSlice("draft", nil))
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "date", Message: "is required"},
		{Field: "amount", Message: "must be positive"},
	}

	assert.Equal(t, "date: is required; amount: must be positive", errs.Error())
	assert.Equal(t, map[string]string{
		"date":   "is required",
		"amount": "must be positive",
	}, errs.ToMap())
}
