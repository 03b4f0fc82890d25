package week

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeekState_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from WeekState
		to   WeekState
		want bool
	}{
		{WeekStateDraft, WeekStateInProgress, true},
		{WeekStateDraft, WeekStateClosed, true},
		{WeekStateInProgress, WeekStateClosed, true},
		{WeekStateInProgress, WeekStateDraft, false},
		{WeekStateClosed, WeekStateInProgress, false},
		{WeekStateClosed, WeekStateDraft, false},
		{WeekStateDraft, WeekStateDraft, false},
		{WeekStateClosed, WeekStateClosed, false},
		{WeekStateDraft, WeekState("bogus"), false},
		{WeekState("bogus"), WeekStateClosed, false},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestWeekState_IsValid(t *testing.T) {
	assert.True(t, WeekStateDraft.IsValid())
	assert.True(t, WeekStateInProgress.IsValid())
	assert.True(t, WeekStateClosed.IsValid())
	assert.False(t, WeekState("").IsValid())
	assert.False(t, WeekState("open").IsValid())
}

func TestTransitionWeekRequest_Validate(t *testing.T) {
	ok := TransitionWeekRequest{State: "in_progress"}
	assert.NoError(t, ok.Validate())

	bad := TransitionWeekRequest{State: "reopened"}
	assert.Error(t, bad.Validate())
}
