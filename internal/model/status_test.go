package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusPending, false},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusPending, false},
		{StatusCompleted, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestStatusTerminalAndBlocking(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusConfirmed.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusCompleted.Terminal())

	assert.True(t, StatusPending.Blocking())
	assert.True(t, StatusConfirmed.Blocking())
	assert.False(t, StatusCancelled.Blocking())
	assert.False(t, StatusCompleted.Blocking())
}

func TestStatusRankOrder(t *testing.T) {
	require.Less(t, StatusPending.Rank(), StatusConfirmed.Rank())
	require.Less(t, StatusConfirmed.Rank(), StatusCompleted.Rank())
	require.Less(t, StatusCompleted.Rank(), StatusCancelled.Rank())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("Pending approval")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, s)

	_, err = ParseStatus("pending")
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("08:30")
	require.NoError(t, err)
	assert.Equal(t, ClockTime(510), c)
	assert.Equal(t, "08:30", c.String())

	_, err = ParseClock("24:00")
	assert.Error(t, err)
	_, err = ParseClock("8am")
	assert.Error(t, err)
}

func TestWorkingDayValidateWindow(t *testing.T) {
	open := ClockTime(480)
	close := ClockTime(990)

	assert.NoError(t, WorkingDay{Day: Monday, OpeningTime: &open, ClosingTime: &close}.ValidateWindow())
	assert.NoError(t, WorkingDay{Day: Sunday}.ValidateWindow())

	assert.Error(t, WorkingDay{Day: Monday, OpeningTime: &open}.ValidateWindow())
	assert.Error(t, WorkingDay{Day: Monday, ClosingTime: &close}.ValidateWindow())

	same := ClockTime(480)
	assert.Error(t, WorkingDay{Day: Monday, OpeningTime: &open, ClosingTime: &same}.ValidateWindow())
}
