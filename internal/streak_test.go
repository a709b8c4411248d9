package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAdvanceStreakFirstCheckIn(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	current, best, changed := AdvanceStreak(0, 0, nil, now)
	assert.Equal(t, 1, current)
	assert.Equal(t, 1, best)
	assert.True(t, changed)
}

func TestAdvanceStreakSameDay(t *testing.T) {
	now := time.Date(2026, 8, 28, 22, 0, 0, 0, time.UTC)
	last := time.Date(2026, 8, 28, 1, 0, 0, 0, time.UTC)

	current, best, changed := AdvanceStreak(4, 7, &last, now)
	assert.Equal(t, 4, current)
	assert.Equal(t, 7, best)
	assert.False(t, changed)
}

func TestAdvanceStreakConsecutive(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 30, 0, 0, time.UTC)
	last := time.Date(2026, 8, 27, 23, 30, 0, 0, time.UTC)

	current, best, changed := AdvanceStreak(4, 4, &last, now)
	assert.Equal(t, 5, current)
	assert.Equal(t, 5, best)
	assert.True(t, changed)
}

func TestAdvanceStreakGapResets(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	last := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	current, best, changed := AdvanceStreak(9, 9, &last, now)
	assert.Equal(t, 1, current)
	assert.Equal(t, 9, best, "best never decreases")
	assert.True(t, changed)
}

func TestStreakBroken(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	assert.False(t, StreakBroken(nil, now))

	today := now.Add(-2 * time.Hour)
	assert.False(t, StreakBroken(&today, now))

	yesterday := now.AddDate(0, 0, -1)
	assert.False(t, StreakBroken(&yesterday, now))

	stale := now.AddDate(0, 0, -2)
	assert.True(t, StreakBroken(&stale, now))
}
