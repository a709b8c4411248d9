package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corepulse/internal/models"
)

func session(start time.Time, earned float64) *models.MiningSession {
	return &models.MiningSession{StartTime: start, EarnedAmount: &earned}
}

func TestDailyBucket(t *testing.T) {
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, DailyBucket(day.Add(1*time.Hour)))
	assert.Equal(t, 1, DailyBucket(day.Add(5*time.Hour)))
	assert.Equal(t, 3, DailyBucket(day.Add(13*time.Hour)))
	assert.Equal(t, 5, DailyBucket(day.Add(23*time.Hour)))
}

func TestWeeklyBucketMondayFirst(t *testing.T) {
	monday := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	require.Equal(t, time.Monday, monday.Weekday())

	assert.Equal(t, 0, WeeklyBucket(monday))
	assert.Equal(t, 3, WeeklyBucket(monday.AddDate(0, 0, 3)))
	assert.Equal(t, 6, WeeklyBucket(monday.AddDate(0, 0, 6)))
}

func TestMonthlyBucket(t *testing.T) {
	assert.Equal(t, 0, MonthlyBucket(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, MonthlyBucket(time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, MonthlyBucket(time.Date(2026, 8, 8, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 4, MonthlyBucket(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)))
}

func TestWeekStart(t *testing.T) {
	thursday := time.Date(2026, 8, 27, 15, 30, 0, 0, time.UTC)
	require.Equal(t, time.Thursday, thursday.Weekday())

	start := WeekStart(thursday)
	assert.Equal(t, time.Monday, start.Weekday())
	assert.Equal(t, 24, start.Day())
	assert.Zero(t, start.Hour())

	monday := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, WeekStart(monday))
}

func TestBucketEarnings(t *testing.T) {
	now := time.Date(2026, 8, 28, 18, 0, 0, 0, time.UTC) // Friday

	sessions := []*models.MiningSession{
		session(time.Date(2026, 8, 28, 1, 0, 0, 0, time.UTC), 5),   // today, bucket 0
		session(time.Date(2026, 8, 28, 13, 0, 0, 0, time.UTC), 7),  // today, bucket 3
		session(time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC), 10),  // Tuesday this week
		session(time.Date(2026, 8, 3, 9, 0, 0, 0, time.UTC), 20),   // earlier this month, week 1
		session(time.Date(2026, 7, 10, 9, 0, 0, 0, time.UTC), 100), // last month, total only
		{StartTime: now}, // still open, skipped
	}

	data := BucketEarnings(sessions, now)

	assert.InDelta(t, 142.0, data.TotalMined, 1e-9)

	assert.InDelta(t, 5.0, data.Daily[0].Value, 1e-9)
	assert.InDelta(t, 7.0, data.Daily[3].Value, 1e-9)
	assert.Zero(t, data.Daily[1].Value)

	assert.InDelta(t, 10.0, data.Weekly[1].Value, 1e-9) // Tuesday
	assert.InDelta(t, 12.0, data.Weekly[4].Value, 1e-9) // Friday

	assert.InDelta(t, 20.0, data.Monthly[0].Value, 1e-9)
	assert.InDelta(t, 22.0, data.Monthly[3].Value, 1e-9) // day 22-28 falls in week 4

	require.Len(t, data.Daily, 6)
	require.Len(t, data.Weekly, 7)
	require.Len(t, data.Monthly, 5)
	assert.Equal(t, "Mon", data.Weekly[0].Name)
	assert.Equal(t, "Week 1", data.Monthly[0].Name)
}
