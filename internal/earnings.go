package internal

import (
	"fmt"
	"time"

	"corepulse/internal/models"
)

var dailyBucketNames = []string{"00-04", "04-08", "08-12", "12-16", "16-20", "20-24"}

var weekdayNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// DailyBucket maps a session start to one of six 4-hour slots.
func DailyBucket(start time.Time) int {
	return start.Hour() / 4
}

// WeeklyBucket maps to day-of-week, Monday first.
func WeeklyBucket(start time.Time) int {
	return (int(start.Weekday()) + 6) % 7
}

// MonthlyBucket maps to the week of the month, 0-based, capped at week 5.
func MonthlyBucket(start time.Time) int {
	week := (start.Day() - 1) / 7
	if week > 4 {
		week = 4
	}
	return week
}

// BucketEarnings folds settled sessions into the three chart series.
// Sessions without an earned amount (still open) are skipped.
func BucketEarnings(sessions []*models.MiningSession, now time.Time) models.EarningsData {
	daily := make([]models.EarningsPoint, len(dailyBucketNames))
	for i, name := range dailyBucketNames {
		daily[i] = models.EarningsPoint{Name: name}
	}
	weekly := make([]models.EarningsPoint, len(weekdayNames))
	for i, name := range weekdayNames {
		weekly[i] = models.EarningsPoint{Name: name}
	}
	monthly := make([]models.EarningsPoint, 5)
	for i := range monthly {
		monthly[i] = models.EarningsPoint{Name: fmt.Sprintf("Week %d", i+1)}
	}

	data := models.EarningsData{Daily: daily, Weekly: weekly, Monthly: monthly}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := WeekStart(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	for _, session := range sessions {
		if session.EarnedAmount == nil {
			continue
		}
		amount := *session.EarnedAmount
		data.TotalMined += amount
		start := session.StartTime.In(now.Location())
		if !start.Before(dayStart) {
			data.Daily[DailyBucket(start)].Value += amount
		}
		if !start.Before(weekStart) {
			data.Weekly[WeeklyBucket(start)].Value += amount
		}
		if !start.Before(monthStart) {
			data.Monthly[MonthlyBucket(start)].Value += amount
		}
	}
	return data
}

// WeekStart is midnight of the Monday of now's week.
func WeekStart(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return day.AddDate(0, 0, -((int(now.Weekday()) + 6) % 7))
}
