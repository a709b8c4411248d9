package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Streak struct {
	bun.BaseModel     `bun:"table:streaks"`
	ID                string     `bun:"id,pk" json:"id"`
	UserID            string     `bun:"user_id,unique" json:"user_id"`
	CurrentStreakDays int        `bun:"current_streak_days" json:"current_streak_days"`
	BestStreakDays    int        `bun:"best_streak_days" json:"best_streak_days"`
	LastCheckIn       *time.Time `bun:"last_check_in" json:"last_check_in"`
	UpdatedAt         time.Time  `bun:"updated_at,default:current_timestamp" json:"updated_at"`
}
