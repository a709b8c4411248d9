package models

import (
	"time"

	"github.com/uptrace/bun"
)

const ChallengeTypeMining = "mining"

type WeeklyChallenge struct {
	bun.BaseModel `bun:"table:weekly_challenges"`
	ID            string    `bun:"id,pk" json:"id"`
	Title         string    `bun:"title,notnull" json:"title"`
	Description   string    `bun:"description" json:"description"`
	ChallengeType string    `bun:"challenge_type" json:"challenge_type"`
	Goal          int       `bun:"goal" json:"goal"`
	Reward        float64   `bun:"reward" json:"reward"`
	StartDate     time.Time `bun:"start_date" json:"start_date"`
	EndDate       time.Time `bun:"end_date" json:"end_date"`

	Progress  int  `bun:"-" json:"progress"`
	Completed bool `bun:"-" json:"completed"`
}

type UserWeeklyChallenge struct {
	bun.BaseModel `bun:"table:user_weekly_challenges"`
	ID            string     `bun:"id,pk" json:"id"`
	UserID        string     `bun:"user_id" json:"user_id"`
	ChallengeID   string     `bun:"challenge_id" json:"challenge_id"`
	Progress      int        `bun:"progress" json:"progress"`
	Completed     bool       `bun:"completed" json:"completed"`
	CompletedAt   *time.Time `bun:"completed_at" json:"completed_at"`
}
