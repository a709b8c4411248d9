package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	EpochStatusActive    = "active"
	EpochStatusCompleted = "completed"
)

type Epoch struct {
	bun.BaseModel `bun:"table:epochs"`
	ID            int       `bun:"id,pk,autoincrement" json:"id"`
	StartDate     time.Time `bun:"start_date" json:"start_date"`
	EndDate       time.Time `bun:"end_date" json:"end_date"`
	Status        string    `bun:"status" json:"status"`
}

// LeaderboardSnapshot is the persisted rank of one user in a closed epoch.
type LeaderboardSnapshot struct {
	bun.BaseModel   `bun:"table:leaderboards"`
	ID              string  `bun:"id,pk" json:"id"`
	Epoch           int     `bun:"epoch" json:"epoch"`
	UserID          string  `bun:"user_id" json:"user_id"`
	EpochTotalMined float64 `bun:"epoch_total_mined" json:"epoch_total_mined"`
	Rank            int     `bun:"rank" json:"rank"`
}
