package models

import (
	"time"

	"github.com/uptrace/bun"
)

type RewardSource string

const (
	RewardSourceAchievement RewardSource = "achievement"
	RewardSourceChallenge   RewardSource = "challenge"
	RewardSourceStreak      RewardSource = "streak"
	RewardSourceLootBox     RewardSource = "loot_box"
)

type Reward struct {
	bun.BaseModel `bun:"table:rewards"`
	ID            string       `bun:"id,pk" json:"id"`
	UserID        string       `bun:"user_id" json:"user_id"`
	Amount        float64      `bun:"amount" json:"amount"`
	Source        RewardSource `bun:"source" json:"source"`
	SourceRef     *string      `bun:"source_ref" json:"source_ref"`
	Claimed       bool         `bun:"claimed" json:"claimed"`
	ClaimedAt     *time.Time   `bun:"claimed_at" json:"claimed_at"`
	CreatedAt     time.Time    `bun:"created_at,default:current_timestamp" json:"created_at"`
}
