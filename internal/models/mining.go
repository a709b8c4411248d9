package models

import (
	"time"

	"github.com/uptrace/bun"
)

type MiningSession struct {
	bun.BaseModel        `bun:"table:mining_sessions"`
	ID                   string     `bun:"id,pk" json:"id"`
	UserID               string     `bun:"user_id" json:"user_id"`
	BaseRate             float64    `bun:"base_rate" json:"base_rate"`
	NFTBoostPercent      float64    `bun:"nft_boost_percent" json:"nft_boost_percent"`
	ReferralBonusPercent float64    `bun:"referral_bonus_percent" json:"referral_bonus_percent"`
	StartTime            time.Time  `bun:"start_time" json:"start_time"`
	EndTime              *time.Time `bun:"end_time" json:"end_time"`
	EarnedAmount         *float64   `bun:"earned_amount" json:"earned_amount"`
}

// Open reports whether the session has not been settled yet.
func (s *MiningSession) Open() bool {
	return s.EndTime == nil
}

type DailyMiningLimit struct {
	bun.BaseModel        `bun:"table:daily_mining_limits"`
	ID                   string  `bun:"id,pk" json:"id"`
	UserID               string  `bun:"user_id" json:"user_id"`
	Date                 string  `bun:"date" json:"date"`
	MinutesMined         int     `bun:"minutes_mined" json:"minutes_mined"`
	MaxMinutes           int     `bun:"max_minutes" json:"max_minutes"`
	LastMiningSessionID  *string `bun:"last_mining_session_id" json:"last_mining_session_id"`
}

// MiningStatus is the live view of a user's mining state for the dashboard.
type MiningStatus struct {
	State            string         `json:"state"`
	Session          *MiningSession `json:"session,omitempty"`
	EarnedSoFar      float64        `json:"earned_so_far"`
	EffectiveRate    float64        `json:"effective_rate"`
	RemainingMinutes int            `json:"remaining_minutes"`
}
