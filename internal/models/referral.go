package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ReferralBonusPercent applies to the referrer while the referee mines.
const ReferralBonusPercent = 0.10

type Referral struct {
	bun.BaseModel `bun:"table:referrals"`
	ID            string    `bun:"id,pk" json:"id"`
	ReferrerID    string    `bun:"referrer_id" json:"referrer_id"`
	RefereeID     string    `bun:"referee_id,unique" json:"referee_id"`
	Code          string    `bun:"code" json:"code"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`
}

type ReferralSummary struct {
	Code         string  `json:"code"`
	TotalInvited int     `json:"total_invited"`
	BonusPercent float64 `json:"bonus_percent"`
}
