package models

import (
	"time"

	"github.com/uptrace/bun"
)

type NFTTier string

const (
	TierBronze NFTTier = "bronze"
	TierSilver NFTTier = "silver"
	TierGold   NFTTier = "gold"
)

// BoostPercent is the mining-rate bonus attached to each tier.
func (t NFTTier) BoostPercent() float64 {
	switch t {
	case TierBronze:
		return 0.05
	case TierSilver:
		return 0.12
	case TierGold:
		return 0.25
	}
	return 0
}

func (t NFTTier) Valid() bool {
	return t == TierBronze || t == TierSilver || t == TierGold
}

type NFTBoost struct {
	bun.BaseModel `bun:"table:nft_boosts"`
	ID            string    `bun:"id,pk" json:"id"`
	UserID        string    `bun:"user_id" json:"user_id"`
	Tier          NFTTier   `bun:"tier" json:"tier"`
	BoostPercent  float64   `bun:"boost_percent" json:"boost_percent"`
	TxHash        *string   `bun:"tx_hash" json:"tx_hash"`
	MintedAt      time.Time `bun:"minted_at,default:current_timestamp" json:"minted_at"`
}
