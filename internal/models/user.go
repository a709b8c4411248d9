package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users"`
	ID            string    `bun:"id,pk" json:"id"`
	WalletAddress string    `bun:"wallet_address,notnull,unique" json:"wallet_address"`
	TotalMined    float64   `bun:"total_mined" json:"total_mined"`
	Experience    int64     `bun:"experience" json:"experience"`
	Level         int       `bun:"level" json:"level"`
	NextLevelExp  int64     `bun:"next_level_exp" json:"next_level_exp"`
	AvatarStage   int       `bun:"avatar_stage" json:"avatar_stage"`
	JoinedAt      time.Time `bun:"joined_at,default:current_timestamp" json:"joined_at"`
	UpdatedAt     time.Time `bun:"updated_at" json:"updated_at"`

	IsNewUser        bool       `bun:"-" json:"is_new_user"`
	Boosts           []NFTBoost `bun:"-" json:"boosts,omitempty"`
	BoostPercent     float64    `bun:"-" json:"boost_percent"`
	CrewID           *string    `bun:"-" json:"crew_id"`
	Rank             int        `bun:"-" json:"rank"`
	AvailableRewards []Reward   `bun:"-" json:"available_rewards,omitempty"`
}

// UserFromAuth only use in middleware
type UserFromAuth struct {
	ID            string `json:"id"`
	WalletAddress string `json:"wallet_address"`
}

func (user *User) ToUserFromAuth() *UserFromAuth {
	return &UserFromAuth{
		ID:            user.ID,
		WalletAddress: user.WalletAddress,
	}
}

// NormalizeWallet lower-cases an address so one wallet maps to one user.
func NormalizeWallet(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
