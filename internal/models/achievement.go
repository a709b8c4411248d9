package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	AchievementMiningNovice = "mining-novice"
	AchievementCrewFounder  = "crew-founder"
	AchievementEarlyAdopter = "early-adopter"
)

type Achievement struct {
	bun.BaseModel `bun:"table:achievements"`
	ID            string    `bun:"id,pk" json:"id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Description   string    `bun:"description" json:"description"`
	ImageURL      *string   `bun:"image_url" json:"image_url"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`

	Unlocked   bool       `bun:"-" json:"unlocked"`
	UnlockedAt *time.Time `bun:"-" json:"unlocked_at"`
}

type UserAchievement struct {
	bun.BaseModel `bun:"table:user_achievements"`
	ID            string    `bun:"id,pk" json:"id"`
	UserID        string    `bun:"user_id" json:"user_id"`
	AchievementID string    `bun:"achievement_id" json:"achievement_id"`
	UnlockedAt    time.Time `bun:"unlocked_at,default:current_timestamp" json:"unlocked_at"`
}
