package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Crew struct {
	bun.BaseModel `bun:"table:crews"`
	ID            string    `bun:"id,pk" json:"id"`
	Name          string    `bun:"name,notnull" json:"name"`
	CreatedBy     string    `bun:"created_by" json:"created_by"`
	CreatedAt     time.Time `bun:"created_at,default:current_timestamp" json:"created_at"`

	MemberCount int     `bun:"-" json:"member_count"`
	TotalMined  float64 `bun:"-" json:"total_mined"`
}

type CrewMember struct {
	bun.BaseModel `bun:"table:crew_members"`
	ID            string    `bun:"id,pk" json:"id"`
	CrewID        string    `bun:"crew_id" json:"crew_id"`
	UserID        string    `bun:"user_id,unique" json:"user_id"`
	JoinedAt      time.Time `bun:"joined_at,default:current_timestamp" json:"joined_at"`
}
