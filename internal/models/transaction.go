package models

import (
	"time"

	"github.com/uptrace/bun"
)

type TxStatus string

const (
	TxStatusPending   TxStatus = "pending"
	TxStatusConfirmed TxStatus = "confirmed"
	TxStatusFailed    TxStatus = "failed"
)

type TxKind string

const (
	TxKindMintNFT     TxKind = "mint_nft"
	TxKindClaimReward TxKind = "claim_reward"
)

type ChainTransaction struct {
	bun.BaseModel `bun:"table:chain_transactions"`
	Hash          string     `bun:"hash,pk" json:"hash"`
	UserID        string     `bun:"user_id" json:"user_id"`
	Kind          TxKind     `bun:"kind" json:"kind"`
	Payload       string     `bun:"payload" json:"payload"`
	Status        TxStatus   `bun:"status" json:"status"`
	SubmittedAt   time.Time  `bun:"submitted_at,default:current_timestamp" json:"submitted_at"`
	ConfirmedAt   *time.Time `bun:"confirmed_at" json:"confirmed_at"`
}
