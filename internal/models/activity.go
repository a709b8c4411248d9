package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/uptrace/bun"
)

type ActivityType string

const (
	ActivityWalletConnect ActivityType = "wallet_connect"
	ActivityStartMining   ActivityType = "start_mining"
	ActivityStopMining    ActivityType = "stop_mining"
	ActivityJoinCrew      ActivityType = "join_crew"
	ActivityLeaveCrew     ActivityType = "leave_crew"
	ActivityMintNFT       ActivityType = "mint_nft"
	ActivityClaimReward   ActivityType = "claim_reward"
)

var ErrUnknownActivityType = errors.New("unknown activity type")

type Activity struct {
	bun.BaseModel `bun:"table:user_activities"`
	ID            string          `bun:"id,pk" json:"id"`
	UserID        string          `bun:"user_id" json:"user_id"`
	Activity      ActivityType    `bun:"activity" json:"activity"`
	Metadata      json.RawMessage `bun:"metadata,type:jsonb" json:"metadata"`
	Durable       bool            `bun:"durable" json:"durable"`
	TxHash        *string         `bun:"tx_hash" json:"tx_hash"`
	Visible       bool            `bun:"visible" json:"visible"`
	CreatedAt     time.Time       `bun:"created_at,default:current_timestamp" json:"created_at"`

	Notice string `bun:"-" json:"notice,omitempty"`
}

// NoticeOffChainOnly tells the user a normally-durable activity could not
// obtain its on-chain commitment and was recorded off-chain instead.
const NoticeOffChainOnly = "on-chain commitment failed; recorded off-chain only"

// CommitActivity stamps the obtained commitment on an activity, or
// downgrades it to off-chain when none could be obtained. A durable row
// always carries its transaction hash.
func CommitActivity(activity *Activity, txHash *string) {
	if txHash == nil {
		activity.Durable = false
		activity.TxHash = nil
		activity.Notice = NoticeOffChainOnly
		return
	}
	activity.Durable = true
	activity.TxHash = txHash
	activity.Notice = ""
}

// ActivityMetadata is the tagged union of per-kind payloads. Each activity
// kind carries exactly one of the shapes below; the open key/value bag of the
// legacy log is gone.
type ActivityMetadata interface {
	ActivityType() ActivityType
}

type WalletConnectMeta struct {
	WalletAddress string `json:"wallet_address"`
}

func (WalletConnectMeta) ActivityType() ActivityType { return ActivityWalletConnect }

type StartMiningMeta struct {
	SessionID     string  `json:"session_id"`
	EffectiveRate float64 `json:"effective_rate"`
}

func (StartMiningMeta) ActivityType() ActivityType { return ActivityStartMining }

type StopMiningMeta struct {
	SessionID       string  `json:"session_id"`
	DurationMinutes int     `json:"duration_minutes"`
	EarnedAmount    float64 `json:"earned_amount"`
}

func (StopMiningMeta) ActivityType() ActivityType { return ActivityStopMining }

type JoinCrewMeta struct {
	CrewID   string `json:"crew_id"`
	CrewName string `json:"crew_name"`
}

func (JoinCrewMeta) ActivityType() ActivityType { return ActivityJoinCrew }

type LeaveCrewMeta struct {
	CrewID string `json:"crew_id"`
}

func (LeaveCrewMeta) ActivityType() ActivityType { return ActivityLeaveCrew }

type MintNFTMeta struct {
	Tier         string  `json:"tier"`
	BoostPercent float64 `json:"boost_percent"`
}

func (MintNFTMeta) ActivityType() ActivityType { return ActivityMintNFT }

type ClaimRewardMeta struct {
	RewardID string  `json:"reward_id"`
	Amount   float64 `json:"amount"`
}

func (ClaimRewardMeta) ActivityType() ActivityType { return ActivityClaimReward }

// EncodeActivityMetadata marshals a typed payload for storage.
func EncodeActivityMetadata(meta ActivityMetadata) (json.RawMessage, error) {
	if meta == nil {
		return json.RawMessage("{}"), nil
	}
	return json.Marshal(meta)
}

// DecodeActivityMetadata rebuilds the typed payload from a stored row.
func DecodeActivityMetadata(activity *Activity) (ActivityMetadata, error) {
	var meta ActivityMetadata
	switch activity.Activity {
	case ActivityWalletConnect:
		meta = &WalletConnectMeta{}
	case ActivityStartMining:
		meta = &StartMiningMeta{}
	case ActivityStopMining:
		meta = &StopMiningMeta{}
	case ActivityJoinCrew:
		meta = &JoinCrewMeta{}
	case ActivityLeaveCrew:
		meta = &LeaveCrewMeta{}
	case ActivityMintNFT:
		meta = &MintNFTMeta{}
	case ActivityClaimReward:
		meta = &ClaimRewardMeta{}
	default:
		return nil, ErrUnknownActivityType
	}

	if len(activity.Metadata) == 0 {
		return meta, nil
	}
	if err := json.Unmarshal(activity.Metadata, meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// DurableActivity reports whether a kind must carry an on-chain commitment.
func DurableActivity(kind ActivityType) bool {
	return kind == ActivityMintNFT || kind == ActivityClaimReward
}
