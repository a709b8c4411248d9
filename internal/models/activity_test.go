package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityMetadataRoundTrip(t *testing.T) {
	meta := StopMiningMeta{
		SessionID:       "session-1",
		DurationMinutes: 42,
		EarnedAmount:    3.5,
	}

	raw, err := EncodeActivityMetadata(meta)
	require.NoError(t, err)

	activity := &Activity{Activity: ActivityStopMining, Metadata: raw}
	decoded, err := DecodeActivityMetadata(activity)
	require.NoError(t, err)

	stop, ok := decoded.(*StopMiningMeta)
	require.True(t, ok)
	assert.Equal(t, meta.SessionID, stop.SessionID)
	assert.Equal(t, meta.DurationMinutes, stop.DurationMinutes)
	assert.InDelta(t, meta.EarnedAmount, stop.EarnedAmount, 1e-9)
	assert.Equal(t, ActivityStopMining, decoded.ActivityType())
}

func TestDecodeActivityMetadataUnknownType(t *testing.T) {
	activity := &Activity{Activity: ActivityType("teleport"), Metadata: []byte(`{}`)}
	_, err := DecodeActivityMetadata(activity)
	assert.ErrorIs(t, err, ErrUnknownActivityType)
}

func TestDecodeActivityMetadataEmpty(t *testing.T) {
	activity := &Activity{Activity: ActivityWalletConnect}
	decoded, err := DecodeActivityMetadata(activity)
	require.NoError(t, err)
	require.IsType(t, &WalletConnectMeta{}, decoded)
}

func TestDurableActivity(t *testing.T) {
	assert.True(t, DurableActivity(ActivityMintNFT))
	assert.True(t, DurableActivity(ActivityClaimReward))
	assert.False(t, DurableActivity(ActivityStartMining))
	assert.False(t, DurableActivity(ActivityWalletConnect))
}

func TestCommitActivity(t *testing.T) {
	hash := "0xdeadbeef"

	activity := &Activity{Activity: ActivityMintNFT}
	CommitActivity(activity, &hash)
	assert.True(t, activity.Durable)
	require.NotNil(t, activity.TxHash)
	assert.Equal(t, hash, *activity.TxHash)
	assert.Empty(t, activity.Notice)

	// a failed commitment downgrades to off-chain and says so
	failed := &Activity{Activity: ActivityClaimReward}
	CommitActivity(failed, nil)
	assert.False(t, failed.Durable)
	assert.Nil(t, failed.TxHash)
	assert.Equal(t, NoticeOffChainOnly, failed.Notice)

	// durable implies a commitment reference, never a bare flag
	assert.False(t, failed.Durable && failed.TxHash == nil)
}

func TestNormalizeWallet(t *testing.T) {
	assert.Equal(t, "0xabcdef", NormalizeWallet("  0xABCdef "))
}
