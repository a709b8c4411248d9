package pkg

import (
	"crypto/rand"
	"encoding/hex"
)

const referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenReferralCode returns a short uppercase code without ambiguous
// characters (no I, O, 0, 1).
func GenReferralCode(length int) string {
	buf := make([]byte, length)
	//nolint:errcheck
	rand.Read(buf)
	for i := range buf {
		buf[i] = referralAlphabet[int(buf[i])%len(referralAlphabet)]
	}
	return string(buf)
}

// GenNonce returns a hex nonce for wallet sign-in challenges.
func GenNonce() string {
	buf := make([]byte, 16)
	//nolint:errcheck
	rand.Read(buf)
	return hex.EncodeToString(buf)
}
