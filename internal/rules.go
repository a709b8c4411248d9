package internal

import "time"

// MiningNoviceThreshold is the lifetime mined total that unlocks the
// mining-novice achievement.
const MiningNoviceThreshold = 100.0

func MiningNoviceEligible(totalMined float64) bool {
	return totalMined >= MiningNoviceThreshold
}

// EarlyAdopterEligible holds for users whose account was created inside
// the launch epoch window.
func EarlyAdopterEligible(joinedAt, epochStart, epochEnd time.Time) bool {
	return !joinedAt.Before(epochStart) && joinedAt.Before(epochEnd)
}

type StartDecision int

const (
	StartAllowed StartDecision = iota
	StartRejectedActiveSession
	StartRejectedQuota
)

// DecideStart gates a session start. Rejections are pure reads: a
// rejected start leaves no trace, so repeating it decides the same way.
func DecideStart(hasOpenSession bool, minutesMined, maxMinutes int) StartDecision {
	if hasOpenSession {
		return StartRejectedActiveSession
	}
	if RemainingMinutes(minutesMined, maxMinutes) == 0 {
		return StartRejectedQuota
	}
	return StartAllowed
}

// DecideJoinCrew rejects any join or create while a membership exists;
// a user belongs to at most one crew.
func DecideJoinCrew(currentCrewID string) bool {
	return currentCrewID == ""
}
