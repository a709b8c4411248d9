package internal

import (
	"context"
	"math"
	"sync"
	"time"
)

type MiningState string

const (
	MiningIdle     MiningState = "idle"
	MiningStarting MiningState = "starting"
	MiningActive   MiningState = "active"
	MiningStopping MiningState = "stopping"
)

// ClockTick is the accrual granularity. The rate is tokens per minute,
// so each tick adds rate/600 and a full minute of ticks sums to rate.
const ClockTick = 100 * time.Millisecond

const ticksPerMinute = float64(time.Minute / ClockTick)

var miningTransitions = map[MiningState]map[MiningState]bool{
	MiningIdle:     {MiningStarting: true},
	MiningStarting: {MiningActive: true, MiningIdle: true},
	MiningActive:   {MiningStopping: true},
	MiningStopping: {MiningIdle: true},
}

func CanTransition(from, to MiningState) bool {
	return miningTransitions[from][to]
}

// EffectiveRate combines the base rate with boost percentages. Percentages
// are fractional (0.05 means +5%) and stack additively.
func EffectiveRate(baseRate, nftBoostPercent, referralBonusPercent float64) float64 {
	return baseRate * (1 + nftBoostPercent + referralBonusPercent)
}

// SettlementMinutes converts an elapsed session duration into billable
// minutes. Any session that ran at all costs at least one minute against
// the daily limit; longer sessions round to the nearest minute.
func SettlementMinutes(start, end time.Time) int {
	elapsed := end.Sub(start)
	if elapsed <= 0 {
		return 1
	}
	minutes := int(math.Round(elapsed.Minutes()))
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// SettlementAmount is the authoritative earned amount for a closed
// session: the per-minute effective rate integrated over wall-clock time.
func SettlementAmount(rate float64, start, end time.Time) float64 {
	elapsed := end.Sub(start)
	if elapsed <= 0 {
		return 0
	}
	return rate * elapsed.Minutes()
}

// RemainingMinutes clamps at zero once the day's allowance is used up.
func RemainingMinutes(minutesMined, maxMinutes int) int {
	remaining := maxMinutes - minutesMined
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CapElapsed bounds reconciled sessions: a session abandoned with the tab
// closed settles at most the abandon window, never its full idle span.
func CapElapsed(start, now time.Time, max time.Duration) time.Time {
	if now.Sub(start) > max {
		return start.Add(max)
	}
	return now
}

// Leveling: each level requires 50% more experience than the previous,
// starting at 100. Experience carries over across level-ups.
func NextLevelExp(level int) int64 {
	exp := 100.0
	for i := 1; i < level; i++ {
		exp *= 1.5
	}
	return int64(math.Round(exp))
}

// ApplyExperience adds gained experience and walks level-ups until the
// threshold is no longer met. Returns the new totals and whether the
// avatar should advance a stage (every 5 levels).
func ApplyExperience(level int, experience, gained int64) (newLevel int, newExperience int64, newNextLevelExp int64, leveledUp bool) {
	newLevel = level
	newExperience = experience + gained
	newNextLevelExp = NextLevelExp(newLevel)
	for newExperience >= newNextLevelExp {
		newExperience -= newNextLevelExp
		newLevel++
		newNextLevelExp = NextLevelExp(newLevel)
		leveledUp = true
	}
	return newLevel, newExperience, newNextLevelExp, leveledUp
}

// AvatarStage advances one stage every 5 levels, capped at stage 5.
func AvatarStage(level int) int {
	stage := (level-1)/5 + 1
	if stage > 5 {
		stage = 5
	}
	return stage
}

// SessionClock accrues earnings for one open session on the server side.
// The stored session row remains the source of truth for settlement; the
// clock only feeds live status reads.
type SessionClock struct {
	mu        sync.Mutex
	sessionID string
	rate      float64
	earned    float64
	started   time.Time
	cancel    context.CancelFunc
}

func NewSessionClock(sessionID string, rate float64, started time.Time) *SessionClock {
	return &SessionClock{
		sessionID: sessionID,
		rate:      rate,
		started:   started,
	}
}

func (c *SessionClock) SessionID() string {
	return c.sessionID
}

// Tick advances the accumulator by one clock interval.
func (c *SessionClock) Tick() {
	c.mu.Lock()
	c.earned += c.rate / ticksPerMinute
	c.mu.Unlock()
}

func (c *SessionClock) SetRate(rate float64) {
	c.mu.Lock()
	c.rate = rate
	c.mu.Unlock()
}

func (c *SessionClock) Rate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}

func (c *SessionClock) Earned() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.earned
}

func (c *SessionClock) Started() time.Time {
	return c.started
}

// Run ticks until ctx is cancelled or Stop is called.
func (c *SessionClock) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	ticker := time.NewTicker(ClockTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Tick()
		}
	}
}

func (c *SessionClock) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// ClockRegistry tracks the running clock per user. A user has at most one
// open session, enforced upstream with a mutex and a DB check; the
// registry mirrors that.
type ClockRegistry struct {
	mu     sync.Mutex
	clocks map[string]*SessionClock
}

func NewClockRegistry() *ClockRegistry {
	return &ClockRegistry{clocks: map[string]*SessionClock{}}
}

func (r *ClockRegistry) Put(userID string, clock *SessionClock) {
	r.mu.Lock()
	r.clocks[userID] = clock
	r.mu.Unlock()
}

func (r *ClockRegistry) Get(userID string) *SessionClock {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clocks[userID]
}

// Remove stops and detaches the user's clock, returning it for a final
// read. Nil when no clock was running (e.g. after a process restart).
func (r *ClockRegistry) Remove(userID string) *SessionClock {
	r.mu.Lock()
	clock := r.clocks[userID]
	delete(r.clocks, userID)
	r.mu.Unlock()
	if clock != nil {
		clock.Stop()
	}
	return clock
}
