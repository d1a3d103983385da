// Package costguard bounds AI spend per run. It only answers yes/no; the
// caller decides whether to wait, skip the unit of work, or abort the run.
package costguard

import (
	"sync"
	"time"

	"github.com/standatpd/pulsetrends/internal/logger"
)

// Reason tags for rejected calls, in precedence order.
const (
	ReasonPerCallLimit = "per_call_limit"
	ReasonMinuteLimit  = "minute_limit"
	ReasonDailyLimit   = "daily_limit"
)

const (
	minuteWindow = 60_000 * time.Millisecond
	dailyWindow  = 86_400_000 * time.Millisecond
)

type Limits struct {
	MaxCostPerCallUSD float64
	MaxCallsPerMinute int
	MaxDailyCostUSD   float64
	CostPerToken      float64
}

// Decision is the answer to CanProceed. Reason is set only when not allowed.
type Decision struct {
	Allowed          bool
	Reason           string
	EstimatedCostUSD float64
}

// Usage is the running state reported after Record.
type Usage struct {
	CostUSD          float64
	RunningDailyCost float64
	CallsToday       int
}

// Tracker accumulates per-minute call counts and running daily cost against
// the configured ceilings. Windows are fixed wall-clock spans reset lazily on
// each CanProceed, not sliding windows. State is process-local and lost on
// exit; every cron invocation starts cold.
type Tracker struct {
	mu sync.Mutex

	limits Limits

	callsThisMinute int
	callsToday      int
	dailyCostUSD    float64
	lastMinuteReset time.Time
	lastDailyReset  time.Time

	now func() time.Time // stubbed in tests
}

func New(limits Limits) *Tracker {
	t := &Tracker{
		limits: limits,
		now:    time.Now,
	}
	t.lastMinuteReset = t.now()
	t.lastDailyReset = t.lastMinuteReset
	return t
}

// CanProceed reports whether a call with the given token estimate fits the
// ceilings. First matching rejection wins: per-call cost, then calls per
// minute, then projected daily cost.
func (t *Tracker) CanProceed(estimatedTokens int) Decision {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.checkReset()

	cost := float64(estimatedTokens) * t.limits.CostPerToken

	if t.limits.MaxCostPerCallUSD > 0 && cost > t.limits.MaxCostPerCallUSD {
		logger.Warn("cost guard: call too expensive", "estimated_usd", cost, "limit_usd", t.limits.MaxCostPerCallUSD)
		return Decision{Allowed: false, Reason: ReasonPerCallLimit, EstimatedCostUSD: cost}
	}

	if t.limits.MaxCallsPerMinute > 0 && t.callsThisMinute >= t.limits.MaxCallsPerMinute {
		logger.Warn("cost guard: minute ceiling reached", "calls", t.callsThisMinute, "limit", t.limits.MaxCallsPerMinute)
		return Decision{Allowed: false, Reason: ReasonMinuteLimit, EstimatedCostUSD: cost}
	}

	if t.limits.MaxDailyCostUSD > 0 && t.dailyCostUSD+cost > t.limits.MaxDailyCostUSD {
		logger.Warn("cost guard: daily ceiling would be exceeded", "daily_usd", t.dailyCostUSD, "estimated_usd", cost, "limit_usd", t.limits.MaxDailyCostUSD)
		return Decision{Allowed: false, Reason: ReasonDailyLimit, EstimatedCostUSD: cost}
	}

	return Decision{Allowed: true, EstimatedCostUSD: cost}
}

// Record accounts for a completed call with the actual token usage.
func (t *Tracker) Record(actualTokens int) Usage {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.checkReset()

	cost := float64(actualTokens) * t.limits.CostPerToken
	t.callsThisMinute++
	t.callsToday++
	t.dailyCostUSD += cost

	return Usage{
		CostUSD:          cost,
		RunningDailyCost: t.dailyCostUSD,
		CallsToday:       t.callsToday,
	}
}

// Stats returns current usage counters for the run summary.
func (t *Tracker) Stats() map[string]interface{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	return map[string]interface{}{
		"calls_this_minute": t.callsThisMinute,
		"calls_today":       t.callsToday,
		"daily_cost_usd":    t.dailyCostUSD,
		"minute_reset":      t.lastMinuteReset,
		"daily_reset":       t.lastDailyReset,
	}
}

// checkReset rolls the fixed windows if they have elapsed. Caller holds mu.
func (t *Tracker) checkReset() {
	now := t.now()

	if now.Sub(t.lastMinuteReset) > minuteWindow {
		t.callsThisMinute = 0
		t.lastMinuteReset = now
	}

	if now.Sub(t.lastDailyReset) > dailyWindow {
		logger.Info("cost guard: daily window reset", "spent_usd", t.dailyCostUSD, "calls", t.callsToday)
		t.callsToday = 0
		t.dailyCostUSD = 0
		t.lastDailyReset = now
	}
}
