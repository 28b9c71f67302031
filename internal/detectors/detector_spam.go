package detectors

import (
	"go-antiraid/internal/config"
	"go-antiraid/internal/state"
)

// Evaluation is the outcome of one recorded message.
type Evaluation struct {
	Count     int
	Threshold int
	Breached  bool
}

// RateTracker is a sliding window message counter. It reads the active
// policy on every call, so a level change applies to the very next message.
type RateTracker struct {
	policy  *config.PolicyStore
	windows *state.WindowStore
}

func NewRateTracker(policy *config.PolicyStore, windows *state.WindowStore) *RateTracker {
	return &RateTracker{
		policy:  policy,
		windows: windows,
	}
}

func (rt *RateTracker) RecordAndEvaluate(actorID string, nowMs int64) Evaluation {
	limit := rt.policy.Limit()
	count := rt.windows.Record(actorID, nowMs, limit.Window)

	return Evaluation{
		Count:     count,
		Threshold: limit.Threshold,
		Breached:  count >= limit.Threshold,
	}
}

// Forget drops the actor's recorded messages.
func (rt *RateTracker) Forget(actorID string) {
	rt.windows.Delete(actorID)
}
