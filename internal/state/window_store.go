package state

import (
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// WindowStore keeps, per actor, the millisecond timestamps of recent messages.
// Every access prunes entries that fell out of the window, so a slice never
// holds more than one window's worth of events.
type WindowStore struct {
	windows *xsync.MapOf[string, []int64]
}

func NewWindowStore() *WindowStore {
	return &WindowStore{
		windows: xsync.NewMapOf[string, []int64](),
	}
}

// Record prunes the actor's window relative to nowMs, appends nowMs and
// returns the resulting count. Entries in [nowMs-window, nowMs] are kept.
func (ws *WindowStore) Record(actorID string, nowMs int64, window time.Duration) int {
	var count int
	ws.windows.Compute(actorID, func(old []int64, loaded bool) ([]int64, bool) {
		kept := prune(old, nowMs-window.Milliseconds(), 1)
		kept = append(kept, nowMs)
		count = len(kept)
		return kept, false
	})
	return count
}

func (ws *WindowStore) Delete(actorID string) {
	ws.windows.Delete(actorID)
}

func (ws *WindowStore) Len() int {
	return ws.windows.Size()
}

// Sweep prunes every window. Windows left empty are deleted unless retain
// reports the actor must be kept. Returns the number of deleted actors.
func (ws *WindowStore) Sweep(nowMs int64, window time.Duration, retain func(actorID string) bool) int {
	cutoff := nowMs - window.Milliseconds()
	removed := 0

	ws.windows.Range(func(actorID string, _ []int64) bool {
		ws.windows.Compute(actorID, func(old []int64, loaded bool) ([]int64, bool) {
			if !loaded {
				return nil, true
			}
			kept := prune(old, cutoff, 0)
			if len(kept) == 0 && (retain == nil || !retain(actorID)) {
				removed++
				return nil, true
			}
			return kept, false
		})
		return true
	})
	return removed
}

// prune copies the entries at or after cutoff into a new slice with extra
// spare capacity. The input slice is never modified.
func prune(entries []int64, cutoff int64, extra int) []int64 {
	kept := make([]int64, 0, len(entries)+extra)
	for _, ts := range entries {
		if ts >= cutoff {
			kept = append(kept, ts)
		}
	}
	return kept
}
