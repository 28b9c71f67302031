package state

import "time"

// ActorState bundles the two per-actor maps the anti-raid engine owns. They
// share keys but nothing links them structurally.
type ActorState struct {
	Windows *WindowStore
	Warns   *WarnStore
}

func NewActorState() *ActorState {
	return &ActorState{
		Windows: NewWindowStore(),
		Warns:   NewWarnStore(),
	}
}

// Sweep evicts actors whose window expired and who have never been warned
// (or were reset). Warn counts are left alone.
func (a *ActorState) Sweep(now time.Time, window time.Duration) int {
	return a.Windows.Sweep(now.UnixMilli(), window, func(actorID string) bool {
		return a.Warns.Get(actorID) > 0
	})
}

// Tracked returns how many actors currently have a window or a warn count entry.
func (a *ActorState) Tracked() (windows, warns int) {
	return a.Windows.Len(), a.Warns.Len()
}
