package state

import "github.com/puzpuzpuz/xsync/v3"

// WarnStore counts anti-raid breaches per actor. Counts only grow until
// Reset is called; nothing decays them.
type WarnStore struct {
	warns *xsync.MapOf[string, int]
}

func NewWarnStore() *WarnStore {
	return &WarnStore{
		warns: xsync.NewMapOf[string, int](),
	}
}

// Increment adds one to the actor's count and returns the value it had before.
func (ws *WarnStore) Increment(actorID string) int {
	var prev int
	ws.warns.Compute(actorID, func(old int, loaded bool) (int, bool) {
		prev = old
		return old + 1, false
	})
	return prev
}

func (ws *WarnStore) Get(actorID string) int {
	n, _ := ws.warns.Load(actorID)
	return n
}

// Reset drops the actor's count and reports whether there was one.
func (ws *WarnStore) Reset(actorID string) bool {
	_, existed := ws.warns.LoadAndDelete(actorID)
	return existed
}

func (ws *WarnStore) Len() int {
	return ws.warns.Size()
}
