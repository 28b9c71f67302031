package config

import "sync/atomic"

// PolicyStore holds the live anti-raid toggles. Components receive a
// *PolicyStore instead of reading package state, so tests can run several
// policies side by side.
type PolicyStore struct {
	enabled atomic.Bool
	level   atomic.Uint32
}

func NewPolicyStore(enabled bool, level string) *PolicyStore {
	ps := &PolicyStore{}
	ps.enabled.Store(enabled)
	ps.level.Store(uint32(ParseRaidLevel(level)))
	return ps
}

func (ps *PolicyStore) Enabled() bool {
	return ps.enabled.Load()
}

func (ps *PolicyStore) SetEnabled(enabled bool) {
	ps.enabled.Store(enabled)
}

// Toggle flips the enabled flag and returns the new value.
func (ps *PolicyStore) Toggle() bool {
	for {
		old := ps.enabled.Load()
		if ps.enabled.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

func (ps *PolicyStore) Level() RaidLevel {
	return RaidLevel(ps.level.Load())
}

// SetLevel stores the parsed level and returns it. Unknown names become medium.
func (ps *PolicyStore) SetLevel(name string) RaidLevel {
	level := ParseRaidLevel(name)
	ps.level.Store(uint32(level))
	return level
}

func (ps *PolicyStore) Limit() RateLimit {
	return ps.Level().Limit()
}
