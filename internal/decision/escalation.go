package decision

import "go-antiraid/internal/state"

// Standing is where an actor sits on the escalation ladder.
type Standing uint8

const (
	StandingClean Standing = iota
	StandingWarned
	StandingEscalating
)

func (s Standing) String() string {
	switch s {
	case StandingClean:
		return "clean"
	case StandingWarned:
		return "warned"
	case StandingEscalating:
		return "escalating"
	default:
		return "unknown"
	}
}

type Verdict uint8

const (
	VerdictWarn Verdict = iota
	VerdictSanction
)

func (v Verdict) String() string {
	if v == VerdictSanction {
		return "sanction"
	}
	return "warn"
}

type transition struct {
	verdict Verdict
	next    Standing
}

// escalationTable maps the standing before a breach to what that breach earns.
var escalationTable = map[Standing]transition{
	StandingClean:      {verdict: VerdictWarn, next: StandingWarned},
	StandingWarned:     {verdict: VerdictWarn, next: StandingEscalating},
	StandingEscalating: {verdict: VerdictSanction, next: StandingEscalating},
}

// StandingFor derives the standing from a warn count.
func StandingFor(warnings int) Standing {
	switch {
	case warnings <= 0:
		return StandingClean
	case warnings == 1:
		return StandingWarned
	default:
		return StandingEscalating
	}
}

// Ledger owns the per-actor warn counts. Counts are never decayed; only
// Reset clears them.
type Ledger struct {
	warns *state.WarnStore
}

func NewLedger(warns *state.WarnStore) *Ledger {
	return &Ledger{warns: warns}
}

// BumpAndDecide commits the breach before deciding, so a failed side effect
// can never let an actor skip a rung.
func (l *Ledger) BumpAndDecide(actorID string) Verdict {
	prev := l.warns.Increment(actorID)
	return escalationTable[StandingFor(prev)].verdict
}

func (l *Ledger) Count(actorID string) int {
	return l.warns.Get(actorID)
}

func (l *Ledger) Reset(actorID string) bool {
	return l.warns.Reset(actorID)
}
