package config

import (
	"strings"
	"time"
)

type RaidLevel uint8

const (
	RaidLow RaidLevel = iota
	RaidMedium
	RaidHigh
)

// RateLimit is the breach condition for one level: Threshold messages inside Window.
type RateLimit struct {
	Threshold int
	Window    time.Duration
}

// Stricter levels need fewer messages in a shorter window.
var RaidLevelLimits = map[RaidLevel]RateLimit{
	RaidLow: {
		Threshold: 4,
		Window:    3000 * time.Millisecond,
	},
	RaidMedium: {
		Threshold: 3,
		Window:    2000 * time.Millisecond,
	},
	RaidHigh: {
		Threshold: 2,
		Window:    1000 * time.Millisecond,
	},
}

func (l RaidLevel) Limit() RateLimit {
	if limit, ok := RaidLevelLimits[l]; ok {
		return limit
	}
	return RaidLevelLimits[RaidMedium]
}

func (l RaidLevel) String() string {
	switch l {
	case RaidLow:
		return "low"
	case RaidMedium:
		return "medium"
	case RaidHigh:
		return "high"
	default:
		return "medium"
	}
}

// ParseRaidLevel never fails: anything unrecognized is medium.
func ParseRaidLevel(s string) RaidLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return RaidLow
	case "high":
		return RaidHigh
	default:
		return RaidMedium
	}
}

// IsRaidLevel reports whether s names a level exactly, so callers can tell
// the user their input was replaced by the default.
func IsRaidLevel(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "medium", "high":
		return true
	}
	return false
}

// LongestWindow is the widest window any level uses. Idle state must be kept
// at least this long so a level change never loses history it would count.
func LongestWindow() time.Duration {
	var longest time.Duration
	for _, limit := range RaidLevelLimits {
		if limit.Window > longest {
			longest = limit.Window
		}
	}
	return longest
}
