package watchdog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go-antiraid/internal/state"
)

func TestSweepKeepsWarnedActors(t *testing.T) {
	actors := state.NewActorState()
	base := time.UnixMilli(1_000_000)

	actors.Windows.Record("idle", base.UnixMilli(), 3*time.Second)
	actors.Windows.Record("warned", base.UnixMilli(), 3*time.Second)
	actors.Warns.Increment("warned")

	w := NewWatchdog(time.Hour, actors)
	w.now = func() time.Time { return base.Add(2 * time.Second) }
	assert.Equal(t, 0, w.Sweep())

	w.now = func() time.Time { return base.Add(10 * time.Second) }
	assert.Equal(t, 0, w.Sweep())

	w.now = func() time.Time { return base.Add(2 * time.Minute) }
	assert.Equal(t, 1, w.Sweep())

	windows, warns := actors.Tracked()
	assert.Equal(t, 1, windows)
	assert.Equal(t, 1, warns)
}

func TestSweepToleratesClockSkew(t *testing.T) {
	actors := state.NewActorState()
	msgTime := time.UnixMilli(5_000_000)

	// local clock runs 30s ahead of the message timestamps
	w := NewWatchdog(time.Hour, actors)
	w.now = func() time.Time { return msgTime.Add(30 * time.Second) }

	window := 2 * time.Second
	actors.Windows.Record("burst", msgTime.UnixMilli(), window)
	actors.Windows.Record("burst", msgTime.Add(500*time.Millisecond).UnixMilli(), window)
	assert.Equal(t, 0, w.Sweep())

	// the burst keeps counting where it left off
	assert.Equal(t, 3, actors.Windows.Record("burst", msgTime.Add(time.Second).UnixMilli(), window))
}

func TestComponentHealth(t *testing.T) {
	w := NewWatchdog(time.Hour, nil)
	now := time.Unix(100, 0)
	w.now = func() time.Time { return now }

	w.RegisterComponent("gateway", time.Minute)
	assert.Equal(t, map[string]bool{"gateway": true}, w.GetStatus())

	w.Heartbeat("gateway")
	now = now.Add(2 * time.Minute)
	w.checkAllComponents()
	assert.Equal(t, map[string]bool{"gateway": false}, w.GetStatus())

	w.Heartbeat("gateway")
	assert.True(t, w.GetStatus()["gateway"])
	assert.Equal(t, 0, w.Sweep())
}

func TestStartStop(t *testing.T) {
	w := NewWatchdog(time.Millisecond, state.NewActorState())
	w.Start()
	time.Sleep(5 * time.Millisecond)
	w.Stop()
	w.Stop()
	w.Wait()
}
