// Package watchdog runs the periodic housekeeping: evicting idle actors from
// the in-memory state and flagging components that stopped reporting.
package watchdog

import (
	"sync"
	"sync/atomic"
	"time"

	"go-antiraid/internal/config"
	"go-antiraid/internal/logging"
	"go-antiraid/internal/metrics"
	"go-antiraid/internal/state"
)

type ComponentHealth struct {
	Name          string
	LastHeartbeat atomic.Int64
	IsHealthy     atomic.Bool
	Threshold     time.Duration
}

type Watchdog struct {
	mu            sync.RWMutex
	components    map[string]*ComponentHealth
	checkInterval time.Duration
	actors        *state.ActorState
	now           func() time.Time

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewWatchdog(checkInterval time.Duration, actors *state.ActorState) *Watchdog {
	if checkInterval <= 0 {
		checkInterval = time.Minute
	}
	return &Watchdog{
		components:    make(map[string]*ComponentHealth),
		checkInterval: checkInterval,
		actors:        actors,
		now:           time.Now,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

func (w *Watchdog) RegisterComponent(name string, threshold time.Duration) {
	comp := &ComponentHealth{Name: name, Threshold: threshold}
	comp.IsHealthy.Store(true)

	w.mu.Lock()
	w.components[name] = comp
	w.mu.Unlock()
}

func (w *Watchdog) Heartbeat(name string) {
	w.mu.RLock()
	comp, exists := w.components[name]
	w.mu.RUnlock()

	if exists {
		comp.LastHeartbeat.Store(w.now().UnixNano())
		comp.IsHealthy.Store(true)
	}
}

func (w *Watchdog) Start() {
	go w.monitorLoop()
}

func (w *Watchdog) monitorLoop() {
	defer close(w.done)

	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Sweep()
			w.checkAllComponents()
		case <-w.stop:
			return
		}
	}
}

// SweepSlack is added to the longest window before a window counts as idle.
// Windows are stamped with message timestamps while the sweep runs on the
// local clock, so skew or late delivery must not evict a live burst.
const SweepSlack = time.Minute

// Sweep evicts idle, never-warned actors and returns how many went.
func (w *Watchdog) Sweep() int {
	if w.actors == nil {
		return 0
	}
	start := time.Now()
	removed := w.actors.Sweep(w.now(), config.LongestWindow()+SweepSlack)

	windows, warns := w.actors.Tracked()
	metrics.SweptActors.Add(float64(removed))
	metrics.TrackedActors.WithLabelValues("windows").Set(float64(windows))
	metrics.TrackedActors.WithLabelValues("warns").Set(float64(warns))

	if removed > 0 {
		logging.Debug("Swept %d idle actors in %s (%d windows, %d warned left)", removed, logging.Since(start), windows, warns)
	}
	return removed
}

func (w *Watchdog) checkAllComponents() {
	now := w.now().UnixNano()

	w.mu.RLock()
	defer w.mu.RUnlock()

	for name, comp := range w.components {
		lastBeat := comp.LastHeartbeat.Load()
		if lastBeat == 0 {
			continue
		}

		elapsed := time.Duration(now - lastBeat)
		if elapsed > comp.Threshold && comp.IsHealthy.Swap(false) {
			logging.Error("Watchdog: %s unhealthy (no heartbeat for %v)", name, elapsed)
		}
	}
}

func (w *Watchdog) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
}

// Wait blocks until the monitor loop started by Start has exited.
func (w *Watchdog) Wait() {
	<-w.done
}

// GetStatus reports every registered component's health by name.
func (w *Watchdog) GetStatus() map[string]bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	status := make(map[string]bool, len(w.components))
	for name, comp := range w.components {
		status[name] = comp.IsHealthy.Load()
	}
	return status
}
