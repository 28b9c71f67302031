package bootstrap

import (
	"context"
	"time"

	"go-antiraid/internal/logging"
)

// drainTimeout bounds how long queued moderation jobs may keep running after
// the gateway closes.
const drainTimeout = 10 * time.Second

// Shutdown stops intake first, then drains the per-actor shards and the
// dispatcher so already decided actions still go out.
func Shutdown(c *Components) error {
	logging.Info("Starting graceful shutdown...")

	logging.Info("Closing gateway session...")
	if err := c.Session.Close(); err != nil {
		logging.Warn("Gateway close failed: %v", err)
	}

	logging.Info("Draining anti-raid shards...")
	c.Executor.Stop()
	if c.cancel != nil {
		c.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	logging.Info("Draining dispatcher (%d pending)...", c.Dispatcher.Pending())
	if err := c.Dispatcher.Stop(ctx); err != nil {
		logging.Warn("Dispatcher did not drain: %v", err)
	}

	logging.Info("Stopping watchdog...")
	c.Watchdog.Stop()
	c.Watchdog.Wait()

	if c.Metrics != nil {
		if err := c.Metrics.Shutdown(ctx); err != nil {
			logging.Warn("Metrics exporter shutdown failed: %v", err)
		}
	}

	logging.Info("Graceful shutdown complete")
	return logging.Close()
}

// EmergencyShutdown tears everything down without waiting for queues.
func EmergencyShutdown(c *Components) {
	logging.Critical("Emergency shutdown initiated")

	if c.cancel != nil {
		c.cancel()
	}
	if c.Session != nil {
		_ = c.Session.Close()
	}
	if c.Watchdog != nil {
		c.Watchdog.Stop()
	}
	if c.Dispatcher != nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_ = c.Dispatcher.Stop(ctx)
	}

	logging.Critical("Emergency shutdown complete")
	_ = logging.Close()
}
