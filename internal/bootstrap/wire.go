package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go-antiraid/internal/bot"
	"go-antiraid/internal/commands"
	"go-antiraid/internal/config"
	"go-antiraid/internal/decision"
	"go-antiraid/internal/detectors"
	"go-antiraid/internal/dispatcher"
	"go-antiraid/internal/ingest"
	"go-antiraid/internal/logging"
	"go-antiraid/internal/metrics"
	"go-antiraid/internal/notifier"
	"go-antiraid/internal/state"
	"go-antiraid/internal/vanity"
	"go-antiraid/internal/watchdog"
	"go-antiraid/internal/whitelist"
)

// gatewayStaleAfter is how long the gateway may stay silent before the
// watchdog reports it. Quiet guilds legitimately go minutes without events.
const gatewayStaleAfter = 10 * time.Minute

func Wire(b *Bootstrap) error {
	logging.Info("Wiring components...")
	cfg := b.Config

	session, err := bot.New(cfg.Bot.Token)
	if err != nil {
		return err
	}

	policy := config.NewPolicyStore(cfg.AntiRaid.Enabled, cfg.AntiRaid.Level)
	profiles := config.NewProfileStoreFromConfig(cfg)
	privileges := whitelist.New(cfg.Bot.ImmortalIDs)
	actors := state.NewActorState()

	httpPool := dispatcher.NewHTTPPool(dispatcher.HTTPPoolConfig{Size: cfg.Network.HTTPPoolSize})
	rateLimiter := dispatcher.NewRateLimitMonitor(cfg.Network.RequestsPerSec)
	timeouts := dispatcher.NewTimeoutExecutor(httpPool, rateLimiter, dispatcher.TimeoutExecutorConfig{
		Token:   cfg.Bot.Token,
		BaseURL: cfg.Network.APIBaseURL,
	})
	messages := notifier.New(session.Discord())

	dispatch := dispatcher.New(dispatcher.Config{
		Workers:      cfg.Network.WorkerCount,
		JobQueueSize: cfg.Network.JobQueueSize,
		Retry:        dispatcher.RetryPolicy{MaxAttempts: cfg.Network.MaxAttempts},
	}, timeouts, messages)

	controller := decision.NewController(decision.ControllerOptions{
		Policy:      policy,
		Privileges:  privileges,
		Tracker:     detectors.NewRateTracker(policy, actors.Windows),
		Ledger:      decision.NewLedger(actors.Warns),
		Profiles:    profiles,
		Sink:        dispatch,
		SanctionFor: cfg.Runtime.SanctionDuration(),
	})

	executor := ingest.NewShardExecutor(ingest.Config{
		Shards:         cfg.Runtime.Shards,
		QueueSize:      cfg.Runtime.QueueSize,
		EnqueueTimeout: cfg.Runtime.EnqueueWait(),
	})

	watchdogInst := watchdog.NewWatchdog(cfg.Runtime.SweepEvery(), actors)
	watchdogInst.RegisterComponent(bot.GatewayComponent, gatewayStaleAfter)

	var exporter *metrics.MetricsExporter
	if cfg.Metrics.Listen != "" {
		exporter = metrics.NewMetricsExporter(cfg.Metrics.Listen)
		exporter.ReportHealth(watchdogInst.GetStatus)
	}

	assigner := vanity.NewAssigner(session.Discord(), profiles, messages, cfg.Vanity.CacheFor())

	handler := commands.NewHandler(session.Discord(), commands.Options{
		Prefix:     cfg.Bot.Prefix,
		Controller: controller,
		Privileges: privileges,
		Cache:      session.Discord().State,
		GuildCount: session.GuildCount,
	})

	ctx, cancel := context.WithCancel(context.Background())
	router := bot.NewRouter(ctx, controller, handler, assigner, executor, watchdogInst)
	session.SetupEventHandlers(router)

	b.Components = &Components{
		Policy:     policy,
		Profiles:   profiles,
		Privileges: privileges,
		Actors:     actors,
		Controller: controller,
		Executor:   executor,
		Dispatcher: dispatch,
		HTTPPool:   httpPool,
		APIBaseURL: cfg.Network.APIBaseURL,
		Session:    session,
		Router:     router,
		Commands:   handler,
		Vanity:     assigner,
		Watchdog:   watchdogInst,
		Metrics:    exporter,
		cancel:     cancel,
	}

	logging.Info("Component wiring complete (level %s, anti-raid enabled: %t, %d shards)",
		policy.Level(), policy.Enabled(), executor.Shards())
	return nil
}

func StartAll(c *Components) error {
	logging.Info("Starting components...")

	if c.Metrics != nil {
		if err := c.Metrics.Start(); err != nil {
			return fmt.Errorf("metrics exporter failed: %w", err)
		}
	}

	// Start watchdog first to monitor other components
	c.Watchdog.Start()
	logging.Info("Watchdog started")

	c.HTTPPool.Warmup(c.APIBaseURL)
	logging.Info("HTTP pool warmed (%d clients)", c.HTTPPool.Size())

	c.Dispatcher.Start()

	if err := c.Session.Connect(); err != nil {
		return fmt.Errorf("gateway connection failed: %w", err)
	}

	logging.Info("All components started")
	return nil
}
