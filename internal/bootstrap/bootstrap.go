package bootstrap

import (
	"fmt"

	"go-antiraid/internal/bot"
	"go-antiraid/internal/commands"
	"go-antiraid/internal/config"
	"go-antiraid/internal/decision"
	"go-antiraid/internal/dispatcher"
	"go-antiraid/internal/ingest"
	"go-antiraid/internal/logging"
	"go-antiraid/internal/metrics"
	"go-antiraid/internal/state"
	"go-antiraid/internal/vanity"
	"go-antiraid/internal/watchdog"
	"go-antiraid/internal/whitelist"
)

// Options are the command line overrides applied on top of the config file
// and the environment.
type Options struct {
	ConfigPath    string
	EnvFile       string
	LogLevel      string
	MetricsListen string
}

type Bootstrap struct {
	Config      *config.Config
	Components  *Components
	opts        Options
	initialized bool
}

type Components struct {
	// Anti-raid pipeline
	Policy     *config.PolicyStore
	Profiles   *config.ProfileStore
	Privileges *whitelist.PrivilegeSet
	Actors     *state.ActorState
	Controller *decision.Controller
	Executor   *ingest.ShardExecutor
	Dispatcher *dispatcher.Dispatcher
	HTTPPool   *dispatcher.HTTPPool
	APIBaseURL string

	// Discord surfaces
	Session  *bot.Session
	Router   *bot.Router
	Commands *commands.Handler
	Vanity   *vanity.Assigner

	// Monitoring
	Watchdog *watchdog.Watchdog
	Metrics  *metrics.MetricsExporter

	cancel func()
}

func New(opts Options) *Bootstrap {
	return &Bootstrap{
		opts:        opts,
		initialized: false,
	}
}

func (b *Bootstrap) Initialize() error {
	if err := b.loadConfig(); err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	if err := b.initializeLogging(); err != nil {
		return fmt.Errorf("logging init failed: %w", err)
	}

	if err := b.wireComponents(); err != nil {
		return fmt.Errorf("component wiring failed: %w", err)
	}

	b.initialized = true
	logging.Info("Bootstrap complete")
	return nil
}

func (b *Bootstrap) loadConfig() error {
	if err := config.LoadEnvFile(b.opts.EnvFile); err != nil {
		return err
	}

	cfg, err := config.Load(b.opts.ConfigPath)
	if err != nil {
		return err
	}

	if b.opts.LogLevel != "" {
		cfg.Logging.Level = b.opts.LogLevel
	}
	if b.opts.MetricsListen != "" {
		cfg.Metrics.Listen = b.opts.MetricsListen
	}
	if cfg.Bot.Token == "" {
		return fmt.Errorf("no bot token: set TOKEN or bot.token")
	}

	b.Config = cfg
	return nil
}

func (b *Bootstrap) initializeLogging() error {
	return logging.InitGlobalLogger(logging.ParseLevel(b.Config.Logging.Level), b.Config.Logging.File)
}

func (b *Bootstrap) wireComponents() error {
	return Wire(b)
}

func (b *Bootstrap) Start() error {
	if !b.initialized {
		return fmt.Errorf("bootstrap not initialized")
	}

	return StartAll(b.Components)
}

func (b *Bootstrap) Shutdown() error {
	if b.Components == nil {
		return logging.Close()
	}
	return Shutdown(b.Components)
}
