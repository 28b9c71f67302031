package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"go-antiraid/internal/bootstrap"
	"go-antiraid/internal/logging"
)

func main() {
	app := &cli.App{
		Name:  "antiraid",
		Usage: "Discord anti-raid moderation bot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the JSON config file (missing file means defaults)",
				Value:   "config.json",
				EnvVars: []string{"ANTIRAID_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "env-file",
				Usage:   "dotenv file loaded before reading the environment",
				Value:   ".env",
				EnvVars: []string{"ANTIRAID_ENV_FILE"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn, error or critical",
			},
			&cli.StringFlag{
				Name:  "metrics-listen",
				Usage: "address for the /metrics and /healthz endpoints",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "antiraid: %v\n", err)
		os.Exit(1)
	}
}

func run(cctx *cli.Context) error {
	fmt.Println("Starting Anti-Raid bot")

	b := bootstrap.New(bootstrap.Options{
		ConfigPath:    cctx.String("config"),
		EnvFile:       cctx.String("env-file"),
		LogLevel:      cctx.String("log-level"),
		MetricsListen: cctx.String("metrics-listen"),
	})

	if err := b.Initialize(); err != nil {
		return err
	}

	if err := b.Start(); err != nil {
		bootstrap.EmergencyShutdown(b.Components)
		return err
	}

	logging.Info("Anti-raid running with prefix %q; press Ctrl+C to stop", b.Config.Bot.Prefix)

	waitForShutdown()

	return b.Shutdown()
}

func waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logging.Info("Shutdown signal received")
}
