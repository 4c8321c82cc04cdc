package main

import (
	"context"
	"os"

	"github.com/desertthunder/playrelay/internal/services"
	"github.com/desertthunder/playrelay/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnvFile(".env"); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	config, err := shared.ResolveConfig("config.toml")
	if err != nil {
		logger.Warn("failed to load config, using defaults", "error", err)
		config = shared.DefaultConfig()
		config.ApplyEnv()
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		API:    services.NewAPIService("http://"+config.Server.Addr(), nil),
		Logger: logger,
	})

	app := &cli.Command{
		Name:    "playrelay",
		Usage:   "Relay play commands to Spotify with automatic token refresh",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: "info",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			shared.SetLogLevel(logger, shared.ParseLogLevel(cmd.String("log-level")))
			return ctx, nil
		},
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
