package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/playrelay/internal/credentials"
	"github.com/desertthunder/playrelay/internal/relay"
	"github.com/desertthunder/playrelay/internal/repositories"
	"github.com/desertthunder/playrelay/internal/server"
	"github.com/desertthunder/playrelay/internal/shared"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

// Serve starts the relay server and blocks until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := shared.LoadEnvFile(cmd.String("env")); err != nil {
		return err
	}

	config, err := shared.ResolveConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	srv, closeFn, err := r.newServer(config)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	r.writePlain("Listening on http://%s (login at /login)\n", srv.Addr())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return <-errCh
}

// newServer wires the credential store, relay, and optional play history into a server.
//
// The returned close function releases the history database.
func (r *Runner) newServer(config *shared.Config) (*server.Server, func() error, error) {
	if err := config.Validate(); err != nil {
		return nil, nil, err
	}

	oauth := credentials.NewOAuthConfig(config.Credentials.Spotify, config.Spotify)
	timeout := config.Spotify.TimeoutDuration()

	store := credentials.NewStore(oauth, credentials.StoreOpts{Timeout: timeout, Logger: r.logger})
	opts := relay.Opts{
		Credentials: store,
		OAuth:       oauth,
		Player:      relay.NewPlayer(config.Spotify.APIURL, nil, timeout),
		FrontendURI: config.Credentials.Spotify.FrontendURI,
		Logger:      r.logger,
	}

	var history server.History
	closeFn := func() error { return nil }

	if config.History.Enabled {
		db, err := shared.OpenHistoryDatabase(config.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open history database: %w", err)
		}

		repo := repositories.NewPlayRepository(db)
		opts.Recorder = repo
		history = repo
		closeFn = db.Close
	} else {
		r.logger.Info("play history disabled")
	}

	srv := server.New(server.Opts{
		Relay:   relay.New(opts),
		Status:  store,
		History: history,
		Config:  config.Server,
		Logger:  r.logger,
	})

	return srv, closeFn, nil
}
