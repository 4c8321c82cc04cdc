package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/playrelay/internal/formatter"
	"github.com/desertthunder/playrelay/internal/shared"
	"github.com/desertthunder/playrelay/internal/ui"
	"github.com/urfave/cli/v3"
)

// Login opens the running server's /login page, which redirects to Spotify.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	url := r.api.LoginURL()

	if !cmd.Bool("no-browser") {
		err := r.openBrowser(url)
		if err == nil {
			return r.writePlain("Opened %s in your browser\n", url)
		}
		r.logger.Warn("could not open browser", "error", err)
	}

	return r.writePlain("Open this URL to log in:\n%s\n", url)
}

// Play asks the running server to play a track.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	uri := cmd.StringArg("uri")
	if uri == "" {
		return fmt.Errorf("%w: track uri (e.g. spotify:track:4uLU6hMCjMI75M1A2tKUQC)", shared.ErrMissingArgument)
	}

	r.logger.Debug("sending play command", "uri", uri)

	msg, err := r.api.Play(ctx, uri)
	if err != nil {
		return fmt.Errorf("play failed: %w", err)
	}

	return r.writePlain("%s\n", ui.Success("✓ "+msg))
}

// Status reports whether the server is reachable and logged in.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	health, err := r.api.Health(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrServiceUnavailable) {
			r.writePlain("%s\n", ui.Error("✗ Server not running"))
			r.writePlain("%s\n", ui.Help("Start it with: playrelay serve"))
		}
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(health, true)
	}

	r.writePlain("%s\n", ui.Title("playrelay"))
	r.writePlain("Server:        %s\n", ui.Success(health.Status))
	if health.Authenticated {
		r.writePlain("Authenticated: %s\n", ui.Success("yes"))
	} else {
		r.writePlain("Authenticated: %s\n", ui.Warn("no"))
		r.writePlain("%s\n", ui.Help("Log in with: playrelay login"))
	}
	return nil
}

// History prints or exports recent plays.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	plays, err := r.api.History(ctx, int(cmd.Int("limit")))
	if err != nil {
		if errors.Is(err, shared.ErrHistoryDisabled) {
			r.writePlain("%s\n", ui.Warn("Play history is disabled on the server"))
		}
		return err
	}

	if path := cmd.String("output"); path != "" {
		var format formatter.Format
		if name := cmd.String("format"); name != "" {
			if format, err = formatter.ParseFormat(name); err != nil {
				return err
			}
		}

		if err := formatter.WriteExport(plays, path, format); err != nil {
			return err
		}
		r.logger.Info("history exported", "path", path, "plays", len(plays))
		return r.writePlain("%s\n", ui.Success(fmt.Sprintf("✓ Exported %d plays to %s", len(plays), path)))
	}

	if cmd.Bool("json") {
		return r.writeJSON(plays, cmd.Bool("pretty"))
	}

	return r.writePlain("%s\n", ui.HistoryTable(plays))
}

// HistoryShow prints a single recorded play.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: play id (see playrelay history)", shared.ErrMissingArgument)
	}

	play, err := r.api.HistoryEntry(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrHistoryDisabled) {
			r.writePlain("%s\n", ui.Warn("Play history is disabled on the server"))
		}
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(play, true)
	}

	r.writePlain("%s\n", ui.Title("Play "+play.ID))
	r.writePlain("Track:     %s\n", play.TrackURI)
	r.writePlain("Outcome:   %s\n", ui.Outcome(play.Outcome, play.Succeeded()))
	if play.Status != 0 {
		r.writePlain("Status:    %d\n", play.Status)
	}
	r.writePlain("Attempts:  %d\n", play.Attempts)
	r.writePlain("Refreshed: %t\n", play.Refreshed)
	if play.Detail != "" {
		r.writePlain("Detail:    %s\n", play.Detail)
	}
	return r.writePlain("Created:   %s\n", play.CreatedAt.Local().Format(time.DateTime))
}
