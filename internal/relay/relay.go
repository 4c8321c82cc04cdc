package relay

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playrelay/internal/credentials"
	"github.com/desertthunder/playrelay/internal/models"
	"github.com/desertthunder/playrelay/internal/shared"
	"golang.org/x/oauth2"
)

// maxAttempts bounds play calls per command: the first attempt plus one retry after a refresh.
const maxAttempts = 2

// Outcome is the result of a successful play command.
type Outcome string

const OutcomeStarted Outcome = "started"

// PlaybackCommand asks the relay to play a single track.
type PlaybackCommand struct {
	TrackURI string
}

// Credentials is the part of [credentials.Store] the relay depends on.
type Credentials interface {
	Get() credentials.Pair
	ExchangeAuthorizationCode(ctx context.Context, code string) error
	RefreshStale(ctx context.Context, stale string) error
}

// Recorder receives one [models.Play] per play command.
type Recorder interface {
	Record(ctx context.Context, play *models.Play) error
}

// Opts configures a [Relay].
type Opts struct {
	Credentials Credentials
	OAuth       *oauth2.Config
	Player      Remote
	FrontendURI string
	Recorder    Recorder // optional
	Logger      *log.Logger
}

// Relay runs the login flow and relays play commands with a single refresh-and-retry on expiry.
//
// A Relay is safe for concurrent use.
type Relay struct {
	creds       Credentials
	oauth       *oauth2.Config
	player      Remote
	frontendURI string
	recorder    Recorder
	logger      *log.Logger
}

// New creates a [Relay].
func New(opts Opts) *Relay {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	return &Relay{
		creds:       opts.Credentials,
		oauth:       opts.OAuth,
		player:      opts.Player,
		frontendURI: opts.FrontendURI,
		recorder:    opts.Recorder,
		logger:      opts.Logger.WithPrefix("relay"),
	}
}

// BeginLogin returns the authorization URL the user is redirected to.
func (r *Relay) BeginLogin() string {
	return r.oauth.AuthCodeURL("")
}

// CompleteLogin exchanges the callback code and returns the post-login destination.
func (r *Relay) CompleteLogin(ctx context.Context, code string) (string, error) {
	if err := r.creds.ExchangeAuthorizationCode(ctx, code); err != nil {
		r.logger.Error("login failed", "error", err)
		return "", err
	}

	r.logger.Info("login complete")
	return r.frontendURI, nil
}

// PlayTrack relays cmd to the remote player.
//
// A 401 with a refresh token available triggers one refresh and one retry. A failed refresh ends the command
// with [shared.ErrReauthenticationFailed]; any other rejection, including a 401 on the retry, is returned as
// a [*RemoteRejectedError].
func (r *Relay) PlayTrack(ctx context.Context, cmd PlaybackCommand) (Outcome, error) {
	play := &models.Play{TrackURI: cmd.TrackURI}
	outcome, err := r.playTrack(ctx, cmd, play)
	r.record(ctx, play, err)
	return outcome, err
}

func (r *Relay) playTrack(ctx context.Context, cmd PlaybackCommand, play *models.Play) (Outcome, error) {
	uri := strings.TrimSpace(cmd.TrackURI)
	if uri == "" {
		return "", fmt.Errorf("%w: missing track uri", shared.ErrInvalidRequest)
	}

	token := r.creds.Get().AccessToken
	if token == "" {
		return "", fmt.Errorf("%w: login first at /login", shared.ErrNotAuthenticated)
	}

	logger := r.logger.With("uri", uri)

	for play.Attempts < maxAttempts {
		play.Attempts++

		resp, err := r.player.Play(ctx, token, uri)
		if err != nil {
			return "", fmt.Errorf("%w: %v", shared.ErrRemoteUnavailable, err)
		}
		play.Status = resp.StatusCode

		if resp.OK() {
			logger.Info("playback started", "attempts", play.Attempts)
			return OutcomeStarted, nil
		}

		if !resp.Unauthorized() || play.Attempts == maxAttempts || r.creds.Get().RefreshToken == "" {
			return "", &RemoteRejectedError{StatusCode: resp.StatusCode, ContentType: resp.ContentType, Body: resp.Body}
		}

		logger.Info("access token rejected, refreshing")
		if err := r.creds.RefreshStale(ctx, token); err != nil {
			return "", fmt.Errorf("%w: %v", shared.ErrReauthenticationFailed, err)
		}
		play.Refreshed = true
		token = r.creds.Get().AccessToken
	}

	// unreachable: the final attempt always returns
	return "", fmt.Errorf("%w: retry limit reached", shared.ErrRemoteRejected)
}

// record hands the finished play to the recorder. Failures are logged and never change the outcome.
func (r *Relay) record(ctx context.Context, play *models.Play, err error) {
	if r.recorder == nil {
		return
	}

	play.Outcome = outcomeOf(err)
	play.CreatedAt = time.Now().UTC()
	if err != nil {
		play.Detail = err.Error()
	}

	if recErr := r.recorder.Record(context.WithoutCancel(ctx), play); recErr != nil {
		r.logger.Warn("failed to record play", "error", recErr)
	}
}
