package credentials

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playrelay/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const defaultTimeout = 10 * time.Second

// Pair is an access token and the refresh token that can replace it.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// StoreOpts configures a [Store].
type StoreOpts struct {
	HTTPClient *http.Client  // used for token requests; defaults to a client with Timeout
	Timeout    time.Duration // bound on each token request; defaults to 10s
	Logger     *log.Logger
}

// Store is the single source of truth for the current [Pair].
type Store struct {
	mu   sync.RWMutex
	pair Pair

	// exchangeMu serializes refresh exchanges; group collapses callers refreshing the same stale token.
	exchangeMu sync.Mutex
	group      singleflight.Group

	config  *oauth2.Config
	client  *http.Client
	timeout time.Duration
	logger  *log.Logger
}

// NewStore creates an empty [Store] that exchanges tokens using config.
func NewStore(config *oauth2.Config, opts StoreOpts) *Store {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	return &Store{
		config:  config,
		client:  opts.HTTPClient,
		timeout: opts.Timeout,
		logger:  opts.Logger.WithPrefix("credentials"),
	}
}

// Get returns a snapshot of the current pair.
func (s *Store) Get() Pair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair
}

// Set replaces the current pair. An empty refresh token keeps the stored one.
func (s *Store) Set(pair Pair) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pair.RefreshToken == "" {
		pair.RefreshToken = s.pair.RefreshToken
	}
	s.pair = pair
}

// Authenticated reports whether a login has completed.
func (s *Store) Authenticated() bool {
	return s.Get().AccessToken != ""
}

// ExchangeAuthorizationCode trades a login callback code for a token pair and stores it.
//
// On failure the stored pair is left untouched.
func (s *Store) ExchangeAuthorizationCode(ctx context.Context, code string) error {
	if code == "" {
		return fmt.Errorf("%w: missing authorization code", shared.ErrTokenExchangeFailed)
	}

	ctx, cancel := s.remoteContext(ctx)
	defer cancel()

	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTokenExchangeFailed, err)
	}

	s.Set(Pair{AccessToken: token.AccessToken, RefreshToken: token.RefreshToken})
	s.logger.Info("authorization code exchanged", "refresh_token", token.RefreshToken != "")
	return nil
}

// Refresh obtains a new access token with the stored refresh token.
func (s *Store) Refresh(ctx context.Context) error {
	return s.refresh(ctx, "")
}

// RefreshStale refreshes on behalf of a caller whose request with access token stale was rejected.
//
// Callers holding the same stale token share one exchange. If the stored access token no longer equals
// stale, another caller already refreshed and no exchange is sent.
func (s *Store) RefreshStale(ctx context.Context, stale string) error {
	_, err, joined := s.group.Do(stale, func() (any, error) {
		return nil, s.refresh(ctx, stale)
	})
	if joined {
		s.logger.Debug("joined in-flight refresh")
	}
	return err
}

func (s *Store) refresh(ctx context.Context, stale string) error {
	s.exchangeMu.Lock()
	defer s.exchangeMu.Unlock()

	current := s.Get()
	if stale != "" && current.AccessToken != stale {
		s.logger.Debug("access token already refreshed")
		return nil
	}
	if current.RefreshToken == "" {
		return shared.ErrNoRefreshToken
	}

	ctx, cancel := s.remoteContext(ctx)
	defer cancel()

	start := time.Now()
	token, err := s.config.TokenSource(ctx, &oauth2.Token{RefreshToken: current.RefreshToken}).Token()
	if err != nil {
		s.logger.Warn("token refresh failed", "error", err)
		return fmt.Errorf("%w: %v", shared.ErrTokenExchangeFailed, err)
	}

	s.Set(Pair{AccessToken: token.AccessToken, RefreshToken: token.RefreshToken})
	s.logger.Info("access token refreshed", "duration", time.Since(start))
	return nil
}

// remoteContext detaches ctx from caller cancellation, bounds it with the store timeout and routes oauth2
// requests through the store's client.
func (s *Store) remoteContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, s.client)
	return context.WithTimeout(ctx, s.timeout)
}
