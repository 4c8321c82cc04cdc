package relay

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/playrelay/internal/credentials"
	"github.com/desertthunder/playrelay/internal/models"
	"github.com/desertthunder/playrelay/internal/shared"
	tu "github.com/desertthunder/playrelay/internal/testing"
)

type recorder struct {
	mu    sync.Mutex
	plays []models.Play
	err   error
}

func (r *recorder) Record(_ context.Context, play *models.Play) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plays = append(r.plays, *play)
	return r.err
}

func (r *recorder) last(t *testing.T) models.Play {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.plays) == 0 {
		t.Fatal("expected a recorded play")
	}
	return r.plays[len(r.plays)-1]
}

type fixture struct {
	fake     *tu.FakeSpotify
	store    *credentials.Store
	relay    *Relay
	recorder *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	fake := tu.NewFakeSpotify(t)
	api := fake.APIConfig()
	creds := shared.SpotifyConfig{
		ClientID:     "test_client_id",
		ClientSecret: "test_client_secret",
		RedirectURI:  "http://127.0.0.1:3000/callback",
		FrontendURI:  "http://127.0.0.1:5173",
	}
	oauth := credentials.NewOAuthConfig(creds, api)
	store := credentials.NewStore(oauth, credentials.StoreOpts{Timeout: 2 * time.Second})
	rec := &recorder{}

	r := New(Opts{
		Credentials: store,
		OAuth:       oauth,
		Player:      NewPlayer(api.APIURL, nil, 2*time.Second),
		FrontendURI: creds.FrontendURI,
		Recorder:    rec,
	})

	return &fixture{fake: fake, store: store, relay: r, recorder: rec}
}

func TestBeginLogin(t *testing.T) {
	f := newFixture(t)

	loginURL, err := url.Parse(f.relay.BeginLogin())
	if err != nil {
		t.Fatalf("invalid login url: %v", err)
	}

	if !strings.HasSuffix(loginURL.Path, "/authorize") {
		t.Errorf("expected /authorize path, got %s", loginURL.Path)
	}

	q := loginURL.Query()
	want := map[string]string{
		"response_type": "code",
		"client_id":     "test_client_id",
		"scope":         "user-read-playback-state user-modify-playback-state",
		"redirect_uri":  "http://127.0.0.1:3000/callback",
	}
	for k, v := range want {
		if q.Get(k) != v {
			t.Errorf("expected %s=%q, got %q", k, v, q.Get(k))
		}
	}

	if n := len(f.fake.TokenRequests()); n != 0 {
		t.Errorf("BeginLogin should not call the remote, got %d requests", n)
	}
}

func TestCompleteLogin(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)

		dest, err := f.relay.CompleteLogin(context.Background(), "auth_code")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if dest != "http://127.0.0.1:5173" {
			t.Errorf("expected frontend uri, got %s", dest)
		}
		if got := f.store.Get(); got.AccessToken != "A1" || got.RefreshToken != "R1" {
			t.Errorf("expected A1/R1, got %+v", got)
		}
	})

	t.Run("Exchange Failure", func(t *testing.T) {
		f := newFixture(t)
		f.fake.OnToken(func(url.Values) (int, string) {
			return http.StatusBadRequest, `{"error":"invalid_grant"}`
		})

		dest, err := f.relay.CompleteLogin(context.Background(), "bad_code")
		if !errors.Is(err, shared.ErrTokenExchangeFailed) {
			t.Fatalf("expected ErrTokenExchangeFailed, got %v", err)
		}
		if dest != "" {
			t.Errorf("expected no destination on failure, got %s", dest)
		}
	})
}

func TestPlayTrack(t *testing.T) {
	ctx := context.Background()
	cmd := PlaybackCommand{TrackURI: "spotify:track:abc"}

	t.Run("Empty URI Is Invalid", func(t *testing.T) {
		f := newFixture(t)
		f.store.Set(credentials.Pair{AccessToken: "A1", RefreshToken: "R1"})

		for _, uri := range []string{"", "   "} {
			_, err := f.relay.PlayTrack(ctx, PlaybackCommand{TrackURI: uri})
			if !errors.Is(err, shared.ErrInvalidRequest) {
				t.Errorf("uri %q: expected ErrInvalidRequest, got %v", uri, err)
			}
		}
		if n := len(f.fake.PlayRequests()); n != 0 {
			t.Errorf("expected no remote calls, got %d", n)
		}
		if got := f.recorder.last(t); got.Outcome != models.OutcomeInvalidRequest || got.Attempts != 0 {
			t.Errorf("unexpected recorded play %+v", got)
		}
	})

	t.Run("Empty Store Is Not Authenticated", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.relay.PlayTrack(ctx, cmd)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Fatalf("expected ErrNotAuthenticated, got %v", err)
		}
		if n := len(f.fake.PlayRequests()); n != 0 {
			t.Errorf("expected no remote calls, got %d", n)
		}
	})

	t.Run("Started", func(t *testing.T) {
		f := newFixture(t)
		f.store.Set(credentials.Pair{AccessToken: "A1", RefreshToken: "R1"})

		outcome, err := f.relay.PlayTrack(ctx, cmd)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if outcome != OutcomeStarted {
			t.Errorf("expected started, got %s", outcome)
		}

		plays := f.fake.PlayRequests()
		if len(plays) != 1 {
			t.Fatalf("expected 1 play request, got %d", len(plays))
		}
		if plays[0].Token != "A1" {
			t.Errorf("expected bearer A1, got %s", plays[0].Token)
		}
		if len(plays[0].URIs) != 1 || plays[0].URIs[0] != "spotify:track:abc" {
			t.Errorf("unexpected uris %v", plays[0].URIs)
		}

		got := f.recorder.last(t)
		if !got.Succeeded() || got.Attempts != 1 || got.Refreshed {
			t.Errorf("unexpected recorded play %+v", got)
		}
	})

	t.Run("Refreshes And Retries Once", func(t *testing.T) {
		f := newFixture(t)
		f.store.Set(credentials.Pair{AccessToken: "A1", RefreshToken: "R1"})
		f.fake.OnToken(func(url.Values) (int, string) {
			return http.StatusOK, tu.TokenJSON("A2", "")
		})
		f.fake.OnPlay(func(token string, _ []string) (int, string) {
			if token == "A1" {
				return http.StatusUnauthorized, `{"error":{"status":401,"message":"The access token expired"}}`
			}
			return http.StatusOK, ""
		})

		outcome, err := f.relay.PlayTrack(ctx, cmd)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if outcome != OutcomeStarted {
			t.Errorf("expected started, got %s", outcome)
		}

		plays := f.fake.PlayRequests()
		if len(plays) != 2 || plays[0].Token != "A1" || plays[1].Token != "A2" {
			t.Errorf("expected A1 then A2, got %+v", plays)
		}
		if n := len(f.fake.TokenRequests()); n != 1 {
			t.Errorf("expected 1 refresh, got %d", n)
		}
		if got := f.store.Get(); got.AccessToken != "A2" || got.RefreshToken != "R1" {
			t.Errorf("expected A2/R1, got %+v", got)
		}

		got := f.recorder.last(t)
		if got.Attempts != 2 || !got.Refreshed || got.Status != http.StatusOK {
			t.Errorf("unexpected recorded play %+v", got)
		}
	})

	t.Run("Retry Result Wins", func(t *testing.T) {
		f := newFixture(t)
		f.store.Set(credentials.Pair{AccessToken: "A1", RefreshToken: "R1"})
		f.fake.OnToken(func(url.Values) (int, string) {
			return http.StatusOK, tu.TokenJSON("A2", "")
		})
		f.fake.OnPlay(func(token string, _ []string) (int, string) {
			if token == "A1" {
				return http.StatusUnauthorized, "expired"
			}
			return http.StatusNotFound, `{"error":{"status":404,"message":"Player command failed: No active device found"}}`
		})

		_, err := f.relay.PlayTrack(ctx, cmd)

		var rejected *RemoteRejectedError
		if !errors.As(err, &rejected) {
			t.Fatalf("expected RemoteRejectedError, got %v", err)
		}
		if rejected.StatusCode != http.StatusNotFound {
			t.Errorf("expected retry status 404, got %d", rejected.StatusCode)
		}
		if !strings.Contains(string(rejected.Body), "No active device found") {
			t.Errorf("expected verbatim body, got %s", rejected.Body)
		}
		if !errors.Is(err, shared.ErrRemoteRejected) {
			t.Error("expected error to match ErrRemoteRejected")
		}
	})

	t.Run("Second 401 Is Terminal", func(t *testing.T) {
		f := newFixture(t)
		f.store.Set(credentials.Pair{AccessToken: "A1", RefreshToken: "R1"})
		f.fake.OnToken(func(url.Values) (int, string) {
			return http.StatusOK, tu.TokenJSON("A2", "")
		})
		f.fake.OnPlay(func(string, []string) (int, string) {
			return http.StatusUnauthorized, "still expired"
		})

		_, err := f.relay.PlayTrack(ctx, cmd)

		var rejected *RemoteRejectedError
		if !errors.As(err, &rejected) || rejected.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401 rejection, got %v", err)
		}
		if n := len(f.fake.PlayRequests()); n != 2 {
			t.Errorf("expected exactly 2 play requests, got %d", n)
		}
		if n := len(f.fake.TokenRequests()); n != 1 {
			t.Errorf("expected exactly 1 refresh, got %d", n)
		}
	})

	t.Run("Refresh Failure Stops Without Retry", func(t *testing.T) {
		f := newFixture(t)
		f.store.Set(credentials.Pair{AccessToken: "A1", RefreshToken: "R1"})
		f.fake.OnToken(func(url.Values) (int, string) {
			return http.StatusBadRequest, `{"error":"invalid_grant"}`
		})
		f.fake.OnPlay(func(string, []string) (int, string) {
			return http.StatusUnauthorized, "expired"
		})

		_, err := f.relay.PlayTrack(ctx, cmd)
		if !errors.Is(err, shared.ErrReauthenticationFailed) {
			t.Fatalf("expected ErrReauthenticationFailed, got %v", err)
		}
		if n := len(f.fake.PlayRequests()); n != 1 {
			t.Errorf("expected no retry, got %d play requests", n)
		}
		if got := f.recorder.last(t); got.Outcome != models.OutcomeReauthenticationFailed {
			t.Errorf("unexpected outcome %s", got.Outcome)
		}
	})

	t.Run("401 Without Refresh Token Is Rejected", func(t *testing.T) {
		f := newFixture(t)
		f.store.Set(credentials.Pair{AccessToken: "A1"})
		f.fake.OnPlay(func(string, []string) (int, string) {
			return http.StatusUnauthorized, "expired"
		})

		_, err := f.relay.PlayTrack(ctx, cmd)

		var rejected *RemoteRejectedError
		if !errors.As(err, &rejected) || rejected.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401 rejection, got %v", err)
		}
		if n := len(f.fake.TokenRequests()); n != 0 {
			t.Errorf("expected no refresh, got %d", n)
		}
	})

	t.Run("Non Auth Failure Is Not Retried", func(t *testing.T) {
		f := newFixture(t)
		f.store.Set(credentials.Pair{AccessToken: "A1", RefreshToken: "R1"})
		f.fake.OnPlay(func(string, []string) (int, string) {
			return http.StatusForbidden, "premium required"
		})

		_, err := f.relay.PlayTrack(ctx, cmd)

		var rejected *RemoteRejectedError
		if !errors.As(err, &rejected) || rejected.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403 rejection, got %v", err)
		}
		if string(rejected.Body) != "premium required" {
			t.Errorf("expected verbatim body, got %q", rejected.Body)
		}
		if n := len(f.fake.PlayRequests()); n != 1 {
			t.Errorf("expected 1 play request, got %d", n)
		}
	})

	t.Run("Transport Failure", func(t *testing.T) {
		f := newFixture(t)
		f.store.Set(credentials.Pair{AccessToken: "A1", RefreshToken: "R1"})
		f.fake.Server.Close()

		_, err := f.relay.PlayTrack(ctx, cmd)
		if !errors.Is(err, shared.ErrRemoteUnavailable) {
			t.Fatalf("expected ErrRemoteUnavailable, got %v", err)
		}
		if got := f.recorder.last(t); got.Outcome != models.OutcomeRemoteUnavailable {
			t.Errorf("unexpected outcome %s", got.Outcome)
		}
	})

	t.Run("Recorder Failure Does Not Change Outcome", func(t *testing.T) {
		f := newFixture(t)
		f.store.Set(credentials.Pair{AccessToken: "A1", RefreshToken: "R1"})
		f.recorder.err = errors.New("disk full")

		if _, err := f.relay.PlayTrack(ctx, cmd); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("Concurrent 401s Share One Refresh", func(t *testing.T) {
		f := newFixture(t)
		f.store.Set(credentials.Pair{AccessToken: "A1", RefreshToken: "R1"})
		f.fake.OnToken(func(url.Values) (int, string) {
			return http.StatusOK, tu.TokenJSON("A2", "")
		})

		var arrived sync.WaitGroup
		arrived.Add(2)
		f.fake.OnPlay(func(token string, _ []string) (int, string) {
			if token == "A1" {
				arrived.Done()
				arrived.Wait()
				return http.StatusUnauthorized, "expired"
			}
			return http.StatusNoContent, ""
		})

		var wg sync.WaitGroup
		errs := make(chan error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.relay.PlayTrack(ctx, cmd)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}

		if n := len(f.fake.TokenRequests()); n != 1 {
			t.Errorf("expected exactly 1 refresh exchange, got %d", n)
		}

		var retries int
		for _, p := range f.fake.PlayRequests() {
			if p.Token == "A2" {
				retries++
			}
		}
		if retries != 2 {
			t.Errorf("expected both retries to use A2, got %d", retries)
		}
	})
}

func TestOutcomeOf(t *testing.T) {
	tc := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, models.OutcomeStarted},
		{"invalid", shared.ErrInvalidRequest, models.OutcomeInvalidRequest},
		{"unauthenticated", shared.ErrNotAuthenticated, models.OutcomeNotAuthenticated},
		{"reauth", shared.ErrReauthenticationFailed, models.OutcomeReauthenticationFailed},
		{"rejected", &RemoteRejectedError{StatusCode: 500}, models.OutcomeRemoteRejected},
		{"transport", shared.ErrRemoteUnavailable, models.OutcomeRemoteUnavailable},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := outcomeOf(tt.err); got != tt.want {
				t.Errorf("outcomeOf() = %v, want %v", got, tt.want)
			}
		})
	}
}
