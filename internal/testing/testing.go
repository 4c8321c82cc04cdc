// package testing contains shared testing utilities
package testing

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/desertthunder/playrelay/internal/shared"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter passes the first n writes through to w and fails every write after.
type LimitedWriter struct {
	n int
	w io.Writer
}

func NewLimitedWriter(n int, w io.Writer) *LimitedWriter {
	return &LimitedWriter{n: n, w: w}
}

func (l *LimitedWriter) Write(p []byte) (int, error) {
	if l.n <= 0 {
		return 0, errors.New("write limit reached")
	}
	l.n--
	return l.w.Write(p)
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// TokenRequest is a request received by [FakeSpotify]'s token endpoint.
type TokenRequest struct {
	Form          url.Values
	Authorization string
}

// PlayRequest is a request received by [FakeSpotify]'s player endpoint.
type PlayRequest struct {
	Token string
	URIs  []string
}

// TokenFunc answers a token request with a status code and JSON body.
type TokenFunc func(form url.Values) (int, string)

// PlayFunc answers a play request with a status code and body.
type PlayFunc func(token string, uris []string) (int, string)

// FakeSpotify serves the accounts token endpoint at /api/token and the Web API player at /v1/me/player/play.
//
// Non-empty player bodies are sent as JSON, as the Web API does for errors.
type FakeSpotify struct {
	Server *httptest.Server

	mu     sync.Mutex
	token  TokenFunc
	play   PlayFunc
	tokens []TokenRequest
	plays  []PlayRequest
}

// NewFakeSpotify starts a [FakeSpotify] that is closed when the test ends.
//
// By default the token endpoint issues "A1"/"R1" for any grant and the player accepts any request with 204.
func NewFakeSpotify(t *testing.T) *FakeSpotify {
	t.Helper()

	f := &FakeSpotify{
		token: func(url.Values) (int, string) {
			return http.StatusOK, TokenJSON("A1", "R1")
		},
		play: func(string, []string) (int, string) {
			return http.StatusNoContent, ""
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", f.serveToken)
	mux.HandleFunc("/v1/me/player/play", f.servePlay)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// OnToken replaces the token endpoint behavior.
func (f *FakeSpotify) OnToken(fn TokenFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = fn
}

// OnPlay replaces the player endpoint behavior.
func (f *FakeSpotify) OnPlay(fn PlayFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.play = fn
}

// TokenRequests returns the token requests received so far.
func (f *FakeSpotify) TokenRequests() []TokenRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]TokenRequest(nil), f.tokens...)
}

// PlayRequests returns the play requests received so far.
func (f *FakeSpotify) PlayRequests() []PlayRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]PlayRequest(nil), f.plays...)
}

// APIConfig points a [shared.SpotifyAPIConfig] at the fake server.
func (f *FakeSpotify) APIConfig() shared.SpotifyAPIConfig {
	return shared.SpotifyAPIConfig{
		AuthURL:  f.Server.URL + "/authorize",
		TokenURL: f.Server.URL + "/api/token",
		APIURL:   f.Server.URL + "/v1",
		Timeout:  "5s",
	}
}

func (f *FakeSpotify) serveToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.tokens = append(f.tokens, TokenRequest{Form: r.PostForm, Authorization: r.Header.Get("Authorization")})
	fn := f.token
	f.mu.Unlock()

	status, body := fn(r.PostForm)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

func (f *FakeSpotify) servePlay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload struct {
		URIs []string `json:"uris"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	token := ""
	if auth := r.Header.Get("Authorization"); len(auth) > len("Bearer ") {
		token = auth[len("Bearer "):]
	}

	f.mu.Lock()
	f.plays = append(f.plays, PlayRequest{Token: token, URIs: payload.URIs})
	fn := f.play
	f.mu.Unlock()

	status, body := fn(token, payload.URIs)
	if body != "" {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

// TokenJSON renders a token endpoint response; an empty refresh token is omitted.
func TokenJSON(access, refresh string) string {
	resp := map[string]any{"access_token": access, "token_type": "Bearer", "expires_in": 3600}
	if refresh != "" {
		resp["refresh_token"] = refresh
	}
	data, _ := json.Marshal(resp)
	return string(data)
}
