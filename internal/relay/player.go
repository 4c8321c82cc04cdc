package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"
)

const defaultAPIURL = "https://api.spotify.com/v1"

// maxResponseBody caps how much of a player response is kept.
const maxResponseBody = 1 << 20

// Remote issues play commands to the streaming service.
type Remote interface {
	Play(ctx context.Context, accessToken, trackURI string) (*PlayResponse, error)
}

// PlayResponse is the raw status, media type and body returned by the player endpoint.
type PlayResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports a 2xx status.
func (r *PlayResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Unauthorized reports an expired or invalid access token.
func (r *PlayResponse) Unauthorized() bool {
	return r.StatusCode == http.StatusUnauthorized
}

// Player calls the Spotify Web API player endpoint.
type Player struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewPlayer creates a [Player] for the Web API rooted at baseURL.
//
// An empty baseURL targets api.spotify.com; a nil client gets one bounded by timeout.
func NewPlayer(baseURL string, client *http.Client, timeout time.Duration) *Player {
	if baseURL == "" {
		baseURL = defaultAPIURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	return &Player{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: client,
		timeout:    timeout,
	}
}

// Play starts trackURI on the user's active device.
//
// Any HTTP response, successful or not, is returned as a [PlayResponse]; only transport failures are errors.
// The request is not cancelled when ctx is, since a sent play command cannot be taken back.
func (p *Player) Play(ctx context.Context, accessToken, trackURI string) (*PlayResponse, error) {
	payload, err := json.Marshal(spotify.PlayOptions{URIs: []spotify.URI{spotify.URI(trackURI)}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode play request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, p.baseURL+"/me/player/play", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &PlayResponse{StatusCode: resp.StatusCode, ContentType: resp.Header.Get("Content-Type"), Body: body}, nil
}
