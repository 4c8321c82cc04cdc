package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/playrelay/internal/models"
	"github.com/desertthunder/playrelay/internal/shared"
)

// defaultTimeout bounds every request made with the default client.
const defaultTimeout = 10 * time.Second

// APIService talks to a running playrelay server and implements [Relay].
type APIService struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIService creates a new API service instance for the server at baseURL.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:3000"
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &APIService{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: client,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// OK reports whether the status is 2xx.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return a.do(req)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return a.do(req)
}

func (a *APIService) do(req *http.Request) (*APIResponse, error) {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &APIResponse{StatusCode: resp.StatusCode, Headers: resp.Header, Body: body}, nil
}

// Play posts uri to /play. A non-2xx reply is returned as an [*APIError] carrying the server's text.
func (a *APIService) Play(ctx context.Context, uri string) (string, error) {
	data, err := json.Marshal(map[string]string{"uri": uri})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := a.Post(ctx, "/play", data)
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", apiError(resp)
	}
	return string(resp.Body), nil
}

// Health fetches /health.
func (a *APIService) Health(ctx context.Context) (*Health, error) {
	resp, err := a.Get(ctx, "/health")
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, apiError(resp)
	}

	var health Health
	if err := json.Unmarshal(resp.Body, &health); err != nil {
		return nil, fmt.Errorf("failed to decode health: %w", err)
	}
	return &health, nil
}

// History fetches /history. A 404 means the server runs without play history.
func (a *APIService) History(ctx context.Context, limit int) ([]models.Play, error) {
	path := "/history"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}

	resp, err := a.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, shared.ErrHistoryDisabled
	}
	if !resp.OK() {
		return nil, apiError(resp)
	}

	var plays []models.Play
	if err := json.Unmarshal(resp.Body, &plays); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	return plays, nil
}

// HistoryEntry fetches /history/{id}. A 404 is either a disabled history or an unknown play.
func (a *APIService) HistoryEntry(ctx context.Context, id string) (*models.Play, error) {
	resp, err := a.Get(ctx, "/history/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		if strings.TrimSpace(string(resp.Body)) == "Play history disabled" {
			return nil, shared.ErrHistoryDisabled
		}
		return nil, fmt.Errorf("%w: %s", shared.ErrPlayNotFound, id)
	}
	if !resp.OK() {
		return nil, apiError(resp)
	}

	var play models.Play
	if err := json.Unmarshal(resp.Body, &play); err != nil {
		return nil, fmt.Errorf("failed to decode play: %w", err)
	}
	return &play, nil
}

// LoginURL returns the server's /login page.
func (a *APIService) LoginURL() string {
	return a.baseURL + "/login"
}

// StatusCode extracts the server status from an error returned by [APIService], or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// APIError is a non-2xx reply from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%v: %d %s", shared.ErrAPIRequest, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return shared.ErrAPIRequest
}

func apiError(resp *APIResponse) error {
	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(resp.Body))}
}
