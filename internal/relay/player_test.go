package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tu "github.com/desertthunder/playrelay/internal/testing"
)

func TestPlayer(t *testing.T) {
	t.Run("NewPlayer Defaults", func(t *testing.T) {
		p := NewPlayer("", nil, 0)

		if p.baseURL != defaultAPIURL {
			t.Errorf("expected default api url, got %s", p.baseURL)
		}
		if p.httpClient == nil || p.httpClient.Timeout != 10*time.Second {
			t.Error("expected a client bounded by the default timeout")
		}
	})

	t.Run("Request Shape", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut {
				t.Errorf("expected PUT, got %s", r.Method)
			}
			if r.URL.Path != "/v1/me/player/play" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer A1" {
				t.Errorf("unexpected authorization %q", got)
			}
			if got := r.Header.Get("Content-Type"); got != "application/json" {
				t.Errorf("unexpected content type %q", got)
			}

			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("invalid body: %v", err)
				return
			}
			uris, ok := body["uris"].([]any)
			if !ok || len(uris) != 1 || uris[0] != "spotify:track:abc" {
				t.Errorf("unexpected body %v", body)
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		p := NewPlayer(server.URL+"/v1/", nil, time.Second)
		resp, err := p.Play(context.Background(), "A1", "spotify:track:abc")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !resp.OK() {
			t.Errorf("expected OK, got %d", resp.StatusCode)
		}
	})

	t.Run("Non 2xx Is A Response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, "token expired")
		}))
		defer server.Close()

		resp, err := NewPlayer(server.URL, nil, time.Second).Play(context.Background(), "A1", "spotify:track:abc")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !resp.Unauthorized() || resp.OK() {
			t.Errorf("expected 401, got %d", resp.StatusCode)
		}
		if string(resp.Body) != "token expired" {
			t.Errorf("unexpected body %q", resp.Body)
		}
	})

	t.Run("Keeps Content Type", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `{"error":{"status":404,"message":"No active device found"}}`)
		}))
		defer server.Close()

		resp, err := NewPlayer(server.URL, nil, time.Second).Play(context.Background(), "A1", "spotify:track:abc")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.ContentType != "application/json; charset=utf-8" {
			t.Errorf("unexpected content type %q", resp.ContentType)
		}
	})

	t.Run("Caps Body Size", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			io.WriteString(w, strings.Repeat("x", maxResponseBody+4096))
		}))
		defer server.Close()

		resp, err := NewPlayer(server.URL, nil, time.Second).Play(context.Background(), "A1", "spotify:track:abc")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(resp.Body) != maxResponseBody {
			t.Errorf("expected body capped at %d bytes, got %d", maxResponseBody, len(resp.Body))
		}
	})

	t.Run("Transport Error", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}

		_, err := NewPlayer("http://example.com", client, time.Second).Play(context.Background(), "A1", "uri")
		if err == nil || !strings.Contains(err.Error(), "request failed") {
			t.Errorf("expected request failure, got %v", err)
		}
	})

	t.Run("Body Read Error", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}
		client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}

		_, err := NewPlayer("http://example.com", client, time.Second).Play(context.Background(), "A1", "uri")
		if err == nil || !strings.Contains(err.Error(), "failed to read response") {
			t.Errorf("expected read failure, got %v", err)
		}
	})

	t.Run("Ignores Caller Cancellation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(20 * time.Millisecond)
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		resp, err := NewPlayer(server.URL, nil, time.Second).Play(ctx, "A1", "spotify:track:abc")
		if err != nil {
			t.Fatalf("expected play to complete, got %v", err)
		}
		if !resp.OK() {
			t.Errorf("expected OK, got %d", resp.StatusCode)
		}
	})

	t.Run("Times Out", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer server.Close()
		defer close(release)

		_, err := NewPlayer(server.URL, nil, 50*time.Millisecond).Play(context.Background(), "A1", "uri")
		if err == nil {
			t.Error("expected timeout error")
		}
	})
}
