package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playrelay/internal/models"
	"github.com/desertthunder/playrelay/internal/relay"
	"github.com/desertthunder/playrelay/internal/shared"
)

const maxPlayBody = 1 << 16

// PlayRequest is the body of POST /play.
type PlayRequest struct {
	URI string `json:"uri"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Authenticated bool   `json:"authenticated"`
}

// PlayHandler relays POST /play to the [Relay].
type PlayHandler struct {
	relay  Relay
	logger *log.Logger
}

// NewPlayHandler creates a [PlayHandler].
func NewPlayHandler(r Relay, logger *log.Logger) *PlayHandler {
	return &PlayHandler{relay: r, logger: logger}
}

// ServeHTTP decodes {"uri": ...} and plays it. An empty body is treated as a missing uri.
func (h *PlayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req PlayRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPlayBody)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if _, err := h.relay.PlayTrack(r.Context(), relay.PlaybackCommand{TrackURI: req.URI}); err != nil {
		logger := shared.WithLogger(h.logger, "request_id", RequestIDFrom(r.Context()))
		logger.Warn("play failed", "uri", req.URI, "error", err)
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "Playing track!")
}

// StatusHandler serves /health, /history and /history/{id}.
type StatusHandler struct {
	status  Status
	history History
	logger  *log.Logger
}

// NewStatusHandler creates a [StatusHandler]. history may be nil.
func NewStatusHandler(status Status, history History, logger *log.Logger) *StatusHandler {
	return &StatusHandler{status: status, history: history, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *StatusHandler) Routes() []string {
	return []string{"GET /health", "GET /history", "GET /history/{id}"}
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/health":
		h.health(w)
	case "/history":
		h.recent(w, r)
	default:
		if id := r.PathValue("id"); id != "" {
			h.show(w, r, id)
			return
		}
		http.NotFound(w, r)
	}
}

func (h *StatusHandler) show(w http.ResponseWriter, r *http.Request, id string) {
	if h.history == nil {
		http.Error(w, "Play history disabled", http.StatusNotFound)
		return
	}

	play, err := h.history.Get(r.Context(), id)
	switch {
	case errors.Is(err, shared.ErrPlayNotFound):
		http.Error(w, "Play not found", http.StatusNotFound)
	case err != nil:
		h.logger.Error("failed to get play", "id", id, "error", err)
		http.Error(w, "Failed to get play", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, play)
	}
}

func (h *StatusHandler) health(w http.ResponseWriter) {
	authenticated := h.status != nil && h.status.Authenticated()
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Authenticated: authenticated})
}

func (h *StatusHandler) recent(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		http.Error(w, "Play history disabled", http.StatusNotFound)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	plays, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list plays", "error", err)
		http.Error(w, "Failed to list plays", http.StatusInternalServerError)
		return
	}

	if plays == nil {
		plays = []models.Play{}
	}
	writeJSON(w, http.StatusOK, plays)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
