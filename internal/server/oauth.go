package server

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
)

// AuthHandler serves the authorization code flow: /login starts it and /callback completes it.
type AuthHandler struct {
	relay  Relay
	logger *log.Logger
}

// NewAuthHandler creates an [AuthHandler] backed by r.
func NewAuthHandler(r Relay, logger *log.Logger) *AuthHandler {
	return &AuthHandler{relay: r, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *AuthHandler) Routes() []string {
	return []string{"GET /login", "GET /callback"}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/login":
		h.login(w, r)
	case "/callback":
		h.callback(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.relay.BeginLogin(), http.StatusTemporaryRedirect)
}

// callback exchanges the code and redirects to the frontend.
//
// A callback carrying an error parameter means the user denied access; no exchange is attempted.
func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		h.logger.Warn("authorization denied", "error", errParam, "description", query.Get("error_description"))
		http.Error(w, fmt.Sprintf("Authorization failed: %s", errParam), http.StatusBadRequest)
		return
	}

	destination, err := h.relay.CompleteLogin(r.Context(), query.Get("code"))
	if err != nil {
		http.Error(w, "Error during Spotify login", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, destination, http.StatusTemporaryRedirect)
}
