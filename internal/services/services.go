// package services contains clients for a running playrelay server
package services

import (
	"context"

	"github.com/desertthunder/playrelay/internal/models"
)

// Relay is what the CLI needs from a running playrelay server.
type Relay interface {
	// Play asks the server to start a track and returns its reply text.
	Play(ctx context.Context, uri string) (string, error)

	// Health reports whether the server is up and holds credentials.
	Health(ctx context.Context) (*Health, error)

	// History lists recent plays, newest first.
	History(ctx context.Context, limit int) ([]models.Play, error)

	// HistoryEntry fetches a single recorded play.
	HistoryEntry(ctx context.Context, id string) (*models.Play, error)

	// LoginURL is the page that starts the authorization flow.
	LoginURL() string
}

// Health is the body of the server's /health endpoint.
type Health struct {
	Status        string `json:"status"`
	Authenticated bool   `json:"authenticated"`
}
