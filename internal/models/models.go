// package models defines the data model for the playback relay
package models

import (
	"fmt"
	"time"
)

// Play outcomes as recorded in the history log.
const (
	OutcomeStarted                = "started"
	OutcomeInvalidRequest         = "invalid_request"
	OutcomeNotAuthenticated       = "not_authenticated"
	OutcomeReauthenticationFailed = "reauthentication_failed"
	OutcomeRemoteRejected         = "remote_rejected"
	OutcomeRemoteUnavailable      = "remote_unavailable"
)

// Play is a single relayed play command and its result.
type Play struct {
	ID        string    `json:"id"`
	TrackURI  string    `json:"track_uri"`
	Outcome   string    `json:"outcome"`
	Status    int       `json:"status,omitempty"` // final remote status, 0 when no remote call was made
	Attempts  int       `json:"attempts"`         // remote play calls sent
	Refreshed bool      `json:"refreshed"`        // whether a token refresh preceded the retry
	Detail    string    `json:"detail,omitempty"` // error text for failed plays
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks that the play can be stored.
func (p *Play) Validate() error {
	if p.Outcome == "" {
		return fmt.Errorf("play outcome is required")
	}
	if p.Attempts < 0 || p.Attempts > 2 {
		return fmt.Errorf("play attempts out of range: %d", p.Attempts)
	}
	return nil
}

// Succeeded reports whether the play started playback.
func (p *Play) Succeeded() bool {
	return p.Outcome == OutcomeStarted
}
