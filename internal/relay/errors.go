package relay

import (
	"errors"
	"fmt"

	"github.com/desertthunder/playrelay/internal/models"
	"github.com/desertthunder/playrelay/internal/shared"
)

// RemoteRejectedError carries the remote status, media type and body of a failed play call, unchanged.
type RemoteRejectedError struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func (e *RemoteRejectedError) Error() string {
	return fmt.Sprintf("%v: status %d, body: %s", shared.ErrRemoteRejected, e.StatusCode, string(e.Body))
}

// Unwrap lets errors.Is match [shared.ErrRemoteRejected].
func (e *RemoteRejectedError) Unwrap() error {
	return shared.ErrRemoteRejected
}

// outcomeOf maps a PlayTrack error to the outcome recorded in play history.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return models.OutcomeStarted
	case errors.Is(err, shared.ErrInvalidRequest):
		return models.OutcomeInvalidRequest
	case errors.Is(err, shared.ErrNotAuthenticated):
		return models.OutcomeNotAuthenticated
	case errors.Is(err, shared.ErrReauthenticationFailed):
		return models.OutcomeReauthenticationFailed
	case errors.Is(err, shared.ErrRemoteRejected):
		return models.OutcomeRemoteRejected
	default:
		return models.OutcomeRemoteUnavailable
	}
}
