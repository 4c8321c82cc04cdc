package server

import (
	"errors"
	"net/http"

	"github.com/desertthunder/playrelay/internal/relay"
	"github.com/desertthunder/playrelay/internal/shared"
)

// statusFor maps a relay error to the status returned to the caller.
func statusFor(err error) int {
	var rejected *relay.RemoteRejectedError

	switch {
	case errors.As(err, &rejected):
		return rejected.StatusCode
	case errors.Is(err, shared.ErrInvalidRequest), errors.Is(err, shared.ErrNotAuthenticated):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// messageFor is the plain text body sent with statusFor's status.
func messageFor(err error) string {
	switch {
	case errors.Is(err, shared.ErrInvalidRequest):
		return "Missing uri"
	case errors.Is(err, shared.ErrNotAuthenticated):
		return "Login first at /login"
	case errors.Is(err, shared.ErrReauthenticationFailed):
		return "Error refreshing Spotify token"
	case errors.Is(err, shared.ErrTokenExchangeFailed):
		return "Error during Spotify login"
	default:
		return "Error sending request to Spotify"
	}
}

// writeError writes err as plain text. Remote rejections are passed through with their status, media type and body.
func writeError(w http.ResponseWriter, err error) {
	var rejected *relay.RemoteRejectedError
	if errors.As(err, &rejected) {
		contentType := rejected.ContentType
		if contentType == "" {
			contentType = "text/plain; charset=utf-8"
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(rejected.StatusCode)
		w.Write(rejected.Body)
		return
	}

	http.Error(w, messageFor(err), statusFor(err))
}
