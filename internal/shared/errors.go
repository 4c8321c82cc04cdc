package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrNotAuthenticated       = fmt.Errorf("not authenticated")
	ErrNoRefreshToken         = fmt.Errorf("no refresh token available")
	ErrTokenExchangeFailed    = fmt.Errorf("token exchange failed")
	ErrReauthenticationFailed = fmt.Errorf("reauthentication failed")

	// Playback and remote service errors
	ErrRemoteRejected    = fmt.Errorf("remote rejected request")
	ErrRemoteUnavailable = fmt.Errorf("remote service unavailable")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrHistoryDisabled    = fmt.Errorf("play history disabled")
	ErrPlayNotFound       = fmt.Errorf("play not found")

	// Input validation errors
	ErrInvalidRequest  = fmt.Errorf("invalid request")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
