// Package relay implements the user-facing playback operations on top of [credentials.Store].
//
// # Operations
//
//   - [Relay.BeginLogin] builds the Spotify authorization URL (no I/O)
//   - [Relay.CompleteLogin] exchanges the callback code and returns the frontend URL
//   - [Relay.PlayTrack] starts a track, refreshing the access token once if Spotify rejects it
//
// # Retry policy
//
// A play command moves through validating, authenticating and requesting. A 401 from the player endpoint,
// with a refresh token on hand, moves it to refreshing and then to a single retry. The loop is bounded at two
// attempts: a second 401 is returned to the caller like any other rejection.
//
//	validate ─▶ authenticate ─▶ request ─┬─▶ started
//	                                     ├─▶ 401 ─▶ refresh ─▶ retry ─┬─▶ started
//	                                     │             │              └─▶ rejected
//	                                     │             └─▶ reauthentication failed
//	                                     └─▶ rejected
//
// # Errors
//
// Failures wrap the sentinels in [shared]: [shared.ErrInvalidRequest], [shared.ErrNotAuthenticated],
// [shared.ErrReauthenticationFailed] and [shared.ErrRemoteUnavailable]. Rejections are returned as
// [*RemoteRejectedError], which keeps the upstream status and body and matches [shared.ErrRemoteRejected].
package relay
