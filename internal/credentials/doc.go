// Package credentials holds the process-wide Spotify token pair and keeps it fresh.
//
// # Store
//
// [Store] is the single owner of the current [Pair]. Reads return a snapshot; writes replace the pair as a
// unit, so a reader never sees a new access token next to a refresh token from a different exchange.
//
// The store talks to the token endpoint through [golang.org/x/oauth2]:
//   - [Store.ExchangeAuthorizationCode] runs the authorization_code grant after the login callback
//   - [Store.Refresh] runs the refresh_token grant with the stored refresh token
//   - [Store.RefreshStale] is what request handlers call after a 401
//
// # Concurrent refreshes
//
// Token exchanges are serialized, and callers that saw the same access token rejected share a single
// in-flight exchange. A caller whose stale token has already been replaced returns immediately and retries
// with the current pair.
//
// # Timeouts
//
// Every exchange runs on a context detached from the caller and bounded by the configured timeout: a client
// that hangs up does not abort a half-finished exchange, and a stalled token endpoint cannot hold a request
// forever.
package credentials
