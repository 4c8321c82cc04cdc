// Package services provides [APIService], the HTTP client the CLI uses to drive a running playrelay server.
//
// Errors:
//   - [shared.ErrServiceUnavailable] : the server could not be reached
//   - [shared.ErrHistoryDisabled] : the server runs without play history
//   - [*APIError] (wraps [shared.ErrAPIRequest]) : any other non-2xx reply, with the server's text
package services
