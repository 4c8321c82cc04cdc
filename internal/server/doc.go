// Package server exposes the playback relay over HTTP.
//
// # Routes
//
//	GET  /login     307 to the Spotify authorization page
//	GET  /callback  exchanges ?code= and 307s to the frontend; 500 on a failed exchange, 400 on ?error=
//	POST /play      {"uri": "..."} -> 200 "Playing track!"
//	GET  /health    {"status": "ok", "authenticated": bool}
//	GET  /history       recent plays as JSON, 404 when history is disabled
//	GET  /history/{id}  one play as JSON, 404 when unknown or history is disabled
//
// Only /play is rate limited; a rejected /callback would lose its one-time code.
//
// Relay errors are mapped to status codes in one place (statusFor). A remote rejection is passed through
// with the remote status and body unchanged.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] registers
// method patterns on an [http.ServeMux]; [Middleware] added first wraps outermost.
//
// Custom handlers implement [Handler], which adds the route patterns a handler serves so one type
// can own several related routes.
package server
