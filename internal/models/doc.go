// Package models defines the records playrelay keeps about its own activity.
//
// [Play] is one relayed play command together with how it ended: the final remote status, the number of
// attempts sent, and whether a token refresh happened along the way. Plays are written by the relay and
// read back by the history endpoint and CLI. Credentials are never modeled here.
package models
