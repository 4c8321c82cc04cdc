// Package repositories implements SQLite persistence for play history.
//
// [PlayRepository] stores one row per relayed play command and satisfies relay.Recorder, so the relay can
// log outcomes without knowing about the database. Rows are append-only; reads return the most recent plays
// first.
//
// Tokens are never written here.
package repositories
