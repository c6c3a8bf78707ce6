// Package trace persists fired rules to a SQLite event log.
//
// Every dispatched firing becomes one append-only row, identified by a
// content-addressed hash of its logical identity. A session groups the
// firings of one play-through under a UUIDv7 token; replaying the same
// inputs into a fresh engine and comparing against the recorded session
// is the determinism check the single-writer evaluation model promises.
package trace
