// Package store provides a SQLite-backed cache of compiled queries.
//
// Entries are keyed by the scoped request hash (ir.ScopedRequestHash): the
// SHA-256 of the request's canonical JSON, bound to the compiler
// configuration fingerprint and compiler version. Requests that differ
// only in whitespace, key order or number spelling share an entry.
//
// # Rules
//
//   - Entries are immutable. Put uses ON CONFLICT DO NOTHING, so a second
//     write of the same key keeps the first result.
//   - seq is a logical insertion counter. Listing orders by seq, then
//     request_hash COLLATE BINARY; timestamps are never used for ordering.
//   - Only successful compilations are cached. Errors are cheap to
//     recompute and depend on validator wording.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000: wait for locks up to 5 seconds
package store
