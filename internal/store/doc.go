// Package store provides SQLite-backed durable storage for signoff records.
//
// The store is a key-value blob store: each namespace maps to one opaque
// body, and the record register keeps its entire mapping of record-id to
// record in a single JSON blob under the fixed Namespace key. There are no
// per-record rows and no transactions spanning records; every save replaces
// the whole mapping atomically in one upsert.
//
// # Failure Policy
//
// Reads tolerate anything: a missing blob, unreadable database row, or
// malformed JSON all resolve to an empty mapping so the application keeps
// working from scratch. Writes are best-effort: failures are logged and
// reported only as a status bool, never as an error to the user. This is a
// deliberate availability-over-durability trade-off - the in-memory state
// stays authoritative for the session.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
