// Package store provides SQLite-backed durable storage for the calculation
// history log. *Store implements history.Store.
//
// # Ordering
//
//   - Every row gets seq INTEGER PRIMARY KEY AUTOINCREMENT (insertion order)
//   - List uses ORDER BY created_at DESC, seq DESC so equal timestamps
//     still come back newest-append first
//
// # Identity
//
// Entry ids are UUIDv7 strings assigned at append time (UNIQUE column).
// Timestamps are stored as Unix nanoseconds and read back in UTC.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - Single connection: every call is serialised, List is linearizable
//
// The driver is mattn/go-sqlite3 on cgo builds and the pure-Go
// glebarez/go-sqlite when built with CGO_ENABLED=0.
package store
