// Package storage defines the persistence interfaces for the battle engine.
//
// It provides a high-level abstraction for the append-only event journal,
// replay checkpoints and snapshots, the projected read models, and the
// decision audit trail. Implementations of these interfaces (e.g., using
// SQLite) can be found in subpackages.
//
// # Error Types
//
// The package defines common error types used across storage implementations:
//   - ErrNotFound: Indicates a requested record is missing.
package storage
