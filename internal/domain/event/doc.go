// Package event defines the canonical event envelope and event-type registry
// used by the game write path.
//
// Events are immutable facts emitted by accepted decisions. The registry
// enforces ownership boundaries (core vs system), actor metadata, and payload
// validity before persistence assigns sequence and integrity fields.
//
// A stable event contract is the foundation for replay determinism,
// projection correctness, and tooling that reads the same journal.
package event
