// Package engine wires command validation, gate checks, decision routing,
// event append, and replay-backed state loading for domain command execution.
//
// The package is the runtime seam between the immutable domain contracts and
// the callers that drive a game forward: it validates intent, applies gate
// policy, persists events, and returns a replayable decision and state for
// downstream consumers. BuildRegistries is the shared bootstrap point where
// every command and event contract becomes a single validated registry.
package engine
