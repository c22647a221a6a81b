// Package game models the core game aggregate.
//
// The core aggregate tracks everything that outlives a single battle:
// the player profile, the owned card collection, the active quest, and
// lifetime battle statistics. Its lifecycle phase (idle, preparing,
// battling) is the routing context the engine consults before
// dispatching commands.
//
// The package holds:
//   - command deciders that translate core commands into events,
//   - fold logic for replaying core history,
//   - and the phase constraints used by the battle gate.
package game
