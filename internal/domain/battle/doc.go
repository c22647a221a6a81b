// Package battle implements the tactical card-battle system module.
//
// A battle is a self-contained sub-state keyed by battle id inside the
// game aggregate: two combatants, a five-slot battlefield each, decks,
// hands, energy, and a turn cycle that alternates until a flagship
// falls, attrition finishes a combatant, or the round limit forces a
// hull comparison.
//
// The decider validates commands against the replayed snapshot and
// emits fat events: every value a fold needs (damage totals, energy
// totals, shuffled deck orders, ship base stats) is computed at
// decision time and recorded in the payload. Folds assign those values
// and never consult the card catalog, so replay is deterministic even
// if the catalog changes between versions.
//
// Multi-event cascades (destruction triggers, victory resolution, the
// turn-start group) are built against a working copy of the state that
// is advanced event by event with the same fold handlers replay uses,
// so later validations in a batch observe earlier effects.
package battle
