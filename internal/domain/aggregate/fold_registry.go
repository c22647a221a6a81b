package aggregate

import (
	"github.com/mverberg/broadside/internal/domain/event"
	"github.com/mverberg/broadside/internal/domain/game"
)

// foldEntry describes how a set of event types maps to a fold function that
// updates one slice of aggregate state.
type foldEntry struct {
	// types returns the event types handled by this fold entry.
	types func() []event.Type
	// fold applies a single event to a sub-state and writes the result back
	// into the aggregate state.
	fold func(state *State, evt event.Event) error
}

// coreFoldEntries returns the declarative fold dispatch table for all core
// domains. Adding a new core domain requires only adding an entry here.
func coreFoldEntries() []foldEntry {
	return []foldEntry{
		{
			types: game.FoldHandledTypes,
			fold: func(state *State, evt event.Event) error {
				state.Game = game.Fold(state.Game, evt)
				return nil
			},
		},
	}
}
