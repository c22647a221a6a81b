package aggregate

import (
	"fmt"

	"github.com/mverberg/broadside/internal/domain/game"
	"github.com/mverberg/broadside/internal/domain/module"
)

// State captures aggregate state for one game: the core slice plus the
// per-system snapshots keyed by (system id, version).
type State struct {
	Game    game.State
	Systems map[module.Key]any
}

// SystemState returns the stored snapshot for a system module, or nil when
// no event for that system has been folded yet.
func (s State) SystemState(id, version string) any {
	if s.Systems == nil {
		return nil
	}
	return s.Systems[module.Key{ID: id, Version: version}]
}

// AssertState coerces an untyped snapshot into the expected concrete state.
// Snapshots travel as any through checkpoints and module routing; nil means
// "no history yet" and yields the zero value. Both value and pointer forms
// are accepted because module folders may return either.
func AssertState[S any](state any) (S, error) {
	var zero S
	if state == nil {
		return zero, nil
	}
	if typed, ok := state.(S); ok {
		return typed, nil
	}
	if ptr, ok := state.(*S); ok {
		if ptr == nil {
			return zero, nil
		}
		return *ptr, nil
	}
	return zero, fmt.Errorf("state has unexpected type %T", state)
}
