package battle

import (
	"errors"

	"github.com/mverberg/broadside/internal/domain/command"
	"github.com/mverberg/broadside/internal/domain/event"
	"github.com/mverberg/broadside/internal/domain/module"
)

const (
	// SystemID is the tactical module's system identifier.
	SystemID = "tactical"
	// SystemVersion is the registered rules version.
	SystemVersion = "1"
)

// Module wires the tactical card battle into the system registry.
type Module struct {
	decider Decider
	folder  *Folder
}

// NewModule returns the tactical battle system module.
func NewModule() *Module {
	return &Module{decider: NewDecider(), folder: NewFolder()}
}

// ID returns the system identifier.
func (m *Module) ID() string { return SystemID }

// Version returns the rules version.
func (m *Module) Version() string { return SystemVersion }

// RegisterCommands registers the tactical command definitions.
func (m *Module) RegisterCommands(registry *command.Registry) error {
	if registry == nil {
		return errors.New("command registry is nil")
	}
	for _, def := range systemCommandDefinitions {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// RegisterEvents registers the tactical event definitions.
func (m *Module) RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return errors.New("event registry is nil")
	}
	for _, def := range systemEventDefinitions() {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// EmittableEventTypes lists every system event the decider can emit.
// The core lifecycle facts emitted alongside (phase changes, battle
// records) are owned and registered by the game package.
func (m *Module) EmittableEventTypes() []event.Type {
	return []event.Type{
		EventTypeBattleStarted,
		EventTypeHandMulliganed,
		EventTypeEnergySpent,
		EventTypeCardDeployed,
		EventTypeShipAttacked,
		EventTypeShipDamaged,
		EventTypeFlagshipDamaged,
		EventTypeShipDestroyed,
		EventTypeShipHealed,
		EventTypeStatusApplied,
		EventTypeStatusTicked,
		EventTypeAbilityActivated,
		EventTypeShipMoved,
		EventTypeCardDrawn,
		EventTypeReserveUsed,
		EventTypeHandTrimmed,
		EventTypeShipsReadied,
		EventTypeTurnEnded,
		EventTypeTurnStarted,
		EventTypeEnergyRegenerated,
		EventTypeAttritionApplied,
		EventTypeBattleResolved,
	}
}

// Decider returns the tactical command decider.
func (m *Module) Decider() module.Decider { return m.decider }

// Folder returns the tactical event folder.
func (m *Module) Folder() module.Folder { return m.folder }

// StateFactory returns the factory seeding empty battle snapshots.
func (m *Module) StateFactory() module.StateFactory { return stateFactory{} }

type stateFactory struct{}

// NewSnapshotState returns the zero battle state; the game id is not
// part of battle state, so it is unused.
func (stateFactory) NewSnapshotState(gameID string) (any, error) {
	return &State{}, nil
}

var _ module.Module = (*Module)(nil)
