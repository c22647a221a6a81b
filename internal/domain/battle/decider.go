package battle

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mverberg/broadside/internal/domain/aggregate"
	"github.com/mverberg/broadside/internal/domain/command"
	"github.com/mverberg/broadside/internal/domain/event"
	"github.com/mverberg/broadside/internal/domain/module"
)

// Decider handles every tactical command. It is pure: validation reads
// the aggregate snapshot, and accepted commands produce fat events that
// carry the computed outcomes.
type Decider struct{}

// NewDecider returns the tactical command decider.
func NewDecider() Decider {
	return Decider{}
}

// Decide validates a tactical command against the snapshot and returns
// the resulting events or rejections.
func (d Decider) Decide(state any, cmd command.Command, now func() time.Time) command.Decision {
	if now == nil {
		now = time.Now
	}
	snapshot := snapshotFromState(state)
	battle := battleFromSnapshot(snapshot)

	switch cmd.Type {
	case commandTypeBattleStart:
		return d.decideBattleStart(snapshot, battle, cmd, now)
	case commandTypeHandMulligan:
		return d.decideHandMulligan(battle, cmd, now)
	case commandTypeCardDeploy:
		return d.decideCardDeploy(battle, cmd, now)
	case commandTypeShipAttack:
		return d.decideShipAttack(battle, cmd, now)
	case commandTypeAbilityActivate:
		return d.decideAbilityActivate(battle, cmd, now)
	case commandTypeShipMove:
		return d.decideShipMove(battle, cmd, now)
	case commandTypeCardDraw:
		return d.decideCardDraw(battle, cmd, now)
	case commandTypeReserveUse:
		return d.decideReserveUse(battle, cmd, now)
	case commandTypeTurnEnd:
		return d.decideTurnEnd(battle, cmd, now)
	}
	return command.Reject(command.Rejection{
		Code:    command.RejectionCodeCommandTypeUnsupported,
		Message: fmt.Sprintf("command type %s is not supported by the tactical decider", cmd.Type),
	})
}

// DeciderHandledCommands lists every command type Decide dispatches on.
func (d Decider) DeciderHandledCommands() []command.Type {
	return []command.Type{
		commandTypeBattleStart,
		commandTypeHandMulligan,
		commandTypeCardDeploy,
		commandTypeShipAttack,
		commandTypeAbilityActivate,
		commandTypeShipMove,
		commandTypeCardDraw,
		commandTypeReserveUse,
		commandTypeTurnEnd,
	}
}

// snapshotFromState tolerates the shapes the engine hands deciders:
// nil before the first event, a value, or a pointer.
func snapshotFromState(state any) aggregate.State {
	switch typed := state.(type) {
	case aggregate.State:
		return typed
	case *aggregate.State:
		if typed != nil {
			return *typed
		}
	}
	return aggregate.State{}
}

func battleFromSnapshot(snapshot aggregate.State) *State {
	raw := snapshot.SystemState(SystemID, SystemVersion)
	s, err := assertState(raw)
	if err != nil {
		return &State{}
	}
	return s
}

func decodePayload[P any](cmd command.Command, payload *P) *command.Rejection {
	if err := json.Unmarshal(cmd.PayloadJSON, payload); err != nil {
		return &command.Rejection{
			Code:    command.RejectionCodePayloadDecodeFailed,
			Message: fmt.Sprintf("decode %s payload: %v", cmd.Type, err),
		}
	}
	return nil
}

// sideForCommand resolves which combatant a command acts for. Player
// and opponent actors default to their own side and may not act for
// the other; system actors must name the combatant explicitly.
func sideForCommand(cmd command.Command, declared Side) (Side, *command.Rejection) {
	if declared == "" {
		switch cmd.ActorType {
		case command.ActorTypePlayer:
			return SidePlayer, nil
		case command.ActorTypeOpponent:
			return SideOpponent, nil
		}
		return "", &command.Rejection{
			Code:    rejectionCodeCombatantInvalid,
			Message: "combatant is required for system actors",
		}
	}
	if declared != SidePlayer && declared != SideOpponent {
		return "", &command.Rejection{
			Code:    rejectionCodeCombatantInvalid,
			Message: fmt.Sprintf("combatant %q is not player or opponent", declared),
		}
	}
	if cmd.ActorType == command.ActorTypePlayer && declared != SidePlayer {
		return "", &command.Rejection{
			Code:    rejectionCodeCombatantMismatch,
			Message: "player actors may only act for the player combatant",
		}
	}
	if cmd.ActorType == command.ActorTypeOpponent && declared != SideOpponent {
		return "", &command.Rejection{
			Code:    rejectionCodeCombatantMismatch,
			Message: "opponent actors may only act for the opponent combatant",
		}
	}
	return declared, nil
}

// requireTurn gates the in-turn actions: an active battle in the
// playing phase with the acting side holding the turn.
func requireTurn(s *State, side Side) *command.Rejection {
	if !s.Active() {
		return &command.Rejection{
			Code:    rejectionCodeBattleNotActive,
			Message: "no battle is in progress",
		}
	}
	if s.Phase != PhasePlaying {
		return &command.Rejection{
			Code:    rejectionCodePhaseInvalid,
			Message: fmt.Sprintf("action requires the playing phase, battle is in %s", s.Phase),
		}
	}
	if s.ActiveSide != side {
		return &command.Rejection{
			Code:    rejectionCodeNotYourTurn,
			Message: fmt.Sprintf("it is the %s turn", s.ActiveSide),
		}
	}
	return nil
}

// batch accumulates a command's events while advancing a working copy
// of the battle through the same fold handlers replay uses, so each
// emission validates against the effects of the ones before it.
type batch struct {
	cmd      command.Command
	ts       time.Time
	battleID string
	state    *State
	events   []event.Event
	err      error
}

func newBatch(cmd command.Command, ts time.Time, snapshot *State) *batch {
	return &batch{cmd: cmd, ts: ts, battleID: snapshot.BattleID, state: snapshot.Clone()}
}

// emit appends a battle event and folds it into the working copy.
func (b *batch) emit(eventType event.Type, entityType, entityID string, payload any) {
	if b.err != nil {
		return
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		b.err = fmt.Errorf("encode %s payload: %w", eventType, err)
		return
	}
	evt := command.NewEvent(b.cmd, eventType, entityType, entityID, payloadJSON, b.ts)
	evt.BattleID = b.battleID
	folded, err := battleFolds.Fold(b.state, evt)
	if err != nil {
		b.err = fmt.Errorf("apply %s: %w", eventType, err)
		return
	}
	b.state = folded.(*State)
	b.events = append(b.events, evt)
}

// emitCore appends a core lifecycle fact. Core events fold into the
// game aggregate, not the battle, so the working copy is untouched.
func (b *batch) emitCore(eventType event.Type, entityType, entityID string, payload any) {
	if b.err != nil {
		return
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		b.err = fmt.Errorf("encode %s payload: %w", eventType, err)
		return
	}
	evt := command.NewCoreEvent(b.cmd, eventType, entityType, entityID, payloadJSON, b.ts)
	evt.BattleID = b.battleID
	b.events = append(b.events, evt)
}

func (b *batch) decision() command.Decision {
	if b.err != nil {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeInternalError,
			Message: b.err.Error(),
		})
	}
	return command.Accept(b.events...)
}

var _ module.Decider = Decider{}
var _ module.CommandTyper = Decider{}
