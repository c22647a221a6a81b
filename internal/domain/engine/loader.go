package engine

import (
	"context"
	"errors"

	"github.com/mverberg/broadside/internal/domain/aggregate"
	"github.com/mverberg/broadside/internal/domain/command"
	"github.com/mverberg/broadside/internal/domain/game"
	"github.com/mverberg/broadside/internal/domain/replay"
)

// ReplayStateLoader replays journal events to build state for command handling.
//
// It is intentionally thin and composable: checkpoints, snapshots, and a
// folder produce deterministic state for the current command, whether from
// scratch or from a cached prefix.
type ReplayStateLoader struct {
	Events       replay.EventStore
	Checkpoints  replay.CheckpointStore
	Snapshots    StateSnapshotStore
	Folder       replay.Folder
	StateFactory func() any
	Options      replay.Options
}

// StateSnapshotStore loads and saves replay state snapshots keyed by game.
type StateSnapshotStore interface {
	GetState(ctx context.Context, gameID string) (state any, lastSeq uint64, err error)
	SaveState(ctx context.Context, gameID string, lastSeq uint64, state any) error
}

// Load replays events to reconstruct state for a game.
//
// The load flow is the same source used during command handling and in replay
// mode, which keeps command outcomes reproducible from the journal alone.
func (l ReplayStateLoader) Load(ctx context.Context, cmd command.Command) (any, error) {
	if l.Events == nil {
		return nil, replay.ErrEventStoreRequired
	}
	if l.Checkpoints == nil {
		return nil, replay.ErrCheckpointStoreRequired
	}
	if l.Folder == nil {
		return nil, replay.ErrFolderRequired
	}
	var state any
	options := l.Options
	if l.Snapshots != nil {
		snapshotState, snapshotSeq, err := l.Snapshots.GetState(ctx, cmd.GameID)
		if err != nil {
			if !errors.Is(err, replay.ErrCheckpointNotFound) {
				return nil, err
			}
		} else {
			state = snapshotState
			if snapshotSeq > options.AfterSeq {
				options.AfterSeq = snapshotSeq
			}
		}
	}
	if state == nil && l.StateFactory != nil {
		state = l.StateFactory()
	}
	result, err := replay.Replay(ctx, l.Events, l.Checkpoints, l.Folder, cmd.GameID, state, options)
	if err != nil {
		return nil, err
	}
	return result.State, nil
}

// ReplayGateStateLoader exposes the core game slice for gate checks.
type ReplayGateStateLoader struct {
	StateLoader ReplayStateLoader
}

// LoadGame returns the core game state for gate checks.
//
// The aggregate is narrowed to the game slice because gate policy only reads
// the outer phase; battle snapshots never influence gating directly.
func (l ReplayGateStateLoader) LoadGame(ctx context.Context, gameID string) (game.State, error) {
	state, err := l.StateLoader.Load(ctx, command.Command{GameID: gameID})
	if err != nil {
		return game.State{}, err
	}
	snapshot, err := aggregate.AssertState[aggregate.State](state)
	if err != nil {
		return game.State{}, err
	}
	return snapshot.Game, nil
}
