// Package checkpoint stores replay checkpoints and state snapshots so
// command handling can resume from the last folded sequence instead of
// refolding a game's whole history.
package checkpoint

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/mverberg/broadside/internal/domain/aggregate"
	"github.com/mverberg/broadside/internal/domain/module"
	"github.com/mverberg/broadside/internal/domain/replay"
)

// ErrGameIDRequired indicates a missing game id.
var ErrGameIDRequired = errors.New("game id is required")

// SystemStateCloner is implemented by system snapshots that can deep-copy
// themselves. Snapshots without it are stored by reference, which is only
// safe for immutable state.
type SystemStateCloner interface {
	CloneSystemState() any
}

// Memory stores checkpoints and state snapshots in memory.
type Memory struct {
	mu          sync.Mutex
	checkpoints map[string]replay.Checkpoint
	states      map[string]any
}

// NewMemory creates a new in-memory checkpoint store.
func NewMemory() *Memory {
	return &Memory{
		checkpoints: make(map[string]replay.Checkpoint),
		states:      make(map[string]any),
	}
}

// Get retrieves a checkpoint by game id.
func (m *Memory) Get(ctx context.Context, gameID string) (replay.Checkpoint, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return replay.Checkpoint{}, err
		}
	}
	if m == nil {
		return replay.Checkpoint{}, errors.New("checkpoint store is required")
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return replay.Checkpoint{}, ErrGameIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	checkpoint, ok := m.checkpoints[gameID]
	if !ok {
		return replay.Checkpoint{}, replay.ErrCheckpointNotFound
	}
	return checkpoint, nil
}

// Save persists a checkpoint.
func (m *Memory) Save(ctx context.Context, checkpoint replay.Checkpoint) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if m == nil {
		return errors.New("checkpoint store is required")
	}
	gameID := strings.TrimSpace(checkpoint.GameID)
	if gameID == "" {
		return ErrGameIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	checkpoint.GameID = gameID
	m.checkpoints[gameID] = checkpoint
	return nil
}

// GetState retrieves a replay state snapshot and its sequence.
func (m *Memory) GetState(ctx context.Context, gameID string) (any, uint64, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
	}
	if m == nil {
		return nil, 0, errors.New("checkpoint store is required")
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, 0, ErrGameIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot, ok := m.states[gameID]
	if !ok {
		return nil, 0, replay.ErrCheckpointNotFound
	}
	checkpoint, ok := m.checkpoints[gameID]
	if !ok {
		return nil, 0, replay.ErrCheckpointNotFound
	}

	return cloneSnapshotState(snapshot), checkpoint.LastSeq, nil
}

// SaveState persists a replay state snapshot.
func (m *Memory) SaveState(ctx context.Context, gameID string, lastSeq uint64, state any) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if m == nil {
		return errors.New("checkpoint store is required")
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return ErrGameIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.states[gameID] = cloneSnapshotState(state)
	m.checkpoints[gameID] = replay.Checkpoint{
		GameID:    gameID,
		LastSeq:   lastSeq,
		UpdatedAt: time.Now().UTC(),
	}
	return nil
}

// cloneSnapshotState copies the snapshot on both save and load so callers
// folding forward never mutate the stored prefix.
func cloneSnapshotState(state any) any {
	switch typed := state.(type) {
	case aggregate.State:
		return cloneAggregateState(typed)
	case *aggregate.State:
		if typed == nil {
			return aggregate.State{}
		}
		return cloneAggregateState(*typed)
	default:
		return state
	}
}

func cloneAggregateState(source aggregate.State) aggregate.State {
	cloned := source
	if source.Game.OwnedCards != nil {
		cloned.Game.OwnedCards = make(map[string]bool, len(source.Game.OwnedCards))
		for key, value := range source.Game.OwnedCards {
			cloned.Game.OwnedCards[key] = value
		}
	}
	if source.Systems != nil {
		cloned.Systems = make(map[module.Key]any, len(source.Systems))
		for key, value := range source.Systems {
			if cloner, ok := value.(SystemStateCloner); ok {
				cloned.Systems[key] = cloner.CloneSystemState()
			} else {
				cloned.Systems[key] = value
			}
		}
	}
	return cloned
}
