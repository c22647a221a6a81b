// Package replay rebuilds aggregate state by folding journal events in
// sequence order. The same fold path serves command handling and
// historical reconstruction, which keeps decisions reproducible.
package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mverberg/broadside/internal/domain/event"
)

const defaultPageSize = 200

var (
	// ErrEventStoreRequired indicates a missing event store.
	ErrEventStoreRequired = errors.New("event store is required")
	// ErrCheckpointStoreRequired indicates a missing checkpoint store.
	ErrCheckpointStoreRequired = errors.New("checkpoint store is required")
	// ErrFolderRequired indicates a missing folder.
	ErrFolderRequired = errors.New("folder is required")
	// ErrGameIDRequired indicates a missing game id.
	ErrGameIDRequired = errors.New("game id is required")
	// ErrCheckpointNotFound indicates no checkpoint exists yet.
	ErrCheckpointNotFound = errors.New("checkpoint not found")
)

// EventStore lists events for replay.
type EventStore interface {
	ListEvents(ctx context.Context, gameID string, afterSeq uint64, limit int) ([]event.Event, error)
}

// CheckpointStore manages replay checkpoints.
type CheckpointStore interface {
	Get(ctx context.Context, gameID string) (Checkpoint, error)
	Save(ctx context.Context, checkpoint Checkpoint) error
}

// Folder folds a journal event into state.
type Folder interface {
	Fold(state any, evt event.Event) (any, error)
}

// Checkpoint captures the last folded sequence for a game.
type Checkpoint struct {
	GameID    string
	LastSeq   uint64
	UpdatedAt time.Time
}

// Options configures replay behavior.
type Options struct {
	// AfterSeq skips events at or below the given sequence.
	AfterSeq uint64
	// UntilSeq stops before folding events above the given sequence.
	// Zero means replay to the journal head.
	UntilSeq uint64
	// PageSize bounds each ListEvents call.
	PageSize int
}

// Result captures replay outcomes.
type Result struct {
	State   any
	LastSeq uint64
	Folded  int
	// Skipped counts stored events whose payloads no longer decode.
	Skipped int
}

// corruptPayload reports whether a fold error traces back to a stored
// payload that no longer decodes as JSON.
func corruptPayload(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

// Replay folds events in order and updates the checkpoint after each
// fold. A stored checkpoint ahead of Options.AfterSeq wins, so repeated
// replays resume instead of refolding history.
func Replay(ctx context.Context, store EventStore, checkpoints CheckpointStore, folder Folder, gameID string, state any, options Options) (Result, error) {
	if store == nil {
		return Result{}, ErrEventStoreRequired
	}
	if checkpoints == nil {
		return Result{}, ErrCheckpointStoreRequired
	}
	if folder == nil {
		return Result{}, ErrFolderRequired
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return Result{}, ErrGameIDRequired
	}

	checkpointSeq := uint64(0)
	checkpoint, err := checkpoints.Get(ctx, gameID)
	if err != nil {
		if !errors.Is(err, ErrCheckpointNotFound) {
			return Result{}, err
		}
	} else {
		checkpointSeq = checkpoint.LastSeq
	}

	lastSeq := options.AfterSeq
	if checkpointSeq > lastSeq {
		lastSeq = checkpointSeq
	}
	pageSize := options.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	result := Result{State: state, LastSeq: lastSeq}
	for {
		events, err := store.ListEvents(ctx, gameID, result.LastSeq, pageSize)
		if err != nil {
			return result, err
		}
		if len(events) == 0 {
			return result, nil
		}
		for _, evt := range events {
			if options.UntilSeq > 0 && evt.Seq > options.UntilSeq {
				return result, nil
			}
			expectedSeq := result.LastSeq + 1
			if evt.Seq != expectedSeq {
				return result, fmt.Errorf("event sequence gap: expected %d got %d", expectedSeq, evt.Seq)
			}
			nextState, err := folder.Fold(result.State, evt)
			switch {
			case err == nil:
				result.State = nextState
				result.Folded++
			case corruptPayload(err):
				// A payload that no longer decodes is skipped so one bad
				// row cannot wedge every future replay of the game.
				log.Printf("replay: skipping event seq %d type %s: %v", evt.Seq, evt.Type, err)
				result.Skipped++
			default:
				return result, err
			}
			result.LastSeq = evt.Seq
			if err := checkpoints.Save(ctx, Checkpoint{GameID: gameID, LastSeq: result.LastSeq, UpdatedAt: time.Now().UTC()}); err != nil {
				return result, err
			}
		}
	}
}
