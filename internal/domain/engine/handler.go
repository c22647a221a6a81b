package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mverberg/broadside/internal/domain/command"
	"github.com/mverberg/broadside/internal/domain/event"
	"github.com/mverberg/broadside/internal/domain/game"
	"github.com/mverberg/broadside/internal/domain/replay"
)

var (
	// ErrCommandRegistryRequired indicates a missing command registry.
	ErrCommandRegistryRequired = errors.New("command registry is required")
	// ErrDeciderRequired indicates a missing decider.
	ErrDeciderRequired = errors.New("decider is required")
	// ErrGateStateLoaderRequired indicates a missing gate state loader.
	ErrGateStateLoaderRequired = errors.New("gate state loader is required")
)

// GateStateLoader loads the core game slice for gate checks.
type GateStateLoader interface {
	LoadGame(ctx context.Context, gameID string) (game.State, error)
}

// StateLoader loads domain state for deciders.
type StateLoader interface {
	Load(ctx context.Context, cmd command.Command) (any, error)
}

// EventJournal appends events to the journal.
type EventJournal interface {
	Append(ctx context.Context, evt event.Event) (event.Event, error)
}

// BatchEventJournal is implemented by journals that can append a decision's
// events in one atomic write. A command either lands every event it emitted
// or none of them; journals without batch support fall back to per-event
// appends.
type BatchEventJournal interface {
	BatchAppend(ctx context.Context, events []event.Event) ([]event.Event, error)
}

// Folder folds events into state.
type Folder interface {
	Fold(state any, evt event.Event) (any, error)
}

// Decider returns a decision for a command.
type Decider interface {
	Decide(state any, cmd command.Command, now func() time.Time) command.Decision
}

// Handler validates, gates, and decides commands.
//
// A mutex serializes the validate, gate, load, decide, append, fold cycle
// per handler so no command decides against state an in-flight command has
// not yet applied.
type Handler struct {
	Commands        *command.Registry
	Events          *event.Registry
	Journal         EventJournal
	Checkpoints     replay.CheckpointStore
	Snapshots       StateSnapshotStore
	Gate            DecisionGate
	GateStateLoader GateStateLoader
	StateLoader     StateLoader
	Decider         Decider
	Folder          Folder
	Now             func() time.Time

	mu sync.Mutex
}

// HandlerConfig carries the handler dependencies for NewHandler.
type HandlerConfig struct {
	Commands        *command.Registry
	Events          *event.Registry
	Journal         EventJournal
	Checkpoints     replay.CheckpointStore
	Snapshots       StateSnapshotStore
	Gate            DecisionGate
	GateStateLoader GateStateLoader
	StateLoader     StateLoader
	Decider         Decider
	Folder          Folder
	Now             func() time.Time
}

// NewHandler validates the required dependencies and returns a ready handler.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	if cfg.Commands == nil {
		return nil, ErrCommandRegistryRequired
	}
	if cfg.Decider == nil {
		return nil, ErrDeciderRequired
	}
	return &Handler{
		Commands:        cfg.Commands,
		Events:          cfg.Events,
		Journal:         cfg.Journal,
		Checkpoints:     cfg.Checkpoints,
		Snapshots:       cfg.Snapshots,
		Gate:            cfg.Gate,
		GateStateLoader: cfg.GateStateLoader,
		StateLoader:     cfg.StateLoader,
		Decider:         cfg.Decider,
		Folder:          cfg.Folder,
		Now:             cfg.Now,
	}, nil
}

// Result captures execution outcomes.
type Result struct {
	Decision command.Decision
	State    any
}

// Handle validates a command, checks gate policy, decides, and appends the
// resulting events to the journal.
func (h *Handler) Handle(ctx context.Context, cmd command.Command) (command.Decision, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	decision, _, _, err := h.decide(ctx, cmd)
	return decision, err
}

// Execute handles a command and folds the stored events into the returned
// state. The state loaded for the decision predates the append, so folding
// the stored batch once yields the post-command snapshot without replaying
// the journal a second time.
func (h *Handler) Execute(ctx context.Context, cmd command.Command) (Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	decision, normalized, state, err := h.decide(ctx, cmd)
	if err != nil {
		return Result{}, err
	}
	if h.Folder != nil && len(decision.Events) > 0 {
		for _, evt := range decision.Events {
			state, err = h.Folder.Fold(state, evt)
			if err != nil {
				return Result{}, wrapNonRetryable(err)
			}
		}
	}
	if len(decision.Events) > 0 {
		last := decision.Events[len(decision.Events)-1]
		if last.Seq > 0 {
			if h.Checkpoints != nil {
				err := h.Checkpoints.Save(ctx, replay.Checkpoint{
					GameID:    normalized.GameID,
					LastSeq:   last.Seq,
					UpdatedAt: time.Now().UTC(),
				})
				if err != nil {
					return Result{}, wrapNonRetryable(err)
				}
			}
			if h.Snapshots != nil {
				if err := h.Snapshots.SaveState(ctx, normalized.GameID, last.Seq, state); err != nil {
					return Result{}, wrapNonRetryable(err)
				}
			}
		}
	}
	return Result{Decision: decision, State: state}, nil
}

// decide runs the shared pipeline: validate, gate, load, decide, append.
// It returns the normalized command and the pre-append state so Execute can
// fold stored events exactly once. Callers hold the handler mutex.
func (h *Handler) decide(ctx context.Context, cmd command.Command) (command.Decision, command.Command, any, error) {
	if h.Commands == nil {
		return command.Decision{}, command.Command{}, nil, ErrCommandRegistryRequired
	}
	validated, err := h.Commands.ValidateForDecision(cmd)
	if err != nil {
		return command.Decision{}, command.Command{}, nil, err
	}
	cmd = validated

	if def, ok := h.Commands.Definition(cmd.Type); ok && def.Gate.Scope == command.GateScopeBattle {
		if h.GateStateLoader == nil {
			return command.Decision{}, cmd, nil, ErrGateStateLoaderRequired
		}
		gateState, err := h.GateStateLoader.LoadGame(ctx, cmd.GameID)
		if err != nil {
			return command.Decision{}, cmd, nil, err
		}
		if decision := h.Gate.Check(gateState, cmd); len(decision.Rejections) > 0 {
			return decision, cmd, nil, nil
		}
	}

	if h.Decider == nil {
		return command.Decision{}, cmd, nil, ErrDeciderRequired
	}
	var state any
	if h.StateLoader != nil {
		state, err = h.StateLoader.Load(ctx, cmd)
		if err != nil {
			return command.Decision{}, cmd, nil, err
		}
	}
	now := h.Now
	if now == nil {
		now = time.Now
	}
	decision := h.Decider.Decide(state, cmd, now)
	if h.Events != nil && len(decision.Events) > 0 {
		vetted := make([]event.Event, 0, len(decision.Events))
		for _, evt := range decision.Events {
			valid, err := h.Events.ValidateForAppend(evt)
			if err != nil {
				return command.Decision{}, cmd, nil, err
			}
			vetted = append(vetted, valid)
		}
		decision.Events = vetted
	}
	if h.Journal != nil && len(decision.Events) > 0 {
		if batch, ok := h.Journal.(BatchEventJournal); ok {
			stored, err := batch.BatchAppend(ctx, decision.Events)
			if err != nil {
				return command.Decision{}, cmd, nil, err
			}
			decision.Events = stored
		} else {
			stored := make([]event.Event, 0, len(decision.Events))
			for _, evt := range decision.Events {
				appended, err := h.Journal.Append(ctx, evt)
				if err != nil {
					return command.Decision{}, cmd, nil, err
				}
				stored = append(stored, appended)
			}
			decision.Events = stored
		}
	}
	return decision, cmd, state, nil
}
