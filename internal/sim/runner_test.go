package sim

import (
	"context"
	"strings"
	"testing"

	"github.com/mverberg/broadside/internal/domain/aggregate"
	"github.com/mverberg/broadside/internal/domain/battle"
	"github.com/mverberg/broadside/internal/domain/checkpoint"
	"github.com/mverberg/broadside/internal/domain/engine"
	"github.com/mverberg/broadside/internal/domain/journal"
)

// newTestHandler wires the full command path against in-memory stores:
// real registries, real deciders, real folds, so a runner test covers
// the same machinery production uses.
func newTestHandler(t *testing.T) *engine.Handler {
	t.Helper()
	registries, err := engine.BuildRegistries(battle.NewModule())
	if err != nil {
		t.Fatalf("build registries: %v", err)
	}
	decider, err := engine.NewCoreDecider(registries.Systems)
	if err != nil {
		t.Fatalf("new core decider: %v", err)
	}
	store := journal.NewMemory(registries.Events)
	checkpoints := checkpoint.NewMemory()
	folder := &aggregate.Folder{Events: registries.Events, SystemRegistry: registries.Systems}
	loader := engine.ReplayStateLoader{
		Events:       store,
		Checkpoints:  checkpoints,
		Snapshots:    checkpoints,
		Folder:       folder,
		StateFactory: func() any { return aggregate.State{} },
	}
	handler, err := engine.NewHandler(engine.HandlerConfig{
		Commands:        registries.Commands,
		Events:          registries.Events,
		Journal:         store,
		Checkpoints:     checkpoints,
		Snapshots:       checkpoints,
		Gate:            engine.DecisionGate{Registry: registries.Commands},
		GateStateLoader: engine.ReplayGateStateLoader{StateLoader: loader},
		StateLoader:     loader,
		Decider:         decider,
		Folder:          folder,
	})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler
}

func TestRunMatchPlaysToResolution(t *testing.T) {
	runner := &Runner{Executor: newTestHandler(t)}

	result, err := runner.RunMatch(context.Background(), MatchConfig{
		GameID: "game-sim-1",
		Seed:   42,
	})
	if err != nil {
		t.Fatalf("run match: %v", err)
	}

	if result.BattleID == "" {
		t.Fatal("expected a battle id")
	}
	switch result.Winner {
	case battle.WinnerPlayer, battle.WinnerOpponent, battle.WinnerDraw:
	default:
		t.Fatalf("winner = %q, want a terminal outcome", result.Winner)
	}
	if result.Victory == "" {
		t.Fatal("expected a victory condition")
	}
	if result.Turns == 0 {
		t.Fatal("expected at least one turn")
	}
	if result.Stats.BattlesFought != 1 {
		t.Fatalf("battles fought = %d, want 1", result.Stats.BattlesFought)
	}
	// The scripted policy mirrors the decider's legality checks, so a
	// fresh game should produce a rejection-free journal.
	if result.CommandsRejected != 0 {
		t.Fatalf("rejected commands = %d, want 0", result.CommandsRejected)
	}
	if result.Commands >= maxMatchCommands {
		t.Fatalf("commands = %d, want below the %d cap", result.Commands, maxMatchCommands)
	}
}

func TestRunMatchSameSeedSameOutcome(t *testing.T) {
	play := func() MatchResult {
		t.Helper()
		runner := &Runner{Executor: newTestHandler(t)}
		result, err := runner.RunMatch(context.Background(), MatchConfig{
			GameID: "game-sim-det",
			Seed:   7,
		})
		if err != nil {
			t.Fatalf("run match: %v", err)
		}
		return result
	}

	first, second := play(), play()
	if first.Winner != second.Winner || first.Victory != second.Victory {
		t.Fatalf("outcome differs: %s/%s vs %s/%s", first.Winner, first.Victory, second.Winner, second.Victory)
	}
	if first.Turns != second.Turns {
		t.Fatalf("turns = %d vs %d, want equal", first.Turns, second.Turns)
	}
	if first.Commands != second.Commands {
		t.Fatalf("commands = %d vs %d, want equal", first.Commands, second.Commands)
	}
	if first.PlayerHull != second.PlayerHull || first.OpponentHull != second.OpponentHull {
		t.Fatalf("hulls = %d/%d vs %d/%d, want equal", first.PlayerHull, first.OpponentHull, second.PlayerHull, second.OpponentHull)
	}
}

func TestRunMatchSecondMatchReusesProfile(t *testing.T) {
	runner := &Runner{Executor: newTestHandler(t)}

	first, err := runner.RunMatch(context.Background(), MatchConfig{GameID: "game-sim-2", Seed: 11})
	if err != nil {
		t.Fatalf("first match: %v", err)
	}
	second, err := runner.RunMatch(context.Background(), MatchConfig{GameID: "game-sim-2", Seed: 12})
	if err != nil {
		t.Fatalf("second match: %v", err)
	}

	if first.BattleID == second.BattleID {
		t.Fatalf("battle ids collide: %s", first.BattleID)
	}
	if second.Stats.BattlesFought != 2 {
		t.Fatalf("battles fought = %d, want 2", second.Stats.BattlesFought)
	}
	// The second run replays profile.create against an existing
	// profile, which the runner tolerates as already done.
	if second.CommandsRejected != 1 {
		t.Fatalf("rejected commands = %d, want 1", second.CommandsRejected)
	}
}

func TestRunMatchRequiresExecutor(t *testing.T) {
	runner := &Runner{}
	if _, err := runner.RunMatch(context.Background(), MatchConfig{GameID: "game-1"}); err == nil {
		t.Fatal("expected error without executor")
	}
}

func TestRunMatchRequiresGameID(t *testing.T) {
	runner := &Runner{Executor: newTestHandler(t)}
	_, err := runner.RunMatch(context.Background(), MatchConfig{})
	if err == nil || !strings.Contains(err.Error(), "game id") {
		t.Fatalf("err = %v, want game id requirement", err)
	}
}

func TestRunMatchTraceReceivesCommandLines(t *testing.T) {
	var trace strings.Builder
	runner := &Runner{Executor: newTestHandler(t), Trace: &trace}

	if _, err := runner.RunMatch(context.Background(), MatchConfig{GameID: "game-sim-3", Seed: 5}); err != nil {
		t.Fatalf("run match: %v", err)
	}
	if !strings.Contains(trace.String(), string(commandTypeBattleStart)) {
		t.Fatalf("trace missing %s:\n%s", commandTypeBattleStart, trace.String())
	}
	if !strings.Contains(trace.String(), string(commandTypeTurnEnd)) {
		t.Fatalf("trace missing %s:\n%s", commandTypeTurnEnd, trace.String())
	}
}
