package broadside

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/mverberg/broadside/internal/domain/aggregate"
	"github.com/mverberg/broadside/internal/domain/battle"
	"github.com/mverberg/broadside/internal/domain/checkpoint"
	"github.com/mverberg/broadside/internal/domain/command"
	"github.com/mverberg/broadside/internal/domain/engine"
	"github.com/mverberg/broadside/internal/domain/event"
	"github.com/mverberg/broadside/internal/domain/journal"
	"github.com/mverberg/broadside/internal/sim"
	"github.com/mverberg/broadside/internal/storage"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("BROADSIDE_DB_PATH", "")
	t.Setenv("BROADSIDE_TOOL_TIMEOUT", "")

	fs := flag.NewFlagSet("broadside", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if want := filepath.Join("data", "broadside.db"); cfg.DBPath != want {
		t.Fatalf("db path = %q, want %q", cfg.DBPath, want)
	}
	if cfg.Timeout != 10*time.Minute {
		t.Fatalf("timeout = %v, want 10m", cfg.Timeout)
	}
	if cfg.Limit != 20 {
		t.Fatalf("limit = %d, want 20", cfg.Limit)
	}
	if cfg.Seed != 1 {
		t.Fatalf("seed = %d, want 1", cfg.Seed)
	}
}

func TestParseConfigEnvAndFlags(t *testing.T) {
	t.Setenv("BROADSIDE_DB_PATH", "env.db")

	fs := flag.NewFlagSet("broadside", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "env.db" {
		t.Fatalf("db path = %q, want env override", cfg.DBPath)
	}

	fs = flag.NewFlagSet("broadside", flag.ContinueOnError)
	cfg, err = ParseConfig(fs, []string{
		"-db-path", "flag.db",
		"-demo",
		"-game-id", "g1",
		"-seed", "42",
		"-json",
	})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "flag.db" {
		t.Fatalf("db path = %q, want flag override", cfg.DBPath)
	}
	if !cfg.Demo || cfg.GameID != "g1" || cfg.Seed != 42 || !cfg.JSONOutput {
		t.Fatalf("flags not applied: %+v", cfg)
	}
}

func TestRunModeValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"no mode", Config{}, "one of -demo"},
		{"combined modes", Config{Demo: true, Stats: true, GameID: "g"}, "cannot be combined"},
		{"bounds without replay", Config{Demo: true, GameID: "g", AfterSeq: 3}, "require -replay"},
		{"demo flags without demo", Config{Stats: true, GameID: "g", Limit: 5, Trace: true}, "require -demo"},
		{"verify with game id", Config{Verify: true, GameID: "g"}, "-game-id"},
		{"missing game id", Config{Replay: true}, "-game-id is required"},
		{"stats limit", Config{Stats: true, GameID: "g"}, "-limit must be > 0"},
		{"audit limit", Config{Audit: true, GameID: "g"}, "-limit must be > 0"},
		{"audit with stats", Config{Audit: true, Stats: true, GameID: "g", Limit: 5}, "cannot be combined"},
	}

	for _, tc := range tests {
		err := Run(context.Background(), tc.cfg, nil, nil)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error = %q, want substring %q", tc.name, err, tc.want)
		}
	}
}

func TestAuditExecutorRecordsDecisions(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	audit := &fakeAuditStore{}
	exec := auditExecutor{
		next: &fakeExecutor{results: map[command.Type]engine.Result{
			"profile.create": {Decision: command.Decision{Events: make([]event.Event, 2)}},
			"sys.tactical.card.deploy": {Decision: command.Decision{Rejections: []command.Rejection{
				{Code: "ENERGY_INSUFFICIENT", Message: "deploy costs more than current energy"},
			}}},
		}},
		audit: audit,
		now:   func() time.Time { return now },
	}

	_, err := exec.Execute(context.Background(), command.Command{
		GameID:    "g1",
		Type:      "profile.create",
		ActorType: command.ActorTypePlayer,
		RequestID: "r1",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	_, err = exec.Execute(context.Background(), command.Command{
		GameID:    "g1",
		BattleID:  "b1",
		Type:      "sys.tactical.card.deploy",
		ActorType: command.ActorTypeOpponent,
		RequestID: "r2",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if len(audit.records) != 2 {
		t.Fatalf("records = %d, want 2", len(audit.records))
	}
	accepted := audit.records[0]
	if accepted.Outcome != storage.DecisionAccepted || accepted.EventCount != 2 {
		t.Fatalf("accepted record = %+v", accepted)
	}
	if accepted.CommandType != "profile.create" || accepted.RequestID != "r1" {
		t.Fatalf("accepted identity = %+v", accepted)
	}
	if accepted.TraceID != "" || accepted.SpanID != "" {
		t.Fatalf("trace correlation = %q/%q, want empty without a span", accepted.TraceID, accepted.SpanID)
	}
	if !accepted.Timestamp.Equal(now) {
		t.Fatalf("timestamp = %v, want %v", accepted.Timestamp, now)
	}
	rejected := audit.records[1]
	if rejected.Outcome != storage.DecisionRejected || rejected.EventCount != 0 {
		t.Fatalf("rejected record = %+v", rejected)
	}
	if rejected.BattleID != "b1" || rejected.ActorType != string(command.ActorTypeOpponent) {
		t.Fatalf("rejected identity = %+v", rejected)
	}
	if len(rejected.RejectionCodes) != 1 || rejected.RejectionCodes[0] != "ENERGY_INSUFFICIENT" {
		t.Fatalf("rejection codes = %v", rejected.RejectionCodes)
	}
}

func TestAuditExecutorRecordsTraceContext(t *testing.T) {
	audit := &fakeAuditStore{}
	exec := auditExecutor{
		next: &fakeExecutor{results: map[command.Type]engine.Result{
			"profile.create": {},
		}},
		audit: audit,
	}

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "demo")
	defer span.End()

	if _, err := exec.Execute(ctx, command.Command{GameID: "g1", Type: "profile.create"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(audit.records) != 1 {
		t.Fatalf("records = %d, want 1", len(audit.records))
	}
	sc := span.SpanContext()
	if audit.records[0].TraceID != sc.TraceID().String() || audit.records[0].SpanID != sc.SpanID().String() {
		t.Fatalf("trace correlation = %q/%q, want %s/%s",
			audit.records[0].TraceID, audit.records[0].SpanID, sc.TraceID(), sc.SpanID())
	}
}

func TestAuditExecutorSurfacesAppendFailure(t *testing.T) {
	exec := auditExecutor{
		next: &fakeExecutor{results: map[command.Type]engine.Result{
			"profile.create": {},
		}},
		audit: &fakeAuditStore{appendErr: errors.New("disk full")},
	}

	_, err := exec.Execute(context.Background(), command.Command{GameID: "g1", Type: "profile.create"})
	if err == nil || !strings.Contains(err.Error(), "append decision record") {
		t.Fatalf("err = %v, want append failure", err)
	}
}

func TestAuditExecutorSkipsRecordOnExecutorError(t *testing.T) {
	audit := &fakeAuditStore{}
	exec := auditExecutor{
		next:  &fakeExecutor{err: errors.New("journal offline")},
		audit: audit,
	}

	if _, err := exec.Execute(context.Background(), command.Command{GameID: "g1", Type: "profile.create"}); err == nil {
		t.Fatal("expected executor error")
	}
	if len(audit.records) != 0 {
		t.Fatalf("records = %d, want none for infrastructure errors", len(audit.records))
	}
}

func TestRunVerifyReportsOutcome(t *testing.T) {
	result := runVerify(context.Background(), &fakeIntegrityStore{})
	if result.ExitCode != 0 {
		t.Fatalf("exit code = %d: %s", result.ExitCode, result.Error)
	}
	var report verifyReport
	if err := json.Unmarshal(result.Report, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if !report.OK {
		t.Fatal("expected ok report")
	}

	result = runVerify(context.Background(), &fakeIntegrityStore{err: errors.New("chain hash mismatch")})
	if result.ExitCode != 1 {
		t.Fatalf("exit code = %d, want 1", result.ExitCode)
	}
	if !strings.Contains(result.Error, "chain hash mismatch") {
		t.Fatalf("error = %q", result.Error)
	}
}

func TestRunStatsReportsReadModels(t *testing.T) {
	store := &fakeStatsStore{
		player: storage.PlayerStats{
			GameID:        "g1",
			PlayerName:    "Captain",
			BattlesFought: 2,
			BattlesWon:    1,
			BattlesLost:   1,
		},
		battles: []storage.BattleSummary{
			{BattleID: "b2", GameID: "g1", Status: storage.BattleStatusResolved, Winner: "player"},
			{BattleID: "b1", GameID: "g1", Status: storage.BattleStatusResolved, Winner: "opponent"},
		},
		totals: storage.GameStatistics{GameCount: 1, EventCount: 90, BattleCount: 2, ResolvedBattleCount: 2},
	}

	result := runStats(context.Background(), store, "g1", 20)
	if result.ExitCode != 0 {
		t.Fatalf("exit code = %d: %s", result.ExitCode, result.Error)
	}
	var report statsReport
	if err := json.Unmarshal(result.Report, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Player == nil || report.Player.BattlesFought != 2 {
		t.Fatalf("player = %+v", report.Player)
	}
	if len(report.Battles) != 2 || report.Battles[0].BattleID != "b2" {
		t.Fatalf("battles = %+v", report.Battles)
	}
	if report.Totals.ResolvedBattleCount != 2 {
		t.Fatalf("totals = %+v", report.Totals)
	}
}

func TestRunStatsOmitsMissingPlayer(t *testing.T) {
	store := &fakeStatsStore{playerErr: storage.ErrNotFound}

	result := runStats(context.Background(), store, "g1", 20)
	if result.ExitCode != 0 {
		t.Fatalf("exit code = %d: %s", result.ExitCode, result.Error)
	}
	var report statsReport
	if err := json.Unmarshal(result.Report, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Player != nil {
		t.Fatalf("player = %+v, want omitted", report.Player)
	}
}

func TestRunAuditReportsDecisionLog(t *testing.T) {
	store := &fakeAuditStore{records: []storage.DecisionRecord{
		{GameID: "g1", CommandType: "sys.tactical.turn.end", Outcome: storage.DecisionAccepted, EventCount: 3},
		{GameID: "g1", CommandType: "sys.tactical.card.deploy", Outcome: storage.DecisionRejected, RejectionCodes: []string{"ENERGY_INSUFFICIENT"}},
	}}

	result := runAudit(context.Background(), store, "g1", 10)
	if result.ExitCode != 0 {
		t.Fatalf("exit code = %d: %s", result.ExitCode, result.Error)
	}
	var report auditReport
	if err := json.Unmarshal(result.Report, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(report.Decisions) != 2 {
		t.Fatalf("decisions = %d, want 2", len(report.Decisions))
	}
	if report.Decisions[1].RejectionCodes[0] != "ENERGY_INSUFFICIENT" {
		t.Fatalf("decisions = %+v", report.Decisions)
	}
}

func TestRunAuditEmptyLogIsNotAnError(t *testing.T) {
	result := runAudit(context.Background(), &fakeAuditStore{}, "g1", 10)
	if result.ExitCode != 0 {
		t.Fatalf("exit code = %d: %s", result.ExitCode, result.Error)
	}
	if !strings.Contains(string(result.Report), `"decisions":[]`) {
		t.Fatalf("report = %s, want an empty decision list", result.Report)
	}
}

// newMemoryHandler wires the production command path over in-memory stores
// and exposes the journal for replay assertions.
func newMemoryHandler(t *testing.T) (*engine.Handler, *journal.Memory, engine.Registries) {
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
	return handler, store, registries
}

func TestRunReplayRebuildsResolvedMatch(t *testing.T) {
	handler, store, registries := newMemoryHandler(t)
	runner := &sim.Runner{Executor: handler}
	match, err := runner.RunMatch(context.Background(), sim.MatchConfig{GameID: "game-replay-1", Seed: 9})
	if err != nil {
		t.Fatalf("run match: %v", err)
	}

	folder := &aggregate.Folder{Events: registries.Events, SystemRegistry: registries.Systems}
	result := runReplay(context.Background(), store, nil, folder, "game-replay-1", 0, 0)
	if result.ExitCode != 0 {
		t.Fatalf("replay failed: %s", result.Error)
	}
	var report replayReport
	if err := json.Unmarshal(result.Report, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Folded == 0 {
		t.Fatal("expected folded events")
	}
	if report.Skipped != 0 {
		t.Fatalf("skipped = %d, want 0", report.Skipped)
	}
	if report.Phase != "idle" {
		t.Fatalf("phase = %q, want idle after resolution", report.Phase)
	}
	if report.Battle == nil {
		t.Fatal("expected battle snapshot in replayed state")
	}
	if report.Battle.Phase != "resolved" {
		t.Fatalf("battle phase = %q, want resolved", report.Battle.Phase)
	}
	if report.Battle.Winner != string(match.Winner) {
		t.Fatalf("replayed winner = %q, live winner = %q", report.Battle.Winner, match.Winner)
	}
}

func TestRunReplayHonorsUntilSeq(t *testing.T) {
	handler, store, registries := newMemoryHandler(t)
	runner := &sim.Runner{Executor: handler}
	if _, err := runner.RunMatch(context.Background(), sim.MatchConfig{GameID: "game-replay-2", Seed: 9}); err != nil {
		t.Fatalf("run match: %v", err)
	}

	folder := &aggregate.Folder{Events: registries.Events, SystemRegistry: registries.Systems}
	result := runReplay(context.Background(), store, nil, folder, "game-replay-2", 0, 3)
	if result.ExitCode != 0 {
		t.Fatalf("replay failed: %s", result.Error)
	}
	var report replayReport
	if err := json.Unmarshal(result.Report, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.LastSeq != 3 || report.Folded != 3 {
		t.Fatalf("last seq = %d folded = %d, want 3 and 3", report.LastSeq, report.Folded)
	}
}

func TestRunDemoThenInspectOnSQLite(t *testing.T) {
	t.Setenv("BROADSIDE_EVENT_HMAC_KEY", "test-hmac-key")
	dbPath := filepath.Join(t.TempDir(), "broadside.db")
	ctx := context.Background()

	var out, errOut strings.Builder
	err := Run(ctx, Config{Demo: true, GameID: "game-cli-1", Seed: 5, DBPath: dbPath, JSONOutput: true}, &out, &errOut)
	if err != nil {
		t.Fatalf("run demo: %v (stderr: %s)", err, errOut.String())
	}
	var demoResult runResult
	if err := json.Unmarshal([]byte(out.String()), &demoResult); err != nil {
		t.Fatalf("decode demo output: %v (%s)", err, out.String())
	}
	if demoResult.Mode != "demo" || demoResult.Error != "" {
		t.Fatalf("demo result = %+v", demoResult)
	}
	var demo demoReport
	if err := json.Unmarshal(demoResult.Report, &demo); err != nil {
		t.Fatalf("decode demo report: %v", err)
	}
	if demo.Match.Winner == "" || demo.Match.Turns == 0 {
		t.Fatalf("match = %+v", demo.Match)
	}
	if demo.AppliedSeq == 0 {
		t.Fatal("expected read models to catch up past seq 0")
	}

	out.Reset()
	errOut.Reset()
	err = Run(ctx, Config{Stats: true, GameID: "game-cli-1", DBPath: dbPath, Limit: 20, JSONOutput: true}, &out, &errOut)
	if err != nil {
		t.Fatalf("run stats: %v (stderr: %s)", err, errOut.String())
	}
	var statsResult runResult
	if err := json.Unmarshal([]byte(out.String()), &statsResult); err != nil {
		t.Fatalf("decode stats output: %v", err)
	}
	var stats statsReport
	if err := json.Unmarshal(statsResult.Report, &stats); err != nil {
		t.Fatalf("decode stats report: %v", err)
	}
	if stats.Player == nil || stats.Player.BattlesFought != 1 {
		t.Fatalf("player stats = %+v", stats.Player)
	}
	if len(stats.Battles) != 1 || stats.Battles[0].Status != storage.BattleStatusResolved {
		t.Fatalf("battles = %+v", stats.Battles)
	}
	if stats.Totals.BattleCount != 1 || stats.Totals.ResolvedBattleCount != 1 {
		t.Fatalf("totals = %+v", stats.Totals)
	}
	if stats.Totals.EventCount == 0 {
		t.Fatal("expected journal events in totals")
	}

	out.Reset()
	errOut.Reset()
	err = Run(ctx, Config{Audit: true, GameID: "game-cli-1", DBPath: dbPath, Limit: 1000, JSONOutput: true}, &out, &errOut)
	if err != nil {
		t.Fatalf("run audit: %v (stderr: %s)", err, errOut.String())
	}
	var auditResult runResult
	if err := json.Unmarshal([]byte(out.String()), &auditResult); err != nil {
		t.Fatalf("decode audit output: %v", err)
	}
	var audited auditReport
	if err := json.Unmarshal(auditResult.Report, &audited); err != nil {
		t.Fatalf("decode audit report: %v", err)
	}
	// The audit executor recorded one decision per demo command.
	if len(audited.Decisions) != demo.Match.Commands {
		t.Fatalf("decisions = %d, want %d", len(audited.Decisions), demo.Match.Commands)
	}
	rejections := 0
	for _, record := range audited.Decisions {
		if record.Outcome == storage.DecisionRejected {
			rejections++
		}
	}
	if rejections != demo.Match.CommandsRejected {
		t.Fatalf("rejected decisions = %d, want %d", rejections, demo.Match.CommandsRejected)
	}

	out.Reset()
	errOut.Reset()
	err = Run(ctx, Config{Verify: true, DBPath: dbPath, JSONOutput: true}, &out, &errOut)
	if err != nil {
		t.Fatalf("run verify: %v (stderr: %s)", err, errOut.String())
	}
	if !strings.Contains(out.String(), `"ok":true`) {
		t.Fatalf("verify output = %s", out.String())
	}

	out.Reset()
	errOut.Reset()
	err = Run(ctx, Config{Replay: true, GameID: "game-cli-1", DBPath: dbPath, JSONOutput: true}, &out, &errOut)
	if err != nil {
		t.Fatalf("run replay: %v (stderr: %s)", err, errOut.String())
	}
	var replayResult runResult
	if err := json.Unmarshal([]byte(out.String()), &replayResult); err != nil {
		t.Fatalf("decode replay output: %v", err)
	}
	var replayed replayReport
	if err := json.Unmarshal(replayResult.Report, &replayed); err != nil {
		t.Fatalf("decode replay report: %v", err)
	}
	// The demo saved a snapshot at the journal head, so the replay resumes
	// from it instead of refolding history.
	if replayed.SnapshotSeq == 0 || replayed.Folded != 0 {
		t.Fatalf("snapshot seq = %d folded = %d, want snapshot resume", replayed.SnapshotSeq, replayed.Folded)
	}
	if replayed.Battle == nil || replayed.Battle.Winner != string(demo.Match.Winner) {
		t.Fatalf("replayed battle = %+v, want winner %s", replayed.Battle, demo.Match.Winner)
	}
}

func TestRunDemoMintsSeedWhenUnset(t *testing.T) {
	t.Setenv("BROADSIDE_EVENT_HMAC_KEY", "test-hmac-key")
	dbPath := filepath.Join(t.TempDir(), "broadside.db")

	var out, errOut strings.Builder
	err := Run(context.Background(), Config{Demo: true, GameID: "game-cli-minted", DBPath: dbPath, JSONOutput: true}, &out, &errOut)
	if err != nil {
		t.Fatalf("run demo: %v (stderr: %s)", err, errOut.String())
	}
	if !strings.Contains(errOut.String(), "minted seed ") {
		t.Fatalf("stderr = %q, want a minted seed notice", errOut.String())
	}
}
