package broadside

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/mverberg/broadside/internal/domain/aggregate"
	"github.com/mverberg/broadside/internal/domain/battle"
	"github.com/mverberg/broadside/internal/domain/checkpoint"
	"github.com/mverberg/broadside/internal/domain/command"
	"github.com/mverberg/broadside/internal/domain/engine"
	"github.com/mverberg/broadside/internal/domain/replay"
	"github.com/mverberg/broadside/internal/projection"
	"github.com/mverberg/broadside/internal/random"
	"github.com/mverberg/broadside/internal/sim"
	"github.com/mverberg/broadside/internal/storage"
	"github.com/mverberg/broadside/internal/storage/integrity"
	"github.com/mverberg/broadside/internal/storage/sqlite"
)

// Config holds broadside command configuration.
type Config struct {
	GameID     string
	DBPath     string        `env:"BROADSIDE_DB_PATH"`
	Timeout    time.Duration `env:"BROADSIDE_TOOL_TIMEOUT" envDefault:"10m"`
	Demo       bool
	Replay     bool
	Verify     bool
	Stats      bool
	Audit      bool
	AfterSeq   uint64
	UntilSeq   uint64
	Seed       int64
	PlayerName string
	QuestID    string
	RoundLimit int
	Limit      int
	Trace      bool
	JSONOutput bool
}

// mode names the selected run mode. Run has already checked exactly one
// mode flag is set.
func (c Config) mode() string {
	switch {
	case c.Replay:
		return "replay"
	case c.Verify:
		return "verify"
	case c.Stats:
		return "stats"
	case c.Audit:
		return "audit"
	default:
		return "demo"
	}
}

type envConfig struct {
	DBPath  string        `env:"BROADSIDE_DB_PATH"`
	Timeout time.Duration `env:"BROADSIDE_TOOL_TIMEOUT" envDefault:"10m"`
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var envCfg envConfig
	if err := env.Parse(&envCfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg := Config{
		DBPath:  envCfg.DBPath,
		Timeout: envCfg.Timeout,
		Limit:   20,
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "broadside.db")
	}

	fs.StringVar(&cfg.GameID, "game-id", "", "game ID to operate on")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to sqlite database (default: BROADSIDE_DB_PATH or data/broadside.db)")
	fs.BoolVar(&cfg.Demo, "demo", false, "play a scripted demo match and record it in the journal")
	fs.BoolVar(&cfg.Replay, "replay", false, "rebuild aggregate state by folding the stored journal")
	fs.BoolVar(&cfg.Verify, "verify", false, "verify journal hash chains and signatures")
	fs.BoolVar(&cfg.Stats, "stats", false, "print battle summaries and player statistics")
	fs.BoolVar(&cfg.Audit, "audit", false, "print the decision log for a game, newest first")
	fs.Uint64Var(&cfg.AfterSeq, "after-seq", 0, "start replay after this event sequence")
	fs.Uint64Var(&cfg.UntilSeq, "until-seq", 0, "replay up to this event sequence (0 = latest)")
	fs.Int64Var(&cfg.Seed, "seed", 1, "demo match seed (0 = mint a random seed and print it)")
	fs.StringVar(&cfg.PlayerName, "player-name", "", "demo profile name (default: Captain)")
	fs.StringVar(&cfg.QuestID, "quest-id", "", "demo quest id (default: first-sortie)")
	fs.IntVar(&cfg.RoundLimit, "round-limit", 0, "demo round limit (0 = rule default)")
	fs.IntVar(&cfg.Limit, "limit", cfg.Limit, "max battle summaries to print")
	fs.BoolVar(&cfg.Trace, "trace", false, "print each demo command to stderr")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "output JSON reports")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the broadside command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	modes := 0
	for _, enabled := range []bool{cfg.Demo, cfg.Replay, cfg.Verify, cfg.Stats, cfg.Audit} {
		if enabled {
			modes++
		}
	}
	if modes == 0 {
		return errors.New("one of -demo, -replay, -verify, -stats, or -audit is required")
	}
	if modes > 1 {
		return errors.New("-demo, -replay, -verify, -stats, and -audit cannot be combined")
	}
	if !cfg.Replay && (cfg.AfterSeq > 0 || cfg.UntilSeq > 0) {
		return errors.New("-after-seq and -until-seq require -replay")
	}
	if !cfg.Demo && (cfg.PlayerName != "" || cfg.QuestID != "" || cfg.RoundLimit > 0 || cfg.Trace) {
		return errors.New("-player-name, -quest-id, -round-limit, and -trace require -demo")
	}
	if cfg.Verify && strings.TrimSpace(cfg.GameID) != "" {
		return errors.New("-verify walks every stored chain and cannot be combined with -game-id")
	}
	if !cfg.Verify && strings.TrimSpace(cfg.GameID) == "" {
		return errors.New("-game-id is required")
	}
	if (cfg.Stats || cfg.Audit) && cfg.Limit <= 0 {
		return errors.New("-limit must be > 0")
	}

	store, registries, err := openStore(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	return runWithDeps(ctx, cfg, store, registries, out, errOut)
}

// runWithDeps contains the core tool logic with an opened store. It owns the
// store lifecycle, closing it on return.
func runWithDeps(ctx context.Context, cfg Config, store *sqlite.Store, registries engine.Registries, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(errOut, "Error: close store: %v\n", err)
		}
	}()

	// One root span per invocation; decision records correlate to it.
	// With tracing disabled this is the no-op provider and costs nothing.
	ctx, span := otel.Tracer("broadside").Start(ctx, "broadside."+cfg.mode())
	defer span.End()

	var result runResult
	switch {
	case cfg.Demo:
		result = runDemo(ctx, store, registries, cfg, errOut)
	case cfg.Replay:
		folder := &aggregate.Folder{Events: registries.Events, SystemRegistry: registries.Systems}
		result = runReplay(ctx, store, store.Snapshots(registries.Systems), folder, cfg.GameID, cfg.AfterSeq, cfg.UntilSeq)
	case cfg.Verify:
		result = runVerify(ctx, store)
	case cfg.Stats:
		result = runStats(ctx, store, cfg.GameID, cfg.Limit)
	case cfg.Audit:
		result = runAudit(ctx, store, cfg.GameID, cfg.Limit)
	}

	if cfg.JSONOutput {
		outputJSON(out, errOut, result)
	} else {
		printResult(out, errOut, result)
	}
	if result.ExitCode != 0 {
		return errors.New("broadside failed")
	}
	return nil
}

type runResult struct {
	GameID   string          `json:"game_id,omitempty"`
	Mode     string          `json:"mode"`
	Report   json.RawMessage `json:"report,omitempty"`
	Error    string          `json:"error,omitempty"`
	ExitCode int             `json:"-"`
}

type demoReport struct {
	Match sim.MatchResult `json:"match"`
	// AppliedSeq is how far the read models caught up after the match.
	AppliedSeq uint64 `json:"applied_seq"`
}

type replayReport struct {
	LastSeq uint64 `json:"last_seq"`
	// SnapshotSeq is the sequence the replay resumed from, zero when it
	// folded from the journal start.
	SnapshotSeq uint64              `json:"snapshot_seq,omitempty"`
	Folded      int                 `json:"folded"`
	Skipped     int                 `json:"skipped,omitempty"`
	Phase       string              `json:"phase"`
	QuestID     string              `json:"quest_id,omitempty"`
	Battle      *replayBattleReport `json:"battle,omitempty"`
}

type replayBattleReport struct {
	BattleID string `json:"battle_id"`
	Phase    string `json:"phase"`
	Turn     int    `json:"turn"`
	Winner   string `json:"winner,omitempty"`
	Victory  string `json:"victory_condition,omitempty"`
}

type verifyReport struct {
	OK bool `json:"ok"`
}

type statsReport struct {
	Player  *storage.PlayerStats    `json:"player,omitempty"`
	Battles []storage.BattleSummary `json:"battles"`
	Totals  storage.GameStatistics  `json:"totals"`
}

type auditReport struct {
	Decisions []storage.DecisionRecord `json:"decisions"`
}

// runDemo plays one scripted match through the production command path,
// records every decision in the audit trail, then catches the read models
// up to the journal head.
func runDemo(ctx context.Context, store *sqlite.Store, registries engine.Registries, cfg Config, errOut io.Writer) runResult {
	result := runResult{GameID: cfg.GameID, Mode: "demo"}

	handler, err := newHandler(store, registries)
	if err != nil {
		result.Error = fmt.Sprintf("wire handler: %v", err)
		result.ExitCode = 1
		return result
	}
	runner := &sim.Runner{Executor: auditExecutor{next: handler, audit: store}}
	if cfg.Trace {
		runner.Trace = errOut
	}

	seed := cfg.Seed
	if seed == 0 {
		seed, err = random.MatchSeed()
		if err != nil {
			result.Error = fmt.Sprintf("mint match seed: %v", err)
			result.ExitCode = 1
			return result
		}
		fmt.Fprintf(errOut, "minted seed %d; pass -seed %d to repeat this match\n", seed, seed)
	}

	match, err := runner.RunMatch(ctx, sim.MatchConfig{
		GameID:     cfg.GameID,
		PlayerName: cfg.PlayerName,
		QuestID:    cfg.QuestID,
		Seed:       seed,
		RoundLimit: cfg.RoundLimit,
	})
	if err != nil {
		result.Error = fmt.Sprintf("run match: %v", err)
		result.ExitCode = 1
		return result
	}

	appliedSeq, err := projection.CatchUp(ctx, store, store, projection.Applier{Stats: store}, cfg.GameID)
	if err != nil {
		result.Error = fmt.Sprintf("catch up projections: %v", err)
		result.ExitCode = 1
		return result
	}

	payload, err := json.Marshal(demoReport{Match: match, AppliedSeq: appliedSeq})
	if err != nil {
		result.Error = fmt.Sprintf("encode report: %v", err)
		result.ExitCode = 1
		return result
	}
	result.Report = payload
	return result
}

// runReplay folds the journal back into aggregate state. Without -after-seq
// it resumes from the latest snapshot the way command handling does; with
// -after-seq it folds the raw range from a zero state so a bounded slice of
// history can be inspected on its own.
func runReplay(ctx context.Context, events replay.EventStore, snapshots engine.StateSnapshotStore, folder replay.Folder, gameID string, afterSeq, untilSeq uint64) runResult {
	result := runResult{GameID: gameID, Mode: "replay"}

	var state any = aggregate.State{}
	fromSeq := afterSeq
	snapshotSeq := uint64(0)
	if afterSeq == 0 && snapshots != nil {
		loaded, seq, err := snapshots.GetState(ctx, gameID)
		switch {
		case errors.Is(err, replay.ErrCheckpointNotFound):
		case err != nil:
			result.Error = fmt.Sprintf("load snapshot: %v", err)
			result.ExitCode = 1
			return result
		case untilSeq > 0 && seq > untilSeq:
			// The snapshot is past the requested bound; state cannot be
			// unfolded, so start over from the journal start.
		default:
			state = loaded
			fromSeq = seq
			snapshotSeq = seq
		}
	}

	replayed, err := replay.Replay(ctx, events, checkpoint.NewNoop(), folder, gameID, state, replay.Options{
		AfterSeq: fromSeq,
		UntilSeq: untilSeq,
	})
	if err != nil {
		result.Error = fmt.Sprintf("replay journal: %v", err)
		result.ExitCode = 1
		return result
	}

	snapshot, err := aggregate.AssertState[aggregate.State](replayed.State)
	if err != nil {
		result.Error = fmt.Sprintf("replayed state: %v", err)
		result.ExitCode = 1
		return result
	}
	report := replayReport{
		LastSeq:     replayed.LastSeq,
		SnapshotSeq: snapshotSeq,
		Folded:      replayed.Folded,
		Skipped:     replayed.Skipped,
		Phase:       string(snapshot.Game.CurrentPhase()),
		QuestID:     snapshot.Game.ActiveQuestID,
	}
	if battleState, ok := battleSnapshot(snapshot); ok {
		report.Battle = &replayBattleReport{
			BattleID: battleState.BattleID,
			Phase:    string(battleState.Phase),
			Turn:     battleState.TurnNumber,
			Winner:   string(battleState.Winner),
			Victory:  string(battleState.Victory),
		}
	}

	payload, err := json.Marshal(report)
	if err != nil {
		result.Error = fmt.Sprintf("encode report: %v", err)
		result.ExitCode = 1
		return result
	}
	result.Report = payload
	return result
}

// integrityStore is the store surface -verify needs.
type integrityStore interface {
	VerifyEventIntegrity(ctx context.Context) error
}

func runVerify(ctx context.Context, store integrityStore) runResult {
	result := runResult{Mode: "verify"}
	if err := store.VerifyEventIntegrity(ctx); err != nil {
		result.Error = fmt.Sprintf("verify event integrity: %v", err)
		result.ExitCode = 1
		return result
	}
	payload, err := json.Marshal(verifyReport{OK: true})
	if err != nil {
		result.Error = fmt.Sprintf("encode report: %v", err)
		result.ExitCode = 1
		return result
	}
	result.Report = payload
	return result
}

// statsStore is the read-model surface -stats needs.
type statsStore interface {
	storage.StatsStore
	storage.StatisticsStore
}

func runStats(ctx context.Context, store statsStore, gameID string, limit int) runResult {
	result := runResult{GameID: gameID, Mode: "stats"}

	report := statsReport{}
	player, err := store.GetPlayerStats(ctx, gameID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		result.Error = fmt.Sprintf("get player stats: %v", err)
		result.ExitCode = 1
		return result
	default:
		report.Player = &player
	}

	report.Battles, err = store.ListBattleSummaries(ctx, gameID, limit)
	if err != nil {
		result.Error = fmt.Sprintf("list battle summaries: %v", err)
		result.ExitCode = 1
		return result
	}
	report.Totals, err = store.GetGameStatistics(ctx, nil)
	if err != nil {
		result.Error = fmt.Sprintf("get game statistics: %v", err)
		result.ExitCode = 1
		return result
	}

	payload, err := json.Marshal(report)
	if err != nil {
		result.Error = fmt.Sprintf("encode report: %v", err)
		result.ExitCode = 1
		return result
	}
	result.Report = payload
	return result
}

// auditStore is the decision-log surface -audit needs.
type auditStore interface {
	ListDecisions(ctx context.Context, gameID string, limit int) ([]storage.DecisionRecord, error)
}

func runAudit(ctx context.Context, store auditStore, gameID string, limit int) runResult {
	result := runResult{GameID: gameID, Mode: "audit"}

	decisions, err := store.ListDecisions(ctx, gameID, limit)
	if err != nil {
		result.Error = fmt.Sprintf("list decisions: %v", err)
		result.ExitCode = 1
		return result
	}
	if decisions == nil {
		decisions = []storage.DecisionRecord{}
	}

	payload, err := json.Marshal(auditReport{Decisions: decisions})
	if err != nil {
		result.Error = fmt.Sprintf("encode report: %v", err)
		result.ExitCode = 1
		return result
	}
	result.Report = payload
	return result
}

// auditExecutor records every engine decision in the audit trail after
// execution so an operator can reconstruct who asked for what and which
// commands the decider refused.
type auditExecutor struct {
	next  sim.CommandExecutor
	audit storage.AuditStore
	now   func() time.Time
}

func (a auditExecutor) Execute(ctx context.Context, cmd command.Command) (engine.Result, error) {
	result, err := a.next.Execute(ctx, cmd)
	if err != nil {
		return result, err
	}
	record := storage.DecisionRecord{
		Timestamp:    a.clock(),
		GameID:       cmd.GameID,
		BattleID:     cmd.BattleID,
		CommandType:  string(cmd.Type),
		RequestID:    cmd.RequestID,
		InvocationID: cmd.InvocationID,
		ActorType:    string(cmd.ActorType),
		Outcome:      storage.DecisionAccepted,
		EventCount:   len(result.Decision.Events),
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		record.TraceID = sc.TraceID().String()
		record.SpanID = sc.SpanID().String()
	}
	if len(result.Decision.Rejections) > 0 {
		record.Outcome = storage.DecisionRejected
		record.RejectionCodes = make([]string, 0, len(result.Decision.Rejections))
		for _, rejection := range result.Decision.Rejections {
			record.RejectionCodes = append(record.RejectionCodes, rejection.Code)
		}
	}
	if err := a.audit.AppendDecision(ctx, record); err != nil {
		return result, fmt.Errorf("append decision record: %w", err)
	}
	return result, nil
}

func (a auditExecutor) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now().UTC()
}

// newHandler wires the production command path over the opened store.
func newHandler(store *sqlite.Store, registries engine.Registries) (*engine.Handler, error) {
	decider, err := engine.NewCoreDecider(registries.Systems)
	if err != nil {
		return nil, err
	}
	checkpoints := store.Checkpoints()
	snapshots := store.Snapshots(registries.Systems)
	folder := &aggregate.Folder{Events: registries.Events, SystemRegistry: registries.Systems}
	loader := engine.ReplayStateLoader{
		Events:       store,
		Checkpoints:  checkpoints,
		Snapshots:    snapshots,
		Folder:       folder,
		StateFactory: func() any { return aggregate.State{} },
	}
	return engine.NewHandler(engine.HandlerConfig{
		Commands:        registries.Commands,
		Events:          registries.Events,
		Journal:         store,
		Checkpoints:     checkpoints,
		Snapshots:       snapshots,
		Gate:            engine.DecisionGate{Registry: registries.Commands},
		GateStateLoader: engine.ReplayGateStateLoader{StateLoader: loader},
		StateLoader:     loader,
		Decider:         decider,
		Folder:          folder,
	})
}

// battleSnapshot pulls the tactical system state out of the aggregate.
func battleSnapshot(snapshot aggregate.State) (*battle.State, bool) {
	raw := snapshot.SystemState(battle.SystemID, battle.SystemVersion)
	switch typed := raw.(type) {
	case *battle.State:
		if typed != nil {
			return typed, true
		}
	case battle.State:
		return &typed, true
	}
	return nil, false
}

func openStore(ctx context.Context, path string) (*sqlite.Store, engine.Registries, error) {
	cleanPath := filepath.Clean(path)
	if cleanPath == "." || cleanPath == "" {
		return nil, engine.Registries{}, fmt.Errorf("db path is required")
	}
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, engine.Registries{}, fmt.Errorf("create storage dir: %w", err)
		}
	}
	keyring, err := integrity.KeyringFromEnv()
	if err != nil {
		return nil, engine.Registries{}, err
	}
	registries, err := engine.BuildRegistries(battle.NewModule())
	if err != nil {
		return nil, engine.Registries{}, fmt.Errorf("build registries: %w", err)
	}
	store, err := sqlite.Open(cleanPath, keyring, registries.Events)
	if err != nil {
		return nil, engine.Registries{}, fmt.Errorf("open store: %w", err)
	}
	if err := ctx.Err(); err != nil {
		_ = store.Close()
		return nil, engine.Registries{}, err
	}
	return store, registries, nil
}

func outputJSON(out io.Writer, errOut io.Writer, result runResult) {
	encoded, err := json.Marshal(result)
	if err != nil {
		fmt.Fprintf(errOut, "Error: encode report: %v\n", err)
		return
	}
	fmt.Fprintln(out, string(encoded))
}

func printResult(out io.Writer, errOut io.Writer, result runResult) {
	if result.Error != "" {
		fmt.Fprintf(errOut, "Error: %s\n", result.Error)
	}
	if len(result.Report) == 0 {
		return
	}
	switch result.Mode {
	case "demo":
		var report demoReport
		if err := json.Unmarshal(result.Report, &report); err != nil {
			fmt.Fprintf(errOut, "Error: decode report: %v\n", err)
			return
		}
		fmt.Fprintf(out, "Demo match for game %s resolved: winner=%s (%s) after %d turns\n",
			result.GameID, report.Match.Winner, report.Match.Victory, report.Match.Turns)
		fmt.Fprintf(out, "Flagship hulls: player=%d opponent=%d; ships destroyed: player=%d opponent=%d\n",
			report.Match.PlayerHull, report.Match.OpponentHull,
			report.Match.PlayerShipsDestroyed, report.Match.OpponentShipsDestroyed)
		fmt.Fprintf(out, "Commands: %d issued, %d rejected; read models applied through seq %d\n",
			report.Match.Commands, report.Match.CommandsRejected, report.AppliedSeq)
		fmt.Fprintf(out, "Record: %d fought, %d won, %d lost, %d drawn\n",
			report.Match.Stats.BattlesFought, report.Match.Stats.BattlesWon,
			report.Match.Stats.BattlesLost, report.Match.Stats.BattlesDrawn)
	case "replay":
		var report replayReport
		if err := json.Unmarshal(result.Report, &report); err != nil {
			fmt.Fprintf(errOut, "Error: decode report: %v\n", err)
			return
		}
		if report.SnapshotSeq > 0 {
			fmt.Fprintf(out, "Replayed game %s through seq %d (%d folded from snapshot seq %d, %d skipped)\n",
				result.GameID, report.LastSeq, report.Folded, report.SnapshotSeq, report.Skipped)
		} else {
			fmt.Fprintf(out, "Replayed game %s through seq %d (%d folded, %d skipped)\n",
				result.GameID, report.LastSeq, report.Folded, report.Skipped)
		}
		fmt.Fprintf(out, "Phase: %s", report.Phase)
		if report.QuestID != "" {
			fmt.Fprintf(out, " (quest %s)", report.QuestID)
		}
		fmt.Fprintln(out)
		if report.Battle != nil {
			fmt.Fprintf(out, "Battle %s: phase=%s turn=%d", report.Battle.BattleID, report.Battle.Phase, report.Battle.Turn)
			if report.Battle.Winner != "" {
				fmt.Fprintf(out, " winner=%s (%s)", report.Battle.Winner, report.Battle.Victory)
			}
			fmt.Fprintln(out)
		}
	case "verify":
		fmt.Fprintln(out, "Event journal integrity verified")
	case "stats":
		var report statsReport
		if err := json.Unmarshal(result.Report, &report); err != nil {
			fmt.Fprintf(errOut, "Error: decode report: %v\n", err)
			return
		}
		if report.Player == nil {
			fmt.Fprintf(out, "No battles recorded for game %s\n", result.GameID)
		} else {
			fmt.Fprintf(out, "%s: %d fought, %d won, %d lost, %d drawn, %d ships destroyed\n",
				report.Player.PlayerName, report.Player.BattlesFought, report.Player.BattlesWon,
				report.Player.BattlesLost, report.Player.BattlesDrawn, report.Player.ShipsDestroyed)
		}
		for _, summary := range report.Battles {
			line := fmt.Sprintf("- %s quest=%s status=%s", summary.BattleID, summary.QuestID, summary.Status)
			if summary.Status == storage.BattleStatusResolved {
				line += fmt.Sprintf(" winner=%s (%s) turns=%d", summary.Winner, summary.VictoryCondition, summary.Turns)
			}
			fmt.Fprintln(out, line)
		}
		fmt.Fprintf(out, "Totals: %d games, %d events, %d battles (%d resolved)\n",
			report.Totals.GameCount, report.Totals.EventCount,
			report.Totals.BattleCount, report.Totals.ResolvedBattleCount)
	case "audit":
		var report auditReport
		if err := json.Unmarshal(result.Report, &report); err != nil {
			fmt.Fprintf(errOut, "Error: decode report: %v\n", err)
			return
		}
		if len(report.Decisions) == 0 {
			fmt.Fprintf(out, "No decisions recorded for game %s\n", result.GameID)
			return
		}
		for _, record := range report.Decisions {
			line := fmt.Sprintf("- %s %s %s by %s", record.Timestamp.Format(time.RFC3339),
				record.CommandType, record.Outcome, record.ActorType)
			if record.Outcome == storage.DecisionRejected {
				line += " " + strings.Join(record.RejectionCodes, ",")
			} else {
				line += fmt.Sprintf(" events=%d", record.EventCount)
			}
			fmt.Fprintln(out, line)
		}
	}
}
