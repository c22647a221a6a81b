package broadside

import (
	"context"
	"fmt"
	"time"

	"github.com/mverberg/broadside/internal/domain/command"
	"github.com/mverberg/broadside/internal/domain/engine"
	"github.com/mverberg/broadside/internal/storage"
)

// fakeExecutor returns canned results keyed by command type.
type fakeExecutor struct {
	results map[command.Type]engine.Result
	err     error
}

func (f *fakeExecutor) Execute(_ context.Context, cmd command.Command) (engine.Result, error) {
	if f.err != nil {
		return engine.Result{}, f.err
	}
	result, ok := f.results[cmd.Type]
	if !ok {
		return engine.Result{}, fmt.Errorf("no canned result for %s", cmd.Type)
	}
	return result, nil
}

// fakeAuditStore captures appended decision records.
type fakeAuditStore struct {
	records   []storage.DecisionRecord
	appendErr error
}

func (f *fakeAuditStore) AppendDecision(_ context.Context, record storage.DecisionRecord) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeAuditStore) ListDecisions(_ context.Context, _ string, _ int) ([]storage.DecisionRecord, error) {
	return f.records, nil
}

// fakeStatsStore serves canned read-model rows.
type fakeStatsStore struct {
	player     storage.PlayerStats
	playerErr  error
	battles    []storage.BattleSummary
	battlesErr error
	totals     storage.GameStatistics
	totalsErr  error
}

func (f *fakeStatsStore) PutBattleSummary(_ context.Context, _ storage.BattleSummary) error {
	return fmt.Errorf("not implemented")
}

func (f *fakeStatsStore) GetBattleSummary(_ context.Context, _ string) (storage.BattleSummary, error) {
	return storage.BattleSummary{}, fmt.Errorf("not implemented")
}

func (f *fakeStatsStore) ListBattleSummaries(_ context.Context, _ string, limit int) ([]storage.BattleSummary, error) {
	if f.battlesErr != nil {
		return nil, f.battlesErr
	}
	if limit < len(f.battles) {
		return f.battles[:limit], nil
	}
	return f.battles, nil
}

func (f *fakeStatsStore) PutPlayerStats(_ context.Context, _ storage.PlayerStats) error {
	return fmt.Errorf("not implemented")
}

func (f *fakeStatsStore) GetPlayerStats(_ context.Context, _ string) (storage.PlayerStats, error) {
	if f.playerErr != nil {
		return storage.PlayerStats{}, f.playerErr
	}
	return f.player, nil
}

func (f *fakeStatsStore) GetGameStatistics(_ context.Context, _ *time.Time) (storage.GameStatistics, error) {
	if f.totalsErr != nil {
		return storage.GameStatistics{}, f.totalsErr
	}
	return f.totals, nil
}

// fakeIntegrityStore reports a fixed verification outcome.
type fakeIntegrityStore struct {
	err error
}

func (f *fakeIntegrityStore) VerifyEventIntegrity(_ context.Context) error {
	return f.err
}
