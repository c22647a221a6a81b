package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mverberg/broadside/internal/domain/event"
	"github.com/mverberg/broadside/internal/domain/replay"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// EventStore is the append-only journal contract. The in-memory journal
// backs tests and ephemeral runs; the SQLite store is the durable path.
type EventStore interface {
	// Append atomically appends an event and returns it with sequence,
	// hashes, and signature set.
	Append(ctx context.Context, evt event.Event) (event.Event, error)
	// BatchAppend atomically appends multiple events in a single
	// transaction. All events must belong to the same game.
	BatchAppend(ctx context.Context, events []event.Event) ([]event.Event, error)
	// GetEventByHash retrieves an event by its content hash.
	GetEventByHash(ctx context.Context, hash string) (event.Event, error)
	// GetEventBySeq retrieves a specific event by sequence number.
	GetEventBySeq(ctx context.Context, gameID string, seq uint64) (event.Event, error)
	// ListEvents returns events ordered by sequence ascending, starting
	// after the given sequence.
	ListEvents(ctx context.Context, gameID string, afterSeq uint64, limit int) ([]event.Event, error)
	// ListEventsByBattle returns events for a specific battle.
	ListEventsByBattle(ctx context.Context, gameID, battleID string, afterSeq uint64, limit int) ([]event.Event, error)
	// GetLatestEventSeq returns the latest event sequence number for a
	// game, zero when no events exist.
	GetLatestEventSeq(ctx context.Context, gameID string) (uint64, error)
	// VerifyEventIntegrity walks every stored chain and verifies hashes,
	// links, and signatures.
	VerifyEventIntegrity(ctx context.Context) error
}

// CheckpointStore persists replay checkpoints keyed by game.
type CheckpointStore interface {
	// GetCheckpoint returns the checkpoint for a game.
	// Returns ErrNotFound when no checkpoint exists.
	GetCheckpoint(ctx context.Context, gameID string) (replay.Checkpoint, error)
	// SaveCheckpoint upserts the checkpoint for a game.
	SaveCheckpoint(ctx context.Context, checkpoint replay.Checkpoint) error
}

// SnapshotRecord holds a serialized aggregate snapshot for a game. The
// aggregate splits into the core game slice and the per-system snapshots
// so each side can evolve its schema independently.
type SnapshotRecord struct {
	GameID           string
	EventSeq         uint64
	GameStateJSON    []byte
	SystemStatesJSON []byte
	CreatedAt        time.Time
}

// SnapshotStore persists replay snapshots used to jump event replay work.
type SnapshotStore interface {
	// PutSnapshot stores a snapshot, replacing any earlier snapshot at
	// the same sequence.
	PutSnapshot(ctx context.Context, snapshot SnapshotRecord) error
	// GetLatestSnapshot retrieves the most recent snapshot for a game.
	GetLatestSnapshot(ctx context.Context, gameID string) (SnapshotRecord, error)
	// ListSnapshots returns snapshots ordered by event sequence descending.
	ListSnapshots(ctx context.Context, gameID string, limit int) ([]SnapshotRecord, error)
}

// BattleSummary is the read model row for one battle, written by the
// projection applier from battle lifecycle events.
type BattleSummary struct {
	BattleID         string
	GameID           string
	QuestID          string
	SystemID         string
	SystemVersion    string
	Status           string
	Winner           string
	VictoryCondition string
	Turns            int
	StartedAt        time.Time
	ResolvedAt       time.Time
	UpdatedAt        time.Time
}

// PlayerStats is the read model row for lifetime battle statistics.
type PlayerStats struct {
	GameID         string
	PlayerName     string
	BattlesFought  int
	BattlesWon     int
	BattlesLost    int
	BattlesDrawn   int
	ShipsDestroyed int
	UpdatedAt      time.Time
}

// Battle summary statuses written by the projection applier.
const (
	// BattleStatusInProgress marks a battle that has started but not resolved.
	BattleStatusInProgress = "in_progress"
	// BattleStatusResolved marks a battle with a recorded outcome.
	BattleStatusResolved = "resolved"
)

// StatsStore reads and writes the battle summary and player statistics
// read models.
type StatsStore interface {
	// PutBattleSummary upserts a battle summary row.
	PutBattleSummary(ctx context.Context, summary BattleSummary) error
	// GetBattleSummary retrieves one battle summary.
	// Returns ErrNotFound when the battle is unknown.
	GetBattleSummary(ctx context.Context, battleID string) (BattleSummary, error)
	// ListBattleSummaries returns summaries for a game, newest first.
	ListBattleSummaries(ctx context.Context, gameID string, limit int) ([]BattleSummary, error)
	// PutPlayerStats upserts the statistics row for a game.
	PutPlayerStats(ctx context.Context, stats PlayerStats) error
	// GetPlayerStats retrieves the statistics row for a game.
	// Returns ErrNotFound when no battles have been recorded.
	GetPlayerStats(ctx context.Context, gameID string) (PlayerStats, error)
}

// DecisionRecord captures one engine decision for the audit trail.
type DecisionRecord struct {
	Timestamp    time.Time
	GameID       string
	BattleID     string
	CommandType  string
	RequestID    string
	InvocationID string
	ActorType    string
	// TraceID and SpanID correlate the decision with distributed traces
	// when tracing is enabled; empty otherwise.
	TraceID        string
	SpanID         string
	Outcome        string
	EventCount     int
	RejectionCodes []string
}

// Decision outcomes recorded in the audit trail.
const (
	// DecisionAccepted marks a decision that appended events.
	DecisionAccepted = "accepted"
	// DecisionRejected marks a decision that surfaced rejections.
	DecisionRejected = "rejected"
)

// AuditStore persists engine decisions for audits and incident analysis.
type AuditStore interface {
	// AppendDecision records one engine decision.
	AppendDecision(ctx context.Context, record DecisionRecord) error
	// ListDecisions returns decisions for a game, newest first.
	ListDecisions(ctx context.Context, gameID string, limit int) ([]DecisionRecord, error)
}

// ProjectionWatermark tracks how far the projection applier has advanced
// through a game's journal.
type ProjectionWatermark struct {
	GameID     string
	AppliedSeq uint64
	UpdatedAt  time.Time
}

// WatermarkStore persists projection watermarks.
type WatermarkStore interface {
	// GetProjectionWatermark returns the watermark for a game.
	// Returns ErrNotFound if no watermark exists.
	GetProjectionWatermark(ctx context.Context, gameID string) (ProjectionWatermark, error)
	// SaveProjectionWatermark upserts the watermark for a game.
	SaveProjectionWatermark(ctx context.Context, watermark ProjectionWatermark) error
	// ListProjectionWatermarks returns all watermarks ordered by game id.
	ListProjectionWatermarks(ctx context.Context) ([]ProjectionWatermark, error)
}

// GameStatistics contains aggregate counters used by the stats surface.
type GameStatistics struct {
	GameCount           int64
	EventCount          int64
	BattleCount         int64
	ResolvedBattleCount int64
}

// StatisticsStore centralizes aggregate count queries.
type StatisticsStore interface {
	// GetGameStatistics returns aggregate counts.
	// When since is nil, counts are for all time.
	GetGameStatistics(ctx context.Context, since *time.Time) (GameStatistics, error)
}

// Store is a composite interface for all persistence concerns used across
// event sourcing, replay, projection application, and queries.
type Store interface {
	EventStore
	CheckpointStore
	SnapshotStore
	StatsStore
	AuditStore
	WatermarkStore
	StatisticsStore
	Close() error
}
