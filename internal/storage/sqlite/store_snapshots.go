package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mverberg/broadside/internal/domain/aggregate"
	"github.com/mverberg/broadside/internal/domain/module"
	"github.com/mverberg/broadside/internal/domain/replay"
	"github.com/mverberg/broadside/internal/storage"
)

// PutSnapshot stores a snapshot, replacing any earlier snapshot at the same
// sequence.
func (s *Store) PutSnapshot(ctx context.Context, snapshot storage.SnapshotRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(snapshot.GameID) == "" {
		return fmt.Errorf("game id is required")
	}
	if snapshot.EventSeq == 0 {
		return fmt.Errorf("event seq is required")
	}
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO snapshots (game_id, event_seq, game_state_json, system_states_json, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (game_id, event_seq) DO UPDATE SET
		     game_state_json = excluded.game_state_json,
		     system_states_json = excluded.system_states_json,
		     created_at = excluded.created_at`,
		snapshot.GameID,
		int64(snapshot.EventSeq),
		snapshot.GameStateJSON,
		snapshot.SystemStatesJSON,
		toMillis(snapshot.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}

// GetLatestSnapshot retrieves the most recent snapshot for a game.
func (s *Store) GetLatestSnapshot(ctx context.Context, gameID string) (storage.SnapshotRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.SnapshotRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.SnapshotRecord{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(gameID) == "" {
		return storage.SnapshotRecord{}, fmt.Errorf("game id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT game_id, event_seq, game_state_json, system_states_json, created_at
		 FROM snapshots WHERE game_id = ? ORDER BY event_seq DESC LIMIT 1`,
		gameID,
	)
	snapshot, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.SnapshotRecord{}, storage.ErrNotFound
		}
		return storage.SnapshotRecord{}, fmt.Errorf("get latest snapshot: %w", err)
	}
	return snapshot, nil
}

// ListSnapshots returns snapshots ordered by event sequence descending.
func (s *Store) ListSnapshots(ctx context.Context, gameID string, limit int) ([]storage.SnapshotRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(gameID) == "" {
		return nil, fmt.Errorf("game id is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT game_id, event_seq, game_state_json, system_states_json, created_at
		 FROM snapshots WHERE game_id = ? ORDER BY event_seq DESC LIMIT ?`,
		gameID, int64(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []storage.SnapshotRecord
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snapshots, nil
}

func scanSnapshot(row rowScanner) (storage.SnapshotRecord, error) {
	var snapshot storage.SnapshotRecord
	var eventSeq int64
	var createdAtMillis int64
	if err := row.Scan(
		&snapshot.GameID,
		&eventSeq,
		&snapshot.GameStateJSON,
		&snapshot.SystemStatesJSON,
		&createdAtMillis,
	); err != nil {
		return storage.SnapshotRecord{}, err
	}
	snapshot.EventSeq = uint64(eventSeq)
	snapshot.CreatedAt = fromMillis(createdAtMillis)
	return snapshot, nil
}

// systemKeySeparator joins system id and version into one snapshot map key.
const systemKeySeparator = "@"

// SnapshotView adapts snapshot rows to the engine's replay snapshot
// contract. Aggregate state is stored as two JSON documents: the core game
// slice and a map of per-system snapshots keyed by "id@version". Rehydration
// needs the module registry because system state types are only known to
// their modules.
type SnapshotView struct {
	store   *Store
	systems *module.Registry
}

// Snapshots returns an engine-facing view that persists aggregate snapshots
// as JSON rows and rehydrates them through the module registry.
func (s *Store) Snapshots(systems *module.Registry) *SnapshotView {
	return &SnapshotView{store: s, systems: systems}
}

// SaveState serializes aggregate state for the game at the given sequence.
func (v *SnapshotView) SaveState(ctx context.Context, gameID string, lastSeq uint64, state any) error {
	snapshot, err := aggregate.AssertState[aggregate.State](state)
	if err != nil {
		return err
	}

	gameJSON, err := json.Marshal(snapshot.Game)
	if err != nil {
		return fmt.Errorf("marshal game state: %w", err)
	}

	systemStates := make(map[string]json.RawMessage, len(snapshot.Systems))
	for key, value := range snapshot.Systems {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal system state %s%s%s: %w", key.ID, systemKeySeparator, key.Version, err)
		}
		systemStates[key.ID+systemKeySeparator+key.Version] = raw
	}
	systemsJSON, err := json.Marshal(systemStates)
	if err != nil {
		return fmt.Errorf("marshal system states: %w", err)
	}

	return v.store.PutSnapshot(ctx, storage.SnapshotRecord{
		GameID:           gameID,
		EventSeq:         lastSeq,
		GameStateJSON:    gameJSON,
		SystemStatesJSON: systemsJSON,
	})
}

// GetState loads the latest aggregate snapshot for the game.
// Returns replay.ErrCheckpointNotFound when no snapshot exists so the
// replay loader falls back to folding from the journal start.
func (v *SnapshotView) GetState(ctx context.Context, gameID string) (any, uint64, error) {
	record, err := v.store.GetLatestSnapshot(ctx, gameID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, 0, replay.ErrCheckpointNotFound
		}
		return nil, 0, err
	}

	state := aggregate.State{}
	if len(record.GameStateJSON) > 0 {
		if err := json.Unmarshal(record.GameStateJSON, &state.Game); err != nil {
			return nil, 0, fmt.Errorf("unmarshal game state: %w", err)
		}
	}

	var rawSystems map[string]json.RawMessage
	if len(record.SystemStatesJSON) > 0 {
		if err := json.Unmarshal(record.SystemStatesJSON, &rawSystems); err != nil {
			return nil, 0, fmt.Errorf("unmarshal system states: %w", err)
		}
	}
	if len(rawSystems) > 0 {
		state.Systems = make(map[module.Key]any, len(rawSystems))
		for key, raw := range rawSystems {
			id, version, ok := strings.Cut(key, systemKeySeparator)
			if !ok {
				return nil, 0, fmt.Errorf("malformed system state key %q", key)
			}
			mod := v.systems.Get(id, version)
			if mod == nil {
				return nil, 0, fmt.Errorf("system module is not registered: %s%s%s", id, systemKeySeparator, version)
			}
			factory := mod.StateFactory()
			if factory == nil {
				return nil, 0, fmt.Errorf("system module has no state factory: %s%s%s", id, systemKeySeparator, version)
			}
			seed, err := factory.NewSnapshotState(gameID)
			if err != nil {
				return nil, 0, fmt.Errorf("seed system state %s: %w", key, err)
			}
			if err := json.Unmarshal(raw, seed); err != nil {
				return nil, 0, fmt.Errorf("unmarshal system state %s: %w", key, err)
			}
			state.Systems[module.Key{ID: id, Version: version}] = seed
		}
	}

	return state, record.EventSeq, nil
}
