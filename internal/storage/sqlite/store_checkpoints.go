package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mverberg/broadside/internal/domain/replay"
	"github.com/mverberg/broadside/internal/storage"
)

// GetCheckpoint returns the checkpoint for a game.
// Returns storage.ErrNotFound when no checkpoint exists.
func (s *Store) GetCheckpoint(ctx context.Context, gameID string) (replay.Checkpoint, error) {
	if err := ctx.Err(); err != nil {
		return replay.Checkpoint{}, err
	}
	if s == nil || s.sqlDB == nil {
		return replay.Checkpoint{}, fmt.Errorf("storage is not configured")
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return replay.Checkpoint{}, fmt.Errorf("game id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT game_id, last_seq, updated_at FROM checkpoints WHERE game_id = ?",
		gameID,
	)
	var checkpoint replay.Checkpoint
	var lastSeq int64
	var updatedAtMillis int64
	err := row.Scan(&checkpoint.GameID, &lastSeq, &updatedAtMillis)
	if errors.Is(err, sql.ErrNoRows) {
		return replay.Checkpoint{}, storage.ErrNotFound
	}
	if err != nil {
		return replay.Checkpoint{}, fmt.Errorf("get checkpoint: %w", err)
	}
	checkpoint.LastSeq = uint64(lastSeq)
	checkpoint.UpdatedAt = fromMillis(updatedAtMillis)
	return checkpoint, nil
}

// SaveCheckpoint upserts the checkpoint for a game.
func (s *Store) SaveCheckpoint(ctx context.Context, checkpoint replay.Checkpoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	checkpoint.GameID = strings.TrimSpace(checkpoint.GameID)
	if checkpoint.GameID == "" {
		return fmt.Errorf("game id is required")
	}
	if checkpoint.UpdatedAt.IsZero() {
		checkpoint.UpdatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO checkpoints (game_id, last_seq, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (game_id) DO UPDATE SET
		     last_seq = excluded.last_seq,
		     updated_at = excluded.updated_at`,
		checkpoint.GameID,
		int64(checkpoint.LastSeq),
		toMillis(checkpoint.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// CheckpointView adapts the store to the replay checkpoint contract, which
// signals a missing checkpoint with replay.ErrCheckpointNotFound instead of
// the storage sentinel.
type CheckpointView struct {
	store *Store
}

// Checkpoints returns a replay-facing view over the checkpoints table.
func (s *Store) Checkpoints() *CheckpointView {
	return &CheckpointView{store: s}
}

// Get returns the checkpoint for a game.
func (v *CheckpointView) Get(ctx context.Context, gameID string) (replay.Checkpoint, error) {
	checkpoint, err := v.store.GetCheckpoint(ctx, gameID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return replay.Checkpoint{}, replay.ErrCheckpointNotFound
		}
		return replay.Checkpoint{}, err
	}
	return checkpoint, nil
}

// Save upserts the checkpoint for a game.
func (v *CheckpointView) Save(ctx context.Context, checkpoint replay.Checkpoint) error {
	return v.store.SaveCheckpoint(ctx, checkpoint)
}
