package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mverberg/broadside/internal/storage"
)

// GetProjectionWatermark returns the watermark for a game.
// Returns storage.ErrNotFound if no watermark exists.
func (s *Store) GetProjectionWatermark(ctx context.Context, gameID string) (storage.ProjectionWatermark, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return storage.ProjectionWatermark{}, fmt.Errorf("game id is required")
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT game_id, applied_seq, updated_at FROM projection_watermarks WHERE game_id = ?`,
		gameID,
	)
	var wm storage.ProjectionWatermark
	var appliedSeq int64
	var updatedAtMillis int64
	err := row.Scan(&wm.GameID, &appliedSeq, &updatedAtMillis)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ProjectionWatermark{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.ProjectionWatermark{}, fmt.Errorf("get projection watermark: %w", err)
	}
	wm.AppliedSeq = uint64(appliedSeq)
	wm.UpdatedAt = fromMillis(updatedAtMillis)
	return wm, nil
}

// SaveProjectionWatermark upserts the watermark for a game.
func (s *Store) SaveProjectionWatermark(ctx context.Context, wm storage.ProjectionWatermark) error {
	wm.GameID = strings.TrimSpace(wm.GameID)
	if wm.GameID == "" {
		return fmt.Errorf("game id is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO projection_watermarks (game_id, applied_seq, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (game_id) DO UPDATE SET
		     applied_seq = excluded.applied_seq,
		     updated_at = excluded.updated_at`,
		wm.GameID,
		int64(wm.AppliedSeq),
		toMillis(wm.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save projection watermark: %w", err)
	}
	return nil
}

// ListProjectionWatermarks returns all watermarks ordered by game id.
func (s *Store) ListProjectionWatermarks(ctx context.Context) ([]storage.ProjectionWatermark, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT game_id, applied_seq, updated_at FROM projection_watermarks ORDER BY game_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list projection watermarks: %w", err)
	}
	defer rows.Close()
	var watermarks []storage.ProjectionWatermark
	for rows.Next() {
		var wm storage.ProjectionWatermark
		var appliedSeq int64
		var updatedAtMillis int64
		if err := rows.Scan(&wm.GameID, &appliedSeq, &updatedAtMillis); err != nil {
			return nil, fmt.Errorf("scan projection watermark: %w", err)
		}
		wm.AppliedSeq = uint64(appliedSeq)
		wm.UpdatedAt = fromMillis(updatedAtMillis)
		watermarks = append(watermarks, wm)
	}
	return watermarks, rows.Err()
}
