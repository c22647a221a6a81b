package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mverberg/broadside/internal/storage"
)

// PutBattleSummary upserts a battle summary row.
func (s *Store) PutBattleSummary(ctx context.Context, summary storage.BattleSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(summary.BattleID) == "" {
		return fmt.Errorf("battle id is required")
	}
	if strings.TrimSpace(summary.GameID) == "" {
		return fmt.Errorf("game id is required")
	}
	if strings.TrimSpace(summary.Status) == "" {
		return fmt.Errorf("status is required")
	}
	if summary.UpdatedAt.IsZero() {
		summary.UpdatedAt = time.Now().UTC()
	}

	var resolvedAt *time.Time
	if !summary.ResolvedAt.IsZero() {
		resolvedAt = &summary.ResolvedAt
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO battle_summaries (battle_id, game_id, quest_id, system_id, system_version, status, winner, victory_condition, turns, started_at, resolved_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (battle_id) DO UPDATE SET
		     game_id = excluded.game_id,
		     quest_id = excluded.quest_id,
		     system_id = excluded.system_id,
		     system_version = excluded.system_version,
		     status = excluded.status,
		     winner = excluded.winner,
		     victory_condition = excluded.victory_condition,
		     turns = excluded.turns,
		     started_at = excluded.started_at,
		     resolved_at = excluded.resolved_at,
		     updated_at = excluded.updated_at`,
		summary.BattleID,
		summary.GameID,
		summary.QuestID,
		summary.SystemID,
		summary.SystemVersion,
		summary.Status,
		summary.Winner,
		summary.VictoryCondition,
		int64(summary.Turns),
		toMillis(summary.StartedAt),
		toNullMillis(resolvedAt),
		toMillis(summary.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put battle summary: %w", err)
	}
	return nil
}

// GetBattleSummary retrieves one battle summary.
// Returns storage.ErrNotFound when the battle is unknown.
func (s *Store) GetBattleSummary(ctx context.Context, battleID string) (storage.BattleSummary, error) {
	if err := ctx.Err(); err != nil {
		return storage.BattleSummary{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.BattleSummary{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(battleID) == "" {
		return storage.BattleSummary{}, fmt.Errorf("battle id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT battle_id, game_id, quest_id, system_id, system_version, status, winner, victory_condition, turns, started_at, resolved_at, updated_at
		 FROM battle_summaries WHERE battle_id = ?`,
		battleID,
	)
	summary, err := scanBattleSummary(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.BattleSummary{}, storage.ErrNotFound
		}
		return storage.BattleSummary{}, fmt.Errorf("get battle summary: %w", err)
	}
	return summary, nil
}

// ListBattleSummaries returns summaries for a game, newest first.
func (s *Store) ListBattleSummaries(ctx context.Context, gameID string, limit int) ([]storage.BattleSummary, error) {
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
		`SELECT battle_id, game_id, quest_id, system_id, system_version, status, winner, victory_condition, turns, started_at, resolved_at, updated_at
		 FROM battle_summaries WHERE game_id = ? ORDER BY updated_at DESC, battle_id DESC LIMIT ?`,
		gameID, int64(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list battle summaries: %w", err)
	}
	defer rows.Close()

	var summaries []storage.BattleSummary
	for rows.Next() {
		summary, err := scanBattleSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan battle summary: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate battle summaries: %w", err)
	}
	return summaries, nil
}

func scanBattleSummary(row rowScanner) (storage.BattleSummary, error) {
	var summary storage.BattleSummary
	var turns int64
	var startedAtMillis int64
	var resolvedAtMillis sql.NullInt64
	var updatedAtMillis int64
	if err := row.Scan(
		&summary.BattleID,
		&summary.GameID,
		&summary.QuestID,
		&summary.SystemID,
		&summary.SystemVersion,
		&summary.Status,
		&summary.Winner,
		&summary.VictoryCondition,
		&turns,
		&startedAtMillis,
		&resolvedAtMillis,
		&updatedAtMillis,
	); err != nil {
		return storage.BattleSummary{}, err
	}
	summary.Turns = int(turns)
	summary.StartedAt = fromMillis(startedAtMillis)
	if resolved := fromNullMillis(resolvedAtMillis); resolved != nil {
		summary.ResolvedAt = *resolved
	}
	summary.UpdatedAt = fromMillis(updatedAtMillis)
	return summary, nil
}

// PutPlayerStats upserts the statistics row for a game.
func (s *Store) PutPlayerStats(ctx context.Context, stats storage.PlayerStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(stats.GameID) == "" {
		return fmt.Errorf("game id is required")
	}
	if stats.UpdatedAt.IsZero() {
		stats.UpdatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO player_stats (game_id, player_name, battles_fought, battles_won, battles_lost, battles_drawn, ships_destroyed, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (game_id) DO UPDATE SET
		     player_name = excluded.player_name,
		     battles_fought = excluded.battles_fought,
		     battles_won = excluded.battles_won,
		     battles_lost = excluded.battles_lost,
		     battles_drawn = excluded.battles_drawn,
		     ships_destroyed = excluded.ships_destroyed,
		     updated_at = excluded.updated_at`,
		stats.GameID,
		stats.PlayerName,
		int64(stats.BattlesFought),
		int64(stats.BattlesWon),
		int64(stats.BattlesLost),
		int64(stats.BattlesDrawn),
		int64(stats.ShipsDestroyed),
		toMillis(stats.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put player stats: %w", err)
	}
	return nil
}

// GetPlayerStats retrieves the statistics row for a game.
// Returns storage.ErrNotFound when no battles have been recorded.
func (s *Store) GetPlayerStats(ctx context.Context, gameID string) (storage.PlayerStats, error) {
	if err := ctx.Err(); err != nil {
		return storage.PlayerStats{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.PlayerStats{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(gameID) == "" {
		return storage.PlayerStats{}, fmt.Errorf("game id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT game_id, player_name, battles_fought, battles_won, battles_lost, battles_drawn, ships_destroyed, updated_at
		 FROM player_stats WHERE game_id = ?`,
		gameID,
	)
	var stats storage.PlayerStats
	var fought, won, lost, drawn, destroyed int64
	var updatedAtMillis int64
	err := row.Scan(
		&stats.GameID,
		&stats.PlayerName,
		&fought,
		&won,
		&lost,
		&drawn,
		&destroyed,
		&updatedAtMillis,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.PlayerStats{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.PlayerStats{}, fmt.Errorf("get player stats: %w", err)
	}
	stats.BattlesFought = int(fought)
	stats.BattlesWon = int(won)
	stats.BattlesLost = int(lost)
	stats.BattlesDrawn = int(drawn)
	stats.ShipsDestroyed = int(destroyed)
	stats.UpdatedAt = fromMillis(updatedAtMillis)
	return stats, nil
}

// GetGameStatistics returns aggregate counts across the game data set.
//
// Event counts are reported only when the events tables share the database,
// as in single-file deployments; a projections-only store reports zero.
func (s *Store) GetGameStatistics(ctx context.Context, since *time.Time) (storage.GameStatistics, error) {
	if err := ctx.Err(); err != nil {
		return storage.GameStatistics{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.GameStatistics{}, fmt.Errorf("storage is not configured")
	}

	sinceValue := toNullMillis(since)
	stats := storage.GameStatistics{}

	gameCountQuery := `SELECT COUNT(*) FROM (
		SELECT game_id FROM player_stats WHERE (?1 IS NULL OR updated_at >= ?1)
		UNION
		SELECT game_id FROM battle_summaries WHERE (?1 IS NULL OR updated_at >= ?1)
	)`
	if err := s.sqlDB.QueryRowContext(ctx, gameCountQuery, sinceValue).Scan(&stats.GameCount); err != nil {
		return storage.GameStatistics{}, fmt.Errorf("count games: %w", err)
	}

	if err := s.sqlDB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM battle_summaries WHERE (?1 IS NULL OR updated_at >= ?1)",
		sinceValue,
	).Scan(&stats.BattleCount); err != nil {
		return storage.GameStatistics{}, fmt.Errorf("count battles: %w", err)
	}

	if err := s.sqlDB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM battle_summaries WHERE status = ?1 AND (?2 IS NULL OR updated_at >= ?2)",
		storage.BattleStatusResolved, sinceValue,
	).Scan(&stats.ResolvedBattleCount); err != nil {
		return storage.GameStatistics{}, fmt.Errorf("count resolved battles: %w", err)
	}

	hasEvents, err := s.hasTable(ctx, "events")
	if err != nil {
		return storage.GameStatistics{}, err
	}
	if hasEvents {
		if err := s.sqlDB.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM events WHERE (?1 IS NULL OR timestamp >= ?1)",
			sinceValue,
		).Scan(&stats.EventCount); err != nil {
			return storage.GameStatistics{}, fmt.Errorf("count events: %w", err)
		}
	}

	return stats, nil
}

func (s *Store) hasTable(ctx context.Context, name string) (bool, error) {
	var count int
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?",
		name,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("inspect schema: %w", err)
	}
	return count > 0, nil
}
