package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mverberg/broadside/internal/storage"
)

// AppendDecision records one engine decision in the audit trail.
func (s *Store) AppendDecision(ctx context.Context, record storage.DecisionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.GameID) == "" {
		return fmt.Errorf("game id is required")
	}
	if strings.TrimSpace(record.CommandType) == "" {
		return fmt.Errorf("command type is required")
	}
	if strings.TrimSpace(record.Outcome) == "" {
		return fmt.Errorf("outcome is required")
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	codes := record.RejectionCodes
	if codes == nil {
		codes = []string{}
	}
	codesJSON, err := json.Marshal(codes)
	if err != nil {
		return fmt.Errorf("marshal rejection codes: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO decision_log (timestamp, game_id, battle_id, command_type, request_id, invocation_id, actor_type, trace_id, span_id, outcome, event_count, rejection_codes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		toMillis(record.Timestamp),
		record.GameID,
		record.BattleID,
		record.CommandType,
		record.RequestID,
		record.InvocationID,
		record.ActorType,
		record.TraceID,
		record.SpanID,
		record.Outcome,
		int64(record.EventCount),
		string(codesJSON),
	)
	if err != nil {
		return fmt.Errorf("append decision: %w", err)
	}
	return nil
}

// ListDecisions returns decisions for a game, newest first.
func (s *Store) ListDecisions(ctx context.Context, gameID string, limit int) ([]storage.DecisionRecord, error) {
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
		`SELECT timestamp, game_id, battle_id, command_type, request_id, invocation_id, actor_type, trace_id, span_id, outcome, event_count, rejection_codes
		 FROM decision_log WHERE game_id = ? ORDER BY id DESC LIMIT ?`,
		gameID, int64(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var records []storage.DecisionRecord
	for rows.Next() {
		var record storage.DecisionRecord
		var timestampMillis int64
		var eventCount int64
		var codesJSON string
		if err := rows.Scan(
			&timestampMillis,
			&record.GameID,
			&record.BattleID,
			&record.CommandType,
			&record.RequestID,
			&record.InvocationID,
			&record.ActorType,
			&record.TraceID,
			&record.SpanID,
			&record.Outcome,
			&eventCount,
			&codesJSON,
		); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		record.Timestamp = fromMillis(timestampMillis)
		record.EventCount = int(eventCount)
		if codesJSON != "" {
			if err := json.Unmarshal([]byte(codesJSON), &record.RejectionCodes); err != nil {
				return nil, fmt.Errorf("unmarshal rejection codes: %w", err)
			}
		}
		if len(record.RejectionCodes) == 0 {
			record.RejectionCodes = nil
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions: %w", err)
	}
	return records, nil
}
