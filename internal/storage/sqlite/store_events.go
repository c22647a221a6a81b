package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mverberg/broadside/internal/domain/event"
	"github.com/mverberg/broadside/internal/storage"
	"github.com/mverberg/broadside/internal/storage/integrity"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// EventStore methods (unified event journal)

// eventColumns is the full envelope column list, in insert and scan order.
const eventColumns = "game_id, seq, event_hash, prev_event_hash, chain_hash, signature_key_id, event_signature, timestamp, event_type, battle_id, request_id, invocation_id, actor_type, actor_id, entity_type, entity_id, system_id, system_version, correlation_id, causation_id, payload_json"

// Append atomically appends an event and returns it with sequence and hash set.
//
// Re-appending an event with an identical content hash returns the stored
// copy, so retried commands stay idempotent.
func (s *Store) Append(ctx context.Context, evt event.Event) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if s == nil || s.sqlDB == nil {
		return event.Event{}, fmt.Errorf("storage is not configured")
	}
	if s.eventRegistry == nil {
		return event.Event{}, fmt.Errorf("event registry is required")
	}
	if s.keyring == nil {
		return event.Event{}, fmt.Errorf("event integrity keyring is required")
	}

	validated, err := s.eventRegistry.ValidateForAppend(evt)
	if err != nil {
		return event.Event{}, err
	}
	evt = validated
	evt.Timestamp = evt.Timestamp.UTC().Truncate(time.Millisecond)

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return event.Event{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := initEventSeqTx(ctx, tx, evt.GameID); err != nil {
		return event.Event{}, fmt.Errorf("init event seq: %w", err)
	}

	seq, err := getEventSeqTx(ctx, tx, evt.GameID)
	if err != nil {
		return event.Event{}, fmt.Errorf("get event seq: %w", err)
	}
	evt.Seq = uint64(seq)

	if err := incrementEventSeqTx(ctx, tx, evt.GameID); err != nil {
		return event.Event{}, fmt.Errorf("increment event seq: %w", err)
	}

	hash, err := integrity.EventHash(evt)
	if err != nil {
		return event.Event{}, fmt.Errorf("compute event hash: %w", err)
	}
	if strings.TrimSpace(hash) == "" {
		return event.Event{}, fmt.Errorf("event hash is required")
	}
	evt.Hash = hash

	prevHash := ""
	if evt.Seq > 1 {
		prevHash, err = chainHashBySeqTx(ctx, tx, evt.GameID, evt.Seq-1)
		if err != nil {
			return event.Event{}, fmt.Errorf("load previous event: %w", err)
		}
	}

	chainHash, err := integrity.ChainHash(evt, prevHash)
	if err != nil {
		return event.Event{}, fmt.Errorf("compute chain hash: %w", err)
	}
	if strings.TrimSpace(chainHash) == "" {
		return event.Event{}, fmt.Errorf("chain hash is required")
	}

	signature, keyID, err := s.keyring.SignChainHash(evt.GameID, chainHash)
	if err != nil {
		return event.Event{}, fmt.Errorf("sign chain hash: %w", err)
	}

	evt.PrevHash = prevHash
	evt.ChainHash = chainHash
	evt.Signature = signature
	evt.SignatureKeyID = keyID

	if err := insertEventTx(ctx, tx, evt); err != nil {
		if isConstraintError(err) {
			stored, lookupErr := s.GetEventByHash(ctx, evt.Hash)
			if lookupErr == nil {
				return stored, nil
			}
		}
		return event.Event{}, fmt.Errorf("append event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return event.Event{}, fmt.Errorf("commit: %w", err)
	}

	return evt, nil
}

// BatchAppend atomically appends multiple events in a single transaction.
//
// All events must belong to the same game. Sequence numbers are allocated
// contiguously, and chain hashes link each event to its predecessor,
// including the last previously stored event for the first item in the batch.
func (s *Store) BatchAppend(ctx context.Context, events []event.Event) ([]event.Event, error) {
	if len(events) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if s.eventRegistry == nil {
		return nil, fmt.Errorf("event registry is required")
	}
	if s.keyring == nil {
		return nil, fmt.Errorf("event integrity keyring is required")
	}

	// Validate all events before opening a transaction.
	validated := make([]event.Event, len(events))
	for i, evt := range events {
		v, err := s.eventRegistry.ValidateForAppend(evt)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		v.Timestamp = v.Timestamp.UTC().Truncate(time.Millisecond)
		if i > 0 && v.GameID != validated[0].GameID {
			return nil, fmt.Errorf("event %d: batch spans games %s and %s", i, validated[0].GameID, v.GameID)
		}
		validated[i] = v
	}

	gameID := validated[0].GameID

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := initEventSeqTx(ctx, tx, gameID); err != nil {
		return nil, fmt.Errorf("init event seq: %w", err)
	}

	baseSeq, err := getEventSeqTx(ctx, tx, gameID)
	if err != nil {
		return nil, fmt.Errorf("get event seq: %w", err)
	}

	// Load previous chain hash for linking the first event in the batch.
	prevChainHash := ""
	if baseSeq > 1 {
		prevChainHash, err = chainHashBySeqTx(ctx, tx, gameID, uint64(baseSeq-1))
		if err != nil {
			return nil, fmt.Errorf("load previous event: %w", err)
		}
	}

	stored := make([]event.Event, len(validated))
	for i, evt := range validated {
		evt.Seq = uint64(baseSeq) + uint64(i)

		hash, err := integrity.EventHash(evt)
		if err != nil {
			return nil, fmt.Errorf("event %d hash: %w", i, err)
		}
		if strings.TrimSpace(hash) == "" {
			return nil, fmt.Errorf("event %d: hash is empty", i)
		}
		evt.Hash = hash

		chainHash, err := integrity.ChainHash(evt, prevChainHash)
		if err != nil {
			return nil, fmt.Errorf("event %d chain hash: %w", i, err)
		}
		if strings.TrimSpace(chainHash) == "" {
			return nil, fmt.Errorf("event %d: chain hash is empty", i)
		}

		signature, keyID, err := s.keyring.SignChainHash(evt.GameID, chainHash)
		if err != nil {
			return nil, fmt.Errorf("event %d sign: %w", i, err)
		}

		evt.PrevHash = prevChainHash
		evt.ChainHash = chainHash
		evt.Signature = signature
		evt.SignatureKeyID = keyID

		if err := insertEventTx(ctx, tx, evt); err != nil {
			return nil, fmt.Errorf("append event %d: %w", i, err)
		}

		prevChainHash = chainHash
		stored[i] = evt
	}

	// Advance the sequence counter to account for all appended events.
	nextSeq := baseSeq + int64(len(events))
	if _, err := tx.ExecContext(ctx,
		"UPDATE event_seq SET next_seq = ? WHERE game_id = ?",
		nextSeq, gameID,
	); err != nil {
		return nil, fmt.Errorf("update event seq: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return stored, nil
}

// VerifyEventIntegrity walks every stored chain and verifies hashes, links,
// and signatures.
func (s *Store) VerifyEventIntegrity(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if s.keyring == nil {
		return fmt.Errorf("event integrity keyring is required")
	}

	gameIDs, err := s.listEventGameIDs(ctx)
	if err != nil {
		return err
	}
	for _, gameID := range gameIDs {
		if err := s.verifyGameEvents(ctx, gameID); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) listEventGameIDs(ctx context.Context) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, "SELECT DISTINCT game_id FROM events ORDER BY game_id")
	if err != nil {
		return nil, fmt.Errorf("list game ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan game id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate game ids: %w", err)
	}
	return ids, nil
}

func (s *Store) verifyGameEvents(ctx context.Context, gameID string) error {
	var lastSeq uint64
	prevChainHash := ""
	for {
		events, err := s.ListEvents(ctx, gameID, lastSeq, 200)
		if err != nil {
			return fmt.Errorf("list events game_id=%s: %w", gameID, err)
		}
		if len(events) == 0 {
			return nil
		}
		for _, evt := range events {
			if evt.Seq != lastSeq+1 {
				return fmt.Errorf("event sequence gap game_id=%s expected=%d got=%d", gameID, lastSeq+1, evt.Seq)
			}
			if evt.Seq == 1 && evt.PrevHash != "" {
				return fmt.Errorf("first event prev hash must be empty game_id=%s", gameID)
			}
			if evt.Seq > 1 && evt.PrevHash != prevChainHash {
				return fmt.Errorf("prev hash mismatch game_id=%s seq=%d", gameID, evt.Seq)
			}

			hash, err := integrity.EventHash(evt)
			if err != nil {
				return fmt.Errorf("compute event hash game_id=%s seq=%d: %w", gameID, evt.Seq, err)
			}
			if hash != evt.Hash {
				return fmt.Errorf("event hash mismatch game_id=%s seq=%d", gameID, evt.Seq)
			}

			chainHash, err := integrity.ChainHash(evt, prevChainHash)
			if err != nil {
				return fmt.Errorf("compute chain hash game_id=%s seq=%d: %w", gameID, evt.Seq, err)
			}
			if chainHash != evt.ChainHash {
				return fmt.Errorf("chain hash mismatch game_id=%s seq=%d", gameID, evt.Seq)
			}

			if err := s.keyring.VerifyChainHash(gameID, chainHash, evt.Signature, evt.SignatureKeyID); err != nil {
				return fmt.Errorf("signature mismatch game_id=%s seq=%d: %w", gameID, evt.Seq, err)
			}

			prevChainHash = evt.ChainHash
			lastSeq = evt.Seq
		}
	}
}

// GetEventByHash retrieves an event by its content hash.
func (s *Store) GetEventByHash(ctx context.Context, hash string) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if s == nil || s.sqlDB == nil {
		return event.Event{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(hash) == "" {
		return event.Event{}, fmt.Errorf("event hash is required")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE event_hash = ?",
		hash,
	)
	evt, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return event.Event{}, storage.ErrNotFound
		}
		return event.Event{}, fmt.Errorf("get event by hash: %w", err)
	}
	return evt, nil
}

// GetEventBySeq retrieves a specific event by sequence number.
func (s *Store) GetEventBySeq(ctx context.Context, gameID string, seq uint64) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if s == nil || s.sqlDB == nil {
		return event.Event{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(gameID) == "" {
		return event.Event{}, fmt.Errorf("game id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE game_id = ? AND seq = ?",
		gameID, int64(seq),
	)
	evt, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return event.Event{}, storage.ErrNotFound
		}
		return event.Event{}, fmt.Errorf("get event by seq: %w", err)
	}
	return evt, nil
}

// ListEvents returns events ordered by sequence ascending.
func (s *Store) ListEvents(ctx context.Context, gameID string, afterSeq uint64, limit int) ([]event.Event, error) {
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
		"SELECT "+eventColumns+" FROM events WHERE game_id = ? AND seq > ? ORDER BY seq ASC LIMIT ?",
		gameID, int64(afterSeq), int64(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListEventsByBattle returns events for a specific battle.
func (s *Store) ListEventsByBattle(ctx context.Context, gameID, battleID string, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(gameID) == "" {
		return nil, fmt.Errorf("game id is required")
	}
	if strings.TrimSpace(battleID) == "" {
		return nil, fmt.Errorf("battle id is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE game_id = ? AND battle_id = ? AND seq > ? ORDER BY seq ASC LIMIT ?",
		gameID, battleID, int64(afterSeq), int64(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list events by battle: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetLatestEventSeq returns the latest event sequence number for a game.
func (s *Store) GetLatestEventSeq(ctx context.Context, gameID string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(gameID) == "" {
		return 0, fmt.Errorf("game id is required")
	}

	var seq int64
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq), 0) FROM events WHERE game_id = ?",
		gameID,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("get latest event seq: %w", err)
	}

	return uint64(seq), nil
}

// Transaction helpers for the per-game sequence counter and envelope rows.

func initEventSeqTx(ctx context.Context, tx *sql.Tx, gameID string) error {
	_, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO event_seq (game_id, next_seq) VALUES (?, 1)",
		gameID,
	)
	return err
}

func getEventSeqTx(ctx context.Context, tx *sql.Tx, gameID string) (int64, error) {
	var seq int64
	err := tx.QueryRowContext(ctx,
		"SELECT next_seq FROM event_seq WHERE game_id = ?",
		gameID,
	).Scan(&seq)
	return seq, err
}

func incrementEventSeqTx(ctx context.Context, tx *sql.Tx, gameID string) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE event_seq SET next_seq = next_seq + 1 WHERE game_id = ?",
		gameID,
	)
	return err
}

func chainHashBySeqTx(ctx context.Context, tx *sql.Tx, gameID string, seq uint64) (string, error) {
	var chainHash string
	err := tx.QueryRowContext(ctx,
		"SELECT chain_hash FROM events WHERE game_id = ? AND seq = ?",
		gameID, int64(seq),
	).Scan(&chainHash)
	return chainHash, err
}

func insertEventTx(ctx context.Context, tx *sql.Tx, evt event.Event) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO events ("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		evt.GameID,
		int64(evt.Seq),
		evt.Hash,
		evt.PrevHash,
		evt.ChainHash,
		evt.SignatureKeyID,
		evt.Signature,
		toMillis(evt.Timestamp),
		string(evt.Type),
		evt.BattleID,
		evt.RequestID,
		evt.InvocationID,
		string(evt.ActorType),
		evt.ActorID,
		evt.EntityType,
		evt.EntityID,
		evt.SystemID,
		evt.SystemVersion,
		evt.CorrelationID,
		evt.CausationID,
		evt.PayloadJSON,
	)
	return err
}

// rowScanner lets scanEvent work over both QueryRow and Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (event.Event, error) {
	var evt event.Event
	var seq int64
	var timestamp int64
	var eventType string
	var actorType string
	if err := row.Scan(
		&evt.GameID,
		&seq,
		&evt.Hash,
		&evt.PrevHash,
		&evt.ChainHash,
		&evt.SignatureKeyID,
		&evt.Signature,
		&timestamp,
		&eventType,
		&evt.BattleID,
		&evt.RequestID,
		&evt.InvocationID,
		&actorType,
		&evt.ActorID,
		&evt.EntityType,
		&evt.EntityID,
		&evt.SystemID,
		&evt.SystemVersion,
		&evt.CorrelationID,
		&evt.CausationID,
		&evt.PayloadJSON,
	); err != nil {
		return event.Event{}, err
	}
	evt.Seq = uint64(seq)
	evt.Timestamp = fromMillis(timestamp)
	evt.Type = event.Type(eventType)
	evt.ActorType = event.ActorType(actorType)
	return evt, nil
}

func scanEvents(rows *sql.Rows) ([]event.Event, error) {
	var events []event.Event
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func isConstraintError(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
