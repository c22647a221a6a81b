package event

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mverberg/broadside/internal/domain/encoding"
)

// hashEnvelope is the canonical field set covered by an event's content
// hash. Field ordering and inclusion are defined here, in one place, so
// storage and verification layers cannot drift.
type hashEnvelope struct {
	GameID        string          `json:"game_id"`
	Type          string          `json:"type"`
	TimestampMS   int64           `json:"timestamp_ms"`
	ActorType     string          `json:"actor_type"`
	ActorID       string          `json:"actor_id,omitempty"`
	BattleID      string          `json:"battle_id,omitempty"`
	RequestID     string          `json:"request_id,omitempty"`
	InvocationID  string          `json:"invocation_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	CausationID   string          `json:"causation_id,omitempty"`
	EntityType    string          `json:"entity_type,omitempty"`
	EntityID      string          `json:"entity_id,omitempty"`
	SystemID      string          `json:"system_id,omitempty"`
	SystemVersion string          `json:"system_version,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// chainEnvelope is the canonical field set covered by a chain hash. It
// binds the event's position and content hash to its predecessor's
// chain hash.
type chainEnvelope struct {
	GameID   string `json:"game_id"`
	Seq      uint64 `json:"seq"`
	Hash     string `json:"hash"`
	PrevHash string `json:"prev_hash"`
}

// EventHash computes the content hash for an event: SHA-256 over the
// canonical envelope, truncated to 128 bits. The hash is independent of
// the assigned sequence number, so the same logical event hashes the
// same regardless of where it lands in the journal.
func EventHash(evt Event) (string, error) {
	if strings.TrimSpace(evt.GameID) == "" {
		return "", errors.New("event hash requires a game id")
	}
	if !evt.Type.IsValid() {
		return "", errors.New("event hash requires an event type")
	}
	if evt.Timestamp.IsZero() {
		return "", errors.New("event hash requires a timestamp")
	}
	payload := evt.PayloadJSON
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	hash, err := encoding.ContentHash(hashEnvelope{
		GameID:        evt.GameID,
		Type:          string(evt.Type),
		TimestampMS:   evt.Timestamp.UTC().UnixMilli(),
		ActorType:     string(evt.ActorType),
		ActorID:       evt.ActorID,
		BattleID:      evt.BattleID,
		RequestID:     evt.RequestID,
		InvocationID:  evt.InvocationID,
		CorrelationID: evt.CorrelationID,
		CausationID:   evt.CausationID,
		EntityType:    evt.EntityType,
		EntityID:      evt.EntityID,
		SystemID:      evt.SystemID,
		SystemVersion: evt.SystemVersion,
		Payload:       json.RawMessage(payload),
	})
	if err != nil {
		return "", fmt.Errorf("event hash: %w", err)
	}
	return hash, nil
}

// ChainHash links an event to its predecessor: full SHA-256 over the
// canonical chain envelope. The previous hash is empty for the first
// event of a game.
func ChainHash(evt Event, prevHash string) (string, error) {
	if strings.TrimSpace(evt.Hash) == "" {
		return "", errors.New("chain hash requires the event hash")
	}
	if evt.Seq == 0 {
		return "", errors.New("chain hash requires an assigned sequence")
	}
	canonical, err := encoding.CanonicalJSON(chainEnvelope{
		GameID:   evt.GameID,
		Seq:      evt.Seq,
		Hash:     evt.Hash,
		PrevHash: prevHash,
	})
	if err != nil {
		return "", fmt.Errorf("chain hash: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
