package event

import (
	"strings"
	"time"
)

// Type identifies the type of a journal event.
type Type string

// Profile events.
const (
	// TypeProfileCreated records the creation of the player profile.
	TypeProfileCreated Type = "profile.created"
	// TypeBattleRecorded records a finished battle in the profile statistics.
	TypeBattleRecorded Type = "profile.battle_recorded"
)

// Collection events.
const (
	// TypeCardsGranted records cards added to the owned collection.
	TypeCardsGranted Type = "cards.granted"
)

// Quest events.
const (
	// TypeQuestEmbarked records embarking on a quest.
	TypeQuestEmbarked Type = "quest.embarked"
	// TypeQuestAbandoned records abandoning the active quest.
	TypeQuestAbandoned Type = "quest.abandoned"
)

// Game lifecycle events.
const (
	// TypeGamePhaseChanged records a transition of the outer game phase.
	TypeGamePhaseChanged Type = "game.phase_changed"
)

// ActorType identifies who or what triggered an event.
type ActorType string

const (
	// ActorTypeSystem indicates the event was triggered by the engine itself.
	ActorTypeSystem ActorType = "system"
	// ActorTypePlayer indicates the event was triggered by the player.
	ActorTypePlayer ActorType = "player"
	// ActorTypeOpponent indicates the event was triggered by the opponent policy.
	ActorTypeOpponent ActorType = "opponent"
)

// Event represents an immutable event in the unified event journal.
type Event struct {
	// GameID is the game (playthrough) this event belongs to.
	GameID string
	// Seq is the event sequence number within the game (starts at 1).
	// Assigned by storage on append.
	Seq uint64
	// Hash is the content-addressed identity (SHA-256 truncated to 128-bit).
	// Assigned by storage on append.
	Hash string
	// PrevHash is the previous event's chain hash (empty for the first event).
	// Assigned by storage on append.
	PrevHash string
	// ChainHash links this event to the previous event hash (SHA-256).
	// Assigned by storage on append.
	ChainHash string
	// SignatureKeyID identifies the HMAC key used to sign the chain hash.
	// Assigned by storage on append.
	SignatureKeyID string
	// Signature is the HMAC signature of the chain hash.
	// Assigned by storage on append.
	Signature string
	// Timestamp is when the event occurred.
	Timestamp time.Time
	// Type identifies the kind of event.
	Type Type
	// BattleID groups events into battles (empty for out-of-battle events).
	BattleID string
	// RequestID correlates related events (e.g., a command to its outcomes).
	RequestID string
	// InvocationID tracks the CLI or simulation invocation that triggered the event.
	InvocationID string
	// CorrelationID ties the event to the business flow that produced it.
	CorrelationID string
	// CausationID names the command or event that directly caused this one.
	CausationID string
	// ActorType identifies who triggered the event.
	ActorType ActorType
	// ActorID is the combatant ID if ActorType is player or opponent.
	ActorID string
	// EntityType is the type of entity affected (battle, card, ship, etc.).
	EntityType string
	// EntityID is the ID of the entity affected.
	EntityID string
	// SystemID identifies the battle system for this event (empty for core events).
	SystemID string
	// SystemVersion identifies the battle system ruleset version (empty for core events).
	SystemVersion string
	// PayloadJSON holds event-specific data as JSON.
	PayloadJSON []byte
}

// IsValid reports whether the event type is usable.
func (t Type) IsValid() bool {
	return strings.TrimSpace(string(t)) != ""
}

// Domain returns the domain prefix of the event type (e.g., "profile", "quest").
func (t Type) Domain() string {
	for i, c := range t {
		if c == '.' {
			return string(t[:i])
		}
	}
	return string(t)
}
