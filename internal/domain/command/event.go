package command

import (
	"time"

	"github.com/mverberg/broadside/internal/domain/event"
)

// NewEvent builds an event.Event by copying the shared envelope fields from a
// command. Callers supply the event-specific type, entity addressing, payload,
// and timestamp. This eliminates per-decider boilerplate and ensures that new
// envelope fields are automatically forwarded.
func NewEvent(cmd Command, eventType event.Type, entityType, entityID string, payloadJSON []byte, now time.Time) event.Event {
	return event.Event{
		GameID:        cmd.GameID,
		Type:          eventType,
		Timestamp:     now,
		ActorType:     event.ActorType(cmd.ActorType),
		ActorID:       cmd.ActorID,
		BattleID:      cmd.BattleID,
		RequestID:     cmd.RequestID,
		InvocationID:  cmd.InvocationID,
		EntityType:    entityType,
		EntityID:      entityID,
		SystemID:      cmd.SystemID,
		SystemVersion: cmd.SystemVersion,
		CorrelationID: cmd.CorrelationID,
		CausationID:   cmd.CausationID,
		PayloadJSON:   payloadJSON,
	}
}

// NewCoreEvent builds a core-owned event from a command that may carry system
// metadata. Battle deciders use it for the core lifecycle facts they emit
// alongside system events; the core event registry forbids system metadata,
// so the copied envelope drops it.
func NewCoreEvent(cmd Command, eventType event.Type, entityType, entityID string, payloadJSON []byte, now time.Time) event.Event {
	evt := NewEvent(cmd, eventType, entityType, entityID, payloadJSON, now)
	evt.SystemID = ""
	evt.SystemVersion = ""
	return evt
}
