package game

import (
	"encoding/json"

	"github.com/mverberg/broadside/internal/domain/event"
)

// FoldHandledTypes returns the event types handled by the core fold function.
func FoldHandledTypes() []event.Type {
	return []event.Type{
		event.TypeProfileCreated,
		event.TypeCardsGranted,
		event.TypeQuestEmbarked,
		event.TypeQuestAbandoned,
		event.TypeGamePhaseChanged,
		event.TypeBattleRecorded,
	}
}

// Fold applies an event to core game state. Maps are copied before mutation
// so callers can hold earlier snapshots without aliasing surprises.
func Fold(state State, evt event.Event) State {
	switch evt.Type {
	case event.TypeProfileCreated:
		var payload ProfileCreatedPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		state.Created = true
		state.PlayerName = payload.PlayerName
		owned := make(map[string]bool, len(payload.StarterCardIDs))
		for _, id := range payload.StarterCardIDs {
			owned[id] = true
		}
		state.OwnedCards = owned
	case event.TypeCardsGranted:
		var payload CardsGrantedPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		owned := make(map[string]bool, len(state.OwnedCards)+len(payload.CardIDs))
		for id := range state.OwnedCards {
			owned[id] = true
		}
		for _, id := range payload.CardIDs {
			owned[id] = true
		}
		state.OwnedCards = owned
	case event.TypeQuestEmbarked:
		var payload QuestEmbarkedPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		state.ActiveQuestID = payload.QuestID
	case event.TypeQuestAbandoned:
		state.ActiveQuestID = ""
	case event.TypeGamePhaseChanged:
		var payload PhaseChangedPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		state.Phase = payload.To
		if payload.To == PhaseIdle {
			state.ActiveQuestID = ""
		}
	case event.TypeBattleRecorded:
		var payload BattleRecordedPayload
		_ = json.Unmarshal(evt.PayloadJSON, &payload)
		state.Stats.BattlesFought++
		switch payload.Result {
		case ResultWon:
			state.Stats.BattlesWon++
		case ResultLost:
			state.Stats.BattlesLost++
		case ResultDrawn:
			state.Stats.BattlesDrawn++
		}
		state.Stats.ShipsDestroyed += payload.ShipsDestroyed
	}
	return state
}
