package game

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mverberg/broadside/internal/catalog"
	"github.com/mverberg/broadside/internal/domain/command"
	"github.com/mverberg/broadside/internal/domain/event"
)

const (
	commandTypeProfileCreate command.Type = "profile.create"
	commandTypeCardsGrant    command.Type = "cards.grant"
	commandTypeQuestEmbark   command.Type = "quest.embark"
	commandTypeQuestAbandon  command.Type = "quest.abandon"

	rejectionCodeProfileAlreadyExists = "PROFILE_ALREADY_EXISTS"
	rejectionCodeProfileNotCreated    = "PROFILE_NOT_CREATED"
	rejectionCodeProfileNameEmpty     = "PROFILE_NAME_EMPTY"
	rejectionCodeCardsGrantEmpty      = "CARDS_GRANT_EMPTY"
	rejectionCodeCardsAlreadyOwned    = "CARDS_ALREADY_OWNED"
	rejectionCodeCardUnknown          = "CARD_UNKNOWN"
	rejectionCodeQuestIDRequired      = "QUEST_ID_REQUIRED"
	rejectionCodePhaseInvalid         = "PHASE_INVALID"
)

// Decide returns the decision for a core game command against current state.
// Commands the core domain does not recognize yield an empty decision so the
// engine can continue routing.
func Decide(state State, cmd command.Command, now func() time.Time) command.Decision {
	if cmd.Type == commandTypeProfileCreate {
		if state.Created {
			return command.Reject(command.Rejection{
				Code:    rejectionCodeProfileAlreadyExists,
				Message: "profile already exists",
			})
		}
		var payload ProfileCreatePayload
		_ = json.Unmarshal(cmd.PayloadJSON, &payload)
		normalizedName := strings.TrimSpace(payload.PlayerName)
		if normalizedName == "" {
			return command.Reject(command.Rejection{
				Code:    rejectionCodeProfileNameEmpty,
				Message: "player name is required",
			})
		}
		if now == nil {
			now = time.Now
		}

		payloadJSON, _ := json.Marshal(ProfileCreatedPayload{
			PlayerName:     normalizedName,
			StarterCardIDs: catalog.StarterCardIDs(),
		})
		evt := command.NewEvent(cmd, event.TypeProfileCreated, "profile", cmd.GameID, payloadJSON, now().UTC())
		return command.Accept(evt)
	}

	if cmd.Type == commandTypeCardsGrant {
		if !state.Created {
			return command.Reject(command.Rejection{
				Code:    rejectionCodeProfileNotCreated,
				Message: "profile does not exist",
			})
		}
		var payload CardsGrantPayload
		_ = json.Unmarshal(cmd.PayloadJSON, &payload)
		if len(payload.CardIDs) == 0 {
			return command.Reject(command.Rejection{
				Code:    rejectionCodeCardsGrantEmpty,
				Message: "cards grant requires card ids",
			})
		}
		seen := make(map[string]bool, len(payload.CardIDs))
		var granted []string
		for _, raw := range payload.CardIDs {
			cardID := strings.TrimSpace(raw)
			if cardID == "" {
				return command.Reject(command.Rejection{
					Code:    rejectionCodeCardUnknown,
					Message: "card id is required",
				})
			}
			if !catalog.Exists(cardID) {
				return command.Reject(command.Rejection{
					Code:    rejectionCodeCardUnknown,
					Message: fmt.Sprintf("card %s is not in the catalog", cardID),
				})
			}
			if seen[cardID] || state.Owns(cardID) {
				continue
			}
			seen[cardID] = true
			granted = append(granted, cardID)
		}
		if len(granted) == 0 {
			// FIXME(telemetry): metric for idempotent card grant commands (no-op reject).
			return command.Reject(command.Rejection{
				Code:    rejectionCodeCardsAlreadyOwned,
				Message: "cards are already owned",
			})
		}
		if now == nil {
			now = time.Now
		}

		payloadJSON, _ := json.Marshal(CardsGrantedPayload{
			CardIDs: granted,
			Source:  strings.TrimSpace(payload.Source),
		})
		evt := command.NewEvent(cmd, event.TypeCardsGranted, "collection", cmd.GameID, payloadJSON, now().UTC())
		return command.Accept(evt)
	}

	if cmd.Type == commandTypeQuestEmbark {
		if !state.Created {
			return command.Reject(command.Rejection{
				Code:    rejectionCodeProfileNotCreated,
				Message: "profile does not exist",
			})
		}
		if state.CurrentPhase() != PhaseIdle {
			return command.Reject(command.Rejection{
				Code:    rejectionCodePhaseInvalid,
				Message: fmt.Sprintf("quest embark requires the idle phase, current phase is %s", state.CurrentPhase()),
			})
		}
		var payload QuestEmbarkPayload
		_ = json.Unmarshal(cmd.PayloadJSON, &payload)
		questID := strings.TrimSpace(payload.QuestID)
		if questID == "" {
			return command.Reject(command.Rejection{
				Code:    rejectionCodeQuestIDRequired,
				Message: "quest id is required",
			})
		}
		if now == nil {
			now = time.Now
		}
		ts := now().UTC()

		embarkedJSON, _ := json.Marshal(QuestEmbarkedPayload{QuestID: questID})
		phaseJSON, _ := json.Marshal(PhaseChangedPayload{From: PhaseIdle, To: PhasePreparing})
		return command.Accept(
			command.NewEvent(cmd, event.TypeQuestEmbarked, "quest", questID, embarkedJSON, ts),
			command.NewEvent(cmd, event.TypeGamePhaseChanged, "game", cmd.GameID, phaseJSON, ts),
		)
	}

	if cmd.Type == commandTypeQuestAbandon {
		if !state.Created {
			return command.Reject(command.Rejection{
				Code:    rejectionCodeProfileNotCreated,
				Message: "profile does not exist",
			})
		}
		if state.CurrentPhase() != PhasePreparing {
			return command.Reject(command.Rejection{
				Code:    rejectionCodePhaseInvalid,
				Message: fmt.Sprintf("quest abandon requires the preparing phase, current phase is %s", state.CurrentPhase()),
			})
		}
		if now == nil {
			now = time.Now
		}
		ts := now().UTC()

		abandonedJSON, _ := json.Marshal(QuestAbandonedPayload{QuestID: state.ActiveQuestID})
		phaseJSON, _ := json.Marshal(PhaseChangedPayload{From: PhasePreparing, To: PhaseIdle})
		return command.Accept(
			command.NewEvent(cmd, event.TypeQuestAbandoned, "quest", state.ActiveQuestID, abandonedJSON, ts),
			command.NewEvent(cmd, event.TypeGamePhaseChanged, "game", cmd.GameID, phaseJSON, ts),
		)
	}

	return command.Decision{}
}
