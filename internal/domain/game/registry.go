package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mverberg/broadside/internal/domain/command"
	"github.com/mverberg/broadside/internal/domain/event"
)

var coreCommandDefinitions = []command.Definition{
	{
		Type:            commandTypeProfileCreate,
		Owner:           command.OwnerCore,
		ValidatePayload: validateProfileCreatePayload,
	},
	{
		Type:            commandTypeCardsGrant,
		Owner:           command.OwnerCore,
		ValidatePayload: validateCardsGrantPayload,
		Gate:            command.GatePolicy{Scope: command.GateScopeBattle},
	},
	{
		Type:            commandTypeQuestEmbark,
		Owner:           command.OwnerCore,
		ValidatePayload: validateQuestEmbarkPayload,
		Gate:            command.GatePolicy{Scope: command.GateScopeBattle},
	},
	{
		Type:            commandTypeQuestAbandon,
		Owner:           command.OwnerCore,
		ValidatePayload: validateJSONObjectPayload,
		Gate:            command.GatePolicy{Scope: command.GateScopeBattle},
	},
}

var coreEventDefinitions = []event.Definition{
	{
		Type:            event.TypeProfileCreated,
		Owner:           event.OwnerCore,
		ValidatePayload: validateProfileCreatedPayload,
		Addressing:      event.AddressingPolicyEntityTarget,
	},
	{
		Type:            event.TypeCardsGranted,
		Owner:           event.OwnerCore,
		ValidatePayload: validateCardsGrantedPayload,
		Addressing:      event.AddressingPolicyEntityTarget,
		Intent:          event.IntentReplayOnly,
	},
	{
		Type:            event.TypeQuestEmbarked,
		Owner:           event.OwnerCore,
		ValidatePayload: validateQuestEmbarkedPayload,
		Addressing:      event.AddressingPolicyEntityTarget,
		Intent:          event.IntentReplayOnly,
	},
	{
		Type:            event.TypeQuestAbandoned,
		Owner:           event.OwnerCore,
		ValidatePayload: validateQuestAbandonedPayload,
		Addressing:      event.AddressingPolicyEntityTarget,
		Intent:          event.IntentReplayOnly,
	},
	{
		Type:            event.TypeGamePhaseChanged,
		Owner:           event.OwnerCore,
		ValidatePayload: validatePhaseChangedPayload,
		Addressing:      event.AddressingPolicyEntityTarget,
		Intent:          event.IntentReplayOnly,
	},
	{
		Type:            event.TypeBattleRecorded,
		Owner:           event.OwnerCore,
		ValidatePayload: validateBattleRecordedPayload,
		Addressing:      event.AddressingPolicyEntityTarget,
	},
}

// RegisterCommands registers the core command definitions.
func RegisterCommands(registry *command.Registry) error {
	if registry == nil {
		return errors.New("command registry is nil")
	}
	for _, def := range coreCommandDefinitions {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// RegisterEvents registers the core event definitions.
func RegisterEvents(registry *event.Registry) error {
	if registry == nil {
		return errors.New("event registry is nil")
	}
	for _, def := range coreEventDefinitions {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// EmittableEventTypes returns all event types appended under core ownership.
// The battle record and the battling phase transitions are emitted by
// tactical decisions; the rest come from the core decider.
func EmittableEventTypes() []event.Type {
	return []event.Type{
		event.TypeProfileCreated,
		event.TypeCardsGranted,
		event.TypeQuestEmbarked,
		event.TypeQuestAbandoned,
		event.TypeGamePhaseChanged,
		event.TypeBattleRecorded,
	}
}

// DeciderHandledCommands lists every command type Decide dispatches on.
func DeciderHandledCommands() []command.Type {
	return []command.Type{
		commandTypeProfileCreate,
		commandTypeCardsGrant,
		commandTypeQuestEmbark,
		commandTypeQuestAbandon,
	}
}

// ProjectionHandledTypes returns the core event types consumed by
// projections. Collection and quest events fold into the aggregate but
// have no read model, so they register with IntentReplayOnly and stay
// off this list.
func ProjectionHandledTypes() []event.Type {
	return []event.Type{
		event.TypeProfileCreated,
		event.TypeBattleRecorded,
	}
}

func validateProfileCreatePayload(payload json.RawMessage) error {
	var decoded ProfileCreatePayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode profile.create payload: %w", err)
	}
	if strings.TrimSpace(decoded.PlayerName) == "" {
		return errors.New("player_name is required")
	}
	return nil
}

func validateCardsGrantPayload(payload json.RawMessage) error {
	var decoded CardsGrantPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode cards.grant payload: %w", err)
	}
	if len(decoded.CardIDs) == 0 {
		return errors.New("card_ids is required")
	}
	return nil
}

func validateQuestEmbarkPayload(payload json.RawMessage) error {
	var decoded QuestEmbarkPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode quest.embark payload: %w", err)
	}
	if strings.TrimSpace(decoded.QuestID) == "" {
		return errors.New("quest_id is required")
	}
	return nil
}

func validateJSONObjectPayload(payload json.RawMessage) error {
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode payload object: %w", err)
	}
	return nil
}

func validateProfileCreatedPayload(payload json.RawMessage) error {
	var decoded ProfileCreatedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode profile.created payload: %w", err)
	}
	if strings.TrimSpace(decoded.PlayerName) == "" {
		return errors.New("player_name is required")
	}
	return nil
}

func validateCardsGrantedPayload(payload json.RawMessage) error {
	var decoded CardsGrantedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode cards.granted payload: %w", err)
	}
	if len(decoded.CardIDs) == 0 {
		return errors.New("card_ids is required")
	}
	return nil
}

func validateQuestEmbarkedPayload(payload json.RawMessage) error {
	var decoded QuestEmbarkedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode quest.embarked payload: %w", err)
	}
	if strings.TrimSpace(decoded.QuestID) == "" {
		return errors.New("quest_id is required")
	}
	return nil
}

func validateQuestAbandonedPayload(payload json.RawMessage) error {
	var decoded QuestAbandonedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode quest.abandoned payload: %w", err)
	}
	return nil
}

func validatePhaseChangedPayload(payload json.RawMessage) error {
	var decoded PhaseChangedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode game.phase_changed payload: %w", err)
	}
	switch decoded.To {
	case PhaseIdle, PhasePreparing, PhaseBattling:
	default:
		return fmt.Errorf("to phase %q is invalid", decoded.To)
	}
	switch decoded.From {
	case PhaseIdle, PhasePreparing, PhaseBattling:
	default:
		return fmt.Errorf("from phase %q is invalid", decoded.From)
	}
	return nil
}

func validateBattleRecordedPayload(payload json.RawMessage) error {
	var decoded BattleRecordedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode profile.battle_recorded payload: %w", err)
	}
	switch decoded.Result {
	case ResultWon, ResultLost, ResultDrawn:
	default:
		return fmt.Errorf("result %q is invalid", decoded.Result)
	}
	if decoded.Turns < 0 {
		return errors.New("turns must not be negative")
	}
	return nil
}
