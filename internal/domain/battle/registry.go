package battle

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mverberg/broadside/internal/catalog"
	"github.com/mverberg/broadside/internal/domain/command"
	"github.com/mverberg/broadside/internal/domain/event"
)

// systemCommandDefinitions registers the tactical command surface.
// Everything except battle.start stays available while a battle runs;
// battle.start itself is blocked by the gate until resolution.
var systemCommandDefinitions = []command.Definition{
	{
		Type:            commandTypeBattleStart,
		Owner:           command.OwnerSystem,
		ValidatePayload: validateBattleStartPayload,
		Gate:            command.GatePolicy{Scope: command.GateScopeBattle},
	},
	{
		Type:            commandTypeHandMulligan,
		Owner:           command.OwnerSystem,
		ValidatePayload: validateHandMulliganPayload,
		Gate:            command.GatePolicy{Scope: command.GateScopeBattle, AllowWhenActive: true},
	},
	{
		Type:            commandTypeCardDeploy,
		Owner:           command.OwnerSystem,
		ValidatePayload: validateCardDeployPayload,
		Gate:            command.GatePolicy{Scope: command.GateScopeBattle, AllowWhenActive: true},
	},
	{
		Type:            commandTypeShipAttack,
		Owner:           command.OwnerSystem,
		ValidatePayload: validateShipAttackPayload,
		Gate:            command.GatePolicy{Scope: command.GateScopeBattle, AllowWhenActive: true},
	},
	{
		Type:            commandTypeAbilityActivate,
		Owner:           command.OwnerSystem,
		ValidatePayload: validateAbilityActivatePayload,
		Gate:            command.GatePolicy{Scope: command.GateScopeBattle, AllowWhenActive: true},
	},
	{
		Type:            commandTypeShipMove,
		Owner:           command.OwnerSystem,
		ValidatePayload: validateShipMovePayload,
		Gate:            command.GatePolicy{Scope: command.GateScopeBattle, AllowWhenActive: true},
	},
	{
		Type:            commandTypeCardDraw,
		Owner:           command.OwnerSystem,
		ValidatePayload: validateCombatantOnlyPayload,
		Gate:            command.GatePolicy{Scope: command.GateScopeBattle, AllowWhenActive: true},
	},
	{
		Type:            commandTypeReserveUse,
		Owner:           command.OwnerSystem,
		ValidatePayload: validateCombatantOnlyPayload,
		Gate:            command.GatePolicy{Scope: command.GateScopeBattle, AllowWhenActive: true},
	},
	{
		Type:            commandTypeTurnEnd,
		Owner:           command.OwnerSystem,
		ValidatePayload: validateCombatantOnlyPayload,
		Gate:            command.GatePolicy{Scope: command.GateScopeBattle, AllowWhenActive: true},
	},
}

func systemEventDefinitions() []event.Definition {
	// Tactical detail events replay into battle state but write no read
	// model rows; only the lifecycle pair feeds projections.
	replayOnly := func(t event.Type, validate func(json.RawMessage) error) event.Definition {
		return event.Definition{Type: t, Owner: event.OwnerSystem, ValidatePayload: validate, Intent: event.IntentReplayOnly}
	}
	return []event.Definition{
		{Type: EventTypeBattleStarted, Owner: event.OwnerSystem, ValidatePayload: validateBattleStartedPayload},
		replayOnly(EventTypeHandMulliganed, validateHandMulliganedPayload),
		replayOnly(EventTypeEnergySpent, validateEnergySpentPayload),
		replayOnly(EventTypeCardDeployed, validateCardDeployedPayload),
		replayOnly(EventTypeShipAttacked, validateShipAttackedPayload),
		replayOnly(EventTypeShipDamaged, validateShipDamagedPayload),
		replayOnly(EventTypeFlagshipDamaged, validateFlagshipDamagedPayload),
		replayOnly(EventTypeShipDestroyed, validateShipDestroyedPayload),
		replayOnly(EventTypeShipHealed, validateShipHealedPayload),
		replayOnly(EventTypeStatusApplied, validateStatusAppliedPayload),
		replayOnly(EventTypeStatusTicked, validateStatusTickedPayload),
		replayOnly(EventTypeAbilityActivated, validateAbilityActivatedPayload),
		replayOnly(EventTypeShipMoved, validateShipMovedPayload),
		replayOnly(EventTypeCardDrawn, validateCardDrawnPayload),
		replayOnly(EventTypeReserveUsed, validateReserveUsedPayload),
		replayOnly(EventTypeHandTrimmed, validateHandTrimmedPayload),
		replayOnly(EventTypeShipsReadied, validateShipsReadiedPayload),
		replayOnly(EventTypeTurnEnded, validateTurnMarkerPayload),
		replayOnly(EventTypeTurnStarted, validateTurnMarkerPayload),
		replayOnly(EventTypeEnergyRegenerated, validateEnergyRegeneratedPayload),
		replayOnly(EventTypeAttritionApplied, validateAttritionAppliedPayload),
		{Type: EventTypeBattleResolved, Owner: event.OwnerSystem, ValidatePayload: validateBattleResolvedPayload},
	}
}

func validSide(side Side) bool {
	return side == SidePlayer || side == SideOpponent
}

func sideError(field string, side Side) error {
	return fmt.Errorf("%s %q is not player or opponent", field, side)
}

func validateBattleStartPayload(payload json.RawMessage) error {
	var decoded BattleStartPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode battle.start payload: %w", err)
	}
	if len(decoded.DeckCardIDs) == 0 {
		return errors.New("deck_card_ids is required")
	}
	if len(decoded.OpponentDeckCardIDs) == 0 {
		return errors.New("opponent_deck_card_ids is required")
	}
	if decoded.PlayerFlagshipHull <= 0 || decoded.OpponentFlagshipHull <= 0 {
		return errors.New("flagship hull totals must be positive")
	}
	if decoded.RoundLimit < 0 {
		return errors.New("round_limit must not be negative")
	}
	return nil
}

func validateHandMulliganPayload(payload json.RawMessage) error {
	var decoded HandMulliganPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode hand.mulligan payload: %w", err)
	}
	if decoded.Combatant != "" && !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	return nil
}

func validateCardDeployPayload(payload json.RawMessage) error {
	var decoded CardDeployPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode card.deploy payload: %w", err)
	}
	if decoded.Combatant != "" && !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	if strings.TrimSpace(decoded.CardID) == "" {
		return errors.New("card_id is required")
	}
	if !validPosition(decoded.Position) {
		return fmt.Errorf("position %d is out of range", decoded.Position)
	}
	return nil
}

func validateShipAttackPayload(payload json.RawMessage) error {
	var decoded ShipAttackPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode ship.attack payload: %w", err)
	}
	if decoded.Combatant != "" && !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	if !validPosition(decoded.Position) {
		return fmt.Errorf("position %d is out of range", decoded.Position)
	}
	return nil
}

func validateAbilityActivatePayload(payload json.RawMessage) error {
	var decoded AbilityActivatePayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode ability.activate payload: %w", err)
	}
	if decoded.Combatant != "" && !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	if !validPosition(decoded.Position) {
		return fmt.Errorf("position %d is out of range", decoded.Position)
	}
	if strings.TrimSpace(decoded.AbilityID) == "" {
		return errors.New("ability_id is required")
	}
	if decoded.TargetPosition != 0 && !validPosition(decoded.TargetPosition) {
		return fmt.Errorf("target_position %d is out of range", decoded.TargetPosition)
	}
	return nil
}

func validateShipMovePayload(payload json.RawMessage) error {
	var decoded ShipMovePayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode ship.move payload: %w", err)
	}
	if decoded.Combatant != "" && !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	if !validPosition(decoded.FromPosition) || !validPosition(decoded.ToPosition) {
		return errors.New("from_position and to_position must be battlefield slots")
	}
	if decoded.FromPosition == decoded.ToPosition {
		return errors.New("from_position and to_position are the same")
	}
	return nil
}

// validateCombatantOnlyPayload covers card.draw, reserve.use, and
// turn.end, whose only field is the optional combatant.
func validateCombatantOnlyPayload(payload json.RawMessage) error {
	var decoded TurnEndPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if decoded.Combatant != "" && !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	return nil
}

func validateBattleStartedPayload(payload json.RawMessage) error {
	var decoded BattleStartedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode battle_started payload: %w", err)
	}
	if strings.TrimSpace(decoded.BattleID) == "" {
		return errors.New("battle_id is required")
	}
	if decoded.RoundLimit <= 0 {
		return errors.New("round_limit must be positive")
	}
	if !validSide(decoded.FirstPlayer) {
		return sideError("first_player", decoded.FirstPlayer)
	}
	if decoded.Player.FlagshipHull <= 0 || decoded.Opponent.FlagshipHull <= 0 {
		return errors.New("flagship hull totals must be positive")
	}
	if len(decoded.Player.OpeningHand) == 0 || len(decoded.Opponent.OpeningHand) == 0 {
		return errors.New("opening hands are required")
	}
	return nil
}

func validateHandMulliganedPayload(payload json.RawMessage) error {
	var decoded HandMulliganedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode hand_mulliganed payload: %w", err)
	}
	if !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	if len(decoded.ReturnedCardIDs) != len(decoded.DrawnCardIDs) {
		return errors.New("returned and drawn card counts must match")
	}
	return nil
}

func validateEnergySpentPayload(payload json.RawMessage) error {
	var decoded EnergySpentPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode energy_spent payload: %w", err)
	}
	if !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	if decoded.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	if decoded.NewTotal < 0 {
		return errors.New("new_total must not be negative")
	}
	switch decoded.Reason {
	case ReasonDeploy, ReasonAbility, ReasonMove, ReasonDraw:
	default:
		return fmt.Errorf("reason %q is invalid", decoded.Reason)
	}
	return nil
}

func validateCardDeployedPayload(payload json.RawMessage) error {
	var decoded CardDeployedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode card_deployed payload: %w", err)
	}
	if !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	if strings.TrimSpace(decoded.CardID) == "" {
		return errors.New("card_id is required")
	}
	if !validPosition(decoded.Position) {
		return fmt.Errorf("position %d is out of range", decoded.Position)
	}
	if decoded.Ship.CardID != decoded.CardID {
		return errors.New("ship snapshot must match card_id")
	}
	if decoded.Ship.Hull <= 0 {
		return errors.New("ship hull must be positive")
	}
	return nil
}

func validateShipAttackedPayload(payload json.RawMessage) error {
	var decoded ShipAttackedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode ship_attacked payload: %w", err)
	}
	if !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	if !validPosition(decoded.Position) {
		return fmt.Errorf("position %d is out of range", decoded.Position)
	}
	switch decoded.TargetKind {
	case AttackTargetShip, AttackTargetFlagship:
	default:
		return fmt.Errorf("target_kind %q is invalid", decoded.TargetKind)
	}
	return nil
}

func validateShipDamagedPayload(payload json.RawMessage) error {
	var decoded ShipDamagedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode ship_damaged payload: %w", err)
	}
	if !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	if decoded.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	if decoded.HullAfter < 0 || decoded.HullAfter >= decoded.HullBefore {
		return errors.New("hull_after must drop below hull_before and stay at or above zero")
	}
	return nil
}

func validateFlagshipDamagedPayload(payload json.RawMessage) error {
	var decoded FlagshipDamagedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode flagship_damaged payload: %w", err)
	}
	if !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	if decoded.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	if decoded.HullAfter < 0 || decoded.HullAfter >= decoded.HullBefore {
		return errors.New("hull_after must drop below hull_before and stay at or above zero")
	}
	return nil
}

func validateShipDestroyedPayload(payload json.RawMessage) error {
	var decoded ShipDestroyedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode ship_destroyed payload: %w", err)
	}
	if !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	if !validPosition(decoded.Position) {
		return fmt.Errorf("position %d is out of range", decoded.Position)
	}
	if strings.TrimSpace(decoded.CardID) == "" {
		return errors.New("card_id is required")
	}
	return nil
}

func validateShipHealedPayload(payload json.RawMessage) error {
	var decoded ShipHealedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode ship_healed payload: %w", err)
	}
	if !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	if decoded.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	if decoded.HullAfter <= decoded.HullBefore {
		return errors.New("hull_after must rise above hull_before")
	}
	return nil
}

func validateStatusAppliedPayload(payload json.RawMessage) error {
	var decoded StatusAppliedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode status_applied payload: %w", err)
	}
	if !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	switch decoded.Status {
	case catalog.StatusBurn, catalog.StatusShield, catalog.StatusStun:
	default:
		return fmt.Errorf("status %q is invalid", decoded.Status)
	}
	if decoded.Duration <= 0 {
		return errors.New("duration must be positive")
	}
	return nil
}

func validateStatusTickedPayload(payload json.RawMessage) error {
	var decoded StatusTickedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode status_ticked payload: %w", err)
	}
	if !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	if !validPosition(decoded.Position) {
		return fmt.Errorf("position %d is out of range", decoded.Position)
	}
	if decoded.HullAfter < 0 {
		return errors.New("hull_after must not be negative")
	}
	return nil
}

func validateAbilityActivatedPayload(payload json.RawMessage) error {
	var decoded AbilityActivatedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode ability_activated payload: %w", err)
	}
	if !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	if strings.TrimSpace(decoded.AbilityID) == "" {
		return errors.New("ability_id is required")
	}
	switch decoded.Effect {
	case catalog.EffectDamage, catalog.EffectHeal, catalog.EffectStatus:
	default:
		return fmt.Errorf("effect %q is invalid", decoded.Effect)
	}
	return nil
}

func validateShipMovedPayload(payload json.RawMessage) error {
	var decoded ShipMovedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode ship_moved payload: %w", err)
	}
	if !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	if !validPosition(decoded.FromPosition) || !validPosition(decoded.ToPosition) {
		return errors.New("from_position and to_position must be battlefield slots")
	}
	if decoded.FromPosition == decoded.ToPosition {
		return errors.New("from_position and to_position are the same")
	}
	return nil
}

func validateCardDrawnPayload(payload json.RawMessage) error {
	var decoded CardDrawnPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode card_drawn payload: %w", err)
	}
	if !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	if strings.TrimSpace(decoded.CardID) == "" {
		return errors.New("card_id is required")
	}
	switch decoded.Source {
	case DrawTurnStart, DrawPaid, DrawSalvage:
	default:
		return fmt.Errorf("source %q is invalid", decoded.Source)
	}
	return nil
}

func validateReserveUsedPayload(payload json.RawMessage) error {
	var decoded ReserveUsedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode reserve_used payload: %w", err)
	}
	if !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	if decoded.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	return nil
}

func validateHandTrimmedPayload(payload json.RawMessage) error {
	var decoded HandTrimmedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode hand_trimmed payload: %w", err)
	}
	if !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	if len(decoded.DiscardedCardIDs) == 0 {
		return errors.New("discarded_card_ids is required")
	}
	return nil
}

func validateShipsReadiedPayload(payload json.RawMessage) error {
	var decoded ShipsReadiedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode ships_readied payload: %w", err)
	}
	if !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	if len(decoded.Positions) == 0 {
		return errors.New("positions is required")
	}
	for _, position := range decoded.Positions {
		if !validPosition(position) {
			return fmt.Errorf("position %d is out of range", position)
		}
	}
	return nil
}

// validateTurnMarkerPayload covers turn_ended and turn_started, which
// share a shape.
func validateTurnMarkerPayload(payload json.RawMessage) error {
	var decoded TurnStartedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode turn marker payload: %w", err)
	}
	if !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	if decoded.TurnNumber < 1 {
		return errors.New("turn_number must be positive")
	}
	return nil
}

func validateEnergyRegeneratedPayload(payload json.RawMessage) error {
	var decoded EnergyRegeneratedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode energy_regenerated payload: %w", err)
	}
	if !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	if decoded.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	return nil
}

func validateAttritionAppliedPayload(payload json.RawMessage) error {
	var decoded AttritionAppliedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode attrition_applied payload: %w", err)
	}
	if !validSide(decoded.Combatant) {
		return sideError("combatant", decoded.Combatant)
	}
	if decoded.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	if decoded.HullAfter < 0 {
		return errors.New("hull_after must not be negative")
	}
	return nil
}

func validateBattleResolvedPayload(payload json.RawMessage) error {
	var decoded BattleResolvedPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode battle_resolved payload: %w", err)
	}
	switch decoded.Winner {
	case WinnerPlayer, WinnerOpponent, WinnerDraw:
	default:
		return fmt.Errorf("winner %q is invalid", decoded.Winner)
	}
	switch decoded.VictoryCondition {
	case VictoryFlagshipDestroyed, VictoryAttrition, VictoryTimeout:
	default:
		return fmt.Errorf("victory_condition %q is invalid", decoded.VictoryCondition)
	}
	if decoded.Turns < 1 {
		return errors.New("turns must be positive")
	}
	return nil
}
