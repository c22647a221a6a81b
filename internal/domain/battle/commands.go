package battle

import "github.com/mverberg/broadside/internal/domain/command"

const (
	commandTypeBattleStart     command.Type = "sys.tactical.battle.start"
	commandTypeHandMulligan    command.Type = "sys.tactical.hand.mulligan"
	commandTypeCardDeploy      command.Type = "sys.tactical.card.deploy"
	commandTypeShipAttack      command.Type = "sys.tactical.ship.attack"
	commandTypeAbilityActivate command.Type = "sys.tactical.ability.activate"
	commandTypeShipMove        command.Type = "sys.tactical.ship.move"
	commandTypeCardDraw        command.Type = "sys.tactical.card.draw"
	commandTypeReserveUse      command.Type = "sys.tactical.reserve.use"
	commandTypeTurnEnd         command.Type = "sys.tactical.turn.end"

	rejectionCodePhaseInvalid         = "PHASE_INVALID"
	rejectionCodeBattleNotActive      = "BATTLE_NOT_ACTIVE"
	rejectionCodeBattleIDUnavailable  = "BATTLE_ID_UNAVAILABLE"
	rejectionCodeQuestMismatch        = "QUEST_MISMATCH"
	rejectionCodeDeckSizeOutOfRange   = "DECK_SIZE_OUT_OF_RANGE"
	rejectionCodeDeckDuplicateCard    = "DECK_DUPLICATE_CARD"
	rejectionCodeCardUnknown          = "CARD_UNKNOWN"
	rejectionCodeCardNotOwned         = "CARD_NOT_OWNED"
	rejectionCodeFlagshipHullInvalid  = "FLAGSHIP_HULL_INVALID"
	rejectionCodeRoundLimitInvalid    = "ROUND_LIMIT_INVALID"
	rejectionCodeNotYourTurn          = "NOT_YOUR_TURN"
	rejectionCodeCombatantInvalid     = "COMBATANT_INVALID"
	rejectionCodeCombatantMismatch    = "COMBATANT_MISMATCH"
	rejectionCodeMulliganAlreadyTaken = "MULLIGAN_ALREADY_TAKEN"
	rejectionCodeCardNotInHand        = "CARD_NOT_IN_HAND"
	rejectionCodePositionInvalid      = "POSITION_INVALID"
	rejectionCodePositionOccupied     = "POSITION_OCCUPIED"
	rejectionCodePositionEmpty        = "POSITION_EMPTY"
	rejectionCodeEnergyInsufficient   = "ENERGY_INSUFFICIENT"
	rejectionCodeShipExhausted        = "SHIP_EXHAUSTED"
	rejectionCodeShipStunned          = "SHIP_STUNNED"
	rejectionCodeAbilityUnknown       = "ABILITY_UNKNOWN"
	rejectionCodeAbilityOnCooldown    = "ABILITY_ON_COOLDOWN"
	rejectionCodeTargetInvalid        = "TARGET_INVALID"
	rejectionCodeHealNoEffect         = "HEAL_NO_EFFECT"
	rejectionCodeDeckEmpty            = "DECK_EMPTY"
	rejectionCodeHandFull             = "HAND_FULL"
	rejectionCodeReserveUnavailable   = "RESERVE_UNAVAILABLE"
	rejectionCodeReserveNoEffect      = "RESERVE_NO_EFFECT"
	rejectionCodeBattleActive         = "BATTLE_ACTIVE"
	rejectionCodeInternalError        = "INTERNAL_ERROR"
)

// BattleStartPayload opens a battle from the preparing phase.
type BattleStartPayload struct {
	QuestID              string   `json:"quest_id,omitempty"`
	DeckCardIDs          []string `json:"deck_card_ids"`
	OpponentDeckCardIDs  []string `json:"opponent_deck_card_ids"`
	PlayerFlagshipHull   int      `json:"player_flagship_hull"`
	OpponentFlagshipHull int      `json:"opponent_flagship_hull"`
	RoundLimit           int      `json:"round_limit,omitempty"`
	Seed                 int64    `json:"seed,omitempty"`
}

// HandMulliganPayload redraws (or keeps, with an empty list) the
// opening hand once per combatant.
type HandMulliganPayload struct {
	Combatant Side     `json:"combatant,omitempty"`
	CardIDs   []string `json:"card_ids,omitempty"`
	Seed      int64    `json:"seed,omitempty"`
}

// CardDeployPayload plays a ship card from hand onto a slot.
type CardDeployPayload struct {
	Combatant Side   `json:"combatant,omitempty"`
	CardID    string `json:"card_id"`
	Position  int    `json:"position"`
}

// ShipAttackPayload declares an attack; the lane rule resolves the
// target (opposing ship, or the flagship when the lane is empty).
type ShipAttackPayload struct {
	Combatant Side `json:"combatant,omitempty"`
	Position  int  `json:"position"`
}

// AbilityActivatePayload activates a deployed ship's ability.
// TargetPosition is required when the ability's target type needs a
// slot choice (bypassing abilities, friendly targets other than the
// lane default).
type AbilityActivatePayload struct {
	Combatant      Side   `json:"combatant,omitempty"`
	Position       int    `json:"position"`
	AbilityID      string `json:"ability_id"`
	TargetPosition int    `json:"target_position,omitempty"`
}

// ShipMovePayload repositions a ship to an empty slot for MoveCost.
type ShipMovePayload struct {
	Combatant    Side `json:"combatant,omitempty"`
	FromPosition int  `json:"from_position"`
	ToPosition   int  `json:"to_position"`
}

// CardDrawPayload buys an extra draw for PaidDrawCost.
type CardDrawPayload struct {
	Combatant Side `json:"combatant,omitempty"`
}

// ReserveUsePayload spends the second player's one-shot reserve.
type ReserveUsePayload struct {
	Combatant Side `json:"combatant,omitempty"`
}

// TurnEndPayload ends the acting side's turn and opens the next one.
type TurnEndPayload struct {
	Combatant Side `json:"combatant,omitempty"`
}
