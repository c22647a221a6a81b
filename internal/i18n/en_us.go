package i18n

import "golang.org/x/text/language"

// Rejection codes must match the constants declared beside the deciders
// that emit them. They are duplicated as strings here to avoid an import
// cycle with the domain packages.
const (
	// Shared decider codes.
	CodePayloadDecodeFailed    Code = "PAYLOAD_DECODE_FAILED"
	CodePayloadEncodeFailed    Code = "PAYLOAD_ENCODE_FAILED"
	CodeCommandTypeUnsupported Code = "COMMAND_TYPE_UNSUPPORTED"
	CodeStateInvalid           Code = "STATE_INVALID"
	CodeSystemRoutingFailed    Code = "SYSTEM_ROUTING_FAILED"
	CodeInternalError          Code = "INTERNAL_ERROR"

	// Profile and collection codes.
	CodeProfileAlreadyExists Code = "PROFILE_ALREADY_EXISTS"
	CodeProfileNotCreated    Code = "PROFILE_NOT_CREATED"
	CodeProfileNameEmpty     Code = "PROFILE_NAME_EMPTY"
	CodeCardsGrantEmpty      Code = "CARDS_GRANT_EMPTY"
	CodeCardsAlreadyOwned    Code = "CARDS_ALREADY_OWNED"
	CodeCardUnknown          Code = "CARD_UNKNOWN"
	CodeCardNotOwned         Code = "CARD_NOT_OWNED"

	// Quest codes.
	CodeQuestIDRequired Code = "QUEST_ID_REQUIRED"
	CodeQuestMismatch   Code = "QUEST_MISMATCH"
	CodePhaseInvalid    Code = "PHASE_INVALID"

	// Battle lifecycle codes.
	CodeBattleActive        Code = "BATTLE_ACTIVE"
	CodeBattleNotActive     Code = "BATTLE_NOT_ACTIVE"
	CodeBattleIDUnavailable Code = "BATTLE_ID_UNAVAILABLE"
	CodeDeckSizeOutOfRange  Code = "DECK_SIZE_OUT_OF_RANGE"
	CodeDeckDuplicateCard   Code = "DECK_DUPLICATE_CARD"
	CodeFlagshipHullInvalid Code = "FLAGSHIP_HULL_INVALID"
	CodeRoundLimitInvalid   Code = "ROUND_LIMIT_INVALID"

	// Turn and combatant codes.
	CodeNotYourTurn          Code = "NOT_YOUR_TURN"
	CodeCombatantInvalid     Code = "COMBATANT_INVALID"
	CodeCombatantMismatch    Code = "COMBATANT_MISMATCH"
	CodeMulliganAlreadyTaken Code = "MULLIGAN_ALREADY_TAKEN"

	// Card play codes.
	CodeCardNotInHand      Code = "CARD_NOT_IN_HAND"
	CodePositionInvalid    Code = "POSITION_INVALID"
	CodePositionOccupied   Code = "POSITION_OCCUPIED"
	CodePositionEmpty      Code = "POSITION_EMPTY"
	CodeEnergyInsufficient Code = "ENERGY_INSUFFICIENT"
	CodeDeckEmpty          Code = "DECK_EMPTY"
	CodeHandFull           Code = "HAND_FULL"

	// Combat codes.
	CodeShipExhausted     Code = "SHIP_EXHAUSTED"
	CodeShipStunned       Code = "SHIP_STUNNED"
	CodeAbilityUnknown    Code = "ABILITY_UNKNOWN"
	CodeAbilityOnCooldown Code = "ABILITY_ON_COOLDOWN"
	CodeTargetInvalid     Code = "TARGET_INVALID"
	CodeHealNoEffect      Code = "HEAL_NO_EFFECT"

	// Reserve codes.
	CodeReserveUnavailable Code = "RESERVE_UNAVAILABLE"
	CodeReserveNoEffect    Code = "RESERVE_NO_EFFECT"
)

var enUSCatalog = &Catalog{
	locale: BaseLocale,
	tag:    language.AmericanEnglish,
	messages: map[Code]string{
		// Shared decider codes
		CodePayloadDecodeFailed:    "The command payload could not be read",
		CodePayloadEncodeFailed:    "The command outcome could not be recorded",
		CodeCommandTypeUnsupported: "This command is not supported",
		CodeStateInvalid:           "The game state could not be loaded",
		CodeSystemRoutingFailed:    "The battle system for this command is not available",
		CodeInternalError:          "Something went wrong while resolving the command",

		// Profile and collection
		CodeProfileAlreadyExists: "A commander profile already exists",
		CodeProfileNotCreated:    "Create a commander profile first",
		CodeProfileNameEmpty:     "Commander name cannot be empty",
		CodeCardsGrantEmpty:      "At least one card must be granted",
		CodeCardsAlreadyOwned:    "All of those cards are already in the collection",
		CodeCardUnknown:          "That card does not exist",
		CodeCardNotOwned:         "That card is not in your collection",

		// Quest
		CodeQuestIDRequired: "A quest must be selected",
		CodeQuestMismatch:   "That battle does not belong to the active quest",
		CodePhaseInvalid:    "That action is not allowed in the current phase",

		// Battle lifecycle
		CodeBattleActive:        "A battle is already in progress",
		CodeBattleNotActive:     "No battle is in progress",
		CodeBattleIDUnavailable: "A battle identifier could not be assigned",
		CodeDeckSizeOutOfRange:  "Deck must have between 20 and 40 cards",
		CodeDeckDuplicateCard:   "Deck cannot contain the same card twice",
		CodeFlagshipHullInvalid: "Flagship hull must be at least 1",
		CodeRoundLimitInvalid:   "Round limit must be at least 1",

		// Turn and combatant
		CodeNotYourTurn:          "It is not your turn",
		CodeCombatantInvalid:     "Combatant must be player or opponent",
		CodeCombatantMismatch:    "That command cannot act for the other side",
		CodeMulliganAlreadyTaken: "Each side may mulligan only once",

		// Card play
		CodeCardNotInHand:      "That card is not in your hand",
		CodePositionInvalid:    "Positions run from 1 to 5",
		CodePositionOccupied:   "That position is already occupied",
		CodePositionEmpty:      "There is no ship at that position",
		CodeEnergyInsufficient: "Not enough energy for that action",
		CodeDeckEmpty:          "The deck is empty",
		CodeHandFull:           "Your hand is full",

		// Combat
		CodeShipExhausted:     "That ship has already acted this turn",
		CodeShipStunned:       "That ship is stunned",
		CodeAbilityUnknown:    "That ship has no such ability",
		CodeAbilityOnCooldown: "That ability is still on cooldown",
		CodeTargetInvalid:     "That target is not valid for this action",
		CodeHealNoEffect:      "That ship is already at full hull",

		// Reserve
		CodeReserveUnavailable: "The emergency reserve is not available",
		CodeReserveNoEffect:    "The emergency reserve would have no effect",
	},
}
