package battle

import "github.com/mverberg/broadside/internal/domain/event"

// Event types owned by the tactical system. All are namespaced under
// sys.tactical so registries can verify system ownership.
const (
	// EventTypeBattleStarted creates the battle snapshot atomically.
	EventTypeBattleStarted event.Type = "sys.tactical.battle_started"
	// EventTypeHandMulliganed records one side's opening redraw (or keep).
	EventTypeHandMulliganed event.Type = "sys.tactical.hand_mulliganed"
	// EventTypeEnergySpent records an energy deduction with its new total.
	EventTypeEnergySpent event.Type = "sys.tactical.energy_spent"
	// EventTypeCardDeployed places a ship with its full base stats.
	EventTypeCardDeployed event.Type = "sys.tactical.card_deployed"
	// EventTypeShipAttacked records an attack declaration and resolved target.
	EventTypeShipAttacked event.Type = "sys.tactical.ship_attacked"
	// EventTypeShipDamaged records hull loss on a deployed ship.
	EventTypeShipDamaged event.Type = "sys.tactical.ship_damaged"
	// EventTypeFlagshipDamaged records hull loss on a flagship.
	EventTypeFlagshipDamaged event.Type = "sys.tactical.flagship_damaged"
	// EventTypeShipDestroyed removes a dead ship from its slot.
	EventTypeShipDestroyed event.Type = "sys.tactical.ship_destroyed"
	// EventTypeShipHealed records hull restored on a friendly ship.
	EventTypeShipHealed event.Type = "sys.tactical.ship_healed"
	// EventTypeStatusApplied attaches or refreshes a status effect.
	EventTypeStatusApplied event.Type = "sys.tactical.status_applied"
	// EventTypeStatusTicked records one ship's start-of-turn status pass.
	EventTypeStatusTicked event.Type = "sys.tactical.status_ticked"
	// EventTypeAbilityActivated records an ability use with its cooldown.
	EventTypeAbilityActivated event.Type = "sys.tactical.ability_activated"
	// EventTypeShipMoved repositions a ship between slots.
	EventTypeShipMoved event.Type = "sys.tactical.ship_moved"
	// EventTypeCardDrawn moves the deck top into a hand.
	EventTypeCardDrawn event.Type = "sys.tactical.card_drawn"
	// EventTypeReserveUsed spends the second player's one-shot reserve.
	EventTypeReserveUsed event.Type = "sys.tactical.reserve_used"
	// EventTypeHandTrimmed discards down to the hand limit at end of turn.
	EventTypeHandTrimmed event.Type = "sys.tactical.hand_trimmed"
	// EventTypeShipsReadied clears exhaustion at the owner's end phase.
	EventTypeShipsReadied event.Type = "sys.tactical.ships_readied"
	// EventTypeTurnEnded closes the acting side's turn.
	EventTypeTurnEnded event.Type = "sys.tactical.turn_ended"
	// EventTypeTurnStarted opens the next turn for the other side.
	EventTypeTurnStarted event.Type = "sys.tactical.turn_started"
	// EventTypeEnergyRegenerated records the start-of-turn energy gain.
	EventTypeEnergyRegenerated event.Type = "sys.tactical.energy_regenerated"
	// EventTypeAttritionApplied damages an exposed combatant's flagship.
	EventTypeAttritionApplied event.Type = "sys.tactical.attrition_applied"
	// EventTypeBattleResolved terminates the battle with its outcome.
	EventTypeBattleResolved event.Type = "sys.tactical.battle_resolved"
)
