package sim

import (
	"github.com/mverberg/broadside/internal/catalog"
	"github.com/mverberg/broadside/internal/domain/battle"
	"github.com/mverberg/broadside/internal/domain/command"
)

// Action is one battle command proposed by a policy. Payload is the
// matching battle payload struct; the runner marshals it.
type Action struct {
	Type    command.Type
	Payload any
}

// Policy chooses a combatant's moves from the folded battle state. A
// policy should only propose commands the decider will accept; the
// runner forfeits the rest of the turn after a rejection rather than
// retrying.
type Policy interface {
	// MulliganCards picks the opening-hand cards to return. Empty
	// keeps the hand.
	MulliganCards(s *battle.State, side battle.Side) []string
	// NextAction proposes the active side's next command. Any legal
	// state must eventually yield a turn end.
	NextAction(s *battle.State, side battle.Side) Action
}

// ScriptedPolicy is the deterministic baseline player: spend the
// reserve as soon as it pays out, fire ready abilities left to right,
// deploy the cheapest affordable card into the lowest open lane,
// attack with every ready ship left to right, buy a draw when the hand
// runs dry, then end the turn. Mulligans keep the hand. It plays
// greedily, not well; what matters is that two runs with the same
// seeds replay the same battle.
type ScriptedPolicy struct{}

// MulliganCards keeps the opening hand.
func (ScriptedPolicy) MulliganCards(*battle.State, battle.Side) []string { return nil }

// NextAction walks the fixed priority order and falls through to a
// turn end when nothing else is worth doing. Every branch except the
// attack spends energy or a one-shot resource and the attack exhausts
// the attacker, so the walk cannot propose the same action twice in
// one turn.
func (ScriptedPolicy) NextAction(s *battle.State, side battle.Side) Action {
	if action, ok := reserveAction(s, side); ok {
		return action
	}
	if action, ok := abilityAction(s, side); ok {
		return action
	}
	if action, ok := deployAction(s, side); ok {
		return action
	}
	if action, ok := attackAction(s, side); ok {
		return action
	}
	if action, ok := drawAction(s, side); ok {
		return action
	}
	return Action{Type: commandTypeTurnEnd, Payload: battle.TurnEndPayload{Combatant: side}}
}

func reserveAction(s *battle.State, side battle.Side) (Action, bool) {
	c := s.Combatant(side)
	r := s.Reserve
	if r.Side != side || r.Used || s.TurnNumber > r.ExpiresTurn || c.Energy >= c.EnergyMax {
		return Action{}, false
	}
	return Action{
		Type:    commandTypeReserveUse,
		Payload: battle.ReserveUsePayload{Combatant: side},
	}, true
}

func abilityAction(s *battle.State, side battle.Side) (Action, bool) {
	c := s.Combatant(side)
	for position := 1; position <= battle.BattlefieldSlots; position++ {
		ship := c.ShipAt(position)
		if ship == nil || ship.Stunned() {
			continue
		}
		card, ok := catalog.Get(ship.CardID)
		if !ok {
			continue
		}
		for _, ability := range card.Abilities {
			if ship.CooldownRemaining(ability.ID) > 0 || c.Energy < ability.Cost {
				continue
			}
			target, ok := abilityTargetFor(s, side, position, ability)
			if !ok {
				continue
			}
			return Action{
				Type: commandTypeAbilityActivate,
				Payload: battle.AbilityActivatePayload{
					Combatant:      side,
					Position:       position,
					AbilityID:      ability.ID,
					TargetPosition: target,
				},
			}, true
		}
	}
	return Action{}, false
}

// abilityTargetFor picks a target position the decider will accept, or
// reports that the ability has no worthwhile target right now. The
// returned position is zero for flagship and self targets, which take
// none.
func abilityTargetFor(s *battle.State, side battle.Side, position int, ability catalog.Ability) (int, bool) {
	enemy := s.Enemy(side)
	switch ability.Target {
	case catalog.TargetEnemyShip:
		if !ability.BypassesLaneRule {
			if enemy.ShipAt(position) == nil {
				return 0, false
			}
			return position, true
		}
		for target := 1; target <= battle.BattlefieldSlots; target++ {
			if enemy.ShipAt(target) != nil {
				return target, true
			}
		}
		return 0, false
	case catalog.TargetEnemyFlagship:
		if !ability.BypassesLaneRule && enemy.ShipAt(position) != nil {
			return 0, false
		}
		return 0, true
	case catalog.TargetFriendlyShip:
		if ability.Effect == catalog.EffectHeal {
			return mostDamagedFriendly(s.Combatant(side))
		}
		for target := 1; target <= battle.BattlefieldSlots; target++ {
			if s.Combatant(side).ShipAt(target) != nil {
				return target, true
			}
		}
		return 0, false
	case catalog.TargetSelf:
		if ability.Effect == catalog.EffectHeal {
			ship := s.Combatant(side).ShipAt(position)
			if ship == nil || ship.Hull >= ship.MaxHull {
				return 0, false
			}
		}
		return 0, true
	}
	return 0, false
}

// mostDamagedFriendly finds the friendly ship missing the most hull.
// Heals on undamaged ships are rejected, so none is a valid answer.
func mostDamagedFriendly(c *battle.Combatant) (int, bool) {
	best, bestMissing := 0, 0
	for position := 1; position <= battle.BattlefieldSlots; position++ {
		ship := c.ShipAt(position)
		if ship == nil {
			continue
		}
		if missing := ship.MaxHull - ship.Hull; missing > bestMissing {
			best, bestMissing = position, missing
		}
	}
	return best, best != 0
}

func deployAction(s *battle.State, side battle.Side) (Action, bool) {
	c := s.Combatant(side)
	slot := 0
	for position := 1; position <= battle.BattlefieldSlots; position++ {
		if c.ShipAt(position) == nil {
			slot = position
			break
		}
	}
	if slot == 0 {
		return Action{}, false
	}
	pick, pickCost := "", 0
	for _, cardID := range c.Hand {
		card, ok := catalog.Get(cardID)
		if !ok || card.Cost > c.Energy {
			continue
		}
		if pick == "" || card.Cost < pickCost {
			pick, pickCost = cardID, card.Cost
		}
	}
	if pick == "" {
		return Action{}, false
	}
	return Action{
		Type: commandTypeCardDeploy,
		Payload: battle.CardDeployPayload{
			Combatant: side,
			CardID:    pick,
			Position:  slot,
		},
	}, true
}

func attackAction(s *battle.State, side battle.Side) (Action, bool) {
	c := s.Combatant(side)
	for position := 1; position <= battle.BattlefieldSlots; position++ {
		ship := c.ShipAt(position)
		if ship == nil || ship.Exhausted || ship.Stunned() {
			continue
		}
		return Action{
			Type:    commandTypeShipAttack,
			Payload: battle.ShipAttackPayload{Combatant: side, Position: position},
		}, true
	}
	return Action{}, false
}

func drawAction(s *battle.State, side battle.Side) (Action, bool) {
	c := s.Combatant(side)
	if len(c.Hand) > 0 || len(c.Deck) == 0 || c.Energy < battle.PaidDrawCost {
		return Action{}, false
	}
	return Action{
		Type:    commandTypeCardDraw,
		Payload: battle.CardDrawPayload{Combatant: side},
	}, true
}
