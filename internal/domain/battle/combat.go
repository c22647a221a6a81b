package battle

import (
	"fmt"
	"strings"
	"time"

	"github.com/mverberg/broadside/internal/catalog"
	"github.com/mverberg/broadside/internal/domain/command"
)

// decideShipAttack declares an attack from a slot. The lane rule
// resolves the target: the opposing slot's ship, or the enemy flagship
// when that slot is empty. Attacking exhausts the ship.
func (d Decider) decideShipAttack(s *State, cmd command.Command, now func() time.Time) command.Decision {
	var payload ShipAttackPayload
	if rejection := decodePayload(cmd, &payload); rejection != nil {
		return command.Reject(*rejection)
	}
	side, rejection := sideForCommand(cmd, payload.Combatant)
	if rejection != nil {
		return command.Reject(*rejection)
	}
	if rejection := requireTurn(s, side); rejection != nil {
		return command.Reject(*rejection)
	}
	if !validPosition(payload.Position) {
		return command.Reject(command.Rejection{
			Code:    rejectionCodePositionInvalid,
			Message: fmt.Sprintf("position %d is not between 1 and %d", payload.Position, BattlefieldSlots),
		})
	}
	attacker := s.Combatant(side).ShipAt(payload.Position)
	if attacker == nil {
		return command.Reject(command.Rejection{
			Code:    rejectionCodePositionEmpty,
			Message: fmt.Sprintf("no ship at position %d", payload.Position),
		})
	}
	if attacker.Exhausted {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeShipExhausted,
			Message: fmt.Sprintf("%s is exhausted until the end phase", attacker.CardID),
		})
	}
	if attacker.Stunned() {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeShipStunned,
			Message: fmt.Sprintf("%s is stunned", attacker.CardID),
		})
	}

	enemySide := Opposing(side)
	target := s.Enemy(side).ShipAt(payload.Position)
	b := newBatch(cmd, now().UTC(), s)
	if target != nil {
		b.emit(EventTypeShipAttacked, "ship", attacker.CardID, ShipAttackedPayload{
			Combatant:      side,
			Position:       payload.Position,
			CardID:         attacker.CardID,
			Attack:         attacker.Attack,
			TargetKind:     AttackTargetShip,
			TargetPosition: payload.Position,
			TargetCardID:   target.CardID,
		})
		damage := AttackDamage(attacker.Attack, target.EffectiveDefense())
		damageShip(b, enemySide, payload.Position, damage, DamageAttack, side, payload.Position, attacker.CardID)
	} else {
		b.emit(EventTypeShipAttacked, "ship", attacker.CardID, ShipAttackedPayload{
			Combatant:  side,
			Position:   payload.Position,
			CardID:     attacker.CardID,
			Attack:     attacker.Attack,
			TargetKind: AttackTargetFlagship,
		})
		damageFlagship(b, enemySide, AttackDamage(attacker.Attack, 0), DamageAttack, side, payload.Position, attacker.CardID)
	}
	return b.decision()
}

// decideAbilityActivate resolves a deployed ship's ability. Abilities
// are not blocked by exhaustion and do not exhaust; they are gated by
// stun, cooldown, and energy. Ability damage is direct and ignores
// defense.
func (d Decider) decideAbilityActivate(s *State, cmd command.Command, now func() time.Time) command.Decision {
	var payload AbilityActivatePayload
	if rejection := decodePayload(cmd, &payload); rejection != nil {
		return command.Reject(*rejection)
	}
	side, rejection := sideForCommand(cmd, payload.Combatant)
	if rejection != nil {
		return command.Reject(*rejection)
	}
	if rejection := requireTurn(s, side); rejection != nil {
		return command.Reject(*rejection)
	}
	if !validPosition(payload.Position) {
		return command.Reject(command.Rejection{
			Code:    rejectionCodePositionInvalid,
			Message: fmt.Sprintf("position %d is not between 1 and %d", payload.Position, BattlefieldSlots),
		})
	}
	ship := s.Combatant(side).ShipAt(payload.Position)
	if ship == nil {
		return command.Reject(command.Rejection{
			Code:    rejectionCodePositionEmpty,
			Message: fmt.Sprintf("no ship at position %d", payload.Position),
		})
	}
	abilityID := strings.TrimSpace(payload.AbilityID)
	card, _ := catalog.Get(ship.CardID)
	ability, ok := card.Ability(abilityID)
	if !ok {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeAbilityUnknown,
			Message: fmt.Sprintf("ship %s has no ability %s", ship.CardID, abilityID),
		})
	}
	if ship.Stunned() {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeShipStunned,
			Message: fmt.Sprintf("%s is stunned", ship.CardID),
		})
	}
	if remaining := ship.CooldownRemaining(ability.ID); remaining > 0 {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeAbilityOnCooldown,
			Message: fmt.Sprintf("ability %s is on cooldown for %d more of your turns", ability.ID, remaining),
		})
	}
	c := s.Combatant(side)
	if c.Energy < ability.Cost {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeEnergyInsufficient,
			Message: fmt.Sprintf("ability %s costs %d energy, %d available", ability.ID, ability.Cost, c.Energy),
		})
	}

	target, rejection := resolveAbilityTarget(s, side, payload.Position, payload.TargetPosition, ability)
	if rejection != nil {
		return command.Reject(*rejection)
	}
	if ability.Effect == catalog.EffectHeal && target.ship != nil && target.ship.Hull >= target.ship.MaxHull {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeHealNoEffect,
			Message: fmt.Sprintf("%s is already at full hull", target.ship.CardID),
		})
	}

	b := newBatch(cmd, now().UTC(), s)
	b.emit(EventTypeEnergySpent, "ship", ship.CardID, EnergySpentPayload{
		Combatant: side,
		Amount:    ability.Cost,
		NewTotal:  c.Energy - ability.Cost,
		Reason:    ReasonAbility,
	})
	activated := AbilityActivatedPayload{
		Combatant:       side,
		Position:        payload.Position,
		CardID:          ship.CardID,
		AbilityID:       ability.ID,
		AbilityName:     ability.Name,
		Cost:            ability.Cost,
		Cooldown:        ability.Cooldown,
		Effect:          ability.Effect,
		Amount:          ability.Amount,
		Status:          ability.Status,
		Duration:        ability.Duration,
		TargetKind:      ability.Target,
		TargetCombatant: target.side,
		TargetPosition:  target.position,
		TargetFlagship:  target.flagship,
	}
	if target.ship != nil {
		activated.TargetCardID = target.ship.CardID
	}
	b.emit(EventTypeAbilityActivated, "ship", ship.CardID, activated)

	switch ability.Effect {
	case catalog.EffectDamage:
		if target.flagship {
			damageFlagship(b, target.side, ability.Amount, DamageAbility, side, payload.Position, ship.CardID)
		} else {
			damageShip(b, target.side, target.position, ability.Amount, DamageAbility, side, payload.Position, ship.CardID)
		}
	case catalog.EffectHeal:
		healShip(b, target.side, target.position, ability.Amount, ship.CardID)
	case catalog.EffectStatus:
		b.emit(EventTypeStatusApplied, "ship", target.ship.CardID, StatusAppliedPayload{
			Combatant:       target.side,
			Position:        target.position,
			CardID:          target.ship.CardID,
			Status:          ability.Status,
			Magnitude:       ability.Amount,
			Duration:        ability.Duration,
			SourceCombatant: side,
			SourcePosition:  payload.Position,
			SourceCardID:    ship.CardID,
		})
	}
	return b.decision()
}

// abilityTarget is a resolved ability destination: either a deployed
// ship or an enemy flagship.
type abilityTarget struct {
	side     Side
	position int
	ship     *Ship
	flagship bool
}

// resolveAbilityTarget applies the targeting rules: enemy-ship
// abilities honor the lane rule unless they bypass it, flagship
// abilities need a clear lane unless they bypass it, friendly targets
// default to the caster's own position.
func resolveAbilityTarget(s *State, side Side, position, targetPosition int, ability catalog.Ability) (abilityTarget, *command.Rejection) {
	enemySide := Opposing(side)
	switch ability.Target {
	case catalog.TargetEnemyShip:
		resolved := targetPosition
		if resolved == 0 {
			resolved = position
		}
		if !validPosition(resolved) {
			return abilityTarget{}, &command.Rejection{
				Code:    rejectionCodeTargetInvalid,
				Message: fmt.Sprintf("target position %d is not between 1 and %d", resolved, BattlefieldSlots),
			}
		}
		if !ability.BypassesLaneRule && resolved != position {
			return abilityTarget{}, &command.Rejection{
				Code:    rejectionCodeTargetInvalid,
				Message: fmt.Sprintf("the lane rule restricts %s to the opposing position %d", ability.ID, position),
			}
		}
		target := s.Combatant(enemySide).ShipAt(resolved)
		if target == nil {
			return abilityTarget{}, &command.Rejection{
				Code:    rejectionCodeTargetInvalid,
				Message: fmt.Sprintf("no enemy ship at position %d", resolved),
			}
		}
		return abilityTarget{side: enemySide, position: resolved, ship: target}, nil
	case catalog.TargetEnemyFlagship:
		if !ability.BypassesLaneRule && s.Combatant(enemySide).ShipAt(position) != nil {
			return abilityTarget{}, &command.Rejection{
				Code:    rejectionCodeTargetInvalid,
				Message: "the lane must be clear to reach the enemy flagship",
			}
		}
		return abilityTarget{side: enemySide, flagship: true}, nil
	case catalog.TargetFriendlyShip:
		resolved := targetPosition
		if resolved == 0 {
			resolved = position
		}
		if !validPosition(resolved) {
			return abilityTarget{}, &command.Rejection{
				Code:    rejectionCodeTargetInvalid,
				Message: fmt.Sprintf("target position %d is not between 1 and %d", resolved, BattlefieldSlots),
			}
		}
		target := s.Combatant(side).ShipAt(resolved)
		if target == nil {
			return abilityTarget{}, &command.Rejection{
				Code:    rejectionCodeTargetInvalid,
				Message: fmt.Sprintf("no friendly ship at position %d", resolved),
			}
		}
		return abilityTarget{side: side, position: resolved, ship: target}, nil
	case catalog.TargetSelf:
		return abilityTarget{side: side, position: position, ship: s.Combatant(side).ShipAt(position)}, nil
	}
	return abilityTarget{}, &command.Rejection{
		Code:    rejectionCodeTargetInvalid,
		Message: fmt.Sprintf("ability %s has unsupported target type %s", ability.ID, ability.Target),
	}
}

// damageShip applies hull loss to a deployed ship in the working copy,
// emitting ship_damaged and running the destruction cascade when the
// hull reaches zero. Cascade entries whose target already left the
// field are dropped silently.
func damageShip(b *batch, side Side, position, amount int, source DamageSource, sourceSide Side, sourcePosition int, sourceCardID string) {
	target := b.state.Combatant(side).ShipAt(position)
	if target == nil || amount <= 0 {
		return
	}
	before := target.Hull
	after := max(0, before-amount)
	b.emit(EventTypeShipDamaged, "ship", target.CardID, ShipDamagedPayload{
		Combatant:       side,
		Position:        position,
		CardID:          target.CardID,
		Amount:          amount,
		HullBefore:      before,
		HullAfter:       after,
		Source:          source,
		SourceCombatant: sourceSide,
		SourcePosition:  sourcePosition,
		SourceCardID:    sourceCardID,
	})
	if after == 0 {
		destroyShip(b, side, position, sourceSide, sourcePosition, sourceCardID)
	}
}

// damageFlagship applies hull loss to a flagship and resolves the
// battle when it reaches zero.
func damageFlagship(b *batch, side Side, amount int, source DamageSource, sourceSide Side, sourcePosition int, sourceCardID string) {
	if amount <= 0 {
		return
	}
	c := b.state.Combatant(side)
	before := c.FlagshipHull
	after := max(0, before-amount)
	b.emit(EventTypeFlagshipDamaged, "battle", b.battleID, FlagshipDamagedPayload{
		Combatant:       side,
		Amount:          amount,
		HullBefore:      before,
		HullAfter:       after,
		Source:          source,
		SourceCombatant: sourceSide,
		SourcePosition:  sourcePosition,
		SourceCardID:    sourceCardID,
	})
	if after == 0 {
		resolveBattle(b, winnerForSide(Opposing(side)), VictoryFlagshipDestroyed)
	}
}

// destroyShip removes a dead ship and resolves its destroyed trigger:
// detonate retaliates against the destroyer's slot, salvage draws a
// card for the owner. Unattributed deaths (burn ticks) never trigger
// detonate retaliation.
func destroyShip(b *batch, side Side, position int, destroyerSide Side, destroyerPosition int, destroyerCardID string) {
	ship := b.state.Combatant(side).ShipAt(position)
	if ship == nil {
		return
	}
	cardID := ship.CardID
	trigger := ship.DestroyedTrigger
	detonation := ship.DestroyedAmount
	b.emit(EventTypeShipDestroyed, "ship", cardID, ShipDestroyedPayload{
		Combatant:          side,
		Position:           position,
		CardID:             cardID,
		DestroyedTrigger:   trigger,
		DestroyerCombatant: destroyerSide,
		DestroyerPosition:  destroyerPosition,
		DestroyerCardID:    destroyerCardID,
	})
	switch trigger {
	case catalog.TriggerDetonate:
		if destroyerSide != "" && destroyerPosition > 0 && detonation > 0 {
			damageShip(b, destroyerSide, destroyerPosition, detonation, DamageDetonate, side, position, cardID)
		}
	case catalog.TriggerSalvage:
		owner := b.state.Combatant(side)
		if len(owner.Deck) > 0 {
			b.emit(EventTypeCardDrawn, "battle", b.battleID, CardDrawnPayload{
				Combatant: side,
				CardID:    owner.Deck[0],
				Source:    DrawSalvage,
			})
		}
	}
}

// healShip restores hull up to the ship's maximum; the event records
// the effective amount after clamping.
func healShip(b *batch, side Side, position, amount int, sourceCardID string) {
	target := b.state.Combatant(side).ShipAt(position)
	if target == nil || amount <= 0 {
		return
	}
	before := target.Hull
	after := min(target.MaxHull, before+amount)
	if after == before {
		return
	}
	b.emit(EventTypeShipHealed, "ship", target.CardID, ShipHealedPayload{
		Combatant:    side,
		Position:     position,
		CardID:       target.CardID,
		Amount:       after - before,
		HullBefore:   before,
		HullAfter:    after,
		SourceCardID: sourceCardID,
	})
}
