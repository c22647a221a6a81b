package battle

import (
	"fmt"
	"log"

	"github.com/mverberg/broadside/internal/catalog"
	"github.com/mverberg/broadside/internal/domain/event"
	"github.com/mverberg/broadside/internal/domain/module"
)

// foldWarn notes a stored event that would break a battle invariant.
// Such events are unreachable off a healthy journal; the fold no-ops
// instead of erroring so one bad row cannot wedge replay.
func foldWarn(format string, args ...any) {
	log.Printf("battle fold: "+format, args...)
}

// battleFolds is the shared dispatch table. Replay and the decider's
// batch builder fold through the same handlers, so in-batch validation
// observes exactly the state replay will reconstruct.
var battleFolds = newFoldRouter()

func assertState(state any) (*State, error) {
	switch typed := state.(type) {
	case nil:
		return &State{}, nil
	case *State:
		if typed == nil {
			return &State{}, nil
		}
		return typed, nil
	case State:
		return &typed, nil
	}
	return nil, fmt.Errorf("battle state has unexpected type %T", state)
}

func newFoldRouter() *module.FoldRouter[*State] {
	router := module.NewFoldRouter[*State](assertState)
	module.HandleFold(router, EventTypeBattleStarted, foldBattleStarted)
	module.HandleFold(router, EventTypeHandMulliganed, foldHandMulliganed)
	module.HandleFold(router, EventTypeEnergySpent, foldEnergySpent)
	module.HandleFold(router, EventTypeCardDeployed, foldCardDeployed)
	module.HandleFold(router, EventTypeShipAttacked, foldShipAttacked)
	module.HandleFold(router, EventTypeShipDamaged, foldShipDamaged)
	module.HandleFold(router, EventTypeFlagshipDamaged, foldFlagshipDamaged)
	module.HandleFold(router, EventTypeShipDestroyed, foldShipDestroyed)
	module.HandleFold(router, EventTypeShipHealed, foldShipHealed)
	module.HandleFold(router, EventTypeStatusApplied, foldStatusApplied)
	module.HandleFold(router, EventTypeStatusTicked, foldStatusTicked)
	module.HandleFold(router, EventTypeAbilityActivated, foldAbilityActivated)
	module.HandleFold(router, EventTypeShipMoved, foldShipMoved)
	module.HandleFold(router, EventTypeCardDrawn, foldCardDrawn)
	module.HandleFold(router, EventTypeReserveUsed, foldReserveUsed)
	module.HandleFold(router, EventTypeHandTrimmed, foldHandTrimmed)
	module.HandleFold(router, EventTypeShipsReadied, foldShipsReadied)
	module.HandleFold(router, EventTypeTurnEnded, foldTurnEnded)
	module.HandleFold(router, EventTypeTurnStarted, foldTurnStarted)
	module.HandleFold(router, EventTypeEnergyRegenerated, foldEnergyRegenerated)
	module.HandleFold(router, EventTypeAttritionApplied, foldAttritionApplied)
	module.HandleFold(router, EventTypeBattleResolved, foldBattleResolved)
	return router
}

// Folder adapts the fold router to the module interface and guards
// replay against events that cannot apply: unrecognized event types,
// anything before the first battle_started, anything after resolution,
// and events addressed to a different battle id fold as no-ops rather
// than errors.
type Folder struct {
	handled map[event.Type]bool
}

// NewFolder returns the battle fold adapter.
func NewFolder() *Folder {
	handled := make(map[event.Type]bool, len(battleFolds.FoldHandledTypes()))
	for _, t := range battleFolds.FoldHandledTypes() {
		handled[t] = true
	}
	return &Folder{handled: handled}
}

// Fold applies one battle event to the snapshot.
func (f *Folder) Fold(state any, evt event.Event) (any, error) {
	s, err := assertState(state)
	if err != nil {
		return nil, err
	}
	if !f.handled[evt.Type] {
		return s, nil
	}
	if evt.Type != EventTypeBattleStarted {
		if !s.Active() {
			return s, nil
		}
		if evt.BattleID != "" && s.BattleID != "" && evt.BattleID != s.BattleID {
			return s, nil
		}
	}
	return battleFolds.Fold(s, evt)
}

// FoldHandledTypes returns every battle event type in fold order.
func (f *Folder) FoldHandledTypes() []event.Type {
	return battleFolds.FoldHandledTypes()
}

// removeFirst removes the first occurrence of id, reporting whether a
// match was found.
func removeFirst(ids []string, id string) ([]string, bool) {
	for i, existing := range ids {
		if existing == id {
			return append(append([]string(nil), ids[:i]...), ids[i+1:]...), true
		}
	}
	return ids, false
}

func combatantFromSetup(setup CombatantSetup) Combatant {
	return Combatant{
		FlagshipHull: setup.FlagshipHull,
		Energy:       setup.StartingEnergy,
		EnergyMax:    setup.EnergyMax,
		EnergyRegen:  setup.EnergyRegen,
		Hand:         append([]string(nil), setup.OpeningHand...),
		Deck:         append([]string(nil), setup.DeckOrder...),
	}
}

func foldBattleStarted(s *State, p BattleStartedPayload) error {
	*s = State{
		BattleID:   p.BattleID,
		QuestID:    p.QuestID,
		Phase:      PhaseMulligan,
		RoundLimit: p.RoundLimit,
		SeedUsed:   p.SeedUsed,
		Initiative: Initiative{
			First:           p.FirstPlayer,
			Reason:          p.InitiativeReason,
			PlayerAgility:   p.PlayerAgility,
			OpponentAgility: p.OpponentAgility,
		},
		Reserve: Reserve{
			Side:        p.ReserveSide,
			Amount:      p.ReserveAmount,
			ExpiresTurn: p.ReserveExpiresTurn,
		},
		Player:   combatantFromSetup(p.Player),
		Opponent: combatantFromSetup(p.Opponent),
	}
	return nil
}

func foldHandMulliganed(s *State, p HandMulliganedPayload) error {
	c := s.Combatant(p.Combatant)
	c.MulliganTaken = true
	for _, id := range p.ReturnedCardIDs {
		c.Hand, _ = removeFirst(c.Hand, id)
	}
	c.Hand = append(c.Hand, p.DrawnCardIDs...)
	c.Deck = append([]string(nil), p.DeckOrderAfter...)
	return nil
}

func foldEnergySpent(s *State, p EnergySpentPayload) error {
	s.Combatant(p.Combatant).Energy = p.NewTotal
	return nil
}

func foldCardDeployed(s *State, p CardDeployedPayload) error {
	if !validPosition(p.Position) {
		foldWarn("deploy of %s to out-of-range position %d ignored", p.CardID, p.Position)
		return nil
	}
	c := s.Combatant(p.Combatant)
	if c.Battlefield[p.Position-1] != nil {
		foldWarn("deploy of %s to occupied slot %d ignored", p.CardID, p.Position)
		return nil
	}
	c.Hand, _ = removeFirst(c.Hand, p.CardID)
	c.CardsPlayedTurn++
	c.Battlefield[p.Position-1] = &Ship{
		CardID:           p.Ship.CardID,
		Name:             p.Ship.Name,
		Class:            p.Ship.Class,
		Attack:           p.Ship.Attack,
		Defense:          p.Ship.Defense,
		Agility:          p.Ship.Agility,
		Hull:             p.Ship.Hull,
		MaxHull:          p.Ship.Hull,
		Exhausted:        true,
		DeployedTurn:     s.TurnNumber,
		DestroyedTrigger: p.Ship.DestroyedTrigger,
		DestroyedAmount:  p.Ship.DestroyedAmount,
	}
	return nil
}

func foldShipAttacked(s *State, p ShipAttackedPayload) error {
	if attacker := s.Combatant(p.Combatant).ShipAt(p.Position); attacker != nil {
		attacker.Exhausted = true
	}
	return nil
}

func foldShipDamaged(s *State, p ShipDamagedPayload) error {
	if target := s.Combatant(p.Combatant).ShipAt(p.Position); target != nil {
		target.Hull = p.HullAfter
	}
	return nil
}

func foldFlagshipDamaged(s *State, p FlagshipDamagedPayload) error {
	s.Combatant(p.Combatant).FlagshipHull = p.HullAfter
	return nil
}

func foldShipDestroyed(s *State, p ShipDestroyedPayload) error {
	c := s.Combatant(p.Combatant)
	ship := c.ShipAt(p.Position)
	if ship == nil || ship.CardID != p.CardID {
		foldWarn("destruction of %s at slot %d does not match the field, ignored", p.CardID, p.Position)
		return nil
	}
	c.Battlefield[p.Position-1] = nil
	c.Discard = append(c.Discard, p.CardID)
	if p.DestroyerCombatant != "" {
		destroyer := s.Combatant(p.DestroyerCombatant)
		destroyer.ShipsDestroyed++
		destroyer.ShipsDestroyedTurn++
	}
	return nil
}

func foldShipHealed(s *State, p ShipHealedPayload) error {
	if target := s.Combatant(p.Combatant).ShipAt(p.Position); target != nil {
		target.Hull = p.HullAfter
	}
	return nil
}

func foldStatusApplied(s *State, p StatusAppliedPayload) error {
	ship := s.Combatant(p.Combatant).ShipAt(p.Position)
	if ship == nil {
		return nil
	}
	for i := range ship.Statuses {
		effect := &ship.Statuses[i]
		if effect.Kind != p.Status {
			continue
		}
		// Reapplication refreshes duration; burn additionally stacks
		// and shield keeps the strongest magnitude.
		effect.Remaining = max(effect.Remaining, p.Duration)
		switch p.Status {
		case catalog.StatusBurn:
			effect.Stacks++
		case catalog.StatusShield:
			effect.Magnitude = max(effect.Magnitude, p.Magnitude)
		}
		return nil
	}
	ship.Statuses = append(ship.Statuses, StatusEffect{
		Kind:         p.Status,
		Magnitude:    p.Magnitude,
		Remaining:    p.Duration,
		Stacks:       1,
		SourceCardID: p.SourceCardID,
	})
	return nil
}

func foldStatusTicked(s *State, p StatusTickedPayload) error {
	ship := s.Combatant(p.Combatant).ShipAt(p.Position)
	if ship == nil {
		return nil
	}
	ship.Hull = p.HullAfter
	ship.Statuses = append([]StatusEffect(nil), p.Remaining...)
	return nil
}

func foldAbilityActivated(s *State, p AbilityActivatedPayload) error {
	ship := s.Combatant(p.Combatant).ShipAt(p.Position)
	if ship == nil || p.Cooldown <= 0 {
		return nil
	}
	if ship.Cooldowns == nil {
		ship.Cooldowns = make(map[string]int)
	}
	ship.Cooldowns[p.AbilityID] = p.Cooldown
	return nil
}

func foldShipMoved(s *State, p ShipMovedPayload) error {
	if !validPosition(p.FromPosition) || !validPosition(p.ToPosition) {
		foldWarn("move %d->%d out of range, ignored", p.FromPosition, p.ToPosition)
		return nil
	}
	c := s.Combatant(p.Combatant)
	ship := c.ShipAt(p.FromPosition)
	if ship == nil || c.ShipAt(p.ToPosition) != nil {
		foldWarn("move %d->%d does not match the field, ignored", p.FromPosition, p.ToPosition)
		return nil
	}
	c.Battlefield[p.FromPosition-1] = nil
	c.Battlefield[p.ToPosition-1] = ship
	ship.Exhausted = true
	return nil
}

func foldCardDrawn(s *State, p CardDrawnPayload) error {
	c := s.Combatant(p.Combatant)
	if len(c.Deck) > 0 && c.Deck[0] == p.CardID {
		c.Deck = c.Deck[1:]
	} else {
		c.Deck, _ = removeFirst(c.Deck, p.CardID)
	}
	c.Hand = append(c.Hand, p.CardID)
	return nil
}

func foldReserveUsed(s *State, p ReserveUsedPayload) error {
	s.Reserve.Used = true
	s.Combatant(p.Combatant).Energy = p.NewTotal
	return nil
}

func foldHandTrimmed(s *State, p HandTrimmedPayload) error {
	c := s.Combatant(p.Combatant)
	c.Hand = append([]string(nil), p.HandAfter...)
	c.Discard = append(c.Discard, p.DiscardedCardIDs...)
	return nil
}

func foldShipsReadied(s *State, p ShipsReadiedPayload) error {
	c := s.Combatant(p.Combatant)
	for _, position := range p.Positions {
		if ship := c.ShipAt(position); ship != nil {
			ship.Exhausted = false
		}
	}
	return nil
}

func foldTurnEnded(s *State, p TurnEndedPayload) error {
	// The turn handoff happens on turn_started; the close is recorded
	// for projections and needs no state change.
	return nil
}

func foldTurnStarted(s *State, p TurnStartedPayload) error {
	s.TurnNumber = p.TurnNumber
	s.ActiveSide = p.Combatant
	if s.Phase == PhaseMulligan {
		s.Phase = PhasePlaying
	}
	c := s.Combatant(p.Combatant)
	c.ShipsDestroyedTurn = 0
	c.CardsPlayedTurn = 0
	for _, ship := range c.Battlefield {
		if ship == nil || len(ship.Cooldowns) == 0 {
			continue
		}
		for abilityID, turns := range ship.Cooldowns {
			if turns <= 1 {
				delete(ship.Cooldowns, abilityID)
			} else {
				ship.Cooldowns[abilityID] = turns - 1
			}
		}
	}
	return nil
}

func foldEnergyRegenerated(s *State, p EnergyRegeneratedPayload) error {
	s.Combatant(p.Combatant).Energy = p.NewTotal
	return nil
}

func foldAttritionApplied(s *State, p AttritionAppliedPayload) error {
	s.Combatant(p.Combatant).FlagshipHull = p.HullAfter
	return nil
}

func foldBattleResolved(s *State, p BattleResolvedPayload) error {
	s.Phase = PhaseResolved
	s.Winner = p.Winner
	s.Victory = p.VictoryCondition
	return nil
}
