package battle

import (
	"fmt"
	"strings"
	"time"

	"github.com/mverberg/broadside/internal/catalog"
	"github.com/mverberg/broadside/internal/domain/command"
)

// decideCardDeploy plays a ship card from hand into an empty slot.
// Deployed ships arrive exhausted; the event carries the full stat
// snapshot so folds never consult the catalog.
func (d Decider) decideCardDeploy(s *State, cmd command.Command, now func() time.Time) command.Decision {
	var payload CardDeployPayload
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
	cardID := strings.TrimSpace(payload.CardID)
	c := s.Combatant(side)
	if c.HandCount(cardID) == 0 {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeCardNotInHand,
			Message: fmt.Sprintf("card %s is not in the %s hand", cardID, side),
		})
	}
	card, ok := catalog.Get(cardID)
	if !ok {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeCardUnknown,
			Message: fmt.Sprintf("card %s is not in the catalog", cardID),
		})
	}
	if !validPosition(payload.Position) {
		return command.Reject(command.Rejection{
			Code:    rejectionCodePositionInvalid,
			Message: fmt.Sprintf("position %d is not between 1 and %d", payload.Position, BattlefieldSlots),
		})
	}
	if c.ShipAt(payload.Position) != nil {
		return command.Reject(command.Rejection{
			Code:    rejectionCodePositionOccupied,
			Message: fmt.Sprintf("position %d is already occupied", payload.Position),
		})
	}
	if c.Energy < card.Cost {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeEnergyInsufficient,
			Message: fmt.Sprintf("deploying %s costs %d energy, %d available", cardID, card.Cost, c.Energy),
		})
	}

	b := newBatch(cmd, now().UTC(), s)
	b.emit(EventTypeEnergySpent, "ship", cardID, EnergySpentPayload{
		Combatant: side,
		Amount:    card.Cost,
		NewTotal:  c.Energy - card.Cost,
		Reason:    ReasonDeploy,
	})
	b.emit(EventTypeCardDeployed, "ship", cardID, CardDeployedPayload{
		Combatant: side,
		CardID:    cardID,
		Position:  payload.Position,
		Cost:      card.Cost,
		Ship:      shipSnapshot(card),
	})
	return b.decision()
}

// decideShipMove repositions a ship to an empty slot for MoveCost.
// Moving exhausts the ship.
func (d Decider) decideShipMove(s *State, cmd command.Command, now func() time.Time) command.Decision {
	var payload ShipMovePayload
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
	if !validPosition(payload.FromPosition) || !validPosition(payload.ToPosition) {
		return command.Reject(command.Rejection{
			Code:    rejectionCodePositionInvalid,
			Message: fmt.Sprintf("positions must be between 1 and %d", BattlefieldSlots),
		})
	}
	if payload.FromPosition == payload.ToPosition {
		return command.Reject(command.Rejection{
			Code:    rejectionCodePositionInvalid,
			Message: "from and to positions are the same",
		})
	}
	c := s.Combatant(side)
	ship := c.ShipAt(payload.FromPosition)
	if ship == nil {
		return command.Reject(command.Rejection{
			Code:    rejectionCodePositionEmpty,
			Message: fmt.Sprintf("no ship at position %d", payload.FromPosition),
		})
	}
	if ship.Exhausted {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeShipExhausted,
			Message: fmt.Sprintf("%s is exhausted until the end phase", ship.CardID),
		})
	}
	if ship.Stunned() {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeShipStunned,
			Message: fmt.Sprintf("%s is stunned", ship.CardID),
		})
	}
	if c.ShipAt(payload.ToPosition) != nil {
		return command.Reject(command.Rejection{
			Code:    rejectionCodePositionOccupied,
			Message: fmt.Sprintf("position %d is already occupied", payload.ToPosition),
		})
	}
	if c.Energy < MoveCost {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeEnergyInsufficient,
			Message: fmt.Sprintf("moving costs %d energy, %d available", MoveCost, c.Energy),
		})
	}

	b := newBatch(cmd, now().UTC(), s)
	b.emit(EventTypeEnergySpent, "ship", ship.CardID, EnergySpentPayload{
		Combatant: side,
		Amount:    MoveCost,
		NewTotal:  c.Energy - MoveCost,
		Reason:    ReasonMove,
	})
	b.emit(EventTypeShipMoved, "ship", ship.CardID, ShipMovedPayload{
		Combatant:    side,
		CardID:       ship.CardID,
		FromPosition: payload.FromPosition,
		ToPosition:   payload.ToPosition,
	})
	return b.decision()
}

// decideCardDraw buys an extra draw. There is no per-turn cap; energy
// is the limiting resource.
func (d Decider) decideCardDraw(s *State, cmd command.Command, now func() time.Time) command.Decision {
	var payload CardDrawPayload
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
	c := s.Combatant(side)
	if len(c.Deck) == 0 {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeDeckEmpty,
			Message: fmt.Sprintf("the %s deck is empty", side),
		})
	}
	if len(c.Hand) >= HandMax {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeHandFull,
			Message: fmt.Sprintf("the %s hand is at the %d card limit", side, HandMax),
		})
	}
	if c.Energy < PaidDrawCost {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeEnergyInsufficient,
			Message: fmt.Sprintf("drawing costs %d energy, %d available", PaidDrawCost, c.Energy),
		})
	}

	b := newBatch(cmd, now().UTC(), s)
	b.emit(EventTypeEnergySpent, "battle", s.BattleID, EnergySpentPayload{
		Combatant: side,
		Amount:    PaidDrawCost,
		NewTotal:  c.Energy - PaidDrawCost,
		Reason:    ReasonDraw,
	})
	b.emit(EventTypeCardDrawn, "battle", s.BattleID, CardDrawnPayload{
		Combatant: side,
		CardID:    c.Deck[0],
		Source:    DrawPaid,
	})
	return b.decision()
}

// decideReserveUse spends the second player's one-shot energy reserve.
// The gain is clamped at the energy cap; a fully capped combatant is
// rejected without consuming the reserve.
func (d Decider) decideReserveUse(s *State, cmd command.Command, now func() time.Time) command.Decision {
	var payload ReserveUsePayload
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
	switch {
	case s.Reserve.Side == "" || s.Reserve.Side != side:
		return command.Reject(command.Rejection{
			Code:    rejectionCodeReserveUnavailable,
			Message: fmt.Sprintf("the %s combatant holds no reserve", side),
		})
	case s.Reserve.Used:
		return command.Reject(command.Rejection{
			Code:    rejectionCodeReserveUnavailable,
			Message: "the reserve was already spent",
		})
	case s.TurnNumber > s.Reserve.ExpiresTurn:
		return command.Reject(command.Rejection{
			Code:    rejectionCodeReserveUnavailable,
			Message: fmt.Sprintf("the reserve expired after turn %d", s.Reserve.ExpiresTurn),
		})
	}
	c := s.Combatant(side)
	newTotal := min(c.EnergyMax, c.Energy+s.Reserve.Amount)
	gain := newTotal - c.Energy
	if gain <= 0 {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeReserveNoEffect,
			Message: fmt.Sprintf("energy is already at the %d cap", c.EnergyMax),
		})
	}

	b := newBatch(cmd, now().UTC(), s)
	b.emit(EventTypeReserveUsed, "battle", s.BattleID, ReserveUsedPayload{
		Combatant: side,
		Amount:    gain,
		NewTotal:  newTotal,
	})
	return b.decision()
}
