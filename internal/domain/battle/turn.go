package battle

import (
	"time"

	"github.com/mverberg/broadside/internal/catalog"
	"github.com/mverberg/broadside/internal/domain/command"
	"github.com/mverberg/broadside/internal/domain/event"
	"github.com/mverberg/broadside/internal/domain/game"
)

// decideTurnEnd closes the acting side's turn: trim the hand to the
// limit (newest first), ready exhausted ships, record the close. At
// the round limit the battle resolves by total hull comparison;
// otherwise the same batch opens the other side's turn.
func (d Decider) decideTurnEnd(s *State, cmd command.Command, now func() time.Time) command.Decision {
	var payload TurnEndPayload
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

	b := newBatch(cmd, now().UTC(), s)
	c := b.state.Combatant(side)
	if len(c.Hand) > HandMax {
		discarded := make([]string, 0, len(c.Hand)-HandMax)
		for i := len(c.Hand) - 1; i >= HandMax; i-- {
			discarded = append(discarded, c.Hand[i])
		}
		b.emit(EventTypeHandTrimmed, "battle", b.battleID, HandTrimmedPayload{
			Combatant:        side,
			DiscardedCardIDs: discarded,
			HandAfter:        append([]string(nil), c.Hand[:HandMax]...),
		})
	}
	var readied []int
	for position := 1; position <= BattlefieldSlots; position++ {
		if ship := c.ShipAt(position); ship != nil && ship.Exhausted {
			readied = append(readied, position)
		}
	}
	if len(readied) > 0 {
		b.emit(EventTypeShipsReadied, "battle", b.battleID, ShipsReadiedPayload{
			Combatant: side,
			Positions: readied,
		})
	}
	b.emit(EventTypeTurnEnded, "battle", b.battleID, TurnEndedPayload{
		Combatant:  side,
		TurnNumber: s.TurnNumber,
	})

	if s.TurnNumber >= 2*s.RoundLimit {
		playerHull := b.state.Player.TotalHull()
		opponentHull := b.state.Opponent.TotalHull()
		winner := WinnerDraw
		switch {
		case playerHull > opponentHull:
			winner = WinnerPlayer
		case opponentHull > playerHull:
			winner = WinnerOpponent
		}
		resolveBattle(b, winner, VictoryTimeout)
		return b.decision()
	}

	startTurn(b, Opposing(side), s.TurnNumber+1)
	return b.decision()
}

// startTurn opens a turn for a side: the turn_started marker, energy
// regeneration (skipped on each side's first turn), the automatic
// draw, the side's status ticks, and finally attrition if the side is
// exposed. Burn deaths during ticks are unattributed.
func startTurn(b *batch, side Side, turnNumber int) {
	b.emit(EventTypeTurnStarted, "battle", b.battleID, TurnStartedPayload{
		Combatant:  side,
		TurnNumber: turnNumber,
	})
	c := b.state.Combatant(side)
	if turnNumber >= 3 {
		newTotal := min(c.EnergyMax, c.Energy+c.EnergyRegen)
		if gain := newTotal - c.Energy; gain > 0 {
			b.emit(EventTypeEnergyRegenerated, "battle", b.battleID, EnergyRegeneratedPayload{
				Combatant: side,
				Amount:    gain,
				NewTotal:  newTotal,
			})
		}
	}
	if len(c.Deck) > 0 {
		b.emit(EventTypeCardDrawn, "battle", b.battleID, CardDrawnPayload{
			Combatant: side,
			CardID:    c.Deck[0],
			Source:    DrawTurnStart,
		})
	}

	for position := 1; position <= BattlefieldSlots; position++ {
		ship := b.state.Combatant(side).ShipAt(position)
		if ship == nil || len(ship.Statuses) == 0 {
			continue
		}
		// An effect stays active through the turn its counter reaches
		// zero on and expires at the owner's next turn start, so a
		// one-turn stun blocks a full turn and a two-turn burn deals
		// exactly two ticks.
		burn := 0
		var expired []catalog.StatusKind
		var remaining []StatusEffect
		for _, effect := range ship.Statuses {
			if effect.Remaining <= 0 {
				expired = append(expired, effect.Kind)
				continue
			}
			if effect.Kind == catalog.StatusBurn {
				burn += effect.Magnitude * max(1, effect.Stacks)
			}
			effect.Remaining--
			remaining = append(remaining, effect)
		}
		before := ship.Hull
		after := max(0, before-burn)
		b.emit(EventTypeStatusTicked, "ship", ship.CardID, StatusTickedPayload{
			Combatant:  side,
			Position:   position,
			CardID:     ship.CardID,
			BurnDamage: burn,
			HullBefore: before,
			HullAfter:  after,
			Expired:    expired,
			Remaining:  remaining,
		})
		if after == 0 {
			destroyShip(b, side, position, "", 0, "")
		}
	}

	c = b.state.Combatant(side)
	if c.Exposed() {
		before := c.FlagshipHull
		after := max(0, before-AttritionDamage)
		b.emit(EventTypeAttritionApplied, "battle", b.battleID, AttritionAppliedPayload{
			Combatant:  side,
			Amount:     AttritionDamage,
			HullBefore: before,
			HullAfter:  after,
		})
		if after == 0 {
			resolveBattle(b, winnerForSide(Opposing(side)), VictoryAttrition)
		}
	}
}

// resolveBattle terminates the battle and emits the core lifecycle
// facts in the same batch: the phase change back to idle and the
// player-perspective battle record.
func resolveBattle(b *batch, winner Winner, condition VictoryCondition) {
	b.emit(EventTypeBattleResolved, "battle", b.battleID, BattleResolvedPayload{
		Winner:                winner,
		VictoryCondition:      condition,
		Turns:                 b.state.TurnNumber,
		PlayerHullRemaining:   b.state.Player.TotalHull(),
		OpponentHullRemaining: b.state.Opponent.TotalHull(),
	})
	b.emitCore(event.TypeGamePhaseChanged, "game", b.cmd.GameID, game.PhaseChangedPayload{
		From: game.PhaseBattling,
		To:   game.PhaseIdle,
	})
	result := game.ResultDrawn
	switch winner {
	case WinnerPlayer:
		result = game.ResultWon
	case WinnerOpponent:
		result = game.ResultLost
	}
	b.emitCore(event.TypeBattleRecorded, "profile", b.cmd.GameID, game.BattleRecordedPayload{
		BattleID:         b.battleID,
		QuestID:          b.state.QuestID,
		Result:           result,
		VictoryCondition: string(condition),
		Turns:            b.state.TurnNumber,
		ShipsDestroyed:   b.state.Player.ShipsDestroyed,
	})
}
