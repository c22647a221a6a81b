package battle

import (
	"fmt"
	"strings"
	"time"

	"github.com/mverberg/broadside/internal/domain/command"
)

// decideHandMulligan handles the one-shot opening redraw. The returned
// cards go back into the deck, the deck reshuffles with a fresh seed,
// and the same number of cards is drawn from the new top. An empty
// card list keeps the hand and consumes the mulligan without
// reshuffling. When the second combatant finishes, the same batch
// opens turn one.
func (d Decider) decideHandMulligan(s *State, cmd command.Command, now func() time.Time) command.Decision {
	var payload HandMulliganPayload
	if rejection := decodePayload(cmd, &payload); rejection != nil {
		return command.Reject(*rejection)
	}
	side, rejection := sideForCommand(cmd, payload.Combatant)
	if rejection != nil {
		return command.Reject(*rejection)
	}
	if !s.Active() {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeBattleNotActive,
			Message: "no battle is in progress",
		})
	}
	if s.Phase != PhaseMulligan {
		return command.Reject(command.Rejection{
			Code:    rejectionCodePhaseInvalid,
			Message: fmt.Sprintf("mulligan is only available in the mulligan phase, battle is in %s", s.Phase),
		})
	}
	c := s.Combatant(side)
	if c.MulliganTaken {
		// FIXME(telemetry): metric for repeated mulligan attempts (no-op reject).
		return command.Reject(command.Rejection{
			Code:    rejectionCodeMulliganAlreadyTaken,
			Message: fmt.Sprintf("the %s combatant already took its mulligan", side),
		})
	}
	returned := make([]string, 0, len(payload.CardIDs))
	requested := make(map[string]int, len(payload.CardIDs))
	for _, raw := range payload.CardIDs {
		cardID := strings.TrimSpace(raw)
		if cardID == "" {
			continue
		}
		requested[cardID]++
		if requested[cardID] > c.HandCount(cardID) {
			return command.Reject(command.Rejection{
				Code:    rejectionCodeCardNotInHand,
				Message: fmt.Sprintf("card %s is not in the %s hand", cardID, side),
			})
		}
		returned = append(returned, cardID)
	}

	b := newBatch(cmd, now().UTC(), s)
	if len(returned) == 0 {
		b.emit(EventTypeHandMulliganed, "battle", s.BattleID, HandMulliganedPayload{
			Combatant:      side,
			DeckOrderAfter: append([]string(nil), c.Deck...),
		})
	} else {
		seed := payload.Seed
		if seed == 0 {
			seed = now().UTC().UnixNano()
		}
		pile := append(append([]string(nil), c.Deck...), returned...)
		shuffled := shuffledDeck(pile, newRNG(seed))
		drawn := shuffled[:len(returned)]
		b.emit(EventTypeHandMulliganed, "battle", s.BattleID, HandMulliganedPayload{
			Combatant:       side,
			ReturnedCardIDs: returned,
			DrawnCardIDs:    drawn,
			DeckOrderAfter:  shuffled[len(returned):],
			SeedUsed:        seed,
		})
	}
	if b.state.Player.MulliganTaken && b.state.Opponent.MulliganTaken {
		startTurn(b, s.Initiative.First, 1)
	}
	return b.decision()
}
