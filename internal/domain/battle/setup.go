package battle

import (
	"fmt"
	"strings"
	"time"

	"github.com/mverberg/broadside/internal/catalog"
	"github.com/mverberg/broadside/internal/domain/aggregate"
	"github.com/mverberg/broadside/internal/domain/command"
	"github.com/mverberg/broadside/internal/domain/event"
	"github.com/mverberg/broadside/internal/domain/game"
	"github.com/mverberg/broadside/internal/id"
)

// decideBattleStart validates both decks against the catalog and the
// player collection, shuffles with the recorded seed, rolls initiative
// from opening-hand agility, and emits the battle_started fact along
// with the core phase change to battling.
func (d Decider) decideBattleStart(snapshot aggregate.State, s *State, cmd command.Command, now func() time.Time) command.Decision {
	var payload BattleStartPayload
	if rejection := decodePayload(cmd, &payload); rejection != nil {
		return command.Reject(*rejection)
	}
	if s.Active() {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeBattleActive,
			Message: "a battle is already in progress",
		})
	}
	if phase := snapshot.Game.CurrentPhase(); phase != game.PhasePreparing {
		return command.Reject(command.Rejection{
			Code:    rejectionCodePhaseInvalid,
			Message: fmt.Sprintf("battle start requires the preparing phase, game is %s", phase),
		})
	}
	questID := strings.TrimSpace(payload.QuestID)
	if active := snapshot.Game.ActiveQuestID; active != "" {
		if questID != "" && questID != active {
			return command.Reject(command.Rejection{
				Code:    rejectionCodeQuestMismatch,
				Message: fmt.Sprintf("quest %s is not the active quest", questID),
			})
		}
		questID = active
	}
	playerDeck, rejection := validateDeck(payload.DeckCardIDs, &snapshot.Game)
	if rejection != nil {
		return command.Reject(*rejection)
	}
	// The scripted opponent draws from the full catalog, not a collection.
	opponentDeck, rejection := validateDeck(payload.OpponentDeckCardIDs, nil)
	if rejection != nil {
		return command.Reject(*rejection)
	}
	if payload.PlayerFlagshipHull <= 0 || payload.OpponentFlagshipHull <= 0 {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeFlagshipHullInvalid,
			Message: "flagship hull totals must be positive",
		})
	}
	if payload.RoundLimit < 0 {
		return command.Reject(command.Rejection{
			Code:    rejectionCodeRoundLimitInvalid,
			Message: fmt.Sprintf("round limit %d must not be negative", payload.RoundLimit),
		})
	}
	roundLimit := payload.RoundLimit
	if roundLimit == 0 {
		roundLimit = DefaultRoundLimit
	}
	battleID := strings.TrimSpace(cmd.BattleID)
	if battleID == "" {
		generated, err := id.New()
		if err != nil {
			return command.Reject(command.Rejection{
				Code:    rejectionCodeBattleIDUnavailable,
				Message: fmt.Sprintf("generate battle id: %v", err),
			})
		}
		battleID = generated
	}
	seed := payload.Seed
	if seed == 0 {
		seed = now().UTC().UnixNano()
	}

	rng := newRNG(seed)
	playerOrder := shuffledDeck(playerDeck, rng)
	opponentOrder := shuffledDeck(opponentDeck, rng)
	playerHand, playerPile := playerOrder[:OpeningHandSize], playerOrder[OpeningHandSize:]
	opponentHand, opponentPile := opponentOrder[:OpeningHandSize], opponentOrder[OpeningHandSize:]

	playerAgility := handAgility(playerHand)
	opponentAgility := handAgility(opponentHand)
	first, reason := SidePlayer, InitiativeTie
	switch {
	case playerAgility > opponentAgility:
		first, reason = SidePlayer, InitiativeAgility
	case opponentAgility > playerAgility:
		first, reason = SideOpponent, InitiativeAgility
	}
	second := Opposing(first)

	started := BattleStartedPayload{
		BattleID:         battleID,
		QuestID:          questID,
		RoundLimit:       roundLimit,
		SeedUsed:         seed,
		FirstPlayer:      first,
		InitiativeReason: reason,
		PlayerAgility:    playerAgility,
		OpponentAgility:  opponentAgility,
		Player: CombatantSetup{
			FlagshipHull:   payload.PlayerFlagshipHull,
			StartingEnergy: startingEnergy(first == SidePlayer),
			EnergyMax:      EnergyMax,
			EnergyRegen:    EnergyRegenPerTurn,
			OpeningHand:    playerHand,
			DeckOrder:      playerPile,
		},
		Opponent: CombatantSetup{
			FlagshipHull:   payload.OpponentFlagshipHull,
			StartingEnergy: startingEnergy(first == SideOpponent),
			EnergyMax:      EnergyMax,
			EnergyRegen:    EnergyRegenPerTurn,
			OpeningHand:    opponentHand,
			DeckOrder:      opponentPile,
		},
		ReserveSide:        second,
		ReserveAmount:      ReserveEnergyAmount,
		ReserveExpiresTurn: ReserveExpiresTurn,
	}

	b := newBatch(cmd, now().UTC(), s)
	b.battleID = battleID
	b.emit(EventTypeBattleStarted, "battle", battleID, started)
	b.emitCore(event.TypeGamePhaseChanged, "game", cmd.GameID, game.PhaseChangedPayload{
		From: game.PhasePreparing,
		To:   game.PhaseBattling,
	})
	return b.decision()
}

// validateDeck normalizes a deck list and checks size bounds,
// duplicates, catalog membership, and (when a profile is supplied)
// collection ownership.
func validateDeck(cardIDs []string, profile *game.State) ([]string, *command.Rejection) {
	deck := make([]string, 0, len(cardIDs))
	seen := make(map[string]bool, len(cardIDs))
	for _, raw := range cardIDs {
		cardID := strings.TrimSpace(raw)
		if cardID == "" {
			continue
		}
		if seen[cardID] {
			return nil, &command.Rejection{
				Code:    rejectionCodeDeckDuplicateCard,
				Message: fmt.Sprintf("card %s appears in the deck more than once", cardID),
			}
		}
		seen[cardID] = true
		if !catalog.Exists(cardID) {
			return nil, &command.Rejection{
				Code:    rejectionCodeCardUnknown,
				Message: fmt.Sprintf("card %s is not in the catalog", cardID),
			}
		}
		if profile != nil && !profile.Owns(cardID) {
			return nil, &command.Rejection{
				Code:    rejectionCodeCardNotOwned,
				Message: fmt.Sprintf("card %s is not in the player collection", cardID),
			}
		}
		deck = append(deck, cardID)
	}
	if len(deck) < DeckSizeMin || len(deck) > DeckSizeMax {
		return nil, &command.Rejection{
			Code:    rejectionCodeDeckSizeOutOfRange,
			Message: fmt.Sprintf("deck has %d cards, want between %d and %d", len(deck), DeckSizeMin, DeckSizeMax),
		}
	}
	return deck, nil
}

func startingEnergy(movesFirst bool) int {
	if movesFirst {
		return BaseStartingEnergy
	}
	return BaseStartingEnergy + SecondPlayerEnergyBonus
}

// handAgility sums the opening hand's agility stats for initiative.
func handAgility(cardIDs []string) int {
	total := 0
	for _, cardID := range cardIDs {
		if card, ok := catalog.Get(cardID); ok {
			total += card.Agility
		}
	}
	return total
}

// shipSnapshot copies the catalog stats a deploy event must carry.
func shipSnapshot(card catalog.Card) ShipSnapshot {
	return ShipSnapshot{
		CardID:           card.ID,
		Name:             card.Name,
		Class:            card.Class,
		Cost:             card.Cost,
		Attack:           card.Attack,
		Defense:          card.Defense,
		Agility:          card.Agility,
		Hull:             card.Hull,
		DestroyedTrigger: card.Destroyed,
		DestroyedAmount:  card.DestroyedAmount,
	}
}
