package game

// Phase identifies the outer lifecycle phase of a game.
type Phase string

const (
	// PhaseIdle means no quest is active and no battle is running.
	PhaseIdle Phase = "idle"
	// PhasePreparing means a quest has been embarked on and a battle may start.
	PhasePreparing Phase = "preparing"
	// PhaseBattling means a battle is active and gated commands are blocked.
	PhaseBattling Phase = "battling"
)

// State captures the replayed core aggregate state used by deciders.
//
// New developers should read this as "profile snapshot in-memory":
// it is derived from events and drives the phase gate plus the ownership
// checks battle setup relies on.
type State struct {
	// Created indicates whether profile.create has been successfully applied.
	Created bool
	// PlayerName is the display name chosen at profile creation.
	PlayerName string
	// Phase is the current lifecycle phase that gates what operations are legal.
	Phase Phase
	// OwnedCards is the set of catalog card ids available for deck building.
	OwnedCards map[string]bool
	// ActiveQuestID is the quest being prepared for or fought, empty when idle.
	ActiveQuestID string
	// Stats accumulates lifetime battle results for the profile.
	Stats Stats
}

// Stats tracks lifetime battle statistics recorded at battle resolution.
type Stats struct {
	// BattlesFought counts every resolved battle regardless of outcome.
	BattlesFought int
	// BattlesWon counts battles the player won.
	BattlesWon int
	// BattlesLost counts battles the player lost.
	BattlesLost int
	// BattlesDrawn counts battles that ended in a draw.
	BattlesDrawn int
	// ShipsDestroyed counts enemy ships the player destroyed across battles.
	ShipsDestroyed int
}

// CurrentPhase returns the effective phase, treating the zero value as idle
// so pre-creation state folds and gates behave uniformly.
func (s State) CurrentPhase() Phase {
	if s.Phase == "" {
		return PhaseIdle
	}
	return s.Phase
}

// Owns reports whether the given card id is in the owned collection.
func (s State) Owns(cardID string) bool {
	return s.OwnedCards[cardID]
}

// MissingCards returns the subset of ids not present in the owned collection,
// preserving input order. An empty result means every id is owned.
func (s State) MissingCards(cardIDs []string) []string {
	var missing []string
	for _, id := range cardIDs {
		if !s.OwnedCards[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
