package game

// Result classifies a resolved battle from the player's perspective.
type Result string

const (
	// ResultWon means the player won the battle.
	ResultWon Result = "won"
	// ResultLost means the player lost the battle.
	ResultLost Result = "lost"
	// ResultDrawn means the battle ended without a winner.
	ResultDrawn Result = "drawn"
)

// ProfileCreatePayload carries the payload for profile.create commands.
type ProfileCreatePayload struct {
	PlayerName string `json:"player_name"`
}

// ProfileCreatedPayload carries the payload for profile.created events.
// StarterCardIDs records the initial collection granted at creation so
// replay never depends on the catalog of the day.
type ProfileCreatedPayload struct {
	PlayerName     string   `json:"player_name"`
	StarterCardIDs []string `json:"starter_card_ids"`
}

// CardsGrantPayload carries the payload for cards.grant commands.
type CardsGrantPayload struct {
	CardIDs []string `json:"card_ids"`
	Source  string   `json:"source,omitempty"`
}

// CardsGrantedPayload carries the payload for cards.granted events.
// CardIDs holds only the ids that were newly added to the collection.
type CardsGrantedPayload struct {
	CardIDs []string `json:"card_ids"`
	Source  string   `json:"source,omitempty"`
}

// QuestEmbarkPayload carries the payload for quest.embark commands.
type QuestEmbarkPayload struct {
	QuestID string `json:"quest_id"`
}

// QuestEmbarkedPayload carries the payload for quest.embarked events.
type QuestEmbarkedPayload struct {
	QuestID string `json:"quest_id"`
}

// QuestAbandonedPayload carries the payload for quest.abandoned events.
type QuestAbandonedPayload struct {
	QuestID string `json:"quest_id"`
}

// PhaseChangedPayload carries the payload for game.phase_changed events.
type PhaseChangedPayload struct {
	From Phase `json:"from"`
	To   Phase `json:"to"`
}

// BattleRecordedPayload carries the payload for profile.battle_recorded
// events emitted when a battle resolves.
type BattleRecordedPayload struct {
	BattleID         string `json:"battle_id"`
	QuestID          string `json:"quest_id,omitempty"`
	Result           Result `json:"result"`
	VictoryCondition string `json:"victory_condition"`
	Turns            int    `json:"turns"`
	ShipsDestroyed   int    `json:"ships_destroyed"`
}
