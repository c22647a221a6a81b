package battle

import "github.com/mverberg/broadside/internal/catalog"

// EnergyReason classifies what an energy deduction paid for.
type EnergyReason string

const (
	// ReasonDeploy is a card deployment.
	ReasonDeploy EnergyReason = "deploy"
	// ReasonAbility is an ability activation.
	ReasonAbility EnergyReason = "ability"
	// ReasonMove is a ship reposition.
	ReasonMove EnergyReason = "move"
	// ReasonDraw is a paid extra draw.
	ReasonDraw EnergyReason = "draw"
)

// DrawSource classifies where a drawn card came from.
type DrawSource string

const (
	// DrawTurnStart is the automatic start-of-turn draw.
	DrawTurnStart DrawSource = "turn_start"
	// DrawPaid is the two-energy extra draw.
	DrawPaid DrawSource = "paid"
	// DrawSalvage is the destroyed-salvager bonus draw.
	DrawSalvage DrawSource = "salvage"
)

// DamageSource classifies what dealt damage.
type DamageSource string

const (
	// DamageAttack is a plain lane attack.
	DamageAttack DamageSource = "attack"
	// DamageAbility is a direct-damage ability.
	DamageAbility DamageSource = "ability"
	// DamageBurn is a start-of-turn burn tick.
	DamageBurn DamageSource = "burn"
	// DamageDetonate is a fireship's destroyed trigger.
	DamageDetonate DamageSource = "detonate"
)

// AttackTarget classifies what a plain attack resolved onto.
type AttackTarget string

const (
	// AttackTargetShip means the opposing slot held a ship.
	AttackTargetShip AttackTarget = "ship"
	// AttackTargetFlagship means the opposing slot was empty.
	AttackTargetFlagship AttackTarget = "flagship"
)

// ShipSnapshot is the full base-stat record a deploy event carries so
// folds never consult the catalog.
type ShipSnapshot struct {
	CardID           string              `json:"card_id"`
	Name             string              `json:"name"`
	Class            string              `json:"class"`
	Cost             int                 `json:"cost"`
	Attack           int                 `json:"attack"`
	Defense          int                 `json:"defense"`
	Agility          int                 `json:"agility"`
	Hull             int                 `json:"hull"`
	DestroyedTrigger catalog.TriggerKind `json:"destroyed_trigger,omitempty"`
	DestroyedAmount  int                 `json:"destroyed_amount,omitempty"`
}

// CombatantSetup is one side's opening position inside battle_started.
type CombatantSetup struct {
	FlagshipHull   int      `json:"flagship_hull"`
	StartingEnergy int      `json:"starting_energy"`
	EnergyMax      int      `json:"energy_max"`
	EnergyRegen    int      `json:"energy_regen"`
	OpeningHand    []string `json:"opening_hand"`
	DeckOrder      []string `json:"deck_order"`
}

// BattleStartedPayload creates the battle atomically: shuffled deck
// orders, opening hands, hull totals, energy, initiative, reserve.
type BattleStartedPayload struct {
	BattleID           string           `json:"battle_id"`
	QuestID            string           `json:"quest_id,omitempty"`
	RoundLimit         int              `json:"round_limit"`
	SeedUsed           int64            `json:"seed_used"`
	FirstPlayer        Side             `json:"first_player"`
	InitiativeReason   InitiativeReason `json:"initiative_reason"`
	PlayerAgility      int              `json:"player_agility"`
	OpponentAgility    int              `json:"opponent_agility"`
	Player             CombatantSetup   `json:"player"`
	Opponent           CombatantSetup   `json:"opponent"`
	ReserveSide        Side             `json:"reserve_side"`
	ReserveAmount      int              `json:"reserve_amount"`
	ReserveExpiresTurn int              `json:"reserve_expires_turn"`
}

// HandMulliganedPayload records one side's opening redraw. An empty
// ReturnedCardIDs means the hand was kept.
type HandMulliganedPayload struct {
	Combatant       Side     `json:"combatant"`
	ReturnedCardIDs []string `json:"returned_card_ids,omitempty"`
	DrawnCardIDs    []string `json:"drawn_card_ids,omitempty"`
	DeckOrderAfter  []string `json:"deck_order_after"`
	SeedUsed        int64    `json:"seed_used,omitempty"`
}

// EnergySpentPayload records a deduction with the server-computed total.
type EnergySpentPayload struct {
	Combatant Side         `json:"combatant"`
	Amount    int          `json:"amount"`
	NewTotal  int          `json:"new_total"`
	Reason    EnergyReason `json:"reason"`
}

// CardDeployedPayload places a ship into a slot.
type CardDeployedPayload struct {
	Combatant Side         `json:"combatant"`
	CardID    string       `json:"card_id"`
	Position  int          `json:"position"`
	Cost      int          `json:"cost"`
	Ship      ShipSnapshot `json:"ship"`
}

// ShipAttackedPayload records the attack declaration and the target the
// lane rule resolved.
type ShipAttackedPayload struct {
	Combatant      Side         `json:"combatant"`
	Position       int          `json:"position"`
	CardID         string       `json:"card_id"`
	Attack         int          `json:"attack"`
	TargetKind     AttackTarget `json:"target_kind"`
	TargetPosition int          `json:"target_position,omitempty"`
	TargetCardID   string       `json:"target_card_id,omitempty"`
}

// ShipDamagedPayload records hull loss on a deployed ship; Combatant is
// the damaged ship's owner.
type ShipDamagedPayload struct {
	Combatant       Side         `json:"combatant"`
	Position        int          `json:"position"`
	CardID          string       `json:"card_id"`
	Amount          int          `json:"amount"`
	HullBefore      int          `json:"hull_before"`
	HullAfter       int          `json:"hull_after"`
	Source          DamageSource `json:"source"`
	SourceCombatant Side         `json:"source_combatant,omitempty"`
	SourcePosition  int          `json:"source_position,omitempty"`
	SourceCardID    string       `json:"source_card_id,omitempty"`
}

// FlagshipDamagedPayload records hull loss on a flagship.
type FlagshipDamagedPayload struct {
	Combatant       Side         `json:"combatant"`
	Amount          int          `json:"amount"`
	HullBefore      int          `json:"hull_before"`
	HullAfter       int          `json:"hull_after"`
	Source          DamageSource `json:"source"`
	SourceCombatant Side         `json:"source_combatant,omitempty"`
	SourcePosition  int          `json:"source_position,omitempty"`
	SourceCardID    string       `json:"source_card_id,omitempty"`
}

// ShipDestroyedPayload removes a dead ship. Destroyer fields are empty
// for unattributed deaths (burn).
type ShipDestroyedPayload struct {
	Combatant          Side                `json:"combatant"`
	Position           int                 `json:"position"`
	CardID             string              `json:"card_id"`
	DestroyedTrigger   catalog.TriggerKind `json:"destroyed_trigger,omitempty"`
	DestroyerCombatant Side                `json:"destroyer_combatant,omitempty"`
	DestroyerPosition  int                 `json:"destroyer_position,omitempty"`
	DestroyerCardID    string              `json:"destroyer_card_id,omitempty"`
}

// ShipHealedPayload records hull restored, clamped at the ship's max.
type ShipHealedPayload struct {
	Combatant    Side   `json:"combatant"`
	Position     int    `json:"position"`
	CardID       string `json:"card_id"`
	Amount       int    `json:"amount"`
	HullBefore   int    `json:"hull_before"`
	HullAfter    int    `json:"hull_after"`
	SourceCardID string `json:"source_card_id,omitempty"`
}

// StatusAppliedPayload attaches or refreshes a status effect.
type StatusAppliedPayload struct {
	Combatant       Side               `json:"combatant"`
	Position        int                `json:"position"`
	CardID          string             `json:"card_id"`
	Status          catalog.StatusKind `json:"status"`
	Magnitude       int                `json:"magnitude,omitempty"`
	Duration        int                `json:"duration"`
	SourceCombatant Side               `json:"source_combatant,omitempty"`
	SourcePosition  int                `json:"source_position,omitempty"`
	SourceCardID    string             `json:"source_card_id,omitempty"`
}

// StatusTickedPayload records one ship's start-of-turn status pass.
// Remaining is the authoritative post-tick effect list; the fold
// assigns it instead of re-deriving ticks.
type StatusTickedPayload struct {
	Combatant  Side                 `json:"combatant"`
	Position   int                  `json:"position"`
	CardID     string               `json:"card_id"`
	BurnDamage int                  `json:"burn_damage,omitempty"`
	HullBefore int                  `json:"hull_before"`
	HullAfter  int                  `json:"hull_after"`
	Expired    []catalog.StatusKind `json:"expired,omitempty"`
	Remaining  []StatusEffect       `json:"remaining"`
}

// AbilityActivatedPayload records an ability use with everything the
// fold needs: resolved target, cost, cooldown, effect parameters.
type AbilityActivatedPayload struct {
	Combatant       Side                `json:"combatant"`
	Position        int                 `json:"position"`
	CardID          string              `json:"card_id"`
	AbilityID       string              `json:"ability_id"`
	AbilityName     string              `json:"ability_name"`
	Cost            int                 `json:"cost"`
	Cooldown        int                 `json:"cooldown"`
	Effect          catalog.EffectKind  `json:"effect"`
	Amount          int                 `json:"amount,omitempty"`
	Status          catalog.StatusKind  `json:"status,omitempty"`
	Duration        int                 `json:"duration,omitempty"`
	TargetKind      catalog.TargetKind  `json:"target_kind"`
	TargetCombatant Side                `json:"target_combatant,omitempty"`
	TargetPosition  int                 `json:"target_position,omitempty"`
	TargetCardID    string              `json:"target_card_id,omitempty"`
	TargetFlagship  bool                `json:"target_flagship,omitempty"`
}

// ShipMovedPayload repositions a ship; moving exhausts it.
type ShipMovedPayload struct {
	Combatant    Side   `json:"combatant"`
	CardID       string `json:"card_id"`
	FromPosition int    `json:"from_position"`
	ToPosition   int    `json:"to_position"`
}

// CardDrawnPayload moves the deck top into the hand.
type CardDrawnPayload struct {
	Combatant Side       `json:"combatant"`
	CardID    string     `json:"card_id"`
	Source    DrawSource `json:"source"`
}

// ReserveUsedPayload spends the one-shot reserve; Amount is the actual
// gain after the energy cap.
type ReserveUsedPayload struct {
	Combatant Side `json:"combatant"`
	Amount    int  `json:"amount"`
	NewTotal  int  `json:"new_total"`
}

// HandTrimmedPayload discards down to the hand limit, newest first.
type HandTrimmedPayload struct {
	Combatant        Side     `json:"combatant"`
	DiscardedCardIDs []string `json:"discarded_card_ids"`
	HandAfter        []string `json:"hand_after"`
}

// ShipsReadiedPayload clears exhaustion at the owner's end phase.
type ShipsReadiedPayload struct {
	Combatant Side  `json:"combatant"`
	Positions []int `json:"positions"`
}

// TurnEndedPayload closes the acting side's turn.
type TurnEndedPayload struct {
	Combatant  Side `json:"combatant"`
	TurnNumber int  `json:"turn_number"`
}

// TurnStartedPayload opens a turn; folding it advances the mulligan
// phase to playing, resets per-turn bookkeeping, and ticks the active
// side's ability cooldowns.
type TurnStartedPayload struct {
	Combatant  Side `json:"combatant"`
	TurnNumber int  `json:"turn_number"`
}

// EnergyRegeneratedPayload records the start-of-turn energy gain.
type EnergyRegeneratedPayload struct {
	Combatant Side `json:"combatant"`
	Amount    int  `json:"amount"`
	NewTotal  int  `json:"new_total"`
}

// AttritionAppliedPayload damages an exposed combatant's flagship.
type AttritionAppliedPayload struct {
	Combatant  Side `json:"combatant"`
	Amount     int  `json:"amount"`
	HullBefore int  `json:"hull_before"`
	HullAfter  int  `json:"hull_after"`
}

// BattleResolvedPayload terminates the battle.
type BattleResolvedPayload struct {
	Winner                Winner           `json:"winner"`
	VictoryCondition      VictoryCondition `json:"victory_condition"`
	Turns                 int              `json:"turns"`
	PlayerHullRemaining   int              `json:"player_hull_remaining"`
	OpponentHullRemaining int              `json:"opponent_hull_remaining"`
}
