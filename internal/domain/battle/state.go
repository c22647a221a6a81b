package battle

import (
	"github.com/mverberg/broadside/internal/catalog"
)

// Phase identifies the battle lifecycle phase.
type Phase string

const (
	// PhaseMulligan is the opening window where each side may redraw once.
	PhaseMulligan Phase = "mulligan"
	// PhasePlaying is the alternating turn cycle.
	PhasePlaying Phase = "playing"
	// PhaseResolved is terminal; no further battle command is accepted.
	PhaseResolved Phase = "resolved"
)

// Side identifies a combatant.
type Side string

const (
	// SidePlayer is the human combatant.
	SidePlayer Side = "player"
	// SideOpponent is the scripted combatant.
	SideOpponent Side = "opponent"
)

// Opposing returns the other side.
func Opposing(side Side) Side {
	if side == SidePlayer {
		return SideOpponent
	}
	return SidePlayer
}

// Winner identifies the battle outcome owner.
type Winner string

const (
	// WinnerPlayer means the player won.
	WinnerPlayer Winner = "player"
	// WinnerOpponent means the opponent won.
	WinnerOpponent Winner = "opponent"
	// WinnerDraw means the battle ended without a winner.
	WinnerDraw Winner = "draw"
)

// winnerForSide maps a winning side to its outcome value.
func winnerForSide(side Side) Winner {
	if side == SidePlayer {
		return WinnerPlayer
	}
	return WinnerOpponent
}

// VictoryCondition identifies how a battle resolved.
type VictoryCondition string

const (
	// VictoryFlagshipDestroyed means a flagship hull reached zero.
	VictoryFlagshipDestroyed VictoryCondition = "flagship_destroyed"
	// VictoryAttrition means attrition damage finished a combatant.
	VictoryAttrition VictoryCondition = "attrition"
	// VictoryTimeout means the round limit forced a hull comparison.
	VictoryTimeout VictoryCondition = "timeout"
)

// InitiativeReason identifies how the first player was determined.
type InitiativeReason string

const (
	// InitiativeAgility means the higher opening-hand agility total went first.
	InitiativeAgility InitiativeReason = "agility"
	// InitiativeTie means the agility totals tied and the player went first.
	InitiativeTie InitiativeReason = "tie"
)

// StatusEffect is one active status on a deployed ship.
type StatusEffect struct {
	// Kind is the status type (burn, shield, stun).
	Kind catalog.StatusKind `json:"kind"`
	// Magnitude is the per-application strength: damage per stack for
	// burn, bonus defense for shield. Zero for stun.
	Magnitude int `json:"magnitude,omitempty"`
	// Remaining counts down at the owner's turn starts. The effect
	// stays active through the turn it reaches zero on and expires at
	// the owner's next turn start.
	Remaining int `json:"remaining"`
	// Stacks counts burn applications; other kinds stay at 1.
	Stacks int `json:"stacks,omitempty"`
	// SourceCardID is the card whose ability applied the status.
	SourceCardID string `json:"source_card_id,omitempty"`
}

// Ship is a deployed card occupying a battlefield slot. Base stats are
// copied from the deploy event payload, never read from the catalog.
type Ship struct {
	CardID  string `json:"card_id"`
	Name    string `json:"name,omitempty"`
	Class   string `json:"class,omitempty"`
	Attack  int    `json:"attack"`
	Defense int    `json:"defense"`
	Agility int    `json:"agility"`
	// Hull is current hull; MaxHull caps healing.
	Hull    int `json:"hull"`
	MaxHull int `json:"max_hull"`
	// Exhausted ships cannot attack or move until readied at their
	// owner's end phase. Abilities are not blocked by exhaustion.
	Exhausted bool `json:"exhausted,omitempty"`
	// DeployedTurn is the turn number the ship entered play.
	DeployedTurn int `json:"deployed_turn,omitempty"`
	// Statuses are the active effects on this ship.
	Statuses []StatusEffect `json:"statuses,omitempty"`
	// Cooldowns maps ability id to owner turn starts left before reuse.
	Cooldowns map[string]int `json:"cooldowns,omitempty"`
	// DestroyedTrigger and DestroyedAmount describe what resolves when
	// this ship dies.
	DestroyedTrigger catalog.TriggerKind `json:"destroyed_trigger,omitempty"`
	DestroyedAmount  int                 `json:"destroyed_amount,omitempty"`
}

// HasStatus reports whether any active effect matches the kind.
func (s *Ship) HasStatus(kind catalog.StatusKind) bool {
	if s == nil {
		return false
	}
	for _, effect := range s.Statuses {
		if effect.Kind == kind {
			return true
		}
	}
	return false
}

// Stunned reports whether the ship is blocked from acting entirely.
func (s *Ship) Stunned() bool {
	return s.HasStatus(catalog.StatusStun)
}

// EffectiveDefense is base defense plus active shield magnitudes.
func (s *Ship) EffectiveDefense() int {
	if s == nil {
		return 0
	}
	defense := s.Defense
	for _, effect := range s.Statuses {
		if effect.Kind == catalog.StatusShield {
			defense += effect.Magnitude
		}
	}
	return defense
}

// CooldownRemaining returns the owner turn starts left before the
// ability can be activated again.
func (s *Ship) CooldownRemaining(abilityID string) int {
	if s == nil || s.Cooldowns == nil {
		return 0
	}
	return s.Cooldowns[abilityID]
}

// clone deep-copies the ship.
func (s *Ship) clone() *Ship {
	if s == nil {
		return nil
	}
	out := *s
	out.Statuses = append([]StatusEffect(nil), s.Statuses...)
	if s.Cooldowns != nil {
		out.Cooldowns = make(map[string]int, len(s.Cooldowns))
		for id, turns := range s.Cooldowns {
			out.Cooldowns[id] = turns
		}
	}
	return &out
}

// Combatant is one side's battle slice.
type Combatant struct {
	// FlagshipHull is the side's life total; zero loses the battle.
	FlagshipHull int `json:"flagship_hull"`
	// Energy is the spendable budget this turn.
	Energy int `json:"energy"`
	// EnergyMax caps energy after regeneration and reserve use.
	EnergyMax int `json:"energy_max"`
	// EnergyRegen is the per-turn gain from the side's second turn on.
	EnergyRegen int `json:"energy_regen"`
	// Deck is the remaining draw pile, top first.
	Deck []string `json:"deck,omitempty"`
	// Hand is the playable cards in draw order.
	Hand []string `json:"hand,omitempty"`
	// Discard holds destroyed ships and trimmed cards.
	Discard []string `json:"discard,omitempty"`
	// Battlefield is the five slots; index = position - 1.
	Battlefield [BattlefieldSlots]*Ship `json:"battlefield"`
	// MulliganTaken marks the one-shot opening redraw as used.
	MulliganTaken bool `json:"mulligan_taken,omitempty"`
	// ShipsDestroyed counts enemy ships this side has destroyed across
	// the whole battle.
	ShipsDestroyed int `json:"ships_destroyed,omitempty"`
	// ShipsDestroyedTurn and CardsPlayedTurn track the same within the
	// current turn and reset at this side's turn start.
	ShipsDestroyedTurn int `json:"ships_destroyed_turn,omitempty"`
	CardsPlayedTurn    int `json:"cards_played_turn,omitempty"`
}

// ShipAt returns the ship at a 1-based position, nil when empty or out
// of range.
func (c *Combatant) ShipAt(position int) *Ship {
	if c == nil || position < 1 || position > BattlefieldSlots {
		return nil
	}
	return c.Battlefield[position-1]
}

// DeployedShips reports how many slots are occupied.
func (c *Combatant) DeployedShips() int {
	count := 0
	for _, ship := range c.Battlefield {
		if ship != nil {
			count++
		}
	}
	return count
}

// HandCount returns the number of cards matching the id in hand.
func (c *Combatant) HandCount(cardID string) int {
	count := 0
	for _, id := range c.Hand {
		if id == cardID {
			count++
		}
	}
	return count
}

// TotalHull is flagship hull plus the hull of every deployed ship,
// the timeout comparison metric.
func (c *Combatant) TotalHull() int {
	total := c.FlagshipHull
	for _, ship := range c.Battlefield {
		if ship != nil {
			total += ship.Hull
		}
	}
	return total
}

// Exposed reports whether the attrition condition holds: nothing on
// the field, nothing in hand, nothing left to draw.
func (c *Combatant) Exposed() bool {
	return c.DeployedShips() == 0 && len(c.Hand) == 0 && len(c.Deck) == 0
}

// clone deep-copies the combatant.
func (c Combatant) clone() Combatant {
	out := c
	out.Deck = append([]string(nil), c.Deck...)
	out.Hand = append([]string(nil), c.Hand...)
	out.Discard = append([]string(nil), c.Discard...)
	for i, ship := range c.Battlefield {
		out.Battlefield[i] = ship.clone()
	}
	return out
}

// Reserve is the second player's one-shot energy compensation.
type Reserve struct {
	// Side is the combatant entitled to the reserve.
	Side Side `json:"side,omitempty"`
	// Amount is the energy granted on use, clamped at EnergyMax.
	Amount int `json:"amount,omitempty"`
	// ExpiresTurn is the last turn number the reserve may be used on.
	ExpiresTurn int `json:"expires_turn,omitempty"`
	// Used marks the reserve as spent.
	Used bool `json:"used,omitempty"`
}

// Initiative records how the opening order was decided.
type Initiative struct {
	// First is the side that takes turn 1.
	First Side `json:"first"`
	// Reason is agility or tie.
	Reason InitiativeReason `json:"reason"`
	// PlayerAgility and OpponentAgility are the opening-hand totals.
	PlayerAgility   int `json:"player_agility"`
	OpponentAgility int `json:"opponent_agility"`
}

// State is the replayed battle snapshot. The zero value means no
// battle has started.
type State struct {
	BattleID string `json:"battle_id,omitempty"`
	QuestID  string `json:"quest_id,omitempty"`
	Phase    Phase  `json:"phase,omitempty"`
	// TurnNumber counts turns globally; odd/even alternates sides.
	TurnNumber int  `json:"turn_number,omitempty"`
	ActiveSide Side `json:"active_side,omitempty"`
	// RoundLimit bounds the battle at 2*RoundLimit turns.
	RoundLimit int        `json:"round_limit,omitempty"`
	Initiative Initiative `json:"initiative"`
	Reserve    Reserve    `json:"reserve"`
	// SeedUsed is the RNG seed recorded at battle start.
	SeedUsed int64     `json:"seed_used,omitempty"`
	Player   Combatant `json:"player"`
	Opponent Combatant `json:"opponent"`
	// Winner and Victory are set once Phase is resolved.
	Winner  Winner           `json:"winner,omitempty"`
	Victory VictoryCondition `json:"victory_condition,omitempty"`
}

// Combatant returns the slice for a side.
func (s *State) Combatant(side Side) *Combatant {
	if side == SideOpponent {
		return &s.Opponent
	}
	return &s.Player
}

// Enemy returns the slice opposing a side.
func (s *State) Enemy(side Side) *Combatant {
	return s.Combatant(Opposing(side))
}

// Active reports whether a battle is running (started and unresolved).
func (s *State) Active() bool {
	return s != nil && s.Phase != "" && s.Phase != PhaseResolved
}

// Clone deep-copies the state so deciders can advance a working copy
// without mutating the replayed snapshot.
func (s *State) Clone() *State {
	if s == nil {
		return &State{}
	}
	out := *s
	out.Player = s.Player.clone()
	out.Opponent = s.Opponent.clone()
	return &out
}

// CloneSystemState lets checkpoint stores deep-copy battle snapshots
// without importing this package.
func (s *State) CloneSystemState() any {
	return s.Clone()
}
