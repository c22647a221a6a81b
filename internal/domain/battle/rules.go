package battle

// Battle rule constants. Deciders bake the derived values into event
// payloads, so changing a constant never rewrites history.
const (
	// BattlefieldSlots is the number of positions per side.
	BattlefieldSlots = 5
	// DeckSizeMin and DeckSizeMax bound deck construction.
	DeckSizeMin = 20
	DeckSizeMax = 40
	// OpeningHandSize is drawn at battle start.
	OpeningHandSize = 5
	// HandMax is enforced by paid draws and end-of-turn trimming.
	HandMax = 7
	// BaseStartingEnergy is the first player's opening budget.
	BaseStartingEnergy = 3
	// SecondPlayerEnergyBonus compensates the side acting second.
	SecondPlayerEnergyBonus = 1
	// EnergyMax caps a combatant's energy.
	EnergyMax = 10
	// EnergyRegenPerTurn is gained from each side's second turn on.
	EnergyRegenPerTurn = 3
	// ReserveEnergyAmount is the second player's one-shot bonus.
	ReserveEnergyAmount = 2
	// ReserveExpiresTurn is the last turn the reserve may be used on.
	ReserveExpiresTurn = 4
	// MoveCost is the energy price of repositioning a ship.
	MoveCost = 1
	// PaidDrawCost is the energy price of an extra draw.
	PaidDrawCost = 2
	// AttritionDamage hits an exposed combatant at their turn start.
	AttritionDamage = 2
	// DefaultRoundLimit bounds the battle when the start command does
	// not specify one; the battle ends after 2*RoundLimit turns.
	DefaultRoundLimit = 10
)

// AttackDamage is the plain-attack formula: attack minus effective
// defense, never below 1.
func AttackDamage(attack, defense int) int {
	damage := attack - defense
	if damage < 1 {
		return 1
	}
	return damage
}

// validPosition reports whether a 1-based battlefield position is in
// range.
func validPosition(position int) bool {
	return position >= 1 && position <= BattlefieldSlots
}
