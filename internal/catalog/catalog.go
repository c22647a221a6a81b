// Package catalog holds the static ship-card definitions referenced by deck
// validation and battle setup.
//
// The catalog is consulted only on the decide path: accepted events carry a
// full snapshot of every stat they need, so folds and replay never read it.
// Changing the catalog therefore never changes the meaning of an existing
// journal.
package catalog

import (
	"fmt"
	"sort"
)

// TriggerKind identifies what happens when a ship is destroyed.
type TriggerKind string

const (
	// TriggerNone marks ships with no destroyed trigger.
	TriggerNone TriggerKind = ""
	// TriggerDetonate damages the destroying ship when this ship dies.
	TriggerDetonate TriggerKind = "detonate"
	// TriggerSalvage lets the owner draw a card when this ship dies.
	TriggerSalvage TriggerKind = "salvage"
)

// EffectKind identifies what an ability does when activated.
type EffectKind string

const (
	// EffectDamage deals direct damage to the resolved target.
	EffectDamage EffectKind = "damage"
	// EffectHeal restores hull on a friendly ship, clamped at its maximum.
	EffectHeal EffectKind = "heal"
	// EffectStatus applies a status effect to the resolved target.
	EffectStatus EffectKind = "status"
)

// TargetKind identifies what an ability may be aimed at.
type TargetKind string

const (
	// TargetEnemyShip aims at an enemy battlefield slot.
	TargetEnemyShip TargetKind = "enemy_ship"
	// TargetFriendlyShip aims at one of the caster's own slots.
	TargetFriendlyShip TargetKind = "friendly_ship"
	// TargetEnemyFlagship aims directly at the enemy flagship.
	TargetEnemyFlagship TargetKind = "enemy_flagship"
	// TargetSelf aims at the ship activating the ability.
	TargetSelf TargetKind = "self"
)

// StatusKind identifies a status effect a card ability can apply.
type StatusKind string

const (
	// StatusBurn deals start-of-turn damage per stack; stacks accumulate.
	StatusBurn StatusKind = "burn"
	// StatusShield grants bonus defense while active.
	StatusShield StatusKind = "shield"
	// StatusStun prevents attacking, moving, and ability activation.
	StatusStun StatusKind = "stun"
)

// Ability describes an activated ship ability.
type Ability struct {
	// ID is unique within the owning card.
	ID string
	// Name is the display name.
	Name string
	// Cost is the energy cost to activate.
	Cost int
	// Cooldown is the number of own turns before reactivation.
	Cooldown int
	// Target declares what the ability may be aimed at.
	Target TargetKind
	// Effect declares what the ability does.
	Effect EffectKind
	// Amount is the damage or heal magnitude, or the status magnitude.
	Amount int
	// Status is the applied status kind for EffectStatus abilities.
	Status StatusKind
	// Duration is the status duration in owner turns for EffectStatus abilities.
	Duration int
	// BypassesLaneRule frees the ability from opposing-slot targeting. Such
	// abilities may hit any enemy slot or the flagship directly.
	BypassesLaneRule bool
}

// Card describes one collectible ship card.
type Card struct {
	// ID is the unique catalog identity ("corvette-3").
	ID string
	// Name is the display name.
	Name string
	// Class is the hull class ("corvette").
	Class string
	// Cost is the energy cost to deploy.
	Cost int
	// Attack, Defense, Agility, and Hull are the combat stats snapshotted
	// into battle.started and card_deployed payloads.
	Attack  int
	Defense int
	Agility int
	Hull    int
	// Destroyed is the optional destroyed trigger.
	Destroyed TriggerKind
	// DestroyedAmount is the trigger magnitude (detonate damage).
	DestroyedAmount int
	// Abilities lists the activated abilities, if any.
	Abilities []Ability
}

// Ability returns the ability with the given id, if the card has it.
func (c Card) Ability(id string) (Ability, bool) {
	for _, ability := range c.Abilities {
		if ability.ID == id {
			return ability, true
		}
	}
	return Ability{}, false
}

var byID = buildIndex()

func buildIndex() map[string]Card {
	index := make(map[string]Card, len(cards))
	for _, card := range cards {
		if _, dup := index[card.ID]; dup {
			panic(fmt.Sprintf("catalog: duplicate card id %s", card.ID))
		}
		index[card.ID] = card
	}
	return index
}

// Get returns the card with the given id.
func Get(id string) (Card, bool) {
	card, ok := byID[id]
	return card, ok
}

// Exists reports whether a card id is in the catalog.
func Exists(id string) bool {
	_, ok := byID[id]
	return ok
}

// All returns every catalog card sorted by id.
func All() []Card {
	out := make([]Card, 0, len(byID))
	for _, card := range byID {
		out = append(out, card)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// StarterCardIDs returns the card ids granted by profile.create, sorted.
// The set is large enough to build a minimum-size deck with room to spare.
func StarterCardIDs() []string {
	out := append([]string(nil), starterCardIDs...)
	sort.Strings(out)
	return out
}
