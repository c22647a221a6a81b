package catalog

import "fmt"

// classSpec is the per-class template expanded into numbered card instances.
// Decks hold unique card instances, so each class ships several copies under
// distinct ids ("corvette-1", "corvette-2", ...).
type classSpec struct {
	class           string
	name            string
	count           int
	cost            int
	attack          int
	defense         int
	agility         int
	hull            int
	destroyed       TriggerKind
	destroyedAmount int
	abilities       []Ability
}

var classSpecs = []classSpec{
	{
		class: "interceptor", name: "Interceptor", count: 6,
		cost: 1, attack: 2, defense: 0, agility: 3, hull: 2,
	},
	{
		class: "corvette", name: "Corvette", count: 6,
		cost: 2, attack: 2, defense: 1, agility: 2, hull: 3,
	},
	{
		class: "frigate", name: "Frigate", count: 6,
		cost: 3, attack: 3, defense: 1, agility: 1, hull: 4,
	},
	{
		class: "destroyer", name: "Destroyer", count: 4,
		cost: 4, attack: 4, defense: 1, agility: 1, hull: 4,
		abilities: []Ability{{
			ID: "barrage", Name: "Barrage", Cost: 2, Cooldown: 2,
			Target: TargetEnemyShip, Effect: EffectDamage, Amount: 2,
		}},
	},
	{
		class: "cruiser", name: "Cruiser", count: 4,
		cost: 5, attack: 4, defense: 2, agility: 0, hull: 6,
	},
	{
		class: "dreadnought", name: "Dreadnought", count: 2,
		cost: 7, attack: 6, defense: 2, agility: 0, hull: 8,
		abilities: []Ability{{
			ID: "obliterate", Name: "Obliterate", Cost: 3, Cooldown: 3,
			Target: TargetEnemyFlagship, Effect: EffectDamage, Amount: 3,
			BypassesLaneRule: true,
		}},
	},
	{
		class: "fireship", name: "Fireship", count: 4,
		cost: 2, attack: 1, defense: 0, agility: 2, hull: 2,
		destroyed: TriggerDetonate, destroyedAmount: 2,
	},
	{
		class: "salvager", name: "Salvager", count: 4,
		cost: 2, attack: 1, defense: 1, agility: 1, hull: 3,
		destroyed: TriggerSalvage,
	},
	{
		class: "tender", name: "Fleet Tender", count: 4,
		cost: 3, attack: 1, defense: 1, agility: 1, hull: 4,
		abilities: []Ability{{
			ID: "patch_up", Name: "Patch Up", Cost: 1, Cooldown: 1,
			Target: TargetFriendlyShip, Effect: EffectHeal, Amount: 2,
		}},
	},
	{
		class: "artillery", name: "Artillery Barge", count: 4,
		cost: 4, attack: 2, defense: 1, agility: 0, hull: 4,
		abilities: []Ability{{
			ID: "long_shot", Name: "Long Shot", Cost: 2, Cooldown: 2,
			Target: TargetEnemyShip, Effect: EffectDamage, Amount: 2,
			BypassesLaneRule: true,
		}},
	},
	{
		class: "warden", name: "Shield Warden", count: 3,
		cost: 3, attack: 1, defense: 2, agility: 1, hull: 4,
		abilities: []Ability{{
			ID: "aegis", Name: "Aegis", Cost: 1, Cooldown: 2,
			Target: TargetFriendlyShip, Effect: EffectStatus,
			Status: StatusShield, Amount: 2, Duration: 2,
		}},
	},
	{
		class: "igniter", name: "Igniter", count: 3,
		cost: 3, attack: 2, defense: 0, agility: 2, hull: 3,
		abilities: []Ability{{
			ID: "ignite", Name: "Ignite", Cost: 2, Cooldown: 2,
			Target: TargetEnemyShip, Effect: EffectStatus,
			Status: StatusBurn, Amount: 1, Duration: 2,
		}},
	},
	{
		class: "suppressor", name: "Suppressor", count: 3,
		cost: 4, attack: 2, defense: 1, agility: 1, hull: 4,
		abilities: []Ability{{
			ID: "suppress", Name: "Suppress", Cost: 2, Cooldown: 3,
			Target: TargetEnemyShip, Effect: EffectStatus,
			Status: StatusStun, Duration: 1,
		}},
	},
}

var cards = expandClassSpecs()

func expandClassSpecs() []Card {
	var out []Card
	for _, spec := range classSpecs {
		for i := 1; i <= spec.count; i++ {
			out = append(out, Card{
				ID:              fmt.Sprintf("%s-%d", spec.class, i),
				Name:            fmt.Sprintf("%s %d", spec.name, i),
				Class:           spec.class,
				Cost:            spec.cost,
				Attack:          spec.attack,
				Defense:         spec.defense,
				Agility:         spec.agility,
				Hull:            spec.hull,
				Destroyed:       spec.destroyed,
				DestroyedAmount: spec.destroyedAmount,
				Abilities:       spec.abilities,
			})
		}
	}
	return out
}

// starterCardIDs is the collection granted on profile.create: three light
// hulls of each cheap class and a taste of every mechanic, 24 cards total.
var starterCardIDs = []string{
	"interceptor-1", "interceptor-2", "interceptor-3",
	"corvette-1", "corvette-2", "corvette-3",
	"frigate-1", "frigate-2", "frigate-3",
	"destroyer-1", "destroyer-2",
	"cruiser-1", "cruiser-2",
	"fireship-1", "fireship-2",
	"salvager-1", "salvager-2",
	"tender-1", "tender-2",
	"artillery-1", "artillery-2",
	"warden-1",
	"igniter-1",
	"suppressor-1",
}
