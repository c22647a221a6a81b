package battle

import (
	"testing"

	"github.com/mverberg/broadside/internal/catalog"
	"github.com/mverberg/broadside/internal/domain/event"
	"github.com/mverberg/broadside/internal/domain/game"
)

func TestDecideShipAttackDamagesLaneTarget(t *testing.T) {
	s := playingState()
	placeShip(t, &s.Player, 2, "destroyer-1")
	placeShip(t, &s.Opponent, 2, "cruiser-4")

	decision := decide(s, tacticalCommand(commandTypeShipAttack, `{"position": 2}`))
	requireAccepted(t, decision, 2)

	var attacked ShipAttackedPayload
	decodeInto(t, decision.Events[0], &attacked)
	if attacked.TargetKind != AttackTargetShip || attacked.TargetCardID != "cruiser-4" {
		t.Fatalf("attack resolved = %+v, want the lane ship cruiser-4", attacked)
	}
	var damaged ShipDamagedPayload
	decodeInto(t, decision.Events[1], &damaged)
	if damaged.Amount != 2 || damaged.HullBefore != 6 || damaged.HullAfter != 4 {
		t.Fatalf("damage = %+v, want 2 off attack 4 minus defense 2", damaged)
	}
	if damaged.Source != DamageAttack || damaged.SourceCardID != "destroyer-1" {
		t.Fatalf("damage source = %s/%s, want attack by destroyer-1", damaged.Source, damaged.SourceCardID)
	}

	folded := foldAll(t, s, decision.Events)
	if !folded.Player.ShipAt(2).Exhausted {
		t.Fatal("attacking must exhaust the attacker")
	}
	if folded.Opponent.ShipAt(2).Hull != 4 {
		t.Fatalf("target hull = %d, want 4", folded.Opponent.ShipAt(2).Hull)
	}
}

func TestDecideShipAttackShieldRaisesDefense(t *testing.T) {
	s := playingState()
	placeShip(t, &s.Player, 1, "destroyer-1")
	target := placeShip(t, &s.Opponent, 1, "corvette-2")
	target.Statuses = []StatusEffect{{Kind: catalog.StatusShield, Magnitude: 2, Remaining: 2, Stacks: 1}}

	decision := decide(s, tacticalCommand(commandTypeShipAttack, `{"position": 1}`))
	requireAccepted(t, decision, 2)
	var damaged ShipDamagedPayload
	decodeInto(t, decision.Events[1], &damaged)
	if damaged.Amount != 1 {
		t.Fatalf("damage = %d, want 1 with shielded defense 3 against attack 4", damaged.Amount)
	}
}

func TestDecideShipAttackHitsFlagshipThroughEmptyLane(t *testing.T) {
	s := playingState()
	placeShip(t, &s.Player, 3, "destroyer-1")

	decision := decide(s, tacticalCommand(commandTypeShipAttack, `{"position": 3}`))
	requireAccepted(t, decision, 2)

	var attacked ShipAttackedPayload
	decodeInto(t, decision.Events[0], &attacked)
	if attacked.TargetKind != AttackTargetFlagship {
		t.Fatalf("target = %s, want flagship", attacked.TargetKind)
	}
	var damaged FlagshipDamagedPayload
	decodeInto(t, decision.Events[1], &damaged)
	if damaged.Combatant != SideOpponent || damaged.Amount != 4 || damaged.HullAfter != 14 {
		t.Fatalf("flagship damage = %+v, want 4 off the opponent's 18", damaged)
	}

	folded := foldAll(t, s, decision.Events)
	if folded.Opponent.FlagshipHull != 14 {
		t.Fatalf("flagship = %d, want 14", folded.Opponent.FlagshipHull)
	}
}

func TestDecideShipAttackLethalFlagshipResolvesBattle(t *testing.T) {
	s := playingState()
	s.Player.ShipsDestroyed = 2
	s.Opponent.FlagshipHull = 3
	placeShip(t, &s.Player, 5, "destroyer-1")

	decision := decide(s, tacticalCommand(commandTypeShipAttack, `{"position": 5}`))
	requireAccepted(t, decision, 5)
	got := eventTypes(decision.Events)
	want := []event.Type{EventTypeShipAttacked, EventTypeFlagshipDamaged, EventTypeBattleResolved, event.TypeGamePhaseChanged, event.TypeBattleRecorded}
	for i, wt := range want {
		if got[i] != wt {
			t.Fatalf("event sequence = %v, want %v", got, want)
		}
	}

	var resolved BattleResolvedPayload
	decodeInto(t, decision.Events[2], &resolved)
	if resolved.Winner != WinnerPlayer || resolved.VictoryCondition != VictoryFlagshipDestroyed {
		t.Fatalf("resolution = %+v, want player by flagship_destroyed", resolved)
	}
	if resolved.Turns != 3 || resolved.OpponentHullRemaining != 0 {
		t.Fatalf("resolution = %+v, want turn 3 with the opponent at 0", resolved)
	}

	phase := decision.Events[3]
	if phase.SystemID != "" {
		t.Fatalf("phase change carries system id %s", phase.SystemID)
	}
	var change game.PhaseChangedPayload
	decodeInto(t, phase, &change)
	if change.From != game.PhaseBattling || change.To != game.PhaseIdle {
		t.Fatalf("phase change = %s->%s, want battling->idle", change.From, change.To)
	}

	var record game.BattleRecordedPayload
	decodeInto(t, decision.Events[4], &record)
	if record.Result != game.ResultWon || record.VictoryCondition != string(VictoryFlagshipDestroyed) {
		t.Fatalf("record = %+v, want a won flagship_destroyed battle", record)
	}
	if record.BattleID != "battle-1" || record.QuestID != "quest-1" || record.Turns != 3 || record.ShipsDestroyed != 2 {
		t.Fatalf("record = %+v, want battle-1/quest-1 turn 3 with 2 kills", record)
	}

	folded := foldAll(t, s, decision.Events)
	if folded.Phase != PhaseResolved || folded.Winner != WinnerPlayer {
		t.Fatalf("folded outcome = %s/%s, want resolved/player", folded.Phase, folded.Winner)
	}
}

func TestDecideShipAttackDestroysAndCreditsKill(t *testing.T) {
	s := playingState()
	placeShip(t, &s.Player, 1, "destroyer-1")
	placeShip(t, &s.Opponent, 1, "corvette-2")

	decision := decide(s, tacticalCommand(commandTypeShipAttack, `{"position": 1}`))
	requireAccepted(t, decision, 3)

	var destroyed ShipDestroyedPayload
	decodeInto(t, decision.Events[2], &destroyed)
	if destroyed.CardID != "corvette-2" || destroyed.DestroyerCombatant != SidePlayer || destroyed.DestroyerCardID != "destroyer-1" {
		t.Fatalf("destruction = %+v, want corvette-2 credited to destroyer-1", destroyed)
	}

	folded := foldAll(t, s, decision.Events)
	if folded.Opponent.ShipAt(1) != nil {
		t.Fatal("destroyed ship still on the field")
	}
	if folded.Opponent.Discard[len(folded.Opponent.Discard)-1] != "corvette-2" {
		t.Fatalf("discard = %v, want corvette-2 on top", folded.Opponent.Discard)
	}
	if folded.Player.ShipsDestroyed != 1 {
		t.Fatalf("kills = %d, want 1", folded.Player.ShipsDestroyed)
	}
}

func TestDecideShipAttackDetonateRetaliates(t *testing.T) {
	s := playingState()
	placeShip(t, &s.Player, 2, "corvette-1")
	placeShip(t, &s.Opponent, 2, "fireship-1")

	decision := decide(s, tacticalCommand(commandTypeShipAttack, `{"position": 2}`))
	requireAccepted(t, decision, 4)
	got := eventTypes(decision.Events)
	want := []event.Type{EventTypeShipAttacked, EventTypeShipDamaged, EventTypeShipDestroyed, EventTypeShipDamaged}
	for i, wt := range want {
		if got[i] != wt {
			t.Fatalf("event sequence = %v, want %v", got, want)
		}
	}

	var blast ShipDamagedPayload
	decodeInto(t, decision.Events[3], &blast)
	if blast.Combatant != SidePlayer || blast.CardID != "corvette-1" || blast.Amount != 2 || blast.Source != DamageDetonate {
		t.Fatalf("detonation = %+v, want 2 back onto corvette-1", blast)
	}

	folded := foldAll(t, s, decision.Events)
	if folded.Player.ShipAt(2).Hull != 1 {
		t.Fatalf("attacker hull = %d, want 1 after the blast", folded.Player.ShipAt(2).Hull)
	}
}

func TestDecideShipAttackDetonateCascadeStopsAtEmptySlot(t *testing.T) {
	s := playingState()
	placeShip(t, &s.Player, 4, "fireship-1")
	placeShip(t, &s.Opponent, 4, "fireship-2").Hull = 1

	decision := decide(s, tacticalCommand(commandTypeShipAttack, `{"position": 4}`))
	requireAccepted(t, decision, 5)
	got := eventTypes(decision.Events)
	want := []event.Type{EventTypeShipAttacked, EventTypeShipDamaged, EventTypeShipDestroyed, EventTypeShipDamaged, EventTypeShipDestroyed}
	for i, wt := range want {
		if got[i] != wt {
			t.Fatalf("event sequence = %v, want %v", got, want)
		}
	}

	folded := foldAll(t, s, decision.Events)
	if folded.Player.ShipAt(4) != nil || folded.Opponent.ShipAt(4) != nil {
		t.Fatal("mutual detonation must clear both slots")
	}
	if folded.Player.ShipsDestroyed != 1 || folded.Opponent.ShipsDestroyed != 1 {
		t.Fatalf("kills = %d/%d, want one each", folded.Player.ShipsDestroyed, folded.Opponent.ShipsDestroyed)
	}
}

func TestDecideShipAttackSalvageDrawsForOwner(t *testing.T) {
	s := playingState()
	placeShip(t, &s.Player, 1, "destroyer-1")
	placeShip(t, &s.Opponent, 1, "salvager-1")

	decision := decide(s, tacticalCommand(commandTypeShipAttack, `{"position": 1}`))
	requireAccepted(t, decision, 4)

	var drawn CardDrawnPayload
	decodeInto(t, decision.Events[3], &drawn)
	if drawn.Combatant != SideOpponent || drawn.CardID != "interceptor-4" || drawn.Source != DrawSalvage {
		t.Fatalf("salvage draw = %+v, want interceptor-4 for the opponent", drawn)
	}

	folded := foldAll(t, s, decision.Events)
	if len(folded.Opponent.Deck) != 0 || folded.Opponent.HandCount("interceptor-4") != 1 {
		t.Fatalf("deck %v hand %v, want the salvage card drawn", folded.Opponent.Deck, folded.Opponent.Hand)
	}
}

func TestDecideShipAttackSalvageSkipsEmptyDeck(t *testing.T) {
	s := playingState()
	s.Opponent.Deck = nil
	placeShip(t, &s.Player, 1, "destroyer-1")
	placeShip(t, &s.Opponent, 1, "salvager-1")

	decision := decide(s, tacticalCommand(commandTypeShipAttack, `{"position": 1}`))
	requireAccepted(t, decision, 3)
}

func TestDecideShipAttackRejectsExhausted(t *testing.T) {
	s := playingState()
	placeShip(t, &s.Player, 1, "destroyer-1").Exhausted = true
	decision := decide(s, tacticalCommand(commandTypeShipAttack, `{"position": 1}`))
	requireRejected(t, decision, rejectionCodeShipExhausted)
}

func TestDecideShipAttackRejectsStunned(t *testing.T) {
	s := playingState()
	ship := placeShip(t, &s.Player, 1, "destroyer-1")
	ship.Statuses = []StatusEffect{{Kind: catalog.StatusStun, Remaining: 1, Stacks: 1}}
	decision := decide(s, tacticalCommand(commandTypeShipAttack, `{"position": 1}`))
	requireRejected(t, decision, rejectionCodeShipStunned)
}

func TestDecideShipAttackRejectsEmptySlot(t *testing.T) {
	decision := decide(playingState(), tacticalCommand(commandTypeShipAttack, `{"position": 1}`))
	requireRejected(t, decision, rejectionCodePositionEmpty)
}

func TestDecideAbilityActivateBarrageHitsLaneTarget(t *testing.T) {
	s := playingState()
	placeShip(t, &s.Player, 2, "destroyer-1")
	placeShip(t, &s.Opponent, 2, "cruiser-4")

	decision := decide(s, tacticalCommand(commandTypeAbilityActivate, `{
		"position": 2,
		"ability_id": "barrage"
	}`))
	requireAccepted(t, decision, 3)

	var cost EnergySpentPayload
	decodeInto(t, decision.Events[0], &cost)
	if cost.Amount != 2 || cost.Reason != ReasonAbility {
		t.Fatalf("energy spent = %+v, want 2 for the ability", cost)
	}
	var activated AbilityActivatedPayload
	decodeInto(t, decision.Events[1], &activated)
	if activated.AbilityID != "barrage" || activated.Cooldown != 2 || activated.TargetCardID != "cruiser-4" {
		t.Fatalf("activation = %+v, want barrage on cruiser-4 with cooldown 2", activated)
	}
	var damaged ShipDamagedPayload
	decodeInto(t, decision.Events[2], &damaged)
	if damaged.Amount != 2 || damaged.Source != DamageAbility {
		t.Fatalf("damage = %+v, want the flat 2 ignoring defense", damaged)
	}

	folded := foldAll(t, s, decision.Events)
	ship := folded.Player.ShipAt(2)
	if ship.CooldownRemaining("barrage") != 2 {
		t.Fatalf("cooldown = %d, want 2", ship.CooldownRemaining("barrage"))
	}
	if ship.Exhausted {
		t.Fatal("abilities must not exhaust the ship")
	}
}

func TestDecideAbilityActivateAllowsExhaustedShip(t *testing.T) {
	s := playingState()
	placeShip(t, &s.Player, 2, "destroyer-1").Exhausted = true
	placeShip(t, &s.Opponent, 2, "cruiser-4")

	decision := decide(s, tacticalCommand(commandTypeAbilityActivate, `{
		"position": 2,
		"ability_id": "barrage"
	}`))
	requireAccepted(t, decision, 3)
}

func TestDecideAbilityActivateRejectsCooldown(t *testing.T) {
	s := playingState()
	ship := placeShip(t, &s.Player, 2, "destroyer-1")
	ship.Cooldowns = map[string]int{"barrage": 1}
	placeShip(t, &s.Opponent, 2, "cruiser-4")

	decision := decide(s, tacticalCommand(commandTypeAbilityActivate, `{
		"position": 2,
		"ability_id": "barrage"
	}`))
	requireRejected(t, decision, rejectionCodeAbilityOnCooldown)
}

func TestDecideAbilityActivateRejectsStunned(t *testing.T) {
	s := playingState()
	ship := placeShip(t, &s.Player, 2, "destroyer-1")
	ship.Statuses = []StatusEffect{{Kind: catalog.StatusStun, Remaining: 1, Stacks: 1}}
	placeShip(t, &s.Opponent, 2, "cruiser-4")

	decision := decide(s, tacticalCommand(commandTypeAbilityActivate, `{
		"position": 2,
		"ability_id": "barrage"
	}`))
	requireRejected(t, decision, rejectionCodeShipStunned)
}

func TestDecideAbilityActivateRejectsUnknownAbility(t *testing.T) {
	s := playingState()
	placeShip(t, &s.Player, 2, "corvette-1")
	decision := decide(s, tacticalCommand(commandTypeAbilityActivate, `{
		"position": 2,
		"ability_id": "barrage"
	}`))
	requireRejected(t, decision, rejectionCodeAbilityUnknown)
}

func TestDecideAbilityActivateRejectsEnergyShortfall(t *testing.T) {
	s := playingState()
	s.Player.Energy = 1
	placeShip(t, &s.Player, 2, "destroyer-1")
	placeShip(t, &s.Opponent, 2, "cruiser-4")

	decision := decide(s, tacticalCommand(commandTypeAbilityActivate, `{
		"position": 2,
		"ability_id": "barrage"
	}`))
	requireRejected(t, decision, rejectionCodeEnergyInsufficient)
}

func TestDecideAbilityActivateLaneRuleBlocksCrossLane(t *testing.T) {
	s := playingState()
	placeShip(t, &s.Player, 2, "destroyer-1")
	placeShip(t, &s.Opponent, 4, "cruiser-4")

	decision := decide(s, tacticalCommand(commandTypeAbilityActivate, `{
		"position": 2,
		"ability_id": "barrage",
		"target_position": 4
	}`))
	requireRejected(t, decision, rejectionCodeTargetInvalid)
}

func TestDecideAbilityActivateRejectsEmptyLaneTarget(t *testing.T) {
	s := playingState()
	placeShip(t, &s.Player, 2, "destroyer-1")
	decision := decide(s, tacticalCommand(commandTypeAbilityActivate, `{
		"position": 2,
		"ability_id": "barrage"
	}`))
	requireRejected(t, decision, rejectionCodeTargetInvalid)
}

func TestDecideAbilityActivateLongShotCrossesLanes(t *testing.T) {
	s := playingState()
	placeShip(t, &s.Player, 2, "artillery-1")
	placeShip(t, &s.Opponent, 4, "corvette-2")

	decision := decide(s, tacticalCommand(commandTypeAbilityActivate, `{
		"position": 2,
		"ability_id": "long_shot",
		"target_position": 4
	}`))
	requireAccepted(t, decision, 3)

	var damaged ShipDamagedPayload
	decodeInto(t, decision.Events[2], &damaged)
	if damaged.Position != 4 || damaged.CardID != "corvette-2" || damaged.Amount != 2 {
		t.Fatalf("damage = %+v, want 2 on corvette-2 at 4", damaged)
	}
}

func TestDecideAbilityActivateObliterateIgnoresBlockedLane(t *testing.T) {
	s := playingState()
	placeShip(t, &s.Player, 3, "dreadnought-1")
	placeShip(t, &s.Opponent, 3, "cruiser-4")

	decision := decide(s, tacticalCommand(commandTypeAbilityActivate, `{
		"position": 3,
		"ability_id": "obliterate"
	}`))
	requireAccepted(t, decision, 3)

	var activated AbilityActivatedPayload
	decodeInto(t, decision.Events[1], &activated)
	if !activated.TargetFlagship || activated.TargetCombatant != SideOpponent {
		t.Fatalf("activation = %+v, want the enemy flagship", activated)
	}
	var damaged FlagshipDamagedPayload
	decodeInto(t, decision.Events[2], &damaged)
	if damaged.Amount != 3 || damaged.HullAfter != 15 {
		t.Fatalf("flagship damage = %+v, want 3 off 18", damaged)
	}
}

func TestDecideAbilityActivatePatchUpHeals(t *testing.T) {
	s := playingState()
	placeShip(t, &s.Player, 1, "tender-1")
	placeShip(t, &s.Player, 2, "corvette-1").Hull = 1

	decision := decide(s, tacticalCommand(commandTypeAbilityActivate, `{
		"position": 1,
		"ability_id": "patch_up",
		"target_position": 2
	}`))
	requireAccepted(t, decision, 3)

	var healed ShipHealedPayload
	decodeInto(t, decision.Events[2], &healed)
	if healed.CardID != "corvette-1" || healed.Amount != 2 || healed.HullAfter != 3 {
		t.Fatalf("heal = %+v, want +2 to 3", healed)
	}

	folded := foldAll(t, s, decision.Events)
	if folded.Player.ShipAt(2).Hull != 3 {
		t.Fatalf("hull = %d, want 3", folded.Player.ShipAt(2).Hull)
	}
}

func TestDecideAbilityActivateHealClampsAtMaxHull(t *testing.T) {
	s := playingState()
	placeShip(t, &s.Player, 1, "tender-1")
	placeShip(t, &s.Player, 2, "corvette-1").Hull = 2

	decision := decide(s, tacticalCommand(commandTypeAbilityActivate, `{
		"position": 1,
		"ability_id": "patch_up",
		"target_position": 2
	}`))
	requireAccepted(t, decision, 3)
	var healed ShipHealedPayload
	decodeInto(t, decision.Events[2], &healed)
	if healed.Amount != 1 || healed.HullAfter != 3 {
		t.Fatalf("heal = %+v, want the clamped 1", healed)
	}
}

func TestDecideAbilityActivateRejectsFullHullHeal(t *testing.T) {
	s := playingState()
	placeShip(t, &s.Player, 1, "tender-1")
	placeShip(t, &s.Player, 2, "corvette-1")

	decision := decide(s, tacticalCommand(commandTypeAbilityActivate, `{
		"position": 1,
		"ability_id": "patch_up",
		"target_position": 2
	}`))
	requireRejected(t, decision, rejectionCodeHealNoEffect)
}

func TestDecideAbilityActivateAegisShieldsAlly(t *testing.T) {
	s := playingState()
	placeShip(t, &s.Player, 1, "warden-1")
	placeShip(t, &s.Player, 3, "corvette-1")

	decision := decide(s, tacticalCommand(commandTypeAbilityActivate, `{
		"position": 1,
		"ability_id": "aegis",
		"target_position": 3
	}`))
	requireAccepted(t, decision, 3)

	var applied StatusAppliedPayload
	decodeInto(t, decision.Events[2], &applied)
	if applied.Status != catalog.StatusShield || applied.Magnitude != 2 || applied.Duration != 2 {
		t.Fatalf("status = %+v, want shield 2 for 2 turns", applied)
	}
	if applied.SourceCardID != "warden-1" {
		t.Fatalf("source = %s, want warden-1", applied.SourceCardID)
	}

	folded := foldAll(t, s, decision.Events)
	target := folded.Player.ShipAt(3)
	if !target.HasStatus(catalog.StatusShield) {
		t.Fatal("shield missing after fold")
	}
	if target.EffectiveDefense() != 3 {
		t.Fatalf("effective defense = %d, want base 1 plus shield 2", target.EffectiveDefense())
	}
}

func TestDecideAbilityActivateIgniteBurnsTarget(t *testing.T) {
	s := playingState()
	placeShip(t, &s.Player, 2, "igniter-1")
	placeShip(t, &s.Opponent, 2, "cruiser-4")

	decision := decide(s, tacticalCommand(commandTypeAbilityActivate, `{
		"position": 2,
		"ability_id": "ignite"
	}`))
	requireAccepted(t, decision, 3)

	var applied StatusAppliedPayload
	decodeInto(t, decision.Events[2], &applied)
	if applied.Status != catalog.StatusBurn || applied.Magnitude != 1 || applied.Duration != 2 {
		t.Fatalf("status = %+v, want burn 1 for 2 turns", applied)
	}

	folded := foldAll(t, s, decision.Events)
	if !folded.Opponent.ShipAt(2).HasStatus(catalog.StatusBurn) {
		t.Fatal("burn missing after fold")
	}
}

func TestDecideAbilityActivateSuppressStunsForOneTurn(t *testing.T) {
	s := playingState()
	placeShip(t, &s.Player, 2, "suppressor-1")
	placeShip(t, &s.Opponent, 2, "cruiser-4")

	decision := decide(s, tacticalCommand(commandTypeAbilityActivate, `{
		"position": 2,
		"ability_id": "suppress"
	}`))
	requireAccepted(t, decision, 3)

	folded := foldAll(t, s, decision.Events)
	if !folded.Opponent.ShipAt(2).Stunned() {
		t.Fatal("target not stunned after fold")
	}

	folded.ActiveSide = SideOpponent
	attack := decide(folded, opponentCommand(commandTypeShipAttack, `{"position": 2}`))
	requireRejected(t, attack, rejectionCodeShipStunned)
}

func TestResolveAbilityTargetFlagshipNeedsClearLane(t *testing.T) {
	s := playingState()
	placeShip(t, &s.Player, 2, "corvette-1")
	placeShip(t, &s.Opponent, 2, "cruiser-4")
	ability := catalog.Ability{ID: "ram", Target: catalog.TargetEnemyFlagship}

	if _, rejection := resolveAbilityTarget(s, SidePlayer, 2, 0, ability); rejection == nil {
		t.Fatal("blocked lane must reject a non-bypassing flagship ability")
	}

	s.Opponent.Battlefield[1] = nil
	target, rejection := resolveAbilityTarget(s, SidePlayer, 2, 0, ability)
	if rejection != nil {
		t.Fatalf("clear lane rejected: %+v", rejection)
	}
	if !target.flagship || target.side != SideOpponent {
		t.Fatalf("target = %+v, want the opponent flagship", target)
	}
}

func TestResolveAbilityTargetSelfUsesCaster(t *testing.T) {
	s := playingState()
	ship := placeShip(t, &s.Player, 3, "corvette-1")
	ability := catalog.Ability{ID: "brace", Target: catalog.TargetSelf}

	target, rejection := resolveAbilityTarget(s, SidePlayer, 3, 0, ability)
	if rejection != nil {
		t.Fatalf("self target rejected: %+v", rejection)
	}
	if target.ship != ship || target.position != 3 || target.side != SidePlayer {
		t.Fatalf("target = %+v, want the caster at 3", target)
	}
}
