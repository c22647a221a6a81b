package game

import (
	"errors"
	"testing"
	"time"

	"github.com/mverberg/broadside/internal/domain/command"
	"github.com/mverberg/broadside/internal/domain/event"
)

func TestRegisterCommandsValidatesProfileCreatePayload(t *testing.T) {
	registry := command.NewRegistry()
	if err := RegisterCommands(registry); err != nil {
		t.Fatalf("register commands: %v", err)
	}

	valid := command.Command{
		GameID:      "game-1",
		Type:        command.Type("profile.create"),
		ActorType:   command.ActorTypeSystem,
		PayloadJSON: []byte(`{"player_name":"Morgan"}`),
	}
	if _, err := registry.ValidateForDecision(valid); err != nil {
		t.Fatalf("valid command rejected: %v", err)
	}

	invalid := valid
	invalid.PayloadJSON = []byte(`{"player_name":1}`)
	_, err := registry.ValidateForDecision(invalid)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, command.ErrTypeUnknown) {
		t.Fatalf("expected payload validation error, got %v", err)
	}
}

func TestRegisterCommandsGatesQuestAndGrant(t *testing.T) {
	registry := command.NewRegistry()
	if err := RegisterCommands(registry); err != nil {
		t.Fatalf("register commands: %v", err)
	}

	for _, typ := range []command.Type{"cards.grant", "quest.embark", "quest.abandon"} {
		def, ok := registry.Definition(typ)
		if !ok {
			t.Fatalf("definition missing for %s", typ)
		}
		if def.Gate.Scope != command.GateScopeBattle {
			t.Fatalf("%s gate scope = %q, want battle", typ, def.Gate.Scope)
		}
		if def.Gate.AllowWhenActive {
			t.Fatalf("%s must be blocked while a battle is active", typ)
		}
	}

	def, ok := registry.Definition(command.Type("profile.create"))
	if !ok {
		t.Fatal("definition missing for profile.create")
	}
	if def.Gate.Scope != command.GateScopeNone {
		t.Fatalf("profile.create gate scope = %q, want none", def.Gate.Scope)
	}
}

func TestRegisterEventsValidatesCreatedPayload(t *testing.T) {
	registry := event.NewRegistry()
	if err := RegisterEvents(registry); err != nil {
		t.Fatalf("register events: %v", err)
	}

	valid := event.Event{
		GameID:      "game-1",
		Type:        event.TypeProfileCreated,
		Timestamp:   time.Unix(0, 0).UTC(),
		ActorType:   event.ActorTypeSystem,
		EntityType:  "profile",
		EntityID:    "game-1",
		PayloadJSON: []byte(`{"player_name":"Morgan","starter_card_ids":["interceptor-1"]}`),
	}
	if _, err := registry.ValidateForAppend(valid); err != nil {
		t.Fatalf("valid event rejected: %v", err)
	}

	invalid := valid
	invalid.PayloadJSON = []byte(`{"player_name":1}`)
	if _, err := registry.ValidateForAppend(invalid); err == nil {
		t.Fatal("expected error")
	}

	unaddressed := valid
	unaddressed.EntityType = ""
	unaddressed.EntityID = ""
	if _, err := registry.ValidateForAppend(unaddressed); err == nil {
		t.Fatal("expected entity addressing error")
	}
}

func TestRegisterEventsSplitsProjectionIntent(t *testing.T) {
	registry := event.NewRegistry()
	if err := RegisterEvents(registry); err != nil {
		t.Fatalf("register events: %v", err)
	}

	projected := map[event.Type]bool{
		event.TypeProfileCreated: true,
		event.TypeBattleRecorded: true,
	}
	for _, def := range registry.ListDefinitions() {
		want := event.IntentReplayOnly
		if projected[def.Type] {
			want = event.IntentProjectionAndReplay
		}
		if def.Intent != want {
			t.Fatalf("%s intent = %s, want %s", def.Type, def.Intent, want)
		}
	}
}

func TestRegisterEventsRejectsInvalidPhaseChange(t *testing.T) {
	registry := event.NewRegistry()
	if err := RegisterEvents(registry); err != nil {
		t.Fatalf("register events: %v", err)
	}

	evt := event.Event{
		GameID:      "game-1",
		Type:        event.TypeGamePhaseChanged,
		Timestamp:   time.Unix(0, 0).UTC(),
		ActorType:   event.ActorTypeSystem,
		EntityType:  "game",
		EntityID:    "game-1",
		PayloadJSON: []byte(`{"from":"idle","to":"sinking"}`),
	}
	if _, err := registry.ValidateForAppend(evt); err == nil {
		t.Fatal("expected invalid phase error")
	}
}
