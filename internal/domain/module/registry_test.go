package module

import (
	"errors"
	"testing"
	"time"

	"github.com/mverberg/broadside/internal/domain/command"
	"github.com/mverberg/broadside/internal/domain/event"
)

type stubModule struct {
	id      string
	version string
	decider Decider
	folder  Folder
	factory StateFactory
}

func (m stubModule) ID() string {
	return m.id
}

func (m stubModule) Version() string {
	return m.version
}

func (m stubModule) RegisterCommands(*command.Registry) error {
	return nil
}

func (m stubModule) RegisterEvents(*event.Registry) error {
	return nil
}

func (m stubModule) EmittableEventTypes() []event.Type {
	return nil
}

func (m stubModule) Decider() Decider {
	return m.decider
}

func (m stubModule) Folder() Folder {
	return m.folder
}

func (m stubModule) StateFactory() StateFactory {
	return m.factory
}

type stubDecider struct {
	called   bool
	state    any
	cmd      command.Command
	decision command.Decision
}

func (d *stubDecider) Decide(state any, cmd command.Command, now func() time.Time) command.Decision {
	d.called = true
	d.state = state
	d.cmd = cmd
	return d.decision
}

type stubFolder struct {
	called bool
	state  any
	evt    event.Event
	result any
	err    error
}

func (f *stubFolder) Fold(state any, evt event.Event) (any, error) {
	f.called = true
	f.state = state
	f.evt = evt
	return f.result, f.err
}

func (f *stubFolder) FoldHandledTypes() []event.Type {
	return nil
}

func TestRegistryRegister_RequiresSystemID(t *testing.T) {
	registry := NewRegistry()
	err := registry.Register(stubModule{id: "", version: "1"})
	if !errors.Is(err, ErrSystemIDRequired) {
		t.Fatalf("expected ErrSystemIDRequired, got %v", err)
	}
}

func TestRegistryRegister_RequiresVersion(t *testing.T) {
	registry := NewRegistry()
	err := registry.Register(stubModule{id: "tactical", version: ""})
	if !errors.Is(err, ErrSystemVersionRequired) {
		t.Fatalf("expected ErrSystemVersionRequired, got %v", err)
	}
}

func TestRegistryRegister_RejectsDuplicate(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(stubModule{id: "tactical", version: "1"}); err != nil {
		t.Fatalf("register module: %v", err)
	}
	err := registry.Register(stubModule{id: "tactical", version: "1"})
	if !errors.Is(err, ErrSystemAlreadyRegistered) {
		t.Fatalf("expected ErrSystemAlreadyRegistered, got %v", err)
	}
}

func TestRegistryGet_UsesDefaultVersion(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(stubModule{id: "tactical", version: "1"}); err != nil {
		t.Fatalf("register module 1: %v", err)
	}
	if err := registry.Register(stubModule{id: "tactical", version: "legacy"}); err != nil {
		t.Fatalf("register module legacy: %v", err)
	}

	module := registry.Get("tactical", "")
	if module == nil {
		t.Fatal("expected module")
	}
	if module.Version() != "1" {
		t.Fatalf("version = %s, want %s", module.Version(), "1")
	}
}

func TestRouteCommand_UsesModuleDecider(t *testing.T) {
	registry := NewRegistry()
	decider := &stubDecider{decision: command.Accept(event.Event{Type: event.Type("sys.tactical.turn_ended")})}
	if err := registry.Register(stubModule{id: "tactical", version: "1", decider: decider}); err != nil {
		t.Fatalf("register module: %v", err)
	}

	cmd := command.Command{
		GameID:        "game-1",
		Type:          command.Type("sys.tactical.turn.end"),
		SystemID:      "tactical",
		SystemVersion: "1",
	}
	decision, err := RouteCommand(registry, "state", cmd, nil)
	if err != nil {
		t.Fatalf("route command: %v", err)
	}
	if !decider.called {
		t.Fatal("expected decider to be called")
	}
	if decider.state != "state" {
		t.Fatalf("decider state = %v, want state", decider.state)
	}
	if len(decision.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(decision.Events))
	}
}

func TestRouteCommand_MissingModule(t *testing.T) {
	registry := NewRegistry()

	cmd := command.Command{
		GameID:        "game-1",
		Type:          command.Type("sys.tactical.turn.end"),
		SystemID:      "tactical",
		SystemVersion: "1",
	}
	_, err := RouteCommand(registry, nil, cmd, nil)
	if !errors.Is(err, ErrModuleNotFound) {
		t.Fatalf("expected ErrModuleNotFound, got %v", err)
	}
}

func TestRouteCommand_MissingSystemMetadata(t *testing.T) {
	registry := NewRegistry()

	_, err := RouteCommand(registry, nil, command.Command{GameID: "game-1"}, nil)
	if !errors.Is(err, ErrSystemIDRequired) {
		t.Fatalf("expected ErrSystemIDRequired, got %v", err)
	}

	_, err = RouteCommand(registry, nil, command.Command{GameID: "game-1", SystemID: "tactical"}, nil)
	if !errors.Is(err, ErrSystemVersionRequired) {
		t.Fatalf("expected ErrSystemVersionRequired, got %v", err)
	}
}

func TestRouteEvent_UsesModuleFolder(t *testing.T) {
	registry := NewRegistry()
	folder := &stubFolder{result: "next-state"}
	if err := registry.Register(stubModule{id: "tactical", version: "1", folder: folder}); err != nil {
		t.Fatalf("register module: %v", err)
	}

	evt := event.Event{
		GameID:        "game-1",
		Type:          event.Type("sys.tactical.turn_ended"),
		SystemID:      "tactical",
		SystemVersion: "1",
	}
	state, err := RouteEvent(registry, "prev-state", evt)
	if err != nil {
		t.Fatalf("route event: %v", err)
	}
	if !folder.called {
		t.Fatal("expected folder to be called")
	}
	if folder.state != "prev-state" {
		t.Fatalf("folder state = %v, want prev-state", folder.state)
	}
	if state != "next-state" {
		t.Fatalf("state = %v, want next-state", state)
	}
}

func TestRouteEvent_MissingFolder(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(stubModule{id: "tactical", version: "1"}); err != nil {
		t.Fatalf("register module: %v", err)
	}

	evt := event.Event{
		GameID:        "game-1",
		Type:          event.Type("sys.tactical.turn_ended"),
		SystemID:      "tactical",
		SystemVersion: "1",
	}
	_, err := RouteEvent(registry, nil, evt)
	if !errors.Is(err, ErrFolderRequired) {
		t.Fatalf("expected ErrFolderRequired, got %v", err)
	}
}

func TestRegistryDefaultVersion(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(stubModule{id: "tactical", version: "1"}); err != nil {
		t.Fatalf("register module: %v", err)
	}
	if got := registry.DefaultVersion("tactical"); got != "1" {
		t.Fatalf("default version = %s, want 1", got)
	}
	if got := registry.DefaultVersion("missing"); got != "" {
		t.Fatalf("default version for missing = %s, want empty", got)
	}
}
