package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mverberg/broadside/internal/domain/battle"
	"github.com/mverberg/broadside/internal/domain/engine"
	"github.com/mverberg/broadside/internal/domain/event"
	"github.com/mverberg/broadside/internal/storage/integrity"
)

func testKeyring(t *testing.T) *integrity.Keyring {
	t.Helper()
	keyring, err := integrity.NewKeyring(
		map[string][]byte{"test-key-1": []byte("0123456789abcdef0123456789abcdef")},
		"test-key-1",
	)
	if err != nil {
		t.Fatalf("create test keyring: %v", err)
	}
	return keyring
}

func testRegistries(t *testing.T) engine.Registries {
	t.Helper()
	registries, err := engine.BuildRegistries(battle.NewModule())
	if err != nil {
		t.Fatalf("build registries: %v", err)
	}
	return registries
}

// openTestStore opens the single-file store carrying both the journal and
// the projection tables, matching single-process deployments.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "broadside.db")
	store, err := Open(path, testKeyring(t), testRegistries(t).Events)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func openTestEventsStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.db")
	store, err := OpenEvents(path, testKeyring(t), testRegistries(t).Events)
	if err != nil {
		t.Fatalf("open events store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close events store: %v", err)
		}
	})
	return store
}

func openTestProjectionsStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "projections.db")
	store, err := OpenProjections(path)
	if err != nil {
		t.Fatalf("open projections store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close projections store: %v", err)
		}
	})
	return store
}

func testEvent(gameID string, minute int) event.Event {
	return event.Event{
		GameID:      gameID,
		Timestamp:   time.Date(2026, 2, 3, 12, minute, 0, 0, time.UTC),
		Type:        event.TypeProfileCreated,
		ActorType:   event.ActorTypeSystem,
		EntityType:  "profile",
		EntityID:    gameID,
		PayloadJSON: []byte(`{"player_name":"Captain"}`),
	}
}

func testBattleEvent(gameID, battleID string, minute int) event.Event {
	return event.Event{
		GameID:      gameID,
		BattleID:    battleID,
		Timestamp:   time.Date(2026, 2, 3, 13, minute, 0, 0, time.UTC),
		Type:        event.TypeBattleRecorded,
		ActorType:   event.ActorTypeSystem,
		EntityType:  "profile",
		EntityID:    gameID,
		PayloadJSON: []byte(`{"battle_id":"` + battleID + `","result":"won","victory_condition":"flagship_destroyed","turns":3}`),
	}
}
