//go:build scenario

package battle

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/mverberg/broadside/internal/domain/aggregate"
	battledomain "github.com/mverberg/broadside/internal/domain/battle"
	"github.com/mverberg/broadside/internal/domain/engine"
	"github.com/mverberg/broadside/internal/storage/integrity"
	"github.com/mverberg/broadside/internal/storage/sqlite"
)

func scenarioTimeout() time.Duration {
	return 10 * time.Second
}

// scenarioEnv is one journal shared by every scenario in the run. Each
// scenario plays under its own game id, so cross-scenario isolation
// rides on the same per-game partitioning production relies on.
type scenarioEnv struct {
	handler    *engine.Handler
	store      *sqlite.Store
	registries engine.Registries
	folder     *aggregate.Folder
}

// startEngine opens a journal in a temp dir and wires the same command
// pipeline the CLI runs, minus the terminal.
func startEngine(t *testing.T) *scenarioEnv {
	t.Helper()

	t.Setenv("BROADSIDE_EVENT_HMAC_KEY", "scenario-test-key")
	keyring, err := integrity.KeyringFromEnv()
	if err != nil {
		t.Fatalf("load keyring: %v", err)
	}

	registries, err := engine.BuildRegistries(battledomain.NewModule())
	if err != nil {
		t.Fatalf("build registries: %v", err)
	}

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "broadside.db"), keyring, registries.Events)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})

	decider, err := engine.NewCoreDecider(registries.Systems)
	if err != nil {
		t.Fatalf("core decider: %v", err)
	}
	checkpoints := store.Checkpoints()
	snapshots := store.Snapshots(registries.Systems)
	folder := &aggregate.Folder{Events: registries.Events, SystemRegistry: registries.Systems}
	loader := engine.ReplayStateLoader{
		Events:       store,
		Checkpoints:  checkpoints,
		Snapshots:    snapshots,
		Folder:       folder,
		StateFactory: func() any { return aggregate.State{} },
	}
	handler, err := engine.NewHandler(engine.HandlerConfig{
		Commands:        registries.Commands,
		Events:          registries.Events,
		Journal:         store,
		Checkpoints:     checkpoints,
		Snapshots:       snapshots,
		Gate:            engine.DecisionGate{Registry: registries.Commands},
		GateStateLoader: engine.ReplayGateStateLoader{StateLoader: loader},
		StateLoader:     loader,
		Decider:         decider,
		Folder:          folder,
	})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	return &scenarioEnv{handler: handler, store: store, registries: registries, folder: folder}
}

func repoRoot(t *testing.T) string {
	t.Helper()

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to resolve runtime caller")
	}

	dir := filepath.Dir(filename)
	for {
		candidate := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(candidate); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	t.Fatalf("go.mod not found from %s", filename)
	return ""
}
