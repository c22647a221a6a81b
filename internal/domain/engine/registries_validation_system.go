package engine

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mverberg/broadside/internal/domain/command"
	"github.com/mverberg/broadside/internal/domain/event"
	"github.com/mverberg/broadside/internal/domain/module"
	"github.com/mverberg/broadside/internal/domain/naming"
)

// validateEmittableEventTypes ensures every event type a module declares as
// emittable is registered and owned by a system. A module claiming a core
// type as its own emittable would bypass the ownership checks at append time.
func validateEmittableEventTypes(mod module.Module, events *event.Registry) error {
	var missing []string
	var misowned []string
	for _, t := range mod.EmittableEventTypes() {
		def, ok := events.Definition(t)
		if !ok {
			missing = append(missing, string(t))
			continue
		}
		if def.Owner != event.OwnerSystem {
			misowned = append(misowned, string(t))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("system module %s emittable event types not in registry: %s",
			mod.ID(), strings.Join(missing, ", "))
	}
	if len(misowned) > 0 {
		return fmt.Errorf("system module %s emittable event types not system-owned: %s",
			mod.ID(), strings.Join(misowned, ", "))
	}
	return nil
}

// ValidateSystemFoldCoverage verifies that every system event a module
// declares emittable reaches a fold handler in that module's folder.
// Modules without a folder are skipped; they keep no snapshot state.
func ValidateSystemFoldCoverage(modules *module.Registry, events *event.Registry) error {
	if modules == nil {
		return fmt.Errorf("module registry is required for system fold coverage validation")
	}
	if events == nil {
		return fmt.Errorf("event registry is required for system fold coverage validation")
	}

	var missing []string
	for _, mod := range modules.List() {
		folder := mod.Folder()
		if folder == nil {
			continue
		}
		handled := make(map[event.Type]struct{})
		for _, t := range folder.FoldHandledTypes() {
			handled[t] = struct{}{}
		}
		for _, t := range mod.EmittableEventTypes() {
			def, ok := events.Definition(t)
			if !ok {
				continue
			}
			if def.Intent == event.IntentAuditOnly {
				continue
			}
			if _, ok := handled[t]; !ok {
				missing = append(missing, fmt.Sprintf("%s@%s %s", mod.ID(), mod.Version(), t))
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("system events missing fold handlers: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateDeciderCommandCoverage verifies that every system-owned command in
// a module's namespace is claimed by that module's DeciderHandledCommands,
// and conversely that every declared handler has a matching registration.
// Modules whose decider does not declare handled commands are skipped.
func ValidateDeciderCommandCoverage(modules *module.Registry, commands *command.Registry) error {
	if modules == nil {
		return fmt.Errorf("module registry is required for decider coverage validation")
	}
	if commands == nil {
		return fmt.Errorf("command registry is required for decider coverage validation")
	}

	for _, mod := range modules.List() {
		typer, ok := mod.Decider().(module.CommandTyper)
		if !ok {
			continue
		}
		declared := make(map[command.Type]struct{})
		for _, t := range typer.DeciderHandledCommands() {
			declared[t] = struct{}{}
		}

		namespace := naming.NormalizeSystemNamespace(mod.ID())
		prefix := "sys." + namespace + "."

		registered := make(map[command.Type]struct{})
		var missing []string
		for _, def := range commands.ListDefinitions() {
			if def.Owner != command.OwnerSystem {
				continue
			}
			if !strings.HasPrefix(string(def.Type), prefix) {
				continue
			}
			registered[def.Type] = struct{}{}
			if _, ok := declared[def.Type]; !ok {
				missing = append(missing, string(def.Type))
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("system module %s commands missing decider handlers: %s",
				mod.ID(), strings.Join(missing, ", "))
		}

		var stale []string
		for t := range declared {
			if _, ok := registered[t]; !ok {
				stale = append(stale, string(t))
			}
		}
		if len(stale) > 0 {
			return fmt.Errorf("system module %s stale decider handler declarations without registration: %s",
				mod.ID(), strings.Join(stale, ", "))
		}
	}
	return nil
}

// ValidateStateFactoryDeterminism verifies that a module's state factory
// returns identical snapshots for identical inputs. Replay reconstruction
// depends on this guarantee.
func ValidateStateFactoryDeterminism(modules *module.Registry) error {
	if modules == nil {
		return fmt.Errorf("module registry is required for state factory validation")
	}

	const probeGameID = "state-factory-probe"
	for _, mod := range modules.List() {
		factory := mod.StateFactory()
		if factory == nil {
			continue
		}
		first, err := factory.NewSnapshotState(probeGameID)
		if err != nil {
			return fmt.Errorf("system module %s state factory: %w", mod.ID(), err)
		}
		second, err := factory.NewSnapshotState(probeGameID)
		if err != nil {
			return fmt.Errorf("system module %s state factory: %w", mod.ID(), err)
		}
		if !reflect.DeepEqual(first, second) {
			return fmt.Errorf("system module %s state factory is not deterministic", mod.ID())
		}
	}
	return nil
}

// ValidateSystemMetadataConsistency verifies that every system-owned event
// type resolves to a registered module by namespace. An orphaned system
// event would validate at append time but never reach a fold handler.
func ValidateSystemMetadataConsistency(events *event.Registry, modules *module.Registry) error {
	if events == nil {
		return fmt.Errorf("event registry is required for system metadata validation")
	}
	if modules == nil {
		return fmt.Errorf("module registry is required for system metadata validation")
	}

	namespaces := make(map[string]struct{})
	for _, mod := range modules.List() {
		if ns := naming.NormalizeSystemNamespace(mod.ID()); ns != "" {
			namespaces[ns] = struct{}{}
		}
	}

	var orphaned []string
	for _, def := range events.ListDefinitions() {
		if def.Owner != event.OwnerSystem {
			continue
		}
		ns, ok := naming.NamespaceFromType(string(def.Type))
		if !ok {
			orphaned = append(orphaned, string(def.Type))
			continue
		}
		if _, ok := namespaces[ns]; !ok {
			orphaned = append(orphaned, string(def.Type))
		}
	}
	if len(orphaned) > 0 {
		return fmt.Errorf("system events without a registered module: %s", strings.Join(orphaned, ", "))
	}
	return nil
}
