package engine

import (
	"fmt"
	"strings"

	"github.com/mverberg/broadside/internal/domain/event"
)

// ValidateProjectionRegistries bundles the projection coverage validators
// into a single call so that all startup paths (CLI, simulation, replay)
// run the same checks without scattering calls across bootstrap functions.
func ValidateProjectionRegistries(events *event.Registry, projectionHandled []event.Type) error {
	if err := ValidateProjectionCoverage(events, projectionHandled); err != nil {
		return fmt.Errorf("validate projection coverage: %w", err)
	}
	if err := ValidateNoProjectionHandlersForNonProjectionEvents(events, projectionHandled); err != nil {
		return fmt.Errorf("validate projection intent guard: %w", err)
	}
	if err := ValidateNoStaleProjectionHandlers(events, projectionHandled); err != nil {
		return fmt.Errorf("validate stale projection handlers: %w", err)
	}
	return nil
}

// ValidateProjectionCoverage verifies that every core IntentProjectionAndReplay
// event has a projection handler declared via ProjectionHandledTypes.
func ValidateProjectionCoverage(events *event.Registry, handledTypes []event.Type) error {
	if events == nil {
		return fmt.Errorf("event registry is required for projection coverage validation")
	}

	handled := make(map[event.Type]struct{})
	for _, t := range handledTypes {
		handled[t] = struct{}{}
	}

	var missing []string
	for _, def := range events.ListDefinitions() {
		if def.Owner != event.OwnerCore {
			continue
		}
		if def.Intent != event.IntentProjectionAndReplay {
			continue
		}
		if _, ok := handled[def.Type]; ok {
			continue
		}
		missing = append(missing, string(def.Type))
	}
	if len(missing) > 0 {
		return fmt.Errorf("core projection-and-replay events missing projection handlers: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateNoStaleProjectionHandlers verifies that every event type in the
// projection handler list is actually registered in the event registry. A
// stale handler, left behind after an event type is removed or renamed,
// would be dead code that silently misleads developers.
func ValidateNoStaleProjectionHandlers(events *event.Registry, projectionHandled []event.Type) error {
	if events == nil {
		return fmt.Errorf("event registry is required for stale projection handler check")
	}

	var stale []string
	for _, t := range projectionHandled {
		if _, ok := events.Definition(t); !ok {
			stale = append(stale, string(t))
		}
	}
	if len(stale) > 0 {
		return fmt.Errorf("projection handlers for unregistered event types (stale): %s",
			strings.Join(stale, ", "))
	}
	return nil
}

// ValidateNoProjectionHandlersForNonProjectionEvents verifies that no
// projection handler exists for an event with IntentAuditOnly or
// IntentReplayOnly. Such handlers would be dead code; the projection
// applier skips non-projection events at runtime.
func ValidateNoProjectionHandlersForNonProjectionEvents(events *event.Registry, projectionHandled []event.Type) error {
	if events == nil {
		return fmt.Errorf("event registry is required for projection intent guard")
	}

	var dead []string
	for _, t := range projectionHandled {
		def, ok := events.Definition(t)
		if !ok {
			continue
		}
		if def.Intent == event.IntentAuditOnly || def.Intent == event.IntentReplayOnly {
			dead = append(dead, string(t))
		}
	}
	if len(dead) > 0 {
		return fmt.Errorf("projection handlers registered for non-projection events (dead code): %s",
			strings.Join(dead, ", "))
	}
	return nil
}
