package projection

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mverberg/broadside/internal/domain/event"
)

// idRequirement specifies which event envelope fields a handler requires.
type idRequirement uint8

const (
	requireGameID idRequirement = 1 << iota
	requireBattleID
)

// storeRequirement specifies which stores a handler depends on. Required
// stores are checked before dispatch; the handler will not execute if
// any required store is nil.
type storeRequirement uint8

const (
	needStats storeRequirement = 1 << iota
)

// Router dispatches projection events by type, checking store and ID
// preconditions before calling the handler. Typed handlers registered
// via HandleProjection receive auto-unmarshalled payloads, eliminating
// the per-handler decodePayload boilerplate.
type Router struct {
	handlers map[event.Type]handlerEntry
	types    []event.Type
}

// handlerEntry declares the preconditions and apply function for one
// event type.
type handlerEntry struct {
	stores storeRequirement
	ids    idRequirement
	apply  func(Applier, context.Context, event.Event) error
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{
		handlers: make(map[event.Type]handlerEntry),
	}
}

// Route dispatches an event to the registered handler after checking
// store and ID preconditions. Returns an error for unknown event types,
// precondition failures, or handler errors.
func (r *Router) Route(a Applier, ctx context.Context, evt event.Event) error {
	h, ok := r.handlers[evt.Type]
	if !ok {
		return fmt.Errorf("unhandled projection event type: %s", evt.Type)
	}
	if err := a.validatePreconditions(h, evt); err != nil {
		return err
	}
	return h.apply(a, ctx, evt)
}

// Handles reports whether a handler is registered for the event type.
func (r *Router) Handles(t event.Type) bool {
	_, ok := r.handlers[t]
	return ok
}

// HandledTypes returns all registered event types in registration order.
func (r *Router) HandledTypes() []event.Type {
	return append([]event.Type(nil), r.types...)
}

// HandleProjection registers a typed handler for the given event type.
// The handler receives a pre-unmarshalled payload; the event.Event is
// also passed through for envelope fields (GameID, BattleID, Timestamp,
// etc.).
func HandleProjection[P any](r *Router, t event.Type, stores storeRequirement, ids idRequirement,
	fn func(Applier, context.Context, event.Event, P) error) {
	r.handlers[t] = handlerEntry{
		stores: stores,
		ids:    ids,
		apply: func(a Applier, ctx context.Context, evt event.Event) error {
			var payload P
			if err := json.Unmarshal(evt.PayloadJSON, &payload); err != nil {
				return fmt.Errorf("decode %s payload: %w", t, err)
			}
			return fn(a, ctx, evt, payload)
		},
	}
	r.types = append(r.types, t)
}

// validatePreconditions checks that the applier's stores and event
// envelope fields satisfy the handler's declared requirements.
func (a Applier) validatePreconditions(h handlerEntry, evt event.Event) error {
	if h.stores&needStats != 0 && a.Stats == nil {
		return fmt.Errorf("stats store is not configured")
	}

	if h.ids&requireGameID != 0 && strings.TrimSpace(evt.GameID) == "" {
		return fmt.Errorf("game id is required")
	}
	if h.ids&requireBattleID != 0 && strings.TrimSpace(evt.BattleID) == "" {
		return fmt.Errorf("battle id is required")
	}
	return nil
}
