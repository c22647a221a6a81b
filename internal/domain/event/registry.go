package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mverberg/broadside/internal/domain/encoding"
)

// Validation errors returned by ValidateForAppend.
var (
	// ErrGameIDRequired indicates the event is missing its game ID.
	ErrGameIDRequired = errors.New("game id required")
	// ErrTypeRequired indicates the event is missing its type.
	ErrTypeRequired = errors.New("event type required")
	// ErrTypeUnknown indicates the event type is not registered.
	ErrTypeUnknown = errors.New("event type unknown")
	// ErrTimestampRequired indicates the event is missing its timestamp.
	ErrTimestampRequired = errors.New("event timestamp required")
	// ErrActorTypeInvalid indicates the actor type is not a known value.
	ErrActorTypeInvalid = errors.New("actor type invalid")
	// ErrActorIDRequired indicates a player or opponent event is missing its actor ID.
	ErrActorIDRequired = errors.New("actor id required")
	// ErrSystemMetadataRequired indicates a system-owned event is missing system metadata.
	ErrSystemMetadataRequired = errors.New("system metadata required")
	// ErrSystemMetadataForbidden indicates a core-owned event carries system metadata.
	ErrSystemMetadataForbidden = errors.New("system metadata forbidden")
	// ErrEntityTypeRequired indicates the event requires entity addressing but has no entity type.
	ErrEntityTypeRequired = errors.New("entity type required")
	// ErrEntityIDRequired indicates the event requires entity addressing but has no entity ID.
	ErrEntityIDRequired = errors.New("entity id required")
	// ErrPayloadInvalid indicates the payload is not valid for the event type.
	ErrPayloadInvalid = errors.New("event payload invalid")
)

// Owner identifies which layer defines an event type.
type Owner string

const (
	// OwnerCore marks event types owned by the core game lifecycle.
	OwnerCore Owner = "core"
	// OwnerSystem marks event types owned by a battle system module.
	OwnerSystem Owner = "system"
)

// AddressingPolicy declares whether an event type must target an entity.
type AddressingPolicy string

const (
	// AddressingPolicyNone leaves entity addressing optional.
	AddressingPolicyNone AddressingPolicy = ""
	// AddressingPolicyEntityTarget requires entity type and ID on append.
	AddressingPolicyEntityTarget AddressingPolicy = "entity_target"
)

// Intent declares how downstream consumers should treat an event type.
type Intent string

const (
	// IntentProjectionAndReplay marks events that feed both state folds and projections.
	IntentProjectionAndReplay Intent = "projection_and_replay"
	// IntentReplayOnly marks events that feed state folds but no read model.
	IntentReplayOnly Intent = "replay_only"
	// IntentAuditOnly marks events retained for the audit trail but skipped by folds.
	IntentAuditOnly Intent = "audit_only"
)

// Definition describes a registered event type.
type Definition struct {
	// Type is the registered event type.
	Type Type
	// Owner identifies whether core or a battle system defines the type.
	Owner Owner
	// Addressing declares entity targeting requirements for core events.
	// System-owned events always require entity addressing.
	Addressing AddressingPolicy
	// Intent declares consumer treatment; defaults to IntentProjectionAndReplay.
	Intent Intent
	// ValidatePayload checks the canonical payload for the type, when set.
	ValidatePayload func(raw json.RawMessage) error
}

// Registry holds the event type definitions accepted by the journal.
type Registry struct {
	definitions map[Type]Definition
}

// NewRegistry returns an empty event registry.
func NewRegistry() *Registry {
	return &Registry{definitions: make(map[Type]Definition)}
}

// Register adds an event type definition. Types register once; ownership and
// intent are fixed at registration.
func (r *Registry) Register(def Definition) error {
	if !def.Type.IsValid() {
		return fmt.Errorf("register event: %w", ErrTypeRequired)
	}
	if def.Owner != OwnerCore && def.Owner != OwnerSystem {
		return fmt.Errorf("register event %s: owner %q invalid", def.Type, def.Owner)
	}
	switch def.Addressing {
	case AddressingPolicyNone, AddressingPolicyEntityTarget:
	default:
		return fmt.Errorf("register event %s: addressing policy %q invalid", def.Type, def.Addressing)
	}
	if def.Intent == "" {
		def.Intent = IntentProjectionAndReplay
	}
	switch def.Intent {
	case IntentProjectionAndReplay, IntentReplayOnly, IntentAuditOnly:
	default:
		return fmt.Errorf("register event %s: intent %q invalid", def.Type, def.Intent)
	}
	if _, exists := r.definitions[def.Type]; exists {
		return fmt.Errorf("register event %s: type already registered", def.Type)
	}
	r.definitions[def.Type] = def
	return nil
}

// Definition returns the registered definition for a type.
func (r *Registry) Definition(t Type) (Definition, bool) {
	def, ok := r.definitions[t]
	return def, ok
}

// ListDefinitions returns all registered definitions sorted by type.
func (r *Registry) ListDefinitions() []Definition {
	definitions := make([]Definition, 0, len(r.definitions))
	for _, def := range r.definitions {
		definitions = append(definitions, def)
	}
	sort.Slice(definitions, func(i, j int) bool {
		return definitions[i].Type < definitions[j].Type
	})
	return definitions
}

// MissingPayloadValidators returns the registered types without a payload
// validator, sorted. Startup wiring treats a non-empty result as a bug.
func (r *Registry) MissingPayloadValidators() []Type {
	var missing []Type
	for t, def := range r.definitions {
		if def.ValidatePayload == nil {
			missing = append(missing, t)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

// ValidateForAppend checks an event against its registered definition and
// returns a normalized copy with the payload in canonical JSON form. Storage
// must only append events that passed this check.
func (r *Registry) ValidateForAppend(evt Event) (Event, error) {
	if strings.TrimSpace(evt.GameID) == "" {
		return Event{}, ErrGameIDRequired
	}
	if !evt.Type.IsValid() {
		return Event{}, ErrTypeRequired
	}
	def, ok := r.definitions[evt.Type]
	if !ok {
		return Event{}, fmt.Errorf("%w: %s", ErrTypeUnknown, evt.Type)
	}
	if evt.Timestamp.IsZero() {
		return Event{}, ErrTimestampRequired
	}

	if evt.ActorType == "" {
		evt.ActorType = ActorTypeSystem
	}
	switch evt.ActorType {
	case ActorTypeSystem:
	case ActorTypePlayer, ActorTypeOpponent:
		if strings.TrimSpace(evt.ActorID) == "" {
			return Event{}, ErrActorIDRequired
		}
	default:
		return Event{}, fmt.Errorf("%w: %s", ErrActorTypeInvalid, evt.ActorType)
	}

	hasSystemMetadata := strings.TrimSpace(evt.SystemID) != "" || strings.TrimSpace(evt.SystemVersion) != ""
	switch def.Owner {
	case OwnerSystem:
		if strings.TrimSpace(evt.SystemID) == "" || strings.TrimSpace(evt.SystemVersion) == "" {
			return Event{}, ErrSystemMetadataRequired
		}
		if err := requireEntityAddressing(evt); err != nil {
			return Event{}, err
		}
	case OwnerCore:
		if hasSystemMetadata {
			return Event{}, ErrSystemMetadataForbidden
		}
		if def.Addressing == AddressingPolicyEntityTarget {
			if err := requireEntityAddressing(evt); err != nil {
				return Event{}, err
			}
		}
	}

	payload := evt.PayloadJSON
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	if !json.Valid(payload) {
		return Event{}, fmt.Errorf("%w: malformed json", ErrPayloadInvalid)
	}
	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrPayloadInvalid, err)
	}
	canonical, err := encoding.CanonicalJSON(decoded)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrPayloadInvalid, err)
	}
	if def.ValidatePayload != nil {
		if err := def.ValidatePayload(canonical); err != nil {
			return Event{}, fmt.Errorf("%w: %v", ErrPayloadInvalid, err)
		}
	}
	evt.PayloadJSON = canonical
	return evt, nil
}

// requireEntityAddressing checks that entity type and ID are both present.
func requireEntityAddressing(evt Event) error {
	if strings.TrimSpace(evt.EntityType) == "" {
		return ErrEntityTypeRequired
	}
	if strings.TrimSpace(evt.EntityID) == "" {
		return ErrEntityIDRequired
	}
	return nil
}
