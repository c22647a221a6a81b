// Package journal provides the append-only, hash-chained event journal.
// The in-memory store backs tests and the demo runner; durable games use
// the sqlite-backed store, which shares the same append semantics.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mverberg/broadside/internal/domain/event"
)

var (
	// ErrRegistryRequired indicates the journal has no event registry.
	ErrRegistryRequired = errors.New("event registry is required")
	// ErrGameIDRequired indicates a missing game id.
	ErrGameIDRequired = errors.New("game id is required")
	// ErrEventNotFound indicates the requested event does not exist.
	ErrEventNotFound = errors.New("event not found")
)

// Memory stores journal events in memory, one chain per game.
type Memory struct {
	mu       sync.Mutex
	registry *event.Registry
	byGame   map[string][]event.Event
	byHash   map[string]event.Event
}

// NewMemory creates an in-memory journal validating against the given
// event registry.
func NewMemory(registry *event.Registry) *Memory {
	return &Memory{
		registry: registry,
		byGame:   make(map[string][]event.Event),
		byHash:   make(map[string]event.Event),
	}
}

// Append validates an event, assigns its sequence and hash chain, and
// stores it. Re-appending an event with an identical content hash
// returns the stored copy, so retried commands stay idempotent.
func (m *Memory) Append(ctx context.Context, evt event.Event) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if m == nil {
		return event.Event{}, errors.New("journal is required")
	}
	if m.registry == nil {
		return event.Event{}, ErrRegistryRequired
	}

	validated, err := m.registry.ValidateForAppend(evt)
	if err != nil {
		return event.Event{}, err
	}
	evt = validated
	evt.Timestamp = evt.Timestamp.UTC().Truncate(time.Millisecond)

	hash, err := event.EventHash(evt)
	if err != nil {
		return event.Event{}, fmt.Errorf("compute event hash: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if stored, ok := m.byHash[hash]; ok {
		return stored, nil
	}

	chain := m.byGame[evt.GameID]
	evt.Seq = uint64(len(chain)) + 1
	evt.Hash = hash

	prevHash := ""
	if len(chain) > 0 {
		prevHash = chain[len(chain)-1].ChainHash
	}
	chainHash, err := event.ChainHash(evt, prevHash)
	if err != nil {
		return event.Event{}, fmt.Errorf("compute chain hash: %w", err)
	}
	evt.PrevHash = prevHash
	evt.ChainHash = chainHash

	m.byGame[evt.GameID] = append(chain, evt)
	m.byHash[hash] = evt
	return evt, nil
}

// BatchAppend validates, links, and stores a batch of events as one atomic
// append. All events must belong to the same game. The batch is staged in
// full before the chain is touched, so either every event lands or none do.
func (m *Memory) BatchAppend(ctx context.Context, events []event.Event) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New("journal is required")
	}
	if len(events) == 0 {
		return nil, nil
	}
	if m.registry == nil {
		return nil, ErrRegistryRequired
	}

	validated := make([]event.Event, len(events))
	for i, evt := range events {
		v, err := m.registry.ValidateForAppend(evt)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		v.Timestamp = v.Timestamp.UTC().Truncate(time.Millisecond)
		validated[i] = v
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	gameID := validated[0].GameID
	chain := m.byGame[gameID]
	prevHash := ""
	if len(chain) > 0 {
		prevHash = chain[len(chain)-1].ChainHash
	}
	nextSeq := uint64(len(chain)) + 1

	staged := make([]event.Event, 0, len(validated))
	stagedHashes := make(map[string]bool, len(validated))
	for i, evt := range validated {
		if evt.GameID != gameID {
			return nil, fmt.Errorf("event %d: batch spans games %s and %s", i, gameID, evt.GameID)
		}
		hash, err := event.EventHash(evt)
		if err != nil {
			return nil, fmt.Errorf("event %d hash: %w", i, err)
		}
		if _, ok := m.byHash[hash]; ok {
			return nil, fmt.Errorf("event %d: content hash already appended", i)
		}
		if stagedHashes[hash] {
			return nil, fmt.Errorf("event %d: content hash repeated in batch", i)
		}
		stagedHashes[hash] = true

		evt.Seq = nextSeq
		evt.Hash = hash
		chainHash, err := event.ChainHash(evt, prevHash)
		if err != nil {
			return nil, fmt.Errorf("event %d chain hash: %w", i, err)
		}
		evt.PrevHash = prevHash
		evt.ChainHash = chainHash

		staged = append(staged, evt)
		prevHash = chainHash
		nextSeq++
	}

	m.byGame[gameID] = append(chain, staged...)
	for _, evt := range staged {
		m.byHash[evt.Hash] = evt
	}
	return append([]event.Event(nil), staged...), nil
}

// ListEvents returns events for a game ordered by sequence ascending,
// starting after the given sequence. A non-positive limit returns the
// rest of the chain.
func (m *Memory) ListEvents(ctx context.Context, gameID string, afterSeq uint64, limit int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, ErrGameIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	chain := m.byGame[gameID]
	if afterSeq >= uint64(len(chain)) {
		return nil, nil
	}
	page := chain[afterSeq:]
	if limit > 0 && len(page) > limit {
		page = page[:limit]
	}
	return append([]event.Event(nil), page...), nil
}

// GetEventByHash retrieves an event by its content hash.
func (m *Memory) GetEventByHash(ctx context.Context, hash string) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.byHash[strings.TrimSpace(hash)]
	if !ok {
		return event.Event{}, ErrEventNotFound
	}
	return stored, nil
}

// GetEventBySeq retrieves a specific event by sequence number.
func (m *Memory) GetEventBySeq(ctx context.Context, gameID string, seq uint64) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return event.Event{}, ErrGameIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	chain := m.byGame[gameID]
	if seq == 0 || seq > uint64(len(chain)) {
		return event.Event{}, ErrEventNotFound
	}
	return chain[seq-1], nil
}

// GetLatestEventSeq returns the latest sequence number for a game, zero
// when no events exist.
func (m *Memory) GetLatestEventSeq(ctx context.Context, gameID string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return 0, ErrGameIDRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return uint64(len(m.byGame[gameID])), nil
}
