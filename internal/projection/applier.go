package projection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mverberg/broadside/internal/domain/battle"
	"github.com/mverberg/broadside/internal/domain/event"
	"github.com/mverberg/broadside/internal/domain/game"
	"github.com/mverberg/broadside/internal/storage"
)

// Applier applies event journal entries to projection stores.
type Applier struct {
	// Stats writes battle summary and player statistics read models.
	Stats storage.StatsStore
}

// coreRouter holds the read-model handler registrations, built once at
// package init.
var coreRouter = newCoreRouter()

func newCoreRouter() *Router {
	r := NewRouter()
	HandleProjection(r, event.TypeProfileCreated, needStats, requireGameID,
		Applier.applyProfileCreated)
	HandleProjection(r, event.TypeBattleRecorded, needStats, requireGameID,
		Applier.applyBattleRecorded)
	HandleProjection(r, battle.EventTypeBattleStarted, needStats, requireGameID|requireBattleID,
		Applier.applyBattleStarted)
	HandleProjection(r, battle.EventTypeBattleResolved, needStats, requireGameID|requireBattleID,
		Applier.applyBattleResolved)
	return r
}

// HandledTypes returns the event types that feed read models. The list
// is derived from the router registrations so there is a single source
// of truth for which event types have projection handlers.
func HandledTypes() []event.Type {
	return coreRouter.HandledTypes()
}

// Apply routes one journal event into the read-model stores. Event
// types without a registered handler are skipped: the journal carries
// far more tactical detail than the read models summarize.
func (a Applier) Apply(ctx context.Context, evt event.Event) error {
	if !coreRouter.Handles(evt.Type) {
		return nil
	}
	return coreRouter.Route(a, ctx, evt)
}

// ensureTimestamp normalizes timestamps so projections always persist
// UTC, defaulting to now for events that do not set time.
func ensureTimestamp(ts time.Time) time.Time {
	if ts.IsZero() {
		return time.Now().UTC()
	}
	return ts.UTC()
}

func (a Applier) applyProfileCreated(ctx context.Context, evt event.Event, payload game.ProfileCreatedPayload) error {
	createdAt := ensureTimestamp(evt.Timestamp)
	return a.Stats.PutPlayerStats(ctx, storage.PlayerStats{
		GameID:     evt.GameID,
		PlayerName: payload.PlayerName,
		UpdatedAt:  createdAt,
	})
}

func (a Applier) applyBattleRecorded(ctx context.Context, evt event.Event, payload game.BattleRecordedPayload) error {
	stats, err := a.Stats.GetPlayerStats(ctx, evt.GameID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		// Journals predating the stats row seed: fold the battle into a
		// fresh row rather than dropping the fact.
		stats = storage.PlayerStats{GameID: evt.GameID}
	}

	stats.BattlesFought++
	switch payload.Result {
	case game.ResultWon:
		stats.BattlesWon++
	case game.ResultLost:
		stats.BattlesLost++
	case game.ResultDrawn:
		stats.BattlesDrawn++
	default:
		return fmt.Errorf("unknown battle result: %s", payload.Result)
	}
	stats.ShipsDestroyed += payload.ShipsDestroyed
	stats.UpdatedAt = ensureTimestamp(evt.Timestamp)

	return a.Stats.PutPlayerStats(ctx, stats)
}

func (a Applier) applyBattleStarted(ctx context.Context, evt event.Event, payload battle.BattleStartedPayload) error {
	startedAt := ensureTimestamp(evt.Timestamp)
	return a.Stats.PutBattleSummary(ctx, storage.BattleSummary{
		BattleID:      evt.BattleID,
		GameID:        evt.GameID,
		QuestID:       payload.QuestID,
		SystemID:      evt.SystemID,
		SystemVersion: evt.SystemVersion,
		Status:        storage.BattleStatusInProgress,
		StartedAt:     startedAt,
		UpdatedAt:     startedAt,
	})
}

func (a Applier) applyBattleResolved(ctx context.Context, evt event.Event, payload battle.BattleResolvedPayload) error {
	summary, err := a.Stats.GetBattleSummary(ctx, evt.BattleID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		// Partial replays can start past battle_started; reconstruct
		// what the resolution event carries instead of failing.
		summary = storage.BattleSummary{
			BattleID:      evt.BattleID,
			GameID:        evt.GameID,
			SystemID:      evt.SystemID,
			SystemVersion: evt.SystemVersion,
			StartedAt:     ensureTimestamp(evt.Timestamp),
		}
	}

	resolvedAt := ensureTimestamp(evt.Timestamp)
	summary.Status = storage.BattleStatusResolved
	summary.Winner = string(payload.Winner)
	summary.VictoryCondition = string(payload.VictoryCondition)
	summary.Turns = payload.Turns
	summary.ResolvedAt = resolvedAt
	summary.UpdatedAt = resolvedAt

	return a.Stats.PutBattleSummary(ctx, summary)
}
