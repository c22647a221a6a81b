package projection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mverberg/broadside/internal/domain/event"
	"github.com/mverberg/broadside/internal/storage"
)

const replayPageSize = 200

// Options configures event replay behavior.
type Options struct {
	AfterSeq uint64
	UntilSeq uint64
	Filter   func(event.Event) bool
}

// ReplayGame replays a game's journal and applies projections in order.
// Returns the last sequence number observed, handled or not, so callers
// can record progress.
func ReplayGame(ctx context.Context, events storage.EventStore, applier Applier, gameID string) (uint64, error) {
	return ReplayGameWith(ctx, events, applier, gameID, Options{})
}

// ReplayGameWith replays events with additional filtering and bounds.
func ReplayGameWith(ctx context.Context, events storage.EventStore, applier Applier, gameID string, options Options) (uint64, error) {
	if events == nil {
		return 0, fmt.Errorf("event store is not configured")
	}
	if strings.TrimSpace(gameID) == "" {
		return 0, fmt.Errorf("game id is required")
	}

	lastSeq := options.AfterSeq
	for {
		page, err := events.ListEvents(ctx, gameID, lastSeq, replayPageSize)
		if err != nil {
			return lastSeq, err
		}
		if len(page) == 0 {
			return lastSeq, nil
		}
		for _, evt := range page {
			if options.UntilSeq > 0 && evt.Seq > options.UntilSeq {
				return lastSeq, nil
			}
			lastSeq = evt.Seq
			if options.Filter != nil && !options.Filter(evt) {
				continue
			}
			if err := applier.Apply(ctx, evt); err != nil {
				return lastSeq, err
			}
		}
	}
}

// CatchUp replays the journal from the stored projection watermark and
// advances the watermark past the applied events. Repeated calls are
// idempotent: read-model writes are upserts, so re-applying a suffix
// after a crash converges on the same rows.
func CatchUp(ctx context.Context, events storage.EventStore, watermarks storage.WatermarkStore, applier Applier, gameID string) (uint64, error) {
	if watermarks == nil {
		return 0, fmt.Errorf("watermark store is not configured")
	}

	afterSeq := uint64(0)
	mark, err := watermarks.GetProjectionWatermark(ctx, gameID)
	switch {
	case err == nil:
		afterSeq = mark.AppliedSeq
	case errors.Is(err, storage.ErrNotFound):
	default:
		return 0, fmt.Errorf("load projection watermark: %w", err)
	}

	lastSeq, err := ReplayGameWith(ctx, events, applier, gameID, Options{AfterSeq: afterSeq})
	if err != nil {
		return lastSeq, err
	}
	if lastSeq > afterSeq {
		if err := watermarks.SaveProjectionWatermark(ctx, storage.ProjectionWatermark{
			GameID:     gameID,
			AppliedSeq: lastSeq,
			UpdatedAt:  time.Now().UTC(),
		}); err != nil {
			return lastSeq, fmt.Errorf("save projection watermark: %w", err)
		}
	}
	return lastSeq, nil
}
