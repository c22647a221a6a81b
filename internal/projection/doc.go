// Package projection builds read models from immutable event history.
//
// Read models are intentionally separate from the game aggregate so the
// CLI and stats surfaces can query battle summaries and lifetime player
// statistics without replaying a journal for each request.
//
// Only a handful of journal event types feed read models: battle
// lifecycle facts and profile statistics facts. The rest of the journal
// carries tactical detail (damage totals, deck orders, status ticks)
// that exists for replay, not for querying, and the applier skips it.
package projection
