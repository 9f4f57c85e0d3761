package bot

import (
	"context"
	"fmt"

	"github.com/preston-bernstein/league-watch/internal/logging"
	"github.com/preston-bernstein/league-watch/internal/poller"
)

// runMarketCycle stores one snapshot per cycle, stamped with the capture time.
func (b *Bot) runMarketCycle(ctx context.Context, mode poller.Mode) error {
	league, ok := b.selectedLeague()
	if !ok {
		return ErrNotInitialized
	}
	ctx, logger := b.cycleContext(ctx, streamMarket, mode, league)

	if err := ctx.Err(); err != nil {
		return err
	}
	snap, err := b.source.FetchMarket(ctx, league)
	if err != nil {
		return &FetchError{Stream: streamMarket, Err: err}
	}
	snap.Date = b.now().UTC()

	if err := b.store.SaveMarketSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("market: save snapshot: %w", err)
	}
	b.metrics.RecordNewItems(streamMarket, 1)
	logging.Debug(logger, "market snapshot stored", logging.FieldCount, len(snap.Players))

	if mode == poller.Live {
		b.dispatchMarket(ctx, snap)
	}
	return nil
}
