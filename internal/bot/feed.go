package bot

import (
	"context"
	"fmt"

	"github.com/preston-bernstein/league-watch/internal/logging"
	"github.com/preston-bernstein/league-watch/internal/poller"
)

// runFeedCycle walks the feed from offset 0. A page that is empty, or that
// holds nothing new, ends the cycle: the feed is newest first, so older pages
// are assumed to be already stored.
func (b *Bot) runFeedCycle(ctx context.Context, mode poller.Mode) error {
	league, ok := b.selectedLeague()
	if !ok {
		return ErrNotInitialized
	}
	ctx, logger := b.cycleContext(ctx, streamFeed, mode, league)

	offset, fresh := 0, 0
	defer func() { b.metrics.RecordNewItems(streamFeed, fresh) }()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := b.source.FetchFeedPage(ctx, league, offset)
		if err != nil {
			return &FetchError{Stream: streamFeed, Err: err}
		}
		if len(page) == 0 {
			break
		}

		pageNew := 0
		for _, item := range page {
			item.Date = item.Date.UTC()
			exists, err := b.store.FeedItemExists(ctx, item.ID)
			if err != nil {
				return fmt.Errorf("feed: check %s: %w", item.ID, err)
			}
			if err := b.store.SaveFeedItem(ctx, item); err != nil {
				return fmt.Errorf("feed: save %s: %w", item.ID, err)
			}
			if exists {
				continue
			}
			pageNew++
			if mode == poller.Live {
				b.dispatchFeed(ctx, item)
			}
		}
		fresh += pageNew

		logging.Debug(logger, "feed page processed",
			logging.FieldOffset, offset,
			logging.FieldCount, len(page),
			"new", pageNew,
		)
		if pageNew == 0 {
			break
		}
		offset += len(page)
	}

	if fresh > 0 {
		logging.Info(logger, "new feed items", logging.FieldCount, fresh)
	}
	return nil
}
