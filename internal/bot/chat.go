package bot

import (
	"context"
	"fmt"

	"github.com/preston-bernstein/league-watch/internal/logging"
	"github.com/preston-bernstein/league-watch/internal/poller"
)

// runChatCycle follows continuation tokens until the service returns none.
// Every page is processed in full; unlike the feed there is no early exit.
func (b *Bot) runChatCycle(ctx context.Context, mode poller.Mode) error {
	league, ok := b.selectedLeague()
	if !ok {
		return ErrNotInitialized
	}
	ctx, logger := b.cycleContext(ctx, streamChat, mode, league)

	fresh := 0
	defer func() { b.metrics.RecordNewItems(streamChat, fresh) }()

	token := ""
	seen := map[string]bool{}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, next, err := b.source.FetchChatPage(ctx, league, b.chatPageSize, token)
		if err != nil {
			return &FetchError{Stream: streamChat, Err: err}
		}

		for _, item := range page {
			item.Date = item.Date.UTC()
			exists, err := b.store.ChatItemExists(ctx, item.ID)
			if err != nil {
				return fmt.Errorf("chat: check %s: %w", item.ID, err)
			}
			if err := b.store.SaveChatItem(ctx, item); err != nil {
				return fmt.Errorf("chat: save %s: %w", item.ID, err)
			}
			if exists {
				continue
			}
			fresh++
			if mode == poller.Live {
				b.dispatchChat(ctx, item)
			}
		}

		if next == "" {
			break
		}
		if seen[next] {
			logging.Warn(logger, "chat page token repeated, ending cycle", "token", next)
			break
		}
		seen[next] = true
		token = next
	}

	if fresh > 0 {
		logging.Info(logger, "new chat messages", logging.FieldCount, fresh)
	}
	return nil
}
