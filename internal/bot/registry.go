package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/preston-bernstein/league-watch/internal/domain"
)

// FeedHandler is called once for every newly observed feed item.
type FeedHandler func(ctx context.Context, item domain.FeedItem, b *Bot) error

// ChatHandler is called once for every newly observed chat message.
type ChatHandler func(ctx context.Context, item domain.ChatItem, b *Bot) error

// MarketHandler is called for every market snapshot taken in live mode.
type MarketHandler func(ctx context.Context, snap domain.MarketSnapshot, b *Bot) error

// registry holds the callbacks per stream. It is append-only until frozen and
// read-only afterwards.
type registry struct {
	mu     sync.RWMutex
	frozen bool
	feed   []FeedHandler
	chat   []ChatHandler
	market []MarketHandler
}

func (r *registry) addFeed(h FeedHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrRegistryFrozen
	}
	r.feed = append(r.feed, h)
	return nil
}

func (r *registry) addChat(h ChatHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrRegistryFrozen
	}
	r.chat = append(r.chat, h)
	return nil
}

func (r *registry) addMarket(h MarketHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrRegistryFrozen
	}
	r.market = append(r.market, h)
	return nil
}

func (r *registry) freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

func (r *registry) feedHandlers() []FeedHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]FeedHandler(nil), r.feed...)
}

func (r *registry) chatHandlers() []ChatHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ChatHandler(nil), r.chat...)
}

func (r *registry) marketHandlers() []MarketHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]MarketHandler(nil), r.market...)
}

// AddFeedCallback registers h for new feed items. Handlers run in registration order.
func (b *Bot) AddFeedCallback(h FeedHandler) error {
	if h == nil {
		return fmt.Errorf("bot: nil feed handler")
	}
	return b.registry.addFeed(h)
}

// AddChatCallback registers h for new chat messages. Handlers run in registration order.
func (b *Bot) AddChatCallback(h ChatHandler) error {
	if h == nil {
		return fmt.Errorf("bot: nil chat handler")
	}
	return b.registry.addChat(h)
}

// AddMarketCallback registers h for live market snapshots. Handlers run in registration order.
func (b *Bot) AddMarketCallback(h MarketHandler) error {
	if h == nil {
		return fmt.Errorf("bot: nil market handler")
	}
	return b.registry.addMarket(h)
}

func (b *Bot) dispatchFeed(ctx context.Context, item domain.FeedItem) {
	for _, h := range b.registry.feedHandlers() {
		b.invoke(ctx, streamFeed, item.ID, func(ctx context.Context) error {
			return h(ctx, item.Clone(), b)
		})
	}
}

func (b *Bot) dispatchChat(ctx context.Context, item domain.ChatItem) {
	for _, h := range b.registry.chatHandlers() {
		b.invoke(ctx, streamChat, item.ID, func(ctx context.Context) error {
			return h(ctx, item.Clone(), b)
		})
	}
}

func (b *Bot) dispatchMarket(ctx context.Context, snap domain.MarketSnapshot) {
	id := snap.Date.UTC().Format(time.RFC3339Nano)
	for _, h := range b.registry.marketHandlers() {
		b.invoke(ctx, streamMarket, id, func(ctx context.Context) error {
			return h(ctx, snap.Clone(), b)
		})
	}
}

// invoke runs one handler call, converting errors and panics into a logged
// HandlerError so the remaining handlers still run.
func (b *Bot) invoke(ctx context.Context, stream, itemID string, call func(context.Context) error) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return call(ctx)
	}()
	if err == nil {
		return
	}
	hErr := &HandlerError{Stream: stream, ItemID: itemID, Err: err}
	b.metrics.RecordHandlerError(stream)
	b.logError(ctx, "callback failed", hErr, itemID)
}
