package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/preston-bernstein/league-watch/internal/domain"
	"github.com/preston-bernstein/league-watch/internal/logging"
)

// Collection names shared by every backend.
const (
	CollectionKeyValue   = "key_value"
	CollectionLeagueData = "league_data"
	CollectionFeedItem   = "feed_item"
	CollectionChatItem   = "chat_item"
	CollectionMarket     = "market"
)

// Document is the flat form a record takes inside a backend.
type Document map[string]any

// MarketQuery narrows a market snapshot read. Zero values mean "no filter".
type MarketQuery struct {
	PlayerID string
	Limit    int
}

type listQuery struct {
	orderByDate bool
	desc        bool
	arrayField  string
	arrayValue  string
	limit       int
}

// backend is raw keyed document I/O. Implementations need not be safe for
// concurrent use; the Gateway serializes every call.
type backend interface {
	get(ctx context.Context, collection, key string) (Document, bool, error)
	put(ctx context.Context, collection, key string, doc Document) error
	list(ctx context.Context, collection string, q listQuery) ([]Document, error)
	close() error
}

// Gateway persists feed, chat, market and settings records over a backend.
// All methods are safe for concurrent use; one mutex is held for the span of a
// single storage operation.
type Gateway struct {
	mu      sync.Mutex
	backend backend
	logger  *slog.Logger
}

func newGateway(b backend, logger *slog.Logger) *Gateway {
	return &Gateway{backend: b, logger: logger}
}

// FeedItemExists reports whether a feed item with id is stored.
func (g *Gateway) FeedItemExists(ctx context.Context, id string) (bool, error) {
	return g.exists(ctx, CollectionFeedItem, id)
}

// ChatItemExists reports whether a chat item with id is stored.
func (g *Gateway) ChatItemExists(ctx context.Context, id string) (bool, error) {
	return g.exists(ctx, CollectionChatItem, id)
}

// SaveFeedItem upserts a feed item keyed by its id.
func (g *Gateway) SaveFeedItem(ctx context.Context, item domain.FeedItem) error {
	if item.ID == "" {
		return &ValidationError{Collection: CollectionFeedItem, Field: fieldID}
	}
	return g.put(ctx, CollectionFeedItem, item.ID, encodeFeedItem(item))
}

// SaveChatItem upserts a chat item keyed by its id.
func (g *Gateway) SaveChatItem(ctx context.Context, item domain.ChatItem) error {
	if item.ID == "" {
		return &ValidationError{Collection: CollectionChatItem, Field: fieldID}
	}
	return g.put(ctx, CollectionChatItem, item.ID, encodeChatItem(item))
}

// SaveMarketSnapshot stores a snapshot keyed by its capture time.
// A snapshot without a capture time is rejected with a ValidationError.
func (g *Gateway) SaveMarketSnapshot(ctx context.Context, snap domain.MarketSnapshot) error {
	if snap.Date.IsZero() {
		return &ValidationError{Collection: CollectionMarket, Field: fieldDate}
	}
	return g.put(ctx, CollectionMarket, marketKey(snap.Date), encodeMarketSnapshot(snap))
}

// SaveLeagueData upserts league metadata keyed by league id.
func (g *Gateway) SaveLeagueData(ctx context.Context, league domain.League) error {
	if league.ID == "" {
		return &ValidationError{Collection: CollectionLeagueData, Field: fieldID}
	}
	return g.put(ctx, CollectionLeagueData, league.ID, encodeLeague(league))
}

// SaveValue upserts a setting.
func (g *Gateway) SaveValue(ctx context.Context, key, value string) error {
	if key == "" {
		return &ValidationError{Collection: CollectionKeyValue, Field: fieldKey}
	}
	return g.put(ctx, CollectionKeyValue, key, encodeSetting(domain.Setting{Key: key, Value: value}))
}

// Value returns a setting and whether it was present.
func (g *Gateway) Value(ctx context.Context, key string) (string, bool, error) {
	g.mu.Lock()
	doc, ok, err := g.backend.get(ctx, CollectionKeyValue, key)
	g.mu.Unlock()
	if err != nil {
		return "", false, fmt.Errorf("store: get %s/%s: %w", CollectionKeyValue, key, err)
	}
	if !ok {
		return "", false, nil
	}
	setting, err := decodeSetting(key, doc)
	if err != nil {
		return "", false, err
	}
	return setting.Value, true, nil
}

// FeedItems returns every stored feed item, oldest first.
func (g *Gateway) FeedItems(ctx context.Context) ([]domain.FeedItem, error) {
	docs, err := g.list(ctx, CollectionFeedItem, listQuery{orderByDate: true})
	if err != nil {
		return nil, err
	}
	return decodeAll(g, CollectionFeedItem, docs, decodeFeedItem), nil
}

// ChatItems returns every stored chat item, oldest first.
func (g *Gateway) ChatItems(ctx context.Context) ([]domain.ChatItem, error) {
	docs, err := g.list(ctx, CollectionChatItem, listQuery{orderByDate: true})
	if err != nil {
		return nil, err
	}
	return decodeAll(g, CollectionChatItem, docs, decodeChatItem), nil
}

// LeagueData returns every stored league.
func (g *Gateway) LeagueData(ctx context.Context) ([]domain.League, error) {
	docs, err := g.list(ctx, CollectionLeagueData, listQuery{})
	if err != nil {
		return nil, err
	}
	return decodeAll(g, CollectionLeagueData, docs, decodeLeague), nil
}

// MarketSnapshots returns stored snapshots newest first, optionally limited to
// snapshots listing q.PlayerID and capped at q.Limit entries.
func (g *Gateway) MarketSnapshots(ctx context.Context, q MarketQuery) ([]domain.MarketSnapshot, error) {
	lq := listQuery{orderByDate: true, desc: true, limit: q.Limit}
	if q.PlayerID != "" {
		lq.arrayField = fieldPlayerIDs
		lq.arrayValue = q.PlayerID
	}
	docs, err := g.list(ctx, CollectionMarket, lq)
	if err != nil {
		return nil, err
	}
	return decodeAll(g, CollectionMarket, docs, decodeMarketSnapshot), nil
}

// Close releases the underlying backend.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.backend.close()
}

func (g *Gateway) exists(ctx context.Context, collection, id string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok, err := g.backend.get(ctx, collection, id)
	if err != nil {
		return false, fmt.Errorf("store: get %s/%s: %w", collection, id, err)
	}
	return ok, nil
}

func (g *Gateway) put(ctx context.Context, collection, key string, doc Document) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.backend.put(ctx, collection, key, doc); err != nil {
		return fmt.Errorf("store: put %s/%s: %w", collection, key, err)
	}
	return nil
}

func (g *Gateway) list(ctx context.Context, collection string, q listQuery) ([]Document, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	docs, err := g.backend.list(ctx, collection, q)
	if err != nil {
		return nil, fmt.Errorf("store: list %s: %w", collection, err)
	}
	return docs, nil
}

// decodeAll skips documents that cannot be decoded so one malformed legacy
// document never breaks a full read.
func decodeAll[T any](g *Gateway, collection string, docs []Document, decode func(string, Document) (T, error)) []T {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		key, _ := doc[fieldID].(string)
		rec, err := decode(key, doc)
		if err != nil {
			logging.Warn(g.logger, "skipping undecodable document",
				"collection", collection,
				"error", err,
			)
			continue
		}
		out = append(out, rec)
	}
	return out
}

func marketKey(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
