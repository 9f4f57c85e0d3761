package providers

import (
	"context"

	"github.com/preston-bernstein/league-watch/internal/domain"
)

// Source is the remote league service as the bot sees it.
//
// FetchFeedPage returns the page of feed items starting at offset; an empty
// page means the feed is exhausted. FetchChatPage returns up to pageSize chat
// items plus the token for the next page; an empty token means no more pages.
// FetchMarket returns the current market with Date unset.
type Source interface {
	Login(ctx context.Context, username, password string) (domain.User, []domain.League, error)
	FetchFeedPage(ctx context.Context, league domain.League, offset int) ([]domain.FeedItem, error)
	FetchChatPage(ctx context.Context, league domain.League, pageSize int, token string) ([]domain.ChatItem, string, error)
	FetchMarket(ctx context.Context, league domain.League) (domain.MarketSnapshot, error)
}
