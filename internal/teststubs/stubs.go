package teststubs

import (
	"context"
	"sync"

	"github.com/preston-bernstein/league-watch/internal/domain"
)

// ChatPage is one canned chat response.
type ChatPage struct {
	Items []domain.ChatItem
	Next  string
}

// StubSource is a test double for providers.Source. Feed pages are keyed by
// offset and chat pages by token; every request is recorded.
type StubSource struct {
	mu sync.Mutex

	User     domain.User
	Leagues  []domain.League
	LoginErr error

	FeedPages map[int][]domain.FeedItem
	FeedErr   error

	ChatPages map[string]ChatPage
	ChatErr   error

	Market    domain.MarketSnapshot
	MarketErr error

	// Notify, when set, is closed on the first fetch of any stream.
	Notify chan struct{}

	logins      int
	feedOffsets []int
	chatTokens  []string
	chatSizes   []int
	marketCalls int
}

// Login returns the configured user and leagues.
func (s *StubSource) Login(ctx context.Context, username, password string) (domain.User, []domain.League, error) {
	_ = ctx
	_ = username
	_ = password
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logins++
	return s.User, s.Leagues, s.LoginErr
}

// FetchFeedPage returns the page registered for offset, or an empty page.
func (s *StubSource) FetchFeedPage(ctx context.Context, league domain.League, offset int) ([]domain.FeedItem, error) {
	_ = ctx
	_ = league
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify()
	s.feedOffsets = append(s.feedOffsets, offset)
	if s.FeedErr != nil {
		return nil, s.FeedErr
	}
	return cloneFeed(s.FeedPages[offset]), nil
}

// FetchChatPage returns the page registered for token, or an empty final page.
func (s *StubSource) FetchChatPage(ctx context.Context, league domain.League, pageSize int, token string) ([]domain.ChatItem, string, error) {
	_ = ctx
	_ = league
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify()
	s.chatTokens = append(s.chatTokens, token)
	s.chatSizes = append(s.chatSizes, pageSize)
	if s.ChatErr != nil {
		return nil, "", s.ChatErr
	}
	page := s.ChatPages[token]
	items := make([]domain.ChatItem, len(page.Items))
	for i, it := range page.Items {
		items[i] = it.Clone()
	}
	return items, page.Next, nil
}

// FetchMarket returns the configured market.
func (s *StubSource) FetchMarket(ctx context.Context, league domain.League) (domain.MarketSnapshot, error) {
	_ = ctx
	_ = league
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify()
	s.marketCalls++
	if s.MarketErr != nil {
		return domain.MarketSnapshot{}, s.MarketErr
	}
	return s.Market.Clone(), nil
}

// SetFeedPages swaps the feed pages while loops may be running.
func (s *StubSource) SetFeedPages(pages map[int][]domain.FeedItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FeedPages = pages
}

// Logins returns how many times Login was called.
func (s *StubSource) Logins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

// FeedOffsets returns the offsets requested so far.
func (s *StubSource) FeedOffsets() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.feedOffsets...)
}

// ChatTokens returns the tokens requested so far.
func (s *StubSource) ChatTokens() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.chatTokens...)
}

// ChatPageSizes returns the page sizes requested so far.
func (s *StubSource) ChatPageSizes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.chatSizes...)
}

// MarketCalls returns how many times FetchMarket was called.
func (s *StubSource) MarketCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marketCalls
}

// ResetCalls clears the recorded requests.
func (s *StubSource) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedOffsets = nil
	s.chatTokens = nil
	s.chatSizes = nil
	s.marketCalls = 0
}

func (s *StubSource) notify() {
	if s.Notify == nil {
		return
	}
	select {
	case <-s.Notify:
	default:
		close(s.Notify)
	}
}

func cloneFeed(items []domain.FeedItem) []domain.FeedItem {
	if items == nil {
		return nil
	}
	out := make([]domain.FeedItem, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
