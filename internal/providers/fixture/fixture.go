package fixture

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/preston-bernstein/league-watch/internal/domain"
)

const (
	// LeagueID is the only league the fixture source knows.
	LeagueID = "fixture-league"

	feedPageSize = 5
	feedWindow   = 12
	chatWindow   = 8
)

// Source returns deterministic league activity derived from the clock. A new
// feed item and chat message appear every minute, so a running bot sees
// fresh items without an upstream service.
type Source struct {
	now func() time.Time
}

// New creates a fixture source with a time source.
func New() *Source {
	return &Source{now: time.Now}
}

// Login accepts any credentials.
func (s *Source) Login(ctx context.Context, username, password string) (domain.User, []domain.League, error) {
	_ = ctx
	_ = password
	user := domain.User{ID: "fixture-user", Name: username, Email: username}
	leagues := []domain.League{{
		ID:           LeagueID,
		Name:         "Fixture League",
		CreationDate: time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC),
	}}
	return user, leagues, nil
}

// FetchFeedPage pages through the last feedWindow minutes of feed items, newest first.
func (s *Source) FetchFeedPage(ctx context.Context, league domain.League, offset int) ([]domain.FeedItem, error) {
	_ = ctx
	_ = league
	if offset < 0 {
		offset = 0
	}
	latest := s.now().UTC().Truncate(time.Minute)

	items := make([]domain.FeedItem, 0, feedPageSize)
	for i := offset; i < feedWindow && len(items) < feedPageSize; i++ {
		at := latest.Add(-time.Duration(i) * time.Minute)
		items = append(items, feedItemAt(at))
	}
	return items, nil
}

// FetchChatPage pages through the last chatWindow minutes of chat messages,
// newest first. The token is the index of the next message.
func (s *Source) FetchChatPage(ctx context.Context, league domain.League, pageSize int, token string) ([]domain.ChatItem, string, error) {
	_ = ctx
	_ = league
	if pageSize <= 0 {
		pageSize = chatWindow
	}
	start := 0
	if token != "" {
		n, err := strconv.Atoi(token)
		if err != nil || n < 0 {
			return nil, "", fmt.Errorf("fixture: invalid page token %q", token)
		}
		start = n
	}
	latest := s.now().UTC().Truncate(time.Minute)

	items := make([]domain.ChatItem, 0, pageSize)
	i := start
	for ; i < chatWindow && len(items) < pageSize; i++ {
		at := latest.Add(-time.Duration(i) * time.Minute)
		items = append(items, chatItemAt(at))
	}
	next := ""
	if i < chatWindow {
		next = strconv.Itoa(i)
	}
	return items, next, nil
}

// FetchMarket returns a fixed roster whose prices move every hour.
func (s *Source) FetchMarket(ctx context.Context, league domain.League) (domain.MarketSnapshot, error) {
	_ = ctx
	_ = league
	hour := s.now().UTC().Truncate(time.Hour)
	drift := int64(hour.Hour()) * 10_000

	return domain.MarketSnapshot{
		Players: []domain.MarketPlayer{
			{
				ID: "player-1", FirstName: "Jane", LastName: "Doe", TeamID: "team-1",
				Position: domain.PositionForward, Status: domain.StatusHealthy,
				Price: 4_500_000 + drift, MarketValue: 4_400_000 + drift,
				Expiry: 86_400, Offers: []domain.Offer{},
			},
			{
				ID: "player-2", FirstName: "John", LastName: "Smith", TeamID: "team-2",
				Position: domain.PositionDefender, Status: domain.StatusInjured,
				Price: 1_200_000 - drift, MarketValue: 1_250_000 - drift, UserID: "fixture-user",
				Expiry: 43_200,
				Offers: []domain.Offer{{ID: "offer-1", Price: 1_300_000, Date: hour, UserID: "fixture-rival", UserName: "Rival"}},
			},
		},
	}, nil
}

func feedItemAt(at time.Time) domain.FeedItem {
	return domain.FeedItem{
		ID:   fmt.Sprintf("fixture-feed-%d", at.Unix()),
		Date: at,
		Type: domain.FeedTypeMarketValue,
		Meta: domain.FeedMeta{
			PlayerID:        "player-1",
			PlayerFirstName: "Jane",
			PlayerLastName:  "Doe",
			Price:           4_500_000 + int64(at.Minute())*1_000,
		},
	}
}

func chatItemAt(at time.Time) domain.ChatItem {
	return domain.ChatItem{
		ID:       fmt.Sprintf("fixture-chat-%d", at.Unix()),
		Date:     at,
		UserID:   "fixture-rival",
		Username: "Rival",
		Message:  "market check " + at.Format("15:04"),
	}
}
