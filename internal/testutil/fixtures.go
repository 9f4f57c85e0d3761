package testutil

import (
	"fmt"
	"time"

	"github.com/preston-bernstein/league-watch/internal/domain"
)

// BaseTime is the reference instant fixtures are dated from.
var BaseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// SampleLeague returns a league fixture with the provided id.
func SampleLeague(id string) domain.League {
	return domain.League{ID: id, Name: "League " + id, CreationDate: BaseTime.AddDate(0, -6, 0)}
}

// SampleUser returns the user fixtures log in as.
func SampleUser() domain.User {
	return domain.User{ID: "user-1", Name: "Ana", Email: "ana@example.com"}
}

// SampleFeedItem returns a sale feed item dated n minutes after BaseTime.
func SampleFeedItem(id string, n int) domain.FeedItem {
	return domain.FeedItem{
		ID:   id,
		Date: BaseTime.Add(time.Duration(n) * time.Minute),
		Type: domain.FeedTypeSale,
		Meta: domain.FeedMeta{PlayerID: "player-" + id, SellerName: "Ben", Price: 1_000_000},
	}
}

// FeedRange returns count feed items with ids prefix-<start> onward.
func FeedRange(prefix string, start, count int) []domain.FeedItem {
	items := make([]domain.FeedItem, 0, count)
	for i := start; i < start+count; i++ {
		items = append(items, SampleFeedItem(fmt.Sprintf("%s-%d", prefix, i), i))
	}
	return items
}

// SampleChatItem returns a chat message dated n minutes after BaseTime.
func SampleChatItem(id, userID string, n int) domain.ChatItem {
	return domain.ChatItem{
		ID:       id,
		Date:     BaseTime.Add(time.Duration(n) * time.Minute),
		UserID:   userID,
		Username: "user " + userID,
		Message:  "message " + id,
	}
}

// ChatRange returns count chat items with ids prefix-<start> onward.
func ChatRange(prefix string, start, count int) []domain.ChatItem {
	items := make([]domain.ChatItem, 0, count)
	for i := start; i < start+count; i++ {
		items = append(items, SampleChatItem(fmt.Sprintf("%s-%d", prefix, i), "user-2", i))
	}
	return items
}

// SampleMarket returns an undated market listing the given player ids.
func SampleMarket(playerIDs ...string) domain.MarketSnapshot {
	players := make([]domain.MarketPlayer, 0, len(playerIDs))
	for _, id := range playerIDs {
		players = append(players, domain.MarketPlayer{
			ID:          id,
			FirstName:   "First " + id,
			LastName:    "Last " + id,
			Position:    domain.PositionMidfielder,
			Price:       2_000_000,
			MarketValue: 1_900_000,
			Offers:      []domain.Offer{},
		})
	}
	return domain.MarketSnapshot{Players: players}
}
