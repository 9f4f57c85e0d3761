package notify

import (
	"fmt"
	"strings"

	"github.com/preston-bernstein/league-watch/internal/domain"
)

// FormatFeed renders a one-line human summary of a feed item.
func FormatFeed(item domain.FeedItem) string {
	m := item.Meta
	player := strings.TrimSpace(m.PlayerFirstName + " " + m.PlayerLastName)
	if player == "" {
		player = m.PlayerID
	}
	switch item.Type {
	case domain.FeedTypeSale:
		if m.BuyerName != "" {
			return fmt.Sprintf("%s sold %s to %s for %s", orSomeone(m.SellerName), player, m.BuyerName, formatPrice(m.Price))
		}
		return fmt.Sprintf("%s sold %s for %s", orSomeone(m.SellerName), player, formatPrice(m.Price))
	case domain.FeedTypePurchase:
		if m.SellerName != "" {
			return fmt.Sprintf("%s bought %s from %s for %s", orSomeone(m.BuyerName), player, m.SellerName, formatPrice(m.Price))
		}
		return fmt.Sprintf("%s bought %s for %s", orSomeone(m.BuyerName), player, formatPrice(m.Price))
	case domain.FeedTypeMatchDay:
		return fmt.Sprintf("match day %d finished", m.MatchDay)
	case domain.FeedTypeAchievement:
		return fmt.Sprintf("%s scored %d points", player, m.Points)
	default:
		if player != "" {
			return fmt.Sprintf("%s: %s", item.Type, player)
		}
		return fmt.Sprintf("%s %s", item.Type, item.ID)
	}
}

// FormatChat renders a chat message as "user: text".
func FormatChat(item domain.ChatItem) string {
	return fmt.Sprintf("%s: %s", orSomeone(item.Username), item.Message)
}

func orSomeone(name string) string {
	if name == "" {
		return "someone"
	}
	return name
}

// formatPrice groups thousands with dots, e.g. 1.250.000.
func formatPrice(p int64) string {
	neg := p < 0
	if neg {
		p = -p
	}
	s := fmt.Sprintf("%d", p)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
