package kickbase

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/preston-bernstein/league-watch/internal/domain"
	"github.com/preston-bernstein/league-watch/internal/timeutil"
)

func mapUser(u userResponse) domain.User {
	return domain.User{ID: u.ID, Name: u.Name, Email: u.Email}
}

func mapLeague(l leagueResponse) domain.League {
	return domain.League{
		ID:           l.ID,
		Name:         l.Name,
		CreationDate: parseTime(l.CreationDate),
	}
}

func mapFeedItem(f feedItemResponse) domain.FeedItem {
	return domain.FeedItem{
		ID:   f.ID,
		Date: parseTime(f.Date),
		Type: domain.FeedType(f.Type),
		Meta: mapFeedMeta(f.Meta),
	}
}

// mapFeedMeta lifts the known short meta keys into FeedMeta and keeps the rest in Extra.
func mapFeedMeta(raw map[string]any) domain.FeedMeta {
	var meta domain.FeedMeta
	for key, value := range raw {
		switch key {
		case "pid":
			meta.PlayerID = stringValue(value)
		case "pfn":
			meta.PlayerFirstName = stringValue(value)
		case "pln":
			meta.PlayerLastName = stringValue(value)
		case "bid":
			meta.BuyerID = stringValue(value)
		case "bn":
			meta.BuyerName = stringValue(value)
		case "sid":
			meta.SellerID = stringValue(value)
		case "sn":
			meta.SellerName = stringValue(value)
		case "p":
			meta.Price = intValue(value)
		case "day":
			meta.MatchDay = int(intValue(value))
		case "pt":
			meta.Points = int(intValue(value))
		default:
			if meta.Extra == nil {
				meta.Extra = make(map[string]string)
			}
			meta.Extra[key] = stringValue(value)
		}
	}
	return meta
}

func mapChatItem(c chatItemResponse) domain.ChatItem {
	return domain.ChatItem{
		ID:       c.ID,
		Date:     parseTime(c.Date),
		UserID:   c.UserID,
		Username: c.UserName,
		Message:  c.Message,
	}
}

func mapMarket(m marketResponse) domain.MarketSnapshot {
	players := make([]domain.MarketPlayer, 0, len(m.Players))
	for _, p := range m.Players {
		offers := make([]domain.Offer, 0, len(p.Offers))
		for _, o := range p.Offers {
			offer := domain.Offer{
				ID:       o.ID,
				Price:    o.Price,
				Date:     parseTime(o.Date),
				UserID:   o.UserID,
				UserName: o.UserName,
			}
			if until := parseTime(o.ValidUntilDate); !until.IsZero() {
				offer.ValidUntil = &until
			}
			offers = append(offers, offer)
		}
		players = append(players, domain.MarketPlayer{
			ID:          p.ID,
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			TeamID:      p.TeamID,
			Position:    domain.PlayerPosition(p.Position),
			Status:      domain.PlayerStatus(p.Status),
			Price:       p.Price,
			MarketValue: p.MarketValue,
			UserID:      p.UserID,
			Expiry:      p.Expiry,
			Offers:      offers,
		})
	}
	return domain.MarketSnapshot{Players: players}
}

func parseTime(value string) time.Time {
	t, err := timeutil.ParseUTC(value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		b, err := json.Marshal(s)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func intValue(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	default:
		return 0
	}
}
