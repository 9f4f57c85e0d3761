package domain

import "time"

// FeedType tags the kind of activity a feed item describes.
type FeedType int

const (
	FeedTypeUnknown     FeedType = 0
	FeedTypeNews        FeedType = 1
	FeedTypeSale        FeedType = 2
	FeedTypePurchase    FeedType = 3
	FeedTypeMatchDay    FeedType = 8
	FeedTypeLineup      FeedType = 12
	FeedTypeMarketValue FeedType = 15
	FeedTypeAchievement FeedType = 22
)

// String returns a readable label for logs and notifications.
func (t FeedType) String() string {
	switch t {
	case FeedTypeNews:
		return "news"
	case FeedTypeSale:
		return "sale"
	case FeedTypePurchase:
		return "purchase"
	case FeedTypeMatchDay:
		return "match_day"
	case FeedTypeLineup:
		return "lineup"
	case FeedTypeMarketValue:
		return "market_value"
	case FeedTypeAchievement:
		return "achievement"
	default:
		return "unknown"
	}
}

// FeedMeta carries the type-specific payload of a feed item.
// Every field is optional; upstream only fills what the item type needs.
type FeedMeta struct {
	PlayerID        string            `json:"playerId,omitempty"`
	PlayerFirstName string            `json:"playerFirstName,omitempty"`
	PlayerLastName  string            `json:"playerLastName,omitempty"`
	BuyerID         string            `json:"buyerId,omitempty"`
	BuyerName       string            `json:"buyerName,omitempty"`
	SellerID        string            `json:"sellerId,omitempty"`
	SellerName      string            `json:"sellerName,omitempty"`
	Price           int64             `json:"price,omitempty"`
	MatchDay        int               `json:"matchDay,omitempty"`
	Points          int               `json:"points,omitempty"`
	Extra           map[string]string `json:"extra,omitempty"`
}

// Clone returns a deep copy of the metadata.
func (m FeedMeta) Clone() FeedMeta {
	out := m
	if m.Extra != nil {
		out.Extra = make(map[string]string, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// FeedItem is a single league activity entry.
type FeedItem struct {
	ID   string    `json:"id"`
	Date time.Time `json:"date"`
	Type FeedType  `json:"type"`
	Meta FeedMeta  `json:"meta"`
}

// Clone returns a deep copy of the feed item.
func (f FeedItem) Clone() FeedItem {
	out := f
	out.Meta = f.Meta.Clone()
	return out
}
