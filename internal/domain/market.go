package domain

import "time"

// PlayerPosition mirrors the upstream position codes.
type PlayerPosition int

const (
	PositionUnknown    PlayerPosition = 0
	PositionGoalkeeper PlayerPosition = 1
	PositionDefender   PlayerPosition = 2
	PositionMidfielder PlayerPosition = 3
	PositionForward    PlayerPosition = 4
)

// PlayerStatus mirrors the upstream availability codes.
type PlayerStatus int

const (
	StatusHealthy   PlayerStatus = 0
	StatusInjured   PlayerStatus = 1
	StatusStricken  PlayerStatus = 2
	StatusRehab     PlayerStatus = 4
	StatusRedCard   PlayerStatus = 8
	StatusYellowRed PlayerStatus = 16
	StatusYellow    PlayerStatus = 32
)

// Offer is a bid placed on a market player.
type Offer struct {
	ID         string     `json:"id"`
	Price      int64      `json:"price"`
	Date       time.Time  `json:"date"`
	ValidUntil *time.Time `json:"validUntil,omitempty"`
	UserID     string     `json:"userId,omitempty"`
	UserName   string     `json:"userName,omitempty"`
}

// Clone returns a deep copy of the offer.
func (o Offer) Clone() Offer {
	out := o
	if o.ValidUntil != nil {
		v := *o.ValidUntil
		out.ValidUntil = &v
	}
	return out
}

// MarketPlayer is a player listed on the transfer market.
type MarketPlayer struct {
	ID          string         `json:"id"`
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	TeamID      string         `json:"teamId,omitempty"`
	Position    PlayerPosition `json:"position"`
	Status      PlayerStatus   `json:"status"`
	Price       int64          `json:"price"`
	MarketValue int64          `json:"marketValue"`
	UserID      string         `json:"userId,omitempty"`
	Expiry      int64          `json:"expiry,omitempty"`
	Offers      []Offer        `json:"offers"`
}

// Clone returns a deep copy of the player entry.
func (p MarketPlayer) Clone() MarketPlayer {
	out := p
	if p.Offers != nil {
		out.Offers = make([]Offer, len(p.Offers))
		for i, o := range p.Offers {
			out.Offers[i] = o.Clone()
		}
	}
	return out
}

// MarketSnapshot is the market as observed at Date, its capture time.
type MarketSnapshot struct {
	Date    time.Time      `json:"date"`
	Players []MarketPlayer `json:"players"`
}

// Clone returns a deep copy of the snapshot.
func (s MarketSnapshot) Clone() MarketSnapshot {
	out := s
	if s.Players != nil {
		out.Players = make([]MarketPlayer, len(s.Players))
		for i, p := range s.Players {
			out.Players[i] = p.Clone()
		}
	}
	return out
}

// HasPlayer reports whether the snapshot lists the given player.
func (s MarketSnapshot) HasPlayer(id string) bool {
	for _, p := range s.Players {
		if p.ID == id {
			return true
		}
	}
	return false
}

// PlayerIDs returns the listed player ids in market order.
func (s MarketSnapshot) PlayerIDs() []string {
	ids := make([]string, 0, len(s.Players))
	for _, p := range s.Players {
		ids = append(ids, p.ID)
	}
	return ids
}
