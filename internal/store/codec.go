package store

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/preston-bernstein/league-watch/internal/domain"
	"github.com/preston-bernstein/league-watch/internal/timeutil"
)

const (
	fieldID           = "id"
	fieldKey          = "key"
	fieldValue        = "value"
	fieldDate         = "date"
	fieldName         = "name"
	fieldCreationDate = "creation_date"
	fieldType         = "type"
	fieldMeta         = "meta"
	fieldUserID       = "user_id"
	fieldUsername     = "username"
	fieldMessage      = "message"
	fieldPlayers      = "players"
	fieldPlayerIDs    = "player_ids"
	fieldOffers       = "offers"
)

// Feed items

func encodeFeedItem(item domain.FeedItem) Document {
	meta := Document{
		"player_id":         item.Meta.PlayerID,
		"player_first_name": item.Meta.PlayerFirstName,
		"player_last_name":  item.Meta.PlayerLastName,
		"buyer_id":          item.Meta.BuyerID,
		"buyer_name":        item.Meta.BuyerName,
		"seller_id":         item.Meta.SellerID,
		"seller_name":       item.Meta.SellerName,
		"price":             item.Meta.Price,
		"match_day":         int64(item.Meta.MatchDay),
		"points":            int64(item.Meta.Points),
	}
	if len(item.Meta.Extra) > 0 {
		extra := make(map[string]any, len(item.Meta.Extra))
		for k, v := range item.Meta.Extra {
			extra[k] = v
		}
		meta["extra"] = extra
	}
	return Document{
		fieldID:   item.ID,
		fieldDate: item.Date.UTC(),
		fieldType: int64(item.Type),
		fieldMeta: map[string]any(meta),
	}
}

func decodeFeedItem(key string, doc Document) (domain.FeedItem, error) {
	r := reader{collection: CollectionFeedItem, key: key, doc: doc}
	item := domain.FeedItem{
		ID:   r.requiredString(fieldID),
		Date: r.requiredTime(fieldDate),
		Type: domain.FeedType(r.int64(fieldType)),
	}
	if meta, ok := asMap(doc[fieldMeta]); ok {
		m := reader{collection: CollectionFeedItem, key: key, doc: meta}
		item.Meta = domain.FeedMeta{
			PlayerID:        m.string("player_id"),
			PlayerFirstName: m.string("player_first_name"),
			PlayerLastName:  m.string("player_last_name"),
			BuyerID:         m.string("buyer_id"),
			BuyerName:       m.string("buyer_name"),
			SellerID:        m.string("seller_id"),
			SellerName:      m.string("seller_name"),
			Price:           m.int64("price"),
			MatchDay:        int(m.int64("match_day")),
			Points:          int(m.int64("points")),
		}
		if extra, ok := asMap(meta["extra"]); ok && len(extra) > 0 {
			item.Meta.Extra = make(map[string]string, len(extra))
			for k, v := range extra {
				item.Meta.Extra[k] = stringify(v)
			}
		}
	}
	return item, r.err
}

// Chat items

func encodeChatItem(item domain.ChatItem) Document {
	return Document{
		fieldID:       item.ID,
		fieldDate:     item.Date.UTC(),
		fieldUserID:   item.UserID,
		fieldUsername: item.Username,
		fieldMessage:  item.Message,
	}
}

func decodeChatItem(key string, doc Document) (domain.ChatItem, error) {
	r := reader{collection: CollectionChatItem, key: key, doc: doc}
	item := domain.ChatItem{
		ID:       r.requiredString(fieldID),
		Date:     r.requiredTime(fieldDate),
		UserID:   r.string(fieldUserID),
		Username: r.string(fieldUsername),
		Message:  r.string(fieldMessage),
	}
	return item, r.err
}

// Market snapshots

func encodeMarketSnapshot(snap domain.MarketSnapshot) Document {
	players := make([]any, 0, len(snap.Players))
	ids := make([]any, 0, len(snap.Players))
	for _, p := range snap.Players {
		offers := make([]any, 0, len(p.Offers))
		for _, o := range p.Offers {
			offer := map[string]any{
				"id":        o.ID,
				"price":     o.Price,
				"date":      o.Date.UTC(),
				"user_id":   o.UserID,
				"user_name": o.UserName,
			}
			if o.ValidUntil != nil {
				offer["valid_until"] = o.ValidUntil.UTC()
			}
			offers = append(offers, offer)
		}
		players = append(players, map[string]any{
			"id":           p.ID,
			"first_name":   p.FirstName,
			"last_name":    p.LastName,
			"team_id":      p.TeamID,
			"position":     int64(p.Position),
			"status":       int64(p.Status),
			"price":        p.Price,
			"market_value": p.MarketValue,
			"user_id":      p.UserID,
			"expiry":       p.Expiry,
			fieldOffers:    offers,
		})
		ids = append(ids, p.ID)
	}
	return Document{
		fieldID:        marketKey(snap.Date),
		fieldDate:      snap.Date.UTC(),
		fieldPlayers:   players,
		fieldPlayerIDs: ids,
	}
}

func decodeMarketSnapshot(key string, doc Document) (domain.MarketSnapshot, error) {
	r := reader{collection: CollectionMarket, key: key, doc: doc}
	snap := domain.MarketSnapshot{Date: r.requiredTime(fieldDate)}
	for _, raw := range asSlice(doc[fieldPlayers]) {
		pm, ok := asMap(raw)
		if !ok {
			continue
		}
		p := reader{collection: CollectionMarket, key: key, doc: pm}
		player := domain.MarketPlayer{
			ID:          p.string("id"),
			FirstName:   p.string("first_name"),
			LastName:    p.string("last_name"),
			TeamID:      p.string("team_id"),
			Position:    domain.PlayerPosition(p.int64("position")),
			Status:      domain.PlayerStatus(p.int64("status")),
			Price:       p.int64("price"),
			MarketValue: p.int64("market_value"),
			UserID:      p.string("user_id"),
			Expiry:      p.int64("expiry"),
			Offers:      []domain.Offer{},
		}
		for _, rawOffer := range asSlice(pm[fieldOffers]) {
			om, ok := asMap(rawOffer)
			if !ok {
				continue
			}
			o := reader{collection: CollectionMarket, key: key, doc: om}
			offer := domain.Offer{
				ID:       o.string("id"),
				Price:    o.int64("price"),
				Date:     o.time("date"),
				UserID:   o.string("user_id"),
				UserName: o.string("user_name"),
			}
			if until := o.time("valid_until"); !until.IsZero() {
				offer.ValidUntil = &until
			}
			player.Offers = append(player.Offers, offer)
		}
		snap.Players = append(snap.Players, player)
	}
	return snap, r.err
}

// Leagues and settings

func encodeLeague(league domain.League) Document {
	return Document{
		fieldID:           league.ID,
		fieldName:         league.Name,
		fieldCreationDate: league.CreationDate.UTC(),
	}
}

func decodeLeague(key string, doc Document) (domain.League, error) {
	r := reader{collection: CollectionLeagueData, key: key, doc: doc}
	league := domain.League{
		ID:           r.requiredString(fieldID),
		Name:         r.string(fieldName),
		CreationDate: r.time(fieldCreationDate),
	}
	return league, r.err
}

func encodeSetting(s domain.Setting) Document {
	return Document{
		fieldKey:   s.Key,
		fieldValue: s.Value,
	}
}

func decodeSetting(key string, doc Document) (domain.Setting, error) {
	r := reader{collection: CollectionKeyValue, key: key, doc: doc}
	s := domain.Setting{
		Key: r.string(fieldKey),
	}
	if _, ok := doc[fieldValue]; !ok {
		r.fail(fieldValue, "is missing")
	}
	s.Value = stringify(doc[fieldValue])
	if s.Key == "" {
		s.Key = key
	}
	return s, r.err
}

// reader pulls typed fields out of a Document, remembering the first failure.
type reader struct {
	collection string
	key        string
	doc        Document
	err        error
}

func (r *reader) fail(field, reason string) {
	if r.err == nil {
		r.err = &DecodeError{Collection: r.collection, Key: r.key, Field: field, Reason: reason}
	}
}

func (r *reader) string(field string) string {
	switch v := r.doc[field].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return stringify(v)
	}
}

func (r *reader) requiredString(field string) string {
	s := r.string(field)
	if s == "" {
		r.fail(field, "is missing")
	}
	return s
}

func (r *reader) int64(field string) int64 {
	n, _ := asInt64(r.doc[field])
	return n
}

func (r *reader) time(field string) time.Time {
	t, _ := asTime(r.doc[field])
	return t
}

func (r *reader) requiredTime(field string) time.Time {
	raw, present := r.doc[field]
	if !present || raw == nil {
		r.fail(field, "is missing")
		return time.Time{}
	}
	t, ok := asTime(raw)
	if !ok {
		r.fail(field, "is not a timestamp")
	}
	return t
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t.UTC(), true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return asTime(*t)
	case string:
		parsed, err := timeutil.ParseUTC(t)
		return parsed, err == nil
	case int64, int, float64, json.Number:
		secs, ok := asInt64(t)
		if !ok || secs <= 0 {
			return time.Time{}, false
		}
		return time.Unix(secs, 0).UTC(), true
	default:
		return time.Time{}, false
	}
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			return int64(f), ferr == nil
		}
		return i, true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Document:
		return m, true
	default:
		return nil, false
	}
}

func asSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []map[string]any:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out
	case []string:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out
	default:
		return nil
	}
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case int64:
		return strconv.FormatInt(s, 10)
	case int:
		return strconv.Itoa(s)
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

func containsString(v any, want string) bool {
	for _, item := range asSlice(v) {
		if s, ok := item.(string); ok && s == want {
			return true
		}
	}
	return false
}
