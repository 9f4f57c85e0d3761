package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/preston-bernstein/league-watch/internal/bot"
	"github.com/preston-bernstein/league-watch/internal/domain"
	"github.com/preston-bernstein/league-watch/internal/logging"
	"github.com/preston-bernstein/league-watch/internal/metrics"
)

const defaultSubjectPrefix = "leaguewatch"

// Publisher is the part of *nats.Conn the relay uses.
type Publisher interface {
	Publish(subj string, data []byte) error
}

// Event is the JSON body published for every new item.
type Event struct {
	Stream    string                 `json:"stream"`
	LeagueID  string                 `json:"league_id"`
	SessionID string                 `json:"session_id"`
	Feed      *domain.FeedItem       `json:"feed,omitempty"`
	Chat      *domain.ChatItem       `json:"chat,omitempty"`
	Market    *domain.MarketSnapshot `json:"market,omitempty"`
}

// NATSRelay publishes new items to <prefix>.<stream>.<league>.
type NATSRelay struct {
	pub    Publisher
	prefix string
}

// ConnectNATS dials url with unlimited reconnects and logs connection changes.
func ConnectNATS(url string, logger *slog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("league-watch"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logging.Warn(logger, "nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logging.Info(logger, "nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return nc, nil
}

// NewNATSRelay builds a relay. An empty prefix falls back to "leaguewatch".
func NewNATSRelay(pub Publisher, prefix string) *NATSRelay {
	if prefix == "" {
		prefix = defaultSubjectPrefix
	}
	return &NATSRelay{pub: pub, prefix: prefix}
}

// Subject returns the subject events for stream and league are published on.
func (r *NATSRelay) Subject(stream, leagueID string) string {
	return fmt.Sprintf("%s.%s.%s", r.prefix, stream, leagueID)
}

// Feed publishes a feed event.
func (r *NATSRelay) Feed(_ context.Context, item domain.FeedItem, b *bot.Bot) error {
	return r.publish(b, Event{Stream: metrics.StreamFeed, Feed: &item})
}

// Chat publishes a chat event.
func (r *NATSRelay) Chat(_ context.Context, item domain.ChatItem, b *bot.Bot) error {
	return r.publish(b, Event{Stream: metrics.StreamChat, Chat: &item})
}

// Market publishes a market snapshot event.
func (r *NATSRelay) Market(_ context.Context, snap domain.MarketSnapshot, b *bot.Bot) error {
	return r.publish(b, Event{Stream: metrics.StreamMarket, Market: &snap})
}

func (r *NATSRelay) publish(b *bot.Bot, evt Event) error {
	evt.LeagueID = b.League().ID
	evt.SessionID = b.SessionID()
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", evt.Stream, err)
	}
	if err := r.pub.Publish(r.Subject(evt.Stream, evt.LeagueID), data); err != nil {
		return fmt.Errorf("publish %s event: %w", evt.Stream, err)
	}
	return nil
}
