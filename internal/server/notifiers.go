package server

import (
	"errors"
	"log/slog"

	"github.com/preston-bernstein/league-watch/internal/bot"
	"github.com/preston-bernstein/league-watch/internal/config"
	"github.com/preston-bernstein/league-watch/internal/logging"
	"github.com/preston-bernstein/league-watch/internal/notify"
)

// natsConn is the part of *nats.Conn the server holds on to.
type natsConn interface {
	notify.Publisher
	Drain() error
}

// Relay constructors stay vars so tests can substitute fakes.
var (
	connectNATS = func(url string, logger *slog.Logger) (natsConn, error) {
		return notify.ConnectNATS(url, logger)
	}
	newDiscordExecutor = func() (notify.WebhookExecutor, error) {
		return notify.NewDiscordSession()
	}
	newTelegramSender = func(token string) (notify.TelegramSender, error) {
		return notify.NewTelegramBot(token)
	}
)

// registerNotifiers adds the log handlers plus every configured relay to b.
// The returned closers release relay connections on shutdown.
func registerNotifiers(b *bot.Bot, cfg config.NotifyConfig, logger *slog.Logger) ([]func() error, error) {
	var closers []func() error
	errs := []error{
		b.AddFeedCallback(notify.LogFeed),
		b.AddChatCallback(notify.LogChat),
	}

	if cfg.NATSURL != "" {
		conn, err := connectNATS(cfg.NATSURL, logger)
		if err != nil {
			return closers, err
		}
		closers = append(closers, conn.Drain)
		relay := notify.NewNATSRelay(conn, cfg.NATSSubjectPrefix)
		errs = append(errs,
			b.AddFeedCallback(relay.Feed),
			b.AddChatCallback(relay.Chat),
			b.AddMarketCallback(relay.Market),
		)
		logging.Info(logger, "nats relay enabled", "prefix", cfg.NATSSubjectPrefix)
	}

	if cfg.DiscordWebhookID != "" {
		exec, err := newDiscordExecutor()
		if err != nil {
			return closers, err
		}
		relay := notify.NewDiscordRelay(exec, cfg.DiscordWebhookID, cfg.DiscordWebhookToken)
		errs = append(errs,
			b.AddFeedCallback(relay.Feed),
			b.AddChatCallback(relay.Chat),
		)
		logging.Info(logger, "discord relay enabled")
	}

	if cfg.TelegramToken != "" {
		sender, err := newTelegramSender(cfg.TelegramToken)
		if err != nil {
			return closers, err
		}
		relay := notify.NewTelegramRelay(sender, cfg.TelegramChatID)
		errs = append(errs, b.AddChatCallback(relay.Chat))
		logging.Info(logger, "telegram relay enabled", "chat_id", cfg.TelegramChatID)
	}

	return closers, errors.Join(errs...)
}
