package notify

import (
	"context"

	"github.com/preston-bernstein/league-watch/internal/bot"
	"github.com/preston-bernstein/league-watch/internal/domain"
	"github.com/preston-bernstein/league-watch/internal/logging"
)

// LogFeed logs every new feed item through the cycle's logger.
func LogFeed(ctx context.Context, item domain.FeedItem, _ *bot.Bot) error {
	logging.Info(logging.FromContext(ctx, nil), "feed item",
		logging.FieldItemID, item.ID,
		"type", item.Type.String(),
		"summary", FormatFeed(item),
	)
	return nil
}

// LogChat logs new chat messages written by anyone but the bot's own user.
func LogChat(ctx context.Context, item domain.ChatItem, b *bot.Bot) error {
	if isOwnMessage(item, b) {
		return nil
	}
	logging.Info(logging.FromContext(ctx, nil), "chat message",
		logging.FieldItemID, item.ID,
		"user", item.Username,
		"message", item.Message,
	)
	return nil
}

func isOwnMessage(item domain.ChatItem, b *bot.Bot) bool {
	return b != nil && item.UserID != "" && item.UserID == b.User().ID
}
