package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"github.com/preston-bernstein/league-watch/internal/bot"
	"github.com/preston-bernstein/league-watch/internal/domain"
)

// TelegramSender is the part of *tgbotapi.BotAPI the relay uses.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramRelay forwards chat messages from other users to one Telegram chat.
type TelegramRelay struct {
	sender TelegramSender
	chatID int64
}

// NewTelegramBot authenticates token against the Bot API.
func NewTelegramBot(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return api, nil
}

func NewTelegramRelay(sender TelegramSender, chatID int64) *TelegramRelay {
	return &TelegramRelay{sender: sender, chatID: chatID}
}

// Chat sends the message as plain text.
func (r *TelegramRelay) Chat(_ context.Context, item domain.ChatItem, b *bot.Bot) error {
	if isOwnMessage(item, b) {
		return nil
	}
	msg := tgbotapi.MessageConfig{
		BaseChat:              tgbotapi.BaseChat{ChatID: r.chatID},
		Text:                  fmt.Sprintf("[%s] %s", b.League().Name, FormatChat(item)),
		DisableWebPagePreview: true,
	}
	if _, err := r.sender.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
