package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/preston-bernstein/league-watch/internal/bot"
	"github.com/preston-bernstein/league-watch/internal/domain"
)

const discordUsername = "League Watch"

// WebhookExecutor is the part of *discordgo.Session the relay uses.
type WebhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordRelay posts feed items and chat messages to a Discord webhook.
type DiscordRelay struct {
	exec      WebhookExecutor
	webhookID string
	token     string
}

// NewDiscordSession returns a tokenless session; webhooks authenticate by URL token.
func NewDiscordSession() (*discordgo.Session, error) {
	s, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return s, nil
}

func NewDiscordRelay(exec WebhookExecutor, webhookID, token string) *DiscordRelay {
	return &DiscordRelay{exec: exec, webhookID: webhookID, token: token}
}

// Feed posts the item as an embed titled with its type.
func (r *DiscordRelay) Feed(_ context.Context, item domain.FeedItem, b *bot.Bot) error {
	embed := &discordgo.MessageEmbed{
		Title:       item.Type.String(),
		Description: FormatFeed(item),
		Timestamp:   item.Date.UTC().Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: b.League().Name},
	}
	return r.send(&discordgo.WebhookParams{Username: discordUsername, Embeds: []*discordgo.MessageEmbed{embed}})
}

// Chat posts messages written by other users.
func (r *DiscordRelay) Chat(_ context.Context, item domain.ChatItem, b *bot.Bot) error {
	if isOwnMessage(item, b) {
		return nil
	}
	return r.send(&discordgo.WebhookParams{Username: discordUsername, Content: FormatChat(item)})
}

func (r *DiscordRelay) send(params *discordgo.WebhookParams) error {
	if _, err := r.exec.WebhookExecute(r.webhookID, r.token, false, params); err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	return nil
}
