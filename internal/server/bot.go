package server

import (
	"context"

	"github.com/preston-bernstein/league-watch/internal/poller"
)

// Bot is the lifecycle the server drives. *bot.Bot satisfies it.
type Bot interface {
	Connect(ctx context.Context, username, password string) error
	Initialize(ctx context.Context, leagueID string) error
	Run(ctx context.Context) error
	Stop(ctx context.Context) error
	Statuses() map[string]poller.Status
	Ready() (bool, string)
}
