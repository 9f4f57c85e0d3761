package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"github.com/preston-bernstein/league-watch/internal/bot"
	"github.com/preston-bernstein/league-watch/internal/config"
	"github.com/preston-bernstein/league-watch/internal/notify"
	"github.com/preston-bernstein/league-watch/internal/providers/fixture"
	"github.com/preston-bernstein/league-watch/internal/store"
	"github.com/preston-bernstein/league-watch/internal/testutil"
)

type fakeNATS struct {
	mu       sync.Mutex
	subjects []string
	drained  bool
}

func (f *fakeNATS) Publish(subj string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subjects = append(f.subjects, subj)
	return nil
}

func (f *fakeNATS) Drain() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drained = true
	return nil
}

func (f *fakeNATS) published() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.subjects...)
}

type nopWebhook struct{}

func (nopWebhook) WebhookExecute(string, string, bool, *discordgo.WebhookParams, ...discordgo.RequestOption) (*discordgo.Message, error) {
	return nil, nil
}

type nopTelegram struct{}

func (nopTelegram) Send(tgbotapi.Chattable) (tgbotapi.Message, error) { return tgbotapi.Message{}, nil }

// stubRelays swaps the relay constructors for fakes and restores them on cleanup.
func stubRelays(t *testing.T, nc *fakeNATS) *[]string {
	t.Helper()
	origNATS, origDiscord, origTelegram := connectNATS, newDiscordExecutor, newTelegramSender
	t.Cleanup(func() {
		connectNATS, newDiscordExecutor, newTelegramSender = origNATS, origDiscord, origTelegram
	})

	var built []string
	connectNATS = func(url string, _ *slog.Logger) (natsConn, error) {
		built = append(built, "nats:"+url)
		return nc, nil
	}
	newDiscordExecutor = func() (notify.WebhookExecutor, error) {
		built = append(built, "discord")
		return nopWebhook{}, nil
	}
	newTelegramSender = func(token string) (notify.TelegramSender, error) {
		built = append(built, "telegram:"+token)
		return nopTelegram{}, nil
	}
	return &built
}

func fixtureBot(t *testing.T) *bot.Bot {
	t.Helper()
	b := bot.New(bot.Options{
		Source:    fixture.New(),
		Store:     store.NewMemory(nil),
		Intervals: bot.Intervals{Feed: time.Hour, Chat: time.Hour, Market: 2 * time.Millisecond},
	})
	ctx := context.Background()
	if err := b.Connect(ctx, "", ""); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := b.Initialize(ctx, fixture.LeagueID); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return b
}

func TestRegisterNotifiersSkipsUnconfiguredRelays(t *testing.T) {
	built := stubRelays(t, &fakeNATS{})

	closers, err := registerNotifiers(fixtureBot(t), config.NotifyConfig{}, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(closers) != 0 || len(*built) != 0 {
		t.Fatalf("expected no relays, got closers=%d built=%v", len(closers), *built)
	}
}

func TestRegisterNotifiersBuildsConfiguredRelays(t *testing.T) {
	nc := &fakeNATS{}
	built := stubRelays(t, nc)
	b := fixtureBot(t)

	closers, err := registerNotifiers(b, config.NotifyConfig{
		NATSURL:             "nats://localhost:4222",
		NATSSubjectPrefix:   "lw",
		DiscordWebhookID:    "1",
		DiscordWebhookToken: "t",
		TelegramToken:       "tg",
		TelegramChatID:      5,
	}, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	want := "nats:nats://localhost:4222,discord,telegram:tg"
	if got := strings.Join(*built, ","); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if len(closers) != 1 {
		t.Fatalf("expected nats drain closer, got %d", len(closers))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	testutil.Eventually(t, 2*time.Second, func() bool {
		return containsSubject(nc.published(), "lw.market."+fixture.LeagueID)
	}, "live market publish")
	cancel()
	<-done

	_ = closers[0]()
	if !nc.drained {
		t.Fatalf("expected closer to drain the connection")
	}
}

func TestRegisterNotifiersReturnsConnectError(t *testing.T) {
	stubRelays(t, &fakeNATS{})
	connectNATS = func(string, *slog.Logger) (natsConn, error) {
		return nil, errors.New("connection refused")
	}

	if _, err := registerNotifiers(fixtureBot(t), config.NotifyConfig{NATSURL: "nats://x"}, nil); err == nil {
		t.Fatalf("expected connect error")
	}
}

func TestRegisterNotifiersAfterRunFails(t *testing.T) {
	stubRelays(t, &fakeNATS{})
	b := fixtureBot(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()
	testutil.Eventually(t, 2*time.Second, func() bool { return b.Statuses()["market"].Cycles > 0 }, "first market cycle")

	_, err := registerNotifiers(b, config.NotifyConfig{}, nil)
	cancel()
	<-done
	if !errors.Is(err, bot.ErrRegistryFrozen) {
		t.Fatalf("expected frozen registry error, got %v", err)
	}
}

func containsSubject(subjects []string, want string) bool {
	for _, s := range subjects {
		if s == want {
			return true
		}
	}
	return false
}
