package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/preston-bernstein/league-watch/internal/domain"
	"github.com/preston-bernstein/league-watch/internal/logging"
	"github.com/preston-bernstein/league-watch/internal/metrics"
	"github.com/preston-bernstein/league-watch/internal/poller"
	"github.com/preston-bernstein/league-watch/internal/providers"
)

const (
	streamFeed   = metrics.StreamFeed
	streamChat   = metrics.StreamChat
	streamMarket = metrics.StreamMarket

	defaultFeedInterval   = 15 * time.Second
	defaultChatInterval   = 5 * time.Second
	defaultMarketInterval = 60 * time.Second
	defaultChatPageSize   = 100
)

// Store is the persistence the bot needs. *store.Gateway satisfies it.
type Store interface {
	FeedItemExists(ctx context.Context, id string) (bool, error)
	ChatItemExists(ctx context.Context, id string) (bool, error)
	SaveFeedItem(ctx context.Context, item domain.FeedItem) error
	SaveChatItem(ctx context.Context, item domain.ChatItem) error
	SaveMarketSnapshot(ctx context.Context, snap domain.MarketSnapshot) error
	SaveLeagueData(ctx context.Context, league domain.League) error
	SaveValue(ctx context.Context, key, value string) error
	Value(ctx context.Context, key string) (string, bool, error)
}

// Intervals is the pause between the end of one cycle and the start of the next, per stream.
type Intervals struct {
	Feed   time.Duration
	Chat   time.Duration
	Market time.Duration
}

// Options configures a Bot. Source and Store are required.
type Options struct {
	Source       providers.Source
	Store        Store
	Logger       *slog.Logger
	Metrics      *metrics.Recorder
	Intervals    Intervals
	ChatPageSize int
	Now          func() time.Time
}

// Bot polls one league's feed, chat and market, stores everything it sees and
// calls the registered callbacks once per new item.
type Bot struct {
	source       providers.Source
	store        Store
	logger       *slog.Logger
	metrics      *metrics.Recorder
	chatPageSize int
	now          func() time.Time
	sessionID    string

	registry registry
	group    *poller.Group
	running  atomic.Bool

	mu        sync.RWMutex
	connected bool
	user      domain.User
	leagues   []domain.League
	league    *domain.League
}

// New constructs a Bot. Zero intervals and page size fall back to defaults.
func New(opts Options) *Bot {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	pageSize := opts.ChatPageSize
	if pageSize <= 0 {
		pageSize = defaultChatPageSize
	}
	b := &Bot{
		source:       opts.Source,
		store:        opts.Store,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		chatPageSize: pageSize,
		now:          now,
		sessionID:    uuid.NewString(),
	}
	b.group = poller.NewGroup(
		poller.New(streamFeed, orDefault(opts.Intervals.Feed, defaultFeedInterval), b.runFeedCycle, opts.Logger, opts.Metrics),
		poller.New(streamChat, orDefault(opts.Intervals.Chat, defaultChatInterval), b.runChatCycle, opts.Logger, opts.Metrics),
		poller.New(streamMarket, orDefault(opts.Intervals.Market, defaultMarketInterval), b.runMarketCycle, opts.Logger, opts.Metrics),
	)
	return b
}

// Connect logs in and remembers the user and the leagues it belongs to.
func (b *Bot) Connect(ctx context.Context, username, password string) error {
	if b.source == nil {
		return providers.ErrSourceUnavailable
	}
	user, leagues, err := b.source.Login(ctx, username, password)
	if err != nil {
		return &FetchError{Stream: metrics.StreamLogin, Err: err}
	}

	b.mu.Lock()
	b.connected = true
	b.user = user
	b.leagues = append([]domain.League(nil), leagues...)
	b.mu.Unlock()

	logging.Info(b.logger, "connected", "user_id", user.ID, logging.FieldCount, len(leagues))
	return nil
}

// Initialize selects leagueID for this process. A store already bound to a
// different league, or a league the user is not a member of, is a
// ConfigurationError.
func (b *Bot) Initialize(ctx context.Context, leagueID string) error {
	b.mu.RLock()
	connected := b.connected
	leagues := b.leagues
	b.mu.RUnlock()
	if !connected {
		return ErrNotConnected
	}
	if leagueID == "" {
		return &ConfigurationError{Reason: "league id is empty"}
	}

	saved, ok, err := b.store.Value(ctx, domain.SettingLeagueID)
	if err != nil {
		return fmt.Errorf("bot: read league setting: %w", err)
	}
	if ok && saved != leagueID {
		return &ConfigurationError{
			Reason: fmt.Sprintf("store belongs to league %q, not %q; use a separate store per league", saved, leagueID),
		}
	}

	var selected *domain.League
	for i := range leagues {
		if leagues[i].ID == leagueID {
			l := leagues[i].Clone()
			selected = &l
			break
		}
	}
	if selected == nil {
		available := make([]string, 0, len(leagues))
		for _, l := range leagues {
			available = append(available, fmt.Sprintf("%s (%s)", l.ID, l.Name))
		}
		logging.Error(b.logger, "league not found", nil,
			logging.FieldLeagueID, leagueID,
			"available", strings.Join(available, ", "),
		)
		return &ConfigurationError{Reason: fmt.Sprintf("league %q not found", leagueID)}
	}

	if err := b.store.SaveValue(ctx, domain.SettingLeagueID, leagueID); err != nil {
		return fmt.Errorf("bot: save league setting: %w", err)
	}
	if err := b.store.SaveLeagueData(ctx, *selected); err != nil {
		return fmt.Errorf("bot: save league data: %w", err)
	}

	b.mu.Lock()
	b.league = selected
	b.mu.Unlock()

	logging.Info(b.logger, "league selected", logging.FieldLeagueID, selected.ID, "league_name", selected.Name)
	return nil
}

// Run freezes the callbacks, starts the three poll loops and blocks until
// they exit after ctx is cancelled or Stop is called.
func (b *Bot) Run(ctx context.Context) error {
	if _, ok := b.selectedLeague(); !ok {
		return ErrNotInitialized
	}
	if !b.running.CompareAndSwap(false, true) {
		return fmt.Errorf("bot: already running")
	}
	b.registry.freeze()

	logging.Info(b.logger, "bot running", "session_id", b.sessionID)
	b.group.Start(ctx)
	b.group.Wait()
	logging.Info(b.logger, "bot stopped", "session_id", b.sessionID)
	return nil
}

// Stop asks the poll loops to halt. Run returns once they have.
func (b *Bot) Stop(ctx context.Context) error {
	return b.group.Stop(ctx)
}

// League returns the selected league. It is the zero League before Initialize.
func (b *Bot) League() domain.League {
	l, _ := b.selectedLeague()
	return l
}

// User returns the logged-in user.
func (b *Bot) User() domain.User {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.user
}

// Leagues returns every league seen at login.
func (b *Bot) Leagues() []domain.League {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.League, len(b.leagues))
	for i, l := range b.leagues {
		out[i] = l.Clone()
	}
	return out
}

// SessionID identifies this process run.
func (b *Bot) SessionID() string {
	return b.sessionID
}

// Statuses reports the health of each poll loop keyed by stream.
func (b *Bot) Statuses() map[string]poller.Status {
	return b.group.Statuses()
}

// Ready reports whether every poll loop is healthy, and otherwise the first that is not.
func (b *Bot) Ready() (bool, string) {
	return b.group.Ready()
}

func (b *Bot) selectedLeague() (domain.League, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.league == nil {
		return domain.League{}, false
	}
	return b.league.Clone(), true
}

// cycleContext attaches a logger scoped to the stream and league.
func (b *Bot) cycleContext(ctx context.Context, stream string, mode poller.Mode, league domain.League) (context.Context, *slog.Logger) {
	logger := b.logger
	if logger != nil {
		logger = logger.With(
			logging.FieldStream, stream,
			logging.FieldLeagueID, league.ID,
			logging.FieldMode, mode.String(),
		)
	}
	return logging.WithLogger(ctx, logger), logger
}

func (b *Bot) logError(ctx context.Context, msg string, err error, itemID string) {
	logger := logging.FromContext(ctx, b.logger)
	logging.Error(logger, msg, err, logging.FieldItemID, itemID)
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
