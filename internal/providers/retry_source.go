package providers

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/preston-bernstein/league-watch/internal/domain"
	"github.com/preston-bernstein/league-watch/internal/metrics"
)

const (
	defaultRetryAttempts = 3
	defaultBackoff       = 200 * time.Millisecond
)

type backoffFunc func(attempt int) time.Duration

// retryingSource wraps a Source with retry/backoff behavior. Retries stay
// inside a single call; callers never see a delay carried across calls.
type retryingSource struct {
	inner       Source
	logger      *slog.Logger
	metrics     *metrics.Recorder
	maxAttempts int
	backoffFn   backoffFunc

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewRetryingSource wraps the given source with retries. If maxAttempts/backoff are <= 0, defaults are used.
func NewRetryingSource(inner Source, logger *slog.Logger, recorder *metrics.Recorder, maxAttempts int, backoff time.Duration) Source {
	return NewRetryingSourceWithRNG(inner, logger, recorder, nil, maxAttempts, backoff)
}

// NewRetryingSourceWithRNG is NewRetryingSource with an explicit jitter source.
func NewRetryingSourceWithRNG(inner Source, logger *slog.Logger, recorder *metrics.Recorder, rng *rand.Rand, maxAttempts int, backoff time.Duration) Source {
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &retryingSource{
		inner:       inner,
		logger:      logger,
		metrics:     recorder,
		maxAttempts: maxAttempts,
		rng:         rng,
		backoffFn: func(attempt int) time.Duration {
			return time.Duration(attempt) * backoff
		},
	}
}

func (r *retryingSource) Login(ctx context.Context, username, password string) (domain.User, []domain.League, error) {
	type result struct {
		user    domain.User
		leagues []domain.League
	}
	res, err := withRetry(ctx, r, metrics.StreamLogin, func(ctx context.Context) (result, error) {
		user, leagues, err := r.inner.Login(ctx, username, password)
		return result{user: user, leagues: leagues}, err
	})
	return res.user, res.leagues, err
}

func (r *retryingSource) FetchFeedPage(ctx context.Context, league domain.League, offset int) ([]domain.FeedItem, error) {
	return withRetry(ctx, r, metrics.StreamFeed, func(ctx context.Context) ([]domain.FeedItem, error) {
		return r.inner.FetchFeedPage(ctx, league, offset)
	})
}

func (r *retryingSource) FetchChatPage(ctx context.Context, league domain.League, pageSize int, token string) ([]domain.ChatItem, string, error) {
	type result struct {
		items []domain.ChatItem
		next  string
	}
	res, err := withRetry(ctx, r, metrics.StreamChat, func(ctx context.Context) (result, error) {
		items, next, err := r.inner.FetchChatPage(ctx, league, pageSize, token)
		return result{items: items, next: next}, err
	})
	return res.items, res.next, err
}

func (r *retryingSource) FetchMarket(ctx context.Context, league domain.League) (domain.MarketSnapshot, error) {
	return withRetry(ctx, r, metrics.StreamMarket, func(ctx context.Context) (domain.MarketSnapshot, error) {
		return r.inner.FetchMarket(ctx, league)
	})
}

func withRetry[T any](ctx context.Context, r *retryingSource, stream string, call func(context.Context) (T, error)) (T, error) {
	var zero T
	if r.inner == nil {
		return zero, ErrSourceUnavailable
	}

	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		start := time.Now()
		out, err := call(ctx)
		r.metrics.RecordSourceAttempt(stream, time.Since(start), err)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if rlErr, ok := AsRateLimitError(err); ok {
			r.metrics.RecordRateLimit(stream, rlErr.RetryAfter)
		}
		if attempt == r.maxAttempts || !retryable(err) {
			break
		}

		logWithStream(ctx, r.logger, slog.LevelWarn, stream, "source fetch retry", "attempt", attempt, "max_attempts", r.maxAttempts, "err", err)

		delay := r.computeDelay(err, attempt)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	logWithStream(ctx, r.logger, slog.LevelWarn, stream, "source fetch failed", "max_attempts", r.maxAttempts, "err", lastErr)
	return zero, lastErr
}

// computeDelay honours Retry-After on rate limits and otherwise jitters the
// linear backoff into [base/2, base].
func (r *retryingSource) computeDelay(err error, attempt int) time.Duration {
	if rlErr, ok := AsRateLimitError(err); ok && rlErr.RetryAfter > 0 {
		return rlErr.RetryAfter
	}
	base := r.backoffFn(attempt)
	if base <= 0 {
		return 0
	}
	half := base / 2
	r.rngMu.Lock()
	jitter := time.Duration(r.rng.Int63n(int64(half) + 1))
	r.rngMu.Unlock()
	return half + jitter
}
