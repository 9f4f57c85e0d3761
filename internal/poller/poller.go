package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/preston-bernstein/league-watch/internal/logging"
	"github.com/preston-bernstein/league-watch/internal/metrics"
)

const defaultInterval = 30 * time.Second

// Task is one poll cycle. It is called with Bootstrap once and Live afterwards.
type Task func(ctx context.Context, mode Mode) error

// Loop runs a Task once in Bootstrap mode and then in Live mode every interval
// until its context is cancelled or Stop is called. The interval is measured
// from the end of one cycle to the start of the next.
type Loop struct {
	name     string
	task     Task
	logger   *slog.Logger
	metrics  *metrics.Recorder
	interval time.Duration
	now      func() time.Time

	done     chan struct{}
	exited   chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of a loop.
type Status struct {
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastError           string    `json:"lastError,omitempty"`
	LastAttempt         time.Time `json:"lastAttempt"`
	LastSuccess         time.Time `json:"lastSuccess"`
	Cycles              int       `json:"cycles"`
}

// IsReady reports whether the loop has had a recent success and is not failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// New constructs a Loop with sane defaults.
func New(name string, interval time.Duration, task Task, logger *slog.Logger, recorder *metrics.Recorder) *Loop {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger != nil {
		logger = logger.With(logging.FieldStream, name)
	}
	return &Loop{
		name:     name,
		task:     task,
		logger:   logger,
		metrics:  recorder,
		interval: interval,
		now:      time.Now,
		done:     make(chan struct{}),
		exited:   make(chan struct{}),
	}
}

// Name returns the loop name, which doubles as its stream label.
func (l *Loop) Name() string {
	return l.name
}

// Start begins polling until the context is cancelled or Stop is called.
func (l *Loop) Start(ctx context.Context) {
	l.startMu.Lock()
	if l.started {
		l.startMu.Unlock()
		return
	}
	l.started = true
	l.startMu.Unlock()

	go func() {
		defer close(l.exited)
		logging.Info(l.logger, "poll loop started", slog.Int64(logging.FieldDurationMS, l.interval.Milliseconds()))

		if l.halted(ctx) {
			logging.Info(l.logger, "poll loop stopped")
			return
		}
		l.runOnce(ctx, Bootstrap)

		timer := time.NewTimer(l.interval)
		defer timer.Stop()
		for {
			select {
			case <-ctx.Done():
				logging.Info(l.logger, "poll loop stopped")
				return
			case <-l.done:
				logging.Info(l.logger, "poll loop stopped")
				return
			case <-timer.C:
			}
			if ctx.Err() != nil {
				continue
			}
			l.runOnce(ctx, Live)
			timer.Reset(l.interval)
		}
	}()
}

// Stop halts the loop. It does not wait for a running cycle to finish; use Done for that.
func (l *Loop) Stop(ctx context.Context) error {
	_ = ctx
	l.stopOnce.Do(func() {
		close(l.done)
	})
	return nil
}

// Done is closed once the loop goroutine has exited. It never closes for a loop that was not started.
func (l *Loop) Done() <-chan struct{} {
	return l.exited
}

func (l *Loop) runOnce(ctx context.Context, mode Mode) {
	start := l.now()
	l.recordAttempt(start)

	err := l.invoke(ctx, mode)
	elapsed := time.Since(start)
	if errors.Is(err, context.Canceled) {
		logging.Debug(l.logger, "poll cycle cancelled", logging.FieldMode, mode.String())
		return
	}
	l.metrics.RecordCycle(l.name, elapsed, err)
	if err != nil {
		logging.Error(l.logger, "poll cycle failed", err,
			logging.FieldMode, mode.String(),
			logging.FieldDurationMS, elapsed.Milliseconds(),
		)
		l.recordFailure(err, start)
		return
	}
	l.recordSuccess(start)
	logging.Debug(l.logger, "poll cycle finished",
		logging.FieldMode, mode.String(),
		logging.FieldDurationMS, elapsed.Milliseconds(),
	)
}

// halted reports whether Stop or cancellation came in before the first cycle.
func (l *Loop) halted(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	case <-l.done:
		return true
	default:
		return false
	}
}

// invoke runs the task, turning a panic into an error so one bad cycle never kills the loop.
func (l *Loop) invoke(ctx context.Context, mode Mode) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("poll cycle panicked: %v", r)
		}
	}()
	if l.task == nil {
		return nil
	}
	return l.task(ctx, mode)
}

func (l *Loop) recordAttempt(at time.Time) {
	l.statusMu.Lock()
	defer l.statusMu.Unlock()
	l.status.LastAttempt = at
	l.status.Cycles++
}

func (l *Loop) recordSuccess(at time.Time) {
	l.statusMu.Lock()
	defer l.statusMu.Unlock()
	l.status.ConsecutiveFailures = 0
	l.status.LastError = ""
	l.status.LastSuccess = at
}

func (l *Loop) recordFailure(err error, at time.Time) {
	l.statusMu.Lock()
	defer l.statusMu.Unlock()
	l.status.ConsecutiveFailures++
	if err != nil {
		l.status.LastError = err.Error()
	}
	l.status.LastAttempt = at
}

// Status returns a snapshot of the loop's recent health.
func (l *Loop) Status() Status {
	l.statusMu.RLock()
	defer l.statusMu.RUnlock()
	return l.status
}
