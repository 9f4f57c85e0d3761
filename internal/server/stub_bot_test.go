package server

import (
	"context"
	"sync"

	"github.com/preston-bernstein/league-watch/internal/poller"
)

// stubBot implements Bot. Run blocks until ctx is
// cancelled or Stop is called.
type stubBot struct {
	mu sync.Mutex

	ConnectErr error
	InitErr    error
	RunErr     error
	StopErr    error
	ReadyVal   bool
	Failing    string
	StatusVal  map[string]poller.Status

	ConnectCalls int
	InitCalls    int
	RunCalls     int
	StopCalls    int
	Username     string
	LeagueID     string

	stopOnce sync.Once
	stopped  chan struct{}
}

func (b *stubBot) init() {
	b.stopOnce.Do(func() { b.stopped = make(chan struct{}) })
}

func (b *stubBot) Connect(ctx context.Context, username, password string) error {
	_ = ctx
	_ = password
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ConnectCalls++
	b.Username = username
	return b.ConnectErr
}

func (b *stubBot) Initialize(ctx context.Context, leagueID string) error {
	_ = ctx
	b.mu.Lock()
	defer b.mu.Unlock()
	b.InitCalls++
	b.LeagueID = leagueID
	return b.InitErr
}

func (b *stubBot) Run(ctx context.Context) error {
	b.init()
	b.mu.Lock()
	b.RunCalls++
	err := b.RunErr
	b.mu.Unlock()
	if err != nil {
		return err
	}
	select {
	case <-ctx.Done():
	case <-b.stopped:
	}
	return nil
}

func (b *stubBot) Stop(ctx context.Context) error {
	_ = ctx
	b.init()
	b.mu.Lock()
	b.StopCalls++
	first := b.StopCalls == 1
	b.mu.Unlock()
	if first {
		close(b.stopped)
	}
	return b.StopErr
}

func (b *stubBot) Statuses() map[string]poller.Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.StatusVal
}

func (b *stubBot) Ready() (bool, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ReadyVal, b.Failing
}

// Calls returns the connect, initialize, run and stop counts.
func (b *stubBot) Calls() (connect, initialize, run, stop int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ConnectCalls, b.InitCalls, b.RunCalls, b.StopCalls
}
