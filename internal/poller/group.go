package poller

import (
	"context"
	"sync"
)

// Group starts several loops together and waits for all of them to exit.
type Group struct {
	loops []*Loop
	wg    sync.WaitGroup
}

// NewGroup returns a group over the given loops.
func NewGroup(loops ...*Loop) *Group {
	return &Group{loops: loops}
}

// Loops returns the grouped loops in the order they were given.
func (g *Group) Loops() []*Loop {
	out := make([]*Loop, len(g.loops))
	copy(out, g.loops)
	return out
}

// Start launches every loop.
func (g *Group) Start(ctx context.Context) {
	for _, l := range g.loops {
		l.Start(ctx)
		g.wg.Add(1)
		go func(l *Loop) {
			defer g.wg.Done()
			<-l.Done()
		}(l)
	}
}

// Stop asks every loop to halt.
func (g *Group) Stop(ctx context.Context) error {
	for _, l := range g.loops {
		_ = l.Stop(ctx)
	}
	return nil
}

// Wait blocks until every started loop has exited.
func (g *Group) Wait() {
	g.wg.Wait()
}

// Statuses reports each loop's status keyed by loop name.
func (g *Group) Statuses() map[string]Status {
	out := make(map[string]Status, len(g.loops))
	for _, l := range g.loops {
		out[l.Name()] = l.Status()
	}
	return out
}

// Ready reports whether every loop is ready, and otherwise the first loop that is not.
func (g *Group) Ready() (bool, string) {
	for _, l := range g.loops {
		if !l.Status().IsReady() {
			return false, l.Name()
		}
	}
	return true, ""
}
