package metrics

import (
	"sync"
	"time"
)

type streamStats struct {
	calls           int
	errors          int
	rateLimitHits   int
	lastRetryAfter  time.Duration
	lastCallLatency time.Duration
	cycles          int
	cycleErrors     int
	newItems        int
	handlerErrors   int
}

// Recorder captures lightweight, in-memory metrics per stream (feed, chat, market)
// and forwards them to OpenTelemetry instruments when configured.
type Recorder struct {
	mu    sync.Mutex
	stats map[string]*streamStats
	otel  *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: make(map[string]*streamStats),
		otel:  otel,
	}
}

// RecordSourceAttempt counts a single upstream fetch and stores its latency.
func (r *Recorder) RecordSourceAttempt(stream string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.update(stream, func(s *streamStats) {
		s.calls++
		s.lastCallLatency = duration
		if err != nil {
			s.errors++
		}
	})
	if r.otel != nil {
		r.otel.recordSourceAttempt(stream, duration, err)
	}
}

// RecordRateLimit tracks that an upstream response hit a rate limit and stores the last Retry-After.
func (r *Recorder) RecordRateLimit(stream string, retryAfter time.Duration) {
	if r == nil {
		return
	}

	r.update(stream, func(s *streamStats) {
		s.rateLimitHits++
		if retryAfter > 0 {
			s.lastRetryAfter = retryAfter
		}
	})
	if r.otel != nil {
		r.otel.recordRateLimit(stream, retryAfter)
	}
}

// RecordCycle tracks one poll cycle of a stream.
func (r *Recorder) RecordCycle(stream string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.update(stream, func(s *streamStats) {
		s.cycles++
		if err != nil {
			s.cycleErrors++
		}
	})
	if r.otel != nil {
		r.otel.recordCycle(stream, duration, err)
	}
}

// RecordNewItems counts items seen for the first time.
func (r *Recorder) RecordNewItems(stream string, n int) {
	if r == nil || n <= 0 {
		return
	}

	r.update(stream, func(s *streamStats) { s.newItems += n })
	if r.otel != nil {
		r.otel.recordNewItems(stream, n)
	}
}

// RecordHandlerError counts a failed callback invocation.
func (r *Recorder) RecordHandlerError(stream string) {
	if r == nil {
		return
	}

	r.update(stream, func(s *streamStats) { s.handlerErrors++ })
	if r.otel != nil {
		r.otel.recordHandlerError(stream)
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// SourceCalls returns the total fetch attempts recorded for a stream.
func (r *Recorder) SourceCalls(stream string) int {
	return r.Snapshot(stream).Calls
}

// SourceErrors returns the failed fetch attempts recorded for a stream.
func (r *Recorder) SourceErrors(stream string) int {
	return r.Snapshot(stream).Errors
}

// RateLimitHits returns the number of rate limit events seen for a stream.
func (r *Recorder) RateLimitHits(stream string) int {
	return r.Snapshot(stream).RateLimitHits
}

// LastRetryAfter returns the most recent Retry-After recorded for a stream.
func (r *Recorder) LastRetryAfter(stream string) time.Duration {
	return r.Snapshot(stream).LastRetryAfter
}

// Snapshot is a copy of the current stats for one stream.
type Snapshot struct {
	Calls           int
	Errors          int
	RateLimitHits   int
	LastRetryAfter  time.Duration
	LastCallLatency time.Duration
	Cycles          int
	CycleErrors     int
	NewItems        int
	HandlerErrors   int
}

func (r *Recorder) Snapshot(stream string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stats[stream]
	if !ok || s == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           s.calls,
		Errors:          s.errors,
		RateLimitHits:   s.rateLimitHits,
		LastRetryAfter:  s.lastRetryAfter,
		LastCallLatency: s.lastCallLatency,
		Cycles:          s.cycles,
		CycleErrors:     s.cycleErrors,
		NewItems:        s.newItems,
		HandlerErrors:   s.handlerErrors,
	}
}

func (r *Recorder) update(stream string, fn func(*streamStats)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stats[stream]
	if !ok {
		s = &streamStats{}
		r.stats[stream] = s
	}
	fn(s)
}
