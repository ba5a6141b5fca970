package testutil

import (
	"context"
	"sync"
	"time"
)

// FakeSleeper records requested sleeps instead of blocking.
//
// Its Sleep method matches resolver.Sleeper, so tests exercise retry and
// pacing paths without wall-clock delays and can assert on the exact
// durations requested.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FakeSleeper struct {
	mu    sync.Mutex
	calls []time.Duration
}

// NewFakeSleeper creates a sleeper with no recorded calls.
func NewFakeSleeper() *FakeSleeper {
	return &FakeSleeper{}
}

// Sleep records d and returns immediately. It still honours a cancelled
// context so cancellation paths can be tested.
func (s *FakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.calls = append(s.calls, d)
	s.mu.Unlock()
	return ctx.Err()
}

// Calls returns a copy of the recorded durations in call order.
func (s *FakeSleeper) Calls() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.calls))
	copy(out, s.calls)
	return out
}

// Count returns how many times Sleep was called with exactly d.
func (s *FakeSleeper) Count(d time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == d {
			n++
		}
	}
	return n
}

// Total returns the sum of all requested durations.
func (s *FakeSleeper) Total() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total time.Duration
	for _, c := range s.calls {
		total += c
	}
	return total
}

// Reset forgets all recorded calls.
func (s *FakeSleeper) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}
