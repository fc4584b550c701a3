package app

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"impostor/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fakeScheduler records timers; tests fire them by hand, even stopped ones,
// to simulate a callback that already started when Stop was called.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) last() *fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 {
		return nil
	}
	return s.timers[len(s.timers)-1]
}

func (t *fakeTimer) fire() {
	t.fired = true
	t.f()
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *recordingNotifier) Notify(events ...Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, events...)
}

func (n *recordingNotifier) ofType(typ EventType) []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Event
	for _, e := range n.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func (n *recordingNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = nil
}

// seqRand returns its values in order, wrapping around, reduced modulo n
type seqRand struct {
	mu     sync.Mutex
	values []int
	next   int
}

func (s *seqRand) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v % n
}

func sequentialCodes(codes ...string) CodeGenerator {
	i := 0
	return func() (string, error) {
		code := codes[i%len(codes)]
		i++
		return code, nil
	}
}

type harness struct {
	registry  *Registry
	clock     *fakeClock
	scheduler *fakeScheduler
	notifier  *recordingNotifier
}

var testPairs = []domain.WordPair{{Team: "cat", Intruder: "dog"}}

// newHarness builds a registry whose first dealt round makes the second
// player the impostor.
func newHarness(codes ...string) (*harness, error) {
	h := &harness{
		clock:     newFakeClock(),
		scheduler: &fakeScheduler{},
		notifier:  &recordingNotifier{},
	}
	opts := DefaultOptions()
	opts.WordPairs = testPairs
	if len(codes) == 0 {
		codes = []string{"ROOM0001", "ROOM0002", "ROOM0003"}
	}

	r, err := NewRegistry(opts, zap.NewNop().Sugar(),
		WithClock(h.clock),
		WithScheduler(h.scheduler),
		WithRandomizer(&seqRand{values: []int{0, 1, 0}}),
		WithCodeGenerator(sequentialCodes(codes...)),
		WithNotifier(h.notifier),
	)
	h.registry = r
	return h, err
}
