package game

import (
	"sync"
	"testing"
	"time"

	"github.com/benbenpetit/Seeet/internal/log"
)

// manualScheduler is a Scheduler whose timers only run when the test fires
// them, so resolution delays are deterministic.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Fire runs every timer that is neither stopped nor already fired and
// returns how many ran.
func (s *manualScheduler) Fire() int {
	s.mu.Lock()
	var due []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		t.f()
	}
	return len(due)
}

// Last returns the most recently scheduled timer, or nil.
func (s *manualScheduler) Last() *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 {
		return nil
	}
	return s.timers[len(s.timers)-1]
}

// recordingObserver keeps every event it is notified of.
type recordingObserver struct {
	mu     sync.Mutex
	events []log.GameEvent
}

func (r *recordingObserver) Notify(event log.GameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// phases returns the target phase of every PhaseChange seen so far.
func (r *recordingObserver) phases() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.Type == log.EventPhaseChange {
			out = append(out, e.Phase)
		}
	}
	return out
}

func (r *recordingObserver) count(t log.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func (r *recordingObserver) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// card builds a card or fails the test.
func card(t *testing.T, f Filling, c Color, s Shape, n Size) Card {
	t.Helper()
	cd, err := NewCard(f, c, s, n)
	if err != nil {
		t.Fatalf("NewCard: %v", err)
	}
	return cd
}

// newTestEngine returns an engine dealt in canonical order, with a manual
// scheduler and a recording observer. With the default initial size of 3
// the board is SOLID-GREEN-OVAL-1/2/3, which is a Set.
func newTestEngine(t *testing.T, cfg EngineConfig) (*Engine, *manualScheduler, *recordingObserver) {
	t.Helper()
	sched := &manualScheduler{}
	obs := &recordingObserver{}
	cfg.NoShuffle = true
	cfg.Scheduler = sched
	cfg.Observers = append(cfg.Observers, obs)
	if cfg.Logger == nil {
		cfg.Logger = log.NewMemoryLogger()
	}
	return NewEngine(cfg), sched, obs
}

func mustSelect(t *testing.T, e *Engine, cards ...Card) {
	t.Helper()
	for _, c := range cards {
		if out := e.SelectCard(c); out != OutcomeApplied {
			t.Fatalf("SelectCard(%s) = %s, want applied", c, out)
		}
	}
}
