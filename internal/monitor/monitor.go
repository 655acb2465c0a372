// Package monitor turns per-tick busy/idle verdicts into edge events. It is a
// two-state machine: every observation tick re-infers the verdict, and only a
// busy→idle transition produces anything, namely an idle callback delayed by
// a settle window so that trailing DOM churn can cancel it. How ticks are
// produced (mutation events, fallback polling) is the caller's concern.
package monitor

import (
	"context"
	"sync"
	"time"

	"promptd/internal/evidence"
)

// DefaultSettle is the debounce window between the first idle observation
// and the BECAME_IDLE callback.
const DefaultSettle = 150 * time.Millisecond

// SnapshotFunc produces the current evidence snapshot. Implementations must
// not fail: absent structure yields an empty snapshot, which infers idle.
type SnapshotFunc func(ctx context.Context) evidence.Snapshot

// Config carries Monitor tunables. Zero values select defaults.
type Config struct {
	Snapshot SnapshotFunc
	Engine   *evidence.Engine
	// OnBecameIdle is invoked, outside the monitor's lock, once per settled
	// busy→idle edge.
	OnBecameIdle func()
	Settle       time.Duration
	Clock        Clock
}

// Monitor tracks the previous verdict and emits settled busy→idle edges.
// All methods are safe for concurrent use.
type Monitor struct {
	snapshot SnapshotFunc
	engine   *evidence.Engine
	onIdle   func()
	settle   time.Duration
	clock    Clock

	mu         sync.Mutex
	prev       evidence.Verdict
	matched    string
	pending    Timer
	pendingGen uint64
	stopped    bool
}

// New constructs a Monitor. The initial verdict is idle: assume idle until
// proven otherwise so startup is never blocked.
func New(cfg Config) *Monitor {
	m := &Monitor{
		snapshot: cfg.Snapshot,
		engine:   cfg.Engine,
		onIdle:   cfg.OnBecameIdle,
		settle:   cfg.Settle,
		clock:    cfg.Clock,
		prev:     evidence.VerdictIdle,
	}
	if m.engine == nil {
		m.engine = evidence.NewEngine()
	}
	if m.settle <= 0 {
		m.settle = DefaultSettle
	}
	if m.clock == nil {
		m.clock = SystemClock()
	}
	if m.onIdle == nil {
		m.onIdle = func() {}
	}
	return m
}

// Tick re-infers the verdict from a fresh snapshot and applies the
// transition rules. Callers invoke it on every environment mutation.
func (m *Monitor) Tick(ctx context.Context) {
	if m.snapshot == nil {
		return
	}
	verdict, matched := m.engine.Explain(m.snapshot(ctx))
	m.Observe(verdict, matched)
}

// Observe applies one verdict sample. Split from Tick so tests and
// alternative collectors can drive the state machine directly.
func (m *Monitor) Observe(verdict evidence.Verdict, matched string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	prev := m.prev
	m.prev = verdict
	m.matched = matched

	switch {
	case prev == evidence.VerdictBusy && verdict == evidence.VerdictIdle:
		// Start the settle window at the transition. A reversal before the
		// deadline cancels the pending edge.
		m.cancelPendingLocked()
		m.pendingGen++
		gen := m.pendingGen
		m.pending = m.clock.AfterFunc(m.settle, func() { m.fire(gen) })
	case prev == evidence.VerdictIdle && verdict == evidence.VerdictBusy:
		m.cancelPendingLocked()
	}
	// Self-transitions: nothing. An idle→idle sample inside an open settle
	// window keeps the original deadline.
}

func (m *Monitor) fire(gen uint64) {
	m.mu.Lock()
	if m.stopped || gen != m.pendingGen || m.prev != evidence.VerdictIdle {
		m.mu.Unlock()
		return
	}
	m.pending = nil
	m.mu.Unlock()
	// Outside the lock: the callback may call back into Verdict.
	m.onIdle()
}

func (m *Monitor) cancelPendingLocked() {
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
		m.pendingGen++
	}
}

// Verdict returns the most recently observed verdict.
func (m *Monitor) Verdict() evidence.Verdict {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prev
}

// Matched returns the diagnostic label of the predicate behind the current
// verdict; empty while idle.
func (m *Monitor) Matched() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matched
}

// Stop tears the monitor down. No callback fires after Stop returns and
// subsequent observations are ignored.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	m.cancelPendingLocked()
}
