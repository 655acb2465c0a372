package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"promptd/internal/evidence"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock collects timers and fires them on Advance, so settle-window
// behavior is tested without wall-clock waits.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	deadline time.Duration
	f        func()
	stopped  bool
	fired    bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return !t.fired
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{deadline: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.deadline <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

// counter records BECAME_IDLE emissions.
type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) inc() { c.mu.Lock(); c.n++; c.mu.Unlock() }

func (c *counter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func newTestMonitor(clk Clock) (*Monitor, *counter) {
	var c counter
	m := New(Config{
		OnBecameIdle: c.inc,
		Settle:       DefaultSettle,
		Clock:        clk,
	})
	return m, &c
}

func busySample(m *Monitor) { m.Observe(evidence.VerdictBusy, "stop-control") }
func idleSample(m *Monitor) { m.Observe(evidence.VerdictIdle, "") }

func TestEdgeEmissionAfterSettle(t *testing.T) {
	clk := &fakeClock{}
	m, c := newTestMonitor(clk)
	defer m.Stop()

	busySample(m)
	busySample(m)
	idleSample(m)
	idleSample(m)
	if c.count() != 0 {
		t.Fatalf("edge fired before settle delay")
	}
	clk.Advance(DefaultSettle - time.Millisecond)
	if c.count() != 0 {
		t.Fatalf("edge fired inside settle window")
	}
	clk.Advance(time.Millisecond)
	if c.count() != 1 {
		t.Fatalf("expected exactly one edge, got %d", c.count())
	}
	// Further idle samples are self-transitions and emit nothing.
	idleSample(m)
	clk.Advance(10 * DefaultSettle)
	if c.count() != 1 {
		t.Fatalf("self-transition emitted an edge, total %d", c.count())
	}
}

func TestDebounceCancelsOnReversal(t *testing.T) {
	clk := &fakeClock{}
	m, c := newTestMonitor(clk)
	defer m.Stop()

	busySample(m)
	idleSample(m)
	clk.Advance(DefaultSettle / 2)
	busySample(m) // reversal inside the window
	clk.Advance(10 * DefaultSettle)
	if c.count() != 0 {
		t.Fatalf("expected zero edges after reversal, got %d", c.count())
	}
}

func TestFlapThenSettleEmitsOnce(t *testing.T) {
	clk := &fakeClock{}
	m, c := newTestMonitor(clk)
	defer m.Stop()

	busySample(m)
	idleSample(m)
	clk.Advance(DefaultSettle / 2)
	busySample(m)
	idleSample(m) // new window starts here
	clk.Advance(DefaultSettle)
	if c.count() != 1 {
		t.Fatalf("expected one edge after flap settles, got %d", c.count())
	}
}

func TestInitialIdleEmitsNothing(t *testing.T) {
	clk := &fakeClock{}
	m, c := newTestMonitor(clk)
	defer m.Stop()

	idleSample(m)
	idleSample(m)
	clk.Advance(10 * DefaultSettle)
	if c.count() != 0 {
		t.Fatalf("idle-at-startup emitted %d edges", c.count())
	}
	if m.Verdict() != evidence.VerdictIdle {
		t.Fatalf("expected initial verdict idle, got %s", m.Verdict())
	}
}

func TestStopSuppressesPendingEdge(t *testing.T) {
	clk := &fakeClock{}
	m, c := newTestMonitor(clk)

	busySample(m)
	idleSample(m)
	m.Stop()
	clk.Advance(10 * DefaultSettle)
	if c.count() != 0 {
		t.Fatalf("edge fired after Stop, got %d", c.count())
	}
	// Observations after teardown are ignored.
	busySample(m)
	idleSample(m)
	clk.Advance(10 * DefaultSettle)
	if c.count() != 0 {
		t.Fatalf("edge fired from post-Stop observation, got %d", c.count())
	}
}

func TestTickUsesEngineAndSnapshot(t *testing.T) {
	clk := &fakeClock{}
	var c counter
	busy := true
	m := New(Config{
		Snapshot: func(context.Context) evidence.Snapshot {
			if busy {
				return evidence.Snapshot{MarkerAttrs: []string{"aria-busy=true"}}
			}
			return evidence.Snapshot{}
		},
		OnBecameIdle: c.inc,
		Clock:        clk,
	})
	defer m.Stop()

	m.Tick(context.Background())
	if m.Verdict() != evidence.VerdictBusy {
		t.Fatalf("expected busy verdict, got %s", m.Verdict())
	}
	if m.Matched() != "busy-marker" {
		t.Fatalf("expected busy-marker diagnostic, got %q", m.Matched())
	}
	busy = false
	m.Tick(context.Background())
	clk.Advance(DefaultSettle)
	if c.count() != 1 {
		t.Fatalf("expected one edge, got %d", c.count())
	}
}
