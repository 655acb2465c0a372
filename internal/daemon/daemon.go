// Package daemon wires the browser surface, the inference monitor, the queue
// store, and the dispatch controller into one runnable service and exposes
// the aggregate as the HTTP API's Service.
package daemon

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"promptd/internal/browser"
	"promptd/internal/controller"
	"promptd/internal/evidence"
	"promptd/internal/httpapi"
	"promptd/internal/monitor"
	"promptd/internal/queue"
	"promptd/pkg/types"
)

// Config holds daemon tunables. Zero values select defaults.
type Config struct {
	Browser browser.Config
	// StateFile is the JSON file persisting the queue and debug flag.
	// Empty disables persistence.
	StateFile string
	// SettleMs overrides the monitor's settle delay.
	SettleMs int
	// AttachRetryMs is the pause between attach attempts.
	AttachRetryMs int
}

func (c Config) settle() time.Duration {
	if c.SettleMs <= 0 {
		return monitor.DefaultSettle
	}
	return time.Duration(c.SettleMs) * time.Millisecond
}

func (c Config) attachRetry() time.Duration {
	if c.AttachRetryMs <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.AttachRetryMs) * time.Millisecond
}

// Daemon owns the component graph. It implements httpapi.Service.
type Daemon struct {
	cfg     Config
	log     zerolog.Logger
	surface *browser.Surface
	mon     *monitor.Monitor
	ctrl    *controller.Controller
	start   time.Time
}

// New builds the component graph without side effects; Run starts it.
func New(cfg Config, log zerolog.Logger) *Daemon {
	persist := queue.NewFileStore(cfg.StateFile)
	surface := browser.New(cfg.Browser, log)
	d := &Daemon{
		cfg:     cfg,
		log:     log,
		surface: surface,
		start:   time.Now(),
	}
	// Monitor and controller reference each other: the controller consults
	// the monitor's verdict on every submission, the monitor's idle edge
	// drives the controller's dispatch. The closure breaks the cycle.
	d.mon = monitor.New(monitor.Config{
		Snapshot:     surface.Snapshot,
		Engine:       evidence.NewEngine(),
		OnBecameIdle: func() { d.ctrl.HandleBecameIdle() },
		Settle:       cfg.settle(),
	})
	d.ctrl = controller.New(controller.Config{
		Store:    queue.NewStore(persist),
		Verdicts: d.mon,
		Input:    surface,
		Trigger:  surface,
		Events: multiPublisher{
			httpapi.MetricsPublisher{},
			eventLogger{log: log},
		},
		Persist: persist,
		Logger:  log,
	})
	return d
}

// Run restores persisted state, attaches to the chat surface (retrying until
// ctx is done), and drives observation ticks. It blocks until ctx is done,
// then tears the monitor down before detaching so no edge fires mid-shutdown.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.ctrl.Hydrate(ctx); err != nil {
		d.log.Warn().Err(err).Msg("persisted state not restored")
	}
	httpapi.SetQueueDepth(d.ctrl.Len())

	go d.attachLoop(ctx)

	<-ctx.Done()
	d.mon.Stop()
	if err := d.surface.Close(); err != nil {
		d.log.Debug().Err(err).Msg("surface close")
	}
	return nil
}

func (d *Daemon) attachLoop(ctx context.Context) {
	for {
		if err := d.surface.Attach(ctx); err == nil {
			break
		} else {
			d.log.Warn().Err(err).Msg("attach failed, retrying")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.cfg.attachRetry()):
		}
	}
	d.surface.Watch(ctx, func() { d.tick(ctx) })
}

func (d *Daemon) tick(ctx context.Context) {
	d.mon.Tick(ctx)
	httpapi.SetBusyVerdict(d.mon.Verdict() == evidence.VerdictBusy)
}

// Submit queues text for dispatch; accepted only while busy.
func (d *Daemon) Submit(ctx context.Context, text string) (int, error) {
	return d.ctrl.Submit(ctx, text)
}

// Items returns the ordered queue snapshot.
func (d *Daemon) Items() []string { return d.ctrl.Items() }

// Delete removes the item at index.
func (d *Daemon) Delete(ctx context.Context, index int) error {
	return d.ctrl.DeleteRequested(ctx, index)
}

// Edit removes the item at index and copies it into the chat input.
func (d *Daemon) Edit(ctx context.Context, index int) error {
	return d.ctrl.EditRequested(ctx, index)
}

// SetDebug toggles the persisted debug flag.
func (d *Daemon) SetDebug(ctx context.Context, enabled bool) error {
	return d.ctrl.SetDebug(ctx, enabled)
}

// Status reports the aggregate daemon state.
func (d *Daemon) Status() types.StatusResponse {
	now := time.Now()
	return types.StatusResponse{
		Verdict:          string(d.mon.Verdict()),
		MatchedPredicate: d.mon.Matched(),
		QueueLength:      d.ctrl.Len(),
		Attached:         d.surface.Attached(),
		PageURL:          d.surface.PageURL(),
		Debug:            d.ctrl.Debug(),
		UptimeSeconds:    int64(now.Sub(d.start).Seconds()),
		ServerTimeUnix:   now.Unix(),
	}
}

// Ready reports whether a chat surface is attached.
func (d *Daemon) Ready() bool { return d.surface.Attached() }

// multiPublisher fans events out to several publishers.
type multiPublisher []controller.EventPublisher

func (m multiPublisher) Publish(e controller.Event) {
	for _, p := range m {
		p.Publish(e)
	}
}

// eventLogger writes controller events to the structured log.
type eventLogger struct{ log zerolog.Logger }

func (l eventLogger) Publish(e controller.Event) {
	l.log.Debug().Str("event", e.Name).Fields(e.Fields).Msg("controller event")
}
