package controller

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"promptd/internal/evidence"
	"promptd/internal/queue"
)

// DebugKey is the persistence key for the debug flag.
const DebugKey = "debug"

// VerdictSource exposes the monitor's current inference.
type VerdictSource interface {
	Verdict() evidence.Verdict
	Matched() string
}

// InputSurface is the external adapter that reads and writes the chat input.
type InputSurface interface {
	ReadText(ctx context.Context) (string, error)
	WriteText(ctx context.Context, text string) error
	Focus(ctx context.Context) error
}

// SubmissionTrigger fires the chat's own submit mechanism, best effort.
type SubmissionTrigger interface {
	Trigger(ctx context.Context) error
}

// PanelNotifier receives read-only queue snapshots to render. It owns no
// business state.
type PanelNotifier interface {
	QueueChanged(items []string)
}

type noopNotifier struct{}

func (noopNotifier) QueueChanged([]string) {}

// Config carries Controller collaborators. Nil optional fields select
// no-op defaults.
type Config struct {
	Store    *queue.Store
	Verdicts VerdictSource
	Input    InputSurface
	Trigger  SubmissionTrigger
	Notifier PanelNotifier
	Events   EventPublisher
	Persist  queue.Persister
	Logger   zerolog.Logger
}

// Controller reacts to submissions and to busy→idle edges. Compound
// operations (peek-write-trigger-pop) are serialized by an internal mutex so
// an edge callback never interleaves with a panel mutation.
type Controller struct {
	mu       sync.Mutex
	store    *queue.Store
	verdicts VerdictSource
	input    InputSurface
	trigger  SubmissionTrigger
	notifier PanelNotifier
	events   EventPublisher
	persist  queue.Persister
	log      zerolog.Logger
	debug    bool
}

// New constructs a Controller from cfg.
func New(cfg Config) *Controller {
	c := &Controller{
		store:    cfg.Store,
		verdicts: cfg.Verdicts,
		input:    cfg.Input,
		trigger:  cfg.Trigger,
		notifier: cfg.Notifier,
		events:   cfg.Events,
		persist:  cfg.Persist,
		log:      cfg.Logger,
	}
	if c.store == nil {
		c.store = queue.NewStore(nil)
	}
	if c.notifier == nil {
		c.notifier = noopNotifier{}
	}
	if c.events == nil {
		c.events = noopPublisher{}
	}
	return c
}

// Hydrate restores persisted state (queue sequence and debug flag).
func (c *Controller) Hydrate(ctx context.Context) error {
	if err := c.store.Hydrate(ctx); err != nil {
		return err
	}
	if c.persist != nil {
		var debug bool
		if ok, err := c.persist.Load(ctx, DebugKey, &debug); err == nil && ok {
			c.mu.Lock()
			c.debug = debug
			c.mu.Unlock()
		}
	}
	return nil
}

// Submit queues text for later dispatch. Accepted only while the current
// verdict is busy; idle-time submissions are rejected so the caller uses the
// direct path. Persists before reporting success.
func (c *Controller) Submit(ctx context.Context, text string) (int, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, ErrInvalidText()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.verdicts == nil || c.verdicts.Verdict() != evidence.VerdictBusy {
		return 0, ErrNotBusy()
	}
	index, err := c.store.Append(ctx, trimmed)
	if err != nil {
		if !queue.IsPersistenceFailure(err) {
			return 0, err
		}
		// In-memory queue stays authoritative; a reload would lose the item.
		c.log.Warn().Err(err).Msg("queued item not persisted")
		c.events.Publish(Event{Name: EventPersistFailed, Fields: map[string]any{"op": "append"}})
	}
	c.notifier.QueueChanged(c.store.Items())
	c.events.Publish(Event{Name: EventQueueAccepted, Fields: map[string]any{"index": index, "length": c.store.Len()}})
	c.log.Debug().Int("index", index).Int("length", c.store.Len()).Msg("prompt queued")
	return index, nil
}

// HandleBecameIdle is invoked by the monitor once per settled busy→idle
// edge. It dispatches at most the head item: write its text into the input
// surface, fire the submission trigger, then pop. Adapter failures abort
// with the queue unchanged so the next edge can retry.
func (c *Controller) HandleBecameIdle() {
	ctx := context.Background()
	c.mu.Lock()
	defer c.mu.Unlock()

	head, ok := c.store.PeekHead()
	if !ok {
		c.events.Publish(Event{Name: EventDispatchSkipped})
		return
	}
	if c.input == nil || c.trigger == nil {
		c.log.Debug().Msg("dispatch aborted: no chat surface attached")
		c.events.Publish(Event{Name: EventDispatchAborted, Fields: map[string]any{"reason": "unattached"}})
		return
	}
	if err := c.input.WriteText(ctx, head); err != nil {
		c.log.Debug().Err(err).Msg("dispatch aborted: input surface write failed")
		c.events.Publish(Event{Name: EventDispatchAborted, Fields: map[string]any{"reason": "write"}})
		return
	}
	_ = c.input.Focus(ctx)
	if err := c.trigger.Trigger(ctx); err != nil {
		c.log.Debug().Err(err).Msg("dispatch aborted: submission trigger failed")
		c.events.Publish(Event{Name: EventDispatchAborted, Fields: map[string]any{"reason": "trigger"}})
		return
	}
	if _, err := c.store.PopHead(ctx); err != nil && queue.IsPersistenceFailure(err) {
		c.log.Warn().Err(err).Msg("dispatched item not removed from persisted queue")
		c.events.Publish(Event{Name: EventPersistFailed, Fields: map[string]any{"op": "pop"}})
	}
	c.notifier.QueueChanged(c.store.Items())
	c.events.Publish(Event{Name: EventDispatchSent, Fields: map[string]any{"remaining": c.store.Len()}})
	if c.debug {
		c.log.Info().Str("text", head).Int("remaining", c.store.Len()).Msg("prompt dispatched")
	} else {
		c.log.Debug().Int("remaining", c.store.Len()).Msg("prompt dispatched")
	}
}

// EditRequested removes the item at index and copies its text into the input
// surface, appended after any unsent text there (joined by a blank line) so
// in-progress typing survives. Out-of-bounds indexes are a no-op.
func (c *Controller) EditRequested(ctx context.Context, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	text, ok, err := c.store.RemoveAt(ctx, index)
	if err != nil && queue.IsPersistenceFailure(err) {
		c.log.Warn().Err(err).Msg("edit removal not persisted")
		c.events.Publish(Event{Name: EventPersistFailed, Fields: map[string]any{"op": "edit"}})
	}
	if !ok {
		return nil
	}
	c.notifier.QueueChanged(c.store.Items())
	if c.input == nil {
		return ErrAdapterUnavailable("no input surface attached")
	}
	existing, err := c.input.ReadText(ctx)
	if err != nil {
		existing = ""
	}
	combined := text
	if strings.TrimSpace(existing) != "" {
		combined = existing + "\n\n" + text
	}
	if err := c.input.WriteText(ctx, combined); err != nil {
		return ErrAdapterUnavailable("input surface write failed: " + err.Error())
	}
	_ = c.input.Focus(ctx)
	c.events.Publish(Event{Name: EventQueueEdited, Fields: map[string]any{"index": index}})
	return nil
}

// DeleteRequested removes the item at index without copying it anywhere.
// Out-of-bounds indexes are a no-op.
func (c *Controller) DeleteRequested(ctx context.Context, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok, err := c.store.RemoveAt(ctx, index)
	if err != nil && queue.IsPersistenceFailure(err) {
		c.log.Warn().Err(err).Msg("deletion not persisted")
		c.events.Publish(Event{Name: EventPersistFailed, Fields: map[string]any{"op": "delete"}})
	}
	if !ok {
		return nil
	}
	c.notifier.QueueChanged(c.store.Items())
	c.events.Publish(Event{Name: EventQueueRemoved, Fields: map[string]any{"index": index}})
	return nil
}

// Items returns a read-only snapshot of the queue.
func (c *Controller) Items() []string { return c.store.Items() }

// Len returns the queue length.
func (c *Controller) Len() int { return c.store.Len() }

// SetDebug toggles and persists the debug flag.
func (c *Controller) SetDebug(ctx context.Context, enabled bool) error {
	c.mu.Lock()
	c.debug = enabled
	c.mu.Unlock()
	if c.persist == nil {
		return nil
	}
	if err := c.persist.Save(ctx, DebugKey, enabled); err != nil {
		c.log.Warn().Err(err).Msg("debug flag not persisted")
		c.events.Publish(Event{Name: EventPersistFailed, Fields: map[string]any{"op": "debug"}})
	}
	return nil
}

// Debug reports the current debug flag.
func (c *Controller) Debug() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.debug
}
