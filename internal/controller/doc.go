// Package controller owns the prompt queue and decides when queued prompts
// are sent. It is structured into small files by concern:
//
//   - controller.go: core Controller type, submission, dispatch, edit/delete.
//   - errors.go: error types and helpers (IsNotBusy, IsInvalidText,
//     IsAdapterUnavailable).
//   - events.go: lifecycle Event type and EventPublisher interface.
//   - eventpub_memory.go: in-memory publisher for tests.
//
// The controller accepts submissions only while the monitor's verdict is
// busy: an idle-time submission belongs on the direct path, not the queue.
// Dispatch is driven solely by settled busy→idle edges from the monitor, at
// most one send per edge. The queue store is owned exclusively by this
// package; everything else reads through accessors.
package controller
