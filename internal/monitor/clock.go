package monitor

import "time"

// Timer is a cancellable deadline. Stop reports whether the call prevented
// the timer from firing.
type Timer interface {
	Stop() bool
}

// Clock abstracts timer creation so tests can drive the settle window with a
// virtual clock instead of sleeping.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock returns the wall-clock backed Clock used outside tests.
func SystemClock() Clock { return realClock{} }
