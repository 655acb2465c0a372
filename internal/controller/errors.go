package controller

// notBusyError signals a submission while the generator is idle, for 409
// mapping. The product intent is "queue while busy, send directly otherwise".
type notBusyError struct{}

func (notBusyError) Error() string { return "generator is idle: submit directly instead of queueing" }

// ErrNotBusy constructs a notBusyError.
func ErrNotBusy() error { return notBusyError{} }

// IsNotBusy reports whether err indicates an idle-time submission.
func IsNotBusy(err error) bool {
	_, ok := err.(notBusyError)
	return ok
}

// invalidTextError signals empty-after-trim prompt text, for 400 mapping.
type invalidTextError struct{}

func (invalidTextError) Error() string { return "prompt text is empty" }

// ErrInvalidText constructs an invalidTextError.
func ErrInvalidText() error { return invalidTextError{} }

// IsInvalidText reports whether err indicates rejected prompt text.
func IsInvalidText(err error) bool {
	_, ok := err.(invalidTextError)
	return ok
}

// adapterUnavailableError signals that no input surface or submission
// trigger could be reached, so the HTTP layer can return 503. The queue is
// left unchanged so a later edge can retry.
type adapterUnavailableError struct{ msg string }

func (e adapterUnavailableError) Error() string { return e.msg }

// ErrAdapterUnavailable constructs an adapterUnavailableError.
func ErrAdapterUnavailable(msg string) error { return adapterUnavailableError{msg: msg} }

// IsAdapterUnavailable reports whether err indicates a missing chat surface.
func IsAdapterUnavailable(err error) bool {
	_, ok := err.(adapterUnavailableError)
	return ok
}
