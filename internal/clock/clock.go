// Package clock abstracts wall time and cancellable delayed callbacks so that
// debounce logic can be driven deterministically in tests.
package clock

import "time"

// Timer is a pending callback. Stop cancels it and reports whether it was
// still pending.
type Timer interface {
	Stop() bool
}

// Clock provides the current time and delayed callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
