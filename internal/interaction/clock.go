package interaction

import "time"

// Timer is a cancellable single-shot callback.
type Timer interface {
	Stop() bool
}

// Clock schedules delayed callbacks. Tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock fires callbacks on the runtime timer goroutine.
var SystemClock Clock = realClock{}
