package app

import "time"

// Clock tells the current time
type Clock interface {
	Now() time.Time
}

// Timer is a pending one-shot callback
type Timer interface {
	// Stop cancels the callback. It reports false if the callback already ran
	// or was already stopped.
	Stop() bool
}

// Scheduler runs callbacks in the future
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type timeScheduler struct{}

func (timeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock reads the wall clock
var SystemClock Clock = systemClock{}

// TimeScheduler schedules callbacks with time.AfterFunc
var TimeScheduler Scheduler = timeScheduler{}
