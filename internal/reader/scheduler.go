package reader

import "time"

// Timer is a pending scheduled call.
type Timer interface {
	// Stop prevents the call from running. Reports false if it already ran.
	Stop() bool
}

// Scheduler runs f once after d. The page-turn animation window is driven
// through it so tests can fire turns by hand.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// ClockScheduler schedules on the runtime timer wheel.
type ClockScheduler struct{}

// AfterFunc implements Scheduler using time.AfterFunc.
func (ClockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
