package ports

import "time"

// Clock is the time source used for stuck detection and delayed messages.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
