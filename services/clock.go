package services

import "time"

// Clock supplies the current instant. Tests swap in a fixed clock.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
