package lmstat

import "time"

// Clock supplies the capture time used to compute how long a seat has been held.
// Tests substitute a TestClock so elapsed hours are deterministic.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system wall clock.
type RealClock struct{}

// Now returns the current system time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// TestClock always reports CurrentTime.
type TestClock struct {
	CurrentTime time.Time
}

// Now returns the fixed test time.
func (t *TestClock) Now() time.Time {
	return t.CurrentTime
}
