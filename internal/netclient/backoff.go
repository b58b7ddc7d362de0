package netclient

import (
	"math"
	"time"
)

// Backoff is the reconnect schedule: exponential growth from Base by
// Factor per attempt, capped at Max, giving up after MaxAttempts.
type Backoff struct {
	Base        time.Duration
	Factor      float64
	Max         time.Duration
	MaxAttempts int
}

// DefaultBackoff is the stock reconnect schedule: 2s base, growing by
// half each attempt, 30s ceiling, ten attempts before a hard failure.
func DefaultBackoff() Backoff {
	return Backoff{
		Base:        2 * time.Second,
		Factor:      1.5,
		Max:         30 * time.Second,
		MaxAttempts: 10,
	}
}

// Delay returns the wait before reconnect attempt number attempt,
// starting from zero.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := time.Duration(float64(b.Base) * math.Pow(b.Factor, float64(attempt)))
	if d > b.Max || d < 0 {
		d = b.Max
	}
	return d
}

// Exhausted reports whether attempt exceeds the schedule.
func (b Backoff) Exhausted(attempt int) bool {
	return attempt >= b.MaxAttempts
}
