package security

import (
	"sync"
	"time"
)

// Two rate-limiting disciplines protect two different failure modes: the
// fixed window defends the relay against flooding from a single identity,
// the min-interval throttle keeps a chatty client from saturating its own
// link with redundant state updates.

// FixedWindow is a per-key fixed-window counter. A key's window restarts
// lazily on the first attempt after it elapses, so stale buckets need no
// background sweeping.
type FixedWindow struct {
	mu      sync.Mutex
	buckets map[string]*windowBucket
	limit   int
	window  time.Duration
	now     func() time.Time
}

type windowBucket struct {
	start time.Time
	count int
}

// NewFixedWindow creates a limiter allowing limit attempts per window
// for each key.
func NewFixedWindow(limit int, window time.Duration) *FixedWindow {
	return &FixedWindow{
		buckets: make(map[string]*windowBucket),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow records an attempt for key and reports whether it is within the
// current window's budget.
func (fw *FixedWindow) Allow(key string) bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	now := fw.now()
	bucket := fw.buckets[key]
	if bucket == nil || now.Sub(bucket.start) >= fw.window {
		bucket = &windowBucket{start: now}
		fw.buckets[key] = bucket
	}

	bucket.count++
	return bucket.count <= fw.limit
}

// Forget drops a key's bucket, typically when its connection goes away.
func (fw *FixedWindow) Forget(key string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	delete(fw.buckets, key)
}

// Throttle is a per-key minimum-interval gate. Sends arriving before the
// interval has elapsed are refused, not queued; callers must treat sends
// as best-effort.
type Throttle struct {
	mu       sync.Mutex
	lastSent map[string]time.Time
	now      func() time.Time
}

// NewThrottle creates an empty throttle.
func NewThrottle() *Throttle {
	return &Throttle{
		lastSent: make(map[string]time.Time),
		now:      time.Now,
	}
}

// CanSend reports whether minInterval has elapsed since the last allowed
// send for key, recording the send time when it has.
func (t *Throttle) CanSend(key string, minInterval time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if last, ok := t.lastSent[key]; ok && now.Sub(last) < minInterval {
		return false
	}
	t.lastSent[key] = now
	return true
}

// Reset clears all recorded send times, typically across a reconnect.
func (t *Throttle) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastSent = make(map[string]time.Time)
}
