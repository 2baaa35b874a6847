package ratelimit

import (
	"time"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Limited   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter counts requests per client identifier inside a sliding window,
// backed by an injected Store. One limiter instance serves any number of
// endpoint classes; the Config passed to Check decides the window.
type Limiter struct {
	store *Store
}

func NewLimiter(store *Store) *Limiter {
	return &Limiter{store: store}
}

// Check applies cfg's sliding window to identifier and consumes one unit of
// quota when the request is allowed. A limited request is not recorded, so a
// rejected call never counts against the client twice.
//
// The read-trim-append round trip is intentionally not atomic across
// concurrent requests from the same identifier; a benign race may let the
// count overshoot the max by a small margin. This is an abuse deterrent, not
// a hard quota.
func (l *Limiter) Check(identifier string, cfg Config) Decision {
	now := time.Now()
	nowMs := now.UnixMilli()
	windowStart := nowMs - cfg.Window.Milliseconds()

	stored, _ := l.store.Get(identifier)

	retained := stored[:0]
	for _, ts := range stored {
		if ts > windowStart {
			retained = append(retained, ts)
		}
	}

	limited := len(retained) >= cfg.MaxRequests

	remaining := cfg.MaxRequests - len(retained)
	if remaining < 0 {
		remaining = 0
	}

	decision := Decision{
		Limited:   limited,
		Limit:     cfg.MaxRequests,
		Remaining: remaining,
		ResetAt:   now.Add(cfg.Window),
	}

	if !limited {
		retained = append(retained, nowMs)
		l.store.Put(identifier, retained)
	}

	return decision
}

// Recent returns the request timestamps currently stored for identifier,
// oldest first, without trimming, consuming quota, or touching the entry's
// recency. Development hook.
func (l *Limiter) Recent(identifier string) []time.Time {
	stored, ok := l.store.Peek(identifier)
	if !ok {
		return nil
	}

	out := make([]time.Time, len(stored))
	for i, ts := range stored {
		out[i] = time.UnixMilli(ts)
	}
	return out
}

// Flush clears the entire backing cache. Development hook.
func (l *Limiter) Flush() {
	l.store.Flush()
}

// TrackedClients reports how many identifiers the backing store holds.
func (l *Limiter) TrackedClients() int {
	return l.store.Len()
}
