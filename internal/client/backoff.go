package client

import "time"

// Backoff describes the reconnect schedule.
type Backoff struct {
	Initial    time.Duration
	Max        time.Duration
	MaxRetries int
}

// DefaultBackoff retries after 1s, 2s, 4s, 8s and 16s, then stops.
var DefaultBackoff = Backoff{Initial: time.Second, Max: 30 * time.Second, MaxRetries: 5}

// Delay returns the wait before retry number attempt (1-based) and
// whether that retry should happen at all.
func (b Backoff) Delay(attempt int) (time.Duration, bool) {
	if attempt < 1 || attempt > b.MaxRetries {
		return 0, false
	}
	d := b.Initial
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= b.Max {
			return b.Max, true
		}
	}
	return min(d, b.Max), true
}
