package model

import (
	"math/rand"
	"time"
)

// Backoff returns exponential backoff with jitter: base doubled per attempt,
// capped at 30s, with up to ±25% jitter.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	d := base * time.Duration(1<<uint(attempt))
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	if d <= 0 {
		return 0
	}
	jitter := time.Duration(rand.Int63n(int64(d)/2)) - d/4
	return d + jitter
}
