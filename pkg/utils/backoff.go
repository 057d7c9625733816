package utils

import (
	"time"
)

// TransportBackoff waits between retries of transport-level failures.
// Delays grow linearly (base, 2*base, 3*base, ...) and only transient network
// errors qualify for a retry; application-level statuses are never retried.
type TransportBackoff struct {
	MaxAttempts int
	BaseDelay   time.Duration
	sleep       func(time.Duration)
}

// NewTransportBackoff returns a backoff with the default bounds: three
// attempts, one second apart growing linearly.
func NewTransportBackoff() *TransportBackoff {
	return &TransportBackoff{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		sleep:       time.Sleep,
	}
}

// SetSleepFunc overrides the sleeper. Tests use this to avoid real waits.
func (b *TransportBackoff) SetSleepFunc(fn func(time.Duration)) {
	if fn == nil {
		fn = time.Sleep
	}
	b.sleep = fn
}

// ShouldRetry reports whether another attempt is allowed after the given
// zero-based attempt index.
func (b *TransportBackoff) ShouldRetry(attempt int) bool {
	return attempt < b.MaxAttempts-1
}

// Delay returns the linear delay for the given zero-based attempt index.
func (b *TransportBackoff) Delay(attempt int) time.Duration {
	return b.BaseDelay * time.Duration(attempt+1)
}

// Wait sleeps for the delay owed after the given attempt.
func (b *TransportBackoff) Wait(attempt int) {
	b.sleep(b.Delay(attempt))
}
