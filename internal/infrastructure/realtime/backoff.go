package realtime

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ReconnectPolicy computes reconnect delays: base * 2^retries, capped at max.
// It is not safe for concurrent use; the connection manager guards it.
type ReconnectPolicy struct {
	backoff *backoff.ExponentialBackOff
	max     time.Duration
	retries int
}

// NewReconnectPolicy creates a reconnect policy. jitter is the randomization factor
// in [0, 1); zero keeps delays deterministic.
func NewReconnectPolicy(base, max time.Duration, jitter float64) *ReconnectPolicy {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.MaxInterval = max
	b.Multiplier = 2
	b.RandomizationFactor = jitter
	b.Reset()

	return &ReconnectPolicy{
		backoff: b,
		max:     max,
	}
}

// Next returns the delay before the next attempt and counts the retry
func (p *ReconnectPolicy) Next() time.Duration {
	delay := p.backoff.NextBackOff()
	if delay < 0 || delay > p.max {
		delay = p.max
	}
	p.retries++
	return delay
}

// Reset returns the policy to its base delay
func (p *ReconnectPolicy) Reset() {
	p.backoff.Reset()
	p.retries = 0
}

// Retries returns the number of delays handed out since the last reset
func (p *ReconnectPolicy) Retries() int {
	return p.retries
}
