package reconnect

import (
	"math/rand"
	"time"
)

// Unbounded disables the retry cap when used as MaxAttempts.
const Unbounded = -1

const (
	DefaultBaseDelay = time.Second
	DefaultMaxDelay  = 30 * time.Second
)

// Policy decides whether a failed stream is retried and after how long.
// It is not safe for concurrent use; callers serialize access.
type Policy struct {
	AutoReconnect bool
	// MaxAttempts caps consecutive retries; Unbounded (-1) never stops.
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// JitterFactor spreads each delay by ±factor. Zero keeps delays deterministic.
	JitterFactor float64

	attempts int
	delay    time.Duration
}

// DefaultPolicy retries forever starting at one second and doubling up to thirty.
func DefaultPolicy() *Policy {
	return &Policy{
		AutoReconnect: true,
		MaxAttempts:   Unbounded,
		BaseDelay:     DefaultBaseDelay,
		MaxDelay:      DefaultMaxDelay,
	}
}

// Next returns the delay before the next retry, or false when no retry
// should happen. A granted retry counts as an attempt and doubles the delay
// for the following one.
func (p *Policy) Next() (time.Duration, bool) {
	if !p.AutoReconnect {
		return 0, false
	}
	if p.MaxAttempts != Unbounded && p.attempts >= p.MaxAttempts {
		return 0, false
	}

	maxDelay := p.maxDelay()
	delay := p.delay
	if delay <= 0 {
		delay = p.baseDelay()
	}

	p.attempts++
	p.delay = min(delay*2, maxDelay)

	return p.jitter(min(delay, maxDelay)), true
}

// Reset restores the attempt counter and delay after a successful open.
func (p *Policy) Reset() {
	p.attempts = 0
	p.delay = p.baseDelay()
}

// Attempts returns the number of retries handed out since the last Reset.
func (p *Policy) Attempts() int {
	return p.attempts
}

// CurrentDelay returns the delay the next granted retry will use.
func (p *Policy) CurrentDelay() time.Duration {
	if p.delay <= 0 {
		return min(p.baseDelay(), p.maxDelay())
	}
	return p.delay
}

// Exhausted reports whether retries are enabled but the cap has been reached.
func (p *Policy) Exhausted() bool {
	return p.AutoReconnect && p.MaxAttempts != Unbounded && p.attempts >= p.MaxAttempts
}

func (p *Policy) baseDelay() time.Duration {
	if p.BaseDelay <= 0 {
		return DefaultBaseDelay
	}
	return p.BaseDelay
}

func (p *Policy) maxDelay() time.Duration {
	if p.MaxDelay <= 0 {
		return DefaultMaxDelay
	}
	return p.MaxDelay
}

func (p *Policy) jitter(d time.Duration) time.Duration {
	if p.JitterFactor <= 0 {
		return d
	}
	// random factor between (1-jitter) and (1+jitter)
	factor := 1 + (rand.Float64()*2-1)*p.JitterFactor
	return time.Duration(float64(d) * factor)
}
