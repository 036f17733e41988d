package agent

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vooagent/voo/internal/models"
)

// DefaultMaxRetryDelay bounds every wait between attempts, including a
// provider's Retry-After hint.
const DefaultMaxRetryDelay = 8 * time.Second

// Policy defines retry behavior for model calls.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first
	MaxAttempts int

	// InitialDelay is the delay before the first retry
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries (default: DefaultMaxRetryDelay).
	// A Retry-After hint longer than this ends the retries instead.
	MaxDelay time.Duration

	// Multiplier is the backoff multiplier (default: 2)
	Multiplier float64

	// Jitter adds up to 10% random delay
	Jitter bool

	// RetryIf determines if an error is retryable
	RetryIf func(error) bool
}

// DefaultPolicy retries retryable model errors three times.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  4,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     DefaultMaxRetryDelay,
		Multiplier:   2.0,
		Jitter:       true,
		RetryIf:      models.IsRetryable,
	}
}

// NoRetry returns a policy that makes exactly one attempt.
func NoRetry() Policy {
	return Policy{MaxAttempts: 1, Multiplier: 1, RetryIf: func(error) bool { return false }}
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultMaxRetryDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = 2.0
	}
	if p.RetryIf == nil {
		p.RetryIf = models.IsRetryable
	}
	return p
}

// Backoff returns the delay before retry number n (1-based), without jitter.
func (p Policy) Backoff(n int) time.Duration {
	p = p.withDefaults()
	delay := float64(p.InitialDelay)
	for i := 1; i < n; i++ {
		delay *= p.Multiplier
	}
	if delay > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(delay)
}

// wait returns the delay before retry n. It reports false when the provider
// asks for a longer pause than MaxDelay allows, in which case the error is
// surfaced instead of stalling the turn.
func (p Policy) wait(n int, err error) (time.Duration, bool) {
	delay := p.Backoff(n)
	if p.Jitter && delay > 0 {
		delay += time.Duration(rand.Float64() * float64(delay) * 0.1)
	}
	if hint := models.RetryAfter(err); hint > delay {
		if hint > p.MaxDelay {
			return 0, false
		}
		delay = hint
	}
	return min(delay, p.MaxDelay), true
}

// Do runs fn until it succeeds, returns a non-retryable error, asks for a wait
// beyond MaxDelay, or the policy runs out of attempts. The last error is
// returned unwrapped so callers can still inspect its kind.
func Do[T any](ctx context.Context, p Policy, fn func(attempt int) (T, error)) (T, error) {
	p = p.withDefaults()
	var zero T
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay, ok := p.wait(attempt-1, lastErr)
			if !ok {
				log.Warn().
					Err(lastErr).
					Dur("retry_after", models.RetryAfter(lastErr)).
					Dur("max_delay", p.MaxDelay).
					Msg("provider asked to wait longer than the retry cap, giving up")
				return zero, lastErr
			}
			log.Warn().
				Err(lastErr).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("retrying model call")

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
		}

		result, err := fn(attempt)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !p.RetryIf(err) {
			return zero, err
		}
	}
	return zero, lastErr
}
