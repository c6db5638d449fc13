package transport

import (
	"context"
	"time"

	"github.com/agentstation/toolmap/pkg/constants"
)

// Pacer spaces out calls to a rate-limited API and retries failed calls with
// exponential backoff capped at constants.MaxRetryBackoff. A Pacer is shared
// by every call of one run so the delay also separates unrelated requests.
type Pacer struct {
	// Delay is the pause before every request except the first.
	Delay time.Duration

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// Backoff is the wait before the first retry. It doubles per retry.
	Backoff time.Duration

	// Retryable reports whether a failed call is worth another attempt.
	// A nil Retryable retries every error.
	Retryable func(error) bool

	requests int
}

// NewPacer creates a Pacer.
func NewPacer(delay time.Duration, maxRetries int, backoff time.Duration, retryable func(error) bool) *Pacer {
	return &Pacer{
		Delay:      delay,
		MaxRetries: maxRetries,
		Backoff:    backoff,
		Retryable:  retryable,
	}
}

// Requests returns the number of calls made so far.
func (p *Pacer) Requests() int {
	return p.requests
}

// Do calls fn until it succeeds, fails with a non-retryable error, the retry
// budget runs out or ctx is done. It returns the last error from fn, or the
// context error when a wait was interrupted.
func (p *Pacer) Do(ctx context.Context, fn func(context.Context) error) error {
	backoff := p.Backoff
	var lastErr error

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		wait := p.Delay
		if attempt > 0 {
			wait = backoff
			backoff *= 2
			if backoff > constants.MaxRetryBackoff {
				backoff = constants.MaxRetryBackoff
			}
		}
		if p.requests > 0 || attempt > 0 {
			if err := Sleep(ctx, wait); err != nil {
				return err
			}
		}
		p.requests++

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil || (p.Retryable != nil && !p.Retryable(err)) {
			break
		}
	}

	return lastErr
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
