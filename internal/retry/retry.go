// Package retry runs an operation a bounded number of times with a delay chosen per failure
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Timer is the clock used between attempts. Tests inject a fake one.
type Timer = backoff.Timer

// Policy decides how many times an operation runs and how long to wait between runs.
//
// Delay receives the error of the failed attempt and returns the wait before the next one.
// Retryable returning false stops the loop immediately with that error.
type Policy struct {
	MaxAttempts int
	Delay       func(err error) time.Duration
	Retryable   func(err error) bool
	Timer       Timer
	OnRetry     func(err error, attempt int, wait time.Duration)
}

// Fixed returns a policy that retries every error after the same delay
func Fixed(maxAttempts int, delay time.Duration) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		Delay:       func(error) time.Duration { return delay },
	}
}

// Do runs op until it succeeds, the attempts are exhausted, a non-retryable error
// is returned or ctx is done. op receives the 1-based attempt number.
// The error of the last attempt is returned unchanged.
func (p Policy) Do(ctx context.Context, op func(attempt int) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	attempt := 0
	next := &errorBackOff{delay: p.Delay}

	operation := func() error {
		attempt++
		err := op(attempt)
		if err == nil {
			return nil
		}
		next.last = err
		if p.Retryable != nil && !p.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	var notify backoff.Notify
	if p.OnRetry != nil {
		notify = func(err error, wait time.Duration) {
			p.OnRetry(err, attempt, wait)
		}
	}

	b := backoff.WithContext(backoff.WithMaxRetries(next, uint64(maxAttempts-1)), ctx)
	return backoff.RetryNotifyWithTimer(operation, b, notify, p.Timer)
}

// errorBackOff hands out the delay for the most recent failure
type errorBackOff struct {
	delay func(err error) time.Duration
	last  error
}

func (b *errorBackOff) NextBackOff() time.Duration {
	if b.delay == nil {
		return 0
	}
	return b.delay(b.last)
}

func (b *errorBackOff) Reset() {
	b.last = nil
}
