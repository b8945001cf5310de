package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTimer fires immediately and records every requested wait
type fakeTimer struct {
	waits []time.Duration
	ch    chan time.Time
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{ch: make(chan time.Time, 1)}
}

func (t *fakeTimer) Start(d time.Duration) {
	t.waits = append(t.waits, d)
	t.ch <- time.Time{}
}

func (t *fakeTimer) Stop() {}

func (t *fakeTimer) C() <-chan time.Time {
	return t.ch
}

var (
	errTransient = errors.New("transient")
	errFatal     = errors.New("fatal")
)

func TestPolicy_Do(t *testing.T) {
	tests := []struct {
		name             string
		maxAttempts      int
		failures         []error
		expectedError    error
		expectedAttempts int
		expectedWaits    []time.Duration
	}{
		{
			name:             "success on first attempt",
			maxAttempts:      3,
			expectedAttempts: 1,
		},
		{
			name:             "fails twice then succeeds",
			maxAttempts:      3,
			failures:         []error{errTransient, errTransient},
			expectedAttempts: 3,
			expectedWaits:    []time.Duration{2 * time.Second, 2 * time.Second},
		},
		{
			name:             "attempts exhausted",
			maxAttempts:      2,
			failures:         []error{errTransient, errTransient, errTransient},
			expectedError:    errTransient,
			expectedAttempts: 2,
			expectedWaits:    []time.Duration{2 * time.Second},
		},
		{
			name:             "single attempt never waits",
			maxAttempts:      1,
			failures:         []error{errTransient},
			expectedError:    errTransient,
			expectedAttempts: 1,
		},
		{
			name:             "non-retryable error stops immediately",
			maxAttempts:      3,
			failures:         []error{errFatal},
			expectedError:    errFatal,
			expectedAttempts: 1,
		},
		{
			name:             "zero attempts behaves like one",
			maxAttempts:      0,
			failures:         []error{errTransient},
			expectedError:    errTransient,
			expectedAttempts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timer := newFakeTimer()
			p := Policy{
				MaxAttempts: tt.maxAttempts,
				Delay:       func(error) time.Duration { return 2 * time.Second },
				Retryable:   func(err error) bool { return !errors.Is(err, errFatal) },
				Timer:       timer,
			}

			attempts := 0
			err := p.Do(context.Background(), func(attempt int) error {
				attempts++
				assert.Equal(t, attempts, attempt)
				if attempt <= len(tt.failures) {
					return tt.failures[attempt-1]
				}
				return nil
			})

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectedAttempts, attempts)
			assert.Equal(t, tt.expectedWaits, timer.waits)
		})
	}
}

func TestPolicy_DelayDependsOnError(t *testing.T) {
	slow := errors.New("slow")
	timer := newFakeTimer()

	var retried []int
	p := Policy{
		MaxAttempts: 3,
		Delay: func(err error) time.Duration {
			if errors.Is(err, slow) {
				return 3 * time.Second
			}
			return 2 * time.Second
		},
		Timer: timer,
		OnRetry: func(err error, attempt int, wait time.Duration) {
			retried = append(retried, attempt)
		},
	}

	failures := []error{errTransient, slow}
	err := p.Do(context.Background(), func(attempt int) error {
		if attempt <= len(failures) {
			return failures[attempt-1]
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{2 * time.Second, 3 * time.Second}, timer.waits)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestFixed(t *testing.T) {
	p := Fixed(2, time.Second)
	p.Timer = newFakeTimer()

	attempts := 0
	err := p.Do(context.Background(), func(int) error {
		attempts++
		return errTransient
	})

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, []time.Duration{time.Second}, p.Timer.(*fakeTimer).waits)
}
