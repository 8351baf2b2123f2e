package resilience

import (
	"context"
	"errors"
	"time"
)

// RetryAfterError is implemented by errors that carry a server-provided wait,
// such as an HTTP 429 with a Retry-After header. Only such errors are retried.
type RetryAfterError interface {
	error
	RetryAfter() time.Duration
}

type RetryPolicy struct {
	// MaxAttempts counts the first call; 2 means a single retry.
	MaxAttempts int
	// MaxDelay caps the wait requested by the server.
	MaxDelay time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 2,
		MaxDelay:    2 * time.Minute,
	}
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func SleepContext(ctx context.Context, d time.Duration) error {
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

type Retrier struct {
	policy RetryPolicy
	sleep  Sleeper
}

func NewRetrier(policy RetryPolicy, sleep Sleeper) *Retrier {
	defaults := DefaultRetryPolicy()
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = defaults.MaxAttempts
	}
	if policy.MaxDelay <= 0 {
		policy.MaxDelay = defaults.MaxDelay
	}
	if sleep == nil {
		sleep = SleepContext
	}
	return &Retrier{policy: policy, sleep: sleep}
}

// Do runs op until it succeeds, fails with a non-retryable error, or the
// attempt budget is spent. The last error is returned unchanged.
func (r *Retrier) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}

		var retryable RetryAfterError
		if !errors.As(err, &retryable) || attempt == r.policy.MaxAttempts {
			return err
		}

		wait := retryable.RetryAfter()
		if wait > r.policy.MaxDelay {
			wait = r.policy.MaxDelay
		}
		if sleepErr := r.sleep(ctx, wait); sleepErr != nil {
			return sleepErr
		}
	}
	return err
}
