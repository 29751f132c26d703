package jenkins

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"
)

// retry runs fn, retrying on failure up to c.maxRetries additional times
// with exponential backoff (baseDelay * 2^attempt, no jitter). HTTP 4xx
// responses are permanent and never retried. After exhausting retries the
// returned error wraps msg around the last underlying failure.
func retry[T any](ctx context.Context, c *Client, msg string, fn func() (T, error)) (T, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.baseDelay
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxElapsedTime = 0

	op := func() (T, error) {
		v, err := fn()
		if err != nil && IsClientError(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	v, err := backoff.RetryWithData(op, backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx))
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s: %w", msg, err)
	}
	return v, nil
}
