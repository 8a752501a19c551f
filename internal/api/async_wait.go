package api

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultWaitInterval is the polling interval of WaitForCompletion.
const DefaultWaitInterval = 5 * time.Second

// maxWaitIterations bounds the polling loop when no timeout is given.
const maxWaitIterations = 1000

// WaitForCompletion polls a signature request until it is complete, declined
// or in error. A timeout of zero waits until ctx ends. A 429 response waits
// for its Retry-After before polling again.
func (s SignatureRequestsService) WaitForCompletion(ctx context.Context, id string, interval, timeout time.Duration) (*SignatureRequestInfo, error) {
	return waitForCompletion(ctx, s, id, interval, timeout)
}

func waitForCompletion(ctx context.Context, r Requester, id string, interval, timeout time.Duration) (*SignatureRequestInfo, error) {
	if interval <= 0 {
		interval = DefaultWaitInterval
	}
	waitCtx, cancel := withOptionalTimeout(ctx, timeout)
	defer cancel()

	delay := time.Duration(0)
	for iteration := 0; iteration < maxWaitIterations; iteration++ {
		if err := sleepWithContext(waitCtx, delay); err != nil {
			return nil, err
		}

		info, err := getSignatureRequest(waitCtx, r, id)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, context.DeadlineExceeded
			}
			if errors.Is(err, context.Canceled) {
				return nil, context.Canceled
			}
			var apiErr *APIError
			if errors.As(err, &apiErr) && IsRateLimitError(err) {
				delay = interval
				if apiErr.RetryAfter > 0 {
					delay = apiErr.RetryAfter
				}
				continue
			}
			return nil, err
		}
		if info.IsComplete || info.IsDeclined || info.HasError {
			return info, nil
		}
		delay = interval
	}

	return nil, fmt.Errorf("wait exceeded maximum iterations (%d); signature request %s is still pending", maxWaitIterations, id)
}

// sleepWithContext waits for the duration or returns early on context cancellation.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func withOptionalTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 || remaining <= timeout {
			return ctx, func() {}
		}
	}
	return context.WithTimeout(ctx, timeout)
}
