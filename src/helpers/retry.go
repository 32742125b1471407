package helpers

import (
	"context"
	"errors"
	"time"

	"xapi-connector/src/logger"
)

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff runs fn up to maxRetries times with exponential backoff.
// The xAPI core never retries on its own; this is for callers that know the
// operation is safe to repeat (connect + login, read-only polling).
// ApiErrors are returned immediately: the server already answered.
func RetryWithBackoff(ctx context.Context, log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func(ctx context.Context) error) error {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		var apiErr *ApiError
		if errors.As(err, &apiErr) || attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		if log != nil {
			log.Warning("%s failed (attempt %d/%d): %v. Retrying in %v", operation, attempt+1, maxRetries, err, delay)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}
