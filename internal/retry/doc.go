// Package retry retries warehouse connection establishment with exponential
// backoff. Statements are never retried: a failed DROP, COPY or INSERT fails
// the run, because the steps are not idempotent.
//
// # Example Usage
//
//	executor := retry.NewExecutor(
//	    retry.NewConnectionErrorClassifier(),
//	    retry.NewExponentialBackoff(3),
//	)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
//
// Executor instances are safe for concurrent use. WithOnRetry returns an
// independent copy.
package retry
