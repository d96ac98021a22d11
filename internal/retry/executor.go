package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/vvka-141/songplays/pkg/songplays"
)

// Executor runs an operation until it succeeds, fails fatally, or the
// backoff strategy runs out of attempts.
type Executor struct {
	classifier songplays.ErrorClassifier
	strategy   songplays.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor panics if classifier or strategy is nil.
func NewExecutor(classifier songplays.ErrorClassifier, strategy songplays.BackoffStrategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{classifier: classifier, strategy: strategy}
}

// WithOnRetry returns a copy of e that calls fn before every wait.
func (e *Executor) WithOnRetry(fn func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = fn
	return &clone
}

// Execute runs op once, then retries transient failures. When retries are
// exhausted the last error is returned, annotated with the attempt count.
func (e *Executor) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	err := op(ctx)
	if err == nil || !e.classifier.IsTransient(err) {
		return err
	}

	maxAttempts := e.strategy.MaxAttempts()
	attempt := 0
	for ; maxAttempts < 0 || attempt < maxAttempts; attempt++ {
		delay := e.strategy.NextDelay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		case <-timer.C:
		}

		err = op(ctx)
		if err == nil || !e.classifier.IsTransient(err) {
			return err
		}
	}

	if attempt == 0 {
		return err
	}
	return fmt.Errorf("giving up after %d attempts: %w", attempt+1, err)
}
