package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

type mockOperation struct {
	invocations  int
	failUntil    int // invocations below this fail
	transientErr error
}

func (m *mockOperation) execute(ctx context.Context) error {
	m.invocations++
	if m.invocations < m.failUntil {
		if m.transientErr != nil {
			return m.transientErr
		}
		return &pgconn.PgError{Code: "08006", Message: "connection failure"}
	}
	return nil
}

func fastBackoff(attempts int) *ExponentialBackoff {
	return NewExponentialBackoff(attempts, WithInitialDelay(time.Millisecond), WithJitter(0))
}

func TestNewExecutor_PanicsOnNil(t *testing.T) {
	t.Run("classifier", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for nil classifier")
			}
		}()
		NewExecutor(nil, fastBackoff(1))
	})
	t.Run("strategy", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for nil strategy")
			}
		}()
		NewExecutor(NewConnectionErrorClassifier(), nil)
	})
}

func TestExecutor_Execute_SuccessOnFirstAttempt(t *testing.T) {
	executor := NewExecutor(NewConnectionErrorClassifier(), fastBackoff(3))
	op := &mockOperation{failUntil: 1}

	if err := executor.Execute(context.Background(), op.execute); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if op.invocations != 1 {
		t.Errorf("invocations = %d, want 1", op.invocations)
	}
}

func TestExecutor_Execute_SuccessAfterRetries(t *testing.T) {
	executor := NewExecutor(NewConnectionErrorClassifier(), fastBackoff(5))
	op := &mockOperation{failUntil: 4}

	if err := executor.Execute(context.Background(), op.execute); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if op.invocations != 4 {
		t.Errorf("invocations = %d, want 4", op.invocations)
	}
}

func TestExecutor_Execute_FatalErrorNoRetry(t *testing.T) {
	executor := NewExecutor(NewConnectionErrorClassifier(), fastBackoff(5))
	authErr := &pgconn.PgError{Code: "28P01", Message: "password authentication failed"}
	op := &mockOperation{failUntil: 10, transientErr: authErr}

	err := executor.Execute(context.Background(), op.execute)
	if !errors.Is(err, authErr) {
		t.Fatalf("Execute() error = %v, want %v", err, authErr)
	}
	if op.invocations != 1 {
		t.Errorf("invocations = %d, want 1", op.invocations)
	}
}

func TestExecutor_Execute_ExhaustedRetries(t *testing.T) {
	executor := NewExecutor(NewConnectionErrorClassifier(), fastBackoff(3))
	op := &mockOperation{failUntil: 999}

	err := executor.Execute(context.Background(), op.execute)
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if op.invocations != 4 {
		t.Errorf("invocations = %d, want 4 (1 initial + 3 retries)", op.invocations)
	}
	if !strings.Contains(err.Error(), "giving up after 4 attempts") {
		t.Errorf("error %q does not report attempt count", err)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "08006" {
		t.Errorf("last error not preserved: %v", err)
	}
}

func TestExecutor_Execute_ZeroAttempts(t *testing.T) {
	executor := NewExecutor(NewConnectionErrorClassifier(), fastBackoff(0))
	op := &mockOperation{failUntil: 999}

	err := executor.Execute(context.Background(), op.execute)
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		t.Fatalf("Execute() error = %v, want PgError", err)
	}
	if op.invocations != 1 {
		t.Errorf("invocations = %d, want 1", op.invocations)
	}
}

func TestExecutor_Execute_ContextCancellation(t *testing.T) {
	strategy := NewExponentialBackoff(10, WithInitialDelay(time.Second), WithJitter(0))
	executor := NewExecutor(NewConnectionErrorClassifier(), strategy)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	op := &mockOperation{failUntil: 999}
	err := executor.Execute(ctx, op.execute)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
	if op.invocations != 1 {
		t.Errorf("invocations = %d, want 1", op.invocations)
	}
}

func TestExecutor_WithOnRetry(t *testing.T) {
	base := NewExecutor(NewConnectionErrorClassifier(), fastBackoff(3))

	var attempts []int
	var delays []time.Duration
	executor := base.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
		delays = append(delays, delay)
	})

	op := &mockOperation{failUntil: 3}
	if err := executor.Execute(context.Background(), op.execute); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(attempts) != 2 || attempts[0] != 0 || attempts[1] != 1 {
		t.Errorf("retry attempts = %v, want [0 1]", attempts)
	}
	if delays[0] != time.Millisecond || delays[1] != 2*time.Millisecond {
		t.Errorf("retry delays = %v, want [1ms 2ms]", delays)
	}
	if base.onRetry != nil {
		t.Error("WithOnRetry modified the original executor")
	}
}
