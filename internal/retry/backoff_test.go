package retry

import (
	"testing"
	"time"
)

func TestExponentialBackoff_Defaults(t *testing.T) {
	b := NewExponentialBackoff(3)

	if b.InitialDelay() != 100*time.Millisecond {
		t.Errorf("InitialDelay = %v, want 100ms", b.InitialDelay())
	}
	if b.MaxDelay() != 30*time.Second {
		t.Errorf("MaxDelay = %v, want 30s", b.MaxDelay())
	}
	if b.MaxAttempts() != 3 {
		t.Errorf("MaxAttempts = %d, want 3", b.MaxAttempts())
	}
}

func TestExponentialBackoff_NextDelay_WithoutJitter(t *testing.T) {
	b := NewExponentialBackoff(5,
		WithInitialDelay(100*time.Millisecond),
		WithMultiplier(2.0),
		WithJitter(0),
	)

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, 1600 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := b.NextDelay(tt.attempt); got != tt.want {
			t.Errorf("NextDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestExponentialBackoff_NextDelay_CappedAtMax(t *testing.T) {
	b := NewExponentialBackoff(20,
		WithInitialDelay(time.Second),
		WithMaxDelay(5*time.Second),
		WithJitter(0),
	)

	if got := b.NextDelay(10); got != 5*time.Second {
		t.Errorf("NextDelay(10) = %v, want 5s", got)
	}
}

func TestExponentialBackoff_NextDelay_JitterBounds(t *testing.T) {
	tests := []struct {
		name   string
		random float64
		want   time.Duration
	}{
		{"lowest draw", 0, 900 * time.Millisecond},
		{"middle draw", 0.5, time.Second},
		{"high draw", 0.75, 1050 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewExponentialBackoff(3,
				WithInitialDelay(time.Second),
				WithJitter(0.1),
				WithJitterFunc(func() float64 { return tt.random }),
			)
			if got := b.NextDelay(0); got != tt.want {
				t.Errorf("NextDelay(0) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExponentialBackoff_NextDelay_RandomStaysInRange(t *testing.T) {
	b := NewExponentialBackoff(3, WithInitialDelay(time.Second), WithJitter(0.2))

	for i := 0; i < 100; i++ {
		d := b.NextDelay(0)
		if d < 800*time.Millisecond || d > 1200*time.Millisecond {
			t.Fatalf("NextDelay(0) = %v, outside [800ms, 1.2s]", d)
		}
	}
}

func TestExponentialBackoff_UnlimitedAttempts(t *testing.T) {
	if got := NewExponentialBackoff(-1).MaxAttempts(); got != -1 {
		t.Errorf("MaxAttempts = %d, want -1", got)
	}
}
