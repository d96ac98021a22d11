package songplays_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/vvka-141/songplays/pkg/songplays"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, songplays.ExitSuccess},
		{"general error", errors.New("something went wrong"), songplays.ExitGeneralError},
		{"unknown flag", errors.New("unknown flag: --foo"), songplays.ExitUsageError},
		{"accepts args", errors.New("accepts 1 arg(s), received 0"), songplays.ExitUsageError},
		{"unknown command", errors.New(`unknown command "deploy" for "songplays"`), songplays.ExitUsageError},
		{"invalid config", fmt.Errorf("host: %w", songplays.ErrInvalidConfig), songplays.ExitConfigError},
		{"unsupported dialect", fmt.Errorf("mysql: %w", songplays.ErrUnsupportedDialect), songplays.ExitConfigError},
		{"plan cycle", songplays.ErrPlanCycle, songplays.ExitConfigError},
		{"approval denied", songplays.ErrApprovalDenied, songplays.ExitApprovalDenied},
		{"execution failed", fmt.Errorf("step %q: %w", "insert:dim_user", songplays.ErrExecutionFailed), songplays.ExitExecutionFailed},
		{"load failed", fmt.Errorf("step %q: %w", "load:staging_events", songplays.ErrLoadFailed), songplays.ExitLoadFailed},
		{"connection failed", songplays.ErrConnectionFailed, songplays.ExitConnectionError},
		{"connection refused text", errors.New("dial tcp 127.0.0.1:5439: connection refused"), songplays.ExitConnectionError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := songplays.ExitCodeForError(tt.err); got != tt.want {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeForError_JoinedErrors(t *testing.T) {
	err := errors.Join(
		fmt.Errorf("host is required: %w", songplays.ErrInvalidConfig),
		fmt.Errorf("database is required: %w", songplays.ErrInvalidConfig),
	)
	if got := songplays.ExitCodeForError(err); got != songplays.ExitConfigError {
		t.Errorf("got %d, want %d", got, songplays.ExitConfigError)
	}
}

func TestPreviewSQL(t *testing.T) {
	t.Run("collapses whitespace", func(t *testing.T) {
		got := songplays.PreviewSQL("SELECT 1\n\t  FROM   dual")
		if got != "SELECT 1 FROM dual" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("truncates long statements", func(t *testing.T) {
		long := "INSERT INTO t VALUES (" + strings.Repeat("1, ", 200) + "1)"
		got := songplays.PreviewSQL(long)
		if len(got) != songplays.MaxErrorPreviewLength+3 {
			t.Errorf("len = %d, want %d", len(got), songplays.MaxErrorPreviewLength+3)
		}
		if !strings.HasSuffix(got, "...") {
			t.Errorf("expected ellipsis, got %q", got)
		}
	})
}
