package songplays

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	_, err := runner.Run(ctx, config)
//	if errors.Is(err, songplays.ErrApprovalDenied) {
//	    // Handle user denying the reset
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrApprovalDenied indicates the user denied approval for the destructive reset.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrExecutionFailed indicates a statement failed in the warehouse.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrLoadFailed indicates a staging bulk load failed.
	ErrLoadFailed = errors.New("load failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrUnsupportedDialect indicates the warehouse dialect is unknown or cannot
	// perform the requested operation.
	ErrUnsupportedDialect = errors.New("unsupported dialect")

	// ErrPlanCycle indicates the declared step dependencies contain a cycle.
	ErrPlanCycle = errors.New("dependency cycle in execution plan")

	// ErrConnectionFailed indicates the warehouse connection failed.
	ErrConnectionFailed = errors.New("connection failed")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrLoadFailed):
		return ExitLoadFailed
	case errors.Is(err, ErrExecutionFailed):
		return ExitExecutionFailed
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrUnsupportedAuthMethod), errors.Is(err, ErrUnsupportedDialect), errors.Is(err, ErrPlanCycle):
		return ExitConfigError
	}

	errStr := err.Error()
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	if strings.Contains(errStr, "accepts") && strings.Contains(errStr, "arg(s)") ||
		strings.Contains(errStr, "missing required argument") ||
		strings.Contains(errStr, "unknown flag") ||
		strings.Contains(errStr, "unknown command") {
		return ExitUsageError
	}

	return ExitGeneralError
}

// PreviewSQL shortens a statement for error messages.
func PreviewSQL(sql string) string {
	s := strings.Join(strings.Fields(sql), " ")
	if len(s) <= MaxErrorPreviewLength {
		return s
	}
	return s[:MaxErrorPreviewLength] + "..."
}
