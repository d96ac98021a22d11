package songplays

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Run completed successfully
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or sources
	ExitConnectionError = 11 // Failed to connect to the warehouse
	ExitApprovalDenied  = 12 // User denied the destructive reset
	ExitExecutionFailed = 13 // A statement failed in the warehouse
	ExitLoadFailed      = 14 // A staging bulk load failed
)

const (
	// DefaultForceApprovalCountdown is the countdown duration before a forced reset proceeds.
	DefaultForceApprovalCountdown = 5 * time.Second

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// MaxErrorPreviewLength is the maximum number of characters of a failed
	// statement shown in error messages.
	MaxErrorPreviewLength = 200

	// DefaultRegion is the object-storage region used when none is configured.
	DefaultRegion = "us-west-2"

	// DefaultTimeout bounds a whole run. Bulk loads of the full dataset take minutes.
	DefaultTimeout = 30 * time.Minute

	// JSONPathsAuto selects key-to-column matching instead of a JSONPaths descriptor.
	JSONPathsAuto = "auto"

	// AppName is reported to the warehouse as application_name.
	AppName = "songplays"
)
