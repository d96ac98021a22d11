package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode represents the interaction mode for songplays.
type Mode int

const (
	// ModeNonInteractive is used for CI/CD pipelines, cron jobs and piped input.
	ModeNonInteractive Mode = iota
	// ModeInteractive is used when a human is at the terminal.
	ModeInteractive
)

// nonInteractiveEnv lists variables that force ModeNonInteractive. Only
// SONGPLAYS_NON_INTERACTIVE needs the exact value "1"; the others count when set.
var nonInteractiveEnv = []string{"CI", "NO_COLOR"}

// DetectMode reports ModeInteractive only when nothing in the environment
// asks otherwise and both stdin (approval prompt) and stderr (progress
// display) are terminals. Stdout may be redirected to capture the run log.
func DetectMode() Mode {
	return detectMode(os.Getenv, func(f *os.File) bool { return term.IsTerminal(int(f.Fd())) })
}

func detectMode(getenv func(string) string, isTerminal func(*os.File) bool) Mode {
	if getenv("SONGPLAYS_NON_INTERACTIVE") == "1" {
		return ModeNonInteractive
	}
	for _, name := range nonInteractiveEnv {
		if getenv(name) != "" {
			return ModeNonInteractive
		}
	}
	if !isTerminal(os.Stdin) || !isTerminal(os.Stderr) {
		return ModeNonInteractive
	}
	return ModeInteractive
}

// IsInteractive is a convenience function that returns true if running in interactive mode.
func IsInteractive() bool {
	return DetectMode() == ModeInteractive
}
