package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vvka-141/songplays/pkg/songplays"
)

const dangerBanner = `
  ╔══════════════════════════════════════════════════════════════╗
  ║  DANGER: every songplays table in ${target} will be dropped
  ║  Staging data, facts and dimensions are lost until reloaded.
  ╚══════════════════════════════════════════════════════════════╝
`

// ForcedApprover implements the Approver interface for forced (non-interactive)
// approval. It displays a countdown and automatically approves after the countdown,
// used when the --force flag is provided.
type ForcedApprover struct {
	verbose bool
	output  io.Writer
	sleepFn func(time.Duration)
}

// NewForcedApprover creates a new ForcedApprover.
func NewForcedApprover(verbose bool) songplays.Approver {
	return &ForcedApprover{verbose: verbose, output: os.Stderr, sleepFn: time.Sleep}
}

// RequestApproval displays a countdown and automatically approves after the countdown.
func (a *ForcedApprover) RequestApproval(ctx context.Context, target string) (bool, error) {
	fmt.Fprint(a.output, strings.ReplaceAll(dangerBanner, "${target}", target))
	fmt.Fprintln(a.output)
	if a.verbose {
		writeTableList(a.output)
	}

	countdownSeconds := int(songplays.DefaultForceApprovalCountdown.Seconds())
	for i := countdownSeconds; i > 0; i-- {
		if err := ctx.Err(); err != nil {
			fmt.Fprintln(a.output)
			return false, err
		}
		fmt.Fprintf(a.output, "\rDropping in: %d seconds... (Press Ctrl+C to cancel)", i)
		a.sleepFn(time.Second)
	}
	if err := ctx.Err(); err != nil {
		fmt.Fprintln(a.output)
		return false, err
	}

	fmt.Fprintf(a.output, "\r✓ Proceeding with reset of %s...                              \n", target)
	return true, nil
}

var _ songplays.Approver = (*ForcedApprover)(nil)
