package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vvka-141/songplays/pkg/songplays"
)

// ProgressDisplay is a songplays.ProgressObserver that renders the run in a
// bubbletea program. The program starts when the plan is ready, after any
// approval prompt has read from the terminal, and runs on its own goroutine;
// step events reach it by message passing.
type ProgressDisplay struct {
	title   string
	cancel  context.CancelFunc
	opts    []tea.ProgramOption
	program *tea.Program
	done    chan struct{}
	err     error
}

// NewProgressDisplay creates a display. cancel aborts the run when the user quits.
func NewProgressDisplay(title string, cancel context.CancelFunc, opts ...tea.ProgramOption) *ProgressDisplay {
	return &ProgressDisplay{title: title, cancel: cancel, opts: opts}
}

func (d *ProgressDisplay) PlanReady(steps []songplays.StepInfo) {
	if d.program != nil {
		return
	}
	d.program = tea.NewProgram(NewProgressModel(d.title, steps, d.cancel), d.opts...)
	d.done = make(chan struct{})
	go func() {
		defer close(d.done)
		_, d.err = d.program.Run()
	}()
}

func (d *ProgressDisplay) StepStarted(step songplays.StepInfo) {
	d.send(stepStartedMsg(step))
}

func (d *ProgressDisplay) StepFinished(result songplays.StepResult, err error) {
	d.send(stepFinishedMsg{result: result, err: err})
}

// Finish reports the run outcome and waits for the final frame.
// It returns the program's own error, if any.
func (d *ProgressDisplay) Finish(runErr error) error {
	if d.program == nil {
		return nil
	}
	d.program.Send(runDoneMsg{err: runErr})
	<-d.done
	return d.err
}

func (d *ProgressDisplay) send(msg tea.Msg) {
	if d.program != nil {
		d.program.Send(msg)
	}
}

var _ songplays.ProgressObserver = (*ProgressDisplay)(nil)
