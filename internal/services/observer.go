package services

import (
	"time"

	"github.com/vvka-141/songplays/pkg/songplays"
)

// LoggingObserver reports step progress through a songplays.Logger.
type LoggingObserver struct {
	logger songplays.Logger
}

func NewLoggingObserver(logger songplays.Logger) *LoggingObserver {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &LoggingObserver{logger: logger}
}

func (o *LoggingObserver) PlanReady(steps []songplays.StepInfo) {
	o.logger.Verbose("Execution plan: %d step(s)", len(steps))
}

func (o *LoggingObserver) StepStarted(step songplays.StepInfo) {
	o.logger.Verbose("[%d/%d] %s", step.Index+1, step.Total, step.ID)
}

func (o *LoggingObserver) StepFinished(result songplays.StepResult, err error) {
	d := result.Duration.Round(time.Millisecond)
	switch {
	case err != nil:
		o.logger.Error("[%d/%d] %s failed after %v", result.Index+1, result.Total, result.ID, d)
	case result.Rows >= 0:
		o.logger.Info("✓ [%d/%d] %s: %d row(s) in %v", result.Index+1, result.Total, result.ID, result.Rows, d)
	default:
		o.logger.Info("✓ [%d/%d] %s in %v", result.Index+1, result.Total, result.ID, d)
	}
}

var _ songplays.ProgressObserver = (*LoggingObserver)(nil)
