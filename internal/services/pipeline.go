package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vvka-141/songplays/internal/config"
	"github.com/vvka-141/songplays/internal/db"
	"github.com/vvka-141/songplays/internal/dialect"
	"github.com/vvka-141/songplays/internal/loader"
	"github.com/vvka-141/songplays/internal/plan"
	"github.com/vvka-141/songplays/internal/schema"
	"github.com/vvka-141/songplays/internal/sqlgen"
	"github.com/vvka-141/songplays/pkg/songplays"
)

// StagingLoader performs client-side loads of staging tables.
type StagingLoader interface {
	Load(ctx context.Context, conn songplays.DBConnection, schemaName string, table schema.Table, spec dialect.CopySpec) (int64, error)
}

type connectFunc func(ctx context.Context, connConfig *songplays.ConnectionConfig) (songplays.DBConnection, func(), error)

// PipelineService implements songplays.Runner.
// Thread-Safety: NOT safe for concurrent Run() calls on the same instance.
type PipelineService struct {
	connectorFactory func(*songplays.ConnectionConfig) (songplays.Connector, error)
	approver         songplays.Approver
	logger           songplays.Logger
	observer         songplays.ProgressObserver
	newLoader        func(region string) StagingLoader
	connect          connectFunc
	newRunID         func() string
}

// NewPipelineService panics on nil dependencies: they are wiring mistakes,
// not runtime conditions.
func NewPipelineService(
	connectorFactory func(*songplays.ConnectionConfig) (songplays.Connector, error),
	approver songplays.Approver,
	logger songplays.Logger,
) *PipelineService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if approver == nil {
		panic("approver cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	svc := &PipelineService{
		connectorFactory: connectorFactory,
		approver:         approver,
		logger:           logger,
		observer:         NewLoggingObserver(logger),
		newRunID:         uuid.NewString,
	}
	svc.newLoader = func(region string) StagingLoader {
		return loader.New(loader.NewRouter(region), svc.logger)
	}
	svc.connect = svc.defaultConnect
	return svc
}

// WithObserver replaces the default logging observer.
func (s *PipelineService) WithObserver(o songplays.ProgressObserver) *PipelineService {
	if o == nil {
		panic("observer cannot be nil")
	}
	s.observer = o
	return s
}

func (s *PipelineService) defaultConnect(ctx context.Context, connConfig *songplays.ConnectionConfig) (songplays.DBConnection, func(), error) {
	connector, err := s.connectorFactory(connConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connector: %w", err)
	}

	pool, err := connector.Connect(ctx)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		if closer, ok := connector.(interface{ Close() error }); ok {
			closer.Close() //nolint:errcheck
		}
	}
	return db.NewPoolAdapter(pool), cleanup, nil
}

// Run validates the configuration, builds the plan for the selected phases,
// asks for approval when the plan drops tables, and executes the steps in
// order. Statements are not retried. On failure the report lists the steps
// that completed.
func (s *PipelineService) Run(ctx context.Context, cfg songplays.RunConfig) (*songplays.RunReport, error) {
	start := time.Now()
	report := &songplays.RunReport{RunID: s.newRunID()}

	if err := cfg.Validate(); err != nil {
		return report, fmt.Errorf("invalid configuration: %w", err)
	}

	d, err := dialect.Get(cfg.Dialect)
	if err != nil {
		return report, err
	}
	if cfg.IncludesPhase(songplays.PhaseLoad) {
		if err := config.ValidateSources(cfg.Sources, d.ServerSideCopy()); err != nil {
			return report, fmt.Errorf("invalid sources: %w", err)
		}
	}

	p, err := plan.Build(sqlgen.New(d, cfg.Schema, cfg.Sources), cfg.Phases...)
	if err != nil {
		return report, fmt.Errorf("failed to build execution plan: %w", err)
	}

	connConfig := cfg.Connection
	if connConfig.AppName == "" {
		connConfig.AppName = fmt.Sprintf("%s-%s", songplays.AppName, shortRunID(report.RunID))
	}
	s.logger.Info("Run %s: %d step(s) on %s (%s)", report.RunID, len(p.Steps), Target(cfg.Schema, connConfig.Database), d.Name())

	if p.Destructive() {
		if err := s.approve(ctx, Target(cfg.Schema, connConfig.Database)); err != nil {
			return report, err
		}
	}

	s.logger.Verbose("Connecting to %s:%d as %s (%s)", connConfig.Host, connConfig.Port, connConfig.Username, connConfig.AuthMethod)
	conn, cleanup, err := s.connect(ctx, &connConfig)
	if err != nil {
		return report, err
	}
	defer cleanup()

	var stagingLoader StagingLoader
	infos := p.Infos()
	s.observer.PlanReady(infos)

	for i, step := range p.Steps {
		info := infos[i]
		s.observer.StepStarted(info)
		s.logger.Verbose("%s", step.Statement())

		stepStart := time.Now()
		var rows int64
		if step.Load != nil {
			if stagingLoader == nil {
				stagingLoader = s.newLoader(cfg.Sources.RegionOrDefault())
			}
			rows, err = stagingLoader.Load(ctx, conn, step.Load.Schema, step.Load.Table, step.Load.Spec)
		} else {
			rows, err = execStatement(ctx, conn, step.SQL)
		}

		result := songplays.StepResult{StepInfo: info, Rows: rows, Duration: time.Since(stepStart)}
		if err != nil {
			err = stepError(step, err)
			s.observer.StepFinished(result, err)
			report.Duration = time.Since(start)
			return report, err
		}
		s.observer.StepFinished(result, nil)
		report.Steps = append(report.Steps, result)
	}

	report.Duration = time.Since(start)
	s.logger.Info("✓ Run %s completed: %d step(s) in %v", report.RunID, len(report.Steps), report.Duration.Round(time.Millisecond))
	return report, nil
}

func (s *PipelineService) approve(ctx context.Context, target string) error {
	s.logger.Verbose("Plan drops existing tables in %s. Requesting approval.", target)
	approved, err := s.approver.RequestApproval(ctx, target)
	if err != nil {
		return fmt.Errorf("approval request failed: %w", err)
	}
	if !approved {
		return songplays.ErrApprovalDenied
	}
	return nil
}

// execStatement runs one statement. Rows are taken from the command tag;
// DDL reports -1.
func execStatement(ctx context.Context, conn songplays.DBConnection, sql string) (int64, error) {
	tag, err := conn.Exec(ctx, sql)
	if err != nil {
		return 0, err
	}
	if tag.Insert() || tag.Update() || tag.Delete() || tag.Select() {
		return tag.RowsAffected(), nil
	}
	if strings.HasPrefix(tag.String(), "COPY ") {
		return tag.RowsAffected(), nil
	}
	return -1, nil
}

// stepError classifies a failed step: load-phase failures wrap ErrLoadFailed,
// everything else ErrExecutionFailed.
func stepError(step plan.Step, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("step %q interrupted: %w", step.ID, err)
	}
	if step.Phase == songplays.PhaseLoad {
		if errors.Is(err, songplays.ErrLoadFailed) {
			return fmt.Errorf("step %q: %w", step.ID, err)
		}
		return fmt.Errorf("step %q: %w: %w\n  statement: %s", step.ID, songplays.ErrLoadFailed, err, songplays.PreviewSQL(step.SQL))
	}
	return fmt.Errorf("step %q: %w: %w\n  statement: %s", step.ID, songplays.ErrExecutionFailed, err, songplays.PreviewSQL(step.SQL))
}

// Target names the tables a run touches, e.g. "analytics@dwh" or "dwh".
func Target(schemaName, database string) string {
	if schemaName == "" {
		return database
	}
	return schemaName + "@" + database
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
