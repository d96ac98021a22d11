package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/songplays/internal/dialect"
	"github.com/vvka-141/songplays/internal/schema"
	"github.com/vvka-141/songplays/pkg/songplays"
)

type mockApprover struct {
	approved bool
	err      error
	targets  []string
}

func (m *mockApprover) RequestApproval(_ context.Context, target string) (bool, error) {
	m.targets = append(m.targets, target)
	return m.approved, m.err
}

type mockLogger struct {
	mu    sync.Mutex
	lines []string
}

func (m *mockLogger) record(level, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, level+" "+fmt.Sprintf(format, args...))
}

func (m *mockLogger) Verbose(format string, args ...interface{}) { m.record("VERBOSE", format, args...) }
func (m *mockLogger) Info(format string, args ...interface{})    { m.record("INFO", format, args...) }
func (m *mockLogger) Error(format string, args ...interface{})   { m.record("ERROR", format, args...) }

func (m *mockLogger) contains(substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

// mockDBConnection records executed statements. Statements containing failOn
// return failErr. Tags follow the statement verb.
type mockDBConnection struct {
	executed []string
	failOn   string
	failErr  error
	rows     int64
}

func (m *mockDBConnection) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	m.executed = append(m.executed, sql)
	if m.failOn != "" && strings.Contains(sql, m.failOn) {
		return pgconn.CommandTag{}, m.failErr
	}
	switch {
	case strings.HasPrefix(sql, "INSERT"):
		return pgconn.NewCommandTag(fmt.Sprintf("INSERT 0 %d", m.rows)), nil
	case strings.HasPrefix(sql, "COPY"):
		return pgconn.NewCommandTag(fmt.Sprintf("COPY %d", m.rows)), nil
	case strings.HasPrefix(sql, "DROP"):
		return pgconn.NewCommandTag("DROP TABLE"), nil
	case strings.HasPrefix(sql, "CREATE SCHEMA"):
		return pgconn.NewCommandTag("CREATE SCHEMA"), nil
	default:
		return pgconn.NewCommandTag("CREATE TABLE"), nil
	}
}

func (m *mockDBConnection) QueryRow(_ context.Context, _ string, _ ...any) songplays.Row {
	return errRow{err: errors.New("not implemented")}
}

func (m *mockDBConnection) CopyFrom(_ context.Context, _ pgx.Identifier, _ []string, _ pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("not implemented")
}

type errRow struct{ err error }

func (r errRow) Scan(_ ...any) error { return r.err }

type loadCall struct {
	schema string
	table  string
	spec   dialect.CopySpec
}

type mockLoader struct {
	calls []loadCall
	rows  int64
	err   error
}

func (m *mockLoader) Load(_ context.Context, _ songplays.DBConnection, schemaName string, table schema.Table, spec dialect.CopySpec) (int64, error) {
	m.calls = append(m.calls, loadCall{schema: schemaName, table: table.Name, spec: spec})
	return m.rows, m.err
}

type recordingObserver struct {
	planned  []songplays.StepInfo
	started  []string
	finished []songplays.StepResult
	errs     []error
}

func (o *recordingObserver) PlanReady(steps []songplays.StepInfo) { o.planned = steps }
func (o *recordingObserver) StepStarted(step songplays.StepInfo)  { o.started = append(o.started, step.ID) }
func (o *recordingObserver) StepFinished(result songplays.StepResult, err error) {
	o.finished = append(o.finished, result)
	o.errs = append(o.errs, err)
}

// mockConnectorFactory fails the test if the service reaches the real connector.
func mockConnectorFactory(*songplays.ConnectionConfig) (songplays.Connector, error) {
	return nil, errors.New("connector factory should not be called")
}
