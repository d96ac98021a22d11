package testing

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/songplays/internal/db"
	"github.com/vvka-141/songplays/internal/testinfra"
	"github.com/vvka-141/songplays/pkg/songplays"
)

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		container, err := testinfra.StartSimplePostgres(context.Background())
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the test database connection string.
// Priority: SONGPLAYS_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv("SONGPLAYS_TEST_CONN"); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("SONGPLAYS_TEST_CONN not set and Docker unavailable: %v", err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// ConnectionConfig parses connString for use in a songplays.RunConfig.
func ConnectionConfig(t *testing.T, connString string) songplays.ConnectionConfig {
	t.Helper()

	cfg, err := db.ParseConnectionString(connString)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}
	return *cfg
}

// CreateTestSchema creates a uniquely named schema and drops it with all its
// tables when the test completes. Runs in one schema never see another's tables.
func CreateTestSchema(t *testing.T, connString string) string {
	t.Helper()

	ctx := context.Background()
	name := "test_" + strings.ReplaceAll(uuid.NewString()[:8], "-", "")

	pool := GetTestPool(t, connString)
	if _, err := pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", name)); err != nil {
		t.Fatalf("Failed to create test schema %s: %v", name, err)
	}

	t.Cleanup(func() {
		cleanup, err := pgxpool.New(context.Background(), connString)
		if err != nil {
			t.Logf("Warning: Failed to connect for cleanup: %v", err)
			return
		}
		defer cleanup.Close()
		if _, err := cleanup.Exec(context.Background(), fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", name)); err != nil {
			t.Logf("Warning: Failed to drop schema %s: %v", name, err)
		}
	})
	return name
}

// GetTestPool creates a connection pool closed when the test completes.
func GetTestPool(t *testing.T, connString string) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// CountRows returns the number of rows in schemaName.table.
func CountRows(t *testing.T, pool *pgxpool.Pool, schemaName, table string) int64 {
	t.Helper()

	var n int64
	query := fmt.Sprintf("SELECT count(*) FROM %s.%s", schemaName, table)
	if err := pool.QueryRow(context.Background(), query).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s.%s: %v", schemaName, table, err)
	}
	return n
}

// ForceApprover approves every reset without prompting.
type ForceApprover struct{}

func (a *ForceApprover) RequestApproval(ctx context.Context, target string) (bool, error) {
	return true, nil
}
