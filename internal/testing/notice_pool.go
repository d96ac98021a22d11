package testing

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/songplays/internal/db"
)

// PoolWithNoticeCapture wraps a pgxpool.Pool with notice capture support.
type PoolWithNoticeCapture struct {
	*pgxpool.Pool
	Capture *NoticeCapture
}

// GetTestPoolWithNoticeCapture creates a connection pool with notice capture enabled.
// The pool is automatically closed when the test completes.
func GetTestPoolWithNoticeCapture(t *testing.T, connString string) *PoolWithNoticeCapture {
	t.Helper()

	ctx := context.Background()
	capture := NewNoticeCapture()

	config, err := db.ParseConnectionString(connString)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(db.BuildConnectionString(config))
	if err != nil {
		t.Fatalf("Failed to parse pool config: %v", err)
	}
	poolConfig.ConnConfig.OnNotice = capture.Handler()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return &PoolWithNoticeCapture{
		Pool:    pool,
		Capture: capture,
	}
}

// Adapter exposes the pool as a songplays.DBConnection.
func (p *PoolWithNoticeCapture) Adapter() *db.PoolAdapter {
	return db.NewPoolAdapter(p.Pool)
}
