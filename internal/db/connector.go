package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/songplays/internal/retry"
	"github.com/vvka-141/songplays/pkg/songplays"
)

// Connection pool configuration constants
const (
	// DefaultMaxConns bounds the pool. Steps run one at a time, so a small
	// pool is enough.
	DefaultMaxConns = 5

	// DefaultMinConns maintains at least one connection in the pool.
	DefaultMinConns = 1

	// DefaultMaxConnIdleTime keeps connections alive across long COPY steps.
	DefaultMaxConnIdleTime = 30 * time.Minute
)

// newPoolConfig parses connStr and applies the pool limits. Server notices
// (for example "table does not exist, skipping" from DROP IF EXISTS) go to
// the verbose log.
func newPoolConfig(connStr string, logger songplays.Logger) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("%s: %s", notice.Severity, notice.Message)
	}
	return poolConfig, nil
}

// newConnectionExecutor builds the retry executor used by every connector.
func newConnectionExecutor(logger songplays.Logger) *retry.Executor {
	strategy := retry.NewExponentialBackoff(songplays.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(songplays.DefaultRetryInitialDelay),
		retry.WithMaxDelay(songplays.DefaultRetryMaxDelay),
	)
	return retry.NewExecutor(retry.NewConnectionErrorClassifier(), strategy).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Info("Connection attempt %d failed, retrying in %v: %v", attempt+1, delay.Round(time.Millisecond), err)
		})
}

// openPool creates the pool and verifies it with a ping.
func openPool(ctx context.Context, poolConfig *pgxpool.Config, config *songplays.ConnectionConfig) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}
	return pool, nil
}

// StandardConnector connects with username and password and retries
// transient failures.
type StandardConnector struct {
	config        *songplays.ConnectionConfig
	logger        songplays.Logger
	retryExecutor *retry.Executor
}

// NewStandardConnector panics if config or logger is nil.
func NewStandardConnector(config *songplays.ConnectionConfig, logger songplays.Logger) *StandardConnector {
	if config == nil {
		panic("config cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &StandardConnector{
		config:        config,
		logger:        logger,
		retryExecutor: newConnectionExecutor(logger),
	}
}

func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	connStr := BuildConnectionString(c.config)

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		poolConfig, err := newPoolConfig(connStr, c.logger)
		if err != nil {
			return err
		}
		pool, err = openPool(ctx, poolConfig, c.config)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// NewConnector returns the Connector matching config.AuthMethod.
func NewConnector(config *songplays.ConnectionConfig, logger songplays.Logger) (songplays.Connector, error) {
	switch config.AuthMethod {
	case songplays.AuthMethodStandard:
		return NewStandardConnector(config, logger), nil
	case songplays.AuthMethodAWSIAM:
		return newAWSConnector(config, logger)
	case songplays.AuthMethodGoogleIAM:
		return newGoogleConnector(config, logger)
	case songplays.AuthMethodAzureEntraID:
		return newAzureConnector(config, logger)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, songplays.ErrUnsupportedAuthMethod)
	}
}

func newAWSConnector(config *songplays.ConnectionConfig, logger songplays.Logger) (songplays.Connector, error) {
	endpoint := fmt.Sprintf("%s:%d", config.Host, config.Port)
	provider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", songplays.ErrInvalidConfig, err)
	}
	return NewTokenBasedConnector(config, provider, "AWS IAM", logger), nil
}

func newGoogleConnector(config *songplays.ConnectionConfig, logger songplays.Logger) (songplays.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", songplays.ErrInvalidConfig)
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires a username (-U): %w", songplays.ErrInvalidConfig)
	}
	return NewGoogleCloudSQLConnector(config, logger), nil
}

// newAzureConnector uses Service Principal credentials when all three are
// present and the DefaultAzureCredential chain otherwise.
func newAzureConnector(config *songplays.ConnectionConfig, logger songplays.Logger) (songplays.Connector, error) {
	var provider TokenProvider
	var err error

	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		provider, err = NewAzureServicePrincipalProvider(config.AzureTenantID, config.AzureClientID, config.AzureClientSecret)
	} else {
		provider, err = NewAzureDefaultCredentialProvider()
	}
	if err != nil {
		return nil, err
	}
	return NewTokenBasedConnector(config, provider, "Azure", logger), nil
}

// wrapConnectionError adds guidance to raw pgx connection errors. The result
// wraps both songplays.ErrConnectionFailed and the original error.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`%w: refused by %s

Possible causes:
  - The warehouse is not running or still starting
  - Wrong host or port (Redshift listens on 5439, PostgreSQL on 5432)
  - Firewall blocking the connection

Original error: %w`, songplays.ErrConnectionFailed, addr, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`%w: cannot resolve host "%s"

Possible causes:
  - Cluster endpoint is misspelled (copy it from the cluster console)
  - The cluster was deleted or renamed
  - DNS is not reachable from this network

Original error: %w`, songplays.ErrConnectionFailed, host, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`%w: password authentication failed for database "%s"

Possible causes:
  - Wrong password (check $PGPASSWORD or DB_PASSWORD in dwh.cfg)
  - Wrong username
  - User has no access to the database

Original error: %w`, songplays.ErrConnectionFailed, database, err)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`%w: database "%s" does not exist

Create it on the cluster first, or point -d at an existing database.

Original error: %w`, songplays.ErrConnectionFailed, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`%w: timed out connecting to %s

Possible causes:
  - The cluster is not publicly accessible
  - The VPC security group has no inbound rule for port %d from this address
  - Firewall silently dropping packets

Original error: %w`, songplays.ErrConnectionFailed, addr, port, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`%w: SSL/TLS error

Possible causes:
  - Server requires SSL but --sslmode disables it
  - Certificate verification failed (try --sslmode=require)

Original error: %w`, songplays.ErrConnectionFailed, err)

	case strings.Contains(errStr, "too many connections"):
		return fmt.Errorf(`%w: too many connections to database "%s"

The warehouse connection limit is reached. Close idle sessions and retry.

Original error: %w`, songplays.ErrConnectionFailed, database, err)

	default:
		return fmt.Errorf("%w: %w", songplays.ErrConnectionFailed, err)
	}
}
