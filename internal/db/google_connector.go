package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/songplays/pkg/songplays"
)

// GoogleCloudSQLConnector connects to a Cloud SQL for PostgreSQL warehouse
// through the Cloud SQL dialer with IAM database authentication.
//
// The caller must Close the connector after closing the pool.
type GoogleCloudSQLConnector struct {
	config *songplays.ConnectionConfig
	logger songplays.Logger
	dialer *cloudsqlconn.Dialer
}

func NewGoogleCloudSQLConnector(config *songplays.ConnectionConfig, logger songplays.Logger) *GoogleCloudSQLConnector {
	return &GoogleCloudSQLConnector{config: config, logger: logger}
}

func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Cloud SQL dialer: %w", songplays.ErrConnectionFailed, err)
	}

	instance := c.config.GoogleInstance
	dsn := fmt.Sprintf("host=%s user=%s dbname=%s sslmode=disable application_name=%s",
		instance, c.config.Username, c.config.Database, c.appName())

	poolConfig, err := newPoolConfig(dsn, c.logger)
	if err != nil {
		dialer.Close()
		return nil, err
	}
	poolConfig.ConnConfig.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
		return dialer.Dial(ctx, instance)
	}

	pool, err := openPool(ctx, poolConfig, c.config)
	if err != nil {
		dialer.Close()
		return nil, err
	}

	c.dialer = dialer
	return pool, nil
}

func (c *GoogleCloudSQLConnector) appName() string {
	if c.config.AppName != "" {
		return c.config.AppName
	}
	return songplays.AppName
}

// Close releases the Cloud SQL dialer.
func (c *GoogleCloudSQLConnector) Close() error {
	if c.dialer != nil {
		c.dialer.Close()
		c.dialer = nil
	}
	return nil
}
