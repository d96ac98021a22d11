package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/songplays/internal/retry"
	"github.com/vvka-141/songplays/pkg/songplays"
)

// tokenExpiryWarning is the remaining lifetime below which a fresh token is
// reported. A run that outlives the token keeps its open connections but
// cannot open new ones.
const tokenExpiryWarning = 5 * time.Minute

// TokenBasedConnector authenticates with a token from a TokenProvider
// (AWS IAM, Azure Entra ID) used as the password. Each attempt fetches a
// new token.
type TokenBasedConnector struct {
	config        *songplays.ConnectionConfig
	tokenProvider TokenProvider
	providerName  string
	logger        songplays.Logger
	retryExecutor *retry.Executor
}

// NewTokenBasedConnector panics if config, tokenProvider or logger is nil.
func NewTokenBasedConnector(config *songplays.ConnectionConfig, tokenProvider TokenProvider, providerName string, logger songplays.Logger) *TokenBasedConnector {
	if config == nil {
		panic("config cannot be nil")
	}
	if tokenProvider == nil {
		panic("tokenProvider cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		providerName:  providerName,
		logger:        logger,
		retryExecutor: newConnectionExecutor(logger),
	}
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	c.logger.Verbose("Authenticating with %s", c.tokenProvider)

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		token, expiresOn, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
		}
		if remaining := time.Until(expiresOn); remaining < tokenExpiryWarning {
			c.logger.Info("Warning: %s token expires in %v", c.providerName, remaining.Round(time.Second))
		}

		withToken := *c.config
		withToken.Password = token

		poolConfig, err := newPoolConfig(BuildConnectionString(&withToken), c.logger)
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
