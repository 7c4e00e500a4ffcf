package config

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// connectTimeout bounds pool creation and the verification ping. The
// pipeline runs single-process and touches the database only for short
// status-persistence writes, so a slow connect means misconfiguration
// rather than load.
const connectTimeout = 10 * time.Second

// NewDatabasePool opens a pgx connection pool from the configured
// DATABASE_URL, applies the pool sizing of DatabaseConfig and verifies
// connectivity with a ping before handing the pool to the repositories.
func NewDatabasePool(ctx context.Context, cfg *Config) (*pgxpool.Pool, error) {
	dbCfg, err := cfg.ParseDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(dbCfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("invalid database connection string: %w", err)
	}
	poolCfg.MaxConns = dbCfg.MaxConns
	poolCfg.MinConns = dbCfg.MinConns
	poolCfg.MaxConnLifetime = dbCfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = dbCfg.MaxConnIdleTime

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database is unreachable: %w", err)
	}

	return pool, nil
}
