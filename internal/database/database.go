// Package database provides PostgreSQL connection management using pgx
// and applies schema migrations with goose.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for goose
	"github.com/pressly/goose/v3"

	"github.com/volunteerhub/volunteer-signup/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Connection retry budget for containers starting up.
const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// retry runs fn up to attempts times, sleeping backoff between tries, and
// returns the last error if every attempt fails.
func retry(attempts int, backoff time.Duration, fn func() error) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt < attempts {
			time.Sleep(backoff)
		}
	}
	return err
}

// NewPool creates and validates a pgxpool connection pool, retrying while
// Postgres comes up.
func NewPool(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	var pool *pgxpool.Pool
	err = retry(connectAttempts, connectBackoff, func() error {
		p, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return pool, nil
}

// Migrate applies the embedded goose migrations. It runs before the pool
// connect at startup, so it waits for Postgres with the same retry budget
// instead of failing a cold container start.
func Migrate(cfg config.DBConfig) error {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return fmt.Errorf("open db for migrations: %w", err)
	}
	defer db.Close()

	if err := retry(connectAttempts, connectBackoff, db.Ping); err != nil {
		return fmt.Errorf("wait for postgres: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
