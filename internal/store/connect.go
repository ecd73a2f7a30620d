package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/lox/weathersnapshot/internal/config"
)

// Opener makes one connection attempt: open a handle and verify it answers.
type Opener func(ctx context.Context) (*sql.DB, error)

// DSN returns the driver name and data source name for cfg.
func DSN(cfg *config.Config) (driver, dsn string, err error) {
	switch cfg.DBDriver {
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = cfg.DBUser
		mc.Passwd = cfg.DBPassword
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.DBHost, strconv.Itoa(cfg.DBPort))
		mc.DBName = cfg.DBName
		return "mysql", mc.FormatDSN(), nil
	case "sqlite":
		return "sqlite", cfg.DBPath, nil
	default:
		return "", "", fmt.Errorf("unsupported driver %q", cfg.DBDriver)
	}
}

// NewOpener returns an Opener for cfg. Each call opens a fresh handle and
// pings it; a handle that fails the ping is closed before returning.
func NewOpener(cfg *config.Config) Opener {
	return func(ctx context.Context) (*sql.DB, error) {
		driver, dsn, err := DSN(cfg)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if driver == "sqlite" {
			if _, err := os.Stat(dsn); err != nil {
				return nil, fmt.Errorf("sqlite database: %w", err)
			}
		}

		db, err := sql.Open(driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", driver, err)
		}
		db.SetMaxOpenConns(1)

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping %s: %w", driver, err)
		}
		return db, nil
	}
}

// ConnectError is returned once every connection attempt has failed.
type ConnectError struct {
	Attempts int
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to connect after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// Connect calls open up to attempts times with a fixed delay between failed
// attempts. It stops at the first success.
func Connect(ctx context.Context, open Opener, attempts int, delay time.Duration, logger *slog.Logger) (*sql.DB, error) {
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	var (
		db      *sql.DB
		attempt int
	)
	operation := func() error {
		attempt++
		logger.Info("connecting to database", "attempt", attempt, "max_attempts", attempts)
		conn, err := open(ctx)
		if err != nil {
			return err
		}
		db = conn
		return nil
	}
	notify := func(err error, next time.Duration) {
		logger.Warn("connection attempt failed", "attempt", attempt, "err", err, "retry_in", next)
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(attempts-1)), ctx)
	if err := backoff.RetryNotify(operation, bo, notify); err != nil {
		logger.Error("connection attempt failed", "attempt", attempt, "err", err)
		return nil, &ConnectError{Attempts: attempt, Err: err}
	}

	logger.Info("connected to database", "attempt", attempt)
	return db, nil
}
