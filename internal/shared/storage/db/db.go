package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver

	"doctoc-backend/internal/shared/telemetry"
)

const defaultPingTimeout = 5 * time.Second

// Options controls database pool and connectivity behavior.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

var openDB = sql.Open

// DefaultServerOptions suits the API process. Run history writes are small
// and infrequent, so the pool stays modest.
func DefaultServerOptions() Options {
	return Options{
		MaxOpenConns:    8,
		MaxIdleConns:    4,
		ConnMaxIdleTime: 5 * time.Minute,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     defaultPingTimeout,
	}
}

// DefaultMigrateOptions suits one-shot migration runs.
func DefaultMigrateOptions() Options {
	return Options{
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxIdleTime: time.Minute,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     defaultPingTimeout,
	}
}

// OptionsFromEnv overrides defaults with DB_* env vars. Unparseable values
// are logged and ignored.
func OptionsFromEnv(defaults Options) Options {
	opts := defaults
	envOverride("DB_MAX_OPEN_CONNS", strconv.Atoi, &opts.MaxOpenConns)
	envOverride("DB_MAX_IDLE_CONNS", strconv.Atoi, &opts.MaxIdleConns)
	envOverride("DB_CONN_MAX_LIFETIME", time.ParseDuration, &opts.ConnMaxLifetime)
	envOverride("DB_CONN_MAX_IDLE_TIME", time.ParseDuration, &opts.ConnMaxIdleTime)
	envOverride("DB_PING_TIMEOUT", time.ParseDuration, &opts.PingTimeout)
	return opts
}

func envOverride[T any](key string, parse func(string) (T, error), dst *T) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	val, err := parse(raw)
	if err != nil {
		telemetry.Warn("db.env.invalid", map[string]any{"key": key, "error": err})
		return
	}
	*dst = val
}

// Connect opens a pgx-backed *sql.DB and verifies connectivity.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}

	db, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	applyOptions(db, opts)

	if err := Ping(ctx, db, opts.PingTimeout); err != nil {
		db.Close()
		return nil, err
	}

	stats := db.Stats()
	telemetry.Info("db.connected", map[string]any{
		"max_open": stats.MaxOpenConnections,
		"open":     stats.OpenConnections,
		"idle":     stats.Idle,
	})
	return db, nil
}

// Ping checks the database within timeout. A nil db is healthy: the service
// then runs on in-memory repositories.
func Ping(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if db == nil {
		return nil
	}
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

func applyOptions(db *sql.DB, opts Options) {
	defaults := DefaultServerOptions()
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = defaults.MaxOpenConns
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = defaults.MaxIdleConns
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = defaults.ConnMaxLifetime
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}
