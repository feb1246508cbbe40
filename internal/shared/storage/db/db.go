package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"resume-match/internal/shared/telemetry"
)

// ApplicationName is reported to Postgres so sessions show up in pg_stat_activity.
const ApplicationName = "resume-match"

// Options controls the connection pool and startup probing.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	// ConnectAttempts is the number of pings tried before giving up. The
	// database container often starts after the API in local compose setups.
	ConnectAttempts int
	RetryDelay      time.Duration
}

var openDB = sql.Open

// DefaultServerOptions returns defaults for the API process.
func DefaultServerOptions() Options {
	return Options{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxIdleTime: 2 * time.Minute,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     5 * time.Second,
		ConnectAttempts: 5,
		RetryDelay:      time.Second,
	}
}

// DefaultMigrateOptions returns defaults for the one-shot migrate command.
func DefaultMigrateOptions() Options {
	return Options{
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     5 * time.Second,
		ConnectAttempts: 1,
	}
}

// OptionsFromEnv overrides defaults with DB_* environment variables.
// Unparseable values are logged and ignored.
func OptionsFromEnv(defaults Options) Options {
	v := viper.New()
	v.SetEnvPrefix("DB")
	v.AutomaticEnv()

	opts := defaults
	overrideInt(v, "MAX_OPEN_CONNS", &opts.MaxOpenConns)
	overrideInt(v, "MAX_IDLE_CONNS", &opts.MaxIdleConns)
	overrideInt(v, "CONNECT_ATTEMPTS", &opts.ConnectAttempts)
	overrideDuration(v, "CONN_MAX_LIFETIME", &opts.ConnMaxLifetime)
	overrideDuration(v, "CONN_MAX_IDLE_TIME", &opts.ConnMaxIdleTime)
	overrideDuration(v, "PING_TIMEOUT", &opts.PingTimeout)
	overrideDuration(v, "RETRY_DELAY", &opts.RetryDelay)
	return opts
}

// Connect opens a pooled *sql.DB on the pgx driver and pings it, retrying
// up to opts.ConnectAttempts times.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	connCfg, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	if connCfg.RuntimeParams == nil {
		connCfg.RuntimeParams = map[string]string{}
	}
	if _, ok := connCfg.RuntimeParams["application_name"]; !ok {
		connCfg.RuntimeParams["application_name"] = ApplicationName
	}

	db, err := openDB("pgx", stdlib.RegisterConnConfig(connCfg))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	applyOptions(db, opts)

	if err := pingWithRetry(ctx, db, opts); err != nil {
		db.Close()
		return nil, err
	}

	stats := db.Stats()
	telemetry.Info("db.connected", map[string]any{
		"host":     connCfg.Host,
		"database": connCfg.Database,
		"open":     stats.OpenConnections,
		"max_open": stats.MaxOpenConnections,
	})
	return db, nil
}

func pingWithRetry(ctx context.Context, db *sql.DB, opts Options) error {
	attempts := opts.ConnectAttempts
	if attempts <= 0 {
		attempts = 1
	}
	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		lastErr = db.PingContext(pingCtx)
		cancel()
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		telemetry.Warn("db.ping_retry", map[string]any{
			"attempt": attempt,
			"error":   lastErr,
		})
		select {
		case <-ctx.Done():
			return fmt.Errorf("ping database: %w", ctx.Err())
		case <-time.After(opts.RetryDelay * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("ping database after %d attempt(s): %w", attempts, lastErr)
}

func applyOptions(db *sql.DB, opts Options) {
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 10
	}
	if opts.MaxIdleConns <= 0 || opts.MaxIdleConns > opts.MaxOpenConns {
		opts.MaxIdleConns = opts.MaxOpenConns
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = time.Hour
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}

func overrideInt(v *viper.Viper, key string, dst *int) {
	raw := v.Get(key)
	if raw == nil || strings.TrimSpace(cast.ToString(raw)) == "" {
		return
	}
	val, err := cast.ToIntE(strings.TrimSpace(cast.ToString(raw)))
	if err != nil {
		telemetry.Warn("db.env_invalid", map[string]any{"key": "DB_" + key, "error": err})
		return
	}
	*dst = val
}

func overrideDuration(v *viper.Viper, key string, dst *time.Duration) {
	raw := v.Get(key)
	if raw == nil || strings.TrimSpace(cast.ToString(raw)) == "" {
		return
	}
	val, err := time.ParseDuration(strings.TrimSpace(cast.ToString(raw)))
	if err != nil {
		telemetry.Warn("db.env_invalid", map[string]any{"key": "DB_" + key, "error": err})
		return
	}
	*dst = val
}
