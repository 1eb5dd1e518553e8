package repository

import (
	"time"

	"gorm.io/gorm/logger"
)

type connectOptions struct {
	maxOpenConns    int
	maxIdleConns    int
	connMaxLifetime time.Duration
	pingTimeout     time.Duration
	logLevel        logger.LogLevel
	autoMigrate     bool
}

func defaultConnectOptions() connectOptions {
	return connectOptions{
		maxOpenConns:    20,
		maxIdleConns:    5,
		connMaxLifetime: 30 * time.Minute,
		pingTimeout:     5 * time.Second,
		logLevel:        logger.Warn,
		autoMigrate:     true,
	}
}

// Option applies a configuration option to Connect.
type Option func(*connectOptions)

// WithMaxOpenConns caps open connections in the pool.
func WithMaxOpenConns(n int) Option {
	return func(o *connectOptions) {
		if n > 0 {
			o.maxOpenConns = n
		}
	}
}

// WithMaxIdleConns caps idle connections in the pool.
func WithMaxIdleConns(n int) Option {
	return func(o *connectOptions) {
		if n >= 0 {
			o.maxIdleConns = n
		}
	}
}

// WithConnMaxLifetime recycles connections older than d.
func WithConnMaxLifetime(d time.Duration) Option {
	return func(o *connectOptions) {
		if d > 0 {
			o.connMaxLifetime = d
		}
	}
}

// WithPingTimeout bounds the startup connectivity check.
func WithPingTimeout(d time.Duration) Option {
	return func(o *connectOptions) {
		if d > 0 {
			o.pingTimeout = d
		}
	}
}

// WithSQLLogLevel sets gorm's statement log level.
func WithSQLLogLevel(level logger.LogLevel) Option {
	return func(o *connectOptions) {
		o.logLevel = level
	}
}

// WithAutoMigrate toggles schema migration on connect.
func WithAutoMigrate(enabled bool) Option {
	return func(o *connectOptions) {
		o.autoMigrate = enabled
	}
}
