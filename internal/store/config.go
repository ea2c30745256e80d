package store

import "time"

// Config holds database connection configuration.
type Config struct {
	// Driver selects the dialect: DialectSQLite (default) or DialectPostgres.
	Driver DialectType

	// DSN is the SQLite file path or the PostgreSQL connection string.
	DSN string

	// Connection pool settings, applied to PostgreSQL only.
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns a Config for a SQLite file at path.
func DefaultConfig(path string) Config {
	return Config{
		Driver: DialectSQLite,
		DSN:    path,
	}
}

// withPoolDefaults fills unset PostgreSQL pool settings.
func (c Config) withPoolDefaults() Config {
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = 5 * time.Minute
	}
	return c
}
