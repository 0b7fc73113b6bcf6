package pg

import "time"

// Config controls the connection pool and migration runner.
type Config struct {
	// ConnectionString is the database connection URL.
	ConnectionString string `env:"PG_CONN_URL,required"`
	// MaxOpenConns caps open connections to the database.
	MaxOpenConns int32 `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	// MaxIdleConns is the minimum number of idle connections kept warm.
	MaxIdleConns int32 `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	// HealthCheckPeriod is the period between pool health checks.
	HealthCheckPeriod time.Duration `env:"PG_HEALTHCHECK_PERIOD" envDefault:"1m"`
	// MaxConnIdleTime is how long a connection may sit idle before being closed.
	MaxConnIdleTime time.Duration `env:"PG_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	// MaxConnLifetime is the maximum age of a pooled connection.
	MaxConnLifetime time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"30m"`

	// RetryAttempts is how many times Connect retries before giving up.
	RetryAttempts int `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`
	// RetryInterval is the base wait between retries, e.g. "5s".
	RetryInterval time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"`

	// MigrationsPath is the directory holding goose SQL migrations.
	MigrationsPath string `env:"PG_MIGRATIONS_PATH" envDefault:"internal/db/migrations"`
	// MigrationsTable is the goose version-tracking table name.
	MigrationsTable string `env:"PG_MIGRATIONS_TABLE" envDefault:"schema_migrations"`
}
