// Package pg provides utilities for interacting with PostgreSQL using the
// pgx/v5 driver: connection pooling with retry, goose schema migrations,
// a health check closure, and common error helpers.
//
// # Architecture
//
//   - Config: declarative struct populated from environment variables via
//     github.com/caarlos0/env. Controls pool limits, health-check cadence
//     and migration paths.
//   - Connect: opens a *pgxpool.Pool based on Config, retrying until the
//     database becomes available.
//   - Migrate: runs goose migrations against the same pool so the schema is
//     current before the service serves traffic.
//
// # Usage
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//	    log.Fatal(err)
//	}
//
// The tenant, domain-binding and usage stores in this repository all share
// one pool created here; per-row upserts give the webhook state machine its
// write atomicity.
package pg
