// Package redis provides helpers for connecting to a Redis server.
//
// It wraps the go-redis client with a retrying Connect and a health-check
// closure for liveness probes. Configuration comes from the Config struct,
// populated from environment variables via github.com/caarlos0/env.
//
// The domain-resolution cache is the main consumer: every data-plane request
// for a custom domain hits Redis before PostgreSQL.
//
// # Usage
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
package redis
