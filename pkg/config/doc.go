// Package config provides a type-safe, generic and cached way to load
// application configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11 to
// deliver a small API that:
//
//   - Loads values from one or more .env files (falling back to the default
//     .env in the working directory).
//   - Parses the environment into any Go struct using `env` field tags.
//   - Caches each successfully loaded configuration type so it is parsed
//     once per process.
//   - Exposes panic-on-failure variants (MustLoadEnv, MustLoad) for
//     configuration the application cannot start without.
//   - Allows cache reset and forced reload for tests.
//
// # Architecture
//
// A singleton cache stores parsed struct copies keyed by their type name.
// Each key holds a sync.Once so parsing runs at most once per type even
// under concurrent access; reads go through a sync.RWMutex.
//
// # Usage
//
//	type PaddleConfig struct {
//		APIKey        string `env:"PADDLE_API_KEY,required"`
//		WebhookSecret string `env:"PADDLE_WEBHOOK_SECRET,required"`
//		Environment   string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
//	}
//
//	var cfg PaddleConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// Each package in this repository declares its own Config struct next to the
// code that consumes it; nothing reads ambient globals at request time.
package config
