package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/landingkit/pkg/config"
)

type routerTestConfig struct {
	PrimaryDomain  string `env:"TEST_PRIMARY_DOMAIN" envDefault:"pages.test"`
	WildcardDomain string `env:"TEST_WILDCARD_DOMAIN,required"`
}

type billingTestConfig struct {
	APIKey      string `env:"TEST_PADDLE_API_KEY"`
	Environment string `env:"TEST_PADDLE_ENV" envDefault:"production"`
}

func TestLoad(t *testing.T) {
	t.Run("parses env into struct", func(t *testing.T) {
		config.ResetCache()
		t.Setenv("TEST_WILDCARD_DOMAIN", "pages.example.com")

		var cfg routerTestConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "pages.example.com", cfg.WildcardDomain)
		assert.Equal(t, "pages.test", cfg.PrimaryDomain)
	})

	t.Run("missing required variable fails", func(t *testing.T) {
		config.ResetCache()

		var cfg routerTestConfig
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer rejected", func(t *testing.T) {
		var cfg *billingTestConfig
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	})

	t.Run("cached per type", func(t *testing.T) {
		config.ResetCache()
		t.Setenv("TEST_PADDLE_API_KEY", "key-one")

		var first billingTestConfig
		require.NoError(t, config.Load(&first))
		assert.Equal(t, "key-one", first.APIKey)

		// Env changes after first load are not observed.
		t.Setenv("TEST_PADDLE_API_KEY", "key-two")
		var second billingTestConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, "key-one", second.APIKey)
	})

	t.Run("force reload observes new env", func(t *testing.T) {
		config.ResetCache()
		t.Setenv("TEST_PADDLE_API_KEY", "key-one")

		var cfg billingTestConfig
		require.NoError(t, config.Load(&cfg))

		t.Setenv("TEST_PADDLE_API_KEY", "key-two")
		require.NoError(t, config.ForceReloadConfig(&cfg))
		assert.Equal(t, "key-two", cfg.APIKey)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on failure", func(t *testing.T) {
		config.ResetCache()

		assert.Panics(t, func() {
			var cfg routerTestConfig
			config.MustLoad(&cfg)
		})
	})

	t.Run("succeeds with env set", func(t *testing.T) {
		config.ResetCache()
		t.Setenv("TEST_WILDCARD_DOMAIN", "pages.example.com")

		assert.NotPanics(t, func() {
			var cfg routerTestConfig
			config.MustLoad(&cfg)
		})
	})
}

func TestLoadEnv(t *testing.T) {
	t.Run("missing file errors", func(t *testing.T) {
		err := config.LoadEnv("testdata/does-not-exist.env")
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrLoadingEnvFile)
	})

	t.Run("must variant panics on missing file", func(t *testing.T) {
		assert.Panics(t, func() {
			config.MustLoadEnv("testdata/does-not-exist.env")
		})
	})
}
