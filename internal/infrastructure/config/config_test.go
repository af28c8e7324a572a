package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"SALLA_APP_NAME":               os.Getenv("SALLA_APP_NAME"),
		"SALLA_APP_ENV":                os.Getenv("SALLA_APP_ENV"),
		"SALLA_APP_PORT":               os.Getenv("SALLA_APP_PORT"),
		"SALLA_DATABASE_HOST":          os.Getenv("SALLA_DATABASE_HOST"),
		"SALLA_DATABASE_PASSWORD":      os.Getenv("SALLA_DATABASE_PASSWORD"),
		"SALLA_DATABASE_SSLMODE":       os.Getenv("SALLA_DATABASE_SSLMODE"),
		"SALLA_SALLA_CLIENT_ID":        os.Getenv("SALLA_SALLA_CLIENT_ID"),
		"SALLA_SALLA_CLIENT_SECRET":    os.Getenv("SALLA_SALLA_CLIENT_SECRET"),
		"SALLA_SALLA_WEBHOOK_SECRET":   os.Getenv("SALLA_SALLA_WEBHOOK_SECRET"),
		"SALLA_SYNC_PRIMARY_WAREHOUSE": os.Getenv("SALLA_SYNC_PRIMARY_WAREHOUSE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "salla-bridge", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "sallabridge", cfg.Database.DBName)
		assert.Equal(t, "https://api.salla.dev/admin/v2", cfg.Salla.APIBase)
		assert.Equal(t, "https://accounts.salla.sa", cfg.Salla.AuthBase)
		assert.Equal(t, 50, cfg.Salla.PerPage)
		assert.Equal(t, "WH-MAIN", cfg.Sync.PrimaryWarehouse)
		assert.Equal(t, "WH-OVERFLOW", cfg.Sync.SecondaryWarehouse)
		assert.Equal(t, "SAR", cfg.Sync.DefaultCurrency)
		assert.Equal(t, "completed", cfg.Sync.PostFulfillmentStatusSlug)
		assert.Equal(t, "company_name", cfg.Sync.CustomerOptionLabels["اسم الشركة"])
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		clearEnv()
		os.Setenv("SALLA_APP_PORT", "9090")
		os.Setenv("SALLA_DATABASE_HOST", "db.internal")
		os.Setenv("SALLA_SYNC_PRIMARY_WAREHOUSE", "WH-RIYADH")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.App.Port)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, "WH-RIYADH", cfg.Sync.PrimaryWarehouse)
	})

	t.Run("production requires oauth client and webhook secret", func(t *testing.T) {
		clearEnv()
		os.Setenv("SALLA_APP_ENV", "production")
		os.Setenv("SALLA_DATABASE_PASSWORD", "secret")
		os.Setenv("SALLA_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "salla.client_id")

		os.Setenv("SALLA_SALLA_CLIENT_ID", "cid")
		os.Setenv("SALLA_SALLA_CLIENT_SECRET", "csecret")
		_, err = Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "webhook_secret")

		os.Setenv("SALLA_SALLA_WEBHOOK_SECRET", "whsecret")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})

	t.Run("production rejects sslmode disable", func(t *testing.T) {
		clearEnv()
		os.Setenv("SALLA_APP_ENV", "production")
		os.Setenv("SALLA_DATABASE_PASSWORD", "secret")
		os.Setenv("SALLA_SALLA_CLIENT_ID", "cid")
		os.Setenv("SALLA_SALLA_CLIENT_SECRET", "csecret")
		os.Setenv("SALLA_SALLA_WEBHOOK_SECRET", "whsecret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "p@ss/word",
		DBName:   "sallabridge",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "sallabridge")
	assert.Contains(t, dsn, "sslmode=disable")
	// Special characters must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", cfg.Addr())
}
