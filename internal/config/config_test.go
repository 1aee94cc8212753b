package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("INITIAL_ADMIN_PASSWORD", "admin")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_DRIVER", "memory")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5001", cfg.Server.Port)
	assert.Equal(t, "admin@worksync.com", cfg.SuperAdminEmail)
	assert.Equal(t, 1209600, cfg.JWT.Expiration)
	assert.Equal(t, 10, cfg.Pagination.DefaultLimit)
	assert.Equal(t, 100, cfg.Pagination.MaxLimit)
	assert.Equal(t, "email_queue", cfg.RabbitMQ.Queue)
}

func TestLoadConfigValidation(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("INITIAL_ADMIN_PASSWORD", "admin")
		t.Setenv("JWT_SECRET", "")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("postgres needs dsn", func(t *testing.T) {
		setRequired(t)
		t.Setenv("DATABASE_DRIVER", "postgres")
		t.Setenv("DATABASE_DSN", "")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("bad time zone", func(t *testing.T) {
		setRequired(t)
		t.Setenv("ATTENDANCE_TIMEZONE", "Mars/Olympus")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("explicit super admin", func(t *testing.T) {
		setRequired(t)
		t.Setenv("SUPER_ADMIN_EMAIL", "boss@worksync.com")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "boss@worksync.com", cfg.SuperAdminEmail)
	})
}
