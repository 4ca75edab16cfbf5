package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, MailProviderLog, cfg.Mail.Provider)
	assert.Equal(t, 10*time.Second, cfg.Mail.Timeout)
	assert.Equal(t, time.Minute, cfg.Cache.PendingBookingsTTL)
	assert.Equal(t, "*/5 * * * *", cfg.Reminders.Schedule)
	assert.False(t, cfg.Reminders.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ENV", EnvProduction)
	t.Setenv("PORT", "9090")
	t.Setenv("MAIL_PROVIDER", "SendGrid")
	t.Setenv("ALLOWED_ORIGINS", "https://app.empowerhered.org, https://admin.empowerhered.org ,")
	t.Setenv("PENDING_BOOKINGS_CACHE_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, MailProviderSendGrid, cfg.Mail.Provider)
	assert.Equal(t, []string{"https://app.empowerhered.org", "https://admin.empowerhered.org"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, time.Minute, cfg.Cache.PendingBookingsTTL)
}
