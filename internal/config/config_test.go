package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "fittrack", cfg.MongoDatabase)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 10*time.Minute, cfg.ResetTicketTTL)
	assert.Equal(t, MailProviderLog, cfg.Mail.Provider)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Empty(t, cfg.RedisURL)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_EmptyRequired(t *testing.T) {
	tests := map[string]struct{ mongoURI, secret string }{
		"both empty":       {"", ""},
		"empty jwt secret": {"mongodb://localhost:27017", ""},
		"empty mongo uri":  {"", "test-secret"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("APP_ENV", "development")
			t.Setenv("MONGO_URI", tc.mongoURI)
			t.Setenv("JWT_SECRET", tc.secret)

			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_ProductionRefusesLogMailer(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("MAIL_PROVIDER", "resend")
	t.Setenv("RESEND_API_KEY", "re_123")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "development")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("MAIL_PROVIDER", "smtp")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("FRONTEND_ORIGIN", "https://fit.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, "https://fit.example.com", cfg.FrontendOrigin)
}

func TestValidate_MailProviders(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"log in development", Config{AppEnv: "development", Mail: MailConfig{Provider: MailProviderLog}}, false},
		{"log in production", Config{AppEnv: "production", Mail: MailConfig{Provider: MailProviderLog}}, true},
		{"resend without key", Config{Mail: MailConfig{Provider: MailProviderResend}}, true},
		{"resend with key", Config{Mail: MailConfig{Provider: MailProviderResend}, Resend: ResendConfig{APIKey: "re_123"}}, false},
		{"smtp without host", Config{Mail: MailConfig{Provider: MailProviderSMTP}}, true},
		{"unknown provider", Config{Mail: MailConfig{Provider: "pigeon"}}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.JWTSecret = "test-secret"
			tc.cfg.SessionTTL = time.Hour
			tc.cfg.OTPTTL = time.Minute
			tc.cfg.ResetTicketTTL = time.Minute
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_NonPositiveTTL(t *testing.T) {
	cfg := Config{AppEnv: "development", JWTSecret: "test-secret", Mail: MailConfig{Provider: MailProviderLog}, SessionTTL: time.Hour, OTPTTL: 0, ResetTicketTTL: time.Minute}
	assert.Error(t, cfg.Validate())
}
