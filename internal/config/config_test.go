package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "dev-secret")
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("SMTP_USER", "shop@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24, cfg.JWTExpirationHours)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL())
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "shop@example.com", cfg.SMTPFrom)
	assert.Equal(t, "shop@example.com", cfg.AdminEmail)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.MailEnabled())
	assert.False(t, cfg.TrustProxy)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "short secret in production",
			cfg:     Config{Environment: "production", JWTSecret: "short", JWTExpirationHours: 24},
			wantErr: true,
		},
		{
			name:    "short secret in development",
			cfg:     Config{Environment: "development", JWTSecret: "short", JWTExpirationHours: 24},
			wantErr: false,
		},
		{
			name:    "long secret in production",
			cfg:     Config{Environment: "production", JWTSecret: "0123456789abcdef0123456789abcdef", JWTExpirationHours: 24},
			wantErr: false,
		},
		{
			name:    "non-positive expiry",
			cfg:     Config{Environment: "development", JWTSecret: "x", JWTExpirationHours: 0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
