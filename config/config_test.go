package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "simulated", cfg.PaymentProvider)
	assert.Equal(t, 10*time.Second, cfg.PaymentTimeout)
	assert.Equal(t, int32(2), cfg.PaymentMinorUnitDigits)
	assert.Equal(t, 5, cfg.OutboxMaxAttempts)
	assert.Equal(t, 10, cfg.LowStockThreshold)
	assert.False(t, cfg.StrictOrderTransitions)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("PAYMENT_TIMEOUT", "soon")
	t.Setenv("PAYMENT_PROVIDER", "paypal")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAYMENT_TIMEOUT")
	assert.Contains(t, err.Error(), "paypal")
}

func TestLoadStripeNeedsKey(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("PAYMENT_PROVIDER", "Stripe")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STRIPE_SECRET_KEY")
}

func TestDSN(t *testing.T) {
	cfg := Config{DBHost: "db", DBPort: "5433", DBUser: "u", DBPassword: "p", DBName: "shop"}
	assert.Equal(t, "host=db user=u password=p dbname=shop port=5433 sslmode=disable", cfg.DSN())

	cfg.DatabaseURL = "postgres://u:p@db/shop"
	assert.Equal(t, "postgres://u:p@db/shop", cfg.DSN())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, splitList(" https://a.example, ,https://b.example "))
	assert.Nil(t, splitList(""))
}

func TestTelrWebhookIsVerifiedByDefault(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("TELR_MODE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "live", cfg.TelrMode)
	assert.False(t, cfg.TelrTestMode())
	assert.False(t, cfg.TelrWebhookEnabled())
}

func TestLoadTelrSettings(t *testing.T) {
	cases := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "live without webhook secret",
			env:     map[string]string{"TELR_MODE": "live"},
			wantErr: "TELR_WEBHOOK_SECRET",
		},
		{
			name:    "sandbox in production",
			env:     map[string]string{"TELR_MODE": "sandbox", "APP_ENV": "production"},
			wantErr: "not allowed in production",
		},
		{
			name: "live with webhook secret",
			env:  map[string]string{"TELR_MODE": "live", "TELR_WEBHOOK_SECRET": "s3cret"},
		},
		{
			name: "sandbox in dev",
			env:  map[string]string{"TELR_MODE": "sandbox", "APP_ENV": "dev"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "x")
			t.Setenv("PAYMENT_PROVIDER", "telr")
			t.Setenv("TELR_STORE_ID", "1234")
			t.Setenv("TELR_AUTH_KEY", "key")
			t.Setenv("TELR_WEBHOOK_SECRET", "")
			t.Setenv("APP_ENV", "dev")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, cfg.TelrWebhookEnabled())
		})
	}
}
