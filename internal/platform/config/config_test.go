package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseViper() *viper.Viper {
	v := viper.New()
	v.Set("PGSQL_URL", "postgres://ledger@localhost/ledger")
	v.Set("RATE_LIMIT", "100-M")
	v.Set("BALANCE_TOLERANCE", "0.01")
	v.Set("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	return v
}

func TestFromViper(t *testing.T) {
	cfg, err := fromViper(baseViper())

	require.NoError(t, err)
	assert.Equal(t, int64(100), cfg.RateLimit.Limit)
	assert.Equal(t, time.Minute, cfg.RateLimit.Period)
	assert.Equal(t, "0.01", cfg.BalanceTolerance.String())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, insecureJWTSecret, cfg.JWTSecret)
}

func TestFromViper_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"missing database", "PGSQL_URL", ""},
		{"bad rate", "RATE_LIMIT", "lots"},
		{"negative tolerance", "BALANCE_TOLERANCE", "-0.5"},
		{"production without secret", "IS_PRODUCTION", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := baseViper()
			v.Set(tt.key, tt.val)
			_, err := fromViper(v)
			assert.Error(t, err)
		})
	}
}
