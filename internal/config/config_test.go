package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "storefront.yaml"), []byte(content), 0o644)
	require.NoError(t, err)
	return dir
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		env         map[string]string
		expected    func(t *testing.T, cfg *Config)
		expectedErr bool
	}{
		{
			name:    "given empty config file should use defaults",
			content: "",
			expected: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "https://fakestoreapi.com", cfg.Upstream.BaseURL)
				assert.Equal(t, 10*time.Second, cfg.Upstream.Timeout)
				assert.Equal(t, "usd", cfg.Payment.Currency)
				assert.Equal(t, PriceCacheBackendFile, cfg.PriceCache.Backend)
				assert.Equal(t, "products.json", cfg.PriceCache.Path)
				assert.Equal(t, 8000, cfg.Application.Port)
			},
		},
		{
			name: "given config file should override defaults",
			content: `
application:
  env: development
  port: 9090
upstream:
  base_url: http://upstream.local
  timeout: 3s
price_cache:
  backend: redis
  key: test:products
`,
			expected: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "development", cfg.Application.Env)
				assert.Equal(t, 9090, cfg.Application.Port)
				assert.Equal(t, "http://upstream.local", cfg.Upstream.BaseURL)
				assert.Equal(t, 3*time.Second, cfg.Upstream.Timeout)
				assert.Equal(t, PriceCacheBackendRedis, cfg.PriceCache.Backend)
				assert.Equal(t, "test:products", cfg.PriceCache.Key)
			},
		},
		{
			name:    "given secret key in environment should read it",
			content: "payment:\n  currency: usd\n",
			env: map[string]string{
				"PAYMENT_SECRET_KEY": "sk_test_env",
				"UPSTREAM_BASE_URL":  "http://from-env",
			},
			expected: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "sk_test_env", cfg.Payment.SecretKey)
				assert.Equal(t, "http://from-env", cfg.Upstream.BaseURL)
			},
		},
		{
			name:        "given unknown price cache backend should return error",
			content:     "price_cache:\n  backend: postgres\n",
			expectedErr: true,
		},
		{
			name:        "given non positive timeout should return error",
			content:     "upstream:\n  timeout: 0s\n",
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			dir := writeConfig(t, tt.content)

			cfg, err := Load(context.Background(), dir, "storefront")
			if tt.expectedErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.expected(t, cfg)
		})
	}
}

func TestLoadWithoutConfigFile(t *testing.T) {
	cfg, err := Load(context.Background(), t.TempDir(), "missing")
	require.NoError(t, err)
	assert.Equal(t, "https://fakestoreapi.com", cfg.Upstream.BaseURL)
}
