package config

import (
	"testing"
	"time"

	"github.com/abgdnv/catalog/internal/platform/config/configloader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serviceName = "catalog"

func Test_Load_Defaults(t *testing.T) {
	// given
	t.Chdir(t.TempDir())

	// when
	cfg, err := configloader.Load[*Config](serviceName, Defaults())

	// then
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPServer.Port)
	assert.Equal(t, 300*time.Millisecond, cfg.Catalog.Debounce)
	assert.True(t, cfg.Catalog.Seed)
	assert.Equal(t, "http://localhost:8080/api/products", cfg.Analysis.BaseURL)
	assert.Equal(t, uint(2), cfg.Analysis.Resilience.Retry.MaxAttempts)
	assert.Equal(t, uint32(5), cfg.Analysis.Resilience.CircuitBreaker.ConsecutiveFailures)
	assert.Equal(t, "none", cfg.Events.Driver)
	assert.False(t, cfg.Database.Enabled)
	assert.Empty(t, cfg.LLM.URL)
}

func Test_Load_EnvOverrides(t *testing.T) {
	// given
	t.Chdir(t.TempDir())
	t.Setenv("CATALOG_ANALYSIS_BASEURL", "https://backend.example.com/api/products")
	t.Setenv("CATALOG_CATALOG_DEBOUNCE", "1s")
	t.Setenv("CATALOG_LLM_URL", "https://llm.example.com")
	t.Setenv("CATALOG_LLM_APIKEY", "secret")

	// when
	cfg, err := configloader.Load[*Config](serviceName, Defaults())

	// then
	require.NoError(t, err)
	assert.Equal(t, "https://backend.example.com/api/products", cfg.Analysis.BaseURL)
	assert.Equal(t, time.Second, cfg.Catalog.Debounce)
	assert.Equal(t, "https://llm.example.com", cfg.LLM.URL)
	assert.NotContains(t, cfg.String(), "secret")
}

func Test_Config_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "relative analysis url", mutate: func(c *Config) { c.Analysis.BaseURL = "/api/products" }},
		{name: "no retry attempts", mutate: func(c *Config) { c.Analysis.Resilience.Retry.MaxAttempts = 0 }},
		{name: "llm url without scheme", mutate: func(c *Config) { c.LLM.URL = "llm.example.com" }},
		{name: "metrics path", mutate: func(c *Config) { c.Metrics.Path = "metrics" }},
		{name: "unknown events driver", mutate: func(c *Config) { c.Events.Driver = "kafka" }},
		{name: "zero keepalive", mutate: func(c *Config) { c.Catalog.KeepAlive = 0 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			t.Chdir(t.TempDir())
			cfg, err := configloader.Load[*Config](serviceName, Defaults())
			require.NoError(t, err)

			// when
			tc.mutate(cfg)

			// then
			assert.Error(t, cfg.Validate())
		})
	}
}

func Test_Config_Validate_DisabledAnalysisSkipsURL(t *testing.T) {
	// given
	t.Chdir(t.TempDir())
	cfg, err := configloader.Load[*Config](serviceName, Defaults())
	require.NoError(t, err)

	// when
	cfg.Analysis.Enabled = false
	cfg.Analysis.BaseURL = ""

	// then
	assert.NoError(t, cfg.Validate())
}
