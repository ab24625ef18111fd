// Package config holds the configuration of the catalog service.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/abgdnv/catalog/internal/platform/config"
	"github.com/abgdnv/catalog/internal/platform/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
	Events     config.EventsConfig     `koanf:"events"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	Catalog    CatalogConfig           `koanf:"catalog"`
	Analysis   AnalysisConfig          `koanf:"analysis"`
	LLM        LLMConfig               `koanf:"llm"`
	Metrics    MetricsConfig           `koanf:"metrics"`
}

// CatalogConfig tunes the product list.
type CatalogConfig struct {
	// Seed fills an empty catalog with the demo products at startup.
	Seed bool `koanf:"seed"`
	// Debounce delays filtering while a query is being typed.
	Debounce time.Duration `koanf:"debounce"`
	// KeepAlive is the idle interval of the event stream.
	KeepAlive time.Duration `koanf:"keepalive"`
}

// AnalysisConfig points uploads at the analysis backend.
type AnalysisConfig struct {
	Enabled    bool                    `koanf:"enabled"`
	BaseURL    string                  `koanf:"baseurl"`
	Timeout    time.Duration           `koanf:"timeout"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
}

// LLMConfig points the analyze endpoint at an OpenAI-compatible model.
// An empty URL disables the endpoint.
type LLMConfig struct {
	URL     string        `koanf:"url"`
	APIKey  string        `koanf:"apikey"`
	Model   string        `koanf:"model"`
	Timeout time.Duration `koanf:"timeout"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]any {
	return map[string]any{
		"server.port":               8080,
		"server.maxheaderbytes":     1 << 20,
		"server.maxuploadbytes":     8 << 20,
		"server.timeout.read":       "15s",
		"server.timeout.write":      "0s",
		"server.timeout.idle":       "60s",
		"server.timeout.readheader": "5s",

		"database.enabled": false,
		"database.timeout": "5s",

		"log.level": "info",

		"pprof.enabled": false,
		"pprof.addr":    ":6060",

		"grpc.enabled":    true,
		"grpc.port":       "9090",
		"grpc.reflection": false,

		"shutdown.timeout": "10s",

		"events.driver":       config.EventsDriverNone,
		"events.nats.timeout": "5s",
		"events.nats.stream":  "CATALOG",

		"telemetry.enabled":                 false,
		"telemetry.traces.otlphttp.timeout": "10s",

		"catalog.seed":      true,
		"catalog.debounce":  "300ms",
		"catalog.keepalive": "15s",

		"analysis.enabled":                                       true,
		"analysis.baseurl":                                       "http://localhost:8080/api/products",
		"analysis.timeout":                                       "30s",
		"analysis.resilience.retry.maxattempts":                  2,
		"analysis.resilience.retry.initialbackoff":               "500ms",
		"analysis.resilience.circuitbreaker.consecutivefailures": 5,
		"analysis.resilience.circuitbreaker.errorratepercent":    50,
		"analysis.resilience.circuitbreaker.opentimeout":         "30s",

		"llm.timeout": "60s",

		"metrics.enabled": true,
		"metrics.path":    "/metrics",
	}
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Database.String())
	b.WriteString(c.GRPC.String())
	b.WriteString(c.Events.String())
	b.WriteString(c.Telemetry.String())

	b.WriteString("\n--- Catalog ---\n")
	b.WriteString(fmt.Sprintf("  seed: %t\n", c.Catalog.Seed))
	b.WriteString(fmt.Sprintf("  debounce: %v\n", c.Catalog.Debounce))
	b.WriteString(fmt.Sprintf("  keepalive: %v\n", c.Catalog.KeepAlive))

	b.WriteString("\n--- Analysis ---\n")
	b.WriteString(fmt.Sprintf("  enabled: %t\n", c.Analysis.Enabled))
	b.WriteString(fmt.Sprintf("  baseurl: %s\n", c.Analysis.BaseURL))
	b.WriteString(fmt.Sprintf("  timeout: %v\n", c.Analysis.Timeout))
	b.WriteString(c.Analysis.Resilience.String())

	b.WriteString("\n--- LLM ---\n")
	b.WriteString(fmt.Sprintf("  url: %s\n", c.LLM.URL))
	b.WriteString(fmt.Sprintf("  apikey: %s\n", maskSecret(c.LLM.APIKey)))
	b.WriteString(fmt.Sprintf("  model: %s\n", c.LLM.Model))
	b.WriteString(fmt.Sprintf("  timeout: %v\n", c.LLM.Timeout))

	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(fmt.Sprintf("  metrics.enabled: %t\n", c.Metrics.Enabled))
	b.WriteString(fmt.Sprintf("  metrics.path: %s\n", c.Metrics.Path))
	b.WriteString("\n--- Lifecycle ---\n")
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	validators := []configloader.Validator{
		&c.HTTPServer, &c.Database, &c.Log, &c.PProf, &c.GRPC, &c.Shutdown, &c.Events, &c.Telemetry,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	if c.Catalog.Debounce < 0 {
		return fmt.Errorf("catalog.debounce must not be negative")
	}
	if c.Catalog.KeepAlive <= 0 {
		return fmt.Errorf("catalog.keepalive must be greater than 0")
	}
	if c.Analysis.Enabled {
		if err := validateHTTPURL(c.Analysis.BaseURL); err != nil {
			return fmt.Errorf("analysis.baseurl: %w", err)
		}
		if c.Analysis.Timeout <= 0 {
			return fmt.Errorf("analysis.timeout must be greater than 0")
		}
		if err := c.Analysis.Resilience.Validate(); err != nil {
			return fmt.Errorf("analysis.resilience: %w", err)
		}
	}
	if c.LLM.URL != "" {
		if err := validateHTTPURL(c.LLM.URL); err != nil {
			return fmt.Errorf("llm.url: %w", err)
		}
		if c.LLM.Timeout <= 0 {
			return fmt.Errorf("llm.timeout must be greater than 0")
		}
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/'")
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an absolute http(s) URL, got %q", raw)
	}
	return nil
}

func maskSecret(s string) string {
	if s == "" {
		return "<not configured>"
	}
	return "****"
}
