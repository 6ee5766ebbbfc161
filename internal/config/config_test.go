// internal/config/config_test.go
package config

import (
	"crypto/tls"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "file", cfg.Source.Mode)
	assert.Equal(t, "https://rdap.org/ip", cfg.Registry.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Registry.Timeout)
	assert.Equal(t, "text", cfg.OutputFormat)
	assert.False(t, cfg.Archive.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SOURCE_MODE", "follow")
	t.Setenv("RDAP_TIMEOUT", "10s")
	t.Setenv("RDAP_MIN_TLS", "1.0")
	t.Setenv("OUTPUT_FORMAT", "json")

	cfg := Load()
	assert.Equal(t, "follow", cfg.Source.Mode)
	assert.Equal(t, 10*time.Second, cfg.Registry.Timeout)
	assert.Equal(t, uint16(tls.VersionTLS10), cfg.Registry.TLSVersion())
	assert.Equal(t, "json", cfg.OutputFormat)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad source mode", func(c *Config) { c.Source.Mode = "carrier-pigeon" }},
		{"empty file path", func(c *Config) { c.Source.Mode = "file"; c.Source.Path = "" }},
		{"empty registry url", func(c *Config) { c.Registry.BaseURL = "" }},
		{"zero timeout", func(c *Config) { c.Registry.Timeout = 0 }},
		{"bad tls floor", func(c *Config) { c.Registry.MinTLS = "0.9" }},
		{"bad output format", func(c *Config) { c.OutputFormat = "yaml" }},
		{"archive missing user", func(c *Config) { c.Archive.Enabled = true; c.Archive.User = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
