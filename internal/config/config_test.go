package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(ConfigFileEnvName, "")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "decoambiente", cfg.Mongo.Database)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, float64(1000000), cfg.Catalog.MaxPrice)
	assert.True(t, cfg.Catalog.Fallback)
	assert.Equal(t, "Deco Ambiente", cfg.Site.Name)
	assert.Equal(t, "es-CL", cfg.Site.Locale)
	assert.Empty(t, cfg.Auth.AdminEmails)
}

func TestLoadLegacyEnvironment(t *testing.T) {
	t.Setenv(ConfigFileEnvName, "")
	t.Setenv("MONGO_URI", "mongodb://legacy:27017")
	t.Setenv("ADMIN_EMAILS", "ana@decoambiente.cl, Luis@DecoAmbiente.cl")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "mongodb://legacy:27017", cfg.Mongo.URI)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"ana@decoambiente.cl", "Luis@DecoAmbiente.cl"}, cfg.Auth.AdminEmails)
}

func TestPrefixedEnvironmentWinsOverLegacy(t *testing.T) {
	t.Setenv(ConfigFileEnvName, "")
	t.Setenv("MONGO_URI", "mongodb://legacy:27017")
	t.Setenv("DECO_MONGO_URI", "mongodb://prefixed:27017")
	t.Setenv("DECO_CATALOG_CACHE_TTL", "5m")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "mongodb://prefixed:27017", cfg.Mongo.URI)
	assert.Equal(t, 5*time.Minute, cfg.Catalog.CacheTTL)
}

func TestLoadFile(t *testing.T) {
	t.Setenv(ConfigFileEnvName, "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":9090"
  mode: debug
auth:
  admin_emails:
    - owner@decoambiente.cl
  admin_passwords:
    owner@decoambiente.cl: "$2a$10$abcdefghijklmnopqrstuv"
site:
  whatsapp: "56911112222"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, []string{"owner@decoambiente.cl"}, cfg.Auth.AdminEmails)
	assert.Contains(t, cfg.Auth.AdminPasswords, "owner@decoambiente.cl")
	assert.Equal(t, "56911112222", cfg.Site.WhatsApp)
	assert.Equal(t, "Deco Ambiente", cfg.Site.Name)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv(ConfigFileEnvName, "")
	base, err := Load(New(), "")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"bad server mode", func(c *Config) { c.Server.Mode = "prod" }},
		{"zero max price", func(c *Config) { c.Catalog.MaxPrice = 0 }},
		{"zero upload limit", func(c *Config) { c.Import.MaxUploadMB = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a, b", " ", "c"}))
	assert.Empty(t, splitList(nil))
}
