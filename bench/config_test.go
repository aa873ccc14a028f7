package bench

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"bls", "gq", "schnorr"}, cfg.Backends)
	assert.Equal(t, 5, cfg.Warmup)
	assert.Equal(t, 100, cfg.Trials)
	assert.Equal(t, 128, cfg.Level)
	assert.Equal(t, "alice@example.org", cfg.Identity)
	assert.Equal(t, 3072, cfg.GQ.ModulusBits)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backends: [schnorr, bls]
trials: 10
seed: "00ff"
gq:
  modulus_bits: 1024
formats: [csv, html]
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"schnorr", "bls"}, cfg.Backends)
	assert.Equal(t, 10, cfg.Trials)
	assert.Equal(t, 5, cfg.Warmup, "unset fields keep their defaults")
	assert.Equal(t, 1024, cfg.GQ.ModulusBits)
	assert.Equal(t, 65537, cfg.GQ.Exponent)
	assert.Equal(t, []string{FormatCSV, FormatHTML}, cfg.Formats)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trials: [1, 2"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"no backends":     func(c *Config) { c.Backends = nil },
		"unknown backend": func(c *Config) { c.Backends = []string{"rsa"} },
		"duplicate":       func(c *Config) { c.Backends = []string{"bls", "bls"} },
		"level":           func(c *Config) { c.Level = 192 },
		"warmup":          func(c *Config) { c.Warmup = -1 },
		"trials":          func(c *Config) { c.Trials = 0 },
		"seed":            func(c *Config) { c.Seed = "xyz" },
		"format":          func(c *Config) { c.Formats = []string{"pdf"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
