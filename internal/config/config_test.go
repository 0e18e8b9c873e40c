// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestFromViper_Defaults(t *testing.T) {
	assert.Equal(t, Default(), normalize(FromViper(NewViper())))
}

// normalize maps an empty language list to nil so it compares equal to
// the default.
func normalize(c Config) Config {
	if len(c.Languages) == 0 {
		c.Languages = nil
	}
	return c
}

func TestFromViper_Environment(t *testing.T) {
	t.Setenv("REPORANK_DAMPING", "0.5")
	t.Setenv("REPORANK_CACHE_DIR", "/tmp/rr-cache")
	t.Setenv("REPORANK_MAP_TOKEN_BUDGET", "4096")
	t.Setenv("REPORANK_TIMEOUT", "5s")

	cfg := FromViper(NewViper())
	assert.InDelta(t, 0.5, cfg.Damping, 1e-12)
	assert.Equal(t, "/tmp/rr-cache", cfg.CacheDir)
	assert.Equal(t, 4096, cfg.MapTokenBudget)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestAddFlags_OverrideDefaults(t *testing.T) {
	v := NewViper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, AddFlags(v, fs))
	require.NoError(t, fs.Parse([]string{"--backend=gonum", "--max-files=7", "--languages=go,python"}))

	cfg := FromViper(v)
	assert.Equal(t, "gonum", cfg.Backend)
	assert.Equal(t, 7, cfg.MaxFiles)
	assert.Equal(t, []string{"go", "python"}, cfg.Languages)
	assert.Equal(t, 100, cfg.MaxIterations)
}

func TestReadConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".reporank.yaml"), []byte("backend: gonum\nmax-iterations: 50\n"), 0o644))

	v := NewViper()
	v.AddConfigPath(dir)
	require.NoError(t, ReadConfigFile(v))

	cfg := FromViper(v)
	assert.Equal(t, "gonum", cfg.Backend)
	assert.Equal(t, 50, cfg.MaxIterations)
}

func TestReadConfigFile_Missing(t *testing.T) {
	v := NewViper()
	v.SetConfigName(".reporank-does-not-exist")
	assert.NoError(t, ReadConfigFile(v))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty workdir", func(c *Config) { c.WorkDir = "" }},
		{"negative budget", func(c *Config) { c.MapTokenBudget = -1 }},
		{"damping zero", func(c *Config) { c.Damping = 0 }},
		{"damping one", func(c *Config) { c.Damping = 1 }},
		{"no iterations", func(c *Config) { c.MaxIterations = 0 }},
		{"no tolerance", func(c *Config) { c.Tolerance = 0 }},
		{"zero boost", func(c *Config) { c.Boost = 0 }},
		{"unknown backend", func(c *Config) { c.Backend = "networkx" }},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
