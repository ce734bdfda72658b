package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 0.80, cfg.Detection.SimilarityThreshold)
	assert.Equal(t, 50, cfg.Detection.MinTokens)
	assert.Equal(t, 6, cfg.Detection.MinLines)
	assert.Equal(t, "all", cfg.Detection.Kinds)
	assert.Equal(t, 50, cfg.Detection.MaxGroups)
	assert.Equal(t, 30, cfg.Detection.TimeoutSeconds)
	assert.True(t, cfg.Exclude.Gitignore)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold above one", func(c *Config) { c.Detection.SimilarityThreshold = 1.1 }},
		{"threshold negative", func(c *Config) { c.Detection.SimilarityThreshold = -0.1 }},
		{"max groups zero", func(c *Config) { c.Detection.MaxGroups = 0 }},
		{"max groups above ceiling", func(c *Config) { c.Detection.MaxGroups = MaxGroupsCeiling + 1 }},
		{"timeout zero", func(c *Config) { c.Detection.TimeoutSeconds = 0 }},
		{"timeout above ceiling", func(c *Config) { c.Detection.TimeoutSeconds = TimeoutSecondsCeiling + 1 }},
		{"unknown kinds", func(c *Config) { c.Detection.Kinds = "fuzzy" }},
		{"unknown format", func(c *Config) { c.Output.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doppel.toml")
	content := `[detection]
similarity_threshold = 0.9
max_groups = 25
kinds = "renamed"

[output]
format = "json"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.9, cfg.Detection.SimilarityThreshold)
	assert.Equal(t, 25, cfg.Detection.MaxGroups)
	assert.Equal(t, "renamed", cfg.Detection.Kinds)
	assert.Equal(t, "json", cfg.Output.Format)
	// Unset keys keep defaults.
	assert.Equal(t, 6, cfg.Detection.MinLines)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doppel.yaml")
	content := `detection:
  similarity_threshold: 0.75
  timeout_seconds: 60
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.75, cfg.Detection.SimilarityThreshold)
	assert.Equal(t, 60, cfg.Detection.TimeoutSeconds)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doppel.toml")
	content := `[detection]
max_groups = 9999
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestShouldExclude(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		path string
		want bool
	}{
		{"vendor/lib/util.go", true},
		{"src/node_modules/pkg/index.js", true},
		{"pkg/util_test.go", true},
		{"assets/app.min.js", true},
		{"go.sum", true},
		{"pkg/util.go", false},
		{"src/index.js", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, cfg.ShouldExclude(tt.path), "path %s", tt.path)
	}
}
