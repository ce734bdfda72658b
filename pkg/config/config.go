// Package config loads doppel configuration from TOML, YAML, or JSON files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Limits on caller-controlled settings.
const (
	MaxGroupsCeiling      = 500
	TimeoutSecondsCeiling = 300
)

// Config holds all configuration options for doppel. The toml tags keep
// `doppel init` output loadable by the koanf-based reader.
type Config struct {
	// Detection settings
	Detection DetectionConfig `koanf:"detection" toml:"detection"`

	// File exclusion patterns
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// DetectionConfig controls the clone-detection engine.
type DetectionConfig struct {
	SimilarityThreshold float64 `koanf:"similarity_threshold" toml:"similarity_threshold"`
	MinTokens           int     `koanf:"min_tokens" toml:"min_tokens"`
	MinLines            int     `koanf:"min_lines" toml:"min_lines"`
	Kinds               string  `koanf:"kinds" toml:"kinds"` // all, exact, renamed, nearmiss
	MaxGroups           int     `koanf:"max_groups" toml:"max_groups"`
	TimeoutSeconds      int     `koanf:"timeout_seconds" toml:"timeout_seconds"`
}

// ExcludeConfig defines file exclusion patterns.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns" toml:"patterns"`
	Extensions []string `koanf:"extensions" toml:"extensions"`
	Dirs       []string `koanf:"dirs" toml:"dirs"`
	Gitignore  bool     `koanf:"gitignore" toml:"gitignore"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // text, json, markdown
	Color  bool   `koanf:"color" toml:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Detection: DetectionConfig{
			SimilarityThreshold: 0.80,
			MinTokens:           50,
			MinLines:            6,
			Kinds:               "all",
			MaxGroups:           50,
			TimeoutSeconds:      30,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*_test.go",
				"*_test.ts",
				"*_test.py",
				"*.min.js",
				"*.min.css",
			},
			Extensions: []string{
				".lock",
				".sum",
			},
			Dirs: []string{
				"vendor",
				"node_modules",
				".git",
				"dist",
				"build",
				"__pycache__",
			},
			Gitignore: true,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Validate checks ranges and enumerated options.
func (c *Config) Validate() error {
	d := c.Detection
	if d.SimilarityThreshold < 0 || d.SimilarityThreshold > 1 {
		return fmt.Errorf("detection.similarity_threshold %.2f out of range [0,1]", d.SimilarityThreshold)
	}
	if d.MaxGroups < 1 || d.MaxGroups > MaxGroupsCeiling {
		return fmt.Errorf("detection.max_groups %d out of range [1,%d]", d.MaxGroups, MaxGroupsCeiling)
	}
	if d.TimeoutSeconds < 1 || d.TimeoutSeconds > TimeoutSecondsCeiling {
		return fmt.Errorf("detection.timeout_seconds %d out of range [1,%d]", d.TimeoutSeconds, TimeoutSecondsCeiling)
	}
	switch d.Kinds {
	case "all", "exact", "renamed", "nearmiss":
	default:
		return fmt.Errorf("detection.kinds %q not one of all, exact, renamed, nearmiss", d.Kinds)
	}
	switch c.Output.Format {
	case "text", "json", "markdown":
	default:
		return fmt.Errorf("output.format %q not one of text, json, markdown", c.Output.Format)
	}
	return nil
}

// Load loads configuration from a file, layered over the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries standard locations and falls back to defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"doppel.toml",
		"doppel.yaml",
		"doppel.yml",
		"doppel.json",
		".doppel.toml",
		".doppel.yaml",
		".doppel.yml",
		".doppel.json",
	}

	for _, name := range configNames {
		if _, err := os.Stat(name); err == nil {
			cfg, err := Load(name)
			if err == nil {
				return cfg
			}
		}
	}

	return DefaultConfig()
}

// ShouldExclude checks if a path should be excluded from analysis.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}

	ext := filepath.Ext(path)
	for _, excludeExt := range c.Exclude.Extensions {
		if ext == excludeExt {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
