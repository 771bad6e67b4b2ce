package config

import (
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up in the repository root.
const DefaultFile = "swiftdecl.yaml"

var validate = validator.New()

// Config represents the swiftdecl.yaml configuration.
type Config struct {
	Repo       string       `yaml:"repo" validate:"required"`
	Ignore     []string     `yaml:"ignore"`
	Workers    int          `yaml:"workers" validate:"gte=0,lte=256"`
	Explainers []string     `yaml:"explainers" validate:"dive,oneof=cycles layers rules"`
	Renderers  []string     `yaml:"renderers" validate:"dive,oneof=outline yaml"`
	Rules      []Rule       `yaml:"rules" validate:"dive"`
	Output     OutputConfig `yaml:"output"`
	Cache      CacheConfig  `yaml:"cache"`
}

// Rule is a CEL conformance rule evaluated against every declaration of the
// listed kinds. A rule whose expression yields true produces an insight.
type Rule struct {
	Name    string   `yaml:"name" validate:"required"`
	Kinds   []string `yaml:"kinds" validate:"dive,oneof=class struct enum protocol extension"`
	Expr    string   `yaml:"expr" validate:"required"`
	Message string   `yaml:"message"`
}

// OutputConfig controls where and how output artifacts are generated.
type OutputConfig struct {
	Dir              string `yaml:"dir" validate:"required"`
	MaxOutlineTokens int    `yaml:"max_outline_tokens" validate:"gte=500"`
}

// CacheConfig sizes the shared parse-tree cache.
type CacheConfig struct {
	Capacity int `yaml:"capacity" validate:"gte=1"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Repo: ".",
		Ignore: []string{
			".git/**",
			".build/**",
			"**/.build/**",
			"Pods/**",
			"Carthage/**",
			"DerivedData/**",
			"**/*.generated.swift",
			".swiftdecl/**",
		},
		Explainers: []string{"cycles", "layers", "rules"},
		Renderers:  []string{"outline", "yaml"},
		Output: OutputConfig{
			Dir:              ".swiftdecl",
			MaxOutlineTokens: 4000,
		},
		Cache: CacheConfig{
			Capacity: 1024,
		},
	}
}

// Load reads a configuration file from the given path.
// Missing fields are filled with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Errorf("parsing config %s: %w", path, err)
	}

	// Ensure required defaults
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = ".swiftdecl"
	}
	if cfg.Output.MaxOutlineTokens == 0 {
		cfg.Output.MaxOutlineTokens = 4000
	}
	if cfg.Cache.Capacity == 0 {
		cfg.Cache.Capacity = 1024
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to Default
// otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks the struct constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// IsExplainerEnabled returns true if the named explainer is enabled.
func (c *Config) IsExplainerEnabled(name string) bool {
	return slices.Contains(c.Explainers, name)
}

// IsRendererEnabled returns true if the named renderer is enabled.
func (c *Config) IsRendererEnabled(name string) bool {
	return slices.Contains(c.Renderers, name)
}
