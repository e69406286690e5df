// Package config loads shotkit settings from the environment.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	"github.com/kittclouds/shotkit/internal/collaborator"
	"github.com/kittclouds/shotkit/pkg/decompose"
	"github.com/kittclouds/shotkit/pkg/emotion"
)

// Provider selects the collaborator backend
type Provider string

const (
	ProviderNone   Provider = "none"
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// ErrUnknownProvider is returned for an unsupported SHOTKIT_PROVIDER
var ErrUnknownProvider = errors.New("config: unknown provider")

// ErrMissingAPIKey is returned when a provider is set without a key
var ErrMissingAPIKey = errors.New("config: SHOTKIT_API_KEY is required for the selected provider")

// Config is read once at startup.
type Config struct {
	Provider            Provider      `env:"SHOTKIT_PROVIDER"             envDefault:"none"`
	Model               string        `env:"SHOTKIT_MODEL"`
	APIKey              string        `env:"SHOTKIT_API_KEY"`
	CollaboratorTimeout time.Duration `env:"SHOTKIT_COLLABORATOR_TIMEOUT" envDefault:"20s"`
	Lexicon             string        `env:"SHOTKIT_LEXICON"`
	Debug               bool          `env:"SHOTKIT_DEBUG"`
}

// Load parses the process environment
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Provider = Provider(strings.ToLower(strings.TrimSpace(string(cfg.Provider))))
	if cfg.Provider == "" {
		cfg.Provider = ProviderNone
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks provider settings
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderNone:
		return nil
	case ProviderGemini, ProviderOpenAI:
		if c.APIKey == "" {
			return fmt.Errorf("%w (%s)", ErrMissingAPIKey, c.Provider)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}
}

// Generator builds the configured collaborator, nil for ProviderNone
func (c Config) Generator(ctx context.Context) (collaborator.Generator, error) {
	switch c.Provider {
	case ProviderGemini:
		return collaborator.NewGemini(ctx, c.APIKey, c.Model)
	case ProviderOpenAI:
		return collaborator.NewOpenAI(c.APIKey, c.Model)
	case ProviderNone, "":
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
}

// Table loads the lexicon overlay, or the built-in table when none is set
func (c Config) Table() (*emotion.Table, error) {
	if c.Lexicon == "" {
		return emotion.Default(), nil
	}
	f, err := os.Open(c.Lexicon)
	if err != nil {
		return nil, fmt.Errorf("config: open lexicon: %w", err)
	}
	defer f.Close()
	return emotion.Load(f)
}

// Logger builds a production logger, at debug level when Debug is set
func (c Config) Logger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Debug {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zc.Build()
}

// EngineOptions turns the config into decompose options
func (c Config) EngineOptions(ctx context.Context, log *zap.Logger) ([]decompose.Option, error) {
	table, err := c.Table()
	if err != nil {
		return nil, err
	}
	opts := []decompose.Option{
		decompose.WithTable(table),
		decompose.WithTimeout(c.CollaboratorTimeout),
		decompose.WithLogger(log),
	}

	gen, err := c.Generator(ctx)
	if err != nil {
		return nil, err
	}
	if gen != nil {
		opts = append(opts, decompose.WithCollaborator(gen))
	}
	return opts, nil
}
