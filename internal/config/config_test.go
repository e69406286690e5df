package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kittclouds/shotkit/pkg/emotion"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, ProviderNone, cfg.Provider)
	assert.Equal(t, 20*time.Second, cfg.CollaboratorTimeout)
	assert.False(t, cfg.Debug)

	gen, err := cfg.Generator(context.Background())
	require.NoError(t, err)
	assert.Nil(t, gen)
}

func TestLoadProvider(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"SHOTKIT_PROVIDER":             " OpenAI ",
		"SHOTKIT_API_KEY":              "sk-test",
		"SHOTKIT_MODEL":                "gpt-4o",
		"SHOTKIT_COLLABORATOR_TIMEOUT": "5s",
		"SHOTKIT_DEBUG":                "true",
	})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, 5*time.Second, cfg.CollaboratorTimeout)
	assert.True(t, cfg.Debug)

	gen, err := cfg.Generator(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, gen)

	opts, err := cfg.EngineOptions(context.Background(), zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, opts, 4)
}

func TestLoadErrors(t *testing.T) {
	_, err := LoadFrom(map[string]string{"SHOTKIT_PROVIDER": "claude"})
	assert.ErrorIs(t, err, ErrUnknownProvider)

	_, err = LoadFrom(map[string]string{"SHOTKIT_PROVIDER": "gemini"})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = LoadFrom(map[string]string{"SHOTKIT_COLLABORATOR_TIMEOUT": "soon"})
	assert.Error(t, err)
}

func TestTableOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("intensities:\n  dread: 0.9\n"), 0o644))

	table, err := Config{Lexicon: path}.Table()
	require.NoError(t, err)
	assert.Equal(t, 0.9, table.IntensityOf("dread"))

	table, err = Config{}.Table()
	require.NoError(t, err)
	assert.Same(t, emotion.Default(), table)

	_, err = Config{Lexicon: filepath.Join(t.TempDir(), "missing.yaml")}.Table()
	assert.Error(t, err)
}

func TestLogger(t *testing.T) {
	log, err := Config{Debug: true}.Logger()
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))

	log, err = Config{}.Logger()
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.DebugLevel))
}
