package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"starklings/config"
	"starklings/scarb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "starklings.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
info_file: exercises/info.yaml
backend:
  commands:
    test: scarb cairo-test
tutor:
  model: gpt-4o-mini
`), 0644))

		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "exercises/info.yaml", cfg.InfoFile)
		assert.Equal(t, "scarb cairo-test", cfg.Backend.Commands.Test)
		assert.Equal(t, scarb.DefaultCommands.Build, cfg.Backend.Commands.Build)
		assert.Equal(t, "gpt-4o-mini", cfg.Tutor.Model)
		assert.Equal(t, "MINIMAX_API_KEY", cfg.Tutor.APIKeyEnv)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("STARKLINGS_INFO", "other.yaml")
		t.Setenv("STARKLINGS_LOG_LEVEL", "warn")
		t.Chdir(t.TempDir())

		cfg, err := config.Load("")
		require.NoError(t, err)
		assert.Equal(t, "other.yaml", cfg.InfoFile)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "starklings.yaml")
		require.NoError(t, os.WriteFile(path, []byte("backend: [1, 2"), 0644))
		_, err := config.Load(path)
		assert.Error(t, err)
	})

	t.Run("api key from env", func(t *testing.T) {
		t.Setenv("TUTOR_KEY", "secret")
		tutor := config.TutorConfig{APIKeyEnv: "TUTOR_KEY"}
		assert.Equal(t, "secret", tutor.APIKey())
	})
}
