package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"starklings/scarb"

	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no configuration file is given explicitly.
const DefaultFile = "starklings.yaml"

type Config struct {
	InfoFile string        `yaml:"info_file"`
	LogLevel string        `yaml:"log_level"`
	Backend  BackendConfig `yaml:"backend"`
	Tutor    TutorConfig   `yaml:"tutor"`
}

type BackendConfig struct {
	Dir      string         `yaml:"dir"`
	Commands scarb.Commands `yaml:"commands"`
}

type TutorConfig struct {
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	MaxRounds int    `yaml:"max_rounds"`
}

func (c TutorConfig) APIKey() string {
	return os.Getenv(c.APIKeyEnv)
}

func Default() Config {
	return Config{
		InfoFile: "info.yaml",
		LogLevel: "info",
		Backend: BackendConfig{
			Commands: scarb.DefaultCommands,
		},
		Tutor: TutorConfig{
			BaseURL:   "https://api.minimaxi.com/v1",
			Model:     "MiniMax-M2.5",
			APIKeyEnv: "MINIMAX_API_KEY",
			MaxRounds: 8,
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// A missing DefaultFile is not an error, any other missing file is.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if v := os.Getenv("STARKLINGS_INFO"); v != "" {
		cfg.InfoFile = v
	}
	if v := os.Getenv("STARKLINGS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return cfg, nil
}
