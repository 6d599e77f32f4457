package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"frameworks/api_tunnels/internal/config"
)

// DefaultConfigPath returns ~/.bosun/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".bosun", "config.yaml"), nil
}

// LoadConfig reads the environment, then overlays the YAML file at path.
// A missing file is only an error when the caller named it explicitly.
func LoadConfig(path string, explicit bool) (config.BosunConfig, error) {
	cfg := config.FromEnv()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
