package client

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the CLI's connection settings and local paths.
type Config struct {
	ServerURL  string `yaml:"server_url"`
	Token      string `yaml:"token"`
	QueuePath  string `yaml:"queue_path"`
	GPSCommand string `yaml:"gps_command,omitempty"`
}

// DefaultConfigPath returns the per-user config location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".fieldtrack", "config.yaml"), nil
}

// LoadConfig reads the config file at path. A missing file yields a config
// with defaults filled in, not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		ServerURL: "http://localhost:8080",
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg.QueuePath = filepath.Join(filepath.Dir(path), "queue.db")
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.QueuePath == "" {
		cfg.QueuePath = filepath.Join(filepath.Dir(path), "queue.db")
	}
	return cfg, nil
}

// SaveConfig writes the config file, creating its directory if needed.
func (c *Config) SaveConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	// Token lives in this file, keep it owner-readable only.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
