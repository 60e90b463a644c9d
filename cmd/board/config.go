package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the board client's connection settings, read from
// ~/.crm-board.yaml with environment variable overrides.
type Config struct {
	ServerURL string `yaml:"server_url"`
	Token     string `yaml:"token"`
}

// LoadConfig reads the board config file. A missing file is fine;
// CRM_SERVER_URL and CRM_TOKEN then apply alone.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerURL: "http://localhost:8090",
	}

	home, err := os.UserHomeDir()
	if err == nil {
		data, err := os.ReadFile(filepath.Join(home, ".crm-board.yaml"))
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse board config: %w", err)
			}
		}
	}

	if url := os.Getenv("CRM_SERVER_URL"); url != "" {
		cfg.ServerURL = url
	}
	if token := os.Getenv("CRM_TOKEN"); token != "" {
		cfg.Token = token
	}

	if cfg.Token == "" {
		return nil, fmt.Errorf("no access token: set CRM_TOKEN or token in ~/.crm-board.yaml")
	}

	return cfg, nil
}
