// Package config loads the optional insdckit JSON configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// DefaultPath is read when no -config flag is given. A missing default file
// is not an error.
const DefaultPath = "insdckit.json"

type Config struct {
	LogFile    string `json:"log_file"`
	LogLevel   string `json:"log_level"`
	Workers    int    `json:"workers"`
	NoProgress bool   `json:"no_progress"`
	NCBI       NCBI   `json:"ncbi"`
}

// NCBI configures the E-utilities client.
type NCBI struct {
	APIKey     string `json:"api_key"`
	Email      string `json:"email"`
	Tool       string `json:"tool"`
	BaseURL    string `json:"base_url"`
	TimeoutSec int    `json:"timeout_seconds"`
	MaxRetries int    `json:"max_retries"`
	BatchSize  int    `json:"batch_size"`
}

func defaults() *Config {
	return &Config{
		LogLevel: "info",
		NCBI: NCBI{
			Tool:       "insdckit",
			TimeoutSec: 60,
			MaxRetries: 3,
			BatchSize:  200,
		},
	}
}

// Load reads the JSON config at path over the defaults. With an empty path
// DefaultPath is tried and silently skipped when absent. NCBI_API_KEY fills
// in a missing API key.
func Load(path string) (*Config, error) {
	c := defaults()
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer func() { _ = f.Close() }()
		if err := json.NewDecoder(f).Decode(c); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("open config: %w", err)
	}
	if c.NCBI.APIKey == "" {
		c.NCBI.APIKey = os.Getenv("NCBI_API_KEY")
	}
	return c, nil
}
