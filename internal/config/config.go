// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config is the repository configuration record, written once at init
// and kept inside the repository directory.
type Config struct {
	Version  string    `json:"version"`
	Created  time.Time `json:"created"`
	LogLevel string    `json:"log_level"` // debug, info, warn, error
}

func Default() *Config {
	return &Config{
		Version:  "1",
		Created:  time.Now().UTC(),
		LogLevel: "warn",
	}
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &config, nil
}

func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
