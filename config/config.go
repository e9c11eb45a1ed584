// Package config provides simulation configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// SimConfig holds the tunable parameters of a simulation run.
type SimConfig struct {
	// MemoryWords is the data-memory size in words.
	// Default: 256.
	MemoryWords int `json:"memory_words"`

	// MaxCycles bounds a run as a runaway guard; 0 means no limit.
	// Default: 1000000.
	MaxCycles uint64 `json:"max_cycles"`

	// Trace enables per-cycle pipeline state output.
	// Default: false.
	Trace bool `json:"trace"`
}

// DefaultSimConfig returns a SimConfig with default values.
func DefaultSimConfig() *SimConfig {
	return &SimConfig{
		MemoryWords: 256,
		MaxCycles:   1000000,
		Trace:       false,
	}
}

// LoadConfig loads a SimConfig from a JSON file. Fields absent from the
// file keep their defaults.
func LoadConfig(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sim config file: %w", err)
	}

	config := DefaultSimConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse sim config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig writes a SimConfig to a JSON file.
func (c *SimConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize sim config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write sim config file: %w", err)
	}

	return nil
}

// Validate checks the configuration values.
func (c *SimConfig) Validate() error {
	if c.MemoryWords <= 0 {
		return fmt.Errorf("memory_words must be > 0")
	}
	return nil
}
