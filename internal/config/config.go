package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type rawConfig struct {
	Server *struct {
		Address string `json:"address"`
	} `json:"server"`
	Search *struct {
		MinimaxDepth    int `json:"minimax_depth"`
		MCTSSimulations int `json:"mcts_simulations"`
	} `json:"search"`
	// Seconds a player has to submit an action before the battle is
	// forfeited for inactivity. Zero disables the deadline.
	ActionTimeoutSeconds int `json:"action_timeout_seconds"`
	// Optional overrides for the embedded data files.
	MovesFile string `json:"moves_file"`
}

// LoadedConfig contains the server address to bind to and tuning knobs for
// the AI endpoints.
type LoadedConfig struct {
	ServerAddress   string
	MinimaxDepth    int
	MCTSSimulations int
	ActionTimeout   time.Duration
	MovesFile       string
}

// LoadConfig reads the configuration file at path. A missing file is an
// error; callers that want defaults should pass DefaultConfig() instead.
func LoadConfig(path string) (*LoadedConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var rc rawConfig
	if err := json.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if rc.Server != nil && rc.Server.Address != "" {
		cfg.ServerAddress = rc.Server.Address
	}
	if rc.Search != nil {
		if rc.Search.MinimaxDepth != 0 {
			cfg.MinimaxDepth = rc.Search.MinimaxDepth
		}
		if rc.Search.MCTSSimulations != 0 {
			cfg.MCTSSimulations = rc.Search.MCTSSimulations
		}
	}
	if rc.ActionTimeoutSeconds < 0 {
		return nil, fmt.Errorf("config file %s: action_timeout_seconds must not be negative", path)
	}
	if rc.ActionTimeoutSeconds > 0 {
		cfg.ActionTimeout = time.Duration(rc.ActionTimeoutSeconds) * time.Second
	}
	if cfg.MinimaxDepth < 1 {
		return nil, fmt.Errorf("config file %s: search.minimax_depth must be at least 1", path)
	}
	if cfg.MCTSSimulations < 1 {
		return nil, fmt.Errorf("config file %s: search.mcts_simulations must be at least 1", path)
	}
	cfg.MovesFile = rc.MovesFile
	return cfg, nil
}

// DefaultConfig returns the configuration used when no config file is
// provided.
func DefaultConfig() *LoadedConfig {
	return &LoadedConfig{
		ServerAddress:   ":8080",
		MinimaxDepth:    2,
		MCTSSimulations: 200,
		ActionTimeout:   0,
	}
}
