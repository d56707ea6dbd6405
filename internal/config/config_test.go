package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nikopoke_config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_Full(t *testing.T) {
	path := writeConfig(t, `{
		"server": {"address": ":9090"},
		"search": {"minimax_depth": 3, "mcts_simulations": 500},
		"action_timeout_seconds": 30
	}`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ServerAddress != ":9090" {
		t.Fatalf("expected :9090, got %s", cfg.ServerAddress)
	}
	if cfg.MinimaxDepth != 3 || cfg.MCTSSimulations != 500 {
		t.Fatalf("search settings not applied: %+v", cfg)
	}
	if cfg.ActionTimeout != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %v", cfg.ActionTimeout)
	}
}

func TestLoadConfig_DefaultsApply(t *testing.T) {
	path := writeConfig(t, `{}`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def := DefaultConfig()
	if cfg.ServerAddress != def.ServerAddress || cfg.MinimaxDepth != def.MinimaxDepth || cfg.MCTSSimulations != def.MCTSSimulations {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := LoadConfig(writeConfig(t, `not json`)); err == nil {
		t.Fatalf("expected error for malformed JSON")
	}
	if _, err := LoadConfig(writeConfig(t, `{"search": {"minimax_depth": -1}}`)); err == nil {
		t.Fatalf("expected error for negative depth")
	}
	if _, err := LoadConfig(writeConfig(t, `{"action_timeout_seconds": -5}`)); err == nil {
		t.Fatalf("expected error for negative timeout")
	}
}
