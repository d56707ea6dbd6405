package api

import (
	"github.com/Mori-kamiyama/nikopoke/internal/config"
	"github.com/Mori-kamiyama/nikopoke/internal/engine"
	"github.com/Mori-kamiyama/nikopoke/internal/storage"
)

// BattleHandler groups all battle-related HTTP handlers.
type BattleHandler struct {
	repo   storage.Repository
	engine *engine.Engine
	cfg    *config.LoadedConfig
}

// NewBattleHandler creates a new BattleHandler with the given repository,
// engine and loaded configuration.
func NewBattleHandler(repo storage.Repository, e *engine.Engine, cfg *config.LoadedConfig) *BattleHandler {
	return &BattleHandler{repo: repo, engine: e, cfg: cfg}
}
