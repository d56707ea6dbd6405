package engine

import (
	"github.com/Mori-kamiyama/nikopoke/internal/data"
	"github.com/Mori-kamiyama/nikopoke/internal/game"
)

// Engine resolves battles against a fixed set of lookup tables. It holds no
// per-battle state; the same Engine can serve any number of battles.
type Engine struct {
	tables *data.Tables
}

// New builds an engine over the given tables.
func New(tables *data.Tables) *Engine {
	return &Engine{tables: tables}
}

// Tables exposes the static data the engine was built with.
func (e *Engine) Tables() *data.Tables {
	return e.tables
}

// NewBattleState assembles the initial state for a battle. Both sides start
// with their first team slot active and an empty history.
func NewBattleState(players ...game.PlayerState) *game.BattleState {
	return &game.BattleState{
		Players: players,
		History: &game.BattleHistory{},
	}
}
