package service

import (
	"encoding/json"
	"fmt"

	"github.com/Mori-kamiyama/nikopoke/internal/engine"
	"github.com/Mori-kamiyama/nikopoke/internal/game"
	"github.com/Mori-kamiyama/nikopoke/internal/storage"
)

// VerifyReplay re-runs a battle's recorded history from its initial state
// and returns the reproduced final state. A history that no longer
// reproduces the recorded turns surfaces the engine's replay errors.
func VerifyReplay(repo storage.Repository, e *engine.Engine, battleID uint) (*game.BattleState, error) {
	record, err := repo.GetBattleByID(battleID)
	if err != nil {
		return nil, err
	}
	if len(record.InitialStateJSON) == 0 {
		return nil, fmt.Errorf("battle %d: no initial state recorded", record.ID)
	}
	var initial game.BattleState
	if err := json.Unmarshal(record.InitialStateJSON, &initial); err != nil {
		return nil, fmt.Errorf("battle %d: corrupt initial state: %w", record.ID, err)
	}
	history, err := LoadHistory(record)
	if err != nil {
		return nil, err
	}
	return e.ReplayBattle(&initial, history)
}
