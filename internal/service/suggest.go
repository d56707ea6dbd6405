package service

import (
	"errors"
	"fmt"

	"github.com/Mori-kamiyama/nikopoke/internal/dedupe"
	"github.com/Mori-kamiyama/nikopoke/internal/engine"
	"github.com/Mori-kamiyama/nikopoke/internal/game"
	"github.com/Mori-kamiyama/nikopoke/internal/search"
	"github.com/Mori-kamiyama/nikopoke/internal/storage"
)

// ErrNoLegalAction is returned when the search finds nothing to suggest
// (a wiped-out side, usually).
var ErrNoLegalAction = errors.New("no legal action to suggest")

// SuggestOptions selects the search backend and its budget.
type SuggestOptions struct {
	// UseMCTS switches from minimax to Monte-Carlo playouts.
	UseMCTS         bool
	MinimaxDepth    int
	MCTSSimulations int
	// Seed drives the MCTS playout RNG; minimax ignores it.
	Seed int64
}

// SuggestAction runs the configured search for the given player and returns
// the recommended action. Concurrent requests for the same position share
// one search run via singleflight.
func SuggestAction(repo storage.Repository, e *engine.Engine, battleID uint, playerID string, opts SuggestOptions) (*game.Action, error) {
	record, err := repo.GetBattleByID(battleID)
	if err != nil {
		return nil, err
	}
	if record.Status != game.BattleInProgress {
		return nil, ErrBattleNotInProgress
	}
	if !playerInBattle(record, playerID) {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotInBattle, playerID)
	}
	state, err := LoadState(record)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%d:%s:%d", battleID, playerID, state.Turn)
	v, err, _ := dedupe.SuggestGroup.Do(key, func() (interface{}, error) {
		var action *game.Action
		if opts.UseMCTS {
			action = search.BestMoveMCTS(e, state, playerID, opts.MCTSSimulations, opts.Seed)
		} else {
			action = search.BestMoveMinimax(e, state, playerID, opts.MinimaxDepth)
		}
		if action == nil {
			return nil, ErrNoLegalAction
		}
		return action, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*game.Action), nil
}
