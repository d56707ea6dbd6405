package search

import (
	"github.com/Mori-kamiyama/nikopoke/internal/engine"
	"github.com/Mori-kamiyama/nikopoke/internal/game"
)

// autoBattleTurnCap bounds greedy playouts; a battle that drags past this is
// called off as-is.
const autoBattleTurnCap = 100

// Chooser picks one action for a player, or nil when the player cannot act.
type Chooser func(e *engine.Engine, state *game.BattleState, playerID string) *game.Action

// ChooseHighestPower is the greedy baseline: the known move with PP left and
// the highest base power, ignoring accuracy and matchups. Returns nil when
// every move is exhausted.
func ChooseHighestPower(e *engine.Engine, state *game.BattleState, playerID string) *game.Action {
	player := state.Player(playerID)
	active := state.Active(playerID)
	if player == nil || active == nil || active.HP <= 0 || len(active.Moves) == 0 {
		return nil
	}
	targetID := ""
	if opp := state.Opponent(playerID); opp != nil {
		targetID = opp.ID
	}

	bestID := ""
	bestPower := -1
	for _, moveID := range active.Moves {
		move := e.Tables().Moves.Get(moveID)
		if move == nil {
			continue
		}
		if move.PP != nil {
			remaining, tracked := active.MovePP[moveID]
			if !tracked {
				remaining = *move.PP
			}
			if remaining <= 0 {
				continue
			}
		}
		if move.Power > bestPower {
			bestPower = move.Power
			bestID = moveID
		}
	}
	if bestID == "" {
		return nil
	}
	action := game.MoveAction(playerID, bestID, targetID)
	return &action
}

// RunAutoBattle plays both sides with the chooser until one side loses or
// the turn cap is hit, and returns the final state.
func RunAutoBattle(e *engine.Engine, state *game.BattleState, rng engine.RNG, choose Chooser) *game.BattleState {
	next := state.Clone()
	for turns := 0; !engine.IsBattleOver(next) && turns < autoBattleTurnCap; turns++ {
		var actions []game.Action
		for i := range next.Players {
			if action := choose(e, next, next.Players[i].ID); action != nil {
				actions = append(actions, *action)
			}
		}
		if len(actions) == 0 {
			break
		}
		next = e.StepBattle(next, actions, rng, engine.DefaultStepOptions())
	}
	return next
}
