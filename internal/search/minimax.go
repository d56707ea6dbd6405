package search

import (
	"math"

	"github.com/Mori-kamiyama/nikopoke/internal/engine"
	"github.com/Mori-kamiyama/nikopoke/internal/game"
)

// searchRNG pins every draw to 0.5: multi-hit counts land on their lower
// median, crits fail, damage rolls sit mid-range and accuracy passes at 50%+.
var searchRNG = engine.FixedRNG(0.5)

var searchStep = engine.StepOptions{RecordHistory: false}

// BestMoveMinimax picks an action by maximin: assume the opponent answers
// each of our candidates with their worst-for-us reply, and take the
// candidate whose worst case is best. Depth counts full turns.
func BestMoveMinimax(e *engine.Engine, state *game.BattleState, playerID string, depth int) *game.Action {
	if depth < 1 {
		depth = 1
	}
	myActions := AvailableActions(e, state, playerID)
	if len(myActions) == 0 {
		return nil
	}
	opp := state.Opponent(playerID)
	if opp == nil {
		a := myActions[0]
		return &a
	}
	oppActions := AvailableActions(e, state, opp.ID)
	if len(oppActions) == 0 {
		a := myActions[0]
		return &a
	}

	var best *game.Action
	bestScore := math.Inf(-1)
	for i := range myActions {
		worst := math.Inf(1)
		for j := range oppActions {
			next := e.StepBattle(state, []game.Action{myActions[i], oppActions[j]}, searchRNG, searchStep)
			score := evaluateAfterTurn(e, next, playerID, depth-1)
			if score < worst {
				worst = score
			}
		}
		if worst > bestScore {
			bestScore = worst
			best = &myActions[i]
		}
	}
	if best == nil {
		return nil
	}
	chosen := *best
	return &chosen
}

func evaluateAfterTurn(e *engine.Engine, state *game.BattleState, playerID string, depth int) float64 {
	if engine.IsBattleOver(state) {
		// Nudge terminal scores by the remaining depth so an immediate win
		// outranks a win found deeper in the tree (and a distant loss
		// outranks an immediate one).
		score := Evaluate(state, playerID)
		switch {
		case score > 0:
			return score + float64(depth)
		case score < 0:
			return score - float64(depth)
		}
		return score
	}
	if depth <= 0 {
		return Evaluate(state, playerID)
	}
	myActions := AvailableActions(e, state, playerID)
	if len(myActions) == 0 {
		return Evaluate(state, playerID)
	}
	opp := state.Opponent(playerID)
	if opp == nil {
		return Evaluate(state, playerID)
	}
	oppActions := AvailableActions(e, state, opp.ID)
	if len(oppActions) == 0 {
		return Evaluate(state, playerID)
	}

	best := math.Inf(-1)
	for i := range myActions {
		worst := math.Inf(1)
		for j := range oppActions {
			next := e.StepBattle(state, []game.Action{myActions[i], oppActions[j]}, searchRNG, searchStep)
			score := evaluateAfterTurn(e, next, playerID, depth-1)
			if score < worst {
				worst = score
			}
		}
		if worst > best {
			best = worst
		}
	}
	return best
}
