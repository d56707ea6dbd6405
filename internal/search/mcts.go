package search

import (
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/Mori-kamiyama/nikopoke/internal/engine"
	"github.com/Mori-kamiyama/nikopoke/internal/game"
)

// BestMoveMCTS scores each legal action by Monte-Carlo playouts: one step
// with the candidate against the opponent's greedy reply, then a greedy
// continuation for both sides under random RNG until the battle ends or the
// turn cap trips. The simulation budget is split evenly across candidates
// and candidates are rolled out in parallel.
func BestMoveMCTS(e *engine.Engine, state *game.BattleState, playerID string, simulations int, seed int64) *game.Action {
	actions := AvailableActions(e, state, playerID)
	if len(actions) == 0 {
		return nil
	}
	opp := state.Opponent(playerID)
	if opp == nil {
		a := actions[0]
		return &a
	}

	playouts := simulations / len(actions)
	if playouts < 1 {
		playouts = 1
	}

	scores := make([]float64, len(actions))
	var g errgroup.Group
	for i := range actions {
		i := i
		g.Go(func() error {
			rng := engine.NewSeededRNG(seed + int64(i))
			total := 0.0
			for p := 0; p < playouts; p++ {
				total += playout(e, state, actions[i], playerID, opp.ID, rng)
			}
			scores[i] = total / float64(playouts)
			return nil
		})
	}
	// Goroutines only write their own slot and never fail.
	_ = g.Wait()

	bestIdx := 0
	bestScore := math.Inf(-1)
	for i, score := range scores {
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	chosen := actions[bestIdx]
	return &chosen
}

// playout resolves one turn with the candidate action and then lets the
// greedy policy drive both sides. Terminal scores are discounted by the
// number of turns played so quicker wins score higher.
func playout(e *engine.Engine, state *game.BattleState, candidate game.Action, playerID, oppID string, rng engine.RNG) float64 {
	turn := []game.Action{candidate}
	if oppAction := rolloutAction(e, state, oppID); oppAction != nil {
		turn = append(turn, *oppAction)
	}
	sim := e.StepBattle(state, turn, rng, engine.StepOptions{})

	turns := 1
	for ; !engine.IsBattleOver(sim) && turns < autoBattleTurnCap; turns++ {
		var actions []game.Action
		for i := range sim.Players {
			if action := rolloutAction(e, sim, sim.Players[i].ID); action != nil {
				actions = append(actions, *action)
			}
		}
		if len(actions) == 0 {
			break
		}
		sim = e.StepBattle(sim, actions, rng, engine.StepOptions{})
	}
	score := Evaluate(sim, playerID)
	switch {
	case score > 0:
		return score - float64(turns)
	case score < 0:
		return score + float64(turns)
	}
	return score
}

// rolloutAction prefers the greedy move and falls back to the first legal
// action (a forced switch, usually).
func rolloutAction(e *engine.Engine, state *game.BattleState, playerID string) *game.Action {
	if !needsSwitch(state, playerID) {
		if action := ChooseHighestPower(e, state, playerID); action != nil {
			return action
		}
	}
	actions := AvailableActions(e, state, playerID)
	if len(actions) == 0 {
		return nil
	}
	a := actions[0]
	return &a
}
