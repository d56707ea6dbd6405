package search

import (
	"github.com/Mori-kamiyama/nikopoke/internal/engine"
	"github.com/Mori-kamiyama/nikopoke/internal/game"
)

// Terminal scores.
const (
	scoreWin  = 10000.0
	scoreLoss = -10000.0
	scoreDraw = -5000.0
)

// Evaluate scores the state from playerID's perspective. Terminal states
// collapse to the win/loss/draw constants; otherwise each side's living
// creatures contribute HP fraction, a survival bonus, stage momentum and a
// penalty per primary status.
func Evaluate(state *game.BattleState, playerID string) float64 {
	mine := sideAlive(state, playerID)
	theirs := false
	for i := range state.Players {
		if state.Players[i].ID != playerID && sideAlive(state, state.Players[i].ID) {
			theirs = true
		}
	}
	switch {
	case mine && !theirs:
		return scoreWin
	case !mine && theirs:
		return scoreLoss
	case !mine && !theirs:
		return scoreDraw
	}

	score := 0.0
	for i := range state.Players {
		side := sideScore(&state.Players[i])
		if state.Players[i].ID == playerID {
			score += side
		} else {
			score -= side
		}
	}
	return score
}

func sideScore(player *game.PlayerState) float64 {
	total := 0.0
	for i := range player.Team {
		c := &player.Team[i]
		if c.HP <= 0 {
			continue
		}
		total += 100.0*float64(c.HP)/float64(c.MaxHP) + 50.0
		total += 10.0 * float64(engine.StageSum(c.Stages))
		for j := range c.Statuses {
			if engine.IsPrimaryStatus(c.Statuses[j].ID) {
				total -= 20.0
			}
		}
	}
	return total
}

func sideAlive(state *game.BattleState, playerID string) bool {
	player := state.Player(playerID)
	if player == nil {
		return false
	}
	for i := range player.Team {
		if player.Team[i].HP > 0 {
			return true
		}
	}
	return false
}
