package search

import (
	"github.com/Mori-kamiyama/nikopoke/internal/engine"
	"github.com/Mori-kamiyama/nikopoke/internal/game"
)

// AvailableActions enumerates the legal actions for a player: every known
// move with PP left, plus every switch to a living benched creature. A
// fainted or pending-switch active restricts the set to switches.
func AvailableActions(e *engine.Engine, state *game.BattleState, playerID string) []game.Action {
	player := state.Player(playerID)
	if player == nil {
		return nil
	}

	var switches []game.Action
	for i := range player.Team {
		if i != player.ActiveSlot && player.Team[i].HP > 0 {
			switches = append(switches, game.SwitchAction(playerID, i))
		}
	}

	if needsSwitch(state, playerID) {
		return switches
	}
	active := state.Active(playerID)
	if active == nil || active.HP <= 0 {
		return switches
	}

	targetID := ""
	if opp := state.Opponent(playerID); opp != nil {
		targetID = opp.ID
	}

	var actions []game.Action
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
		actions = append(actions, game.MoveAction(playerID, moveID, targetID))
	}
	if len(actions) == 0 {
		return switches
	}
	return append(actions, switches...)
}

func needsSwitch(state *game.BattleState, playerID string) bool {
	active := state.Active(playerID)
	if active == nil || active.HP <= 0 {
		return true
	}
	return active.HasStatus("pending_switch")
}
