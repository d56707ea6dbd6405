package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Mori-kamiyama/nikopoke/internal/engine"
	"github.com/Mori-kamiyama/nikopoke/internal/game"
	"github.com/Mori-kamiyama/nikopoke/internal/storage"
)

// newTurnRNG seeds the RNG used to resolve one turn. Overridable in tests;
// the drawn values land in the history either way, so replay never depends
// on the seed.
var newTurnRNG = func() engine.RNG {
	return engine.NewSeededRNG(time.Now().UnixNano())
}

// SubmitAction validates and buffers one player's action. When both sides
// have acted the turn resolves immediately. The returned bool reports
// whether the turn resolved; the state is the post-submit (possibly
// post-resolution) snapshot.
func SubmitAction(repo storage.Repository, e *engine.Engine, battleID uint, action game.Action, actionTimeout time.Duration) (*game.BattleState, bool, error) {
	record, err := repo.GetBattleByID(battleID)
	if err != nil {
		return nil, false, err
	}
	if record.Status != game.BattleInProgress {
		return nil, false, ErrBattleNotInProgress
	}
	if !playerInBattle(record, action.PlayerID) {
		return nil, false, fmt.Errorf("%w: %s", ErrPlayerNotInBattle, action.PlayerID)
	}

	state, err := LoadState(record)
	if err != nil {
		return nil, false, err
	}
	pending, err := loadPendingActions(record)
	if err != nil {
		return nil, false, err
	}
	for i := range pending {
		if pending[i].PlayerID == action.PlayerID {
			return nil, false, game.ErrActionNotNeeded
		}
	}
	if err := ValidateAction(e, state, action); err != nil {
		return nil, false, err
	}

	pending = append(pending, action.Clone())
	if len(pending) < len(state.Players) {
		if err := savePendingActions(record, pending); err != nil {
			return nil, false, err
		}
		return state, false, repo.UpdateBattle(record)
	}

	// Both sides acted: resolve the turn and reset the buffer.
	next := e.StepBattle(state, pending, newTurnRNG(), engine.DefaultStepOptions())
	record.PendingActionsJSON = nil
	if err := saveState(record, next); err != nil {
		return nil, false, err
	}
	if record.Status == game.BattleInProgress && actionTimeout > 0 {
		record.ActionDeadline = time.Now().Add(actionTimeout)
	}
	if err := repo.UpdateBattle(record); err != nil {
		return nil, false, err
	}
	return next, true, nil
}

// ValidateAction checks an action against the current state without mutating
// it. Errors are the game-level sentinels so callers can classify them.
func ValidateAction(e *engine.Engine, state *game.BattleState, action game.Action) error {
	player := state.Player(action.PlayerID)
	if player == nil {
		return fmt.Errorf("%w: %s", ErrPlayerNotInBattle, action.PlayerID)
	}
	active := state.Active(action.PlayerID)
	mustSwitch := active == nil || active.HP <= 0 || active.HasStatus("pending_switch")
	if mustSwitch && action.Type != game.ActionSwitch {
		for i := range player.Team {
			if i != player.ActiveSlot && player.Team[i].HP > 0 {
				return game.ErrMustSwitch
			}
		}
		return game.ErrNoSwitchAvailable
	}

	switch action.Type {
	case game.ActionSwitch:
		if action.Slot == nil || *action.Slot < 0 || *action.Slot >= len(player.Team) {
			return game.ErrInvalidSwitchTarget
		}
		if *action.Slot == player.ActiveSlot {
			return game.ErrInvalidSwitchTarget
		}
		if player.Team[*action.Slot].HP <= 0 {
			return game.ErrInvalidSwitchTarget
		}
	case game.ActionMove:
		known := false
		for _, id := range active.Moves {
			if id == action.MoveID {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%w: %s", game.ErrMoveNotKnown, action.MoveID)
		}
		move := e.Tables().Moves.Get(action.MoveID)
		if move == nil {
			return fmt.Errorf("%w: %s", game.ErrMoveNotKnown, action.MoveID)
		}
		if move.PP != nil {
			remaining, tracked := active.MovePP[action.MoveID]
			if !tracked {
				remaining = *move.PP
			}
			if remaining <= 0 {
				return fmt.Errorf("%w: %s", game.ErrNoPp, action.MoveID)
			}
		}
	case game.ActionUseItem:
		if active == nil || !engine.HasHeldItem(active) {
			return game.ErrItemNotUsable
		}
	case game.ActionWait:
		// always legal
	default:
		return fmt.Errorf("unknown action type %q", action.Type)
	}
	return nil
}

func loadPendingActions(record *game.BattleRecord) ([]game.Action, error) {
	if len(record.PendingActionsJSON) == 0 {
		return nil, nil
	}
	var pending []game.Action
	if err := json.Unmarshal(record.PendingActionsJSON, &pending); err != nil {
		return nil, fmt.Errorf("battle %d: corrupt pending actions: %w", record.ID, err)
	}
	return pending, nil
}

func savePendingActions(record *game.BattleRecord, pending []game.Action) error {
	b, err := json.Marshal(pending)
	if err != nil {
		return err
	}
	record.PendingActionsJSON = b
	return nil
}
