package service

import (
	"fmt"
	"time"

	"github.com/Mori-kamiyama/nikopoke/internal/game"
	"github.com/Mori-kamiyama/nikopoke/internal/storage"
)

// HandleTimedOutBattle forfeits a battle whose action deadline passed. A
// player who submitted in time wins by default; when neither (or both,
// which cannot happen with an armed deadline) submitted, nobody wins.
func HandleTimedOutBattle(repo storage.Repository, record *game.BattleRecord) error {
	if record.Status != game.BattleInProgress {
		return nil
	}
	pending, err := loadPendingActions(record)
	if err != nil {
		return err
	}

	winner := ""
	switch {
	case hasPendingFrom(pending, record.PlayerOneID):
		winner = record.PlayerOneID
	case hasPendingFrom(pending, record.PlayerTwoID):
		winner = record.PlayerTwoID
	}

	state, err := LoadState(record)
	if err != nil {
		return err
	}
	if winner != "" {
		state.Log = append(state.Log, fmt.Sprintf("%s won: the opponent did not act in time.", playerName(record, winner)))
	} else {
		state.Log = append(state.Log, "The battle ended: neither player acted in time.")
	}

	record.Status = game.BattleFinished
	record.Winner = winner
	record.PendingActionsJSON = nil
	record.ActionDeadline = time.Time{}
	if err := saveState(record, state); err != nil {
		return err
	}
	// saveState only finishes decided battles; keep the forfeit outcome.
	record.Status = game.BattleFinished
	record.Winner = winner
	return repo.UpdateBattle(record)
}

func hasPendingFrom(pending []game.Action, playerID string) bool {
	for i := range pending {
		if pending[i].PlayerID == playerID {
			return true
		}
	}
	return false
}

func playerName(record *game.BattleRecord, playerID string) string {
	switch playerID {
	case record.PlayerOneID:
		if record.PlayerOneName != "" {
			return record.PlayerOneName
		}
	case record.PlayerTwoID:
		if record.PlayerTwoName != "" {
			return record.PlayerTwoName
		}
	}
	return playerID
}
