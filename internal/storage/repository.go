package storage

import (
	"time"

	"github.com/Mori-kamiyama/nikopoke/internal/game"
)

type Repository interface {
	CreateBattle(b *game.BattleRecord) error
	GetBattleByID(id uint) (*game.BattleRecord, error)
	UpdateBattle(b *game.BattleRecord) error
	// ListBattles returns the most recent battles, newest first.
	ListBattles(limit int) ([]game.BattleRecord, error)
	// ListBattlesByPlayer returns battles where the player sat on either
	// side, newest first.
	ListBattlesByPlayer(playerID string, limit int) ([]game.BattleRecord, error)
	// FindTimedOutBattles returns in-progress battles whose action deadline
	// is armed and at or before the provided time. The caller decides how
	// to resolve them (forfeit for inactivity, usually).
	FindTimedOutBattles(now time.Time) ([]game.BattleRecord, error)
}
