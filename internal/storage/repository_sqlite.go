package storage

import (
	"time"

	"gorm.io/gorm"

	"github.com/Mori-kamiyama/nikopoke/internal/game"
)

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) CreateBattle(b *game.BattleRecord) error {
	return r.db.Create(b).Error
}

func (r *sqliteRepository) GetBattleByID(id uint) (*game.BattleRecord, error) {
	var b game.BattleRecord
	if err := r.db.First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *sqliteRepository) UpdateBattle(b *game.BattleRecord) error {
	return r.db.Save(b).Error
}

func (r *sqliteRepository) ListBattles(limit int) ([]game.BattleRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var battles []game.BattleRecord
	err := r.db.Order("updated_at desc").Limit(limit).Find(&battles).Error
	return battles, err
}

func (r *sqliteRepository) ListBattlesByPlayer(playerID string, limit int) ([]game.BattleRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var battles []game.BattleRecord
	err := r.db.
		Where("player_one_id = ? OR player_two_id = ?", playerID, playerID).
		Order("updated_at desc").Limit(limit).Find(&battles).Error
	return battles, err
}

func (r *sqliteRepository) FindTimedOutBattles(now time.Time) ([]game.BattleRecord, error) {
	var battles []game.BattleRecord
	err := r.db.
		Where("status = ? AND action_deadline > ? AND action_deadline <= ?",
			game.BattleInProgress, time.Time{}, now).
		Find(&battles).Error
	return battles, err
}
