package storage

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Mori-kamiyama/nikopoke/internal/game"
)

// OpenAndMigrate opens the SQLite database at the given path and keeps the
// schema current via AutoMigrate. The caller owns the returned handle.
func OpenAndMigrate(dataSourceName string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&game.BattleRecord{}); err != nil {
		return nil, err
	}
	return db, nil
}
