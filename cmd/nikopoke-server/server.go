package main

import (
	"time"

	"github.com/Mori-kamiyama/nikopoke/internal/constants"
	"github.com/Mori-kamiyama/nikopoke/internal/logging"
	"github.com/Mori-kamiyama/nikopoke/internal/service"
	"github.com/Mori-kamiyama/nikopoke/internal/storage"
)

// startTimeoutScanner periodically forfeits battles whose action deadline
// has passed. Expired battles are finished via service.HandleTimedOutBattle.
func startTimeoutScanner(repo storage.Repository) {
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			battles, err := repo.FindTimedOutBattles(time.Now())
			if err != nil {
				logging.Error("timeout scanner failed", err, nil)
				continue
			}
			for i := range battles {
				record, err := repo.GetBattleByID(battles[i].ID)
				if err != nil {
					continue
				}
				if err := service.HandleTimedOutBattle(repo, record); err != nil {
					logging.Error("failed to expire battle", err, logging.Fields{constants.LogFieldBattleID: record.ID})
				}
			}
		}
	}()
}
