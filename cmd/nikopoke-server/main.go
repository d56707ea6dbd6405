package main

import (
	"os"

	"github.com/gin-gonic/gin"

	"github.com/Mori-kamiyama/nikopoke/internal/api"
	"github.com/Mori-kamiyama/nikopoke/internal/config"
	"github.com/Mori-kamiyama/nikopoke/internal/constants"
	"github.com/Mori-kamiyama/nikopoke/internal/data"
	"github.com/Mori-kamiyama/nikopoke/internal/engine"
	"github.com/Mori-kamiyama/nikopoke/internal/logging"
	"github.com/Mori-kamiyama/nikopoke/internal/storage"
)

func main() {
	// Config is optional: without NIKOPOKE_CONFIG the defaults apply.
	cfg := config.DefaultConfig()
	if configPath := os.Getenv(constants.EnvConfigPath); configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			logging.Fatal("Missing or invalid configuration", err, logging.Fields{"config_path": configPath})
		}
		cfg = loaded
	}

	tables, err := loadTables(cfg)
	if err != nil {
		logging.Fatal("Failed to load battle data tables", err, nil)
	}
	eng := engine.New(tables)

	// Allow the DB path to be configured via NIKOPOKE_DB. Default to a
	// `data/` directory for local development.
	dbPath := os.Getenv(constants.EnvDBPath)
	if dbPath == "" {
		dbPath = "./data/nikopoke.db"
	}
	db, err := storage.OpenAndMigrate(dbPath)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, nil)
	}
	repo := storage.NewSQLiteRepository(db)
	handler := api.NewBattleHandler(repo, eng, cfg)

	if cfg.ActionTimeout > 0 {
		startTimeoutScanner(repo)
	}

	router := gin.Default()
	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		apiRoutes.GET(constants.RouteVersion, api.Version)
		apiRoutes.GET(constants.RouteSpecies, handler.ListSpecies)
		apiRoutes.GET(constants.RouteMoves, handler.ListMoves)
		apiRoutes.GET(constants.RouteBattles, handler.ListBattles)
		apiRoutes.POST(constants.RouteBattles, handler.CreateBattle)
		apiRoutes.GET(constants.RouteBattleByID, handler.GetBattle)
		apiRoutes.POST(constants.RouteBattleAction, handler.SubmitAction)
		apiRoutes.GET(constants.RouteBattleSuggest, handler.SuggestAction)
		apiRoutes.GET(constants.RouteBattleReplay, handler.ReplayBattle)
		apiRoutes.GET(constants.RouteBattleLogStream, handler.StreamBattleLog)
	}

	addr := cfg.ServerAddress
	logging.Info("Server started", logging.Fields{constants.LogFieldAddr: addr})
	if err := router.Run(addr); err != nil {
		logging.Fatal("Failed to start server", err, nil)
	}
}

func loadTables(cfg *config.LoadedConfig) (*data.Tables, error) {
	tables, err := data.LoadDefaultTables()
	if err != nil {
		return nil, err
	}
	if cfg.MovesFile != "" {
		moves, err := data.LoadMovesFile(cfg.MovesFile)
		if err != nil {
			return nil, err
		}
		tables.Moves = moves
	}
	return tables, nil
}
