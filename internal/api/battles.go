package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Mori-kamiyama/nikopoke/internal/constants"
	"github.com/Mori-kamiyama/nikopoke/internal/game"
	"github.com/Mori-kamiyama/nikopoke/internal/logging"
	"github.com/Mori-kamiyama/nikopoke/internal/service"
)

type CreateBattleRequest struct {
	PlayerOne service.PlayerSpec `json:"player_one"`
	PlayerTwo service.PlayerSpec `json:"player_two"`
}

// CreateBattle builds both teams, persists a new battle and returns the
// record ID plus the initial state.
func (h *BattleHandler) CreateBattle(c *gin.Context) {
	var req CreateBattleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequestBody})
		return
	}
	record, state, err := service.CreateBattle(h.repo, h.engine, req.PlayerOne, req.PlayerTwo, h.cfg.ActionTimeout)
	if err != nil {
		if isTeamError(err) {
			c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: err.Error()})
			return
		}
		logging.Error("failed to create battle", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: "Failed to create battle"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"battle_id": record.ID,
		"state":     state,
	})
}

// GetBattle returns a battle record with its decoded state.
func (h *BattleHandler) GetBattle(c *gin.Context) {
	record, ok := h.loadBattle(c)
	if !ok {
		return
	}
	state, err := service.LoadState(record)
	if err != nil {
		logging.Error("failed to decode battle state", err, logging.Fields{constants.LogFieldBattleID: record.ID})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: "Failed to load battle"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"battle": record,
		"state":  state,
	})
}

// ListBattles returns recent battles, optionally filtered by player.
func (h *BattleHandler) ListBattles(c *gin.Context) {
	limit := 20
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	var (
		battles []game.BattleRecord
		err     error
	)
	if playerID := c.Query("player_id"); playerID != "" {
		battles, err = h.repo.ListBattlesByPlayer(playerID, limit)
	} else {
		battles, err = h.repo.ListBattles(limit)
	}
	if err != nil {
		logging.Error("failed to list battles", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: "Failed to list battles"})
		return
	}
	c.JSON(http.StatusOK, battles)
}

// SubmitAction stores one player's action; the turn resolves once both
// players have acted.
func (h *BattleHandler) SubmitAction(c *gin.Context) {
	id, ok := battleID(c)
	if !ok {
		return
	}
	var action game.Action
	if err := c.ShouldBindJSON(&action); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequestBody})
		return
	}
	state, resolved, err := service.SubmitAction(h.repo, h.engine, id, action, h.cfg.ActionTimeout)
	if err != nil {
		h.writeActionError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"resolved": resolved,
		"state":    state,
	})
}

// SuggestAction runs the configured search and returns the recommended
// action for the player.
func (h *BattleHandler) SuggestAction(c *gin.Context) {
	id, ok := battleID(c)
	if !ok {
		return
	}
	playerID := c.Query("player_id")
	if playerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: "player_id is required"})
		return
	}
	opts := service.SuggestOptions{
		UseMCTS:         c.Query("mode") == "mcts",
		MinimaxDepth:    h.cfg.MinimaxDepth,
		MCTSSimulations: h.cfg.MCTSSimulations,
		Seed:            int64(id)<<16 + int64(len(playerID)),
	}
	action, err := service.SuggestAction(h.repo, h.engine, id, playerID, opts)
	if err != nil {
		h.writeActionError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"action": action})
}

// ReplayBattle re-runs the recorded history from the initial state and
// returns the reproduced final state.
func (h *BattleHandler) ReplayBattle(c *gin.Context) {
	id, ok := battleID(c)
	if !ok {
		return
	}
	state, err := service.VerifyReplay(h.repo, h.engine, id)
	if err != nil {
		if errors.Is(err, game.ErrHistoryRngUnderflow) || errors.Is(err, game.ErrHistoryActionMismatch) {
			c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: err.Error()})
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrBattleNotFound})
			return
		}
		logging.Error("replay failed", err, logging.Fields{constants.LogFieldBattleID: id})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: "Failed to replay battle"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *BattleHandler) writeActionError(c *gin.Context, id uint, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrBattleNotFound})
	case errors.Is(err, service.ErrBattleNotInProgress):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: err.Error()})
	case errors.Is(err, service.ErrPlayerNotInBattle):
		c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: err.Error()})
	case errors.Is(err, game.ErrActionNotNeeded):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: err.Error()})
	case errors.Is(err, game.ErrMustSwitch),
		errors.Is(err, game.ErrNoSwitchAvailable),
		errors.Is(err, game.ErrInvalidSwitchTarget),
		errors.Is(err, game.ErrNoPp),
		errors.Is(err, game.ErrMoveNotKnown),
		errors.Is(err, game.ErrItemNotUsable):
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: err.Error()})
	case errors.Is(err, service.ErrNoLegalAction):
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: err.Error()})
	default:
		logging.Error("battle action failed", err, logging.Fields{constants.LogFieldBattleID: id})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: "Internal error"})
	}
}

func (h *BattleHandler) loadBattle(c *gin.Context) (*game.BattleRecord, bool) {
	id, ok := battleID(c)
	if !ok {
		return nil, false
	}
	record, err := h.repo.GetBattleByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrBattleNotFound})
		} else {
			logging.Error("failed to fetch battle", err, logging.Fields{constants.LogFieldBattleID: id})
			c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: "Failed to fetch battle"})
		}
		return nil, false
	}
	return record, true
}

func battleID(c *gin.Context) (uint, bool) {
	n, err := strconv.ParseUint(c.Param("battleID"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidBattleID})
		return 0, false
	}
	return uint(n), true
}

func isTeamError(err error) bool {
	return errors.Is(err, game.ErrUnknownSpecies) ||
		errors.Is(err, game.ErrUnknownMove) ||
		errors.Is(err, game.ErrMoveNotLearnable) ||
		errors.Is(err, game.ErrDuplicateMove) ||
		errors.Is(err, game.ErrInvalidEvBudget) ||
		errors.Is(err, service.ErrEmptyTeam) ||
		errors.Is(err, service.ErrPlayerNotInBattle)
}
