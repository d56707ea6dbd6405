package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mori-kamiyama/nikopoke/internal/data"
)

// ListSpecies returns every species in the loaded tables.
func (h *BattleHandler) ListSpecies(c *gin.Context) {
	tables := h.engine.Tables()
	ids := tables.Species.IDs()
	out := make([]*data.SpeciesData, 0, len(ids))
	for _, id := range ids {
		out = append(out, tables.Species.Get(id))
	}
	c.JSON(http.StatusOK, out)
}

// ListMoves returns every move in the loaded tables.
func (h *BattleHandler) ListMoves(c *gin.Context) {
	tables := h.engine.Tables()
	ids := tables.Moves.IDs()
	out := make([]*data.MoveData, 0, len(ids))
	for _, id := range ids {
		out = append(out, tables.Moves.Get(id))
	}
	c.JSON(http.StatusOK, out)
}
