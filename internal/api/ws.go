package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Mori-kamiyama/nikopoke/internal/constants"
	"github.com/Mori-kamiyama/nikopoke/internal/game"
	"github.com/Mori-kamiyama/nikopoke/internal/logging"
	"github.com/Mori-kamiyama/nikopoke/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: Restrict in production
	},
}

// battleLogMessage is one websocket frame of the log stream.
type battleLogMessage struct {
	Turn     int      `json:"turn"`
	Lines    []string `json:"lines"`
	Finished bool     `json:"finished"`
	Winner   string   `json:"winner,omitempty"`
}

const logPollInterval = 1 * time.Second

// StreamBattleLog upgrades to a websocket and pushes new battle log lines as
// turns resolve. The stream closes after the battle finishes (one final
// frame carries the winner) or when the client goes away.
func (h *BattleHandler) StreamBattleLog(c *gin.Context) {
	id, ok := battleID(c)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Error("websocket upgrade failed", err, logging.Fields{constants.LogFieldBattleID: id})
		return
	}
	defer conn.Close()

	// Drain client frames so close messages are noticed.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	sent := 0
	ticker := time.NewTicker(logPollInterval)
	defer ticker.Stop()
	for {
		record, err := h.repo.GetBattleByID(id)
		if err != nil {
			return
		}
		state, err := service.LoadState(record)
		if err != nil {
			return
		}
		finished := record.Status == game.BattleFinished
		if len(state.Log) > sent || finished {
			msg := battleLogMessage{
				Turn:     state.Turn,
				Lines:    state.Log[sent:],
				Finished: finished,
				Winner:   record.Winner,
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
			sent = len(state.Log)
		}
		if finished {
			return
		}
		select {
		case <-clientGone:
			return
		case <-ticker.C:
		}
	}
}
