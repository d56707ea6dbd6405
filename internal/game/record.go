package game

import (
	"time"

	"gorm.io/gorm"
)

// Battle lifecycle status values persisted with each record.
type BattleStatus string

const (
	BattleInProgress BattleStatus = "IN_PROGRESS"
	BattleFinished   BattleStatus = "FINISHED"
)

// BattleRecord is the persisted form of a battle. The full state and history
// are stored as JSON blobs; scalar columns exist so lists and leaderboards
// can be served without decoding the blobs.
type BattleRecord struct {
	gorm.Model
	PlayerOneID   string       `json:"player_one_id"`
	PlayerOneName string       `json:"player_one_name"`
	PlayerTwoID   string       `json:"player_two_id"`
	PlayerTwoName string       `json:"player_two_name"`
	Status        BattleStatus `json:"status"`
	Winner        string       `json:"winner"`
	Turn          int          `json:"turn"`
	// StateJSON holds the current BattleState; HistoryJSON the recorded
	// turns (kept separately so replay verification can load it alone).
	StateJSON   []byte `json:"-" gorm:"type:blob"`
	HistoryJSON []byte `json:"-" gorm:"type:blob"`
	// InitialStateJSON is the state at battle creation, required by replay.
	InitialStateJSON []byte `json:"-" gorm:"type:blob"`
	// PendingActionsJSON buffers submitted actions until both sides acted.
	PendingActionsJSON []byte `json:"-" gorm:"type:blob"`
	// ActionDeadline is when the current turn forfeits for inactivity.
	// Zero means no deadline is armed.
	ActionDeadline time.Time `json:"action_deadline"`
}

func (BattleRecord) TableName() string { return "battles" }
