package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Mori-kamiyama/nikopoke/internal/engine"
	"github.com/Mori-kamiyama/nikopoke/internal/game"
	"github.com/Mori-kamiyama/nikopoke/internal/storage"
)

// Service-level sentinel errors shared by handlers.
var (
	ErrBattleNotInProgress = errors.New("battle is not in progress")
	ErrPlayerNotInBattle   = errors.New("player is not part of this battle")
	ErrEmptyTeam           = errors.New("a team needs at least one creature")
)

// CreatureSpec is one requested team member.
type CreatureSpec struct {
	SpeciesID string         `json:"species_id"`
	Moves     []string       `json:"moves"`
	Ability   string         `json:"ability,omitempty"`
	Item      string         `json:"item,omitempty"`
	Name      string         `json:"name,omitempty"`
	Level     int            `json:"level,omitempty"`
	EVs       engine.EVStats `json:"evs,omitempty"`
}

// PlayerSpec is one side of a requested battle.
type PlayerSpec struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Team []CreatureSpec `json:"team"`
}

// CreateBattle validates both teams, builds the initial state and persists a
// new battle record. Creature construction errors are returned verbatim so
// handlers can map them to 400s.
func CreateBattle(repo storage.Repository, e *engine.Engine, one, two PlayerSpec, actionTimeout time.Duration) (*game.BattleRecord, *game.BattleState, error) {
	p1, err := buildPlayer(e, one)
	if err != nil {
		return nil, nil, err
	}
	p2, err := buildPlayer(e, two)
	if err != nil {
		return nil, nil, err
	}

	state := engine.NewBattleState(*p1, *p2)

	stateJSON, err := json.Marshal(state)
	if err != nil {
		return nil, nil, err
	}
	record := &game.BattleRecord{
		PlayerOneID:      one.ID,
		PlayerOneName:    one.Name,
		PlayerTwoID:      two.ID,
		PlayerTwoName:    two.Name,
		Status:           game.BattleInProgress,
		Turn:             0,
		StateJSON:        stateJSON,
		InitialStateJSON: stateJSON,
	}
	if actionTimeout > 0 {
		record.ActionDeadline = time.Now().Add(actionTimeout)
	}
	if err := repo.CreateBattle(record); err != nil {
		return nil, nil, err
	}
	return record, state, nil
}

func buildPlayer(e *engine.Engine, spec PlayerSpec) (*game.PlayerState, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("%w: missing player id", ErrPlayerNotInBattle)
	}
	if len(spec.Team) == 0 {
		return nil, fmt.Errorf("%w: player %s", ErrEmptyTeam, spec.ID)
	}
	team := make([]game.CreatureState, 0, len(spec.Team))
	for _, cs := range spec.Team {
		creature, err := e.CreateCreature(cs.SpeciesID, engine.CreatureOptions{
			Moves:   cs.Moves,
			Ability: cs.Ability,
			Item:    cs.Item,
			Name:    cs.Name,
			Level:   cs.Level,
			EVs:     cs.EVs,
		})
		if err != nil {
			return nil, err
		}
		team = append(team, *creature)
	}
	name := spec.Name
	if name == "" {
		name = spec.ID
	}
	return &game.PlayerState{ID: spec.ID, Name: name, Team: team, ActiveSlot: 0}, nil
}

// LoadState decodes the current battle state from a record.
func LoadState(record *game.BattleRecord) (*game.BattleState, error) {
	var state game.BattleState
	if err := json.Unmarshal(record.StateJSON, &state); err != nil {
		return nil, fmt.Errorf("battle %d: corrupt state: %w", record.ID, err)
	}
	return &state, nil
}

// LoadHistory decodes the recorded turns from a record. A missing blob is an
// empty history.
func LoadHistory(record *game.BattleRecord) (*game.BattleHistory, error) {
	history := &game.BattleHistory{}
	if len(record.HistoryJSON) == 0 {
		return history, nil
	}
	if err := json.Unmarshal(record.HistoryJSON, history); err != nil {
		return nil, fmt.Errorf("battle %d: corrupt history: %w", record.ID, err)
	}
	return history, nil
}

// saveState re-encodes state and history onto the record and mirrors the
// scalar columns used by list endpoints.
func saveState(record *game.BattleRecord, state *game.BattleState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return err
	}
	record.StateJSON = stateJSON
	record.Turn = state.Turn
	if state.History != nil {
		historyJSON, err := json.Marshal(state.History)
		if err != nil {
			return err
		}
		record.HistoryJSON = historyJSON
	}
	if engine.IsBattleOver(state) {
		record.Status = game.BattleFinished
		record.Winner = engine.Winner(state)
		record.ActionDeadline = time.Time{}
	}
	return nil
}

func playerInBattle(record *game.BattleRecord, playerID string) bool {
	return playerID == record.PlayerOneID || playerID == record.PlayerTwoID
}
