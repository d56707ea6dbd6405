package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mori-kamiyama/nikopoke/internal/data"
	"github.com/Mori-kamiyama/nikopoke/internal/engine"
	"github.com/Mori-kamiyama/nikopoke/internal/game"
)

type mockRepo struct {
	battles map[uint]*game.BattleRecord
	nextID  uint
}

func newMockRepo() *mockRepo {
	return &mockRepo{battles: map[uint]*game.BattleRecord{}}
}

var errNotFound = errors.New("battle not found")

func (m *mockRepo) CreateBattle(b *game.BattleRecord) error {
	m.nextID++
	b.ID = m.nextID
	m.battles[b.ID] = b
	return nil
}

func (m *mockRepo) GetBattleByID(id uint) (*game.BattleRecord, error) {
	if b, ok := m.battles[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, errNotFound
}

func (m *mockRepo) UpdateBattle(b *game.BattleRecord) error {
	if _, ok := m.battles[b.ID]; !ok {
		return errNotFound
	}
	m.battles[b.ID] = b
	return nil
}

func (m *mockRepo) ListBattles(limit int) ([]game.BattleRecord, error) {
	var out []game.BattleRecord
	for _, b := range m.battles {
		out = append(out, *b)
	}
	return out, nil
}

func (m *mockRepo) ListBattlesByPlayer(playerID string, limit int) ([]game.BattleRecord, error) {
	var out []game.BattleRecord
	for _, b := range m.battles {
		if b.PlayerOneID == playerID || b.PlayerTwoID == playerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockRepo) FindTimedOutBattles(now time.Time) ([]game.BattleRecord, error) {
	var out []game.BattleRecord
	for _, b := range m.battles {
		if b.Status == game.BattleInProgress && !b.ActionDeadline.IsZero() && !b.ActionDeadline.After(now) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	tables, err := data.LoadDefaultTables()
	require.NoError(t, err)
	return engine.New(tables)
}

func createTestBattle(t *testing.T, repo *mockRepo, eng *engine.Engine) *game.BattleRecord {
	t.Helper()
	one := PlayerSpec{ID: "p1", Name: "One", Team: []CreatureSpec{
		{SpeciesID: "tatuta", Moves: []string{"tackle", "icicle_spear"}},
		{SpeciesID: "mizune", Moves: []string{"water_gun", "recover"}},
	}}
	two := PlayerSpec{ID: "p2", Name: "Two", Team: []CreatureSpec{
		{SpeciesID: "morimitu", Moves: []string{"razor_leaf", "growl"}},
	}}
	record, state, err := CreateBattle(repo, eng, one, two, 0)
	require.NoError(t, err)
	require.NotZero(t, record.ID)
	require.Len(t, state.Players, 2)
	return record
}

func TestCreateBattle_RejectsBadTeams(t *testing.T) {
	repo := newMockRepo()
	eng := newTestEngine(t)

	_, _, err := CreateBattle(repo, eng, PlayerSpec{ID: "p1"}, PlayerSpec{ID: "p2", Team: []CreatureSpec{{SpeciesID: "tatuta"}}}, 0)
	assert.ErrorIs(t, err, ErrEmptyTeam)

	_, _, err = CreateBattle(repo, eng,
		PlayerSpec{ID: "p1", Team: []CreatureSpec{{SpeciesID: "missingno"}}},
		PlayerSpec{ID: "p2", Team: []CreatureSpec{{SpeciesID: "tatuta"}}}, 0)
	assert.ErrorIs(t, err, game.ErrUnknownSpecies)
}

func TestSubmitAction_ResolvesWhenBothActed(t *testing.T) {
	repo := newMockRepo()
	eng := newTestEngine(t)
	record := createTestBattle(t, repo, eng)

	state, resolved, err := SubmitAction(repo, eng, record.ID, game.MoveAction("p1", "tackle", "p2"), 0)
	require.NoError(t, err)
	assert.False(t, resolved)
	assert.Equal(t, 0, state.Turn)

	state, resolved, err = SubmitAction(repo, eng, record.ID, game.MoveAction("p2", "razor_leaf", "p1"), 0)
	require.NoError(t, err)
	assert.True(t, resolved)
	assert.Equal(t, 1, state.Turn)
	assert.NotEmpty(t, state.Log)

	// The persisted record carries the resolved state and empty buffer.
	stored, err := repo.GetBattleByID(record.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Turn)
	assert.Empty(t, stored.PendingActionsJSON)

	history, err := LoadHistory(stored)
	require.NoError(t, err)
	require.Len(t, history.Turns, 1)
	assert.NotEmpty(t, history.Turns[0].RNG)
}

func TestSubmitAction_RejectsDoubleSubmit(t *testing.T) {
	repo := newMockRepo()
	eng := newTestEngine(t)
	record := createTestBattle(t, repo, eng)

	_, _, err := SubmitAction(repo, eng, record.ID, game.MoveAction("p1", "tackle", "p2"), 0)
	require.NoError(t, err)
	_, _, err = SubmitAction(repo, eng, record.ID, game.MoveAction("p1", "tackle", "p2"), 0)
	assert.ErrorIs(t, err, game.ErrActionNotNeeded)
}

func TestSubmitAction_ValidatesLegality(t *testing.T) {
	repo := newMockRepo()
	eng := newTestEngine(t)
	record := createTestBattle(t, repo, eng)

	_, _, err := SubmitAction(repo, eng, record.ID, game.MoveAction("p1", "hypnosis", "p2"), 0)
	assert.ErrorIs(t, err, game.ErrMoveNotKnown)

	_, _, err = SubmitAction(repo, eng, record.ID, game.MoveAction("intruder", "tackle", "p2"), 0)
	assert.ErrorIs(t, err, ErrPlayerNotInBattle)

	badSlot := 7
	_, _, err = SubmitAction(repo, eng, record.ID, game.Action{PlayerID: "p1", Type: game.ActionSwitch, Slot: &badSlot}, 0)
	assert.ErrorIs(t, err, game.ErrInvalidSwitchTarget)

	_, _, err = SubmitAction(repo, eng, record.ID, game.Action{PlayerID: "p1", Type: game.ActionUseItem}, 0)
	assert.ErrorIs(t, err, game.ErrItemNotUsable)
}

func TestValidateAction_ItemInStatusForm(t *testing.T) {
	eng := newTestEngine(t)

	state := &game.BattleState{Players: []game.PlayerState{
		{ID: "p1", Team: []game.CreatureState{{
			ID: "a1", Name: "Holder", HP: 100, MaxHP: 100, Moves: []string{"tackle"},
			Statuses: []game.Status{{ID: "item", Data: map[string]interface{}{"itemId": "leftovers"}}},
		}}},
		{ID: "p2", Team: []game.CreatureState{{
			ID: "b1", Name: "Foe", HP: 100, MaxHP: 100, Moves: []string{"tackle"},
		}}},
	}}

	// The held item lives in a status entry, not the scalar field.
	require.Empty(t, state.Active("p1").Item)
	assert.NoError(t, ValidateAction(eng, state, game.Action{PlayerID: "p1", Type: game.ActionUseItem}))
	assert.ErrorIs(t, ValidateAction(eng, state, game.Action{PlayerID: "p2", Type: game.ActionUseItem}), game.ErrItemNotUsable)
}

func TestSubmitAction_FinishedBattle(t *testing.T) {
	repo := newMockRepo()
	eng := newTestEngine(t)
	record := createTestBattle(t, repo, eng)
	record.Status = game.BattleFinished
	require.NoError(t, repo.UpdateBattle(record))

	_, _, err := SubmitAction(repo, eng, record.ID, game.MoveAction("p1", "tackle", "p2"), 0)
	assert.ErrorIs(t, err, ErrBattleNotInProgress)
}

func TestHandleTimedOutBattle(t *testing.T) {
	repo := newMockRepo()
	eng := newTestEngine(t)
	record := createTestBattle(t, repo, eng)

	// p1 acted in time, p2 did not: p1 wins by forfeit.
	_, _, err := SubmitAction(repo, eng, record.ID, game.MoveAction("p1", "tackle", "p2"), time.Minute)
	require.NoError(t, err)
	stored, err := repo.GetBattleByID(record.ID)
	require.NoError(t, err)

	require.NoError(t, HandleTimedOutBattle(repo, stored))
	stored, err = repo.GetBattleByID(record.ID)
	require.NoError(t, err)
	assert.Equal(t, game.BattleFinished, stored.Status)
	assert.Equal(t, "p1", stored.Winner)
}

func TestVerifyReplay_RoundTrips(t *testing.T) {
	repo := newMockRepo()
	eng := newTestEngine(t)
	record := createTestBattle(t, repo, eng)

	_, _, err := SubmitAction(repo, eng, record.ID, game.MoveAction("p1", "tackle", "p2"), 0)
	require.NoError(t, err)
	_, resolved, err := SubmitAction(repo, eng, record.ID, game.MoveAction("p2", "growl", "p1"), 0)
	require.NoError(t, err)
	require.True(t, resolved)

	state, err := VerifyReplay(repo, eng, record.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Turn)
}
