package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mori-kamiyama/nikopoke/internal/game"
)

func TestSuggestAction_Minimax(t *testing.T) {
	repo := newMockRepo()
	eng := newTestEngine(t)
	record := createTestBattle(t, repo, eng)

	action, err := SuggestAction(repo, eng, record.ID, "p1", SuggestOptions{MinimaxDepth: 1})
	require.NoError(t, err)
	require.NotNil(t, action)
	assert.Equal(t, "p1", action.PlayerID)
	assert.Contains(t, []game.ActionType{game.ActionMove, game.ActionSwitch}, action.Type)
}

func TestSuggestAction_MCTS(t *testing.T) {
	repo := newMockRepo()
	eng := newTestEngine(t)
	record := createTestBattle(t, repo, eng)

	action, err := SuggestAction(repo, eng, record.ID, "p2", SuggestOptions{UseMCTS: true, MCTSSimulations: 20, Seed: 3})
	require.NoError(t, err)
	require.NotNil(t, action)
	assert.Equal(t, "p2", action.PlayerID)
}

func TestSuggestAction_Errors(t *testing.T) {
	repo := newMockRepo()
	eng := newTestEngine(t)
	record := createTestBattle(t, repo, eng)

	_, err := SuggestAction(repo, eng, record.ID, "stranger", SuggestOptions{MinimaxDepth: 1})
	assert.ErrorIs(t, err, ErrPlayerNotInBattle)

	record.Status = game.BattleFinished
	require.NoError(t, repo.UpdateBattle(record))
	_, err = SuggestAction(repo, eng, record.ID, "p1", SuggestOptions{MinimaxDepth: 1})
	assert.ErrorIs(t, err, ErrBattleNotInProgress)
}
