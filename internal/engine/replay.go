package engine

import (
	"fmt"

	"github.com/Mori-kamiyama/nikopoke/internal/game"
)

// ReplayBattle re-runs a recorded history from the initial state, feeding
// each turn's recorded RNG stream back into the resolver. Replay is strict:
// a turn that draws more values than were recorded, or that produces a
// different log than the recording, fails instead of silently diverging.
func (e *Engine) ReplayBattle(initial *game.BattleState, history *game.BattleHistory) (*game.BattleState, error) {
	next := initial.Clone()
	if history == nil {
		return next, nil
	}
	for i := range history.Turns {
		recorded := &history.Turns[i]
		idx := 0
		underflow := false
		rng := func() float64 {
			if idx >= len(recorded.RNG) {
				underflow = true
				return 0.5
			}
			v := recorded.RNG[idx]
			idx++
			return v
		}
		next = e.StepBattle(next, recorded.Actions, rng, DefaultStepOptions())
		if underflow {
			return nil, fmt.Errorf("%w: turn %d drew more than %d values",
				game.ErrHistoryRngUnderflow, recorded.Turn, len(recorded.RNG))
		}
		if err := verifyReplayedTurn(next, recorded); err != nil {
			return nil, err
		}
	}
	return next, nil
}

// verifyReplayedTurn compares the turn just appended to the replayed state's
// history against the recording.
func verifyReplayedTurn(state *game.BattleState, recorded *game.BattleTurn) error {
	if state.History == nil || len(state.History.Turns) == 0 {
		return fmt.Errorf("%w: turn %d produced no history", game.ErrHistoryActionMismatch, recorded.Turn)
	}
	replayed := &state.History.Turns[len(state.History.Turns)-1]
	if replayed.Turn != recorded.Turn {
		return fmt.Errorf("%w: expected turn %d, resolved turn %d",
			game.ErrHistoryActionMismatch, recorded.Turn, replayed.Turn)
	}
	if len(replayed.Log) != len(recorded.Log) {
		return fmt.Errorf("%w: turn %d log length %d != recorded %d",
			game.ErrHistoryActionMismatch, recorded.Turn, len(replayed.Log), len(recorded.Log))
	}
	for i := range replayed.Log {
		if replayed.Log[i] != recorded.Log[i] {
			return fmt.Errorf("%w: turn %d log line %d diverged",
				game.ErrHistoryActionMismatch, recorded.Turn, i)
		}
	}
	return nil
}
