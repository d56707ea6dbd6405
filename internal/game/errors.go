package game

import "errors"

// Validation errors (creature construction).
var (
	ErrUnknownSpecies   = errors.New("unknown species")
	ErrUnknownMove      = errors.New("unknown move")
	ErrMoveNotLearnable = errors.New("move not learnable by species")
	ErrDuplicateMove    = errors.New("duplicate move")
	ErrInvalidEvBudget  = errors.New("invalid EV budget")
)

// Action legality errors. These are reported back to the caller without
// mutating state.
var (
	ErrActionNotNeeded     = errors.New("action already submitted this turn")
	ErrMustSwitch          = errors.New("a switch action is required")
	ErrNoSwitchAvailable   = errors.New("no creature available to switch in")
	ErrInvalidSwitchTarget = errors.New("invalid switch target")
	ErrNoPp                = errors.New("no PP left for move")
	ErrMoveNotKnown        = errors.New("creature does not know that move")
	ErrItemNotUsable       = errors.New("item cannot be used")
)

// Replay errors.
var (
	ErrHistoryRngUnderflow   = errors.New("history RNG stream exhausted")
	ErrHistoryActionMismatch = errors.New("history does not reproduce the recorded turn")
)
