package game

// ActionType enumerates what a player can do in one turn.
type ActionType string

const (
	ActionMove    ActionType = "move"
	ActionSwitch  ActionType = "switch"
	ActionUseItem ActionType = "use_item"
	ActionWait    ActionType = "wait"
)

// Action is the wire format of one player decision.
// Slot is only meaningful for switch actions.
type Action struct {
	PlayerID string     `json:"player_id"`
	Type     ActionType `json:"type"`
	MoveID   string     `json:"move_id,omitempty"`
	TargetID string     `json:"target_id,omitempty"`
	Slot     *int       `json:"slot,omitempty"`
}

// Clone returns an independent copy of the action.
func (a Action) Clone() Action {
	next := a
	if a.Slot != nil {
		v := *a.Slot
		next.Slot = &v
	}
	return next
}

// SwitchAction builds a switch action to the given team slot.
func SwitchAction(playerID string, slot int) Action {
	return Action{PlayerID: playerID, Type: ActionSwitch, Slot: &slot}
}

// MoveAction builds a move action against the given target player.
func MoveAction(playerID, moveID, targetID string) Action {
	return Action{PlayerID: playerID, Type: ActionMove, MoveID: moveID, TargetID: targetID}
}
