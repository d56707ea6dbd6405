package engine

import "github.com/Mori-kamiyama/nikopoke/internal/game"

// Event types produced by the effect compiler and consumed by the applier.
const (
	EventLog               = "log"
	EventDamage            = "damage"
	EventApplyStatus       = "apply_status"
	EventRemoveStatus      = "remove_status"
	EventReplaceStatus     = "replace_status"
	EventModifyStage       = "modify_stage"
	EventClearStages       = "clear_stages"
	EventResetStages       = "reset_stages"
	EventCureAllStatus     = "cure_all_status"
	EventApplyFieldStatus  = "apply_field_status"
	EventRemoveFieldStatus = "remove_field_status"
	EventSwitch            = "switch"
	EventRandomMove        = "random_move"
	EventSetVolatile       = "set_volatile"
)

// Event is the single mutation unit of the engine. It is a flat union: Type
// selects the variant and only that variant's fields are meaningful.
type Event struct {
	Type string `json:"type"`

	// log
	Message string `json:"message,omitempty"`

	// damage, status and stage events
	TargetID string `json:"target_id,omitempty"`
	Amount   int    `json:"amount,omitempty"`

	// apply_status / remove_status / replace_status / field status events
	StatusID string                 `json:"status_id,omitempty"`
	From     string                 `json:"from,omitempty"`
	To       string                 `json:"to,omitempty"`
	Duration *int                   `json:"duration,omitempty"`
	Stack    bool                   `json:"stack,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`

	// modify_stage / clear_stages / reset_stages
	Stages         map[string]int `json:"stages,omitempty"`
	Clamp          bool           `json:"clamp,omitempty"`
	FailIfNoChange bool           `json:"fail_if_no_change,omitempty"`
	ShowEvent      bool           `json:"show_event,omitempty"`

	// switch
	PlayerID string `json:"player_id,omitempty"`
	Slot     int    `json:"slot,omitempty"`

	// random_move
	Pool string `json:"pool,omitempty"`

	// set_volatile
	Key   string      `json:"key,omitempty"`
	Value interface{} `json:"value,omitempty"`

	// Meta carries provenance (moveId, source) and bypass flags; transforms
	// and ability reactions key off it.
	Meta map[string]interface{} `json:"meta,omitempty"`
}

// LogEvent builds a bare log event.
func LogEvent(message string) Event {
	return Event{Type: EventLog, Message: message}
}

// DamageEvent builds a damage event. Negative amounts heal.
func DamageEvent(targetID string, amount int) Event {
	return Event{Type: EventDamage, TargetID: targetID, Amount: amount}
}

// MetaString reads a string meta entry.
func (e *Event) MetaString(key string) string {
	s, _ := e.Meta[key].(string)
	return s
}

// MetaBool reads a bool meta entry.
func (e *Event) MetaBool(key string) bool {
	b, _ := e.Meta[key].(bool)
	return b
}

// WithMeta returns a copy of the event with the meta entry set.
func (e Event) WithMeta(key string, value interface{}) Event {
	meta := make(map[string]interface{}, len(e.Meta)+1)
	for k, v := range e.Meta {
		meta[k] = v
	}
	meta[key] = value
	e.Meta = meta
	return e
}

// Clone returns a deep copy of the event.
func (e Event) Clone() Event {
	next := e
	if e.Duration != nil {
		v := *e.Duration
		next.Duration = &v
	}
	if e.Stages != nil {
		next.Stages = make(map[string]int, len(e.Stages))
		for k, v := range e.Stages {
			next.Stages[k] = v
		}
	}
	next.Data = game.CloneData(e.Data)
	next.Meta = game.CloneData(e.Meta)
	return next
}

// EventTransform rewrites or cancels events in flight. Statuses like protect
// and substitute contribute transforms via their onEventTransform hook.
type EventTransform struct {
	// Kind is "replace_event" or "cancel_event".
	Kind string
	// From restricts the transform to one event type ("" matches all).
	From string
	// TargetID restricts to events aimed at this player.
	TargetID string
	// ExceptSourceID skips events whose meta source equals this id.
	ExceptSourceID string
	// RequireAbsentMeta skips events that carry this meta key with a true
	// value (bypassProtect, bypassSubstitute).
	RequireAbsentMeta string
	// To is the replacement event list for replace_event.
	To []Event
	// Priority orders transforms; higher runs first.
	Priority int
}

// Matches reports whether the transform applies to the event.
func (t *EventTransform) Matches(e *Event) bool {
	if t.From != "" && t.From != e.Type {
		return false
	}
	if t.TargetID != "" && t.TargetID != e.TargetID {
		return false
	}
	if t.ExceptSourceID != "" && e.MetaString("source") == t.ExceptSourceID {
		return false
	}
	if t.RequireAbsentMeta != "" && e.MetaBool(t.RequireAbsentMeta) {
		return false
	}
	return true
}
