package data

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Effect is one declarative entry of a move definition. The JSON form is a
// flat object whose "type" key selects the effect kind; every other key goes
// into Data.
type Effect struct {
	Type string
	Data map[string]interface{}
}

func (e *Effect) UnmarshalJSON(b []byte) error {
	raw := map[string]interface{}{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	t, _ := raw["type"].(string)
	if t == "" {
		return fmt.Errorf("effect missing 'type': %s", string(b))
	}
	delete(raw, "type")
	e.Type = t
	e.Data = raw
	return nil
}

func (e Effect) MarshalJSON() ([]byte, error) {
	raw := make(map[string]interface{}, len(e.Data)+1)
	for k, v := range e.Data {
		raw[k] = v
	}
	raw["type"] = e.Type
	return json.Marshal(raw)
}

// String returns a Data entry as string.
func (e Effect) String(key string) string {
	s, _ := e.Data[key].(string)
	return s
}

// Float returns a Data entry as float64 when present.
func (e Effect) Float(key string) (float64, bool) {
	switch v := e.Data[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Int returns a Data entry as int when present.
func (e Effect) Int(key string) (int, bool) {
	f, ok := e.Float(key)
	return int(f), ok
}

// Bool returns a Data entry as bool with a default.
func (e Effect) Bool(key string, def bool) bool {
	if v, ok := e.Data[key].(bool); ok {
		return v
	}
	return def
}

// Object returns a Data entry as a nested object.
func (e Effect) Object(key string) map[string]interface{} {
	m, _ := e.Data[key].(map[string]interface{})
	return m
}

// Effects decodes a Data entry holding a nested effect list ("then", "else",
// "effects").
func (e Effect) Effects(key string) []Effect {
	return EffectsFromValue(e.Data[key])
}

// EffectsFromValue decodes a JSON-shaped value into an effect list.
func EffectsFromValue(v interface{}) []Effect {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]Effect, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		t, _ := obj["type"].(string)
		if t == "" {
			continue
		}
		data := make(map[string]interface{}, len(obj))
		for k, val := range obj {
			if k == "type" {
				continue
			}
			data[k] = val
		}
		out = append(out, Effect{Type: t, Data: data})
	}
	return out
}

// MoveData is a static move definition.
type MoveData struct {
	ID       string   `json:"id"`
	Name     string   `json:"name,omitempty"`
	Type     string   `json:"type,omitempty"`
	Category string   `json:"category,omitempty"`
	PP       *int     `json:"pp,omitempty"`
	Power    int      `json:"power,omitempty"`
	Accuracy float64  `json:"accuracy,omitempty"`
	Priority int      `json:"priority,omitempty"`
	Effects  []Effect `json:"effects,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	CritRate int      `json:"critRate,omitempty"`
}

// DisplayName returns the move's name, deriving one from the id when the
// data file omits it.
func (m *MoveData) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return TitleFromID(m.ID)
}

// HasTag reports whether the move carries the given tag.
func (m *MoveData) HasTag(tag string) bool {
	return slices.Contains(m.Tags, tag)
}

// IsStatusMove reports whether the move is a pure status move. Moves without
// an explicit category are classified by the presence of a damage effect.
func (m *MoveData) IsStatusMove() bool {
	switch m.Category {
	case "status":
		return true
	case "physical", "special":
		return false
	}
	for _, e := range m.Effects {
		if e.Type == "damage" {
			return false
		}
	}
	return true
}

var titleCaser = cases.Title(language.English)

// TitleFromID turns a snake_case identifier into a display name
// ("icicle_spear" -> "Icicle Spear").
func TitleFromID(id string) string {
	return titleCaser.String(strings.ReplaceAll(id, "_", " "))
}

// MoveDatabase is the read-only move registry.
type MoveDatabase struct {
	moves map[string]*MoveData
}

// NewMoveDatabase returns an empty database.
func NewMoveDatabase() *MoveDatabase {
	return &MoveDatabase{moves: map[string]*MoveData{}}
}

// LoadDefaultMoves loads the embedded move data file.
func LoadDefaultMoves() (*MoveDatabase, error) {
	return MovesFromJSON(defaultMovesJSON)
}

// LoadMovesFile loads a move data file from disk.
func LoadMovesFile(path string) (*MoveDatabase, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read moves file %s: %w", path, err)
	}
	return MovesFromJSON(b)
}

// MovesFromJSON decodes a moveId -> MoveData map.
func MovesFromJSON(b []byte) (*MoveDatabase, error) {
	raw := map[string]*MoveData{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse moves data: %w", err)
	}
	db := NewMoveDatabase()
	for id, m := range raw {
		if m.ID == "" {
			m.ID = id
		}
		db.Insert(m)
	}
	return db, nil
}

// Insert adds or replaces a move definition.
func (db *MoveDatabase) Insert(m *MoveData) {
	db.moves[m.ID] = m
}

// Get returns the move with the given id, or nil.
func (db *MoveDatabase) Get(id string) *MoveData {
	return db.moves[id]
}

// IDs returns all known move ids, sorted.
func (db *MoveDatabase) IDs() []string {
	ids := maps.Keys(db.moves)
	slices.Sort(ids)
	return ids
}

// ByCategory returns the ids of all moves with the given category, sorted.
func (db *MoveDatabase) ByCategory(category string) []string {
	var ids []string
	for id, m := range db.moves {
		if m.Category == category {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}
