package game

// StatStages holds the per-stat boost ranks of a creature. Every entry is
// clamped to [-6, 6] by the event applier.
type StatStages struct {
	Atk      int `json:"atk"`
	Def      int `json:"def"`
	Spa      int `json:"spa"`
	Spd      int `json:"spd"`
	Spe      int `json:"spe"`
	Accuracy int `json:"accuracy"`
	Evasion  int `json:"evasion"`
	Crit     int `json:"crit"`
}

// Status is a volatile (or primary) condition attached to a creature.
// RemainingTurns == nil means indefinite; a non-nil counter is decremented at
// end of turn and the status is dropped when it reaches zero.
type Status struct {
	ID             string                 `json:"id"`
	RemainingTurns *int                   `json:"remaining_turns,omitempty"`
	Data           map[string]interface{} `json:"data,omitempty"`
}

// FieldEffect is an entry of the global field list (weather, terrain, ...).
type FieldEffect struct {
	ID             string                 `json:"id"`
	RemainingTurns *int                   `json:"remaining_turns,omitempty"`
	Data           map[string]interface{} `json:"data,omitempty"`
}

// FieldState holds global field effects plus reserved per-side slots.
type FieldState struct {
	Global []FieldEffect            `json:"global"`
	Sides  map[string][]FieldEffect `json:"sides,omitempty"`
}

// CreatureState is a battle-ready monster instance.
type CreatureState struct {
	ID        string   `json:"id"`
	SpeciesID string   `json:"species_id"`
	Name      string   `json:"name"`
	Level     int      `json:"level"`
	Types     []string `json:"types"`
	Moves     []string `json:"moves"`
	// Ability and Item are empty strings when absent.
	Ability string `json:"ability,omitempty"`
	Item    string `json:"item,omitempty"`

	HP       int        `json:"hp"`
	MaxHP    int        `json:"max_hp"`
	Stages   StatStages `json:"stages"`
	Statuses []Status   `json:"statuses"`

	// MovePP tracks remaining PP per move id. A move absent from the map
	// still has its full PP.
	MovePP map[string]int `json:"move_pp,omitempty"`
	// AbilityData holds once-per-stay flags (intimidateUsed, ...); cleared on
	// switch-out.
	AbilityData map[string]interface{} `json:"ability_data,omitempty"`
	// VolatileData is per-creature scratch (lastMove, protectSuccessCount);
	// cleared on switch-out.
	VolatileData map[string]interface{} `json:"volatile_data,omitempty"`

	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
	SpAttack  int `json:"sp_attack"`
	SpDefense int `json:"sp_defense"`
	Speed     int `json:"speed"`
}

// PlayerState is one side of the battle.
type PlayerState struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Team       []CreatureState `json:"team"`
	ActiveSlot int             `json:"active_slot"`
	// LastFaintedAbility remembers the ability of the most recently fainted
	// team member (consumed by receiver / power_of_alchemy).
	LastFaintedAbility string `json:"last_fainted_ability,omitempty"`
}

// BattleTurn is one recorded turn of history: the submitted actions, the log
// lines produced, and every RNG value drawn, in draw order.
type BattleTurn struct {
	Turn    int       `json:"turn"`
	Actions []Action  `json:"actions"`
	Log     []string  `json:"log"`
	RNG     []float64 `json:"rng"`
}

// BattleHistory is the full replayable record of a battle.
type BattleHistory struct {
	Turns []BattleTurn `json:"turns"`
}

// BattleState is the root battle snapshot. The turn resolver never mutates
// its input; it returns a fresh state per step.
type BattleState struct {
	Players []PlayerState  `json:"players"`
	Field   FieldState     `json:"field"`
	Turn    int            `json:"turn"`
	Log     []string       `json:"log"`
	History *BattleHistory `json:"history,omitempty"`
}

// Player returns the player with the given id, or nil.
func (s *BattleState) Player(id string) *PlayerState {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// Opponent returns the first player with a different id, or nil.
func (s *BattleState) Opponent(id string) *PlayerState {
	for i := range s.Players {
		if s.Players[i].ID != id {
			return &s.Players[i]
		}
	}
	return nil
}

// Active returns the creature currently on the field for the given player,
// or nil. The returned pointer aliases the state: hook mutations through it
// are immediately visible.
func (s *BattleState) Active(playerID string) *CreatureState {
	p := s.Player(playerID)
	if p == nil {
		return nil
	}
	if p.ActiveSlot < 0 || p.ActiveSlot >= len(p.Team) {
		return nil
	}
	return &p.Team[p.ActiveSlot]
}

// HasStatus reports whether the creature carries a status with the given id.
func (c *CreatureState) HasStatus(id string) bool {
	for i := range c.Statuses {
		if c.Statuses[i].ID == id {
			return true
		}
	}
	return false
}

// FindStatus returns the first status with the given id, or nil.
func (c *CreatureState) FindStatus(id string) *Status {
	for i := range c.Statuses {
		if c.Statuses[i].ID == id {
			return &c.Statuses[i]
		}
	}
	return nil
}

// HasFieldStatus reports whether a global field effect with the id is active.
func (s *BattleState) HasFieldStatus(id string) bool {
	for i := range s.Field.Global {
		if s.Field.Global[i].ID == id {
			return true
		}
	}
	return false
}
