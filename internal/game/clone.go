package game

// Clone returns a deep copy of the state. Search and the turn resolver rely
// on snapshots being fully independent of the original.
func (s *BattleState) Clone() *BattleState {
	next := &BattleState{
		Turn: s.Turn,
		Log:  append([]string(nil), s.Log...),
	}
	next.Players = make([]PlayerState, len(s.Players))
	for i := range s.Players {
		next.Players[i] = s.Players[i].clone()
	}
	next.Field = s.Field.clone()
	if s.History != nil {
		h := &BattleHistory{Turns: make([]BattleTurn, len(s.History.Turns))}
		for i := range s.History.Turns {
			h.Turns[i] = s.History.Turns[i].clone()
		}
		next.History = h
	}
	return next
}

func (p PlayerState) clone() PlayerState {
	next := p
	next.Team = make([]CreatureState, len(p.Team))
	for i := range p.Team {
		next.Team[i] = p.Team[i].clone()
	}
	return next
}

func (c CreatureState) clone() CreatureState {
	next := c
	next.Types = append([]string(nil), c.Types...)
	next.Moves = append([]string(nil), c.Moves...)
	next.Statuses = make([]Status, len(c.Statuses))
	for i := range c.Statuses {
		next.Statuses[i] = c.Statuses[i].clone()
	}
	if c.MovePP != nil {
		next.MovePP = make(map[string]int, len(c.MovePP))
		for k, v := range c.MovePP {
			next.MovePP[k] = v
		}
	}
	next.AbilityData = CloneData(c.AbilityData)
	next.VolatileData = CloneData(c.VolatileData)
	return next
}

func (st Status) clone() Status {
	next := st
	if st.RemainingTurns != nil {
		v := *st.RemainingTurns
		next.RemainingTurns = &v
	}
	next.Data = CloneData(st.Data)
	return next
}

func (f FieldEffect) clone() FieldEffect {
	next := f
	if f.RemainingTurns != nil {
		v := *f.RemainingTurns
		next.RemainingTurns = &v
	}
	next.Data = CloneData(f.Data)
	return next
}

func (f FieldState) clone() FieldState {
	next := FieldState{}
	next.Global = make([]FieldEffect, len(f.Global))
	for i := range f.Global {
		next.Global[i] = f.Global[i].clone()
	}
	if f.Sides != nil {
		next.Sides = make(map[string][]FieldEffect, len(f.Sides))
		for k, effects := range f.Sides {
			copied := make([]FieldEffect, len(effects))
			for i := range effects {
				copied[i] = effects[i].clone()
			}
			next.Sides[k] = copied
		}
	}
	return next
}

func (t BattleTurn) clone() BattleTurn {
	next := t
	next.Actions = make([]Action, len(t.Actions))
	for i := range t.Actions {
		next.Actions[i] = t.Actions[i].Clone()
	}
	next.Log = append([]string(nil), t.Log...)
	next.RNG = append([]float64(nil), t.RNG...)
	return next
}

// CloneData deep-copies a JSON-shaped data map (maps, slices, scalars).
func CloneData(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return nil
	}
	next := make(map[string]interface{}, len(data))
	for k, v := range data {
		next[k] = cloneValue(v)
	}
	return next
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return CloneData(val)
	case []interface{}:
		copied := make([]interface{}, len(val))
		for i := range val {
			copied[i] = cloneValue(val[i])
		}
		return copied
	default:
		return v
	}
}
