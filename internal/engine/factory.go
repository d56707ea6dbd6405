package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/Mori-kamiyama/nikopoke/internal/game"
)

var creatureCounter uint64

// EVStats is the effort value spread for one creature. Each stat is capped at
// 252 and the total at 510.
type EVStats struct {
	HP  int `json:"hp"`
	Atk int `json:"atk"`
	Def int `json:"def"`
	Spa int `json:"spa"`
	Spd int `json:"spd"`
	Spe int `json:"spe"`
}

// Total sums the spread.
func (ev EVStats) Total() int {
	return ev.HP + ev.Atk + ev.Def + ev.Spa + ev.Spd + ev.Spe
}

func (ev EVStats) validate() error {
	for _, v := range []int{ev.HP, ev.Atk, ev.Def, ev.Spa, ev.Spd, ev.Spe} {
		if v < 0 || v > 252 {
			return fmt.Errorf("%w: stat EV must be in [0, 252]", game.ErrInvalidEvBudget)
		}
	}
	if ev.Total() > 510 {
		return fmt.Errorf("%w: total EV %d exceeds 510", game.ErrInvalidEvBudget, ev.Total())
	}
	return nil
}

// CreatureOptions customizes creature construction. Zero values fall back to
// defaults: level 50, the species' first ability, no item, no EVs.
type CreatureOptions struct {
	Moves   []string
	Ability string
	Name    string
	Level   int
	Item    string
	EVs     EVStats
}

// CalcStat is the standard stat formula at 31 IVs.
func CalcStat(base int, isHP bool, level, iv, ev int) int {
	if isHP {
		return (base*2+iv+ev/4)*level/100 + level + 10
	}
	return (base*2+iv+ev/4)*level/100 + 5
}

// ValidateMoves checks that every requested move exists, is learnable by the
// species and appears only once.
func (e *Engine) ValidateMoves(speciesID string, moves []string) error {
	seen := map[string]bool{}
	for _, id := range moves {
		if e.tables.Moves.Get(id) == nil {
			return fmt.Errorf("%w: %s", game.ErrUnknownMove, id)
		}
		if !e.tables.Learnsets.CanLearn(speciesID, id) {
			return fmt.Errorf("%w: %s cannot learn %s", game.ErrMoveNotLearnable, speciesID, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: %s", game.ErrDuplicateMove, id)
		}
		seen[id] = true
	}
	return nil
}

// CreateCreature builds a battle-ready creature from a species id and
// options. IDs are unique per process ("tatuta_1", "tatuta_2", ...).
func (e *Engine) CreateCreature(speciesID string, opts CreatureOptions) (*game.CreatureState, error) {
	species := e.tables.Species.Get(speciesID)
	if species == nil {
		return nil, fmt.Errorf("%w: %s", game.ErrUnknownSpecies, speciesID)
	}
	if err := opts.EVs.validate(); err != nil {
		return nil, err
	}
	if err := e.ValidateMoves(speciesID, opts.Moves); err != nil {
		return nil, err
	}

	level := opts.Level
	if level <= 0 {
		level = 50
	}
	const iv = 31
	stats := species.BaseStats
	maxHP := CalcStat(stats.HP, true, level, iv, opts.EVs.HP)

	ability := opts.Ability
	if ability == "" && len(species.Abilities) > 0 {
		ability = species.Abilities[0]
	}
	name := opts.Name
	if name == "" {
		name = species.DisplayName()
	}

	unique := atomic.AddUint64(&creatureCounter, 1)
	return &game.CreatureState{
		ID:        fmt.Sprintf("%s_%d", species.ID, unique),
		SpeciesID: species.ID,
		Name:      name,
		Level:     level,
		Types:     append([]string(nil), species.Types...),
		Moves:     append([]string(nil), opts.Moves...),
		Ability:   ability,
		Item:      opts.Item,
		HP:        maxHP,
		MaxHP:     maxHP,
		Attack:    CalcStat(stats.Attack, false, level, iv, opts.EVs.Atk),
		Defense:   CalcStat(stats.Defense, false, level, iv, opts.EVs.Def),
		SpAttack:  CalcStat(stats.SpAttack, false, level, iv, opts.EVs.Spa),
		SpDefense: CalcStat(stats.SpDefense, false, level, iv, opts.EVs.Spd),
		Speed:     CalcStat(stats.Speed, false, level, iv, opts.EVs.Spe),
	}, nil
}
