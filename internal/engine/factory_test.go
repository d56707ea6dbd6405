package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/Mori-kamiyama/nikopoke/internal/game"
)

func TestCalcStat(t *testing.T) {
	// Base 100, level 50, 31 IVs, no EVs.
	if got := CalcStat(100, true, 50, 31, 0); got != 175 {
		t.Fatalf("HP stat: expected 175, got %d", got)
	}
	if got := CalcStat(100, false, 50, 31, 0); got != 120 {
		t.Fatalf("non-HP stat: expected 120, got %d", got)
	}
	// 252 EVs add 63 points to the formula's inner term.
	if got := CalcStat(100, false, 50, 31, 252); got != 152 {
		t.Fatalf("maxed EV stat: expected 152, got %d", got)
	}
}

func TestCreateCreature_Defaults(t *testing.T) {
	eng := newTestEngine(t)
	c, err := eng.CreateCreature("tatuta", CreatureOptions{Moves: []string{"tackle", "icicle_spear"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Level != 50 {
		t.Fatalf("expected default level 50, got %d", c.Level)
	}
	if c.Ability != "skill_link" {
		t.Fatalf("expected first species ability, got %q", c.Ability)
	}
	if c.Name == "" || c.HP != c.MaxHP || c.MaxHP <= 0 {
		t.Fatalf("bad creature defaults: %+v", c)
	}
	if !strings.HasPrefix(c.ID, "tatuta_") {
		t.Fatalf("expected species-prefixed id, got %q", c.ID)
	}
}

func TestCreateCreature_UniqueIDs(t *testing.T) {
	eng := newTestEngine(t)
	a, err := eng.CreateCreature("tatuta", CreatureOptions{Moves: []string{"tackle"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := eng.CreateCreature("tatuta", CreatureOptions{Moves: []string{"tackle"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("expected unique ids, both %q", a.ID)
	}
}

func TestCreateCreature_ValidationErrors(t *testing.T) {
	eng := newTestEngine(t)

	if _, err := eng.CreateCreature("missingno", CreatureOptions{}); !errors.Is(err, game.ErrUnknownSpecies) {
		t.Fatalf("expected ErrUnknownSpecies, got %v", err)
	}
	if _, err := eng.CreateCreature("tatuta", CreatureOptions{Moves: []string{"no_such_move"}}); !errors.Is(err, game.ErrUnknownMove) {
		t.Fatalf("expected ErrUnknownMove, got %v", err)
	}
	// hypnosis belongs to kagemaru, not tatuta.
	if _, err := eng.CreateCreature("tatuta", CreatureOptions{Moves: []string{"hypnosis"}}); !errors.Is(err, game.ErrMoveNotLearnable) {
		t.Fatalf("expected ErrMoveNotLearnable, got %v", err)
	}
	if _, err := eng.CreateCreature("tatuta", CreatureOptions{Moves: []string{"tackle", "tackle"}}); !errors.Is(err, game.ErrDuplicateMove) {
		t.Fatalf("expected ErrDuplicateMove, got %v", err)
	}
	if _, err := eng.CreateCreature("tatuta", CreatureOptions{EVs: EVStats{HP: 300}}); !errors.Is(err, game.ErrInvalidEvBudget) {
		t.Fatalf("expected ErrInvalidEvBudget for a 300 EV stat, got %v", err)
	}
	if _, err := eng.CreateCreature("tatuta", CreatureOptions{EVs: EVStats{HP: 252, Atk: 252, Spe: 252}}); !errors.Is(err, game.ErrInvalidEvBudget) {
		t.Fatalf("expected ErrInvalidEvBudget for a 756 EV total, got %v", err)
	}
}
