package data

import "testing"

func TestLoadDefaultTables(t *testing.T) {
	tables, err := LoadDefaultTables()
	if err != nil {
		t.Fatalf("failed to load tables: %v", err)
	}
	if tables.Moves == nil || tables.Species == nil || tables.Learnsets == nil || tables.Types == nil {
		t.Fatalf("incomplete tables: %+v", tables)
	}
	if len(tables.Moves.IDs()) == 0 {
		t.Fatalf("no moves loaded")
	}
	if len(tables.Species.IDs()) == 0 {
		t.Fatalf("no species loaded")
	}
}

// Every learnset entry must refer to a real species and a real move.
func TestLearnsetsAreConsistent(t *testing.T) {
	tables, err := LoadDefaultTables()
	if err != nil {
		t.Fatalf("failed to load tables: %v", err)
	}
	for _, speciesID := range tables.Species.IDs() {
		moves := tables.Learnsets.Moves(speciesID)
		if len(moves) == 0 {
			t.Errorf("species %s has no learnset", speciesID)
			continue
		}
		for _, moveID := range moves {
			if tables.Moves.Get(moveID) == nil {
				t.Errorf("species %s learns unknown move %s", speciesID, moveID)
			}
		}
	}
}

func TestMoveLookup(t *testing.T) {
	tables, err := LoadDefaultTables()
	if err != nil {
		t.Fatalf("failed to load tables: %v", err)
	}
	move := tables.Moves.Get("icicle_spear")
	if move == nil {
		t.Fatalf("icicle_spear missing")
	}
	if move.Type != "ice" || move.Category != "physical" {
		t.Fatalf("unexpected icicle_spear data: %+v", move)
	}
	if move.PP == nil || *move.PP != 30 {
		t.Fatalf("expected 30 PP, got %v", move.PP)
	}
	if len(move.Effects) != 1 || move.Effects[0].Type != "repeat" {
		t.Fatalf("expected a repeat effect, got %+v", move.Effects)
	}
	if tables.Moves.Get("no_such_move") != nil {
		t.Fatalf("unknown moves must return nil")
	}
}

func TestEffectAccessors(t *testing.T) {
	tables, err := LoadDefaultTables()
	if err != nil {
		t.Fatalf("failed to load tables: %v", err)
	}
	eff := tables.Moves.Get("icicle_spear").Effects[0]
	times := eff.Object("times")
	if times == nil {
		t.Fatalf("expected times object")
	}
	if v, ok := times["min"].(float64); !ok || v != 2 {
		t.Fatalf("expected min 2, got %v", times["min"])
	}
	inner := eff.Effects("effects")
	if len(inner) != 1 || inner[0].Type != "damage" {
		t.Fatalf("expected nested damage effect, got %+v", inner)
	}
	if power, ok := inner[0].Int("power"); !ok || power != 25 {
		t.Fatalf("expected power 25, got %d", power)
	}
}

func TestTypeChartEffectiveness(t *testing.T) {
	tc := NewTypeChart()
	cases := []struct {
		move    string
		targets []string
		want    float64
	}{
		{"electric", []string{"ground"}, 0},
		{"normal", []string{"ghost"}, 0},
		{"water", []string{"fire"}, 2},
		{"fire", []string{"water"}, 0.5},
		{"ice", []string{"grass", "flying"}, 4},
		{"fighting", []string{"normal"}, 2},
		{"", []string{"fire"}, 1},
	}
	for _, c := range cases {
		if got := tc.Effectiveness(c.move, c.targets); got != c.want {
			t.Errorf("%s vs %v: expected %v, got %v", c.move, c.targets, c.want, got)
		}
	}
}
