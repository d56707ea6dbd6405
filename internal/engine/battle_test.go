package engine

import (
	"strings"
	"testing"

	"github.com/Mori-kamiyama/nikopoke/internal/data"
	"github.com/Mori-kamiyama/nikopoke/internal/game"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	tables, err := data.LoadDefaultTables()
	if err != nil {
		t.Fatalf("failed to load tables: %v", err)
	}
	return New(tables)
}

// script returns an RNG that yields the given values in order and 0.5 after
// they run out.
func script(values ...float64) RNG {
	i := 0
	return func() float64 {
		if i < len(values) {
			v := values[i]
			i++
			return v
		}
		return 0.5
	}
}

func testCreature(id, name string, types []string, moves ...string) game.CreatureState {
	return game.CreatureState{
		ID: id, SpeciesID: id, Name: name, Level: 50,
		Types: types, Moves: moves,
		HP: 200, MaxHP: 200,
		Attack: 100, Defense: 100, SpAttack: 100, SpDefense: 100, Speed: 100,
	}
}

func duel(a, b game.CreatureState) *game.BattleState {
	return &game.BattleState{
		Players: []game.PlayerState{
			{ID: "p1", Name: "Player One", Team: []game.CreatureState{a}},
			{ID: "p2", Name: "Player Two", Team: []game.CreatureState{b}},
		},
	}
}

func hasLogLine(state *game.BattleState, want string) bool {
	for _, line := range state.Log {
		if line == want {
			return true
		}
	}
	return false
}

func TestStepBattle_BasicDamage(t *testing.T) {
	eng := newTestEngine(t)
	state := duel(
		testCreature("a1", "Aqua", []string{"water"}, "tackle"),
		testCreature("b1", "Normie", []string{"normal"}, "tackle"),
	)

	next := eng.StepBattle(state, []game.Action{game.MoveAction("p1", "tackle", "p2")}, script(), DefaultStepOptions())

	// Level 50, power 40, 100/100 stats, 0.925 roll, no STAB: 17 damage.
	target := next.Active("p2")
	if got := state.Active("p2").HP - target.HP; got != 17 {
		t.Fatalf("expected 17 damage, got %d", got)
	}
	if !hasLogLine(next, "Aqua used Tackle!") {
		t.Fatalf("missing move announcement, log: %v", next.Log)
	}
	if !hasLogLine(next, "Normie took 17 damage!") {
		t.Fatalf("missing damage line, log: %v", next.Log)
	}
	if state.Active("p2").HP != 200 {
		t.Fatalf("input state was mutated")
	}
}

func TestStepBattle_MultiHitCountDraw(t *testing.T) {
	eng := newTestEngine(t)
	state := duel(
		testCreature("a1", "Spear", []string{"water"}, "icicle_spear"),
		testCreature("b1", "Normie", []string{"normal"}, "tackle"),
	)

	// Draws: order tiebreak, then the hit-count roll (0.9 -> 5 hits).
	rng := script(0.5, 0.9)
	next := eng.StepBattle(state, []game.Action{game.MoveAction("p1", "icicle_spear", "p2")}, rng, DefaultStepOptions())

	if !hasLogLine(next, "Hit 5 time(s)!") {
		t.Fatalf("expected 5 hits, log: %v", next.Log)
	}
	// Each hit lands 12 with the mid-range roll.
	if got := 200 - next.Active("p2").HP; got != 60 {
		t.Fatalf("expected 60 total damage, got %d", got)
	}
}

func TestStepBattle_SkillLinkMaximizesHits(t *testing.T) {
	eng := newTestEngine(t)
	attacker := testCreature("a1", "Spear", []string{"water"}, "icicle_spear")
	attacker.Ability = "skill_link"
	state := duel(attacker, testCreature("b1", "Normie", []string{"normal"}, "tackle"))

	// No hit-count draw happens: every value is the 0.5 default.
	next := eng.StepBattle(state, []game.Action{game.MoveAction("p1", "icicle_spear", "p2")}, script(), DefaultStepOptions())

	if !hasLogLine(next, "Hit 5 time(s)!") {
		t.Fatalf("skill_link should always hit 5 times, log: %v", next.Log)
	}
	if got := 200 - next.Active("p2").HP; got != 60 {
		t.Fatalf("expected 60 total damage, got %d", got)
	}
}

func TestStepBattle_SolarBeamChargesOneTurn(t *testing.T) {
	eng := newTestEngine(t)
	state := duel(
		testCreature("a1", "Leafy", []string{"water"}, "solar_beam"),
		testCreature("b1", "Normie", []string{"normal"}, "tackle"),
	)

	turn1 := eng.StepBattle(state, []game.Action{game.MoveAction("p1", "solar_beam", "p2")}, script(), DefaultStepOptions())
	if !hasLogLine(turn1, "absorbed light!") {
		t.Fatalf("expected charge log, got: %v", turn1.Log)
	}
	if turn1.Active("p2").HP != 200 {
		t.Fatalf("no damage expected on the charge turn, HP=%d", turn1.Active("p2").HP)
	}
	if !turn1.Active("p1").HasStatus("charging_solar_beam") {
		t.Fatalf("charging status missing after turn 1")
	}

	turn2 := eng.StepBattle(turn1, []game.Action{game.MoveAction("p1", "solar_beam", "p2")}, script(), DefaultStepOptions())
	if got := 200 - turn2.Active("p2").HP; got != 49 {
		t.Fatalf("expected 49 damage on release, got %d", got)
	}
	if turn2.Active("p1").HasStatus("charging_solar_beam") {
		t.Fatalf("charging status should be consumed")
	}
}

func TestStepBattle_PriorityBeatsSpeed(t *testing.T) {
	eng := newTestEngine(t)
	fast := testCreature("a1", "Fast", []string{"water"}, "tackle")
	fast.Speed = 200
	slow := testCreature("b1", "Slow", []string{"normal"}, "quick_attack")
	slow.Speed = 10
	state := duel(fast, slow)

	next := eng.StepBattle(state, []game.Action{
		game.MoveAction("p1", "tackle", "p2"),
		game.MoveAction("p2", "quick_attack", "p1"),
	}, script(), DefaultStepOptions())

	quick, tackle := -1, -1
	for i, line := range next.Log {
		if line == "Slow used Quick Attack!" {
			quick = i
		}
		if line == "Fast used Tackle!" {
			tackle = i
		}
	}
	if quick == -1 || tackle == -1 || quick > tackle {
		t.Fatalf("quick attack should resolve first, log: %v", next.Log)
	}
}

func TestStepBattle_ProtectBlocksDamage(t *testing.T) {
	eng := newTestEngine(t)
	state := duel(
		testCreature("a1", "Guard", []string{"water"}, "protect"),
		testCreature("b1", "Normie", []string{"normal"}, "tackle"),
	)

	next := eng.StepBattle(state, []game.Action{
		game.MoveAction("p1", "protect", "p2"),
		game.MoveAction("p2", "tackle", "p1"),
	}, script(), DefaultStepOptions())

	if next.Active("p1").HP != 200 {
		t.Fatalf("protect should block all damage, HP=%d", next.Active("p1").HP)
	}
	if !hasLogLine(next, "Guard protected itself!") {
		t.Fatalf("missing protect log: %v", next.Log)
	}
}

func TestStepBattle_BurnHalvesPhysicalDamage(t *testing.T) {
	eng := newTestEngine(t)
	attacker := testCreature("a1", "Burned", []string{"water"}, "tackle")
	attacker.Statuses = []game.Status{{ID: "burn"}}
	state := duel(attacker, testCreature("b1", "Normie", []string{"normal"}, "tackle"))

	next := eng.StepBattle(state, []game.Action{game.MoveAction("p1", "tackle", "p2")}, script(), DefaultStepOptions())

	if got := 200 - next.Active("p2").HP; got != 9 {
		t.Fatalf("burned physical hit should deal 9, got %d", got)
	}
}

func TestStepBattle_FaintEndsBattle(t *testing.T) {
	eng := newTestEngine(t)
	target := testCreature("b1", "Frail", []string{"normal"}, "tackle")
	target.HP = 1
	state := duel(testCreature("a1", "Aqua", []string{"water"}, "tackle"), target)

	next := eng.StepBattle(state, []game.Action{game.MoveAction("p1", "tackle", "p2")}, script(), DefaultStepOptions())

	if !hasLogLine(next, "Frail fainted!") {
		t.Fatalf("missing faint log: %v", next.Log)
	}
	if !IsBattleOver(next) {
		t.Fatalf("battle should be over")
	}
	if got := Winner(next); got != "p1" {
		t.Fatalf("expected p1 to win, got %q", got)
	}
}

func TestStepBattle_OutOfPP(t *testing.T) {
	eng := newTestEngine(t)
	attacker := testCreature("a1", "Empty", []string{"water"}, "tackle")
	attacker.MovePP = map[string]int{"tackle": 0}
	state := duel(attacker, testCreature("b1", "Normie", []string{"normal"}, "tackle"))

	next := eng.StepBattle(state, []game.Action{game.MoveAction("p1", "tackle", "p2")}, script(), DefaultStepOptions())

	if !hasLogLine(next, "Empty's Tackle is out of PP!") {
		t.Fatalf("missing PP log: %v", next.Log)
	}
	if next.Active("p2").HP != 200 {
		t.Fatalf("no damage expected without PP")
	}
}

func TestStepBattle_RecordsHistory(t *testing.T) {
	eng := newTestEngine(t)
	state := duel(
		testCreature("a1", "Aqua", []string{"water"}, "tackle"),
		testCreature("b1", "Normie", []string{"normal"}, "tackle"),
	)
	actions := []game.Action{
		game.MoveAction("p1", "tackle", "p2"),
		game.MoveAction("p2", "tackle", "p1"),
	}

	next := eng.StepBattle(state, actions, NewSeededRNG(3), DefaultStepOptions())

	if next.History == nil || len(next.History.Turns) != 1 {
		t.Fatalf("expected one recorded turn")
	}
	turn := next.History.Turns[0]
	if turn.Turn != 1 {
		t.Fatalf("expected turn 1, got %d", turn.Turn)
	}
	if len(turn.Actions) != 2 {
		t.Fatalf("expected both actions recorded, got %d", len(turn.Actions))
	}
	if len(turn.RNG) == 0 {
		t.Fatalf("expected RNG draws to be recorded")
	}
	if len(turn.Log) == 0 || !strings.HasPrefix(turn.Log[0], "--- Turn 1 ---") {
		t.Fatalf("expected turn header in recorded log, got %v", turn.Log)
	}
}

func TestStepBattle_BelchRequiresBerry(t *testing.T) {
	eng := newTestEngine(t)
	attacker := testCreature("a1", "Burpy", []string{"water"}, "belch")
	attacker.Item = "sitrus_berry"
	state := duel(attacker, testCreature("b1", "Normie", []string{"normal"}, "tackle"))

	turn1 := eng.StepBattle(state, []game.Action{game.MoveAction("p1", "belch", "p2")}, script(), DefaultStepOptions())
	if !hasLogLine(turn1, "But it failed!") {
		t.Fatalf("belch should fail before eating a berry, log: %v", turn1.Log)
	}
	if turn1.Active("p2").HP != 200 {
		t.Fatalf("no damage expected from the failed belch")
	}

	turn2 := eng.StepBattle(turn1, []game.Action{{PlayerID: "p1", Type: game.ActionUseItem}}, script(), DefaultStepOptions())
	user := turn2.Active("p1")
	if user.Item != "" {
		t.Fatalf("item should be consumed, still holding %q", user.Item)
	}
	if !user.HasStatus("berry_consumed") {
		t.Fatalf("expected berry_consumed after eating the berry")
	}

	turn3 := eng.StepBattle(turn2, []game.Action{game.MoveAction("p1", "belch", "p2")}, script(), DefaultStepOptions())
	if got := 200 - turn3.Active("p2").HP; got != 49 {
		t.Fatalf("expected 49 damage after the berry, got %d", got)
	}
}

func TestStepBattle_PoltergeistNeedsTargetItem(t *testing.T) {
	eng := newTestEngine(t)
	state := duel(
		testCreature("a1", "Spooky", []string{"ghost"}, "poltergeist"),
		testCreature("b1", "Holder", []string{"water"}, "tackle"),
	)

	turn1 := eng.StepBattle(state, []game.Action{game.MoveAction("p1", "poltergeist", "p2")}, script(), DefaultStepOptions())
	if !hasLogLine(turn1, "But it failed!") {
		t.Fatalf("poltergeist should fail against an empty-handed target, log: %v", turn1.Log)
	}
	if turn1.Active("p2").HP != 200 {
		t.Fatalf("no damage expected without a held item")
	}

	turn1.Active("p2").Item = "leftovers"
	turn2 := eng.StepBattle(turn1, []game.Action{game.MoveAction("p1", "poltergeist", "p2")}, script(), DefaultStepOptions())
	if turn2.Active("p2").HP >= 200 {
		t.Fatalf("poltergeist should connect once the target holds an item, HP=%d", turn2.Active("p2").HP)
	}
}

func TestStepBattle_KnockOffRemovesItem(t *testing.T) {
	eng := newTestEngine(t)
	holder := testCreature("b1", "Holder", []string{"normal"}, "tackle")
	holder.Item = "leftovers"
	state := duel(testCreature("a1", "Thief", []string{"water"}, "knock_off"), holder)

	next := eng.StepBattle(state, []game.Action{game.MoveAction("p1", "knock_off", "p2")}, script(), DefaultStepOptions())

	if got := 200 - next.Active("p2").HP; got != 27 {
		t.Fatalf("expected 27 damage, got %d", got)
	}
	if item := next.Active("p2").Item; item != "" {
		t.Fatalf("item should be knocked off, still holding %q", item)
	}
}

func TestStepBattle_ItemUseResolvesBeforeMoves(t *testing.T) {
	eng := newTestEngine(t)
	muncher := testCreature("a1", "Muncher", []string{"water"}, "tackle")
	muncher.Item = "sitrus_berry"
	muncher.Speed = 10
	fast := testCreature("b1", "Fast", []string{"normal"}, "tackle")
	fast.Speed = 200
	state := duel(muncher, fast)

	next := eng.StepBattle(state, []game.Action{
		{PlayerID: "p1", Type: game.ActionUseItem},
		game.MoveAction("p2", "tackle", "p1"),
	}, script(), DefaultStepOptions())

	item, move := -1, -1
	for i, line := range next.Log {
		if line == "Muncher used its sitrus_berry!" {
			item = i
		}
		if line == "Fast used Tackle!" {
			move = i
		}
	}
	if item == -1 || move == -1 || item > move {
		t.Fatalf("item use should resolve before moves despite the speed gap, log: %v", next.Log)
	}
}

func TestStepBattle_CritIgnoresAttackerDrops(t *testing.T) {
	eng := newTestEngine(t)
	attacker := testCreature("a1", "Ruthless", []string{"water"}, "tackle")
	attacker.Ability = "merciless"
	attacker.Stages.Atk = -6
	target := testCreature("b1", "Normie", []string{"normal"}, "tackle")
	target.Statuses = []game.Status{{ID: "poison"}}
	state := duel(attacker, target)

	next := eng.StepBattle(state, []game.Action{game.MoveAction("p1", "tackle", "p2")}, script(), DefaultStepOptions())

	// The guaranteed crit reads the attack as if the -6 stage weren't there:
	// 19 base, 0.925 roll, 1.5 crit = 26.
	if !hasLogLine(next, "Normie took 26 damage!") {
		t.Fatalf("crit should ignore the attacker's stat drops, log: %v", next.Log)
	}
}

func TestStepBattle_SlowStartWearsOff(t *testing.T) {
	eng := newTestEngine(t)
	attacker := testCreature("a1", "Sleepy", []string{"water"}, "tackle")
	attacker.Ability = "slow_start"
	state := duel(attacker, testCreature("b1", "Normie", []string{"normal"}, "tackle"))

	// Fresh on the field: physical attack is halved.
	next := eng.StepBattle(state, []game.Action{game.MoveAction("p1", "tackle", "p2")}, script(), DefaultStepOptions())
	if !hasLogLine(next, "Normie took 9 damage!") {
		t.Fatalf("expected halved damage while slow start is active, log: %v", next.Log)
	}
	if turns, _ := dataInt(next.Active("p1").AbilityData, "slowStartTurns"); turns != 1 {
		t.Fatalf("expected the field-turn counter at 1, got %d", turns)
	}

	// Five completed turns later the penalty is gone.
	worn := state.Clone()
	worn.Active("p1").AbilityData = map[string]interface{}{"slowStartTurns": float64(5)}
	next = eng.StepBattle(worn, []game.Action{game.MoveAction("p1", "tackle", "p2")}, script(), DefaultStepOptions())
	if !hasLogLine(next, "Normie took 17 damage!") {
		t.Fatalf("expected full damage once slow start wore off, log: %v", next.Log)
	}
}

func TestStepBattle_GutsNeedsPrimaryStatus(t *testing.T) {
	eng := newTestEngine(t)

	marked := testCreature("a1", "Gutsy", []string{"water"}, "tackle")
	marked.Ability = "guts"
	marked.Statuses = []game.Status{{ID: "berry_consumed"}}
	state := duel(marked, testCreature("b1", "Normie", []string{"normal"}, "tackle"))
	next := eng.StepBattle(state, []game.Action{game.MoveAction("p1", "tackle", "p2")}, script(), DefaultStepOptions())
	if !hasLogLine(next, "Normie took 17 damage!") {
		t.Fatalf("volatile markers should not trigger guts, log: %v", next.Log)
	}

	burned := testCreature("a1", "Gutsy", []string{"water"}, "tackle")
	burned.Ability = "guts"
	burned.Statuses = []game.Status{{ID: "burn"}}
	state = duel(burned, testCreature("b1", "Normie", []string{"normal"}, "tackle"))
	next = eng.StepBattle(state, []game.Action{game.MoveAction("p1", "tackle", "p2")}, script(), DefaultStepOptions())
	if !hasLogLine(next, "Normie took 25 damage!") {
		t.Fatalf("burn should trigger guts without the attack penalty, log: %v", next.Log)
	}
}

func TestStepBattle_GrowlLogsStageDrop(t *testing.T) {
	eng := newTestEngine(t)
	state := duel(
		testCreature("a1", "Howler", []string{"water"}, "growl"),
		testCreature("b1", "Normie", []string{"normal"}, "tackle"),
	)

	next := eng.StepBattle(state, []game.Action{game.MoveAction("p1", "growl", "p2")}, script(), DefaultStepOptions())

	if got := next.Active("p2").Stages.Atk; got != -1 {
		t.Fatalf("expected atk stage -1, got %d", got)
	}
	if !hasLogLine(next, "Normie's atk fell!") {
		t.Fatalf("missing stage-change line, log: %v", next.Log)
	}
}

func TestStepBattle_PendingSwitchBlocksMoves(t *testing.T) {
	eng := newTestEngine(t)
	stuck := testCreature("a1", "Stuck", []string{"water"}, "tackle")
	stuck.Statuses = []game.Status{{ID: "pending_switch"}}
	state := duel(stuck, testCreature("b1", "Normie", []string{"normal"}, "tackle"))
	state.Players[0].Team = append(state.Players[0].Team, testCreature("a2", "Bench", []string{"water"}, "tackle"))

	next := eng.StepBattle(state, []game.Action{game.MoveAction("p1", "tackle", "p2")}, script(), DefaultStepOptions())
	if !hasLogLine(next, "Stuck must switch out!") {
		t.Fatalf("expected switch demand, log: %v", next.Log)
	}

	next = eng.StepBattle(state, []game.Action{game.SwitchAction("p1", 1)}, script(), DefaultStepOptions())
	if !hasLogLine(next, "Player One sent out Bench!") {
		t.Fatalf("expected switch log: %v", next.Log)
	}
	if next.Players[0].ActiveSlot != 1 {
		t.Fatalf("expected active slot 1, got %d", next.Players[0].ActiveSlot)
	}
}
