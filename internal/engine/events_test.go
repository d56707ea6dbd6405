package engine

import (
	"testing"

	"github.com/Mori-kamiyama/nikopoke/internal/game"
)

func TestApplyEvent_DamageAndHeal(t *testing.T) {
	state := duel(
		testCreature("a1", "Aqua", []string{"water"}, "tackle"),
		testCreature("b1", "Normie", []string{"normal"}, "tackle"),
	)

	next := ApplyEvent(state, DamageEvent("p2", 30))
	if next.Active("p2").HP != 170 {
		t.Fatalf("expected 170 HP, got %d", next.Active("p2").HP)
	}
	if state.Active("p2").HP != 200 {
		t.Fatalf("input state was mutated")
	}

	next = ApplyEvent(next, DamageEvent("p2", -50))
	// Healing never exceeds max HP.
	if next.Active("p2").HP != 200 {
		t.Fatalf("expected 200 HP after heal, got %d", next.Active("p2").HP)
	}
}

func TestApplyEvent_FaintSetsPendingSwitch(t *testing.T) {
	state := duel(
		testCreature("a1", "Aqua", []string{"water"}, "tackle"),
		testCreature("b1", "Frail", []string{"normal"}, "tackle"),
	)
	state.Players[1].Team[0].Ability = "stamina"

	next := ApplyEvent(state, DamageEvent("p2", 500))
	target := next.Active("p2")
	if target.HP != 0 {
		t.Fatalf("HP should floor at 0, got %d", target.HP)
	}
	if !target.HasStatus("pending_switch") {
		t.Fatalf("fainted creature should be pending a switch")
	}
	if next.Players[1].LastFaintedAbility != "stamina" {
		t.Fatalf("expected fainted ability to be remembered, got %q", next.Players[1].LastFaintedAbility)
	}
}

func TestApplyEvent_SubstituteIntercepts(t *testing.T) {
	defender := testCreature("b1", "Dolly", []string{"normal"}, "tackle")
	defender.Statuses = []game.Status{{ID: "substitute", Data: map[string]interface{}{"hp": float64(50)}}}
	state := duel(testCreature("a1", "Aqua", []string{"water"}, "tackle"), defender)

	next := ApplyEvent(state, Event{
		Type: EventDamage, TargetID: "p2", Amount: 30,
		Meta: map[string]interface{}{"source": "p1"},
	})
	if next.Active("p2").HP != 200 {
		t.Fatalf("substitute should absorb the hit, HP=%d", next.Active("p2").HP)
	}
	sub := next.Active("p2").FindStatus("substitute")
	if sub == nil {
		t.Fatalf("substitute should survive a 30 damage hit")
	}
	if hp, _ := dataInt(sub.Data, "hp"); hp != 20 {
		t.Fatalf("expected substitute at 20 HP, got %d", hp)
	}

	next = ApplyEvent(next, Event{
		Type: EventDamage, TargetID: "p2", Amount: 30,
		Meta: map[string]interface{}{"source": "p1"},
	})
	if next.Active("p2").FindStatus("substitute") != nil {
		t.Fatalf("substitute should break")
	}
	if next.Active("p2").HP != 200 {
		t.Fatalf("breaking hit should not spill over, HP=%d", next.Active("p2").HP)
	}
}

func TestApplyEvent_SelfDamageBypassesSubstitute(t *testing.T) {
	defender := testCreature("b1", "Dolly", []string{"normal"}, "tackle")
	defender.Statuses = []game.Status{{ID: "substitute", Data: map[string]interface{}{"hp": float64(50)}}}
	state := duel(testCreature("a1", "Aqua", []string{"water"}, "tackle"), defender)

	next := ApplyEvent(state, Event{
		Type: EventDamage, TargetID: "p2", Amount: 10,
		Meta: map[string]interface{}{"source": "p2"},
	})
	if next.Active("p2").HP != 190 {
		t.Fatalf("self damage should skip the substitute, HP=%d", next.Active("p2").HP)
	}
}

func TestApplyEvent_StatusDeduplicates(t *testing.T) {
	state := duel(
		testCreature("a1", "Aqua", []string{"water"}, "tackle"),
		testCreature("b1", "Normie", []string{"normal"}, "tackle"),
	)

	next := ApplyEvent(state, Event{Type: EventApplyStatus, TargetID: "p2", StatusID: "burn"})
	next = ApplyEvent(next, Event{Type: EventApplyStatus, TargetID: "p2", StatusID: "burn"})

	count := 0
	for _, s := range next.Active("p2").Statuses {
		if s.ID == "burn" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected a single burn, got %d", count)
	}
	if !hasLogLine(next, "Normie already has burn!") {
		t.Fatalf("expected duplicate log: %v", next.Log)
	}
}

func TestApplyEvent_StatusImmunityAbility(t *testing.T) {
	defender := testCreature("b1", "Wakeful", []string{"normal"}, "tackle")
	defender.Ability = "insomnia"
	state := duel(testCreature("a1", "Aqua", []string{"water"}, "tackle"), defender)

	next := ApplyEvent(state, Event{Type: EventApplyStatus, TargetID: "p2", StatusID: "sleep"})
	if next.Active("p2").HasStatus("sleep") {
		t.Fatalf("insomnia should block sleep")
	}
	if !hasLogLine(next, "Wakeful is unaffected by sleep!") {
		t.Fatalf("expected immunity log: %v", next.Log)
	}
}

func TestApplyEvent_ModifyStageClamps(t *testing.T) {
	state := duel(
		testCreature("a1", "Aqua", []string{"water"}, "tackle"),
		testCreature("b1", "Normie", []string{"normal"}, "tackle"),
	)
	state.Players[0].Team[0].Stages.Atk = 5

	next := ApplyEvent(state, Event{
		Type: EventModifyStage, TargetID: "p1",
		Stages: map[string]int{"atk": 3}, Clamp: true,
	})
	if got := next.Active("p1").Stages.Atk; got != 6 {
		t.Fatalf("expected atk stage clamped at 6, got %d", got)
	}
}

func TestApplyEvent_SwitchClearsVolatiles(t *testing.T) {
	active := testCreature("a1", "Lead", []string{"water"}, "tackle")
	active.Stages.Atk = 2
	active.Statuses = []game.Status{{ID: "burn"}, {ID: "confusion"}}
	active.VolatileData = map[string]interface{}{"lastMove": "tackle"}
	state := duel(active, testCreature("b1", "Normie", []string{"normal"}, "tackle"))
	state.Players[0].Team = append(state.Players[0].Team, testCreature("a2", "Bench", []string{"water"}, "tackle"))

	next := ApplyEvent(state, Event{Type: EventSwitch, PlayerID: "p1", Slot: 1})
	if next.Players[0].ActiveSlot != 1 {
		t.Fatalf("expected active slot 1, got %d", next.Players[0].ActiveSlot)
	}
	outgoing := &next.Players[0].Team[0]
	if outgoing.Stages.Atk != 0 {
		t.Fatalf("stages should reset on switch-out")
	}
	if !outgoing.HasStatus("burn") {
		t.Fatalf("primary status should survive the switch")
	}
	if outgoing.HasStatus("confusion") {
		t.Fatalf("volatile status should be dropped on switch-out")
	}
	if outgoing.VolatileData != nil {
		t.Fatalf("volatile data should be cleared")
	}
}

func TestApplyEvent_FieldStatusReplaces(t *testing.T) {
	state := duel(
		testCreature("a1", "Aqua", []string{"water"}, "tackle"),
		testCreature("b1", "Normie", []string{"normal"}, "tackle"),
	)
	dur := 5
	next := ApplyEvent(state, Event{Type: EventApplyFieldStatus, StatusID: "sunny_weather", Duration: &dur})
	next = ApplyEvent(next, Event{Type: EventApplyFieldStatus, StatusID: "sunny_weather", Duration: &dur})
	count := 0
	for _, f := range next.Field.Global {
		if f.ID == "sunny_weather" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("re-applying weather should replace, got %d entries", count)
	}
}

func TestApplyEvent_NewWeatherDisplacesOld(t *testing.T) {
	state := duel(
		testCreature("a1", "Aqua", []string{"water"}, "tackle"),
		testCreature("b1", "Normie", []string{"normal"}, "tackle"),
	)
	dur := 5
	next := ApplyEvent(state, Event{Type: EventApplyFieldStatus, StatusID: "sunny_weather", Duration: &dur})
	next = ApplyEvent(next, Event{Type: EventApplyFieldStatus, StatusID: "rain", Duration: &dur})

	var weather []string
	for _, f := range next.Field.Global {
		if isWeatherID(f.ID) {
			weather = append(weather, f.ID)
		}
	}
	if len(weather) != 1 || weather[0] != "rain" {
		t.Fatalf("new weather should displace the old one, got %v", weather)
	}

	// Non-weather field effects coexist with weather.
	next = ApplyEvent(next, Event{Type: EventApplyFieldStatus, StatusID: "grassy_terrain", Duration: &dur})
	next = ApplyEvent(next, Event{Type: EventApplyFieldStatus, StatusID: "sun", Duration: &dur})
	hasTerrain := false
	for _, f := range next.Field.Global {
		if f.ID == "grassy_terrain" {
			hasTerrain = true
		}
	}
	if !hasTerrain {
		t.Fatalf("weather should not displace terrain, field: %+v", next.Field.Global)
	}
}

func TestCompetitive_OnlyOpponentDropsTrigger(t *testing.T) {
	eng := newTestEngine(t)
	reactor := testCreature("a1", "Proud", []string{"water"}, "tackle")
	reactor.Ability = "competitive"
	state := duel(reactor, testCreature("b1", "Normie", []string{"normal"}, "tackle"))

	drop := func(source string) []Event {
		return applyAbilityEventModifiers(state, []Event{{
			Type:     EventModifyStage,
			TargetID: "p1",
			Stages:   map[string]int{"atk": -1},
			Clamp:    true,
			Meta:     map[string]interface{}{"source": source},
		}}, eng.Tables().Moves)
	}

	triggered := func(events []Event) bool {
		for i := range events {
			if events[i].MetaBool("competitive") {
				return true
			}
		}
		return false
	}

	if !triggered(drop("p2")) {
		t.Fatalf("opponent-inflicted drop should trigger competitive")
	}
	if triggered(drop("p1")) {
		t.Fatalf("self-inflicted drop should not trigger competitive")
	}
}
