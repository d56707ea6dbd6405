package engine

import (
	"fmt"

	"github.com/Mori-kamiyama/nikopoke/internal/data"
	"github.com/Mori-kamiyama/nikopoke/internal/game"
	"golang.org/x/exp/slices"
)

// Hook identifiers. Every ability implements a fixed subset of these; the
// dispatch below is static, no runtime registration.
const (
	hookCheckStatusImmunity = "onCheckStatusImmunity"
	hookImmunity            = "onImmunity"
	hookCheckItem           = "onCheckItem"
	hookTrap                = "onTrap"
	hookSkillLink           = "onSkillLink"
	hookSwitchIn            = "onSwitchIn"
	hookBeforeAction        = "onBeforeAction"
	hookTurnStart           = "onTurnStart"
	hookTurnEnd             = "onTurnEnd"
	hookModifyPower         = "onModifyPower"
	hookDefensivePower      = "onDefensivePower"
	hookModifyOffense       = "onModifyOffense"
	hookModifyDefense       = "onModifyDefense"
	hookModifyAccuracy      = "onModifyAccuracy"
	hookModifyCritChance    = "onModifyCritChance"
	hookModifySpeed         = "onModifySpeed"
	hookModifyPriority      = "onModifyPriority"
)

// Weather identifiers stored in the global field list.
const (
	WeatherSun  = "sun"
	WeatherRain = "rain"
)

type abilityValueContext struct {
	move     *data.MoveData
	category string
	target   *game.CreatureState
	weather  string
}

type abilityCheckContext struct {
	statusID string
	kind     string
	targetID string
}

type abilityHookContext struct {
	rng    RNG
	action *game.Action
	move   *data.MoveData
}

type abilityHookResult struct {
	state  *game.BattleState // nil when the hook left the state untouched
	events []Event
}

// runAbilityValueHook passes a numeric value (power, accuracy, speed, ...)
// through the active creature's ability.
func runAbilityValueHook(state *game.BattleState, playerID, hook string, value float64, ctx abilityValueContext) float64 {
	active := state.Active(playerID)
	if active == nil || active.Ability == "" {
		return value
	}
	moveType := ""
	if ctx.move != nil {
		moveType = ctx.move.Type
	}
	switch {
	case active.Ability == "thick_fat" && hook == hookDefensivePower:
		if moveType == "fire" || moveType == "ice" {
			return value * 0.5
		}
	case active.Ability == "fur_coat" && hook == hookModifyDefense:
		if ctx.category == "physical" {
			return value * 2.0
		}
	case active.Ability == "slow_start" && hook == hookModifyOffense:
		if ctx.category == "physical" && slowStartActive(active) {
			return value * 0.5
		}
	case active.Ability == "slow_start" && hook == hookModifySpeed:
		if slowStartActive(active) {
			return value * 0.5
		}
	case active.Ability == "sharpness" && hook == hookModifyPower:
		if ctx.move != nil && ctx.move.HasTag("slicing") {
			return value * 1.5
		}
	case active.Ability == "technician" && hook == hookModifyPower:
		if value <= 60.0 {
			return value * 1.5
		}
	case active.Ability == "steelworker" && hook == hookModifyPower:
		if moveType == "steel" {
			return value * 1.5
		}
	case active.Ability == "hustle" && hook == hookModifyPower:
		if ctx.category == "physical" {
			return value * 1.5
		}
	case active.Ability == "hustle" && hook == hookModifyAccuracy:
		if ctx.category == "physical" {
			return value * 0.8
		}
	case active.Ability == "pure_power" && hook == hookModifyPower:
		if ctx.category == "physical" {
			return value * 2.0
		}
	case active.Ability == "guts" && hook == hookModifyPower:
		if ctx.category == "physical" && hasPrimaryStatus(active) {
			return value * 1.5
		}
	case active.Ability == "merciless" && hook == hookModifyCritChance:
		if ctx.target != nil && (ctx.target.HasStatus("poison") || ctx.target.HasStatus("toxic")) {
			return 999.0
		}
	case active.Ability == "super_luck" && hook == hookModifyCritChance:
		return value + 1.0
	case active.Ability == "compound_eyes" && hook == hookModifyAccuracy:
		return value * 1.3
	case active.Ability == "quick_feet" && hook == hookModifySpeed:
		if hasPrimaryStatus(active) {
			return value * 1.5
		}
	case active.Ability == "swift_swim" && hook == hookModifySpeed:
		if ctx.weather == WeatherRain {
			return value * 2.0
		}
	case active.Ability == "chlorophyll" && hook == hookModifySpeed:
		if ctx.weather == WeatherSun {
			return value * 2.0
		}
	case active.Ability == "prankster" && hook == hookModifyPriority:
		if ctx.move != nil && ctx.move.IsStatusMove() {
			return value + 1.0
		}
	}
	return value
}

// runAbilityCheckHook answers a yes/no ability question (immunity, item
// usability, trapping).
func runAbilityCheckHook(state *game.BattleState, playerID, hook string, ctx abilityCheckContext, def bool) bool {
	active := state.Active(playerID)
	if active == nil || active.Ability == "" {
		return def
	}
	switch {
	case active.Ability == "immunity" && hook == hookCheckStatusImmunity:
		return ctx.statusID == "poison" || ctx.statusID == "toxic"
	case active.Ability == "insomnia" && hook == hookCheckStatusImmunity:
		return ctx.statusID == "sleep"
	case active.Ability == "own_tempo" && hook == hookCheckStatusImmunity:
		return ctx.statusID == "confusion"
	case active.Ability == "own_tempo" && hook == hookImmunity,
		active.Ability == "clear_body" && hook == hookImmunity,
		active.Ability == "white_smoke" && hook == hookImmunity,
		active.Ability == "hyper_cutter" && hook == hookImmunity:
		return ctx.kind == "intimidate"
	case active.Ability == "klutz" && hook == hookCheckItem,
		active.Ability == "unnerve" && hook == hookCheckItem:
		return false
	case active.Ability == "shadow_tag" && hook == hookTrap:
		if ctx.targetID == "" || ctx.targetID == playerID {
			return false
		}
		if target := state.Active(ctx.targetID); target != nil && target.Ability == "shadow_tag" {
			return false
		}
		return true
	case active.Ability == "skill_link" && hook == hookSkillLink:
		return true
	}
	return def
}

// modifyStagesWithAbility rewrites a stage delta map through the target's
// ability (Contrary flips signs, Simple doubles).
func modifyStagesWithAbility(state *game.BattleState, targetID string, stages map[string]int) map[string]int {
	out := make(map[string]int, len(stages))
	for k, v := range stages {
		out[k] = v
	}
	active := state.Active(targetID)
	if active == nil {
		return out
	}
	switch active.Ability {
	case "contrary":
		for k, v := range out {
			out[k] = -v
		}
	case "simple":
		for k, v := range out {
			out[k] = v * 2
		}
	}
	return out
}

// runAbilityHooks fires a lifecycle hook of one player's ability.
func runAbilityHooks(state *game.BattleState, playerID, hook string, ctx abilityHookContext) abilityHookResult {
	active := state.Active(playerID)
	if active == nil || active.Ability == "" {
		return abilityHookResult{}
	}
	switch {
	case active.Ability == "intimidate" && hook == hookSwitchIn:
		if dataBool(active.AbilityData, "intimidateUsed") {
			return abilityHookResult{}
		}
		next := markAbilityUsed(state, playerID, "intimidateUsed")
		var events []Event
		for i := range next.Players {
			other := &next.Players[i]
			if other.ID == playerID {
				continue
			}
			if runAbilityCheckHook(next, other.ID, hookImmunity, abilityCheckContext{kind: "intimidate"}, false) {
				continue
			}
			events = append(events, Event{
				Type:     EventModifyStage,
				TargetID: other.ID,
				Stages:   map[string]int{"atk": -1},
				Clamp:    true,
				Meta:     map[string]interface{}{"source": playerID},
			})
		}
		return abilityHookResult{state: next, events: events}

	case active.Ability == "download" && hook == hookSwitchIn:
		if dataBool(active.AbilityData, "downloadUsed") {
			return abilityHookResult{}
		}
		opp := state.Opponent(playerID)
		if opp == nil {
			return abilityHookResult{}
		}
		target := state.Active(opp.ID)
		if target == nil {
			return abilityHookResult{}
		}
		raise := "spa"
		if target.Defense < target.SpDefense {
			raise = "atk"
		}
		next := markAbilityUsed(state, playerID, "downloadUsed")
		return abilityHookResult{state: next, events: []Event{{
			Type:     EventModifyStage,
			TargetID: playerID,
			Stages:   map[string]int{raise: 1},
			Clamp:    true,
			Meta:     map[string]interface{}{"source": playerID},
		}}}

	case active.Ability == "drought" && hook == hookSwitchIn:
		if dataBool(active.AbilityData, "droughtUsed") {
			return abilityHookResult{}
		}
		next := markAbilityUsed(state, playerID, "droughtUsed")
		next = setWeather(next, WeatherSun, 5)
		return abilityHookResult{state: next, events: []Event{
			LogEvent("The sunlight turned harsh!"),
		}}

	case active.Ability == "moody" && hook == hookTurnEnd:
		stats := []string{"atk", "def", "spa", "spd", "spe"}
		up := int(ctx.rng()*float64(len(stats))) % len(stats)
		down := up
		for down == up {
			down = int(ctx.rng()*float64(len(stats))) % len(stats)
		}
		return abilityHookResult{events: []Event{{
			Type:     EventModifyStage,
			TargetID: playerID,
			Stages:   map[string]int{stats[up]: 2, stats[down]: -1},
			Clamp:    true,
			Meta:     map[string]interface{}{"source": playerID},
		}}}

	case active.Ability == "slow_start" && hook == hookTurnEnd:
		if !slowStartActive(active) {
			return abilityHookResult{}
		}
		turns, _ := dataInt(active.AbilityData, "slowStartTurns")
		next := state.Clone()
		creature := next.Active(playerID)
		if creature.AbilityData == nil {
			creature.AbilityData = map[string]interface{}{}
		}
		creature.AbilityData["slowStartTurns"] = float64(turns + 1)
		if turns+1 >= slowStartDuration {
			return abilityHookResult{state: next, events: []Event{
				LogEvent(fmt.Sprintf("%s finally got its act together!", active.Name)),
			}}
		}
		return abilityHookResult{state: next}

	case active.Ability == "libero" && hook == hookBeforeAction:
		if ctx.action == nil || ctx.action.MoveID == "" || ctx.move == nil || ctx.move.Type == "" {
			return abilityHookResult{}
		}
		if active.HasStatus("sleep") || active.HasStatus("freeze") {
			return abilityHookResult{}
		}
		if dataBool(active.AbilityData, "liberoUsed") {
			return abilityHookResult{}
		}
		next := state.Clone()
		creature := next.Active(playerID)
		creature.Types = []string{ctx.move.Type}
		if creature.AbilityData == nil {
			creature.AbilityData = map[string]interface{}{}
		}
		creature.AbilityData["liberoUsed"] = true
		return abilityHookResult{state: next, events: []Event{
			LogEvent(fmt.Sprintf("%s became the %s type!", active.Name, ctx.move.Type)),
		}}

	case active.Ability == "receiver" && hook == hookSwitchIn:
		return copyFaintedAbility(state, playerID, "receiver")
	case active.Ability == "power_of_alchemy" && hook == hookSwitchIn:
		return copyFaintedAbility(state, playerID, "power_of_alchemy")
	}
	return abilityHookResult{}
}

// runAllAbilityHooks fires a lifecycle hook for every player in order,
// threading the state between them.
func runAllAbilityHooks(state *game.BattleState, hook string, ctx abilityHookContext) (*game.BattleState, []Event) {
	working := state
	var events []Event
	ids := make([]string, 0, len(state.Players))
	for i := range state.Players {
		ids = append(ids, state.Players[i].ID)
	}
	for _, id := range ids {
		result := runAbilityHooks(working, id, hook, ctx)
		if result.state != nil {
			working = result.state
		}
		events = append(events, result.events...)
	}
	return working, events
}

// eventTargetsCreature reports whether the event type addresses a creature.
func eventTargetsCreature(t string) bool {
	switch t {
	case EventDamage, EventApplyStatus, EventRemoveStatus, EventReplaceStatus,
		EventModifyStage, EventClearStages, EventResetStages, EventCureAllStatus:
		return true
	}
	return false
}

func isReflectableStatusEvent(t string) bool {
	switch t {
	case EventApplyStatus, EventRemoveStatus, EventReplaceStatus,
		EventModifyStage, EventClearStages, EventResetStages, EventCureAllStatus:
		return true
	}
	return false
}

// applyAbilityEventModifiers runs the interceptor phase (magic_bounce,
// lightning_rod, soundproof) and then the reactor phase (stamina,
// cotton_down, berserk, competitive, opportunist) over an event list.
func applyAbilityEventModifiers(state *game.BattleState, events []Event, moves *data.MoveDatabase) []Event {
	var output []Event
	for _, ev := range events {
		current := []Event{ev}
		if eventTargetsCreature(ev.Type) {
			if target := state.Active(ev.TargetID); target != nil {
				if target.Ability == "magic_bounce" {
					if replaced := tryMagicBounce(state, ev, moves); replaced != nil {
						current = replaced
					}
				}
				if target.Ability == "lightning_rod" {
					if replaced := tryLightningRod(state, ev, moves); replaced != nil {
						current = replaced
					}
				}
			}
		}
		for _, processed := range current {
			if eventTargetsCreature(processed.Type) {
				if target := state.Active(processed.TargetID); target != nil && target.Ability == "soundproof" {
					if processed.MetaBool("sound") {
						output = append(output, LogEvent(fmt.Sprintf("%s is unaffected by sound moves!", target.Name)))
						continue
					}
				}
			}
			output = append(output, processed)
			for i := range state.Players {
				player := &state.Players[i]
				reactor := state.Active(player.ID)
				if reactor == nil {
					continue
				}
				switch reactor.Ability {
				case "stamina":
					output = append(output, afterStamina(processed, player.ID)...)
				case "cotton_down":
					output = append(output, afterCottonDown(state, processed, player.ID)...)
				case "berserk":
					output = append(output, afterBerserk(state, processed, player.ID)...)
				case "competitive":
					output = append(output, afterCompetitive(processed, player.ID)...)
				case "opportunist":
					output = append(output, afterOpportunist(processed, player.ID)...)
				}
			}
		}
	}
	return output
}

func tryMagicBounce(state *game.BattleState, ev Event, moves *data.MoveDatabase) []Event {
	sourceID := ev.MetaString("source")
	if sourceID == "" || sourceID == ev.TargetID || ev.MetaBool("bounced") {
		return nil
	}
	moveID := ev.MetaString("moveId")
	if moveID == "" {
		return nil
	}
	move := moves.Get(moveID)
	if move == nil || !isReflectableStatusEvent(ev.Type) || !move.IsStatusMove() {
		return nil
	}
	target := state.Active(ev.TargetID)
	name := ev.TargetID
	if target != nil {
		name = target.Name
	}
	bounced := ev.Clone()
	bounced.TargetID = sourceID
	bounced = bounced.WithMeta("source", ev.TargetID)
	bounced = bounced.WithMeta("bounced", true)
	return []Event{
		LogEvent(fmt.Sprintf("%s bounced the move back!", name)),
		bounced,
	}
}

func tryLightningRod(state *game.BattleState, ev Event, moves *data.MoveDatabase) []Event {
	moveID := ev.MetaString("moveId")
	if moveID == "" {
		return nil
	}
	move := moves.Get(moveID)
	if move == nil || move.Type != "electric" {
		return nil
	}
	target := state.Active(ev.TargetID)
	name := ev.TargetID
	if target != nil {
		name = target.Name
	}
	return []Event{
		{
			Type:     EventModifyStage,
			TargetID: ev.TargetID,
			Stages:   map[string]int{"spa": 1},
			Clamp:    true,
		},
		LogEvent(fmt.Sprintf("%s drew in the electric attack!", name)),
	}
}

func afterStamina(ev Event, playerID string) []Event {
	if ev.Type != EventDamage || ev.TargetID != playerID {
		return nil
	}
	return []Event{{
		Type:     EventModifyStage,
		TargetID: playerID,
		Stages:   map[string]int{"def": 1},
		Clamp:    true,
	}}
}

func afterCottonDown(state *game.BattleState, ev Event, playerID string) []Event {
	if ev.Type != EventDamage || ev.TargetID != playerID {
		return nil
	}
	var events []Event
	for i := range state.Players {
		other := &state.Players[i]
		if other.ID == playerID {
			continue
		}
		events = append(events, Event{
			Type:     EventModifyStage,
			TargetID: other.ID,
			Stages:   map[string]int{"spe": -1},
			Clamp:    true,
		})
	}
	return events
}

func afterBerserk(state *game.BattleState, ev Event, playerID string) []Event {
	if ev.Type != EventDamage || ev.TargetID != playerID {
		return nil
	}
	target := state.Active(playerID)
	if target == nil {
		return nil
	}
	half := target.MaxHP / 2
	if target.HP > half && target.HP-ev.Amount <= half {
		return []Event{{
			Type:     EventModifyStage,
			TargetID: playerID,
			Stages:   map[string]int{"spa": 1},
			Clamp:    true,
		}}
	}
	return nil
}

func afterCompetitive(ev Event, playerID string) []Event {
	if ev.Type != EventModifyStage || ev.TargetID != playerID || ev.MetaBool("competitive") {
		return nil
	}
	// Only opponent-inflicted drops trigger the boost; self-caused drops
	// (moody, stat-drop recoil moves) do not.
	if src := ev.MetaString("source"); src == "" || src == playerID {
		return nil
	}
	dropped := false
	for _, v := range ev.Stages {
		if v < 0 {
			dropped = true
			break
		}
	}
	if !dropped {
		return nil
	}
	return []Event{{
		Type:     EventModifyStage,
		TargetID: playerID,
		Stages:   map[string]int{"spa": 2},
		Clamp:    true,
		Meta:     map[string]interface{}{"competitive": true},
	}}
}

func afterOpportunist(ev Event, playerID string) []Event {
	if ev.Type != EventModifyStage || ev.TargetID == playerID || ev.MetaBool("opportunist") {
		return nil
	}
	boosts := map[string]int{}
	for k, v := range ev.Stages {
		if v > 0 {
			boosts[k] = v
		}
	}
	if len(boosts) == 0 {
		return nil
	}
	return []Event{{
		Type:     EventModifyStage,
		TargetID: playerID,
		Stages:   boosts,
		Clamp:    true,
		Meta:     map[string]interface{}{"opportunist": true},
	}}
}

// Weather returns the active weather id ("sun", "rain") or "".
func Weather(state *game.BattleState) string {
	for i := range state.Field.Global {
		switch state.Field.Global[i].ID {
		case WeatherSun:
			return WeatherSun
		case WeatherRain:
			return WeatherRain
		}
	}
	return ""
}

// weatherIDs lists every field status that counts as weather, data aliases
// included. Only one of them may be active at a time.
var weatherIDs = []string{
	WeatherSun, "sunny_weather", "sunny_day",
	WeatherRain, "rainy_weather", "rain_dance",
	"hail", "hail_weather", "snow",
	"sandstorm", "sandstorm_weather",
}

func isWeatherID(id string) bool {
	return slices.Contains(weatherIDs, id)
}

func clearWeather(state *game.BattleState) {
	state.Field.Global = slices.DeleteFunc(state.Field.Global, func(f game.FieldEffect) bool {
		return isWeatherID(f.ID)
	})
}

func setWeather(state *game.BattleState, id string, turns int) *game.BattleState {
	next := state.Clone()
	clearWeather(next)
	next.Field.Global = append(next.Field.Global, game.FieldEffect{ID: id, RemainingTurns: &turns})
	return next
}

// slowStartDuration is how many completed turns on the field the penalty
// lasts. The counter lives in AbilityData, so switching out resets it.
const slowStartDuration = 5

func slowStartActive(c *game.CreatureState) bool {
	turns, _ := dataInt(c.AbilityData, "slowStartTurns")
	return turns < slowStartDuration
}

func markAbilityUsed(state *game.BattleState, playerID, key string) *game.BattleState {
	next := state.Clone()
	if creature := next.Active(playerID); creature != nil {
		if creature.AbilityData == nil {
			creature.AbilityData = map[string]interface{}{}
		}
		creature.AbilityData[key] = true
	}
	return next
}

// copiedAbilityBanList are abilities receiver/power_of_alchemy never copy.
var copiedAbilityBanList = []string{
	"receiver", "power_of_alchemy", "trace", "wonder_guard", "forecast",
	"flower_gift", "multitype", "illusion", "imposter", "stance_change",
	"power_construct", "schooling", "comatose", "shields_down", "disguise",
	"battle_bond", "rk_system", "ice_face", "gulp_missile", "hung_switch",
	"commander", "quark_drive", "protosynthesis",
}

func copyFaintedAbility(state *game.BattleState, playerID, abilityID string) abilityHookResult {
	player := state.Player(playerID)
	if player == nil || player.LastFaintedAbility == "" {
		return abilityHookResult{}
	}
	last := player.LastFaintedAbility
	if last == abilityID || slices.Contains(copiedAbilityBanList, last) {
		return abilityHookResult{}
	}
	next := state.Clone()
	creature := next.Active(playerID)
	if creature == nil || creature.Ability != abilityID {
		return abilityHookResult{}
	}
	if creature.AbilityData == nil {
		creature.AbilityData = map[string]interface{}{}
	}
	if _, ok := creature.AbilityData["originalAbility"]; !ok {
		creature.AbilityData["originalAbility"] = creature.Ability
	}
	creature.Ability = last
	creature.AbilityData["copiedAbility"] = last
	return abilityHookResult{state: next, events: []Event{
		LogEvent(fmt.Sprintf("%s copied %s!", player.Name, last)),
	}}
}
