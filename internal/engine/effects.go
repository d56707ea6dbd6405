package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/Mori-kamiyama/nikopoke/internal/data"
	"github.com/Mori-kamiyama/nikopoke/internal/game"
)

// effectContext threads attacker/target identity, the move being resolved and
// the RNG through one effect compilation. The bypass flags are set by move
// tags and flag effects and stamped onto every produced event's meta.
type effectContext struct {
	attackerID string
	targetID   string
	move       *data.MoveData
	rng        RNG
	turn       int

	bypassProtect    bool
	ignoreImmunity   bool
	bypassSubstitute bool
	ignoreSubstitute bool
	isSound          bool
}

// compileEffects turns a declarative effect list into the event stream that
// the applier consumes. The state is read-only here; nothing is mutated.
func (e *Engine) compileEffects(state *game.BattleState, effects []data.Effect, ctx *effectContext) []Event {
	ctx.applyMoveTagFlags()
	ctx.applyEffectFlags(effects)

	var out []Event
	for i := range effects {
		eff := effects[i]
		switch eff.Type {
		case "bypass_protect", "ignore_immunity", "bypass_substitute", "ignore_substitute", "sound":
			// Consumed by applyEffectFlags.

		case "modify_damage":
			mult, ok := eff.Float("multiplier")
			if !ok || mult == 1.0 {
				continue
			}
			scaleLastDamage(out, mult)

		case "crit":
			mult, ok := eff.Float("multiplier")
			if !ok {
				mult, ok = eff.Float("mult")
			}
			if !ok {
				mult = 1.5
			}
			scaleLastDamage(out, mult)

		default:
			out = append(out, e.compileEffect(state, eff, ctx)...)
		}
	}
	stampMetaFlags(out, ctx)
	return out
}

func (ctx *effectContext) applyMoveTagFlags() {
	if ctx.move == nil {
		return
	}
	for _, tag := range ctx.move.Tags {
		switch tag {
		case "sound":
			ctx.isSound = true
		case "bypass_substitute", "bypass-substitute":
			ctx.bypassSubstitute = true
		}
	}
}

func (ctx *effectContext) applyEffectFlags(effects []data.Effect) {
	for i := range effects {
		switch effects[i].Type {
		case "bypass_protect":
			ctx.bypassProtect = true
		case "ignore_immunity":
			ctx.ignoreImmunity = true
		case "bypass_substitute":
			ctx.bypassSubstitute = true
		case "ignore_substitute":
			ctx.ignoreSubstitute = true
			ctx.bypassSubstitute = true
		case "sound":
			ctx.isSound = true
		}
	}
}

func stampMetaFlags(events []Event, ctx *effectContext) {
	if !(ctx.bypassProtect || ctx.ignoreImmunity || ctx.bypassSubstitute || ctx.ignoreSubstitute || ctx.isSound) {
		return
	}
	for i := range events {
		meta := events[i].Meta
		if meta == nil {
			meta = map[string]interface{}{}
		}
		if ctx.bypassProtect {
			meta["bypassProtect"] = true
		}
		if ctx.ignoreImmunity {
			meta["ignoreImmunity"] = true
		}
		if ctx.bypassSubstitute {
			meta["bypassSubstitute"] = true
		}
		if ctx.ignoreSubstitute {
			meta["ignoreSubstitute"] = true
		}
		if ctx.isSound {
			meta["sound"] = true
		}
		events[i].Meta = meta
	}
}

func scaleLastDamage(events []Event, mult float64) {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == EventDamage {
			events[i].Amount = int(math.Round(float64(events[i].Amount) * mult))
			return
		}
	}
}

// resolveTarget maps the declarative "target" value to a player id:
// "self" is the attacker, "target"/"all"/absent the defender, anything else a
// literal player id.
func resolveTarget(eff data.Effect, ctx *effectContext) string {
	switch v := eff.String("target"); v {
	case "self":
		return ctx.attackerID
	case "", "all", "target":
		return ctx.targetID
	default:
		return v
	}
}

func (e *Engine) compileEffect(state *game.BattleState, eff data.Effect, ctx *effectContext) []Event {
	switch eff.Type {
	case "damage":
		return e.compileDamage(state, eff, ctx)
	case "speed_based_damage":
		return e.compileSpeedBasedDamage(state, eff, ctx)
	case "protect":
		return e.compileProtect(state, ctx)
	case "apply_status":
		return e.compileApplyStatus(state, eff, ctx)
	case "remove_status":
		return []Event{{
			Type: EventRemoveStatus, TargetID: resolveTarget(eff, ctx),
			StatusID: eff.String("statusId"), Meta: effectMeta(ctx),
		}}
	case "replace_status":
		return e.compileReplaceStatus(eff, ctx)
	case "modify_stage":
		return e.compileModifyStage(eff, ctx)
	case "clear_stages":
		return []Event{{Type: EventClearStages, TargetID: resolveTarget(eff, ctx), Meta: effectMeta(ctx)}}
	case "reset_stages":
		return []Event{{Type: EventResetStages, TargetID: resolveTarget(eff, ctx), Meta: effectMeta(ctx)}}
	case "cure_all_status":
		return []Event{{Type: EventCureAllStatus, TargetID: resolveTarget(eff, ctx), Meta: effectMeta(ctx)}}
	case "disable_move":
		return e.compileDisableMove(eff, ctx)
	case "damage_ratio":
		return e.compileDamageRatio(state, eff, ctx)
	case "delay":
		return e.compileDelay(eff, ctx)
	case "over_time":
		return e.compileOverTime(eff, ctx)
	case "chance":
		return e.compileChance(state, eff, ctx)
	case "repeat":
		return e.compileRepeat(state, eff, ctx)
	case "conditional":
		return e.compileConditional(state, eff, ctx)
	case "log":
		if msg := eff.String("message"); msg != "" {
			return []Event{{Type: EventLog, Message: msg, Meta: effectMeta(ctx)}}
		}
		return nil
	case "apply_field_status":
		return []Event{{
			Type: EventApplyFieldStatus, StatusID: eff.String("statusId"),
			Duration: effectDuration(eff, ctx), Data: eff.Object("data"), Meta: effectMeta(ctx),
		}}
	case "remove_field_status":
		return []Event{{Type: EventRemoveFieldStatus, StatusID: eff.String("statusId"), Meta: effectMeta(ctx)}}
	case "random_move":
		pool := eff.String("pool")
		if pool == "" {
			pool = "all"
		}
		return []Event{{Type: EventRandomMove, PlayerID: ctx.attackerID, Pool: pool, Meta: effectMeta(ctx)}}
	case "apply_item":
		return e.compileApplyItem(state, eff, ctx)
	case "remove_item":
		return e.compileRemoveItem(state, eff, ctx)
	case "consume_item":
		return e.compileConsumeItem(state, eff, ctx)
	case "ohko":
		return e.compileOHKO(state, eff, ctx)
	case "self_switch", "replace_pokemon":
		return []Event{{Type: EventApplyStatus, TargetID: ctx.attackerID, StatusID: "pending_switch", Meta: effectMeta(ctx)}}
	case "force_switch":
		return e.compileForceSwitch(state, eff, ctx)
	case "lock_move":
		return []Event{{
			Type: EventApplyStatus, TargetID: resolveTarget(eff, ctx), StatusID: "lock_move",
			Duration: effectDuration(eff, ctx), Data: eff.Object("data"), Meta: effectMeta(ctx),
		}}
	case "run_away":
		return nil
	case "manual":
		if strings.Contains(eff.String("reason"), "Switching") {
			return []Event{{Type: EventApplyStatus, TargetID: ctx.attackerID, StatusID: "pending_switch", Meta: effectMeta(ctx)}}
		}
		return nil
	}
	return nil
}

func (e *Engine) compileProtect(state *game.BattleState, ctx *effectContext) []Event {
	active := state.Active(ctx.attackerID)
	if active == nil {
		return nil
	}
	count := 0
	if v, ok := active.VolatileData["protectSuccessCount"]; ok {
		if f, ok := v.(float64); ok {
			count = int(f)
		} else if n, ok := v.(int); ok {
			count = n
		}
	}
	// Consecutive uses halve the success rate each time.
	chance := math.Pow(0.5, float64(count))
	if ctx.rng() > chance {
		return []Event{
			LogEvent(fmt.Sprintf("%s's protection failed!", active.Name)),
			{Type: EventSetVolatile, TargetID: ctx.attackerID, Key: "protectSuccessCount", Value: float64(0)},
		}
	}
	duration := 1
	return []Event{
		{Type: EventSetVolatile, TargetID: ctx.attackerID, Key: "protectSuccessCount", Value: float64(count + 1)},
		{Type: EventApplyStatus, TargetID: ctx.attackerID, StatusID: "protect", Duration: &duration, Meta: effectMeta(ctx)},
	}
}

func (e *Engine) compileDamage(state *game.BattleState, eff data.Effect, ctx *effectContext) []Event {
	attacker := state.Active(ctx.attackerID)
	target := state.Active(ctx.targetID)
	if attacker == nil || target == nil {
		return nil
	}

	accuracy, ok := eff.Float("accuracy")
	if !ok {
		accuracy = 1.0
	}
	accuracy = runAbilityValueHook(state, ctx.attackerID, hookModifyAccuracy, accuracy,
		abilityValueContext{move: ctx.move, target: target, weather: Weather(state)})
	if ctx.rng() > accuracy {
		return []Event{{Type: EventLog, Message: "But it missed!", Meta: effectMeta(ctx)}}
	}

	power, _ := eff.Int("power")
	amount, isCrit, effectiveness := e.calcDamage(state, power, ctx, false)

	var events []Event
	if amount > 0 {
		if isCrit {
			events = append(events, LogEvent("A critical hit!"))
		}
		if effectiveness > 1 {
			events = append(events, LogEvent("It's super effective!"))
		} else if effectiveness > 0 && effectiveness < 1 {
			events = append(events, LogEvent("It's not very effective..."))
		}
	}
	events = append(events, Event{
		Type: EventDamage, TargetID: ctx.targetID, Amount: amount, Meta: damageMeta(ctx),
	})

	if attacker.Ability == "parental_bond" && amount > 0 {
		secondPower := int(math.Floor(float64(power) * 0.25))
		second, _, _ := e.calcDamage(state, secondPower, ctx, true)
		if second > 0 {
			meta := damageMeta(ctx)
			meta["parentalBond"] = true
			events = append(events, Event{
				Type: EventDamage, TargetID: ctx.targetID, Amount: second, Meta: meta,
			})
		}
	}
	return events
}

func (e *Engine) compileSpeedBasedDamage(state *game.BattleState, eff data.Effect, ctx *effectContext) []Event {
	userSpeed := e.computeSpeed(state, ctx.attackerID)
	targetSpeed := e.computeSpeed(state, ctx.targetID)
	ratio := math.Inf(1)
	if targetSpeed > 0 {
		ratio = userSpeed / targetSpeed
	}

	power, _ := eff.Int("basePower")
	type threshold struct {
		ratio float64
		power int
	}
	var thresholds []threshold
	if items, ok := eff.Data["thresholds"].([]interface{}); ok {
		for _, item := range items {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			r, _ := obj["ratio"].(float64)
			p, _ := obj["power"].(float64)
			thresholds = append(thresholds, threshold{ratio: r, power: int(p)})
		}
	}
	// Highest qualifying ratio wins.
	best := math.Inf(-1)
	for _, t := range thresholds {
		if ratio >= t.ratio && t.ratio > best {
			best = t.ratio
			power = t.power
		}
	}

	hit := data.Effect{Type: "damage", Data: game.CloneData(eff.Data)}
	if hit.Data == nil {
		hit.Data = map[string]interface{}{}
	}
	hit.Data["power"] = float64(power)
	return e.compileDamage(state, hit, ctx)
}

func (e *Engine) compileApplyStatus(state *game.BattleState, eff data.Effect, ctx *effectContext) []Event {
	statusID := eff.String("statusId")
	if statusID == "" {
		return nil
	}
	targetID := resolveTarget(eff, ctx)
	if statusID == "item" || statusID == "berry" {
		return e.compileGiveItem(state, eff, targetID, ctx)
	}

	if chance, ok := eff.Float("chance"); ok && ctx.rng() > chance {
		name := "someone"
		if attacker := state.Active(ctx.attackerID); attacker != nil {
			name = attacker.Name
		}
		return []Event{{
			Type:    EventLog,
			Message: fmt.Sprintf("%s's %s didn't take effect!", name, statusID),
			Meta:    effectMeta(ctx),
		}}
	}

	duration := effectDuration(eff, ctx)
	if statusID == "sleep" {
		// Sleep length is drawn when the sleeper first tries to act.
		duration = nil
	}

	statusData := game.CloneData(eff.Object("data"))
	if dataString(statusData, "sourceId") == "self" {
		statusData["sourceId"] = ctx.attackerID
	}
	if statusID == "substitute" {
		if _, ok := dataInt(statusData, "hp"); !ok {
			if target := state.Active(targetID); target != nil {
				if statusData == nil {
					statusData = map[string]interface{}{}
				}
				statusData["hp"] = float64(substituteHP(target.MaxHP))
			}
		}
	}

	return []Event{{
		Type:     EventApplyStatus,
		TargetID: targetID,
		StatusID: statusID,
		Duration: duration,
		Stack:    eff.Bool("stack", false),
		Data:     statusData,
		Meta:     effectMeta(ctx),
	}}
}

func (e *Engine) compileGiveItem(state *game.BattleState, eff data.Effect, targetID string, ctx *effectContext) []Event {
	target := state.Active(targetID)
	if target == nil {
		return nil
	}
	itemID := eff.String("itemId")
	if itemID == "" {
		itemID = dataString(eff.Object("data"), "itemId")
	}
	if itemID == "" {
		itemID = "item"
	}
	giver := "Someone"
	if attacker := state.Active(ctx.attackerID); attacker != nil {
		giver = attacker.Name
	}
	return []Event{
		{
			Type: EventApplyStatus, TargetID: targetID, StatusID: "item",
			Data: map[string]interface{}{"itemId": itemID}, Meta: effectMeta(ctx),
		},
		LogEvent(fmt.Sprintf("%s gave %s to %s.", giver, itemID, target.Name)),
	}
}

func (e *Engine) compileReplaceStatus(eff data.Effect, ctx *effectContext) []Event {
	from := eff.String("from")
	to := eff.String("to")
	targetID := resolveTarget(eff, ctx)
	if from == "active" && to == "pending_switch" {
		return []Event{{Type: EventApplyStatus, TargetID: targetID, StatusID: "pending_switch", Meta: effectMeta(ctx)}}
	}
	return []Event{{
		Type: EventReplaceStatus, TargetID: targetID, From: from, To: to,
		Duration: effectDuration(eff, ctx), Data: eff.Object("data"), Meta: effectMeta(ctx),
	}}
}

func (e *Engine) compileModifyStage(eff data.Effect, ctx *effectContext) []Event {
	stages := map[string]int{}
	for key, v := range eff.Object("stages") {
		if f, ok := v.(float64); ok {
			stages[key] = int(f)
		}
	}
	if len(stages) == 0 {
		return nil
	}
	return []Event{{
		Type:           EventModifyStage,
		TargetID:       resolveTarget(eff, ctx),
		Stages:         stages,
		Clamp:          eff.Bool("clamp", true),
		FailIfNoChange: eff.Bool("failIfNoChange", false),
		ShowEvent:      eff.Bool("showEvent", true),
		Meta:           effectMeta(ctx),
	}}
}

func (e *Engine) compileDisableMove(eff data.Effect, ctx *effectContext) []Event {
	moveID := eff.String("moveId")
	if moveID == "" {
		return nil
	}
	return []Event{{
		Type: EventApplyStatus, TargetID: resolveTarget(eff, ctx), StatusID: "disable_move",
		Duration: effectDuration(eff, ctx),
		Data:     map[string]interface{}{"moveId": moveID},
		Meta:     effectMeta(ctx),
	}}
}

func (e *Engine) compileDamageRatio(state *game.BattleState, eff data.Effect, ctx *effectContext) []Event {
	targetID := resolveTarget(eff, ctx)
	target := state.Active(targetID)
	if target == nil {
		return nil
	}
	var amount int
	var ratio float64
	if r, ok := eff.Float("ratioCurrentHp"); ok {
		ratio = r
		amount = int(math.Floor(float64(target.HP) * r))
	} else if r, ok := eff.Float("ratioMaxHp"); ok {
		ratio = r
		amount = int(math.Floor(float64(target.MaxHP) * r))
	} else {
		return nil
	}
	if amount == 0 && ratio != 0 {
		if ratio > 0 {
			amount = 1
		} else {
			amount = -1
		}
	}
	return []Event{{Type: EventDamage, TargetID: targetID, Amount: amount, Meta: damageMeta(ctx)}}
}

func (e *Engine) compileDelay(eff data.Effect, ctx *effectContext) []Event {
	afterTurns, ok := eff.Int("afterTurns")
	if !ok || afterTurns < 1 {
		afterTurns = 1
	}
	duration := afterTurns + 1
	statusData := map[string]interface{}{
		"triggerTurn": float64(ctx.turn + afterTurns),
		"sourceId":    ctx.attackerID,
		"targetId":    resolveTarget(eff, ctx),
		"effects":     eff.Data["effects"],
	}
	if timing := eff.String("timing"); timing != "" {
		statusData["timing"] = timing
	}
	return []Event{{
		Type: EventApplyStatus, TargetID: ctx.attackerID, StatusID: "delayed_effect",
		Duration: &duration, Data: statusData, Meta: effectMeta(ctx),
	}}
}

func (e *Engine) compileOverTime(eff data.Effect, ctx *effectContext) []Event {
	statusData := map[string]interface{}{
		"effects":  eff.Data["effects"],
		"sourceId": ctx.attackerID,
		"targetId": resolveTarget(eff, ctx),
	}
	if timing := eff.String("timing"); timing != "" {
		statusData["timing"] = timing
	}
	return []Event{{
		Type: EventApplyStatus, TargetID: ctx.attackerID, StatusID: "over_time_effect",
		Duration: effectDuration(eff, ctx), Data: statusData, Meta: effectMeta(ctx),
	}}
}

func (e *Engine) compileChance(state *game.BattleState, eff data.Effect, ctx *effectContext) []Event {
	p, ok := eff.Float("chance")
	if !ok {
		p = 1.0
	}
	if ctx.rng() <= p {
		return e.compileEffects(state, eff.Effects("then"), ctx)
	}
	return e.compileEffects(state, eff.Effects("else"), ctx)
}

func (e *Engine) compileRepeat(state *game.BattleState, eff data.Effect, ctx *effectContext) []Event {
	inner := eff.Effects("effects")
	if len(inner) == 0 {
		return nil
	}
	times := 1
	if n, ok := eff.Int("times"); ok {
		times = n
	} else if obj := eff.Object("times"); obj != nil {
		min, _ := dataInt(obj, "min")
		max, _ := dataInt(obj, "max")
		if max < min {
			max = min
		}
		if runAbilityCheckHook(state, ctx.attackerID, hookSkillLink, abilityCheckContext{}, false) {
			times = max
		} else {
			times = min + int(ctx.rng()*float64(max-min+1))
			if times > max {
				times = max
			}
		}
	}

	working := state
	var collected []Event
	hits := 0
	for i := 0; i < times; i++ {
		target := working.Active(ctx.targetID)
		if target == nil || target.HP <= 0 {
			break
		}
		events := e.compileEffects(working, inner, ctx)
		working = ApplyEvents(working, events)
		collected = append(collected, events...)
		hits++
	}
	if hits > 1 {
		collected = append(collected, LogEvent(fmt.Sprintf("Hit %d time(s)!", hits)))
	}
	return collected
}

func (e *Engine) compileConditional(state *game.BattleState, eff data.Effect, ctx *effectContext) []Event {
	if e.evaluateCondition(state, eff.Object("if"), ctx) {
		return e.compileEffects(state, eff.Effects("then"), ctx)
	}
	return e.compileEffects(state, eff.Effects("else"), ctx)
}

func (e *Engine) evaluateCondition(state *game.BattleState, cond map[string]interface{}, ctx *effectContext) bool {
	condType := dataString(cond, "type")
	attacker := state.Active(ctx.attackerID)
	target := state.Active(ctx.targetID)
	switch condType {
	case "target_has_status":
		if target == nil {
			return false
		}
		statusID := dataString(cond, "statusId")
		if statusID == "item" || statusID == "berry" {
			return creatureHasItem(target)
		}
		return target.HasStatus(statusID)
	case "user_has_status":
		if attacker == nil {
			return false
		}
		statusID := dataString(cond, "statusId")
		if statusID == "item" || statusID == "berry" {
			return creatureHasItem(attacker)
		}
		return attacker.HasStatus(statusID)
	case "target_hp_lt":
		if target == nil || target.MaxHP <= 0 {
			return false
		}
		value, _ := cond["value"].(float64)
		return float64(target.HP)/float64(target.MaxHP) < value
	case "field_has_status":
		return state.HasFieldStatus(dataString(cond, "statusId"))
	case "weather_is_sunny":
		return anyFieldStatus(state, "sunny_weather", "sunny_day", "sun")
	case "weather_is_raining":
		return anyFieldStatus(state, "rain", "rainy_weather", "rain_dance")
	case "weather_is_hail":
		return anyFieldStatus(state, "hail", "hail_weather", "snow")
	case "weather_is_sandstorm":
		return anyFieldStatus(state, "sandstorm", "sandstorm_weather")
	case "user_type":
		return attacker != nil && hasType(attacker.Types, dataString(cond, "typeId"))
	case "target_has_item":
		return target != nil && creatureHasItem(target)
	case "user_has_item":
		return attacker != nil && creatureHasItem(attacker)
	}
	return false
}

func anyFieldStatus(state *game.BattleState, ids ...string) bool {
	for _, id := range ids {
		if state.HasFieldStatus(id) {
			return true
		}
	}
	return false
}

// creatureHasItem reports whether the creature holds anything, via the item
// field or an item/berry status.
// HasHeldItem reports whether the creature holds an item, in either the
// scalar field or the item/berry status form.
func HasHeldItem(c *game.CreatureState) bool {
	return creatureHasItem(c)
}

func creatureHasItem(c *game.CreatureState) bool {
	if c.Item != "" {
		return true
	}
	for i := range c.Statuses {
		if c.Statuses[i].ID == "item" || c.Statuses[i].ID == "berry" {
			return true
		}
	}
	return false
}

// creatureItemID returns the held item's id, preferring the item field.
func creatureItemID(c *game.CreatureState) string {
	if c.Item != "" {
		return c.Item
	}
	for i := range c.Statuses {
		if c.Statuses[i].ID == "item" || c.Statuses[i].ID == "berry" {
			if id := dataString(c.Statuses[i].Data, "itemId"); id != "" {
				return id
			}
		}
	}
	return ""
}

func (e *Engine) compileApplyItem(state *game.BattleState, eff data.Effect, ctx *effectContext) []Event {
	targetID := resolveTarget(eff, ctx)
	target := state.Active(targetID)
	if target == nil {
		return nil
	}
	itemID := eff.String("itemId")
	if itemID == "" {
		itemID = "item"
	}
	return []Event{
		{
			Type: EventApplyStatus, TargetID: targetID, StatusID: "item",
			Data: map[string]interface{}{"itemId": itemID}, Meta: effectMeta(ctx),
		},
		LogEvent(fmt.Sprintf("%s obtained %s!", target.Name, itemID)),
	}
}

func (e *Engine) compileRemoveItem(state *game.BattleState, eff data.Effect, ctx *effectContext) []Event {
	targetID := resolveTarget(eff, ctx)
	target := state.Active(targetID)
	if target == nil {
		return nil
	}
	message := fmt.Sprintf("%s has no held item!", target.Name)
	if creatureHasItem(target) {
		message = fmt.Sprintf("%s lost its held item!", target.Name)
	}
	return []Event{
		LogEvent(message),
		{Type: EventRemoveStatus, TargetID: targetID, StatusID: "item"},
		{Type: EventRemoveStatus, TargetID: targetID, StatusID: "berry"},
	}
}

func (e *Engine) compileConsumeItem(state *game.BattleState, eff data.Effect, ctx *effectContext) []Event {
	targetID := resolveTarget(eff, ctx)
	target := state.Active(targetID)
	if target == nil {
		return nil
	}
	if !creatureHasItem(target) {
		return []Event{LogEvent(fmt.Sprintf("%s has no held item!", target.Name))}
	}
	itemID := creatureItemID(target)
	if itemID == "" {
		itemID = "item"
	}
	events := []Event{
		{Type: EventRemoveStatus, TargetID: targetID, StatusID: "item"},
		{Type: EventRemoveStatus, TargetID: targetID, StatusID: "berry"},
	}
	if eff.Bool("markBerryConsumed", false) || strings.Contains(itemID, "berry") {
		events = append(events, Event{Type: EventApplyStatus, TargetID: targetID, StatusID: "berry_consumed"})
	}
	events = append(events, LogEvent(fmt.Sprintf("%s's %s activated!", target.Name, itemID)))
	return events
}

func (e *Engine) compileOHKO(state *game.BattleState, eff data.Effect, ctx *effectContext) []Event {
	attacker := state.Active(ctx.attackerID)
	target := state.Active(ctx.targetID)
	if attacker == nil || target == nil {
		return nil
	}

	if eff.Bool("respectTypeImmunity", true) && !ctx.ignoreImmunity && ctx.move != nil && ctx.move.Type != "" {
		if e.tables.Types.Effectiveness(ctx.move.Type, target.Types) == 0 {
			return []Event{{Type: EventLog, Message: "It seems to have no effect...", Meta: effectMeta(ctx)}}
		}
	}

	if immune, ok := eff.Data["immuneTypes"].([]interface{}); ok {
		for _, t := range immune {
			if s, ok := t.(string); ok && hasType(target.Types, s) {
				return []Event{{
					Type:    EventLog,
					Message: fmt.Sprintf("%s is unaffected by %s...", target.Name, e.ohkoMoveName(eff, ctx)),
					Meta:    effectMeta(ctx),
				}}
			}
		}
	}

	if eff.Bool("failIfTargetHigherLevel", true) && attacker.Level < target.Level {
		return []Event{{
			Type:    EventLog,
			Message: fmt.Sprintf("%s seems to have no effect...", e.ohkoMoveName(eff, ctx)),
			Meta:    effectMeta(ctx),
		}}
	}

	accuracy, ok := eff.Float("baseAccuracy")
	if !ok {
		accuracy = 0.3
	}
	if eff.Bool("levelScaling", true) {
		accuracy += float64(attacker.Level-target.Level) / 100.0
	}
	if accuracy < 0 {
		accuracy = 0
	}
	if accuracy > 1 {
		accuracy = 1
	}
	accuracy = runAbilityValueHook(state, ctx.attackerID, hookModifyAccuracy, accuracy,
		abilityValueContext{move: ctx.move, target: target})
	if ctx.rng() > accuracy {
		return []Event{{Type: EventLog, Message: "But it missed!", Meta: effectMeta(ctx)}}
	}

	return []Event{
		LogEvent("It's a one-hit KO!"),
		{Type: EventDamage, TargetID: ctx.targetID, Amount: target.HP, Meta: damageMeta(ctx)},
	}
}

func (e *Engine) ohkoMoveName(eff data.Effect, ctx *effectContext) string {
	if ctx.move != nil {
		return ctx.move.DisplayName()
	}
	if name := eff.String("name"); name != "" {
		return name
	}
	return "the move"
}

func (e *Engine) compileForceSwitch(state *game.BattleState, eff data.Effect, ctx *effectContext) []Event {
	targetID := resolveTarget(eff, ctx)
	player := state.Player(targetID)
	if player == nil {
		return nil
	}
	var slots []int
	for i := range player.Team {
		if i != player.ActiveSlot && player.Team[i].HP > 0 {
			slots = append(slots, i)
		}
	}
	if len(slots) == 0 {
		return []Event{LogEvent(fmt.Sprintf("%s has no creature to switch to!", player.Name))}
	}
	idx := int(ctx.rng() * float64(len(slots)))
	if idx >= len(slots) {
		idx = len(slots) - 1
	}
	return []Event{{Type: EventSwitch, PlayerID: targetID, Slot: slots[idx], Meta: effectMeta(ctx)}}
}

// effectDuration reads an effect's duration, which is either a fixed number
// of turns or a {min, max} range resolved with one RNG draw.
func effectDuration(eff data.Effect, ctx *effectContext) *int {
	if obj := eff.Object("duration"); obj != nil {
		min, _ := dataInt(obj, "min")
		max, _ := dataInt(obj, "max")
		if max < min {
			max = min
		}
		d := min + int(ctx.rng()*float64(max-min+1))
		if d > max {
			d = max
		}
		return &d
	}
	if d, ok := eff.Int("duration"); ok {
		return &d
	}
	return nil
}

// effectMeta carries provenance: the move that produced the event and the
// acting player.
func effectMeta(ctx *effectContext) map[string]interface{} {
	meta := map[string]interface{}{"source": ctx.attackerID}
	if ctx.move != nil {
		meta["moveId"] = ctx.move.ID
	}
	return meta
}

func damageMeta(ctx *effectContext) map[string]interface{} {
	meta := effectMeta(ctx)
	meta["target"] = ctx.targetID
	meta["cancellable"] = true
	return meta
}
