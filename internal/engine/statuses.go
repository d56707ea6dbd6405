package engine

import (
	"fmt"

	"github.com/Mori-kamiyama/nikopoke/internal/data"
	"github.com/Mori-kamiyama/nikopoke/internal/game"
)

// Status and field lifecycle hooks beyond the ability set.
const (
	hookStatusDamage     = "onStatusDamage"
	hookLeechSeed        = "onLeechSeed"
	hookBindDamage       = "onBindDamage"
	hookItemEndTurn      = "onItemEndTurn"
	hookWishResolve      = "onWishResolve"
	hookWeatherEnd       = "onWeatherEnd"
	hookGrassyTerrain    = "onGrassyTerrainHeal"
	hookEventTransform   = "onEventTransform"
)

type statusHookContext struct {
	rng    RNG
	action *game.Action
	move   *data.MoveData
}

type statusHookResult struct {
	state          *game.BattleState // nil when unchanged
	events         []Event
	preventAction  bool
	overrideAction *game.Action
	transforms     []EventTransform
}

// runStatusHooks fires a hook for every status on the player's active
// creature, threading state between statuses.
func (e *Engine) runStatusHooks(state *game.BattleState, playerID, hook string, ctx statusHookContext) statusHookResult {
	active := state.Active(playerID)
	if active == nil {
		return statusHookResult{state: state}
	}
	working := state
	out := statusHookResult{}
	statuses := make([]game.Status, len(active.Statuses))
	copy(statuses, active.Statuses)
	for i := range statuses {
		result := e.matchStatus(working, playerID, hook, &statuses[i], ctx)
		if result.state != nil {
			working = result.state
		}
		out.events = append(out.events, result.events...)
		if result.preventAction {
			out.preventAction = true
		}
		if result.overrideAction != nil {
			out.overrideAction = result.overrideAction
		}
		out.transforms = append(out.transforms, result.transforms...)
	}
	out.state = working
	return out
}

// runFieldHooks fires a hook for every global field effect.
func (e *Engine) runFieldHooks(state *game.BattleState, hook string, ctx statusHookContext) statusHookResult {
	working := state
	out := statusHookResult{}
	effects := make([]game.FieldEffect, len(state.Field.Global))
	copy(effects, state.Field.Global)
	for i := range effects {
		result := e.matchFieldEffect(working, hook, &effects[i], ctx)
		if result.state != nil {
			working = result.state
		}
		out.events = append(out.events, result.events...)
		out.transforms = append(out.transforms, result.transforms...)
	}
	out.state = working
	return out
}

func (e *Engine) matchFieldEffect(state *game.BattleState, hook string, effect *game.FieldEffect, ctx statusHookContext) statusHookResult {
	if effect.ID == "grassy_terrain" && hook == hookGrassyTerrain {
		var events []Event
		for i := range state.Players {
			active := state.Active(state.Players[i].ID)
			if active == nil || active.HP <= 0 || active.HP >= active.MaxHP {
				continue
			}
			if hasType(active.Types, "flying") || active.Ability == "levitate" {
				continue
			}
			heal := active.MaxHP / 16
			if heal < 1 {
				heal = 1
			}
			events = append(events,
				LogEvent(fmt.Sprintf("%s is healed by the grassy terrain!", active.Name)),
				DamageEvent(state.Players[i].ID, -heal),
			)
		}
		return statusHookResult{events: events}
	}
	pseudo := game.Status{ID: effect.ID, RemainingTurns: effect.RemainingTurns, Data: effect.Data}
	return e.matchStatus(state, "", hook, &pseudo, ctx)
}

func (e *Engine) matchStatus(state *game.BattleState, playerID, hook string, status *game.Status, ctx statusHookContext) statusHookResult {
	switch status.ID {
	case "burn":
		if hook == hookStatusDamage {
			active := state.Active(playerID)
			damage := maxInt(active.MaxHP/16, 1)
			return statusHookResult{events: []Event{
				DamageEvent(playerID, damage),
				LogEvent(fmt.Sprintf("%s is hurt by its burn!", active.Name)),
			}}
		}

	case "poison":
		if hook == hookStatusDamage {
			active := state.Active(playerID)
			damage := maxInt(active.MaxHP/8, 1)
			return statusHookResult{events: []Event{
				DamageEvent(playerID, damage),
				LogEvent(fmt.Sprintf("%s is hurt by poison!", active.Name)),
			}}
		}

	case "paralysis":
		if hook == hookBeforeAction {
			if ctx.rng() < 0.25 {
				active := state.Active(playerID)
				return statusHookResult{preventAction: true, events: []Event{
					LogEvent(fmt.Sprintf("%s is paralyzed! It can't move!", active.Name)),
				}}
			}
		}

	case "sleep":
		if hook == hookBeforeAction {
			next := state.Clone()
			active := next.Active(playerID)
			st := active.FindStatus("sleep")
			if st == nil {
				return statusHookResult{}
			}
			turns, ok := dataInt(st.Data, "turns")
			if !ok {
				// 2-4 turns, drawn the first time the sleeper tries to act.
				turns = 2 + int(ctx.rng()*3.0)
			}
			turns--
			if turns <= 0 {
				return statusHookResult{events: []Event{
					{Type: EventRemoveStatus, TargetID: playerID, StatusID: "sleep"},
					LogEvent(fmt.Sprintf("%s woke up!", active.Name)),
				}}
			}
			if st.Data == nil {
				st.Data = map[string]interface{}{}
			}
			st.Data["turns"] = float64(turns)
			return statusHookResult{state: next, preventAction: true, events: []Event{
				LogEvent(fmt.Sprintf("%s is fast asleep.", active.Name)),
			}}
		}

	case "freeze":
		if hook == hookBeforeAction {
			active := state.Active(playerID)
			if ctx.rng() < 0.2 {
				return statusHookResult{events: []Event{
					{Type: EventRemoveStatus, TargetID: playerID, StatusID: "freeze"},
					LogEvent(fmt.Sprintf("%s thawed out!", active.Name)),
				}}
			}
			return statusHookResult{preventAction: true, events: []Event{
				LogEvent(fmt.Sprintf("%s is frozen solid!", active.Name)),
			}}
		}

	case "confusion":
		if hook == hookBeforeAction {
			active := state.Active(playerID)
			if ctx.rng() < 0.33 {
				damage := maxInt(int(float64(active.MaxHP)*0.1), 1)
				return statusHookResult{preventAction: true, events: []Event{
					LogEvent(fmt.Sprintf("%s hurt itself in its confusion!", active.Name)),
					DamageEvent(playerID, damage),
				}}
			}
		}

	case "flinch":
		if hook == hookBeforeAction {
			active := state.Active(playerID)
			return statusHookResult{preventAction: true, events: []Event{
				LogEvent(fmt.Sprintf("%s flinched and couldn't move!", active.Name)),
			}}
		}

	case "protect":
		if hook == hookEventTransform {
			active := state.Active(playerID)
			var transforms []EventTransform
			for _, from := range []string{EventDamage, EventApplyStatus, EventModifyStage} {
				transforms = append(transforms, EventTransform{
					Kind:              "replace_event",
					From:              from,
					TargetID:          playerID,
					ExceptSourceID:    playerID,
					RequireAbsentMeta: "bypassProtect",
					To:                []Event{LogEvent(fmt.Sprintf("%s protected itself!", active.Name))},
				})
			}
			return statusHookResult{transforms: transforms}
		}

	case "substitute":
		if hook == hookEventTransform {
			active := state.Active(playerID)
			var transforms []EventTransform
			for _, from := range []string{EventApplyStatus, EventModifyStage} {
				transforms = append(transforms, EventTransform{
					Kind:              "replace_event",
					From:              from,
					TargetID:          playerID,
					ExceptSourceID:    playerID,
					RequireAbsentMeta: "bypassSubstitute",
					To:                []Event{LogEvent(fmt.Sprintf("%s's substitute took the hit!", active.Name))},
				})
			}
			return statusHookResult{transforms: transforms}
		}

	case "lock_move", "charging_solar_beam":
		if hook == hookBeforeAction && ctx.action != nil {
			mode := dataString(status.Data, "mode")
			moveID := dataString(status.Data, "moveId")
			if mode == "force_last_move" && moveID == "" {
				active := state.Active(playerID)
				if last, ok := active.VolatileData["lastMove"].(string); ok {
					moveID = last
				} else {
					moveID = lastMoveFromHistory(state, playerID)
				}
			}
			if moveID == "" || (mode != "force_specific" && mode != "force_last_move") {
				return statusHookResult{}
			}
			override := ctx.action.Clone()
			override.MoveID = moveID
			result := statusHookResult{overrideAction: &override}
			if status.ID == "lock_move" {
				active := state.Active(playerID)
				msg := fmt.Sprintf("%s has to use %s!", active.Name, moveID)
				if mode == "force_last_move" {
					msg = fmt.Sprintf("%s can only use %s!", active.Name, moveID)
				}
				result.events = []Event{LogEvent(msg)}
			}
			return result
		}

	case "disable_move":
		if hook == hookBeforeAction && ctx.action != nil {
			moveID := dataString(status.Data, "moveId")
			if moveID != "" && ctx.action.MoveID == moveID {
				active := state.Active(playerID)
				return statusHookResult{preventAction: true, events: []Event{
					LogEvent(fmt.Sprintf("%s's %s is disabled!", active.Name, moveID)),
				}}
			}
		}

	case "encore":
		if hook == hookBeforeAction && ctx.action != nil {
			moveID := dataString(status.Data, "moveId")
			if moveID != "" && ctx.action.MoveID != moveID {
				override := ctx.action.Clone()
				override.MoveID = moveID
				active := state.Active(playerID)
				return statusHookResult{overrideAction: &override, events: []Event{
					LogEvent(fmt.Sprintf("%s received an encore!", active.Name)),
				}}
			}
		}

	case "taunt":
		if hook == hookBeforeAction && ctx.move != nil && ctx.move.Category == "status" {
			return statusHookResult{preventAction: true, events: []Event{
				LogEvent(fmt.Sprintf("%s can't use %s after the taunt!",
					state.Active(playerID).Name, ctx.move.DisplayName())),
			}}
		}

	case "leech_seed":
		if hook == hookLeechSeed {
			sourceID := dataString(status.Data, "sourceId")
			if sourceID == "" {
				return statusHookResult{}
			}
			planter := state.Active(sourceID)
			if planter == nil || planter.HP <= 0 {
				return statusHookResult{}
			}
			active := state.Active(playerID)
			damage := maxInt(active.MaxHP/8, 1)
			return statusHookResult{events: []Event{
				LogEvent(fmt.Sprintf("%s's health is sapped by Leech Seed!", active.Name)),
				DamageEvent(playerID, damage),
				DamageEvent(sourceID, -damage),
			}}
		}

	case "curse":
		if hook == hookTurnEnd {
			active := state.Active(playerID)
			damage := maxInt(active.MaxHP/4, 1)
			return statusHookResult{events: []Event{
				LogEvent(fmt.Sprintf("%s is afflicted by the curse!", active.Name)),
				DamageEvent(playerID, damage),
			}}
		}

	case "yawn":
		if hook == hookTurnEnd {
			turns, ok := dataInt(status.Data, "turns")
			if !ok {
				turns = 1
			}
			if turns > 0 {
				next := state.Clone()
				if st := next.Active(playerID).FindStatus("yawn"); st != nil {
					if st.Data == nil {
						st.Data = map[string]interface{}{}
					}
					st.Data["turns"] = float64(turns - 1)
				}
				return statusHookResult{state: next, events: []Event{
					LogEvent(fmt.Sprintf("%s is getting drowsy...", state.Active(playerID).Name)),
				}}
			}
			duration := 2 + int(ctx.rng()*3.0)
			return statusHookResult{events: []Event{
				{Type: EventRemoveStatus, TargetID: playerID, StatusID: "yawn"},
				{Type: EventApplyStatus, TargetID: playerID, StatusID: "sleep", Duration: &duration},
			}}
		}

	case "delayed_effect":
		if hook == hookTurnStart || hook == hookTurnEnd {
			return e.resolveStoredEffects(state, playerID, status, hook, true, ctx)
		}

	case "over_time_effect":
		if hook == hookTurnEnd {
			return e.resolveStoredEffects(state, playerID, status, hook, false, ctx)
		}

	case "wish":
		if hook == hookWishResolve {
			trigger, _ := dataInt(status.Data, "triggerTurn")
			if state.Turn < trigger {
				return statusHookResult{}
			}
			heal, _ := dataInt(status.Data, "healAmount")
			active := state.Active(playerID)
			if active == nil || active.HP <= 0 {
				return statusHookResult{}
			}
			return statusHookResult{events: []Event{
				LogEvent(fmt.Sprintf("%s's wish came true!", active.Name)),
				DamageEvent(playerID, -heal),
				{Type: EventRemoveStatus, TargetID: playerID, StatusID: "wish"},
			}}
		}

	case "bind":
		if hook == hookBindDamage {
			active := state.Active(playerID)
			damage := maxInt(active.MaxHP/8, 1)
			moveName := dataString(status.Data, "moveName")
			if moveName == "" {
				moveName = "Bind"
			}
			return statusHookResult{events: []Event{
				LogEvent(fmt.Sprintf("%s is hurt by %s!", active.Name, moveName)),
				DamageEvent(playerID, damage),
			}}
		}

	case "leftovers":
		if hook == hookItemEndTurn {
			active := state.Active(playerID)
			if active == nil || active.HP <= 0 || active.HP >= active.MaxHP {
				return statusHookResult{}
			}
			heal := maxInt(active.MaxHP/16, 1)
			return statusHookResult{events: []Event{
				LogEvent(fmt.Sprintf("%s restored a little HP using its Leftovers!", active.Name)),
				DamageEvent(playerID, -heal),
			}}
		}

	case "black_sludge":
		if hook == hookItemEndTurn {
			active := state.Active(playerID)
			if active == nil || active.HP <= 0 {
				return statusHookResult{}
			}
			if hasType(active.Types, "poison") {
				if active.HP >= active.MaxHP {
					return statusHookResult{}
				}
				heal := maxInt(active.MaxHP/16, 1)
				return statusHookResult{events: []Event{
					LogEvent(fmt.Sprintf("%s restored a little HP using its Black Sludge!", active.Name)),
					DamageEvent(playerID, -heal),
				}}
			}
			damage := maxInt(active.MaxHP/8, 1)
			return statusHookResult{events: []Event{
				LogEvent(fmt.Sprintf("%s is hurt by its Black Sludge!", active.Name)),
				DamageEvent(playerID, damage),
			}}
		}
	}
	return statusHookResult{}
}

// resolveStoredEffects re-runs the effect compiler over effects stored inside
// a delayed_effect / over_time_effect status and applies the result directly.
func (e *Engine) resolveStoredEffects(state *game.BattleState, playerID string, status *game.Status, hook string, checkTrigger bool, ctx statusHookContext) statusHookResult {
	timing := dataString(status.Data, "timing")
	if timing == "" {
		timing = "turn_end"
	}
	if !timingMatches(hook, timing) {
		return statusHookResult{}
	}
	if checkTrigger {
		trigger, ok := dataInt(status.Data, "triggerTurn")
		if !ok || state.Turn < trigger {
			return statusHookResult{}
		}
	}
	targetID := dataString(status.Data, "targetId")
	if targetID == "" {
		targetID = playerID
	}
	sourceID := dataString(status.Data, "sourceId")
	if sourceID == "" {
		sourceID = playerID
	}
	target := state.Active(targetID)
	if target == nil || target.HP <= 0 {
		return statusHookResult{}
	}
	effects := data.EffectsFromValue(status.Data["effects"])
	ectx := &effectContext{
		attackerID: sourceID,
		targetID:   targetID,
		rng:        ctx.rng,
		turn:       state.Turn,
	}
	events := e.compileEffects(state, effects, ectx)
	return statusHookResult{state: ApplyEvents(state, events)}
}

func timingMatches(hook, timing string) bool {
	switch timing {
	case "turn_start":
		return hook == hookTurnStart
	case "turn_end":
		return hook == hookTurnEnd
	}
	return true
}

// tickStatuses decrements finite status counters on both actives and drops
// the expired ones.
func tickStatuses(state *game.BattleState) *game.BattleState {
	next := state.Clone()
	for i := range next.Players {
		active := next.Active(next.Players[i].ID)
		if active == nil {
			continue
		}
		kept := active.Statuses[:0]
		for _, st := range active.Statuses {
			if st.RemainingTurns != nil {
				v := *st.RemainingTurns - 1
				st.RemainingTurns = &v
				if v <= 0 {
					continue
				}
			}
			kept = append(kept, st)
		}
		active.Statuses = kept
	}
	return next
}

// tickFieldEffects is the field counterpart of tickStatuses.
func tickFieldEffects(state *game.BattleState) *game.BattleState {
	next := state.Clone()
	kept := next.Field.Global[:0]
	for _, eff := range next.Field.Global {
		if eff.RemainingTurns != nil {
			v := *eff.RemainingTurns - 1
			eff.RemainingTurns = &v
			if v <= 0 {
				continue
			}
		}
		kept = append(kept, eff)
	}
	next.Field.Global = kept
	return next
}

func lastMoveFromHistory(state *game.BattleState, playerID string) string {
	if state.History == nil {
		return ""
	}
	for i := len(state.History.Turns) - 1; i >= 0; i-- {
		turn := state.History.Turns[i]
		for j := len(turn.Actions) - 1; j >= 0; j-- {
			if turn.Actions[j].PlayerID == playerID && turn.Actions[j].MoveID != "" {
				return turn.Actions[j].MoveID
			}
		}
	}
	return ""
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
