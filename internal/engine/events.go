package engine

import (
	"fmt"

	"github.com/Mori-kamiyama/nikopoke/internal/game"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ApplyEvent is the only place battle state changes. It returns a fresh
// state; the input is never mutated.
func ApplyEvent(state *game.BattleState, ev Event) *game.BattleState {
	next := state.Clone()
	switch ev.Type {
	case EventLog:
		next.Log = append(next.Log, ev.Message)

	case EventDamage:
		applyDamage(next, ev)

	case EventApplyStatus:
		applyStatus(next, ev)

	case EventRemoveStatus:
		if active := next.Active(ev.TargetID); active != nil {
			active.Statuses = slices.DeleteFunc(active.Statuses, func(s game.Status) bool {
				return s.ID == ev.StatusID
			})
			if ev.StatusID == "item" || ev.StatusID == "berry" {
				active.Item = ""
			}
		}

	case EventReplaceStatus:
		if active := next.Active(ev.TargetID); active != nil {
			if !active.HasStatus(ev.From) {
				return next
			}
			active.Statuses = slices.DeleteFunc(active.Statuses, func(s game.Status) bool {
				return s.ID == ev.From
			})
			active.Statuses = append(active.Statuses, game.Status{
				ID:             ev.To,
				RemainingTurns: cloneDuration(ev.Duration),
				Data:           game.CloneData(ev.Data),
			})
		}

	case EventModifyStage:
		applyModifyStage(next, ev)

	case EventClearStages, EventResetStages:
		if active := next.Active(ev.TargetID); active != nil {
			active.Stages = game.StatStages{}
		}

	case EventCureAllStatus:
		if active := next.Active(ev.TargetID); active != nil {
			active.Statuses = nil
		}

	case EventApplyFieldStatus:
		if isWeatherID(ev.StatusID) {
			// Weather is exclusive: a new weather displaces whatever was up.
			clearWeather(next)
		} else if !ev.Stack {
			next.Field.Global = slices.DeleteFunc(next.Field.Global, func(f game.FieldEffect) bool {
				return f.ID == ev.StatusID
			})
		}
		next.Field.Global = append(next.Field.Global, game.FieldEffect{
			ID:             ev.StatusID,
			RemainingTurns: cloneDuration(ev.Duration),
			Data:           game.CloneData(ev.Data),
		})

	case EventRemoveFieldStatus:
		next.Field.Global = slices.DeleteFunc(next.Field.Global, func(f game.FieldEffect) bool {
			return f.ID == ev.StatusID
		})

	case EventSwitch:
		applySwitch(next, ev)

	case EventRandomMove:
		// Sentinel: expanded by the resolver before reaching the applier.

	case EventSetVolatile:
		if active := next.Active(ev.TargetID); active != nil {
			if active.VolatileData == nil {
				active.VolatileData = map[string]interface{}{}
			}
			active.VolatileData[ev.Key] = ev.Value
		}
	}
	return next
}

// ApplyEvents folds a list of events over the state.
func ApplyEvents(state *game.BattleState, events []Event) *game.BattleState {
	next := state
	for i := range events {
		next = ApplyEvent(next, events[i])
	}
	return next
}

func applyDamage(next *game.BattleState, ev Event) {
	player := next.Player(ev.TargetID)
	if player == nil {
		return
	}
	active := next.Active(ev.TargetID)
	if active == nil {
		return
	}
	if ev.Amount > 0 {
		selfInflicted := ev.MetaString("source") == ev.TargetID
		if !ev.MetaBool("bypassSubstitute") && !selfInflicted {
			if sub := active.FindStatus("substitute"); sub != nil {
				current, ok := dataInt(sub.Data, "hp")
				if !ok {
					current = substituteHP(active.MaxHP)
				}
				remaining := current - ev.Amount
				if remaining > 0 {
					if sub.Data == nil {
						sub.Data = map[string]interface{}{}
					}
					sub.Data["hp"] = float64(remaining)
					next.Log = append(next.Log, fmt.Sprintf("%s's substitute took the hit!", active.Name))
				} else {
					active.Statuses = slices.DeleteFunc(active.Statuses, func(s game.Status) bool {
						return s.ID == "substitute"
					})
					next.Log = append(next.Log, fmt.Sprintf("%s's substitute broke!", active.Name))
				}
				return
			}
		}
	}
	newHP := active.HP - ev.Amount
	if newHP < 0 {
		newHP = 0
	}
	if newHP > active.MaxHP {
		newHP = active.MaxHP
	}
	active.HP = newHP
	switch {
	case ev.Amount > 0:
		next.Log = append(next.Log, fmt.Sprintf("%s took %d damage!", active.Name, ev.Amount))
	case ev.Amount < 0:
		next.Log = append(next.Log, fmt.Sprintf("%s recovered %d HP!", active.Name, -ev.Amount))
	default:
		next.Log = append(next.Log, fmt.Sprintf("It doesn't affect %s...", active.Name))
	}
	if active.HP <= 0 {
		next.Log = append(next.Log, fmt.Sprintf("%s fainted!", active.Name))
		player.LastFaintedAbility = active.Ability
		if !active.HasStatus("pending_switch") {
			active.Statuses = append(active.Statuses, game.Status{ID: "pending_switch"})
		}
	}
}

func applyStatus(next *game.BattleState, ev Event) {
	if runAbilityCheckHook(next, ev.TargetID, hookCheckStatusImmunity, abilityCheckContext{statusID: ev.StatusID}, false) {
		if active := next.Active(ev.TargetID); active != nil {
			next.Log = append(next.Log, fmt.Sprintf("%s is unaffected by %s!", active.Name, ev.StatusID))
		}
		return
	}
	active := next.Active(ev.TargetID)
	if active == nil {
		return
	}
	if ev.StatusID == "item" || ev.StatusID == "berry" {
		if itemID := dataString(ev.Data, "itemId"); itemID != "" {
			active.Item = itemID
		}
	}
	if !ev.Stack && active.HasStatus(ev.StatusID) {
		next.Log = append(next.Log, fmt.Sprintf("%s already has %s!", active.Name, ev.StatusID))
		return
	}
	active.Statuses = append(active.Statuses, game.Status{
		ID:             ev.StatusID,
		RemainingTurns: cloneDuration(ev.Duration),
		Data:           game.CloneData(ev.Data),
	})
}

func applyModifyStage(next *game.BattleState, ev Event) {
	adjusted := modifyStagesWithAbility(next, ev.TargetID, ev.Stages)
	active := next.Active(ev.TargetID)
	if active == nil {
		return
	}
	changed := false
	keys := maps.Keys(adjusted)
	slices.Sort(keys)
	for _, key := range keys {
		current, ok := stageValue(&active.Stages, key)
		if !ok {
			continue
		}
		newVal := current + adjusted[key]
		if ev.Clamp {
			newVal = clampStage(newVal)
		}
		if newVal == current {
			continue
		}
		setStageValue(&active.Stages, key, newVal)
		changed = true
		if ev.ShowEvent {
			next.Log = append(next.Log, fmt.Sprintf("%s's %s %s!", active.Name, key, stageChangeVerb(newVal-current)))
		}
	}
	if !changed && ev.FailIfNoChange {
		next.Log = append(next.Log, "But it failed!")
	}
}

func stageChangeVerb(delta int) string {
	switch {
	case delta >= 2:
		return "rose sharply"
	case delta == 1:
		return "rose"
	case delta == -1:
		return "fell"
	default:
		return "fell harshly"
	}
}

func applySwitch(next *game.BattleState, ev Event) {
	player := next.Player(ev.PlayerID)
	if player == nil || ev.Slot < 0 || ev.Slot >= len(player.Team) {
		return
	}
	if outgoing := next.Active(ev.PlayerID); outgoing != nil {
		outgoing.Stages = game.StatStages{}
		outgoing.Statuses = slices.DeleteFunc(outgoing.Statuses, func(s game.Status) bool {
			return !IsPrimaryStatus(s.ID)
		})
		outgoing.AbilityData = nil
		outgoing.VolatileData = nil
	}
	player.ActiveSlot = ev.Slot
	incoming := &player.Team[ev.Slot]
	incoming.Statuses = slices.DeleteFunc(incoming.Statuses, func(s game.Status) bool {
		return s.ID == "pending_switch"
	})
	next.Log = append(next.Log, fmt.Sprintf("%s sent out %s!", player.Name, incoming.Name))
}

func cloneDuration(d *int) *int {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
