package engine

import (
	"math"

	"github.com/Mori-kamiyama/nikopoke/internal/game"
)

// calcDamage runs the damage formula for one hit and returns the final
// amount, whether it was a critical hit and the type effectiveness (for the
// caller's log lines). Secondary hits never crit and draw no crit roll.
func (e *Engine) calcDamage(state *game.BattleState, power int, ctx *effectContext, secondary bool) (int, bool, float64) {
	if power <= 0 {
		return 0, false, 1
	}
	attacker := state.Active(ctx.attackerID)
	target := state.Active(ctx.targetID)
	if attacker == nil || target == nil {
		return 0, false, 1
	}

	category := "physical"
	moveType := ""
	if ctx.move != nil {
		moveType = ctx.move.Type
		if ctx.move.Category != "" {
			category = ctx.move.Category
		}
	}
	special := category == "special"

	critStage := attacker.Stages.Crit
	if ctx.move != nil {
		critStage += ctx.move.CritRate
	}
	critStage = int(runAbilityValueHook(state, ctx.attackerID, hookModifyCritChance,
		float64(critStage), abilityValueContext{move: ctx.move, category: category, target: target}))
	var critChance float64
	switch {
	case critStage <= 0:
		critChance = 1.0 / 24.0
	case critStage == 1:
		critChance = 1.0 / 8.0
	case critStage == 2:
		critChance = 1.0 / 2.0
	default:
		critChance = 1.0
	}
	isCrit := false
	if !secondary {
		if critChance >= 1.0 {
			isCrit = true
		} else {
			isCrit = ctx.rng() < critChance
		}
	}

	fpower := runAbilityValueHook(state, ctx.attackerID, hookModifyPower,
		float64(power), abilityValueContext{move: ctx.move, category: category, target: target})
	fpower = runAbilityValueHook(state, ctx.targetID, hookDefensivePower,
		fpower, abilityValueContext{move: ctx.move, category: category, target: attacker})

	var offense, defense float64
	var atkStage, defStage int
	if special {
		offense = float64(attacker.SpAttack)
		defense = float64(target.SpDefense)
		atkStage = attacker.Stages.Spa
		defStage = target.Stages.Spd
	} else {
		offense = float64(attacker.Attack)
		defense = float64(target.Defense)
		atkStage = attacker.Stages.Atk
		defStage = target.Stages.Def
	}
	if isCrit && defStage > 0 {
		defStage = 0
	}
	if isCrit && atkStage < 0 {
		atkStage = 0
	}
	if attacker.Ability == "unaware" {
		defStage = 0
	}
	if target.Ability == "unaware" {
		atkStage = 0
	}
	if !special && attacker.HasStatus("burn") && attacker.Ability != "guts" {
		offense *= 0.5
	}

	attack := offense * StageMultiplier(atkStage)
	attack = runAbilityValueHook(state, ctx.attackerID, hookModifyOffense,
		attack, abilityValueContext{move: ctx.move, category: category, target: target})
	defense = defense * StageMultiplier(defStage)
	defense = runAbilityValueHook(state, ctx.targetID, hookModifyDefense,
		defense, abilityValueContext{move: ctx.move, category: category, target: attacker})
	if defense < 1 {
		defense = 1
	}

	base := math.Floor((float64(2*attacker.Level)/5.0+2.0)*fpower*attack/defense/50.0 + 2.0)
	if base < 1 {
		base = 1
	}

	roll := 0.85 + 0.15*ctx.rng()

	modifier := 1.0
	if moveType != "" && hasType(attacker.Types, moveType) {
		modifier *= 1.5
	}
	effectiveness := 1.0
	if moveType != "" {
		effectiveness = e.tables.Types.Effectiveness(moveType, target.Types)
	}
	if effectiveness == 0 {
		if !ctx.ignoreImmunity {
			return 0, false, 0
		}
		effectiveness = 1
	}
	modifier *= effectiveness
	if isCrit {
		modifier *= 1.5
	}

	damage := int(math.Floor(base * roll * modifier))
	if damage < 1 {
		damage = 1
	}
	return damage, isCrit, effectiveness
}

// computeSpeed is the effective speed used for turn order and speed-based
// damage: raw speed through the speed stage, paralysis and the ability hook.
func (e *Engine) computeSpeed(state *game.BattleState, playerID string) float64 {
	active := state.Active(playerID)
	if active == nil {
		return 0
	}
	speed := float64(active.Speed) * StageMultiplier(active.Stages.Spe)
	if active.HasStatus("paralysis") && active.Ability != "quick_feet" {
		speed *= 0.5
	}
	return runAbilityValueHook(state, playerID, hookModifySpeed, speed,
		abilityValueContext{weather: Weather(state)})
}
