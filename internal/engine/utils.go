package engine

import (
	"strings"

	"github.com/Mori-kamiyama/nikopoke/internal/game"
	"golang.org/x/exp/slices"
)

// primaryStatuses survive switching out; everything else is volatile.
var primaryStatuses = []string{"burn", "poison", "toxic", "paralysis", "sleep", "freeze"}

// IsPrimaryStatus reports whether the status id is a primary condition.
func IsPrimaryStatus(id string) bool {
	return slices.Contains(primaryStatuses, id)
}

// hasPrimaryStatus reports whether the creature carries any primary
// condition. Volatile markers (confusion, berry_consumed, ...) don't count.
func hasPrimaryStatus(c *game.CreatureState) bool {
	for i := range c.Statuses {
		if IsPrimaryStatus(c.Statuses[i].ID) {
			return true
		}
	}
	return false
}

// StageMultiplier converts a stat stage in [-6, 6] to its multiplier:
// (2+n)/2 for positive n, 2/(2-n) for negative.
func StageMultiplier(stage int) float64 {
	if stage >= 0 {
		return float64(2+stage) / 2.0
	}
	return 2.0 / float64(2-stage)
}

// AccuracyStageMultiplier follows the 3/3 base progression used for
// accuracy and evasion.
func AccuracyStageMultiplier(stage int) float64 {
	if stage >= 0 {
		return float64(3+stage) / 3.0
	}
	return 3.0 / float64(3-stage)
}

// substituteHP is the default substitute health: a quarter of maxHp, at
// least 1.
func substituteHP(maxHP int) int {
	hp := maxHP / 4
	if hp < 1 {
		return 1
	}
	return hp
}

// stageValue reads one stage by key; aliases follow the data files.
func stageValue(st *game.StatStages, key string) (int, bool) {
	switch strings.ToLower(key) {
	case "atk":
		return st.Atk, true
	case "def":
		return st.Def, true
	case "spa":
		return st.Spa, true
	case "spd":
		return st.Spd, true
	case "spe":
		return st.Spe, true
	case "accuracy", "acc":
		return st.Accuracy, true
	case "evasion", "eva":
		return st.Evasion, true
	case "crit":
		return st.Crit, true
	}
	return 0, false
}

func setStageValue(st *game.StatStages, key string, v int) {
	switch strings.ToLower(key) {
	case "atk":
		st.Atk = v
	case "def":
		st.Def = v
	case "spa":
		st.Spa = v
	case "spd":
		st.Spd = v
	case "spe":
		st.Spe = v
	case "accuracy", "acc":
		st.Accuracy = v
	case "evasion", "eva":
		st.Evasion = v
	case "crit":
		st.Crit = v
	}
}

// StageSum adds the five combat stages (used by the position evaluator).
func StageSum(st game.StatStages) int {
	return st.Atk + st.Def + st.Spa + st.Spd + st.Spe
}

func dataString(data map[string]interface{}, key string) string {
	s, _ := data[key].(string)
	return s
}

func dataInt(data map[string]interface{}, key string) (int, bool) {
	switch v := data[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func dataBool(data map[string]interface{}, key string) bool {
	b, _ := data[key].(bool)
	return b
}

func clampStage(v int) int {
	if v > 6 {
		return 6
	}
	if v < -6 {
		return -6
	}
	return v
}

func hasType(types []string, want string) bool {
	for _, t := range types {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}
