package data

import (
	"strings"

	"golang.org/x/exp/slices"
)

// typeEntry describes one defending type: the attacking types it is weak to
// and the attacking types it resists.
type typeEntry struct {
	weakTo  []string
	resists []string
}

// TypeChart answers type-effectiveness queries for the 18 standard types.
type TypeChart struct {
	chart      map[string]typeEntry
	immunities map[string][]string
}

// NewTypeChart builds the standard chart.
func NewTypeChart() *TypeChart {
	chart := map[string]typeEntry{}
	add := func(name string, weakTo, resists []string) {
		chart[name] = typeEntry{weakTo: weakTo, resists: resists}
	}

	add("normal", []string{"fighting"}, nil)
	add("fire", []string{"water", "ground", "rock"}, []string{"grass", "ice", "bug", "steel", "fairy"})
	add("water", []string{"electric", "grass"}, []string{"steel", "fire", "water"})
	add("electric", []string{"ground"}, []string{"flying", "steel", "electric"})
	add("grass", []string{"fire", "ice", "poison", "flying", "bug"}, []string{"ground", "water", "grass"})
	add("ice", []string{"fire", "fighting", "rock", "steel"}, []string{"ice"})
	add("fighting", []string{"flying", "psychic", "fairy"}, []string{"rock", "bug", "dark"})
	add("poison", []string{"ground", "psychic"}, []string{"grass", "fighting", "poison", "bug"})
	add("ground", []string{"water", "grass", "ice"}, []string{"poison", "rock"})
	add("flying", []string{"electric", "ice", "rock"}, []string{"fighting", "bug", "grass"})
	add("psychic", []string{"bug", "ghost", "dark"}, []string{"fighting", "psychic"})
	add("bug", []string{"fire", "flying", "rock"}, []string{"grass", "fighting", "ground"})
	add("rock", []string{"water", "grass", "fighting", "ground", "steel"}, []string{"normal", "flying", "poison", "fire"})
	add("ghost", []string{"ghost", "dark"}, []string{"poison", "bug"})
	add("dragon", []string{"ice", "dragon", "fairy"}, []string{"grass", "fire", "water", "electric"})
	add("dark", []string{"fighting", "bug", "fairy"}, []string{"ghost", "dark"})
	add("steel", []string{"fire", "water", "ground"}, []string{"normal", "flying", "rock", "bug", "steel", "grass", "psychic", "ice", "dragon", "fairy"})
	add("fairy", []string{"poison", "steel"}, []string{"fighting", "bug", "dark"})

	immunities := map[string][]string{
		"normal": {"ghost"},
		"ghost":  {"normal", "fighting"},
		"steel":  {"poison"},
		"flying": {"ground"},
		"dark":   {"psychic"},
		"ground": {"electric"},
		"fairy":  {"dragon"},
	}

	return &TypeChart{chart: chart, immunities: immunities}
}

// Effectiveness returns the combined multiplier of moveType against the
// defender's types: x2 per weakness, x0.5 per resistance, 0 on immunity.
// An empty move type is always neutral.
func (tc *TypeChart) Effectiveness(moveType string, targetTypes []string) float64 {
	if moveType == "" {
		return 1.0
	}
	moveKey := strings.ToLower(moveType)
	multiplier := 1.0
	for _, targetType := range targetTypes {
		targetKey := strings.ToLower(targetType)
		if slices.Contains(tc.immunities[targetKey], moveKey) {
			return 0.0
		}
		entry, ok := tc.chart[targetKey]
		if !ok {
			continue
		}
		if slices.Contains(entry.weakTo, moveKey) {
			multiplier *= 2.0
		}
		if slices.Contains(entry.resists, moveKey) {
			multiplier *= 0.5
		}
	}
	return multiplier
}
