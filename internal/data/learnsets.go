package data

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/exp/slices"
)

// Learnsets maps species ids to the move ids that species can learn.
type Learnsets struct {
	sets map[string][]string
}

// NewLearnsets returns an empty learnset table.
func NewLearnsets() *Learnsets {
	return &Learnsets{sets: map[string][]string{}}
}

// LoadDefaultLearnsets loads the embedded learnset data file.
func LoadDefaultLearnsets() (*Learnsets, error) {
	return LearnsetsFromJSON(defaultLearnsetsJSON)
}

// LoadLearnsetsFile loads a learnset data file from disk.
func LoadLearnsetsFile(path string) (*Learnsets, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read learnsets file %s: %w", path, err)
	}
	return LearnsetsFromJSON(b)
}

// LearnsetsFromJSON decodes a speciesId -> [moveId] map.
func LearnsetsFromJSON(b []byte) (*Learnsets, error) {
	raw := map[string][]string{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse learnsets data: %w", err)
	}
	return &Learnsets{sets: raw}, nil
}

// Set replaces the learnset for a species.
func (l *Learnsets) Set(speciesID string, moves []string) {
	l.sets[speciesID] = moves
}

// Moves returns the learnset for a species, or nil when unknown.
func (l *Learnsets) Moves(speciesID string) []string {
	return l.sets[speciesID]
}

// CanLearn reports whether the species can learn the move. A species with no
// learnset entry can learn nothing.
func (l *Learnsets) CanLearn(speciesID, moveID string) bool {
	return slices.Contains(l.sets[speciesID], moveID)
}
