package data

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// BaseStats holds the six species base stats.
type BaseStats struct {
	HP        int `json:"hp"`
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
	SpAttack  int `json:"sp_attack"`
	SpDefense int `json:"sp_defense"`
	Speed     int `json:"speed"`
}

// SpeciesData is a static species definition.
type SpeciesData struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Types     []string  `json:"types"`
	BaseStats BaseStats `json:"base_stats"`
	Abilities []string  `json:"abilities,omitempty"`
}

// DisplayName returns the species name, deriving one from the id when the
// data file omits it.
func (s *SpeciesData) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return TitleFromID(s.ID)
}

// SpeciesDatabase is the read-only species registry.
type SpeciesDatabase struct {
	species map[string]*SpeciesData
}

// NewSpeciesDatabase returns an empty database.
func NewSpeciesDatabase() *SpeciesDatabase {
	return &SpeciesDatabase{species: map[string]*SpeciesData{}}
}

// LoadDefaultSpecies loads the embedded species data file.
func LoadDefaultSpecies() (*SpeciesDatabase, error) {
	return SpeciesFromJSON(defaultSpeciesJSON)
}

// LoadSpeciesFile loads a species data file from disk.
func LoadSpeciesFile(path string) (*SpeciesDatabase, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read species file %s: %w", path, err)
	}
	return SpeciesFromJSON(b)
}

// SpeciesFromJSON decodes a speciesId -> SpeciesData map.
func SpeciesFromJSON(b []byte) (*SpeciesDatabase, error) {
	raw := map[string]*SpeciesData{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse species data: %w", err)
	}
	db := NewSpeciesDatabase()
	for id, s := range raw {
		if s.ID == "" {
			s.ID = id
		}
		db.Insert(s)
	}
	return db, nil
}

// Insert adds or replaces a species definition.
func (db *SpeciesDatabase) Insert(s *SpeciesData) {
	db.species[s.ID] = s
}

// Get returns the species with the given id, or nil.
func (db *SpeciesDatabase) Get(id string) *SpeciesData {
	return db.species[id]
}

// IDs returns all known species ids, sorted.
func (db *SpeciesDatabase) IDs() []string {
	ids := maps.Keys(db.species)
	slices.Sort(ids)
	return ids
}
