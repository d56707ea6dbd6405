package data

// Tables bundles every static lookup the engine needs.
type Tables struct {
	Moves     *MoveDatabase
	Species   *SpeciesDatabase
	Learnsets *Learnsets
	Types     *TypeChart
}

// LoadDefaultTables loads all embedded data files.
func LoadDefaultTables() (*Tables, error) {
	moves, err := LoadDefaultMoves()
	if err != nil {
		return nil, err
	}
	species, err := LoadDefaultSpecies()
	if err != nil {
		return nil, err
	}
	learnsets, err := LoadDefaultLearnsets()
	if err != nil {
		return nil, err
	}
	return &Tables{
		Moves:     moves,
		Species:   species,
		Learnsets: learnsets,
		Types:     NewTypeChart(),
	}, nil
}
