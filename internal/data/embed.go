package data

import _ "embed"

//go:embed files/moves.json
var defaultMovesJSON []byte

//go:embed files/species.json
var defaultSpeciesJSON []byte

//go:embed files/learnsets.json
var defaultLearnsetsJSON []byte
