package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Mori-kamiyama/nikopoke/internal/data"
	"github.com/Mori-kamiyama/nikopoke/internal/engine"
	"github.com/Mori-kamiyama/nikopoke/internal/game"
	"github.com/Mori-kamiyama/nikopoke/internal/logging"
	"github.com/Mori-kamiyama/nikopoke/internal/search"
)

// nikopoke-sim runs a scripted auto-battle between two built-in demo teams
// and prints the battle log. Useful for eyeballing resolver behavior and
// for benchmarking search settings without the HTTP server.
func main() {
	seed := flag.Int64("seed", 1, "RNG seed for the battle")
	depth := flag.Int("depth", 0, "use minimax with this depth instead of the greedy policy")
	verify := flag.Bool("verify", false, "replay the recorded history afterwards and compare")
	flag.Parse()

	tables, err := data.LoadDefaultTables()
	if err != nil {
		logging.Fatal("Failed to load battle data tables", err, nil)
	}
	eng := engine.New(tables)

	state, err := demoBattle(eng)
	if err != nil {
		logging.Fatal("Failed to build demo teams", err, nil)
	}
	initial := state.Clone()

	choose := search.ChooseHighestPower
	if *depth > 0 {
		d := *depth
		choose = func(e *engine.Engine, s *game.BattleState, playerID string) *game.Action {
			return search.BestMoveMinimax(e, s, playerID, d)
		}
	}

	final := search.RunAutoBattle(eng, state, engine.NewSeededRNG(*seed), choose)
	for _, line := range final.Log {
		fmt.Println(line)
	}
	if winner := engine.Winner(final); winner != "" {
		fmt.Printf("\nWinner: %s\n", winner)
	} else {
		fmt.Println("\nNo winner.")
	}

	if *verify {
		replayed, err := eng.ReplayBattle(initial, final.History)
		if err != nil {
			logging.Error("replay verification failed", err, nil)
			os.Exit(1)
		}
		fmt.Printf("Replay verified: %d turns reproduced.\n", replayed.Turn)
	}
}

type demoMember struct {
	species string
	moves   []string
}

func demoBattle(eng *engine.Engine) (*game.BattleState, error) {
	one, err := demoTeam(eng, []demoMember{
		{"tatuta", []string{"icicle_spear", "ice_beam", "water_gun", "protect"}},
		{"hiyako", []string{"ember", "quick_attack", "hyper_voice", "u_turn"}},
	})
	if err != nil {
		return nil, err
	}
	two, err := demoTeam(eng, []demoMember{
		{"morimitu", []string{"razor_leaf", "leech_seed", "recover", "protect"}},
		{"raichiru", []string{"thunder_shock", "thunder_wave", "electro_ball", "quick_attack"}},
	})
	if err != nil {
		return nil, err
	}
	return engine.NewBattleState(
		game.PlayerState{ID: "p1", Name: "Player One", Team: one},
		game.PlayerState{ID: "p2", Name: "Player Two", Team: two},
	), nil
}

func demoTeam(eng *engine.Engine, members []demoMember) ([]game.CreatureState, error) {
	team := make([]game.CreatureState, 0, len(members))
	for _, m := range members {
		creature, err := eng.CreateCreature(m.species, engine.CreatureOptions{Moves: m.moves})
		if err != nil {
			return nil, err
		}
		team = append(team, *creature)
	}
	return team, nil
}
