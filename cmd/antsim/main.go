package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/musaraza08/ant-colony-optimisation/internal/colony"
)

func main() {
	var (
		configFile = flag.String("config", "", "path to a scenario config file (JSON or YAML); defaults omitted fields")
		seed       = flag.Int64("seed", 0, "override the config's random seed (0 = keep config value)")
		tile       = flag.Int("tile", 12, "pixels per grid cell")
		tps        = flag.Int("tps", 120, "simulation ticks per second")
	)
	flag.Parse()

	cfg := colony.DefaultConfig()
	if *configFile != "" {
		loaded, err := colony.LoadConfig(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	sim, err := colony.NewSimulation(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating simulation: %v\n", err)
		os.Exit(1)
	}

	game := NewGame(sim, *tile)

	ebiten.SetWindowSize(cfg.GridWidth**tile, cfg.GridHeight**tile)
	ebiten.SetWindowTitle("Ant Colony Optimisation - demo")
	ebiten.SetTPS(*tps)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
