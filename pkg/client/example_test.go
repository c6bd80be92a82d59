package client_test

import (
	"context"
	"fmt"

	"github.com/musaraza08/ant-colony-optimisation/pkg/client"
)

func ExampleScenarioBuilder() {
	cfg, err := client.NewScenario().
		Grid(40, 40).
		Nest(20, 20).
		Ants(30).
		Food(2, 150).
		Walls(10, 4, 10).
		Rho(0.1).
		Epsilon(0.25).
		Seed(42).
		Build()
	if err != nil {
		fmt.Println("invalid scenario:", err)
		return
	}

	fmt.Printf("Grid: %dx%d\n", cfg.GridWidth, cfg.GridHeight)
	fmt.Printf("Ants: %d\n", cfg.NumAnts)
	fmt.Printf("Seed: %d\n", cfg.Seed)
	// Output:
	// Grid: 40x40
	// Ants: 30
	// Seed: 42
}

func ExampleClient_CreateRun() {
	ctx := context.Background()
	c := client.New("http://localhost:8080")

	cfg, err := client.NewScenario().Seed(7).Build()
	if err != nil {
		fmt.Println("invalid scenario:", err)
		return
	}

	// This would create the run and step it on a live server.
	// Uncomment to actually send:
	// info, err := c.CreateRun(ctx, "demo", cfg)
	// if err != nil {
	// 	log.Fatal(err)
	// }
	// metrics, err := c.Tick(ctx, info.RunID, 100)

	_ = ctx
	_ = c
	_ = cfg
}
