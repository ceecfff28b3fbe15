package main

import (
	"flag"
	"fmt"
	"os"
	"pulseboard/cmd/mockgen/engine"
	"time"
)

func main() {
	scenario := flag.String("scenario", "mild", "Scenario to generate: mild, slipping, churn")
	out := flag.String("out", "./data.csv", "Output CSV path")
	projects := flag.Int("projects", 6, "Number of projects to generate")
	weeks := flag.Int("weeks", 12, "Number of weekly snapshots per project")
	seed := flag.Int64("seed", 0, "Random seed (0 = time-based)")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Scenario: *scenario,
		Projects: *projects,
		Weeks:    *weeks,
		Seed:     *seed,
		Now:      time.Now(),
	}

	fmt.Printf("Generating scenario '%s' (%d projects x %d weeks) to %s...\n", cfg.Scenario, cfg.Projects, cfg.Weeks, *out)

	rows := engine.Generate(cfg)

	if err := engine.Save(*out, rows); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}
