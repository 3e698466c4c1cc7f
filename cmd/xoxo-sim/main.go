// Command xoxo-sim plays robots against each other and reports the results.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/thisarray/xoxo/internal/logging"
	"github.com/thisarray/xoxo/internal/search"
	"github.com/thisarray/xoxo/internal/sim"
)

func robot(name string, workers int, log zerolog.Logger) (sim.Robot, error) {
	switch name {
	case "ai":
		return sim.NewAIRobot(search.New(search.WithWorkers(workers), search.WithLogger(log))), nil
	case "score":
		return sim.ScoreRobot{}, nil
	case "random":
		return sim.RandomRobot{}, nil
	}
	return nil, fmt.Errorf("unknown robot %q, specify one of 'ai', 'score' or 'random'", name)
}

func main() {
	width := flag.Int("w", 3, "Board width")
	height := flag.Int("h", 3, "Board height")
	length := flag.Int("l", 3, "Markers in a row needed to win")
	num := flag.Int("n", 10, "Number of games to simulate")
	nameA := flag.String("a", "ai", "Robot A (ai, score, random)")
	nameB := flag.String("b", "random", "Robot B (ai, score, random)")
	workers := flag.Int("workers", 1, "Parallel candidate evaluation for ai robots")
	verbose := flag.Bool("v", false, "Log every game")
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	log, err := logging.New(os.Stderr, level, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if (*width)*(*height) > 12 {
		log.Warn().Int("cells", (*width)*(*height)).Msg("exhaustive search on large boards is slow")
	}

	// search logs are too chatty even for -v
	quiet := log.Level(zerolog.InfoLevel)
	robotA, err := robot(*nameA, *workers, quiet)
	if err != nil {
		log.Fatal().Err(err).Msg("robot A")
	}
	robotB, err := robot(*nameB, *workers, quiet)
	if err != nil {
		log.Fatal().Err(err).Msg("robot B")
	}
	st := sim.Settings{Width: *width, Height: *height, WinLength: *length}
	stats, err := sim.Run(*num, st, robotA, robotB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("simulation failed")
	}
	fmt.Printf("%v games were played on a %vx%v board, %v in a row.\n"+
		"Robot A (%v) won %v games, and Robot B (%v) won %v games; %v games were draws.\n",
		stats.Games, *width, *height, *length,
		*nameA, stats.WinsA, *nameB, stats.WinsB, stats.Draws)
}
