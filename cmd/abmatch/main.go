// abmatch plays matches between two AI configurations, and reports the results and the
// search counters of each configuration.
//
// Example:
//
//	$ go run ./cmd/abmatch -ai1="chess:ab,max_depth=3" -ai2="chess:ab,max_depth=3,cutoff=h0,k=5" -num_matches=10
//
// Each match creates its own players, so matches can be played in parallel (see -parallelism).
// The configurations alternate playing first.
package main

import (
	"context"
	"flag"
	"runtime"
	"time"

	"github.com/janpfeifer/gametree/internal/games"
	"github.com/janpfeifer/gametree/internal/players"
	_ "github.com/janpfeifer/gametree/internal/players/default"
	"github.com/janpfeifer/gametree/internal/profilers"
	"github.com/janpfeifer/gametree/internal/ui/spinning"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagPlayer1Config = flag.String("ai1", players.DefaultPlayerConfig, "1st player configuration, "+
		"formatted as \"<game>:<searcher>,<params...>\".")
	flagPlayer2Config = flag.String("ai2", "", "2nd player configuration. Defaults to the same as -ai1.")
	flagNumMatches    = flag.Int("num_matches", 2, "Number of matches to play.")
	flagParallelism   = flag.Int("parallelism", 0, "If > 0 ignore GOMAXPROCS and play "+
		"these many matches simultaneously.")
	flagPrintSteps = flag.Bool("print_steps", false, "Print board at each step. "+
		"Very verbose, and you probably want to set -parallelism to 1.")
	flagMaxMoves = flag.Int("max_moves", 200, "Max moves before the match is interrupted, 0 for no limit.")
	flagStart    = flag.String("start", "", "Starting position, in the game's notation (FEN for chess). "+
		"Default is the game's initial position.")
	flagColor = flag.Bool("color", true, "Use colors in the output.")
)

// Globals
var (
	// globalCtx used everywhere. It is cancelled when the program is about to exit either by
	// an interrupt (ctrl+C) or by reaching the end.
	globalCtx = context.Background()
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	if *flagNumMatches <= 0 {
		klog.Exitf("Invalid -num_matches=%d", *flagNumMatches)
	}
	if *flagMaxMoves < 0 {
		klog.Exitf("Invalid -max_moves=%d", *flagMaxMoves)
	}
	if *flagPlayer2Config == "" {
		*flagPlayer2Config = *flagPlayer1Config
	}

	// Capture Control+C
	var globalCancel func()
	globalCtx, globalCancel = context.WithCancel(context.Background())
	spinning.SafeInterrupt(globalCancel, 5*time.Second)
	defer globalCancel()

	// Profilers: HTTP profiler server and CPU profile.
	profilers.Setup(globalCtx)
	defer profilers.OnQuit()

	configs := [2]string{*flagPlayer1Config, *flagPlayer2Config}
	game := must.M1(checkConfigs(configs))
	results := must.M1(runMatches(globalCtx, game, configs))
	results.Print()
}

// checkConfigs creates one player of each configuration, to report configuration errors before any
// match starts, and returns the game they play.
func checkConfigs(configs [2]string) (games.Game, error) {
	var game games.Game
	for playerIdx, config := range configs {
		klog.V(1).Infof("Checking AI-%d configuration %q", playerIdx+1, config)
		agent, err := players.New(config)
		if err != nil {
			return nil, errors.WithMessagef(err, "AI-%d", playerIdx+1)
		}
		if game != nil && game.Name() != agent.Game.Name() {
			return nil, errors.Errorf("AI-1 plays %s and AI-2 plays %s, they must play the same game",
				game.Name(), agent.Game.Name())
		}
		game = agent.Game
		agent.Finalize()
	}
	if *flagStart != "" {
		if _, err := game.FromString(*flagStart); err != nil {
			return nil, errors.WithMessage(err, "invalid -start position")
		}
	}
	return game, nil
}

// getParallelism returns the parallelism.
func getParallelism() (parallelism int) {
	parallelism = runtime.GOMAXPROCS(0)
	if *flagParallelism > 0 {
		parallelism = *flagParallelism
	}
	return
}
