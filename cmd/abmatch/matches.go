package main

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/janpfeifer/gametree/internal/games"
	"github.com/janpfeifer/gametree/internal/players"
	"github.com/janpfeifer/gametree/internal/searchers"
	. "github.com/janpfeifer/gametree/internal/state"
	"github.com/janpfeifer/gametree/internal/ui/cli"
	"github.com/janpfeifer/gametree/internal/ui/spinning"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// Results of the matches, indexed by AI (0 for -ai1, 1 for -ai2).
type Results struct {
	mu                   sync.Mutex
	configs              [2]string
	start                time.Time
	winsAs1st, winsAs2nd [2]int
	draws                [2]int // Indexed by the AI that played first.
	unfinished           int
	moves                int
	played, total        int
	stats                [2]searchers.Stats
}

func (r *Results) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fmt.Sprintf("Played %d of %d: AI-1 %d wins, AI-2 %d wins, %d draws, %d unfinished - %s",
		r.played, r.total, r.winsAs1st[0]+r.winsAs2nd[0], r.winsAs1st[1]+r.winsAs2nd[1],
		r.draws[0]+r.draws[1], r.unfinished, time.Since(r.start))
}

// record the result of one match, where aiFirst is the AI that played first.
func (r *Results) record(match *players.Match, aiFirst int, stats [2]searchers.Stats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.played++
	r.moves += match.NumMoves()
	for aiIdx := range stats {
		r.stats[aiIdx] = r.stats[aiIdx].Add(stats[aiIdx])
	}
	switch {
	case !match.Finished:
		r.unfinished++
	case match.Outcome.Draw:
		r.draws[aiFirst]++
	case match.Outcome.Winner == SideFirst:
		r.winsAs1st[aiFirst]++
	default:
		r.winsAs2nd[1-aiFirst]++
	}
}

// Print the results and the counters of each AI as tables.
func (r *Results) Print() {
	r.mu.Lock()
	defer r.mu.Unlock()
	ui := cli.New(*flagColor)
	names := []string{"AI-1", "AI-2"}
	rows := make([][]string, 0, 2)
	for aiIdx := range 2 {
		rows = append(rows, []string{
			fmt.Sprintf("%s: %s", names[aiIdx], r.configs[aiIdx]),
			strconv.Itoa(r.winsAs1st[aiIdx] + r.winsAs2nd[aiIdx]),
			strconv.Itoa(r.winsAs1st[aiIdx]),
			strconv.Itoa(r.winsAs2nd[aiIdx]),
			strconv.Itoa(r.draws[aiIdx]),
		})
	}
	fmt.Println(ui.Table([]string{"player", "wins", "as 1st", "as 2nd", "draws as 1st"}, rows))
	fmt.Printf("%d matches played (%d unfinished), %d moves in %s\n\n",
		r.played, r.unfinished, r.moves, time.Since(r.start).Round(time.Millisecond))
	fmt.Println(ui.StatsTable(names, r.stats[:]))
}

// runMatches plays -num_matches matches between the two configurations, alternating which one plays first.
func runMatches(ctx context.Context, game games.Game, configs [2]string) (*Results, error) {
	r := &Results{
		configs: configs,
		start:   time.Now(),
		total:   *flagNumMatches,
	}
	var wg errgroup.Group
	parallelism := getParallelism()
	wg.SetLimit(parallelism)
	klog.V(1).Infof("Parallelism for running matches=%d", parallelism)
	var spinner *spinning.Spinning
	if !*flagPrintSteps {
		spinner = spinning.NewProgress(ctx, "matches", r.total)
	}

	for matchIdx := range r.total {
		wg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			aiFirst := matchIdx % 2
			match, stats, err := runMatch(ctx, game, matchIdx, configs, aiFirst)
			if ctx.Err() != nil {
				klog.V(1).Infof("Match %d interrupted: %s", matchIdx, ctx.Err())
				return nil
			}
			if err != nil {
				return err
			}
			r.record(match, aiFirst, stats)
			if spinner != nil {
				spinner.Increment()
			}
			return nil
		})
	}
	err := wg.Wait()
	if spinner != nil {
		spinner.Done()
	}
	fmt.Println(r)
	if ctx.Err() != nil {
		fmt.Printf("Interrupted: %s\n", ctx.Err())
		return r, nil
	}
	return r, err
}

var (
	stepUI   *cli.UI
	muStepUI sync.Mutex
)

// getStepUI returns the UI used by -print_steps. muStepUI must be held.
func getStepUI() *cli.UI {
	if stepUI == nil {
		stepUI = cli.New(*flagColor)
	}
	return stepUI
}

// runMatch creates the players for one match: aiFirst is the index of the configuration playing first.
// It returns the match and the counters of each AI.
func runMatch(ctx context.Context, game games.Game, matchIdx int, configs [2]string, aiFirst int) (
	*players.Match, [2]searchers.Stats, error) {
	var stats [2]searchers.Stats
	var agents [2]*players.Agent
	for aiIdx, config := range configs {
		agent, err := players.New(config)
		if err != nil {
			return nil, stats, err
		}
		agents[aiIdx] = agent
	}
	defer func() {
		for _, agent := range agents {
			agent.Finalize()
		}
	}()
	matchPlayers := [2]players.Player{agents[aiFirst], agents[1-aiFirst]}

	start := game.NewMatch()
	if *flagStart != "" {
		var err error
		if start, err = game.FromString(*flagStart); err != nil {
			return nil, stats, err
		}
	}
	matchName := fmt.Sprintf("Match-%05d", matchIdx)
	var onMove players.OnMoveFn
	if *flagPrintSteps {
		onMove = func(match *players.Match, next *State, score float64) {
			muStepUI.Lock()
			defer muStepUI.Unlock()
			fmt.Printf("%s, score=%g\n", matchName, score)
			getStepUI().PrintState(next, game.Rules().TurnOf(next))
			fmt.Println("------------------")
		}
	}
	match, err := players.PlayMatch(ctx, matchName, game.Rules(), start, matchPlayers, *flagMaxMoves, onMove)
	if err != nil {
		return nil, stats, err
	}
	for aiIdx, agent := range agents {
		stats[aiIdx] = agent.Stats()
	}
	if *flagPrintSteps && match.Finished {
		muStepUI.Lock()
		winner, lastScore := "", 0.0
		if !match.Outcome.Draw {
			winner = matchPlayers[match.Outcome.Winner].String()
		}
		if numMoves := match.NumMoves(); numMoves > 0 {
			lastScore = match.Scores[numMoves-1]
		}
		getStepUI().PrintOutcome(match.Outcome, lastScore, winner)
		muStepUI.Unlock()
	}
	return match, stats, nil
}
