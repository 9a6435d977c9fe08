// Package players provides a factory of AI players from configuration strings.
// It also allows searchers to register themselves.
package players

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/janpfeifer/gametree/internal/games"
	"github.com/janpfeifer/gametree/internal/generics"
	"github.com/janpfeifer/gametree/internal/parameters"
	"github.com/janpfeifer/gametree/internal/searchers"
	. "github.com/janpfeifer/gametree/internal/state"
	"github.com/pkg/errors"
)

// Player is anything that is able to play a game.
type Player interface {
	// Play returns the next state (after the player's move) and the score of the move from the
	// maximizing side's point of view.
	Play(ctx context.Context, s *State) (next *State, score float64, err error)

	// Finalize is called at the end of a match.
	Finalize()

	// String describes the player.
	String() string
}

// SearcherBuilder creates a searcher for game, popping the parameters it uses from params.
type SearcherBuilder func(game games.Game, params parameters.Params) (searchers.Searcher, error)

var (
	// Registered searchers.
	searcherBuilders = make(map[string]SearcherBuilder)
	muRegistry       sync.Mutex
)

// RegisterSearcher so it can be used in player configurations. It panics if name is already registered.
func RegisterSearcher(name string, builder SearcherBuilder) {
	muRegistry.Lock()
	defer muRegistry.Unlock()
	if _, found := searcherBuilders[name]; found {
		panic(fmt.Sprintf("players.RegisterSearcher(%q): searcher already registered", name))
	}
	searcherBuilders[name] = builder
}

func searcherBuilder(name string) (SearcherBuilder, error) {
	muRegistry.Lock()
	defer muRegistry.Unlock()
	if len(searcherBuilders) == 0 {
		return nil, errors.New("no registered searchers. Perhaps you need to import _ \"github.com/janpfeifer/gametree/internal/players/default\" to your binary ?")
	}
	builder, found := searcherBuilders[name]
	if !found {
		return nil, errors.Errorf("unknown searcher %q, registered searchers: %s", name,
			strings.Join(generics.KeysSlice(searcherBuilders), ", "))
	}
	return builder, nil
}

var (
	// DefaultPlayerConfig is used if no configuration was given to the AI. The value may be changed by the
	// program.
	DefaultPlayerConfig = "chess:ab,max_depth=2"
)

// New creates a new AI player given the configuration string.
//
// Args:
//
//	config: the game name followed by a colon (":"), followed by the searcher name and a comma-separated
//		list of optional parameters with optional values associated. E.g.: "chess:ab,max_depth=3,cutoff=h0,k=5".
//		If empty, the default is given by DefaultPlayerConfig.
//
// The parameters are dependent on the searcher used, and unknown parameters are reported as an error.
func New(config string) (*Agent, error) {
	if config == "" {
		config = DefaultPlayerConfig
	}
	gameName, searcherConfig, found := strings.Cut(config, ":")
	if !found {
		return nil, errors.Errorf("invalid player configuration %q, it must be formatted as \"<game>:<searcher>,<params...>\"", config)
	}
	game, err := games.Get(strings.TrimSpace(gameName))
	if err != nil {
		return nil, errors.WithMessagef(err, "player configuration %q", config)
	}
	searcherName, paramsConfig, _ := strings.Cut(searcherConfig, ",")
	searcherName = strings.TrimSpace(searcherName)
	builder, err := searcherBuilder(searcherName)
	if err != nil {
		return nil, errors.WithMessagef(err, "player configuration %q", config)
	}

	params := parameters.NewFromConfigString(paramsConfig)
	searcher, err := builder(game, params)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create searcher %q for %s", searcherName, game.Name())
	}
	if err := params.CheckAllConsumed(); err != nil {
		return nil, errors.WithMessagef(err, "player configuration %q", config)
	}
	return NewAgent(game, searcher, config), nil
}
