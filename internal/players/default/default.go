// Package _default registers the default games and searchers that can be included in any
// front-end.
//
// Currently, it includes chess and tic-tac-toe, with the alpha-beta ("ab") and plain minimax ("minimax")
// searchers.
package _default

import (
	"github.com/janpfeifer/gametree/internal/games"
	_ "github.com/janpfeifer/gametree/internal/games/chess"
	_ "github.com/janpfeifer/gametree/internal/games/tictactoe"
	"github.com/janpfeifer/gametree/internal/parameters"
	"github.com/janpfeifer/gametree/internal/players"
	"github.com/janpfeifer/gametree/internal/searchers"
	"github.com/janpfeifer/gametree/internal/searchers/alphabeta"
	"github.com/janpfeifer/gametree/internal/searchers/minimax"
)

func init() {
	players.RegisterSearcher("ab", func(game games.Game, params parameters.Params) (searchers.Searcher, error) {
		return alphabeta.NewFromParams(game, params)
	})
	players.RegisterSearcher("minimax", func(game games.Game, params parameters.Params) (searchers.Searcher, error) {
		return minimax.NewFromParams(game, params)
	})
}
