package analysis

import (
	domain "ray_analysis/internal/domain/analysis"
	"ray_analysis/internal/domain/board"
	"ray_analysis/internal/domain/move"
	"ray_analysis/internal/errors"
)

// Game is a move sequence ready to be replayed. For a flat list the colors
// are assigned by alternation; for a tree line the node colors are honoured.
type Game struct {
	Moves      []move.Move
	WireColors bool
}

// ParseGame picks the game description out of a request. "game" as an array
// is a flat list, "game" as an object and "gameTree" are trees. When both are
// given "game" is used. No game at all is an empty game.
func ParseGame(req domain.Request, size int) (Game, error) {
	src, flat := req.Game, true
	if !src.Present || src.Value == nil {
		src, flat = req.GameTree, false
	}
	if !src.Present || src.Value == nil {
		return Game{}, nil
	}

	if list, ok := src.Value.([]any); ok && flat {
		moves := make([]move.Move, len(list))
		for i, raw := range list {
			moves[i] = move.ParseMove(raw, size)
		}
		return Game{Moves: moves}, nil
	}

	t, err := move.ParseTree(src.Value, size)
	if err != nil {
		return Game{}, err
	}
	return Game{Moves: t.MainLine(), WireColors: true}, nil
}

// Apply plays the i-th move of g (zero based) on the session.
func (s *Session) Apply(g Game, i int) error {
	m := g.Moves[i]
	if m.Kind != move.Play && m.Kind != move.Pass {
		return &errors.MoveError{Index: i + 1}
	}

	color := s.ToMove
	if g.WireColors && (m.Color == board.Black || m.Color == board.White) {
		color = m.Color
	}
	if !s.Board.IsLegal(m.ToBoard(s.Geometry), color) {
		return &errors.MoveError{Index: i + 1}
	}
	s.play(m.Position, color)
	return nil
}

// Replay applies the whole game and stops at the first bad move.
func (s *Session) Replay(g Game) error {
	for i := range g.Moves {
		if err := s.Apply(g, i); err != nil {
			return err
		}
	}
	return nil
}
