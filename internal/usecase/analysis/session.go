package analysis

import (
	"fmt"

	"ray_analysis/internal/domain/board"
	"ray_analysis/internal/domain/move"
)

// Session состояние одного запроса: доска, очередь хода, коми, фора.
// Создаётся заново на каждый analyse-запрос.
type Session struct {
	Board         board.Board
	Geometry      board.Geometry
	ToMove        board.Color
	Komi          float64
	Handicap      int
	ConstHandicap int

	HandicapStones []move.Position
	Moves          []move.Move

	warn func(string)
}

// NewSession выделяет новую доску. warn может быть nil.
func (a *AnalysisUseCase) NewSession(warn func(string)) (*Session, error) {
	b, err := a.engine.NewBoard(a.settings.BoardSize)
	if err != nil {
		return nil, fmt.Errorf("allocate board: %w", err)
	}
	geo, err := board.NewGeometry(b.Size())
	if err != nil {
		return nil, err
	}
	if warn == nil {
		warn = func(string) {}
	}
	return &Session{
		Board:    b,
		Geometry: geo,
		ToMove:   board.Black,
		Komi:     a.settings.Komi,
		warn:     warn,
	}, nil
}

func (s *Session) play(p move.Position, c board.Color) {
	s.Board.PutStone(p.ToBoard(s.Geometry), c)
	s.Moves = append(s.Moves, move.Move{Position: p, Color: c})
	s.ToMove = c.Opponent()
}
