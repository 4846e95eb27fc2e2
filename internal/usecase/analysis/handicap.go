package analysis

import (
	"ray_analysis/internal/domain/board"
	"ray_analysis/internal/domain/move"
)

const handicapKomi = 0.5

// Canonical handicap point indices in board order:
//
//	0 1 2
//	3 4 5
//	6 7 8
var fixedHandicapTable = [8][]int{
	{2, 6},                   // 2
	{0, 2, 6},                // 3
	{0, 2, 6, 8},             // 4
	{0, 2, 4, 6, 8},          // 5
	{0, 2, 4, 5, 6, 8},       // 6
	{0, 2, 3, 4, 5, 6, 8},    // 7
	{0, 1, 2, 3, 4, 5, 6, 8}, // 8
	{0, 1, 2, 3, 4, 5, 6, 7, 8},
}

// FixedHandicapPoints returns the stones of a fixed handicap of n on the
// given board, or nil when the board or the count does not allow one.
func FixedHandicapPoints(geo board.Geometry, n int) []move.Position {
	size := geo.Size
	if n < 2 || n > 9 || size < 9 || size%2 == 0 {
		return nil
	}

	offset := 3
	if size <= 11 {
		offset = 2
	}
	middle := (size - 1) / 2
	near, far := offset, size-1-offset
	canonical := [9]move.Position{
		move.PlayAt(near, near), move.PlayAt(middle, near), move.PlayAt(far, near),
		move.PlayAt(near, middle), move.PlayAt(middle, middle), move.PlayAt(far, middle),
		move.PlayAt(near, far), move.PlayAt(middle, far), move.PlayAt(far, far),
	}

	points := make([]move.Position, 0, n)
	for _, i := range fixedHandicapTable[n-2] {
		points = append(points, canonical[i])
	}
	return points
}

// SetFixedHandicap is a silent no-op outside odd boards of size 9 and up and
// counts 1..9. A count of 1 is recorded but places nothing.
func SetFixedHandicap(s *Session, n int) {
	size := s.Geometry.Size
	if n < 1 || n > 9 || size < 9 || size%2 == 0 {
		return
	}

	points := FixedHandicapPoints(s.Geometry, n)
	for _, p := range points {
		s.Board.PutStone(p.ToBoard(s.Geometry), board.Black)
		s.HandicapStones = append(s.HandicapStones, p)
	}
	s.Handicap = n
	if len(points) > 0 {
		s.Komi = handicapKomi
		s.ToMove = board.White
	}
}

// SetFreeHandicap places every legal black stone from stones and warns about
// the rest. Colors in the entries are ignored.
func SetFreeHandicap(s *Session, stones []any) {
	placed := 0
	for _, raw := range stones {
		p := move.ParsePosition(raw, s.Geometry.Size)
		if p.Kind != move.Play {
			s.warn(WarnHandicapPosition)
			continue
		}
		pos := p.ToBoard(s.Geometry)
		if !s.Board.IsLegal(pos, board.Black) {
			s.warn(WarnHandicapIllegal)
			continue
		}
		s.Board.PutStone(pos, board.Black)
		s.HandicapStones = append(s.HandicapStones, p)
		placed++
	}

	s.Handicap = placed
	s.Komi = handicapKomi
	if placed > 0 {
		s.ToMove = board.White
	}
}
