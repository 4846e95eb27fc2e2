package repo

import (
	"ray_analysis/internal/domain/board"
)

const noKo = -2

// GoBoard implements the rules on a padded array: Chinese area scoring and simple ko.
type GoBoard struct {
	geo    board.Geometry
	cells  []board.Color
	ko     int
	koSide board.Color

	mark  []int
	stamp int
}

func NewGoBoard(geo board.Geometry) *GoBoard {
	b := &GoBoard{
		geo:   geo,
		cells: make([]board.Color, geo.Max()),
		mark:  make([]int, geo.Max()),
	}
	b.Reset()
	return b
}

func (b *GoBoard) Reset() {
	for i := range b.cells {
		b.cells[i] = board.OffBoard
	}
	for _, p := range b.geo.Points() {
		b.cells[p] = board.Empty
	}
	b.ko = noKo
	b.koSide = board.Empty
}

func (b *GoBoard) Copy() *GoBoard {
	c := &GoBoard{
		geo:    b.geo,
		cells:  make([]board.Color, len(b.cells)),
		ko:     b.ko,
		koSide: b.koSide,
		mark:   make([]int, len(b.mark)),
	}
	copy(c.cells, b.cells)
	return c
}

func (b *GoBoard) Size() int {
	return b.geo.Size
}

func (b *GoBoard) Geometry() board.Geometry {
	return b.geo
}

func (b *GoBoard) At(pos int) board.Color {
	if pos < 0 || pos >= len(b.cells) {
		return board.OffBoard
	}
	return b.cells[pos]
}

func (b *GoBoard) IsLegal(pos int, c board.Color) bool {
	if pos == board.Pass {
		return true
	}
	if c != board.Black && c != board.White {
		return false
	}
	if pos == board.Resign || b.At(pos) != board.Empty {
		return false
	}
	if pos == b.ko && c == b.koSide {
		return false
	}
	return !b.isSuicide(pos, c)
}

func (b *GoBoard) isSuicide(pos int, c board.Color) bool {
	for _, n := range b.geo.Neighbors(pos) {
		switch b.cells[n] {
		case board.Empty:
			return false
		case c:
			if b.liberties(n, pos) > 0 {
				return false
			}
		case c.Opponent():
			if b.liberties(n, pos) == 0 {
				return false
			}
		}
	}
	return true
}

// PutStone places c at pos and removes captured groups. The move must be legal.
func (b *GoBoard) PutStone(pos int, c board.Color) {
	b.ko = noKo
	b.koSide = board.Empty
	if pos == board.Pass || pos == board.Resign {
		return
	}

	b.cells[pos] = c
	captured := 0
	lastCaptured := noKo
	for _, n := range b.geo.Neighbors(pos) {
		if b.cells[n] != c.Opponent() || b.liberties(n, noKo) > 0 {
			continue
		}
		stones := b.group(n)
		for _, s := range stones {
			b.cells[s] = board.Empty
		}
		captured += len(stones)
		lastCaptured = stones[0]
	}

	// одиночный камень, взявший ровно один камень, создаёт ко
	if captured == 1 && len(b.group(pos)) == 1 && b.liberties(pos, noKo) == 1 {
		b.ko = lastCaptured
		b.koSide = c.Opponent()
	}
}

// group collects the chain containing pos.
func (b *GoBoard) group(pos int) []int {
	color := b.cells[pos]
	b.stamp++
	stones := []int{pos}
	b.mark[pos] = b.stamp
	for i := 0; i < len(stones); i++ {
		for _, n := range b.geo.Neighbors(stones[i]) {
			if b.cells[n] == color && b.mark[n] != b.stamp {
				b.mark[n] = b.stamp
				stones = append(stones, n)
			}
		}
	}
	return stones
}

// liberties counts distinct empty points next to the chain at pos, treating
// filled (if on board) as occupied.
func (b *GoBoard) liberties(pos, filled int) int {
	stones := b.group(pos)
	libs := 0
	for _, s := range stones {
		for _, n := range b.geo.Neighbors(s) {
			if b.cells[n] != board.Empty || n == filled || b.mark[n] == b.stamp {
				continue
			}
			b.mark[n] = b.stamp
			libs++
		}
	}
	return libs
}

// Owners assigns every point to a color by Tromp-Taylor reachability.
// Dame and seki regions stay Empty.
func (b *GoBoard) Owners() []board.Color {
	owners := make([]board.Color, len(b.cells))
	b.stamp++
	for _, p := range b.geo.Points() {
		switch b.cells[p] {
		case board.Black, board.White:
			owners[p] = b.cells[p]
			continue
		}
		if b.mark[p] == b.stamp {
			continue
		}

		region := []int{p}
		b.mark[p] = b.stamp
		reachesBlack, reachesWhite := false, false
		for i := 0; i < len(region); i++ {
			for _, n := range b.geo.Neighbors(region[i]) {
				switch b.cells[n] {
				case board.Black:
					reachesBlack = true
				case board.White:
					reachesWhite = true
				case board.Empty:
					if b.mark[n] != b.stamp {
						b.mark[n] = b.stamp
						region = append(region, n)
					}
				}
			}
		}

		owner := board.Empty
		if reachesBlack && !reachesWhite {
			owner = board.Black
		} else if reachesWhite && !reachesBlack {
			owner = board.White
		}
		for _, r := range region {
			owners[r] = owner
		}
	}
	return owners
}

// AreaScore black area minus white area, komi not included.
func (b *GoBoard) AreaScore() float64 {
	score := 0
	owners := b.Owners()
	for _, p := range b.geo.Points() {
		switch owners[p] {
		case board.Black:
			score++
		case board.White:
			score--
		}
	}
	return float64(score)
}

// isEye reports whether pos is a single-point eye of c that the playout
// policy should not fill.
func (b *GoBoard) isEye(pos int, c board.Color) bool {
	for _, n := range b.geo.Neighbors(pos) {
		if b.cells[n] != c && b.cells[n] != board.OffBoard {
			return false
		}
	}
	w := b.geo.Width()
	falseCount, atEdge := 0, false
	for _, d := range [4]int{pos - w - 1, pos - w + 1, pos + w - 1, pos + w + 1} {
		switch b.cells[d] {
		case board.OffBoard:
			atEdge = true
		case c.Opponent():
			falseCount++
		}
	}
	if atEdge {
		falseCount++
	}
	return falseCount < 2
}
