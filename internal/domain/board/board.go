package board

import "fmt"

// Color of a board point.
type Color int

const (
	Empty Color = iota
	Black
	White
	OffBoard
)

const (
	// Pass и Resign зарезервированы движком и лежат вне игровой области
	Pass   = 0
	Resign = -1

	BorderWidth = 1

	MinSize = 2
	MaxSize = 25
)

func (c Color) Opponent() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	}
	return c
}

func (c Color) String() string {
	switch c {
	case Empty:
		return "empty"
	case Black:
		return "black"
	case White:
		return "white"
	case OffBoard:
		return "offboard"
	}
	return fmt.Sprintf("color(%d)", int(c))
}

// ParseColor accepts only "black" and "white".
func ParseColor(s string) (Color, bool) {
	switch s {
	case "black":
		return Black, true
	case "white":
		return White, true
	}
	return Empty, false
}

// Geometry maps (x, y) onto the padded one-dimensional board.
type Geometry struct {
	Size int
}

func NewGeometry(size int) (Geometry, error) {
	if size < MinSize || size > MaxSize {
		return Geometry{}, fmt.Errorf("board size %d out of range [%d, %d]", size, MinSize, MaxSize)
	}
	return Geometry{Size: size}, nil
}

func (g Geometry) Width() int {
	return g.Size + 2*BorderWidth
}

// Area number of playable points.
func (g Geometry) Area() int {
	return g.Size * g.Size
}

// Max length of a padded cell array.
func (g Geometry) Max() int {
	return g.Width() * g.Width()
}

func (g Geometry) Pos(x, y int) int {
	return (x + BorderWidth) + (y+BorderWidth)*g.Width()
}

func (g Geometry) XY(pos int) (int, int) {
	return pos%g.Width() - BorderWidth, pos/g.Width() - BorderWidth
}

func (g Geometry) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.Size && y < g.Size
}

func (g Geometry) OnBoard(pos int) bool {
	if pos <= 0 || pos >= g.Max() {
		return false
	}
	x, y := g.XY(pos)
	return g.InBounds(x, y)
}

func (g Geometry) Neighbors(pos int) [4]int {
	w := g.Width()
	return [4]int{pos - w, pos - 1, pos + 1, pos + w}
}

// Points returns the playable positions in raster order (y outer, x inner).
func (g Geometry) Points() []int {
	points := make([]int, 0, g.Area())
	for y := 0; y < g.Size; y++ {
		for x := 0; x < g.Size; x++ {
			points = append(points, g.Pos(x, y))
		}
	}
	return points
}

// Board is the rules engine consumed by the analysis layer.
type Board interface {
	Size() int
	At(pos int) Color
	IsLegal(pos int, c Color) bool
	PutStone(pos int, c Color)
	AreaScore() float64
}
