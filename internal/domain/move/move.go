package move

import (
	"encoding/json"
	"fmt"
	"math"

	"ray_analysis/internal/domain/board"
)

type Kind int

const (
	Invalid Kind = iota
	Play
	Pass
	Resign
)

func (k Kind) String() string {
	switch k {
	case Play:
		return "play"
	case Pass:
		return "pass"
	case Resign:
		return "resign"
	}
	return "invalid"
}

// Position is a board point or one of the special kinds (pass, resign, invalid).
// X and Y only mean something for Play.
type Position struct {
	Kind Kind
	X    int
	Y    int
}

func PlayAt(x, y int) Position { return Position{Kind: Play, X: x, Y: y} }

var (
	PassPosition    = Position{Kind: Pass}
	ResignPosition  = Position{Kind: Resign}
	InvalidPosition = Position{Kind: Invalid}
)

func (p Position) IsValid() bool { return p.Kind != Invalid }

// ToBoard converts to the padded engine coordinate. Calling it on an
// Invalid position is a programming error.
func (p Position) ToBoard(geo board.Geometry) int {
	switch p.Kind {
	case Play:
		return geo.Pos(p.X, p.Y)
	case Pass:
		return board.Pass
	case Resign:
		return board.Resign
	}
	panic("move: ToBoard called on invalid position")
}

func (p Position) String() string {
	if p.Kind == Play {
		return fmt.Sprintf("(%d,%d)", p.X, p.Y)
	}
	return p.Kind.String()
}

// Move is a Position with an optional color; board.Empty means no color was given.
type Move struct {
	Position
	Color board.Color
}

// FromBoard maps an engine coordinate back to a colorless move.
func FromBoard(geo board.Geometry, pos int) Move {
	switch pos {
	case board.Pass:
		return Move{Position: PassPosition}
	case board.Resign:
		return Move{Position: ResignPosition}
	}
	if !geo.OnBoard(pos) {
		return Move{Position: InvalidPosition}
	}
	x, y := geo.XY(pos)
	return Move{Position: PlayAt(x, y)}
}

// ParsePosition never fails: anything it does not understand becomes Invalid.
//
// Accepted forms: "pass", "resign", {"action":"pass"|"resign"|"play", ...},
// {"pass":true} and {"x":X,"y":Y} with integral in-bounds coordinates.
func ParsePosition(v any, size int) Position {
	switch val := v.(type) {
	case string:
		switch val {
		case "pass":
			return PassPosition
		case "resign":
			return ResignPosition
		}
		return InvalidPosition
	case map[string]any:
		return parseObject(val, size)
	}
	return InvalidPosition
}

func parseObject(obj map[string]any, size int) Position {
	if raw, ok := obj["action"]; ok {
		action, isString := raw.(string)
		if !isString {
			return InvalidPosition
		}
		switch action {
		case "pass":
			return PassPosition
		case "resign":
			return ResignPosition
		case "play":
			return parseCoordinates(obj, size)
		}
		return InvalidPosition
	}

	if pass, ok := obj["pass"].(bool); ok && pass {
		return PassPosition
	}
	return parseCoordinates(obj, size)
}

func parseCoordinates(obj map[string]any, size int) Position {
	x, okX := integral(obj["x"])
	y, okY := integral(obj["y"])
	if !okX || !okY {
		return InvalidPosition
	}
	if x < 0 || y < 0 || x >= size || y >= size {
		return InvalidPosition
	}
	return PlayAt(x, y)
}

func integral(v any) (int, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		return n, true
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// ParseMove is ParsePosition plus the optional "color" field. A color that is
// present but not "black" or "white" makes the whole move Invalid.
func ParseMove(v any, size int) Move {
	m := Move{Position: ParsePosition(v, size)}
	obj, ok := v.(map[string]any)
	if !ok {
		return m
	}
	raw, present := obj["color"]
	if !present || raw == nil {
		return m
	}
	s, isString := raw.(string)
	if !isString {
		return Move{Position: InvalidPosition}
	}
	c, known := board.ParseColor(s)
	if !known {
		return Move{Position: InvalidPosition}
	}
	m.Color = c
	return m
}

// Wire is the canonical output form: a bare string for colorless pass/resign,
// an object otherwise.
func (m Move) Wire() any {
	switch m.Kind {
	case Play:
		out := map[string]any{"x": m.X, "y": m.Y}
		if m.Color == board.Black || m.Color == board.White {
			out["color"] = m.Color.String()
		}
		return out
	case Pass, Resign:
		if m.Color == board.Black || m.Color == board.White {
			return map[string]any{"action": m.Kind.String(), "color": m.Color.String()}
		}
		return m.Kind.String()
	}
	return "invalid"
}

func (m Move) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Wire())
}

func (m Move) String() string {
	if m.Color == board.Black || m.Color == board.White {
		return m.Color.String() + " " + m.Position.String()
	}
	return m.Position.String()
}
