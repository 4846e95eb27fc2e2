package tree

const (
	// NotExpanded marks a child that has a prior but no node of its own yet.
	NotExpanded = -1
	// Unevaluated is the prior of a child the evaluator never scored.
	Unevaluated = -1.0
)

// Statistic counts in how many visits a point ended up owned by each color.
// Indexed by board.Color (Empty, Black, White).
type Statistic struct {
	Colors [3]int
}

type Child struct {
	Pos   int
	Value float64
	Index int
}

type Node struct {
	MoveCount      int
	Win            float64
	Statistic      []Statistic
	Evaled         bool
	Policy         []float64
	ValueWin       float64
	ValueMoveCount int
	Children       []Child
}

// Arena stores the search tree; nodes refer to each other only by index.
type Arena struct {
	Nodes []Node
}

func NewArena(capacity int) *Arena {
	return &Arena{Nodes: make([]Node, 0, capacity)}
}

func (a *Arena) Len() int {
	return len(a.Nodes)
}

// Add appends n and returns its index.
func (a *Arena) Add(n Node) int {
	a.Nodes = append(a.Nodes, n)
	return len(a.Nodes) - 1
}

func (a *Arena) Node(i int) (*Node, bool) {
	if i < 0 || i >= len(a.Nodes) {
		return nil, false
	}
	return &a.Nodes[i], true
}
