package sgf

// GameTree последовательность узлов основной линии плюс варианты
type GameTree struct {
	Nodes    []Node
	Children []*GameTree
}

// Node набор свойств одного узла, значения могут повторяться (AB[aa][bb])
type Node struct {
	Properties map[string][]string
}

type SGF struct {
	Root *GameTree
}

func NewNode() Node {
	return Node{Properties: make(map[string][]string)}
}

func (n Node) Add(key, value string) {
	n.Properties[key] = append(n.Properties[key], value)
}

// Point кодирует пункт (от нуля) двумя буквами, "aa" левый верхний угол.
func Point(x, y int) string {
	return string([]byte{byte('a' + x), byte('a' + y)})
}
