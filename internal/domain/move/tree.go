package move

import (
	"ray_analysis/internal/errors"
)

// Tree is a game with variations. The root carries no move and a leaf has no
// continuations.
type Tree struct {
	Move Move
	Root bool
	Next []*Tree
}

func (t *Tree) IsLeaf() bool {
	return len(t.Next) == 0
}

// ParseTree accepts either an array (a synthetic root whose elements are the
// continuations) or an object carrying a move plus an optional "next" field
// that is itself an object or an array. Non-root nodes must hold a valid move.
func ParseTree(v any, size int) (*Tree, error) {
	type frame struct {
		raw  any
		node *Tree
	}

	root, err := newTreeNode(v, size)
	if err != nil {
		return nil, err
	}
	stack := []frame{{raw: v, node: root}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		next, err := continuations(top.raw)
		if err != nil {
			return nil, err
		}
		top.node.Next = make([]*Tree, 0, len(next))
		for _, raw := range next {
			child, err := newTreeNode(raw, size)
			if err != nil {
				return nil, err
			}
			if child.Root {
				// вложенный массив без хода не допускается
				return nil, errors.ErrInvalidGame
			}
			top.node.Next = append(top.node.Next, child)
			stack = append(stack, frame{raw: raw, node: child})
		}
	}
	return root, nil
}

func newTreeNode(v any, size int) (*Tree, error) {
	switch v.(type) {
	case []any:
		return &Tree{Root: true}, nil
	case map[string]any, string:
		m := ParseMove(v, size)
		if !m.IsValid() {
			return nil, errors.ErrInvalidGame
		}
		return &Tree{Move: m}, nil
	}
	return nil, errors.ErrInvalidGame
}

func continuations(v any) ([]any, error) {
	switch val := v.(type) {
	case string:
		return nil, nil
	case []any:
		return val, nil
	case map[string]any:
		next, ok := val["next"]
		if !ok || next == nil {
			return nil, nil
		}
		switch n := next.(type) {
		case map[string]any, string:
			return []any{n}, nil
		case []any:
			return n, nil
		}
	}
	return nil, errors.ErrInvalidGame
}

// MainLine returns the moves along first children, root excluded.
func (t *Tree) MainLine() []Move {
	var line []Move
	for node := t; node != nil; {
		if !node.Root {
			line = append(line, node.Move)
		}
		if node.IsLeaf() {
			break
		}
		node = node.Next[0]
	}
	return line
}
