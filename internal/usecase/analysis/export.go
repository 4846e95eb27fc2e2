package analysis

import (
	"fmt"

	domain "ray_analysis/internal/domain/analysis"
	"ray_analysis/internal/domain/board"
	"ray_analysis/internal/domain/move"
	"ray_analysis/internal/domain/tree"
	"ray_analysis/internal/errors"
)

// Exporter turns a search arena into a report. ValueScale weighs the value
// network visits against ordinary playouts in winPlusValue.
type Exporter struct {
	Geometry   board.Geometry
	Komi       float64
	ValueScale float64
}

// Export walks the tree below root with an explicit stack, so the depth of
// the principal variation does not matter. Child nodes that were never
// visited are reported like unexpanded children.
func (e Exporter) Export(arena *tree.Arena, root int, areaScore float64) (*domain.Report, error) {
	if arena == nil {
		return nil, fmt.Errorf("%w: empty arena", errors.ErrNodeIndex)
	}
	rootNode, ok := arena.Node(root)
	if !ok {
		return nil, fmt.Errorf("%w: root %d", errors.ErrNodeIndex, root)
	}
	if rootNode.MoveCount == 0 {
		return nil, errors.ErrUnvisitedRoot
	}

	type frame struct {
		index int
		out   *domain.ReportNode
	}

	visited := make([]bool, arena.Len())
	report := &domain.Report{
		FinalScore: areaScore - e.Komi,
		ReportNode: &domain.ReportNode{},
	}
	stack := []frame{{index: root, out: report.ReportNode}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[f.index] {
			return nil, fmt.Errorf("%w: node %d", errors.ErrTreeCycle, f.index)
		}
		visited[f.index] = true

		node := &arena.Nodes[f.index]
		e.fillStats(f.out, node)
		if !node.Evaled || node.ValueMoveCount == 0 {
			continue
		}
		e.fillValues(f.out, node)

		for _, c := range node.Children {
			if c.Value == tree.Unevaluated {
				continue
			}
			child := &domain.ReportChild{
				Pos:       move.FromBoard(e.Geometry, c.Pos),
				PureValue: c.Value,
			}
			f.out.Children = append(f.out.Children, child)
			if c.Index == tree.NotExpanded {
				continue
			}

			next, ok := arena.Node(c.Index)
			if !ok {
				return nil, fmt.Errorf("%w: child %d of node %d", errors.ErrNodeIndex, c.Index, f.index)
			}
			if next.MoveCount == 0 {
				continue
			}
			child.ReportNode = &domain.ReportNode{}
			stack = append(stack, frame{index: c.Index, out: child.ReportNode})
		}
	}
	return report, nil
}

func (e Exporter) fillStats(out *domain.ReportNode, node *tree.Node) {
	visits := float64(node.MoveCount)
	out.Win = node.Win / visits
	out.Playouts = node.MoveCount
	out.Owner = make([]float64, 0, e.Geometry.Area())
	out.Score = -e.Komi

	for y := 0; y < e.Geometry.Size; y++ {
		for x := 0; x < e.Geometry.Size; x++ {
			pos := e.Geometry.Pos(x, y)
			black := 0
			if pos < len(node.Statistic) {
				black = node.Statistic[pos].Colors[board.Black]
			}
			own := float64(black) / visits
			out.Owner = append(out.Owner, own)
			if own > 0.5 {
				out.Score++
			} else {
				out.Score--
			}
		}
	}
}

func (e Exporter) fillValues(out *domain.ReportNode, node *tree.Node) {
	if len(node.Policy) > 0 {
		out.Policy = append([]float64(nil), node.Policy...)
	}
	winValue := node.ValueWin / float64(node.ValueMoveCount)
	winPlusValue := (node.Win + node.ValueWin*e.ValueScale) /
		(float64(node.MoveCount) + float64(node.ValueMoveCount)*e.ValueScale)
	out.WinValue = &winValue
	out.WinPlusValue = &winPlusValue
}
