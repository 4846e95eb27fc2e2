package repo

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"ray_analysis/internal/domain/analysis"
	"ray_analysis/internal/domain/board"
	"ray_analysis/internal/domain/tree"
	"ray_analysis/internal/errors"
)

const (
	puctWeight = 1.2
	firstPlay  = 0.5
)

// DefaultMaxNodes keeps the tree near 350 MB on 19x19: every node carries an
// ownership table for the whole padded board.
const DefaultMaxNodes = 1 << 15

type EngineConfig struct {
	Seed            int64
	ExpandThreshold int
	EvalThreshold   int
	MaxNodes        int
}

// Evaluator stands in for the network: priors for the candidate moves and a
// position value for toMove.
type Evaluator interface {
	Evaluate(b *GoBoard, toMove board.Color, komi float64, moves []int) (priors []float64, value float64)
}

// UctEngine is a small UCT searcher with random playouts. It only works with
// boards it created itself.
type UctEngine struct {
	cfg  EngineConfig
	log  *zap.SugaredLogger
	rnd  *rand.Rand
	eval Evaluator
}

func NewUctEngine(cfg EngineConfig, eval Evaluator, log *zap.SugaredLogger) *UctEngine {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.MaxNodes <= 0 {
		cfg.MaxNodes = DefaultMaxNodes
	}
	if eval == nil {
		eval = HeuristicEvaluator{}
	}
	return &UctEngine{
		cfg:  cfg,
		log:  log,
		rnd:  rand.New(rand.NewSource(seed)),
		eval: eval,
	}
}

func (e *UctEngine) NewBoard(size int) (board.Board, error) {
	geo, err := board.NewGeometry(size)
	if err != nil {
		return nil, err
	}
	return NewGoBoard(geo), nil
}

type searchState struct {
	arena     *tree.Arena
	geo       board.Geometry
	rootColor board.Color
	komi      float64
}

func (e *UctEngine) Search(ctx context.Context, b board.Board, params analysis.SearchParams) (analysis.SearchResult, error) {
	gb, ok := b.(*GoBoard)
	if !ok {
		return analysis.SearchResult{}, errors.ErrForeignBoard
	}
	if params.ToMove != board.Black && params.ToMove != board.White {
		return analysis.SearchResult{}, fmt.Errorf("search: no color to move (%v)", params.ToMove)
	}

	st := &searchState{
		arena:     tree.NewArena(1024),
		geo:       gb.Geometry(),
		rootColor: params.ToMove,
		komi:      params.Komi,
	}
	root := e.newNode(st, gb, params.ToMove)
	value := e.evaluate(st, root, gb, params.ToMove)
	st.arena.Nodes[root].ValueWin += value
	st.arena.Nodes[root].ValueMoveCount++

	var deadline time.Time
	if params.Budget.Mode == analysis.ConstTimeMode {
		deadline = time.Now().Add(time.Duration(params.Budget.Seconds * float64(time.Second)))
	}

	started := time.Now()
	playouts := 0
	for {
		if playouts > 0 {
			if params.Budget.Mode == analysis.ConstTimeMode && !time.Now().Before(deadline) {
				break
			}
			if params.Budget.Mode == analysis.ConstPlayoutMode && playouts >= params.Budget.Playouts {
				break
			}
			if ctx.Err() != nil {
				break
			}
		}
		e.playout(st, root, gb.Copy())
		playouts++
	}

	best := e.bestMove(st, root)
	e.log.Debugw("search finished",
		"playouts", playouts,
		"nodes", st.arena.Len(),
		"elapsed", time.Since(started).String(),
		"move", best,
	)
	return analysis.SearchResult{Move: best, Root: root, Tree: st.arena}, nil
}

func (e *UctEngine) newNode(st *searchState, b *GoBoard, toMove board.Color) int {
	points := st.geo.Points()
	children := make([]tree.Child, 0, len(points)+1)
	for _, p := range points {
		if b.IsLegal(p, toMove) {
			children = append(children, tree.Child{Pos: p, Value: tree.Unevaluated, Index: tree.NotExpanded})
		}
	}
	children = append(children, tree.Child{Pos: board.Pass, Value: tree.Unevaluated, Index: tree.NotExpanded})

	return st.arena.Add(tree.Node{
		Statistic: make([]tree.Statistic, st.geo.Max()),
		Children:  children,
	})
}

// evaluate scores the node's children and returns the position value from
// the root player's point of view.
func (e *UctEngine) evaluate(st *searchState, idx int, b *GoBoard, toMove board.Color) float64 {
	node := &st.arena.Nodes[idx]
	moves := make([]int, len(node.Children))
	for i, c := range node.Children {
		moves[i] = c.Pos
	}
	priors, value := e.eval.Evaluate(b, toMove, st.komi, moves)
	// лишние priors от оценщика отбрасываем
	if len(priors) > len(node.Children) {
		priors = priors[:len(node.Children)]
	}

	sum := 0.0
	for _, p := range priors {
		sum += p
	}
	node.Policy = make([]float64, len(priors))
	for i, p := range priors {
		if sum > 0 {
			p /= sum
		}
		node.Policy[i] = p
		node.Children[i].Value = p
	}
	node.Evaled = true

	if toMove != st.rootColor {
		value = 1 - value
	}
	return value
}

func (e *UctEngine) playout(st *searchState, root int, b *GoBoard) {
	path := []int{root}
	idx := root
	color := st.rootColor
	passes := 0

	for {
		node := &st.arena.Nodes[idx]
		ci := e.selectChild(st, node, color)
		child := node.Children[ci]
		b.PutStone(child.Pos, color)
		if child.Pos == board.Pass {
			passes++
		} else {
			passes = 0
		}
		color = color.Opponent()

		if child.Index != tree.NotExpanded {
			idx = child.Index
			path = append(path, idx)
			if passes >= 2 {
				break
			}
			continue
		}

		canExpand := idx == root || node.MoveCount >= e.cfg.ExpandThreshold
		if canExpand && st.arena.Len() < e.cfg.MaxNodes {
			next := e.newNode(st, b, color)
			// после Add указатель node мог устареть
			st.arena.Nodes[idx].Children[ci].Index = next
			idx = next
			path = append(path, idx)
		}
		break
	}

	leaf := &st.arena.Nodes[idx]
	if !leaf.Evaled && leaf.MoveCount+1 >= e.cfg.EvalThreshold {
		value := e.evaluate(st, idx, b, color)
		for _, n := range path {
			st.arena.Nodes[n].ValueWin += value
			st.arena.Nodes[n].ValueMoveCount++
		}
	}

	winner := e.rollout(st, b, color, passes)
	owners := b.Owners()
	points := st.geo.Points()
	for _, n := range path {
		node := &st.arena.Nodes[n]
		node.MoveCount++
		if winner == st.rootColor {
			node.Win++
		}
		for _, p := range points {
			node.Statistic[p].Colors[owners[p]]++
		}
	}
}

func (e *UctEngine) selectChild(st *searchState, node *tree.Node, toMove board.Color) int {
	best, bestScore := 0, math.Inf(-1)
	uniform := 1.0 / float64(len(node.Children))
	sqrtParent := math.Sqrt(float64(node.MoveCount + 1))

	for i, c := range node.Children {
		q, visits := firstPlay, 0
		if c.Index != tree.NotExpanded {
			child := &st.arena.Nodes[c.Index]
			visits = child.MoveCount
			if visits > 0 {
				q = child.Win / float64(visits)
				if toMove != st.rootColor {
					q = 1 - q
				}
			}
		}
		prior := c.Value
		if prior == tree.Unevaluated {
			prior = uniform
		}
		score := q + puctWeight*prior*sqrtParent/float64(1+visits) + e.rnd.Float64()*1e-9
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// rollout plays random moves until two passes in a row and returns the winner.
func (e *UctEngine) rollout(st *searchState, b *GoBoard, color board.Color, passes int) board.Color {
	points := st.geo.Points()
	limit := 3 * st.geo.Area()
	for i := 0; i < limit && passes < 2; i++ {
		pos := e.randomMove(b, points, color)
		b.PutStone(pos, color)
		if pos == board.Pass {
			passes++
		} else {
			passes = 0
		}
		color = color.Opponent()
	}
	if b.AreaScore()-st.komi > 0 {
		return board.Black
	}
	return board.White
}

func (e *UctEngine) randomMove(b *GoBoard, points []int, color board.Color) int {
	start := e.rnd.Intn(len(points))
	for i := range points {
		p := points[(start+i)%len(points)]
		if b.At(p) != board.Empty || b.isEye(p, color) {
			continue
		}
		if b.IsLegal(p, color) {
			return p
		}
	}
	return board.Pass
}

func (e *UctEngine) bestMove(st *searchState, root int) int {
	best, bestVisits := board.Pass, -1
	for _, c := range st.arena.Nodes[root].Children {
		if c.Index == tree.NotExpanded {
			continue
		}
		if visits := st.arena.Nodes[c.Index].MoveCount; visits > bestVisits {
			best, bestVisits = c.Pos, visits
		}
	}
	return best
}

// HeuristicEvaluator stands in for the value/policy network: it prefers
// moves near existing stones and on the third and fourth lines, and values a
// position by its current area count.
type HeuristicEvaluator struct{}

func (HeuristicEvaluator) Evaluate(b *GoBoard, toMove board.Color, komi float64, moves []int) ([]float64, float64) {
	geo := b.Geometry()
	priors := make([]float64, len(moves))
	for i, m := range moves {
		if m == board.Pass {
			priors[i] = 0.1
			continue
		}
		w := 1.0
		x, y := geo.XY(m)
		line := min(x, y, geo.Size-1-x, geo.Size-1-y)
		if line == 2 || line == 3 {
			w += 1
		}
		for _, n := range geo.Neighbors(m) {
			if c := b.At(n); c == board.Black || c == board.White {
				w += 0.5
			}
		}
		priors[i] = w
	}

	score := b.AreaScore() - komi
	if toMove == board.White {
		score = -score
	}
	value := 1 / (1 + math.Exp(-score/float64(geo.Size)))
	return priors, value
}
