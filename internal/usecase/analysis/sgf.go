package analysis

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"ray_analysis/internal/domain/board"
	"ray_analysis/internal/domain/move"
	"ray_analysis/internal/domain/sgf"
)

var sgfPropertyOrder = []string{"FF", "GM", "SZ", "KM", "HA", "AB", "RU", "C", "B", "W"}

// BuildSGF records the reconstructed position: setup stones in the root node
// and one node per replayed move.
func BuildSGF(s *Session) sgf.SGF {
	root := sgf.NewNode()
	root.Add("FF", "4")
	root.Add("GM", "1")
	root.Add("SZ", strconv.Itoa(s.Geometry.Size))
	root.Add("KM", strconv.FormatFloat(s.Komi, 'f', -1, 64))
	// constHandicap обнуляет Handicap, но камни остаются на доске
	handicap := s.Handicap
	if len(s.HandicapStones) > 0 {
		handicap = len(s.HandicapStones)
	}
	if handicap > 0 {
		root.Add("HA", strconv.Itoa(handicap))
	}
	for _, p := range s.HandicapStones {
		root.Add("AB", sgf.Point(p.X, p.Y))
	}
	root.Add("RU", "Chinese")

	gameTree := &sgf.GameTree{Nodes: []sgf.Node{root}}
	for _, m := range s.Moves {
		node := sgf.NewNode()
		key := "B"
		if m.Color == board.White {
			key = "W"
		}
		value := ""
		if m.Kind == move.Play {
			value = sgf.Point(m.X, m.Y)
		}
		node.Add(key, value)
		gameTree.Nodes = append(gameTree.Nodes, node)
	}
	return sgf.SGF{Root: gameTree}
}

func SerializeSGF(s *sgf.SGF) string {
	var builder strings.Builder
	builder.WriteString("(")
	serializeGameTree(&builder, s.Root)
	builder.WriteString(")")
	return builder.String()
}

func serializeGameTree(builder *strings.Builder, tree *sgf.GameTree) {
	for _, node := range tree.Nodes {
		builder.WriteString(";")

		used := make(map[string]bool, len(node.Properties))
		for _, key := range sgfPropertyOrder {
			if values, ok := node.Properties[key]; ok {
				used[key] = true
				writeProperty(builder, key, values)
			}
		}

		// остальные свойства в алфавитном порядке, чтобы вывод был стабильным
		rest := make([]string, 0, len(node.Properties))
		for key := range node.Properties {
			if !used[key] {
				rest = append(rest, key)
			}
		}
		sort.Strings(rest)
		for _, key := range rest {
			writeProperty(builder, key, node.Properties[key])
		}
	}

	for _, child := range tree.Children {
		builder.WriteString("(")
		serializeGameTree(builder, child)
		builder.WriteString(")")
	}
}

func writeProperty(builder *strings.Builder, key string, values []string) {
	builder.WriteString(key)
	for _, v := range values {
		fmt.Fprintf(builder, "[%s]", escapeSGF(v))
	}
}

func escapeSGF(v string) string {
	return strings.NewReplacer(`\`, `\\`, `]`, `\]`).Replace(v)
}
