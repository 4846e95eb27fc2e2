package analysis

import (
	"testing"

	"ray_analysis/internal/domain/sgf"
)

func TestBuildSGF(t *testing.T) {
	uc := newTestUseCase(t, 9)
	var w warnings
	s := newTestSession(t, uc, &w)
	SetFreeHandicap(s, decode(t, `[{"x":2,"y":2},{"x":6,"y":6}]`).([]any))

	g, err := parseGame(t, `[{"x":4,"y":4},"pass"]`, "")
	if err != nil {
		t.Fatalf("ParseGame error = %v", err)
	}
	if err := s.Replay(g); err != nil {
		t.Fatalf("Replay error = %v", err)
	}

	game := BuildSGF(s)
	got := SerializeSGF(&game)
	want := "(;FF[4]GM[1]SZ[9]KM[0.5]HA[2]AB[cc][gg]RU[Chinese];W[ee];B[])"
	if got != want {
		t.Fatalf("SerializeSGF = %s, want %s", got, want)
	}
}

func TestBuildSGFKeepsHandicapAfterConstHandicap(t *testing.T) {
	uc := newTestUseCase(t, 9)
	var w warnings
	s := newTestSession(t, uc, &w)
	uc.ApplyGameSettings(s, present(t, `{"handicap":2,"constHandicap":2}`))
	if s.Handicap != 0 {
		t.Fatalf("Handicap = %d, want 0 after constHandicap", s.Handicap)
	}

	game := BuildSGF(s)
	want := "(;FF[4]GM[1]SZ[9]KM[0.5]HA[2]AB[gc][cg]RU[Chinese])"
	if got := SerializeSGF(&game); got != want {
		t.Fatalf("SerializeSGF = %s, want %s", got, want)
	}
}

func TestBuildSGFEmptyGame(t *testing.T) {
	uc := newTestUseCase(t, 19)
	var w warnings
	s := newTestSession(t, uc, &w)

	game := BuildSGF(s)
	if got, want := SerializeSGF(&game), "(;FF[4]GM[1]SZ[19]KM[6.5]RU[Chinese])"; got != want {
		t.Fatalf("SerializeSGF = %s, want %s", got, want)
	}
}

func TestSerializeSGFVariationsAndEscaping(t *testing.T) {
	root := sgf.NewNode()
	root.Add("SZ", "9")
	root.Add("PB", "a]b")
	root.Add("C", `back\slash`)
	root.Add("AW", "aa")

	variation := sgf.NewNode()
	variation.Add("B", "bb")

	game := sgf.SGF{Root: &sgf.GameTree{
		Nodes:    []sgf.Node{root},
		Children: []*sgf.GameTree{{Nodes: []sgf.Node{variation}}, {Nodes: []sgf.Node{variation}}},
	}}

	want := `(;SZ[9]C[back\\slash]AW[aa]PB[a\]b](;B[bb])(;B[bb]))`
	if got := SerializeSGF(&game); got != want {
		t.Fatalf("SerializeSGF = %s, want %s", got, want)
	}
}
