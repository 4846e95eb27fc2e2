package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"go.uber.org/zap/zaptest"

	domain "ray_analysis/internal/domain/analysis"
	repo "ray_analysis/internal/repository"
	analysisUC "ray_analysis/internal/usecase/analysis"
)

func newTestDispatcher(t *testing.T, warnings bool) *Dispatcher {
	t.Helper()
	log := zaptest.NewLogger(t).Sugar()
	engine := repo.NewUctEngine(repo.EngineConfig{Seed: 1, ExpandThreshold: 2, EvalThreshold: 1}, nil, log)
	uc := analysisUC.NewAnalysisUseCase(engine, nil, analysisUC.Settings{
		BoardSize:  9,
		Komi:       6.5,
		ValueScale: 0.5,
		Budget:     domain.Budget{Mode: domain.ConstPlayoutMode, Playouts: 16},
	}, log)
	return NewDispatcher(uc, warnings, log)
}

// serve runs the stdio loop over input and returns the output lines.
func serve(t *testing.T, d *Dispatcher, input string) []string {
	t.Helper()
	var out bytes.Buffer
	if err := d.Serve(context.Background(), strings.NewReader(input), &out, 1<<20); err != nil {
		t.Fatalf("Serve error = %v", err)
	}
	text := strings.TrimSuffix(out.String(), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func decodeLine(t *testing.T, line string) map[string]any {
	t.Helper()
	var v map[string]any
	if err := json.Unmarshal([]byte(line), &v); err != nil {
		t.Fatalf("response %q is not a JSON object: %v", line, err)
	}
	return v
}

func finalScore(t *testing.T, resp map[string]any) float64 {
	t.Helper()
	tree, ok := resp["tree"].(map[string]any)
	if !ok {
		t.Fatalf("response has no tree: %v", resp)
	}
	score, ok := tree["finalScore"].(float64)
	if !ok {
		t.Fatalf("tree has no finalScore: %v", tree)
	}
	return score
}

func TestUpdateTimeSettingsResponse(t *testing.T) {
	lines := serve(t, newTestDispatcher(t, true), `{"request":"update-time-settings","timeSettings":{"playouts":8}}`+"\n")
	if len(lines) != 1 || lines[0] != `{"response":"update-time-settings"}` {
		t.Fatalf("lines = %q", lines)
	}
}

func TestAnalysePositionAfterOneStone(t *testing.T) {
	d := newTestDispatcher(t, false)
	lines := serve(t, d, `{"request":"analyse-position","gameSettings":{"komi":6.5},"game":[{"x":3,"y":3}]}`+"\n")
	if len(lines) != 1 {
		t.Fatalf("lines = %q, want one response", lines)
	}

	resp := decodeLine(t, lines[0])
	if resp["response"] != domain.RequestAnalysePosition {
		t.Fatalf("response = %v", resp)
	}
	if _, ok := resp["moveNumber"]; ok {
		t.Fatalf("analyse-position must not carry moveNumber: %v", resp)
	}
	switch rayMove := resp["rayMove"].(type) {
	case string:
		if rayMove != "pass" && rayMove != "resign" {
			t.Fatalf("rayMove = %q", rayMove)
		}
	case map[string]any:
		if rayMove["x"] == 3.0 && rayMove["y"] == 3.0 {
			t.Fatalf("rayMove %v is on the black stone", rayMove)
		}
	default:
		t.Fatalf("rayMove = %#v", resp["rayMove"])
	}
	if got := finalScore(t, resp); got != 74.5 {
		t.Fatalf("finalScore = %v, want 74.5", got)
	}
}

func TestAnalysePositionInvalidMove(t *testing.T) {
	lines := serve(t, newTestDispatcher(t, false), `{"request":"analyse-position","game":[{"x":-1,"y":-1}]}`+"\n")
	want := `{"response":"error","message":"Invalid move 1 in game."}`
	if len(lines) != 1 || lines[0] != want {
		t.Fatalf("lines = %q, want %q", lines, want)
	}
}

func TestAnalysePositionHandicap(t *testing.T) {
	lines := serve(t, newTestDispatcher(t, false), `{"request":"analyse-position","gameSettings":{"handicap":4}}`+"\n")
	if len(lines) != 1 {
		t.Fatalf("lines = %q", lines)
	}
	if got := finalScore(t, decodeLine(t, lines[0])); got != 80.5 {
		t.Fatalf("finalScore = %v, want 80.5", got)
	}
}

func TestAnalysePositionInvalidGame(t *testing.T) {
	lines := serve(t, newTestDispatcher(t, false), `{"request":"analyse-position","gameTree":{"x":1,"y":1,"next":4}}`+"\n")
	want := `{"response":"error","message":"Invalid game."}`
	if len(lines) != 1 || lines[0] != want {
		t.Fatalf("lines = %q, want %q", lines, want)
	}
}

func TestMalformedRequests(t *testing.T) {
	tests := []struct {
		name string
		line string
		msg  string
	}{
		{"broken json", `{"request":`, MsgInvalidRequest},
		{"array", `[1,2]`, MsgInvalidRequest},
		{"two objects", `{} {}`, MsgInvalidRequest},
		{"empty line", ``, MsgInvalidRequest},
		{"unknown type", `{"request":"dance"}`, MsgInvalidRequestType},
		{"missing type", `{"game":[]}`, MsgInvalidRequestType},
		{"numeric type", `{"request":7}`, MsgInvalidRequestType},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lines := serve(t, newTestDispatcher(t, false), tc.line+"\n")
			want := `{"response":"error","message":"` + tc.msg + `"}`
			if len(lines) != 1 || lines[0] != want {
				t.Fatalf("lines = %q, want %q", lines, want)
			}
		})
	}
}

func TestMalformedRequestDoesNotEndSession(t *testing.T) {
	lines := serve(t, newTestDispatcher(t, false), "nonsense\n"+`{"request":"update-time-settings"}`+"\n")
	if len(lines) != 2 || lines[1] != `{"response":"update-time-settings"}` {
		t.Fatalf("lines = %q", lines)
	}
}

func TestQuitStopsProcessing(t *testing.T) {
	input := `{"request":"quit"}` + "\n" + `{"request":"update-time-settings"}` + "\n"
	lines := serve(t, newTestDispatcher(t, false), input)
	if len(lines) != 1 || lines[0] != `{"response":"quit"}` {
		t.Fatalf("lines = %q", lines)
	}
}

func TestAnalyseGame(t *testing.T) {
	lines := serve(t, newTestDispatcher(t, false), `{"request":"analyse-game","game":[{"x":2,"y":2},{"x":6,"y":6}]}`+"\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q, want three responses", lines)
	}
	for i, line := range lines[:2] {
		resp := decodeLine(t, line)
		if resp["response"] != domain.RequestAnalysePosition || resp["moveNumber"] != float64(i+1) {
			t.Fatalf("response %d = %v", i, resp)
		}
	}
	if got := finalScore(t, decodeLine(t, lines[0])); got != 81-6.5 {
		t.Fatalf("finalScore after move 1 = %v, want 74.5", got)
	}
	if got := finalScore(t, decodeLine(t, lines[1])); got != -6.5 {
		t.Fatalf("finalScore after move 2 = %v, want -6.5", got)
	}
	if lines[2] != `{"response":"analyse-game"}` {
		t.Fatalf("last line = %q", lines[2])
	}
}

func TestAnalyseGameStopsAtIllegalMove(t *testing.T) {
	lines := serve(t, newTestDispatcher(t, false), `{"request":"analyse-game","game":[{"x":2,"y":2},{"x":2,"y":2}]}`+"\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q, want one analysis and one error", lines)
	}
	if lines[1] != `{"response":"error","message":"Invalid move 2 in game."}` {
		t.Fatalf("error line = %q", lines[1])
	}
}

func TestWarnings(t *testing.T) {
	input := `{"request":"update-time-settings","timeSettings":{"playouts":"lots"}}` + "\n"

	lines := serve(t, newTestDispatcher(t, true), input)
	wantWarning := `{"response":"warning","message":"` + analysisUC.WarnPlayouts + `"}`
	if len(lines) != 2 || lines[0] != wantWarning || lines[1] != `{"response":"update-time-settings"}` {
		t.Fatalf("warnings on: lines = %q", lines)
	}

	lines = serve(t, newTestDispatcher(t, false), input)
	if len(lines) != 1 || lines[0] != `{"response":"update-time-settings"}` {
		t.Fatalf("warnings off: lines = %q", lines)
	}
}

func TestHandleReportsWriteErrors(t *testing.T) {
	d := newTestDispatcher(t, false)
	broken := errors.New("pipe closed")
	calls := 0
	emit := func(any) error {
		calls++
		return broken
	}

	quit, err := d.Handle(context.Background(), []byte(`{"request":"analyse-game","game":[{"x":1,"y":1},{"x":2,"y":2}]}`), emit)
	if quit || !errors.Is(err, broken) {
		t.Fatalf("Handle = %v, %v; want false, %v", quit, err, broken)
	}
	if calls != 1 {
		t.Fatalf("emit called %d times after the first failure", calls)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestServeErrors(t *testing.T) {
	d := newTestDispatcher(t, false)

	err := d.Serve(context.Background(), strings.NewReader(`{"request":"quit"}`+"\n"), failingWriter{}, 1<<20)
	if err == nil || !strings.Contains(err.Error(), "write response") {
		t.Fatalf("Serve error = %v, want a write error", err)
	}

	err = d.Serve(context.Background(), iotest.ErrReader(errors.New("tty gone")), &bytes.Buffer{}, 1<<20)
	if err == nil || !strings.Contains(err.Error(), "read request") {
		t.Fatalf("Serve error = %v, want a read error", err)
	}
}

func TestServeSkipsOversizedLine(t *testing.T) {
	d := newTestDispatcher(t, false)
	long := `{"request":"update-time-settings","pad":"` + strings.Repeat("x", 64) + `"}`
	input := long + "\n" + `{"request":"quit"}` + "\n"

	var out bytes.Buffer
	if err := d.Serve(context.Background(), strings.NewReader(input), &out, 32); err != nil {
		t.Fatalf("Serve error = %v", err)
	}
	want := `{"response":"error","message":"Invalid request."}` + "\n" + `{"response":"quit"}` + "\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
}
