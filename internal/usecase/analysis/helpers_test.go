package analysis

import (
	"encoding/json"
	"testing"

	"go.uber.org/zap/zaptest"

	domain "ray_analysis/internal/domain/analysis"
	repo "ray_analysis/internal/repository"
)

func newTestUseCase(t *testing.T, size int) *AnalysisUseCase {
	t.Helper()
	log := zaptest.NewLogger(t).Sugar()
	engine := repo.NewUctEngine(repo.EngineConfig{Seed: 1, ExpandThreshold: 2, EvalThreshold: 1}, nil, log)
	return NewAnalysisUseCase(engine, nil, Settings{
		BoardSize:  size,
		Komi:       6.5,
		ValueScale: 0.5,
		Budget:     domain.Budget{Mode: domain.ConstPlayoutMode, Playouts: 16},
	}, log)
}

type warnings []string

func (w *warnings) add(msg string) { *w = append(*w, msg) }

func newTestSession(t *testing.T, uc *AnalysisUseCase, w *warnings) *Session {
	t.Helper()
	s, err := uc.NewSession(w.add)
	if err != nil {
		t.Fatalf("NewSession error = %v", err)
	}
	return s
}

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode %s: %v", s, err)
	}
	return v
}

func present(t *testing.T, s string) domain.Field {
	return domain.Field{Value: decode(t, s), Present: true}
}
