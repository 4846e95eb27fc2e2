package analysis

import (
	"testing"

	domain "ray_analysis/internal/domain/analysis"
	"ray_analysis/internal/domain/board"
)

func TestUpdateTimeSettings(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		want     domain.Budget
		warnings []string
	}{
		{"playouts", `{"playouts":100}`,
			domain.Budget{Mode: domain.ConstPlayoutMode, Playouts: 100}, nil},
		{"time", `{"time":2.5}`,
			domain.Budget{Mode: domain.ConstTimeMode, Playouts: 16, Seconds: 2.5}, nil},
		{"time wins over playouts", `{"playouts":50,"time":1}`,
			domain.Budget{Mode: domain.ConstTimeMode, Playouts: 50, Seconds: 1}, nil},
		{"mistyped playouts", `{"playouts":"many"}`,
			domain.Budget{Mode: domain.ConstPlayoutMode, Playouts: 16}, []string{WarnPlayouts}},
		{"zero playouts", `{"playouts":0}`,
			domain.Budget{Mode: domain.ConstPlayoutMode, Playouts: 16}, []string{WarnPlayoutsPositive}},
		{"negative time", `{"time":-3}`,
			domain.Budget{Mode: domain.ConstPlayoutMode, Playouts: 16}, []string{WarnTimePositive}},
		{"mistyped time", `{"time":null}`,
			domain.Budget{Mode: domain.ConstPlayoutMode, Playouts: 16}, []string{WarnTime}},
		{"not an object", `[1]`,
			domain.Budget{Mode: domain.ConstPlayoutMode, Playouts: 16}, []string{WarnTimeSettings}},
		{"empty object", `{}`,
			domain.Budget{Mode: domain.ConstPlayoutMode, Playouts: 16}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			uc := newTestUseCase(t, 9)
			var w warnings
			uc.UpdateTimeSettings(present(t, tc.in), w.add)

			if uc.Budget() != tc.want {
				t.Fatalf("Budget = %+v, want %+v", uc.Budget(), tc.want)
			}
			if len(w) != len(tc.warnings) {
				t.Fatalf("warnings = %v, want %v", w, tc.warnings)
			}
			for i := range w {
				if w[i] != tc.warnings[i] {
					t.Fatalf("warnings[%d] = %q, want %q", i, w[i], tc.warnings[i])
				}
			}
		})
	}
}

func TestUpdateTimeSettingsAbsent(t *testing.T) {
	uc := newTestUseCase(t, 9)
	var w warnings
	uc.UpdateTimeSettings(domain.Field{}, w.add)
	if len(w) != 0 || uc.Budget().Playouts != 16 {
		t.Fatalf("absent settings changed state: %+v, %v", uc.Budget(), w)
	}
}

func TestBudgetPersistsAcrossRequests(t *testing.T) {
	uc := newTestUseCase(t, 9)
	var w warnings
	uc.UpdateTimeSettings(present(t, `{"playouts":42}`), w.add)
	uc.UpdateTimeSettings(domain.Field{}, w.add)
	if uc.Budget().Playouts != 42 {
		t.Fatalf("Playouts = %d, want 42", uc.Budget().Playouts)
	}
}

func TestApplyGameSettings(t *testing.T) {
	tests := []struct {
		name          string
		in            string
		komi          float64
		handicap      int
		constHandicap int
		toMove        board.Color
		warnings      []string
	}{
		{"komi", `{"komi":7.5}`, 7.5, 0, 0, board.Black, nil},
		{"fixed handicap beats komi", `{"komi":7.5,"handicap":2}`, 0.5, 2, 0, board.White, nil},
		{"free handicap", `{"handicap":[{"x":3,"y":3}]}`, 0.5, 1, 0, board.White, nil},
		{"const handicap resets count", `{"handicap":3,"constHandicap":2}`, 0.5, 0, 2, board.White, nil},
		{"bad komi", `{"komi":"six"}`, 6.5, 0, 0, board.Black, []string{WarnKomi}},
		{"bad handicap", `{"handicap":"two"}`, 6.5, 0, 0, board.Black, []string{WarnHandicap}},
		{"fractional handicap", `{"handicap":2.5}`, 6.5, 0, 0, board.Black, []string{WarnHandicap}},
		{"bad const handicap", `{"constHandicap":true}`, 6.5, 0, 0, board.Black, []string{WarnConstHandicap}},
		{"not an object", `"none"`, 6.5, 0, 0, board.Black, []string{WarnGameSettings}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			uc := newTestUseCase(t, 9)
			var w warnings
			s := newTestSession(t, uc, &w)

			uc.ApplyGameSettings(s, present(t, tc.in))

			if s.Komi != tc.komi || s.Handicap != tc.handicap || s.ConstHandicap != tc.constHandicap || s.ToMove != tc.toMove {
				t.Fatalf("komi/handicap/const/toMove = %v/%d/%d/%v, want %v/%d/%d/%v",
					s.Komi, s.Handicap, s.ConstHandicap, s.ToMove, tc.komi, tc.handicap, tc.constHandicap, tc.toMove)
			}
			if len(w) != len(tc.warnings) {
				t.Fatalf("warnings = %v, want %v", w, tc.warnings)
			}
			for i := range w {
				if w[i] != tc.warnings[i] {
					t.Fatalf("warnings[%d] = %q, want %q", i, w[i], tc.warnings[i])
				}
			}
		})
	}
}

func TestSessionsDoNotShareState(t *testing.T) {
	uc := newTestUseCase(t, 9)
	var w warnings
	first := newTestSession(t, uc, &w)
	uc.ApplyGameSettings(first, present(t, `{"handicap":4,"komi":1}`))

	second := newTestSession(t, uc, &w)
	if second.Komi != 6.5 || second.Handicap != 0 || second.ToMove != board.Black || second.Board.AreaScore() != 0 {
		t.Fatalf("fresh session inherited state: %+v", second)
	}
}
