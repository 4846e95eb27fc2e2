package analysis

import (
	"math"

	domain "ray_analysis/internal/domain/analysis"
)

const (
	WarnTimeSettings     = "timeSettings needs to be an object."
	WarnPlayouts         = "playouts needs to be a number."
	WarnPlayoutsPositive = "playouts needs to be a positive integer."
	WarnTime             = "time needs to be a number."
	WarnTimePositive     = "time needs to be positive."
	WarnGameSettings     = "gameSettings needs to be an object."
	WarnHandicap         = "handicap needs to be an array of positions or a number."
	WarnKomi             = "komi needs to be a number."
	WarnConstHandicap    = "constHandicap needs to be a number"
	WarnHandicapPosition = "Invalid handicap position."
	WarnHandicapIllegal  = "Free handicap contains illegal move."
)

func number(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func wholeNumber(v any) (int, bool) {
	f, ok := number(v)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// UpdateTimeSettings switches the search budget. Absent keys are ignored,
// present but unusable ones are warned about and skipped. When both
// "playouts" and "time" are valid, time wins.
func (a *AnalysisUseCase) UpdateTimeSettings(f domain.Field, warn func(string)) {
	if !f.Present || f.Value == nil {
		return
	}
	settings, ok := f.Value.(map[string]any)
	if !ok {
		warn(WarnTimeSettings)
		return
	}

	if raw, ok := settings["playouts"]; ok {
		if _, isNumber := number(raw); !isNumber {
			warn(WarnPlayouts)
		} else if n, whole := wholeNumber(raw); !whole || n < 1 {
			warn(WarnPlayoutsPositive)
		} else {
			a.budget.Playouts = n
			a.budget.Mode = domain.ConstPlayoutMode
		}
	}

	if raw, ok := settings["time"]; ok {
		if seconds, isNumber := number(raw); !isNumber {
			warn(WarnTime)
		} else if seconds <= 0 {
			warn(WarnTimePositive)
		} else {
			a.budget.Seconds = seconds
			a.budget.Mode = domain.ConstTimeMode
		}
	}

	a.log.Debugw("time settings updated",
		"mode", a.budget.Mode.String(),
		"playouts", a.budget.Playouts,
		"seconds", a.budget.Seconds,
	)
}

// ApplyGameSettings applies komi, then handicap, then constHandicap. A placed
// handicap forces komi 0.5 regardless of the requested value.
func (a *AnalysisUseCase) ApplyGameSettings(s *Session, f domain.Field) {
	if !f.Present || f.Value == nil {
		return
	}
	settings, ok := f.Value.(map[string]any)
	if !ok {
		s.warn(WarnGameSettings)
		return
	}

	if raw, ok := settings["komi"]; ok {
		if komi, isNumber := number(raw); isNumber {
			s.Komi = komi
		} else {
			s.warn(WarnKomi)
		}
	}

	if raw, ok := settings["handicap"]; ok {
		switch h := raw.(type) {
		case []any:
			SetFreeHandicap(s, h)
		default:
			if n, whole := wholeNumber(raw); whole {
				SetFixedHandicap(s, n)
			} else {
				s.warn(WarnHandicap)
			}
		}
	}

	if raw, ok := settings["constHandicap"]; ok {
		if n, whole := wholeNumber(raw); whole {
			s.ConstHandicap = n
			// счётчик сбрасывается, HandicapStones не трогаем
			s.Handicap = 0
		} else {
			s.warn(WarnConstHandicap)
		}
	}
}
