package analysis

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	domain "ray_analysis/internal/domain/analysis"
	"ray_analysis/internal/domain/board"
	"ray_analysis/internal/domain/move"
)

type Engine interface {
	NewBoard(size int) (board.Board, error)
	Search(ctx context.Context, b board.Board, params domain.SearchParams) (domain.SearchResult, error)
}

// ArchiveStore is optional; nil disables archiving.
type ArchiveStore interface {
	SaveSGF(ctx context.Context, id string, sgfText string) error
	SaveRecord(ctx context.Context, rec domain.Record) error
}

type Settings struct {
	BoardSize  int
	Komi       float64
	ValueScale float64
	Budget     domain.Budget
}

type AnalysisUseCase struct {
	engine   Engine
	archive  ArchiveStore
	settings Settings
	budget   domain.Budget
	log      *zap.SugaredLogger
}

func NewAnalysisUseCase(engine Engine, archive ArchiveStore, settings Settings, log *zap.SugaredLogger) *AnalysisUseCase {
	return &AnalysisUseCase{
		engine:   engine,
		archive:  archive,
		settings: settings,
		budget:   settings.Budget,
		log:      log,
	}
}

// Budget returns the search budget that the next search will use.
func (a *AnalysisUseCase) Budget() domain.Budget {
	return a.budget
}

// Analyse runs one search on the session position and exports its tree.
func (a *AnalysisUseCase) Analyse(ctx context.Context, s *Session) (move.Move, *domain.Report, error) {
	params := domain.SearchParams{
		ToMove:        s.ToMove,
		Komi:          s.Komi,
		Handicap:      s.Handicap,
		ConstHandicap: s.ConstHandicap,
		Budget:        a.budget,
	}
	res, err := a.engine.Search(ctx, s.Board, params)
	if err != nil {
		return move.Move{}, nil, fmt.Errorf("search: %w", err)
	}

	exporter := Exporter{Geometry: s.Geometry, Komi: s.Komi, ValueScale: a.settings.ValueScale}
	report, err := exporter.Export(res.Tree, res.Root, s.Board.AreaScore())
	if err != nil {
		return move.Move{}, nil, fmt.Errorf("export search tree: %w", err)
	}
	return move.FromBoard(s.Geometry, res.Move), report, nil
}

// Archive stores the reconstructed game. Failures are logged and swallowed.
func (a *AnalysisUseCase) Archive(ctx context.Context, id string, requestType string, s *Session, responses int) {
	if a.archive == nil {
		return
	}

	game := BuildSGF(s)
	sgfText := SerializeSGF(&game)
	if err := a.archive.SaveSGF(ctx, id, sgfText); err != nil {
		a.log.Warnw("failed to cache sgf", "id", id, "error", err)
	}

	moves := make([]string, 0, len(s.Moves))
	for _, m := range s.Moves {
		moves = append(moves, m.String())
	}
	rec := domain.Record{
		ID:        id,
		Request:   requestType,
		CreatedAt: time.Now().UTC(),
		BoardSize: s.Geometry.Size,
		Komi:      s.Komi,
		Handicap:  s.Handicap,
		Moves:     moves,
		SGF:       sgfText,
		Responses: responses,
	}
	if err := a.archive.SaveRecord(ctx, rec); err != nil {
		a.log.Warnw("failed to archive analysis", "id", id, "error", err)
	}
}
