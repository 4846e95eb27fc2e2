package analysis

import (
	"context"
	stdErrors "errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "ray_analysis/internal/domain/analysis"
	"ray_analysis/internal/errors"
	analysisUC "ray_analysis/internal/usecase/analysis"
)

const (
	MsgInvalidRequest     = "Invalid request."
	MsgInvalidRequestType = "Invalid request type."
	MsgInvalidGame        = "Invalid game."
	MsgAnalysisFailed     = "Analysis failed."
	msgInvalidMove        = "Invalid move %d in game."
)

// Emitter writes one response line. v is a domain.Response for locally
// handled requests and raw JSON for forwarded ones.
type Emitter func(v any) error

// RequestHandler processes one protocol line; Dispatcher is the local one.
type RequestHandler interface {
	Handle(ctx context.Context, line []byte, emit Emitter) (bool, error)
}

type handlerFunc func(ctx context.Context, c *call) (quit bool)

// call holds the state of one request and remembers the first write error.
type call struct {
	id   string
	req  domain.Request
	emit Emitter
	err  error
}

func (c *call) send(resp domain.Response) bool {
	if c.err != nil {
		return false
	}
	c.err = c.emit(resp)
	return c.err == nil
}

func (c *call) fail(msg string) {
	c.send(domain.Response{Response: domain.ResponseError, Message: msg})
}

// Dispatcher routes decoded requests to handlers. Every transport shares one
// instance, requests are processed strictly one at a time.
type Dispatcher struct {
	mu       sync.Mutex
	uc       *analysisUC.AnalysisUseCase
	warnings bool
	log      *zap.SugaredLogger
	handlers map[string]handlerFunc
}

func NewDispatcher(uc *analysisUC.AnalysisUseCase, warnings bool, log *zap.SugaredLogger) *Dispatcher {
	d := &Dispatcher{
		uc:       uc,
		warnings: warnings,
		log:      log,
	}
	d.handlers = map[string]handlerFunc{
		domain.RequestQuit:               d.handleQuit,
		domain.RequestAnalysePosition:    d.handleAnalysePosition,
		domain.RequestAnalyseGame:        d.handleAnalyseGame,
		domain.RequestUpdateTimeSettings: d.handleUpdateTimeSettings,
	}
	return d
}

// Handle processes one protocol line. It reports whether the session should
// end and returns only output errors; protocol problems become responses.
func (d *Dispatcher) Handle(ctx context.Context, line []byte, emit Emitter) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c := &call{id: uuid.New().String(), emit: emit}
	req, err := domain.ParseRequest(line)
	if err != nil {
		d.log.Infow("malformed request", "id", c.id, "error", err)
		c.fail(MsgInvalidRequest)
		return false, c.err
	}
	c.req = req

	handler, ok := d.handlers[req.Type]
	if !ok {
		d.log.Infow("unknown request type", "id", c.id, "type", req.Type)
		c.fail(MsgInvalidRequestType)
		return false, c.err
	}

	d.log.Infow("request", "id", c.id, "type", req.Type)
	quit := handler(ctx, c)
	return quit, c.err
}

func (d *Dispatcher) warn(c *call) func(string) {
	return func(msg string) {
		d.log.Warnw("request warning", "id", c.id, "message", msg)
		if d.warnings {
			c.send(domain.Response{Response: domain.ResponseWarning, Message: msg})
		}
	}
}

func (d *Dispatcher) handleQuit(_ context.Context, c *call) bool {
	c.send(domain.Response{Response: domain.RequestQuit})
	return true
}

func (d *Dispatcher) handleUpdateTimeSettings(_ context.Context, c *call) bool {
	d.uc.UpdateTimeSettings(c.req.TimeSettings, d.warn(c))
	c.send(domain.Response{Response: domain.RequestUpdateTimeSettings})
	return false
}

// prepare resets the session for an analyse request and parses its game.
func (d *Dispatcher) prepare(c *call) (*analysisUC.Session, analysisUC.Game, bool) {
	warn := d.warn(c)
	d.uc.UpdateTimeSettings(c.req.TimeSettings, warn)

	s, err := d.uc.NewSession(warn)
	if err != nil {
		d.log.Errorw("failed to create session", "id", c.id, "error", err)
		c.fail(MsgAnalysisFailed)
		return nil, analysisUC.Game{}, false
	}
	d.uc.ApplyGameSettings(s, c.req.GameSettings)

	game, err := analysisUC.ParseGame(c.req, s.Geometry.Size)
	if err != nil {
		d.log.Infow("invalid game", "id", c.id, "error", err)
		c.fail(MsgInvalidGame)
		return nil, analysisUC.Game{}, false
	}
	return s, game, true
}

func (d *Dispatcher) moveFailed(c *call, err error) {
	var moveErr *errors.MoveError
	if stdErrors.As(err, &moveErr) {
		d.log.Infow("illegal game move", "id", c.id, "index", moveErr.Index)
		c.fail(fmt.Sprintf(msgInvalidMove, moveErr.Index))
		return
	}
	d.log.Errorw("replay failed", "id", c.id, "error", err)
	c.fail(MsgInvalidGame)
}

func (d *Dispatcher) analyse(ctx context.Context, c *call, s *analysisUC.Session, moveNumber int) bool {
	rayMove, report, err := d.uc.Analyse(ctx, s)
	if err != nil {
		d.log.Errorw("analysis failed", "id", c.id, "error", err)
		c.fail(MsgAnalysisFailed)
		return false
	}
	return c.send(domain.Response{
		Response:   domain.RequestAnalysePosition,
		MoveNumber: moveNumber,
		RayMove:    &rayMove,
		Tree:       report,
	})
}

func (d *Dispatcher) handleAnalysePosition(ctx context.Context, c *call) bool {
	s, game, ok := d.prepare(c)
	if !ok {
		return false
	}
	if err := s.Replay(game); err != nil {
		d.moveFailed(c, err)
		return false
	}
	if d.analyse(ctx, c, s, 0) {
		d.uc.Archive(ctx, c.id, c.req.Type, s, 1)
	}
	return false
}

// handleAnalyseGame searches after every move and finishes with a bare
// analyse-game marker.
func (d *Dispatcher) handleAnalyseGame(ctx context.Context, c *call) bool {
	s, game, ok := d.prepare(c)
	if !ok {
		return false
	}
	for i := range game.Moves {
		if err := s.Apply(game, i); err != nil {
			d.moveFailed(c, err)
			return false
		}
		if !d.analyse(ctx, c, s, i+1) {
			return false
		}
	}
	if c.send(domain.Response{Response: domain.RequestAnalyseGame}) {
		d.uc.Archive(ctx, c.id, c.req.Type, s, len(game.Moves)+1)
	}
	return false
}
