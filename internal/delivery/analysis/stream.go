package analysis

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	domain "ray_analysis/internal/domain/analysis"
	"ray_analysis/internal/utils"
)

// Serve reads requests line by line from r and writes one JSON response per
// line to w until quit, end of input or a write failure.
func (d *Dispatcher) Serve(ctx context.Context, r io.Reader, w io.Writer, maxLine int) error {
	return ServeLines(ctx, d, r, w, maxLine, d.log)
}

// ServeLines runs the line protocol over any request handler. A line over
// maxLine bytes is answered as an invalid request and skipped.
func ServeLines(ctx context.Context, h RequestHandler, r io.Reader, w io.Writer, maxLine int, log *zap.SugaredLogger) error {
	lines := utils.NewLineReader(r, maxLine)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for {
		line, err := lines.ReadLine()
		switch {
		case stdErrors.Is(err, utils.ErrLineTooLong):
			log.Infow("request line too long", "limit", maxLine)
			resp := domain.Response{Response: domain.ResponseError, Message: MsgInvalidRequest}
			if err := enc.Encode(resp); err != nil {
				return fmt.Errorf("write response: %w", err)
			}
			continue
		case stdErrors.Is(err, io.EOF):
			log.Info("end of input")
			return nil
		case err != nil:
			return fmt.Errorf("read request: %w", err)
		}

		quit, err := h.Handle(ctx, line, enc.Encode)
		if err != nil {
			return fmt.Errorf("write response: %w", err)
		}
		if quit {
			log.Info("quit requested")
			return nil
		}
	}
}
