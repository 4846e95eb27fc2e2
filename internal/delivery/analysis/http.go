package analysis

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"ray_analysis/internal/bootstrap"
	"ray_analysis/internal/httpresponse"
	"ray_analysis/internal/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type AnalysisHandler struct {
	cfg     bootstrap.Config
	log     *zap.SugaredLogger
	handler RequestHandler
}

func NewAnalysisHandler(cfg bootstrap.Config, log *zap.SugaredLogger, handler RequestHandler) *AnalysisHandler {
	return &AnalysisHandler{
		cfg:     cfg,
		log:     log,
		handler: handler,
	}
}

// HandleAnalyse accepts a body of newline separated requests and streams the
// responses back as NDJSON.
func (h *AnalysisHandler) HandleAnalyse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpresponse.WriteErrorWithStatus(w, http.StatusMethodNotAllowed, httpresponse.MethodNotAllowedDesc)
		return
	}

	body, err := utils.ReadRequestBody(w, r, int64(h.cfg.MaxLineBytes))
	if err != nil {
		h.log.Infow("analyse body rejected", "remote", r.RemoteAddr, "error", err)
		httpresponse.WriteErrorWithStatus(w, http.StatusRequestEntityTooLarge, httpresponse.BodyTooLargeDesc)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	out := io.Writer(w)
	if f, ok := w.(http.Flusher); ok {
		out = flushWriter{w: w, f: f}
	}
	if err := ServeLines(r.Context(), h.handler, bytes.NewReader(body), out, h.cfg.MaxLineBytes, h.log); err != nil {
		h.log.Errorw("analyse request failed", "remote", r.RemoteAddr, "error", err)
	}
}

// HandleWS takes one request per text message and answers with one message
// per response line.
func (h *AnalysisHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(int64(h.cfg.MaxLineBytes))

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warnw("websocket read failed", "error", err)
			}
			return
		}
		quit, err := h.handler.Handle(r.Context(), msg, conn.WriteJSON)
		if err != nil {
			h.log.Errorw("websocket write failed", "error", err)
			return
		}
		if quit {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "quit"))
			return
		}
	}
}

type flushWriter struct {
	w io.Writer
	f http.Flusher
}

func (fw flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	fw.f.Flush()
	return n, err
}
