package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/symfluence/snowcover/backend/internal/analysis"
	"github.com/symfluence/snowcover/backend/pkg/logger"
)

const wsWriteWait = 10 * time.Second

// wsRequest is the single request message a client sends after
// connecting. Mode selects which of the two analyses to run.
type wsRequest struct {
	Mode          string  `json:"mode"`
	Watershed     string  `json:"watershed,omitempty"`
	Lat           float64 `json:"lat,omitempty"`
	Lon           float64 `json:"lon,omitempty"`
	BufferM       float64 `json:"buffer_m,omitempty"`
	From          string  `json:"from"`
	To            string  `json:"to"`
	IncludeFrames bool    `json:"include_frames,omitempty"`
}

// wsMessage is one server-to-client frame.
type wsMessage struct {
	Type    string           `json:"type"` // progress | result | error
	Percent int              `json:"percent,omitempty"`
	Stage   string           `json:"stage,omitempty"`
	Report  *analysis.Report `json:"report,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// WSHandler runs analyses over a websocket, streaming the progress
// stages the HTTP endpoints can only report at completion.
type WSHandler struct {
	service  *analysis.Service
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewWSHandler creates a new websocket handler
func NewWSHandler(service *analysis.Service, log *logger.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger: log,
	}
}

// Analyze handles one analysis session
// GET /ws/analysis
func (h *WSHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	var req wsRequest
	if err := conn.ReadJSON(&req); err != nil {
		h.writeMessage(conn, wsMessage{Type: "error", Error: "invalid request message"})
		return
	}

	progress := func(percent int, stage string) {
		h.writeMessage(conn, wsMessage{Type: "progress", Percent: percent, Stage: stage})
	}

	report, err := h.run(r, req, progress)
	if err != nil {
		h.writeMessage(conn, wsMessage{Type: "error", Error: analysisErrorText(err)})
		return
	}

	h.writeMessage(conn, wsMessage{Type: "result", Report: report})
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteWait))
}

func (h *WSHandler) run(r *http.Request, req wsRequest, progress analysis.ProgressFunc) (*analysis.Report, error) {
	from, err := parseDate(req.From, "from")
	if err != nil {
		return nil, err
	}
	to, err := parseDate(req.To, "to")
	if err != nil {
		return nil, err
	}

	switch req.Mode {
	case analysis.ModeWatershed:
		return h.service.AnalyzeWatershed(r.Context(), analysis.WatershedRequest{
			Watershed:     req.Watershed,
			From:          from,
			To:            to,
			IncludeFrames: req.IncludeFrames,
		}, progress)
	case analysis.ModePoint:
		return h.service.AnalyzePoint(r.Context(), analysis.PointRequest{
			Lat:     req.Lat,
			Lon:     req.Lon,
			BufferM: req.BufferM,
			From:    from,
			To:      to,
		}, progress)
	default:
		return nil, fmt.Errorf("%w: mode must be watershed or point", analysis.ErrInvalidInput)
	}
}

func (h *WSHandler) writeMessage(conn *websocket.Conn, msg wsMessage) {
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(msg); err != nil {
		h.logger.WithError(err).Debug("WebSocket write failed")
	}
}

// analysisErrorText keeps the wire text consistent with the HTTP
// endpoints' error bodies.
func analysisErrorText(err error) string {
	if errors.Is(err, analysis.ErrNoData) || errors.Is(err, analysis.ErrInvalidInput) {
		return err.Error()
	}
	return fmt.Sprintf("Analysis failed: %v", err)
}
