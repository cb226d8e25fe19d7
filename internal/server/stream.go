package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Sicakyuz/SCM-simulation/internal/domain"
	"github.com/Sicakyuz/SCM-simulation/internal/metrics"
	"github.com/Sicakyuz/SCM-simulation/internal/simulation"
)

const (
	wsReadTimeout  = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// Stream message types
const (
	MessagePeriod  = "period"
	MessageSummary = "summary"
	MessageError   = "error"
)

// StreamMessage is one frame sent on /ws/simulate.
type StreamMessage struct {
	Type    string                `json:"type"`
	RunID   string                `json:"run_id,omitempty"`
	Period  *domain.PeriodMetrics `json:"period,omitempty"`
	Summary *metrics.RunSummary   `json:"summary,omitempty"`
	Error   string                `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Same open policy as the CORS settings
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleSimulateStream reads one run request and streams a frame per
// period followed by the run summary, then closes.
func (s *Server) handleSimulateStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	if s.metrics != nil {
		s.metrics.WSStreams.Inc()
		defer s.metrics.WSStreams.Dec()
	}

	conn.SetReadLimit(maxRequestBytes)
	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

	var req simulation.RunRequest
	_, data, err := conn.ReadMessage()
	if err != nil {
		s.log.Warn().Err(err).Msg("WebSocket read failed")
		return
	}
	if err := json.Unmarshal(data, &req); err != nil {
		s.writeFrame(conn, StreamMessage{Type: MessageError, Error: err.Error()})
		s.closeFrame(conn)
		return
	}

	// A failed write stops further frames; the run itself still completes.
	writeFailed := false
	run, err := s.runner.RunEach(r.Context(), req, func(m *domain.PeriodMetrics) {
		if writeFailed {
			return
		}
		if err := s.writeFrame(conn, StreamMessage{Type: MessagePeriod, Period: m}); err != nil {
			writeFailed = true
		}
	})
	if writeFailed {
		return
	}
	if err != nil {
		s.writeFrame(conn, StreamMessage{Type: MessageError, Error: err.Error()})
		s.closeFrame(conn)
		return
	}

	s.writeFrame(conn, StreamMessage{Type: MessageSummary, RunID: run.RunID, Summary: metrics.Summarize(run)})
	s.closeFrame(conn)
}

func (s *Server) writeFrame(conn *websocket.Conn, msg StreamMessage) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		s.log.Warn().Err(err).Str("type", msg.Type).Msg("WebSocket write failed")
		return err
	}
	return nil
}

func (s *Server) closeFrame(conn *websocket.Conn) {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
