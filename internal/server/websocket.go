package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talkingphoto-ai/ingest/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS policy is enforced by the deployment front-end.
		return true
	},
}

// WSProcessRequest is an upload submitted over the websocket. Image bytes
// travel base64-encoded per encoding/json []byte convention.
type WSProcessRequest struct {
	Filename string `json:"filename"`
	Image    []byte `json:"image"`
	Size     int64  `json:"size,omitempty"`
}

// WSProcessEvent is a streamed progress or outcome message.
type WSProcessEvent struct {
	Status   string           `json:"status"` // processing, completed, error
	Stage    string           `json:"stage,omitempty"`
	Progress float64          `json:"progress,omitempty"`
	Result   *ProcessResponse `json:"result,omitempty"`
}

// processWebSocketHandler streams per-stage progress while processing
// uploads submitted as JSON messages, then the final outcome.
func (s *Server) processWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()
		if messageType != websocket.TextMessage {
			continue
		}
		s.handleWSUpload(conn, data)
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	}
}

func (s *Server) handleWSUpload(conn *websocket.Conn, data []byte) {
	var req WSProcessRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWSEvent(conn, WSProcessEvent{
			Status: "error",
			Result: &ProcessResponse{
				Success:   false,
				Error:     "Failed to parse request: " + err.Error(),
				ErrorType: string(pipeline.KindProcessingFailure),
			},
		})
		return
	}

	blob := pipeline.UploadedBlob{Data: req.Image, Filename: req.Filename, Size: req.Size}

	start := time.Now()
	res, err := s.pipeline.ProcessWithProgress(blob, func(stage pipeline.Stage, fraction float64) {
		s.sendWSEvent(conn, WSProcessEvent{
			Status:   "processing",
			Stage:    string(stage),
			Progress: fraction,
		})
	})
	duration := time.Since(start)
	processDuration.WithLabelValues("websocket").Observe(duration.Seconds())

	if err != nil {
		processRequestsTotal.WithLabelValues("websocket", "error").Inc()
		var perr *pipeline.Error
		if !errors.As(err, &perr) {
			perr = &pipeline.Error{Kind: pipeline.KindProcessingFailure, Message: err.Error()}
		}
		processFailuresTotal.WithLabelValues(string(perr.Kind)).Inc()
		s.sendWSEvent(conn, WSProcessEvent{
			Status: "error",
			Result: &ProcessResponse{
				Success:      false,
				Error:        perr.Message,
				ErrorType:    string(perr.Kind),
				Tips:         pipeline.TroubleshootingTips(perr.Kind),
				ProcessingMs: duration.Milliseconds(),
			},
		})
		return
	}

	processRequestsTotal.WithLabelValues("websocket", "success").Inc()
	facesDetected.Observe(float64(res.Diagnostics.Face.FaceCount))
	d := res.Diagnostics
	s.sendWSEvent(conn, WSProcessEvent{
		Status: "completed",
		Result: &ProcessResponse{
			Success:        true,
			Width:          d.Width,
			Height:         d.Height,
			Format:         d.Format,
			OriginalSizeMB: d.OriginalSizeMB,
			FinalSizeMB:    d.FinalSizeMB,
			Face:           faceInfo(d),
			ProcessingMs:   duration.Milliseconds(),
		},
	})
}

func (s *Server) sendWSEvent(conn *websocket.Conn, event WSProcessEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal WebSocket event", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		slog.Error("failed to write WebSocket message", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}
