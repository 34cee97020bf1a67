package gateway

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/bizmatters/agent-builder/circuit-designer/internal/auth"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/metrics"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/models"
	"github.com/bizmatters/agent-builder/circuit-designer/internal/orchestration"
)

const (
	writeWait   = 10 * time.Second
	readLimit   = 1 << 20
	busyMessage = "a design request is already running in this session"
)

// SessionConfig tunes designer WebSocket sessions.
type SessionConfig struct {
	QueueSize       int
	ApprovalTimeout time.Duration
}

// DesignerSocket serves the designer message protocol over WebSocket.
type DesignerSocket struct {
	manager  *orchestration.Manager
	metrics  *metrics.DesignMetrics
	logger   *zap.Logger
	cfg      SessionConfig
	tracer   trace.Tracer
	upgrader websocket.Upgrader
}

// NewDesignerSocket creates the WebSocket endpoint.
func NewDesignerSocket(manager *orchestration.Manager, designMetrics *metrics.DesignMetrics, logger *zap.Logger, cfg SessionConfig) *DesignerSocket {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.ApprovalTimeout <= 0 {
		cfg.ApprovalTimeout = 2 * time.Minute
	}

	return &DesignerSocket{
		manager: manager,
		metrics: designMetrics,
		logger:  logger,
		cfg:     cfg,
		tracer:  otel.Tracer("designer-websocket"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

// Serve handles GET /api/ws/designer
// @Summary Designer session
// @Description WebSocket carrying PROCESS_USER_INPUT and APPROVAL_RESPONSE in, DESIGN_PROGRESS, ASK_APPROVAL and DESIGN_RESPONSE out
// @Tags designer
// @Param token query string false "JWT when the Authorization header cannot be set"
// @Success 101 "Switching Protocols"
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /ws/designer [get]
func (s *DesignerSocket) Serve(c *gin.Context) {
	ctx, span := s.tracer.Start(c.Request.Context(), "designer_socket.serve")
	defer span.End()

	userID := c.GetString(auth.UserIDKey)
	span.SetAttributes(attribute.String("user.id", userID))

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		span.RecordError(err)
		s.logger.Warn("failed to upgrade connection", zap.Error(err))
		return
	}
	defer conn.Close()

	sess := newSession(conn, s, s.logger.With(zap.String("user_id", userID), zap.String("session_id", uuid.NewString())))
	sess.logger.Info("designer session opened")
	sess.run(ctx)
	sess.logger.Info("designer session closed", zap.Uint64("progress_sent", sess.seq.Load()), zap.Int64("progress_dropped", sess.dropped.Load()))
}

// session is one connected designer UI. Only the writer goroutine writes to conn.
type session struct {
	conn   *websocket.Conn
	socket *DesignerSocket
	logger *zap.Logger

	out  chan any
	done chan struct{}

	seq     atomic.Uint64
	dropped atomic.Int64
	busy    atomic.Bool

	mu      sync.Mutex
	pending map[string]chan bool
}

func newSession(conn *websocket.Conn, socket *DesignerSocket, logger *zap.Logger) *session {
	return &session{
		conn:    conn,
		socket:  socket,
		logger:  logger,
		out:     make(chan any, socket.cfg.QueueSize),
		done:    make(chan struct{}),
		pending: make(map[string]chan bool),
	}
}

func (s *session) run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writeLoop()
	}()

	s.conn.SetReadLimit(readLimit)
	for {
		var event models.InboundEvent
		if err := s.conn.ReadJSON(&event); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("read loop ended", zap.Error(err))
			}
			break
		}

		switch event.Type {
		case models.EventProcessUserInput:
			if !s.busy.CompareAndSwap(false, true) {
				s.send(ctx, models.DesignResponseEvent{Type: models.EventDesignResponse, Error: busyMessage})
				continue
			}
			wg.Add(1)
			go func(event models.InboundEvent) {
				defer wg.Done()
				defer s.busy.Store(false)
				s.process(ctx, event)
			}(event)

		case models.EventApprovalResponse:
			s.resolveApproval(event.RequestID, event.Approved)

		default:
			s.logger.Warn("unknown message type", zap.String("type", event.Type))
		}
	}

	cancel()
	close(s.done)
	wg.Wait()
}

func (s *session) process(ctx context.Context, event models.InboundEvent) {
	orchestrator, err := s.socket.manager.Current()
	if err != nil {
		s.send(ctx, models.DesignResponseEvent{Type: models.EventDesignResponse, Error: err.Error()})
		return
	}

	resp, err := orchestrator.Process(ctx, event.Input, &event.Context, s)
	if err != nil {
		s.send(ctx, models.DesignResponseEvent{Type: models.EventDesignResponse, Error: err.Error()})
		return
	}
	s.send(ctx, models.DesignResponseEvent{Type: models.EventDesignResponse, Response: resp})
}

// Report queues a progress message. When the queue is full the message is
// dropped; its sequence number is still consumed so the UI can see the gap.
func (s *session) Report(ctx context.Context, message string) {
	event := models.DesignProgressEvent{
		Type:    models.EventDesignProgress,
		Message: message,
		Seq:     s.seq.Add(1),
	}

	select {
	case s.out <- event:
	default:
		s.dropped.Add(1)
		s.socket.metrics.RecordProgressDropped(ctx, 1)
		s.logger.Warn("progress queue full, message dropped", zap.Uint64("seq", event.Seq))
	}
}

// RequestApproval posts ASK_APPROVAL and waits for the matching APPROVAL_RESPONSE.
// It resolves false on timeout.
func (s *session) RequestApproval(ctx context.Context, suggestion models.ImprovementSuggestion) (bool, error) {
	requestID := uuid.NewString()
	reply := make(chan bool, 1)

	s.mu.Lock()
	s.pending[requestID] = reply
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, requestID)
		s.mu.Unlock()
	}()

	if !s.send(ctx, models.AskApprovalEvent{Type: models.EventAskApproval, RequestID: requestID, Suggestion: suggestion}) {
		return false, errors.New("session closed before approval was requested")
	}

	timer := time.NewTimer(s.socket.cfg.ApprovalTimeout)
	defer timer.Stop()

	select {
	case approved := <-reply:
		return approved, nil
	case <-timer.C:
		s.logger.Info("approval timed out", zap.String("request_id", requestID))
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (s *session) resolveApproval(requestID string, approved bool) {
	s.mu.Lock()
	reply, ok := s.pending[requestID]
	s.mu.Unlock()

	if !ok {
		s.logger.Warn("approval response for unknown request", zap.String("request_id", requestID))
		return
	}

	select {
	case reply <- approved:
	default:
	}
}

// send queues a message that must not be dropped. It blocks until queued or the session ends.
func (s *session) send(ctx context.Context, msg any) bool {
	select {
	case s.out <- msg:
		return true
	case <-s.done:
		return false
	case <-ctx.Done():
		return false
	}
}

func (s *session) writeLoop() {
	for {
		select {
		case msg := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(msg); err != nil {
				s.logger.Debug("write failed", zap.Error(err))
				return
			}
		case <-s.done:
			s.drain()
			return
		}
	}
}

// drain flushes whatever is already queued once the read side has closed.
func (s *session) drain() {
	for {
		select {
		case msg := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

var (
	_ orchestration.Progress = (*session)(nil)
	_ orchestration.Approver = (*session)(nil)
)
