package httpapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"

	"github.com/harun/rentdesk/internal/tracing"
	"github.com/harun/rentdesk/pkg/aitools"
)

const writeWait = 10 * time.Second

// wsClient is one WebSocket connection. The caller is authenticated once,
// on the upgrade request.
type wsClient struct {
	id          string
	conn        *websocket.Conn
	ec          aitools.ExecutionContext
	ctx         context.Context
	limiter     *ClientRateLimiter
	connectedAt time.Time
	logger      zerolog.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// writeJSON serializes writes; gorilla connections allow one writer at a time.
func (c *wsClient) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func (c *wsClient) close() {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		c.conn.Close()
	})
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.shuttingDown() {
		http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
		return
	}

	ec, err := s.auth.Authenticate(r)
	if err != nil {
		s.rejectCaller(w, r, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}

	clientID, _ := gonanoid.New()
	ctx := tracing.Detach(tracing.WithCaller(r.Context(), ec.UserID, ec.CompanyID))
	client := &wsClient{
		id:          clientID,
		conn:        conn,
		ec:          ec,
		ctx:         ctx,
		limiter:     NewClientRateLimiter(s.cfg.RequestsPerMinute, s.cfg.MaxConcurrent),
		connectedAt: time.Now(),
		logger:      tracing.LoggerFromContext(ctx, s.logger).With().Str("client_id", clientID).Logger(),
	}

	s.clientsMu.Lock()
	s.clients[clientID] = client
	s.clientsMu.Unlock()
	s.metrics.WebSocketConnectionsActive.Inc()

	client.logger.Info().Str("ip", r.RemoteAddr).Msg("Client connected")

	go s.handleClient(client)
}

// handleClient reads messages until the connection closes
func (s *Server) handleClient(client *wsClient) {
	defer func() {
		client.conn.Close()
		s.clientsMu.Lock()
		delete(s.clients, client.id)
		s.clientsMu.Unlock()
		s.metrics.WebSocketConnectionsActive.Dec()
		client.logger.Info().Dur("connected_for", time.Since(client.connectedAt)).Msg("Client disconnected")
	}()

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				client.logger.Error().Err(err).Msg("WebSocket error")
			}
			return
		}
		s.handleMessage(client, message)
	}
}

// handleMessage handles a single JSON-RPC message from a client
func (s *Server) handleMessage(client *wsClient, message []byte) {
	req, err := s.rpc.ParseRequest(message)
	if err != nil {
		s.sendError(client, "", toRPCError(err))
		return
	}

	allowed, code, reason := client.limiter.Acquire()
	if !allowed {
		s.metrics.RecordWebSocketMessage(req.Method, false)
		s.sendError(client, req.ID, &RPCError{Code: code, Message: reason})
		return
	}

	s.inFlightReqs.Add(1)
	go func() {
		defer client.limiter.Release()
		defer s.inFlightReqs.Done()

		ctx := tracing.WithRequestID(client.ctx, req.ID)
		response := s.rpc.RouteRequest(ctx, client.ec, req)
		s.metrics.RecordWebSocketMessage(req.Method, response.Error == nil)

		if err := client.writeJSON(response); err != nil {
			client.logger.Error().
				Err(err).
				Str("request_id", req.ID).
				Msg("Failed to send response")
		}
	}()
}

// sendError sends an error response to a client
func (s *Server) sendError(client *wsClient, requestID string, rpcErr *RPCError) {
	response := RPCResponse{
		ID:      requestID,
		JSONRPC: "2.0",
		Error:   rpcErr,
	}
	if err := client.writeJSON(response); err != nil {
		client.logger.Error().Err(err).Msg("Failed to send error")
	}
}
