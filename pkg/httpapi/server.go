// Package httpapi serves the AI tool gateway over HTTP/JSON and a
// WebSocket JSON-RPC channel. Every call goes through the registry's
// executor, so the same gates and sanitization apply to both surfaces.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/harun/rentdesk/internal/metrics"
	"github.com/harun/rentdesk/internal/observability"
	"github.com/harun/rentdesk/internal/tracing"
	"github.com/harun/rentdesk/pkg/aitools"
)

const maxBodyBytes = 1 << 20

// Config holds server configuration
type Config struct {
	Host string
	Port int

	Registry      *aitools.Registry
	Authenticator Authenticator
	Metrics       *metrics.Metrics
	// Ping reports backing store health for /healthz. Optional.
	Ping func(ctx context.Context) error

	// Per WebSocket connection limits.
	RequestsPerMinute int
	MaxConcurrent     int

	ShutdownTimeout time.Duration
	Logger          zerolog.Logger
}

// Server is the HTTP and WebSocket front of the tool gateway
type Server struct {
	cfg      Config
	registry *aitools.Registry
	auth     Authenticator
	metrics  *metrics.Metrics
	rpc      *RPCRouter
	upgrader websocket.Upgrader
	logger   zerolog.Logger

	server   *http.Server
	listener net.Listener

	clientsMu      sync.RWMutex
	clients        map[string]*wsClient
	shutdownMu     sync.RWMutex
	isShuttingDown bool
	inFlightReqs   sync.WaitGroup
}

// NewServer creates a server. A nil Authenticator trusts identity headers
// without a shared secret.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Registry == nil {
		return nil, errors.New("tool registry is required")
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.Authenticator == nil {
		cfg.Authenticator = HeaderAuthenticator{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewMetrics()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}

	s := &Server{
		cfg:      cfg,
		registry: cfg.Registry,
		auth:     cfg.Authenticator,
		metrics:  cfg.Metrics,
		rpc:      NewRPCRouter(),
		logger:   cfg.Logger.With().Str("component", "httpapi").Logger(),
		clients:  make(map[string]*wsClient),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // identity comes from the trusted upstream, not the origin
			},
		},
	}

	s.registerBuiltinMethods()

	return s, nil
}

// Router builds the HTTP router.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestContext)
	r.Use(s.metrics.Middleware)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api/ai/tools", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Use(s.authenticate)
		r.Get("/", s.handleListTools)
		r.Get("/manifest", s.handleManifest)
		r.Post("/{name}/execute", s.handleExecute)
	})

	return r
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.listener = listener
	s.server = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info().Str("addr", listener.Addr().String()).Msg("Starting HTTP server")

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	return nil
}

// Addr returns the address the server listens on, once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.shutdownMu.Lock()
	s.isShuttingDown = true
	s.shutdownMu.Unlock()

	s.logger.Info().Msg("Shutting down HTTP server")

	done := make(chan struct{})
	go func() {
		s.inFlightReqs.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info().Msg("All in-flight requests completed")
	case <-time.After(s.cfg.ShutdownTimeout):
		s.logger.Warn().Msg("Shutdown timeout reached, forcing close")
	case <-ctx.Done():
		s.logger.Warn().Msg("Shutdown cancelled, forcing close")
	}

	s.clientsMu.RLock()
	for _, client := range s.clients {
		client.close()
	}
	s.clientsMu.RUnlock()

	if s.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

func (s *Server) shuttingDown() bool {
	s.shutdownMu.RLock()
	defer s.shutdownMu.RUnlock()
	return s.isShuttingDown
}

// requestContext attaches trace and request ids taken from the request
// headers, or freshly generated ones.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := tracing.NewRequestContext(r.Context(), r.Header.Get("X-Trace-Id"), r.Header.Get(middleware.RequestIDHeader))
		w.Header().Set("X-Trace-Id", tracing.GetTraceID(ctx))
		w.Header().Set(middleware.RequestIDHeader, tracing.GetRequestID(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger := tracing.LoggerFromContext(r.Context(), s.logger)
		event := logger.Debug()
		if ww.Status() >= http.StatusInternalServerError {
			event = logger.Warn()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

type callerKey struct{}

// authenticate resolves the caller and stores it in the request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ec, err := s.auth.Authenticate(r)
		if err != nil {
			s.rejectCaller(w, r, err)
			return
		}
		ctx := tracing.WithCaller(r.Context(), ec.UserID, ec.CompanyID)
		ctx = context.WithValue(ctx, callerKey{}, ec)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rejectCaller answers 401 and records the failed attempt in the audit log.
func (s *Server) rejectCaller(w http.ResponseWriter, r *http.Request, err error) {
	observability.RecordSecurityAudit(r.Context(), "authenticate", r.Header.Get(HeaderUserID), "rejected", map[string]interface{}{
		"path":  r.URL.Path,
		"ip":    r.RemoteAddr,
		"error": err.Error(),
	})
	writeError(w, &apiError{status: http.StatusUnauthorized, msg: err.Error()})
}

func callerFrom(ctx context.Context) aitools.ExecutionContext {
	ec, _ := ctx.Value(callerKey{}).(aitools.ExecutionContext)
	return ec
}
