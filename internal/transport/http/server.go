package http

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"impostor/internal/app"
	"impostor/internal/config"
	"impostor/internal/logging"
	"impostor/internal/transport/ws"
)

// Server represents the HTTP server
type Server struct {
	server    *http.Server
	router    *mux.Router
	registry  *app.Registry
	hub       *ws.Hub
	config    *config.Config
	logger    *zap.SugaredLogger
	startedAt time.Time
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, registry *app.Registry, hub *ws.Hub, logger *zap.SugaredLogger) *Server {
	s := &Server{
		registry:  registry,
		hub:       hub,
		config:    cfg,
		logger:    logger.Named("http"),
		startedAt: time.Now(),
	}

	s.router = mux.NewRouter()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.GetAddr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware, s.corsMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/rooms", s.handleCreateRoom).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/rooms", s.handleListRooms).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/rooms/{roomId}", s.handleGetRoom).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/rooms/{roomId}/qr", s.handleRoomQR).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet, http.MethodOptions)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	// WebSocket
	wsHandler := ws.NewHandler(s.registry, s.hub, ws.HandlerOptions{
		AllowedOrigin:     s.config.Server.AllowedOrigin,
		MessagesPerSecond: s.config.Game.MessagesPerSecond,
		MessageBurst:      s.config.Game.MessageBurst,
	}, s.logger)
	s.router.Handle("/ws", wsHandler).Methods(http.MethodGet)
}

// Handler returns the root handler, for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// corsMiddleware sets the CORS headers and answers preflight requests
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.config.Server.AllowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs every request with its status and duration
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := s.logger.With("method", r.Method, "path", r.URL.Path)

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r.WithContext(logging.WithLogger(r.Context(), logger)))

		log := logger.Infow
		if r.URL.Path == "/health" {
			log = logger.Debugw
		}
		log("request",
			"status", wrapped.statusCode,
			"duration", time.Since(start),
		)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Infow("server starting", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.server.Shutdown(ctx)
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack implements http.Hijacker for WebSocket support
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Flush implements http.Flusher
func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
