package ws

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"impostor/internal/app"
)

// HandlerOptions configures the WebSocket endpoint
type HandlerOptions struct {
	AllowedOrigin     string // "*" accepts any origin
	MessagesPerSecond float64
	MessageBurst      int
}

// Handler handles WebSocket connections
type Handler struct {
	registry *app.Registry
	hub      *Hub
	opts     HandlerOptions
	upgrader websocket.Upgrader
	logger   *zap.SugaredLogger
}

// NewHandler creates a new WebSocket handler
func NewHandler(registry *app.Registry, hub *Hub, opts HandlerOptions, logger *zap.SugaredLogger) *Handler {
	if opts.MessagesPerSecond <= 0 {
		opts.MessagesPerSecond = 5
	}
	if opts.MessageBurst <= 0 {
		opts.MessageBurst = 10
	}

	h := &Handler{
		registry: registry,
		hub:      hub,
		opts:     opts,
		logger:   logger.Named("ws"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.opts.AllowedOrigin == "" || h.opts.AllowedOrigin == "*" {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || origin == h.opts.AllowedOrigin
}

// ServeHTTP handles WebSocket upgrade requests. Every connection gets a
// fresh id; players find their room again by joining with the same username.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}

	connID := uuid.New().String()
	limiter := rate.NewLimiter(rate.Limit(h.opts.MessagesPerSecond), h.opts.MessageBurst)
	client := NewClient(connID, conn, h.hub, h.registry, limiter, h.logger)

	h.hub.Register(client)
	h.logger.Infow("websocket connected", "connId", connID, "remote", r.RemoteAddr)

	client.sendConnected()
	client.Run()

	h.logger.Infow("websocket disconnected", "connId", connID)
}
