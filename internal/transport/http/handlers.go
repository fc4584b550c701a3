package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"

	"impostor/internal/app"
	"impostor/internal/domain"
	"impostor/internal/logging"
	"impostor/internal/transport/ws"
)

// qrSize is the edge of the invite QR code in pixels
const qrSize = 320

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateRoomRequest is the optional body of POST /api/rooms
type CreateRoomRequest struct {
	MaxPlayers int `json:"maxPlayers"`
}

// CreateRoomResponse is the response for room creation
type CreateRoomResponse struct {
	RoomID     string `json:"roomId"`
	InviteLink string `json:"inviteLink"`
	QRCode     string `json:"qrCode"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// StatusResponse describes the running server
type StatusResponse struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Uptime      string `json:"uptime"`
	Rooms       int    `json:"rooms"`
	Connections int    `json:"connections"`
}

// StatsResponse is the response for stats endpoint
type StatsResponse struct {
	app.Stats
	Connections int `json:"connections"`
}

// handleCreateRoom handles POST /api/rooms
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.sendError(w, http.StatusBadRequest, ws.ErrCodeInvalidMessage, "Invalid request body")
		return
	}

	roomID, err := s.registry.CreateRoom(req.MaxPlayers)
	if err != nil {
		logging.FromContext(r.Context()).Errorw("create room failed", "error", err)
		s.sendError(w, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create room")
		return
	}

	base := s.baseURL(r)
	s.sendSuccess(w, &CreateRoomResponse{
		RoomID:     roomID,
		InviteLink: base + "/join/" + roomID,
		QRCode:     base + "/api/rooms/" + roomID + "/qr",
	})
}

// handleListRooms handles GET /api/rooms
func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, s.registry.ListRooms())
}

// handleGetRoom handles GET /api/rooms/{roomId}
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupRoom(w, r)
	if !ok {
		return
	}
	s.sendSuccess(w, session.Summary())
}

// handleRoomQR handles GET /api/rooms/{roomId}/qr and renders the invite link as a PNG
func (s *Server) handleRoomQR(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupRoom(w, r)
	if !ok {
		return
	}

	png, err := qrcode.Encode(s.baseURL(r)+"/join/"+session.ID(), qrcode.Medium, qrSize)
	if err != nil {
		logging.FromContext(r.Context()).Errorw("qr encode failed", "roomId", session.ID(), "error", err)
		s.sendError(w, http.StatusInternalServerError, ws.ErrCodeInternalError, "Failed to render QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &HealthResponse{
		Status: "ok",
	})
}

// handleStatus handles GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &StatusResponse{
		Status:      "running",
		Environment: s.config.Server.Env,
		Uptime:      time.Since(s.startedAt).Round(time.Second).String(),
		Rooms:       len(s.registry.ListRooms()),
		Connections: s.hub.ConnectionCount(),
	})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &StatsResponse{
		Stats:       s.registry.Stats(),
		Connections: s.hub.ConnectionCount(),
	})
}

// lookupRoom resolves the {roomId} path variable, writing the error response itself
func (s *Server) lookupRoom(w http.ResponseWriter, r *http.Request) (*app.RoomSession, bool) {
	roomID := mux.Vars(r)["roomId"]
	if strings.TrimSpace(roomID) == "" {
		s.sendError(w, http.StatusBadRequest, "MISSING_ROOM_ID", "Room id is required")
		return nil, false
	}

	session, err := s.registry.Room(roomID)
	if err != nil {
		code, message := ws.ErrorCode(err)
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		s.sendError(w, status, code, message)
		return nil, false
	}
	return session, true
}

// baseURL is the public address invite links point at
func (s *Server) baseURL(r *http.Request) string {
	if s.config.Server.PublicURL != "" {
		return strings.TrimRight(s.config.Server.PublicURL, "/")
	}

	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// sendSuccess sends a successful JSON response
func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
