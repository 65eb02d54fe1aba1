// Package admin serves a small HTTP introspection endpoint: health,
// room occupancy, and tick-loop metrics. It is read-only and intended
// for operators, not players.
package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/gridroom/gridroom/internal/config"
	"github.com/gridroom/gridroom/internal/game/lobby"
	"github.com/gridroom/gridroom/internal/game/tick"
)

// Server is the admin HTTP endpoint. It implements the lifecycle Service
// contract.
type Server struct {
	cfg     config.AdminConfig
	lobby   *lobby.Lobby
	metrics *tick.Metrics
	logger  *zap.Logger

	httpServer *http.Server
	listener   net.Listener
	mu         sync.Mutex
}

// NewServer creates a stopped admin server.
func NewServer(cfg config.AdminConfig, lb *lobby.Lobby, metrics *tick.Metrics, logger *zap.Logger) *Server {
	return &Server{
		cfg:     cfg,
		lobby:   lb,
		metrics: metrics,
		logger:  logger,
	}
}

// Start serves the admin endpoint until Stop is called.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/rooms", s.handleRooms)
	mux.HandleFunc("/metrics", s.handleMetrics)
	server := &http.Server{Handler: mux}

	s.mu.Lock()
	s.listener = listener
	s.httpServer = server
	s.mu.Unlock()

	s.logger.Info("admin endpoint listening",
		zap.String("addr", listener.Addr().String()),
	)

	if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving admin endpoint: %w", err)
	}
	return nil
}

// Stop closes the admin endpoint.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpServer != nil {
		_ = s.httpServer.Close()
		s.logger.Info("admin endpoint stopped")
	}
}

// Addr returns the actual listening address, or empty string if not yet listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	players, rooms := s.lobby.Counts()
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]any{
		"players": players,
		"rooms":   rooms,
		"sizes":   s.lobby.RoomSizes(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, s.metrics.Snapshot())
}

func writeJSON(w http.ResponseWriter, v any) {
	_ = json.NewEncoder(w).Encode(v)
}
