// Package ws exposes the same frame protocol over websocket for clients
// that cannot open a raw TCP stream. Each binary message is one frame.
package ws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/gridroom/gridroom/internal/config"
	"github.com/gridroom/gridroom/internal/game/session"
)

// SessionHandler processes one connected player for the lifetime of the
// websocket connection.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn, playerID int32) error
}

// Acceptor serves the /ws endpoint and dispatches each upgraded
// connection to a SessionHandler. Player IDs come from the same
// allocator as the TCP acceptor so the two transports never collide.
type Acceptor struct {
	cfg      config.ServerConfig
	ids      *session.IDAllocator
	handler  SessionHandler
	logger   *zap.Logger
	upgrader websocket.Upgrader

	server   *http.Server
	listener net.Listener
	wg       sync.WaitGroup
	quit     chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewAcceptor creates a websocket acceptor with the given configuration.
func NewAcceptor(cfg config.ServerConfig, ids *session.IDAllocator, handler SessionHandler, logger *zap.Logger) *Acceptor {
	return &Acceptor{
		cfg:     cfg,
		ids:     ids,
		handler: handler,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The game protocol has no origin-bound credentials.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		quit: make(chan struct{}),
	}
}

// ListenAndServe starts the websocket listener and blocks until Stop.
func (a *Acceptor) ListenAndServe() error {
	listener, err := net.Listen("tcp", a.cfg.WSAddr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.WSAddr(), err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", a.handleUpgrade)
	server := &http.Server{Handler: mux}

	a.mu.Lock()
	a.listener = listener
	a.server = server
	a.running = true
	a.mu.Unlock()

	a.logger.Info("websocket acceptor listening",
		zap.String("addr", listener.Addr().String()),
	)

	if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving websocket: %w", err)
	}
	return nil
}

func (a *Acceptor) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	wsc, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Error("websocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	a.wg.Add(1)
	go a.handleConn(wsc)
}

func (a *Acceptor) handleConn(wsc *websocket.Conn) {
	defer a.wg.Done()
	start := time.Now()
	addr := wsc.RemoteAddr().String()
	playerID := a.ids.Next()

	a.logger.Info("websocket client connected",
		zap.String("remote_addr", addr),
		zap.Int32("player_id", playerID),
	)

	conn := NewConn(wsc, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-a.quit:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := a.handler.HandleSession(ctx, conn, playerID); err != nil {
		a.logger.Debug("websocket session ended",
			zap.String("remote_addr", addr),
			zap.Int32("player_id", playerID),
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// Stop closes the listener and waits for active sessions to finish.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return
	}
	a.running = false

	close(a.quit)
	if a.server != nil {
		_ = a.server.Close()
	}
	a.wg.Wait()

	a.logger.Info("websocket acceptor stopped")
}

// Addr returns the actual listening address, or empty string if not yet listening.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return ""
}

// IsRunning returns whether the acceptor is currently accepting connections.
func (a *Acceptor) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}
