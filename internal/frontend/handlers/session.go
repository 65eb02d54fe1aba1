// Package handlers implements the per-connection player session: it
// registers the player, runs the receive loop, and dispatches each
// decoded frame against the lobby.
package handlers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gridroom/gridroom/internal/frontend/tcp"
	"github.com/gridroom/gridroom/internal/frontend/ws"
	"github.com/gridroom/gridroom/internal/game/lobby"
	"github.com/gridroom/gridroom/internal/game/session"
	"github.com/gridroom/gridroom/internal/protocol"
)

// Session handles connected players. One Session serves every
// connection; all per-player state lives in the lobby and the registry.
type Session struct {
	lobby    *lobby.Lobby
	registry *session.Registry
	logger   *zap.Logger
}

// NewSession creates the shared session handler.
//
// Precondition: lb, reg and logger must be non-nil.
func NewSession(lb *lobby.Lobby, reg *session.Registry, logger *zap.Logger) *Session {
	return &Session{
		lobby:    lb,
		registry: reg,
		logger:   logger,
	}
}

// TCPAdapter exposes Session as the TCP acceptor's handler.
type TCPAdapter struct{ *Session }

// HandleSession implements tcp.SessionHandler.
func (a TCPAdapter) HandleSession(ctx context.Context, conn *tcp.Conn, playerID int32) error {
	return a.Run(ctx, conn, playerID)
}

// WSAdapter exposes Session as the websocket acceptor's handler.
type WSAdapter struct{ *Session }

// HandleSession implements ws.SessionHandler.
func (a WSAdapter) HandleSession(ctx context.Context, conn *ws.Conn, playerID int32) error {
	return a.Run(ctx, conn, playerID)
}

// Run serves one connection from registration to teardown. It returns
// nil on a cancelled context and the receive error otherwise. Teardown
// always removes the player from the lobby (and so from every room) and
// from the registry before closing the connection.
func (s *Session) Run(ctx context.Context, conn session.Conn, playerID int32) error {
	log := s.logger.With(
		zap.Int32("player_id", playerID),
		zap.String("session_id", uuid.NewString()),
		zap.String("remote_addr", conn.RemoteAddr().String()),
	)

	s.registry.Add(playerID, conn)
	s.lobby.AddPlayer(playerID)
	log.Info("session started")

	defer func() {
		s.lobby.RemovePlayer(playerID)
		s.registry.Remove(playerID)
		_ = conn.Close()
		log.Info("session ended")
	}()

	// Unblock the receive loop when the server shuts down.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		p, err := conn.ReadFrame()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("receiving frame: %w", err)
		}
		// The wire carries a playerID field but the server only ever
		// trusts the ID it assigned on accept.
		s.dispatch(log, playerID, p)
	}
}

func (s *Session) dispatch(log *zap.Logger, playerID int32, p protocol.Packet) {
	switch p.Type {
	case protocol.TypeChat:
		s.handleChat(log, playerID, p.Payload)
	case protocol.TypeNewRoom:
		s.handleNewRoom(log, p.Payload)
	case protocol.TypeJoinRoom:
		s.handleJoinRoom(log, playerID, p.Payload)
	case protocol.TypeInput:
		s.handleInput(log, playerID, p.Payload)
	case protocol.TypeKick:
		s.handleKick(log, playerID, p.Payload)
	case protocol.TypeStateUpdate:
		// Server to client only.
		log.Debug("ignoring state update from client")
	}
}

// handleChat relays chat to every member of the sender's room, the
// sender included so their client confirms delivery. Chat from a player
// in no room has no audience and is only logged.
func (s *Session) handleChat(log *zap.Logger, playerID int32, text string) {
	room, members, err := s.lobby.RoomMembers(playerID)
	if err != nil {
		log.Debug("chat outside any room", zap.String("text", text))
		return
	}
	log.Info("chat",
		zap.String("room", room),
		zap.String("text", text),
	)
	frame := protocol.Packet{Type: protocol.TypeChat, PlayerID: playerID, Payload: text}
	for _, id := range members {
		s.send(log, id, frame)
	}
}

func (s *Session) handleNewRoom(log *zap.Logger, name string) {
	if name == "" {
		log.Warn("ignoring new room with empty name")
		return
	}
	created := s.lobby.CreateRoom(name)
	log.Info("new room request",
		zap.String("room", name),
		zap.Bool("created", created),
	)
}

func (s *Session) handleJoinRoom(log *zap.Logger, playerID int32, name string) {
	if name == "" {
		log.Warn("ignoring join with empty room name")
		return
	}
	s.lobby.JoinRoom(playerID, name)
	log.Info("joined room", zap.String("room", name))
}

// handleInput parses "vx vy" and updates the player's velocity. A
// malformed payload is logged and dropped; the previous velocity stands.
func (s *Session) handleInput(log *zap.Logger, playerID int32, payload string) {
	vx, vy, err := protocol.ParseInput(payload)
	if err != nil {
		log.Warn("ignoring malformed input", zap.Error(err))
		return
	}
	if err := s.lobby.SetVelocity(playerID, vx, vy); err != nil {
		log.Debug("input from player outside any room")
	}
}

// handleKick forcibly removes the named target from the sender's room
// and notifies the target. The empty room keeps existing; the target's
// connection stays open so they can join elsewhere.
func (s *Session) handleKick(log *zap.Logger, playerID int32, payload string) {
	target, err := protocol.ParseKick(payload)
	if err != nil {
		log.Warn("ignoring malformed kick", zap.Error(err))
		return
	}
	room, err := s.lobby.Kick(playerID, target)
	if err != nil {
		log.Debug("kick rejected",
			zap.Int32("target", target),
			zap.Error(err),
		)
		return
	}
	log.Info("kicked player",
		zap.Int32("target", target),
		zap.String("room", room),
	)
	s.send(log, target, protocol.Packet{
		Type:     protocol.TypeKick,
		PlayerID: target,
		Payload:  room,
	})
}

// send writes one frame to a registered player. A failed write means
// that player is gone: close their connection and let its session
// teardown do the cleanup.
func (s *Session) send(log *zap.Logger, id int32, p protocol.Packet) {
	conn, ok := s.registry.Get(id)
	if !ok {
		return
	}
	if err := conn.WriteFrame(p); err != nil {
		log.Warn("send failed, dropping recipient",
			zap.Int32("recipient", id),
			zap.Error(err),
		)
		_ = conn.Close()
	}
}
