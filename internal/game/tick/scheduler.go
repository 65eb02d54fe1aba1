// Package tick drives the fixed-period simulation loop: every interval it
// advances each room one physics step and broadcasts the rendered
// snapshot to the room's members. It is the only writer of position
// state; sessions only ever write velocity.
package tick

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gridroom/gridroom/internal/game/lobby"
	"github.com/gridroom/gridroom/internal/game/session"
	"github.com/gridroom/gridroom/internal/game/world"
	"github.com/gridroom/gridroom/internal/protocol"
)

// DefaultInterval is the tick period used when none is configured.
const DefaultInterval = 50 * time.Millisecond

// Scheduler owns the tick loop. It implements the lifecycle Service
// contract: Start blocks until Stop is called.
type Scheduler struct {
	interval time.Duration
	lobby    *lobby.Lobby
	registry *session.Registry
	metrics  *Metrics
	logger   *zap.Logger

	quit chan struct{}
	mu   sync.Mutex
	run  bool
}

// NewScheduler creates a stopped Scheduler. An interval of zero or below
// falls back to DefaultInterval.
func NewScheduler(interval time.Duration, lb *lobby.Lobby, reg *session.Registry, metrics *Metrics, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		interval: interval,
		lobby:    lb,
		registry: reg,
		metrics:  metrics,
		logger:   logger,
		quit:     make(chan struct{}),
	}
}

// Start runs the tick loop until Stop is called.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.run {
		s.mu.Unlock()
		return nil
	}
	s.run = true
	s.mu.Unlock()

	s.logger.Info("tick scheduler started",
		zap.Duration("interval", s.interval),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.quit:
			return nil
		case <-ticker.C:
			s.RunTick()
		}
	}
}

// Stop ends the tick loop. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.run {
		return
	}
	s.run = false
	close(s.quit)
	s.logger.Info("tick scheduler stopped",
		zap.Int64("ticks", s.metrics.Ticks()),
	)
}

// RunTick performs one advance-and-broadcast pass over every room as a
// single critical section under the lobby lock. Exposed so tests can
// step the simulation deterministically.
func (s *Scheduler) RunTick() {
	start := time.Now()
	s.lobby.Tick(func(room *world.Room) {
		room.Advance()

		members := room.Members()
		if len(members) == 0 {
			return
		}
		grid := room.RenderGrid()
		for _, id := range members {
			conn, ok := s.registry.Get(id)
			if !ok {
				continue
			}
			err := conn.WriteFrame(protocol.Packet{
				Type: protocol.TypeStateUpdate,
				// Recipient's own ID, so clients learn who they are.
				PlayerID: id,
				Payload:  grid,
			})
			if err != nil {
				// Failed send = that member is gone. Closing the conn
				// makes its session loop fail and run the teardown;
				// the other members still get their snapshot.
				s.metrics.IncSendFailures()
				s.logger.Warn("snapshot send failed, dropping member",
					zap.String("room", room.Name()),
					zap.Int32("player_id", id),
					zap.Error(err),
				)
				_ = conn.Close()
				continue
			}
			s.metrics.IncFramesSent()
		}
	})
	s.metrics.AddTick(time.Since(start).Nanoseconds())
}
