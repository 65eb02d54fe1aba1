// Package main provides the gridroom server binary. It wires together
// configuration, logging, the lobby, the frame acceptors, the tick
// scheduler, and the admin endpoint under one lifecycle.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/gridroom/gridroom/internal/admin"
	"github.com/gridroom/gridroom/internal/config"
	"github.com/gridroom/gridroom/internal/frontend/handlers"
	"github.com/gridroom/gridroom/internal/frontend/tcp"
	"github.com/gridroom/gridroom/internal/frontend/ws"
	"github.com/gridroom/gridroom/internal/game/lobby"
	"github.com/gridroom/gridroom/internal/game/session"
	"github.com/gridroom/gridroom/internal/game/tick"
	"github.com/gridroom/gridroom/internal/game/world"
	"github.com/gridroom/gridroom/internal/observability"
	"github.com/gridroom/gridroom/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting gridroom server",
		zap.String("addr", cfg.Server.Addr()),
		zap.Duration("tick_interval", cfg.Simulation.TickInterval),
	)

	lb := lobby.New(cfg.Simulation.GridSize)
	if cfg.Simulation.RoomsFile != "" {
		names, err := world.LoadRoomNamesFromFile(cfg.Simulation.RoomsFile)
		if err != nil {
			logger.Fatal("loading rooms file", zap.Error(err))
		}
		for _, name := range names {
			lb.CreateRoom(name)
		}
		logger.Info("preloaded rooms", zap.Int("count", len(names)))
	}

	registry := session.NewRegistry()
	ids := session.NewIDAllocator()
	metrics := tick.NewMetrics()
	sessionHandler := handlers.NewSession(lb, registry, logger)

	scheduler := tick.NewScheduler(cfg.Simulation.TickInterval, lb, registry, metrics, logger)
	acceptor := tcp.NewAcceptor(cfg.Server, ids, handlers.TCPAdapter{Session: sessionHandler}, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("scheduler", scheduler)
	lifecycle.Add("tcp", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	if cfg.Server.WSEnabled {
		wsAcceptor := ws.NewAcceptor(cfg.Server, ids, handlers.WSAdapter{Session: sessionHandler}, logger)
		lifecycle.Add("websocket", &server.FuncService{
			StartFn: wsAcceptor.ListenAndServe,
			StopFn:  wsAcceptor.Stop,
		})
	}

	if cfg.Admin.Enabled {
		lifecycle.Add("admin", admin.NewServer(cfg.Admin, lb, metrics, logger))
	}

	logger.Info("gridroom server initialized",
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
