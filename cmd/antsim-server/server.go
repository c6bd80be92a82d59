package main

import (
	"github.com/musaraza08/ant-colony-optimisation/internal/colony"
	"github.com/musaraza08/ant-colony-optimisation/internal/colony/notifiers"
)

// colonyLoggerAdapter adapts the server's Logger to the colony.Logger
// interface.
type colonyLoggerAdapter struct {
	logger *Logger
}

func (a *colonyLoggerAdapter) Debugf(format string, v ...any) { a.logger.Debugf(format, v...) }
func (a *colonyLoggerAdapter) Infof(format string, v ...any)  { a.logger.Infof(format, v...) }
func (a *colonyLoggerAdapter) Warnf(format string, v ...any)  { a.logger.Warnf(format, v...) }
func (a *colonyLoggerAdapter) Errorf(format string, v ...any) { a.logger.Errorf(format, v...) }

// Server hosts simulation runs behind an HTTP and websocket API.
type Server struct {
	manager            *colony.RunManager
	notifierMgr        *colony.NotificationManager
	wsNotifier         *notifiers.WebSocketNotifier
	snapshotDir        string
	snapshotEveryTicks int
	logger             *Logger
}

// NewServer creates a server with an empty run manager, a notification
// manager and a shared websocket notifier for event streaming.
func NewServer(logger *Logger) *Server {
	adapter := &colonyLoggerAdapter{logger: logger}
	nm := colony.NewNotificationManagerWithLogger(adapter)

	ws := notifiers.NewWebSocketNotifier("ws-broadcast")
	if err := nm.RegisterNotifier(ws); err != nil {
		logger.Errorf("registering websocket notifier: %v", err)
	}

	return &Server{
		manager:     colony.NewRunManagerWithLogger(adapter),
		notifierMgr: nm,
		wsNotifier:  ws,
		logger:      logger,
	}
}

// SetSnapshotDir sets the snapshot directory for created runs.
func (s *Server) SetSnapshotDir(dir string) {
	s.snapshotDir = dir
}

// SetSnapshotEveryTicks sets the snapshot frequency for created runs.
func (s *Server) SetSnapshotEveryTicks(ticks int) {
	s.snapshotEveryTicks = ticks
}

// createRun builds and registers a run, wiring it to the server's
// notification manager and snapshot settings.
func (s *Server) createRun(id colony.RunID, cfg colony.Config) (colony.RunID, error) {
	assigned, err := s.manager.CreateRun(id, cfg)
	if err != nil {
		return "", err
	}

	sim, _ := s.manager.GetRun(assigned)
	sim.SetNotificationManager(s.notifierMgr)
	if s.snapshotDir != "" {
		sim.SetSnapshotDir(s.snapshotDir)
	}
	if s.snapshotEveryTicks > 0 {
		sim.SetSnapshotEveryNTicks(s.snapshotEveryTicks)
	}
	return assigned, nil
}

// Close stops every run and shuts the notification pipeline down.
func (s *Server) Close() {
	s.manager.StopAll()
	if err := s.notifierMgr.Close(); err != nil {
		s.logger.Errorf("closing notification manager: %v", err)
	}
}
