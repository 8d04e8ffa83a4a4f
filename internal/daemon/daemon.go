// Package daemon runs the receiver as an OS-managed background service so a
// machine can accept transfers without an operator keeping a terminal open.
package daemon

import (
	"fmt"
	"runtime"

	kardianos "github.com/kardianos/service"

	"github.com/nettf/nettf/internal/config"
	"github.com/nettf/nettf/internal/server"
	"github.com/nettf/nettf/internal/transfer"
	"github.com/nettf/nettf/pkg/logger"
)

// Manager wraps the receiver in the kardianos service interface and exposes
// install, uninstall and run against the host's service manager.
type Manager struct {
	cfg *config.Config
	srv *server.Server
}

func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		cfg: cfg,
		srv: server.New(cfg.Port(), cfg.ReceiveDir(), &transfer.Options{}),
	}
}

func (m *Manager) newService() (kardianos.Service, error) {
	return kardianos.New(m, &kardianos.Config{
		Name:        m.cfg.ServiceName(),
		DisplayName: m.cfg.ServiceDisplayName(),
		Description: m.cfg.ServiceDescription(),
		Arguments:   []string{"service", "run"},
	})
}

// Start implements kardianos.Interface. The service manager expects it to
// return promptly, so the accept loop runs in its own goroutine.
func (m *Manager) Start(s kardianos.Service) error {
	logger.Log.Info("service starting", "platform", s.Platform())
	go func() {
		if err := m.srv.ListenAndServe(); err != nil {
			logger.Log.Error("receiver stopped", "error", err)
		}
	}()
	return nil
}

// Stop implements kardianos.Interface.
func (m *Manager) Stop(s kardianos.Service) error {
	logger.Log.Info("service stopping")
	m.srv.Close()
	return nil
}

// Install registers the receiver with the host's service manager.
func (m *Manager) Install() error {
	s, err := m.newService()
	if err != nil {
		return err
	}
	if err := s.Install(); err != nil {
		if runtime.GOOS == "windows" {
			return fmt.Errorf("install service (requires administrator privileges): %w", err)
		}
		return fmt.Errorf("install service: %w", err)
	}
	logger.Log.Info("service installed", "name", m.cfg.ServiceName())
	return nil
}

// Uninstall stops the service if running and removes the registration.
func (m *Manager) Uninstall() error {
	s, err := m.newService()
	if err != nil {
		return err
	}
	// Best effort; the service may already be stopped.
	_ = s.Stop()
	if err := s.Uninstall(); err != nil {
		return fmt.Errorf("uninstall service: %w", err)
	}
	logger.Log.Info("service uninstalled", "name", m.cfg.ServiceName())
	return nil
}

// Run blocks inside the service manager's lifecycle until stopped.
func (m *Manager) Run() error {
	s, err := m.newService()
	if err != nil {
		return err
	}
	return s.Run()
}
