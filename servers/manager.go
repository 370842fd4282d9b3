package servers

import (
	"fmt"

	"leaguebot/interfaces"
)

// Manager holds and manages all the servers.
type Manager struct {
	servers []Server
	log     interfaces.Logger
}

// NewManager creates a new server manager.
func NewManager(log interfaces.Logger) *Manager {
	return &Manager{log: log}
}

// AddServer adds a new server to the manager.
func (m *Manager) AddServer(server Server) {
	m.servers = append(m.servers, server)
}

// StartAll starts all registered servers. On failure the servers already
// started are stopped again.
func (m *Manager) StartAll() error {
	for n, s := range m.servers {
		m.log.Info("Starting server", "name", s.Name())
		if err := s.Start(); err != nil {
			m.stop(m.servers[:n])
			return fmt.Errorf("start %s: %w", s.Name(), err)
		}
		m.log.Info("Server started successfully", "name", s.Name())
	}
	return nil
}

// StopAll stops all registered servers in reverse order.
func (m *Manager) StopAll() {
	m.stop(m.servers)
}

func (m *Manager) stop(servers []Server) {
	for n := len(servers) - 1; n >= 0; n-- {
		s := servers[n]
		m.log.Info("Stopping server", "name", s.Name())
		if err := s.Stop(); err != nil {
			m.log.Error("Failed to stop server", "name", s.Name(), "error", err)
			continue
		}
		m.log.Info("Server stopped successfully", "name", s.Name())
	}
}
