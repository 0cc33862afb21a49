package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/semmidev/kustos/internal/adapter/agent"
	"github.com/semmidev/kustos/internal/config"
	"github.com/semmidev/kustos/internal/domain"
	"github.com/semmidev/kustos/internal/host"
)

// DataKey locates the manager singleton in host data.
const DataKey = "backup_manager"

// LocalAgentID addresses the built-in local agent.
var LocalAgentID = domain.AgentID(domain.BackupDomain, "local")

type Logger interface {
	Infof(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

// Manager is the backup component singleton: it owns the registry of
// backup agents and coordinates operations across them.
type Manager struct {
	host   *host.Host
	logger Logger

	mu     sync.RWMutex
	agents map[string]domain.Agent
}

func New(h *host.Host, logger Logger) *Manager {
	return &Manager{
		host:   h,
		logger: logger,
		agents: make(map[string]domain.Agent),
	}
}

// Setup builds the backup component's setup function: it creates the
// manager, registers the local agent unless the install is supervised,
// collects agents from every registered platform, and stores the manager
// in host data.
func Setup(cfg *config.Config, logger Logger) host.SetupFunc {
	return func(ctx context.Context, h *host.Host, conf map[string]any) error {
		m := New(h, logger)

		if !h.Supervised {
			local, err := agent.NewLocal(cfg.Backup.LocalPath)
			if err != nil {
				return fmt.Errorf("failed to initialize local agent: %w", err)
			}
			m.register(local)
		}

		if err := m.LoadAgents(ctx); err != nil {
			return err
		}

		h.SetData(DataKey, m)
		return nil
	}
}

// FromHost returns the manager stored by Setup, or nil before setup ran.
func FromHost(h *host.Host) *Manager {
	m, _ := h.Data(DataKey).(*Manager)
	return m
}

// LoadAgents collects agents from every backup platform registered with
// the host. Already-known agent IDs are replaced.
func (m *Manager) LoadAgents(ctx context.Context) error {
	for dom, platform := range m.host.BackupPlatforms() {
		agents, err := platform.Agents(ctx)
		if err != nil {
			return fmt.Errorf("failed to load agents from %s: %w", dom, err)
		}
		for _, a := range agents {
			m.register(a)
		}
		m.logger.Infof("Loaded %d backup agent(s) from %s", len(agents), dom)
	}
	return nil
}

func (m *Manager) register(a domain.Agent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.agents[domain.AgentID(a.Domain(), a.UniqueID())] = a
}

func (m *Manager) Agents() map[string]domain.Agent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	agents := make(map[string]domain.Agent, len(m.agents))
	for id, a := range m.agents {
		agents[id] = a
	}
	return agents
}

func (m *Manager) Agent(agentID string) (domain.Agent, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.agents[agentID]
	return a, ok
}

// ListBackups aggregates records across all agents. A backup known to
// several agents appears once.
func (m *Manager) ListBackups(ctx context.Context) ([]domain.Backup, error) {
	seen := make(map[string]bool)
	var backups []domain.Backup

	for id, a := range m.Agents() {
		agentBackups, err := a.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list backups from %s: %w", id, err)
		}
		for _, b := range agentBackups {
			if seen[b.ID] {
				continue
			}
			seen[b.ID] = true
			backups = append(backups, b)
		}
	}

	return backups, nil
}

// GetBackup returns the first agent's record matching the ID, or
// ErrBackupNotFound when no agent knows it.
func (m *Manager) GetBackup(ctx context.Context, backupID string) (*domain.Backup, error) {
	for id, a := range m.Agents() {
		backup, err := a.Get(ctx, backupID)
		if err != nil {
			return nil, fmt.Errorf("failed to get backup from %s: %w", id, err)
		}
		if backup != nil {
			return backup, nil
		}
	}
	return nil, domain.ErrBackupNotFound
}

// DeleteBackup removes the backup from every agent holding it. Agents
// that do not know the backup are skipped.
func (m *Manager) DeleteBackup(ctx context.Context, backupID string) error {
	found := false
	var errs []error

	for id, a := range m.Agents() {
		backup, err := a.Get(ctx, backupID)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to get backup from %s: %w", id, err))
			continue
		}
		if backup == nil {
			continue
		}

		found = true
		if err := a.Delete(ctx, backupID); err != nil {
			errs = append(errs, fmt.Errorf("failed to delete backup from %s: %w", id, err))
		} else {
			m.logger.Infof("Deleted backup %s from %s", backupID, id)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if !found {
		return domain.ErrBackupNotFound
	}
	return nil
}
