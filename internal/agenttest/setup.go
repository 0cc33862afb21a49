package agenttest

import (
	"context"
	"fmt"
	"os"

	"github.com/semmidev/kustos/internal/config"
	"github.com/semmidev/kustos/internal/domain"
	"github.com/semmidev/kustos/internal/host"
	"github.com/semmidev/kustos/internal/manager"
)

// IntegrationOptions tune SetupIntegration.
type IntegrationOptions struct {
	// Supervised forces the host's supervised flag; the backup component
	// then registers no local agent.
	Supervised bool

	// RemoteAgents names fake agents to serve from a platform registered
	// under the test domain. Each starts empty.
	RemoteAgents []string

	// Backups maps agent IDs to records seeded through Upload after setup.
	// The local agent is skipped on supervised installs.
	Backups map[string][]domain.Backup
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{})  {}

// SetupIntegration drives the backup component's setup sequence for a
// test: it registers a fake platform with the requested remote agents,
// sets up the test domain and the backup component, waits for pending
// work, and seeds agents with the supplied records. A nil cfg gets a
// throwaway local backup directory.
func SetupIntegration(ctx context.Context, h *host.Host, cfg *config.Config, opts IntegrationOptions) error {
	h.Supervised = opts.Supervised

	if cfg == nil {
		localPath, err := os.MkdirTemp("", "kustos_backup_test")
		if err != nil {
			return fmt.Errorf("failed to create backup directory: %w", err)
		}
		cfg = &config.Config{Backup: config.BackupConfig{LocalPath: localPath}}
	}

	remote := make([]domain.Agent, 0, len(opts.RemoteAgents))
	for _, name := range opts.RemoteAgents {
		remote = append(remote, NewAgent(name, []domain.Backup{}))
	}
	h.RegisterBackupPlatform(Domain, NewPlatform(remote...))

	h.RegisterComponent(Domain, func(ctx context.Context, h *host.Host, conf map[string]any) error {
		return nil
	})
	if err := h.Setup(ctx, Domain, nil); err != nil {
		return fmt.Errorf("failed to set up %s: %w", Domain, err)
	}

	h.RegisterComponent(domain.BackupDomain, manager.Setup(cfg, nopLogger{}))
	if err := h.Setup(ctx, domain.BackupDomain, nil); err != nil {
		return fmt.Errorf("failed to set up %s: %w", domain.BackupDomain, err)
	}

	if err := h.BlockTillDone(ctx); err != nil {
		return err
	}

	if len(opts.Backups) == 0 {
		return nil
	}

	m := manager.FromHost(h)
	for agentID, backups := range opts.Backups {
		if opts.Supervised && agentID == manager.LocalAgentID {
			continue
		}

		a, ok := m.Agent(agentID)
		if !ok {
			return fmt.Errorf("unknown agent: %s", agentID)
		}

		for _, backup := range backups {
			if err := a.Upload(ctx, StreamFrom([]byte("backup data")), backup); err != nil {
				return fmt.Errorf("failed to seed %s: %w", agentID, err)
			}
		}

		if agentID == manager.LocalAgentID {
			if loader, ok := a.(interface{ MarkLoaded() }); ok {
				loader.MarkLoaded()
			}
		}
	}

	return nil
}

// SetupPlatform registers a single backup platform under the given domain
// and sets that domain up.
func SetupPlatform(ctx context.Context, h *host.Host, dom string, platform domain.Platform) error {
	h.RegisterBackupPlatform(dom, platform)

	h.RegisterComponent(dom, func(ctx context.Context, h *host.Host, conf map[string]any) error {
		return nil
	})
	if err := h.Setup(ctx, dom, nil); err != nil {
		return fmt.Errorf("failed to set up %s: %w", dom, err)
	}

	return h.BlockTillDone(ctx)
}
