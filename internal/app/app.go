package app

import (
	"context"
	"fmt"

	"github.com/semmidev/kustos/internal/adapter/agent"
	"github.com/semmidev/kustos/internal/adapter/archiver"
	"github.com/semmidev/kustos/internal/adapter/compressor"
	"github.com/semmidev/kustos/internal/adapter/notifier"
	"github.com/semmidev/kustos/internal/config"
	"github.com/semmidev/kustos/internal/domain"
	"github.com/semmidev/kustos/internal/host"
	"github.com/semmidev/kustos/internal/infrastructure/logger"
	"github.com/semmidev/kustos/internal/infrastructure/scheduler"
	"github.com/semmidev/kustos/internal/manager"
	"github.com/semmidev/kustos/internal/usecase"
)

// Version of the platform core recorded in backups it creates.
const Version = "1.12.0"

type App struct {
	config    *config.Config
	logger    *logger.Logger
	host      *host.Host
	scheduler *scheduler.Scheduler
	createUC  *usecase.CreateBackup
	restoreUC *usecase.Restore
	oauth     *GoogleOAuthService
}

// staticPlatform serves a fixed set of agents built from configuration.
type staticPlatform struct {
	agents []domain.Agent
}

func (p *staticPlatform) Agents(ctx context.Context) ([]domain.Agent, error) {
	return p.agents, nil
}

func New(cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Infof("Starting %s", cfg.App.Name)

	h := host.New()
	h.Supervised = cfg.App.Supervised

	app := &App{
		config:    cfg,
		logger:    log,
		host:      h,
		scheduler: scheduler.New(),
	}

	backupNotifier, err := app.registerPlatforms()
	if err != nil {
		return nil, err
	}

	ctx := context.Background()

	h.RegisterComponent(domain.BackupDomain, manager.Setup(cfg, log.Named("manager")))
	if err := h.Setup(ctx, domain.BackupDomain, nil); err != nil {
		return nil, fmt.Errorf("failed to set up backup component: %w", err)
	}

	m := manager.FromHost(h)
	log.Infof("Registered %d backup agent(s)", len(m.Agents()))

	tarArchiver := archiver.NewTar()
	gzip := compressor.NewGzip()

	app.createUC = usecase.NewCreateBackup(
		m,
		tarArchiver,
		gzip,
		backupNotifier,
		log.Named("create"),
		cfg.Backup.Folders,
		cfg.Backup.Database,
		cfg.App.InstanceID,
		Version,
		cfg.Backup.Compress,
		cfg.Backup.Schedule != "",
	)
	app.restoreUC = usecase.NewRestore(m, tarArchiver, gzip, log.Named("restore"))

	return app, nil
}

// registerPlatforms builds agents for the enabled remote targets and
// registers them with the host, grouped by their component domain. The
// Telegram target configures notifications rather than an agent.
func (a *App) registerPlatforms() (usecase.Notifier, error) {
	ctx := context.Background()
	byDomain := make(map[string][]domain.Agent)
	var backupNotifier usecase.Notifier

	for _, targetCfg := range a.config.GetEnabledAgents() {
		switch targetCfg.Type {
		case "s3":
			remote, err := agent.NewS3(&targetCfg)
			if err != nil {
				a.logger.Errorf("Failed to initialize S3 agent: %v", err)
				continue
			}
			byDomain[remote.Domain()] = append(byDomain[remote.Domain()], remote)
			a.logger.Infof("✓ S3 agent enabled (bucket: %s)", targetCfg.Bucket)

		case "gdrive":
			if targetCfg.CredentialsFile == "" {
				oauth, err := NewGoogleOAuthService(a.logger, targetCfg.ClientSecretFile)
				if err != nil {
					a.logger.Errorf("Failed to initialize Google OAuth: %v", err)
					continue
				}
				a.oauth = oauth
				a.logger.Warnf("Google Drive agent needs authorization; visit the auth server")
				continue
			}
			remote, err := agent.NewGDrive(&targetCfg)
			if err != nil {
				a.logger.Errorf("Failed to initialize Google Drive agent: %v", err)
				continue
			}
			byDomain[remote.Domain()] = append(byDomain[remote.Domain()], remote)
			a.logger.Infof("✓ Google Drive agent enabled")

		case "telegram":
			tg, err := notifier.NewTelegram(&targetCfg)
			if err != nil {
				a.logger.Errorf("Failed to initialize Telegram: %v", err)
				continue
			}
			backupNotifier = tg
			a.logger.Infof("✓ Telegram notifications enabled")

		default:
			a.logger.Warnf("Unknown agent type: %s", targetCfg.Type)
		}
	}

	for dom, agents := range byDomain {
		a.host.RegisterBackupPlatform(dom, &staticPlatform{agents: agents})
		a.host.RegisterComponent(dom, func(ctx context.Context, h *host.Host, conf map[string]any) error {
			return nil
		})
		if err := a.host.Setup(ctx, dom, nil); err != nil {
			return nil, fmt.Errorf("failed to set up %s: %w", dom, err)
		}
	}

	return backupNotifier, nil
}

// Manager exposes the backup manager for callers embedding the app.
func (a *App) Manager() *manager.Manager {
	return manager.FromHost(a.host)
}

func (a *App) CreateBackup(ctx context.Context) error {
	return a.createUC.Execute(ctx)
}

func (a *App) Restore(ctx context.Context, agentID, backupID, destDir string) error {
	return a.restoreUC.Execute(ctx, agentID, backupID, destDir)
}

func (a *App) Run(ctx context.Context) error {
	if a.oauth != nil {
		if err := a.oauth.StartAuthServer(ctx, ":8089"); err != nil {
			return fmt.Errorf("failed to start auth server: %w", err)
		}
	}

	if schedule := a.config.Backup.Schedule; schedule != "" {
		a.logger.Infof("Scheduling automatic backups: %s", schedule)
		if err := a.scheduler.AddJob("automatic_backup", schedule, a.createUC.Execute); err != nil {
			return err
		}
		a.scheduler.Start()
	}

	<-ctx.Done()
	return nil
}

func (a *App) Shutdown() {
	a.logger.Infof("Shutting down...")
	a.scheduler.Stop()
	if a.oauth != nil {
		_ = a.oauth.Shutdown(context.Background())
	}
	a.logger.Close()
}
