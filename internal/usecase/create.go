package usecase

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/semmidev/kustos/internal/domain"
)

type Logger interface {
	Infof(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

// AgentProvider narrows the manager to what the use cases need.
type AgentProvider interface {
	Agents() map[string]domain.Agent
	Agent(agentID string) (domain.Agent, bool)
}

type Notifier interface {
	BackupCreated(ctx context.Context, backup domain.Backup, archivePath string) error
}

// CreateBackup archives the configured folders, stamps a backup record and
// fans the upload out to every registered agent.
type CreateBackup struct {
	agents      AgentProvider
	archiver    domain.Archiver
	compressor  domain.Compressor
	notifier    Notifier
	logger      Logger
	folders     []string
	database    string
	instanceID  string
	coreVersion string
	compress    bool
	automatic   bool
}

func NewCreateBackup(
	agents AgentProvider,
	archiver domain.Archiver,
	compressor domain.Compressor,
	notifier Notifier,
	logger Logger,
	folders []string,
	database string,
	instanceID string,
	coreVersion string,
	compress bool,
	automatic bool,
) *CreateBackup {
	return &CreateBackup{
		agents:      agents,
		archiver:    archiver,
		compressor:  compressor,
		notifier:    notifier,
		logger:      logger,
		folders:     folders,
		database:    database,
		instanceID:  instanceID,
		coreVersion: coreVersion,
		compress:    compress,
		automatic:   automatic,
	}
}

func (uc *CreateBackup) Execute(ctx context.Context) error {
	start := time.Now()

	backupID := newBackupID()
	uc.logger.Infof("[%s] Starting backup...", backupID)

	sources := append([]string{}, uc.folders...)
	if uc.database != "" {
		sources = append(sources, uc.database)
	}
	if len(sources) == 0 {
		return fmt.Errorf("nothing to back up")
	}

	tempPath := filepath.Join(os.TempDir(), backupID+".tar")
	if err := uc.archiver.Archive(ctx, sources, tempPath); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	defer os.Remove(tempPath)

	finalPath := tempPath
	if uc.compress {
		finalPath = tempPath + ".gz"
		uc.logger.Infof("[%s] Compressing archive...", backupID)
		if err := uc.compressor.Compress(tempPath, finalPath); err != nil {
			return fmt.Errorf("compression: %w", err)
		}
		defer os.Remove(finalPath)
	}

	fileInfo, err := os.Stat(finalPath)
	if err != nil {
		return fmt.Errorf("stat archive: %w", err)
	}
	uc.logger.Infof("[%s] Archive ready, size: %.2f MB",
		backupID, float64(fileInfo.Size())/(1024*1024))

	backup := domain.Backup{
		ID:               backupID,
		Name:             uc.backupName(start),
		Date:             start.UTC(),
		DatabaseIncluded: uc.database != "",
		CoreIncluded:     true,
		CoreVersion:      uc.coreVersion,
		Folders:          folderNames(uc.folders),
		Addons:           []domain.AddonInfo{},
		Size:             fileInfo.Size(),
		Protected:        false,
		ExtraMetadata: map[string]any{
			"instance_id":             uc.instanceID,
			"with_automatic_settings": uc.automatic,
		},
	}

	uc.uploadToAgents(ctx, backup, finalPath)

	if uc.notifier != nil {
		if err := uc.notifier.BackupCreated(ctx, backup, finalPath); err != nil {
			uc.logger.Warnf("[%s] Failed to send notification: %v", backupID, err)
		}
	}

	uc.logger.Infof("[%s] Backup completed in %s",
		backupID, time.Since(start).Round(time.Second))

	return nil
}

func (uc *CreateBackup) uploadToAgents(ctx context.Context, backup domain.Backup, archivePath string) {
	var wg sync.WaitGroup

	open := domain.OpenStream(func(ctx context.Context) (io.ReadCloser, error) {
		return os.Open(archivePath)
	})

	for agentID, a := range uc.agents.Agents() {
		wg.Add(1)
		go func(agentID string, a domain.Agent) {
			defer wg.Done()

			uc.logger.Infof("[%s] Uploading to %s...", backup.ID, agentID)
			if err := a.Upload(ctx, open, backup); err != nil {
				uc.logger.Errorf("[%s] Failed to upload to %s: %v", backup.ID, agentID, err)
			} else {
				uc.logger.Infof("[%s] Successfully uploaded to %s", backup.ID, agentID)
			}
		}(agentID, a)
	}

	wg.Wait()
}

func (uc *CreateBackup) backupName(start time.Time) string {
	kind := "Manual"
	if uc.automatic {
		kind = "Automatic"
	}
	return fmt.Sprintf("%s backup %s", kind, start.Format("2006-01-02 15:04"))
}

func newBackupID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func folderNames(folders []string) []domain.Folder {
	names := make([]domain.Folder, 0, len(folders))
	for _, folder := range folders {
		names = append(names, domain.Folder(filepath.Base(folder)))
	}
	return names
}
