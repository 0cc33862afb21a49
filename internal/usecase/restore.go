package usecase

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/semmidev/kustos/internal/domain"
)

// Restore downloads a backup from one agent and unpacks it into a target
// directory.
type Restore struct {
	agents     AgentProvider
	archiver   domain.Archiver
	compressor domain.Compressor
	logger     Logger
}

func NewRestore(
	agents AgentProvider,
	archiver domain.Archiver,
	compressor domain.Compressor,
	logger Logger,
) *Restore {
	return &Restore{
		agents:     agents,
		archiver:   archiver,
		compressor: compressor,
		logger:     logger,
	}
}

func (uc *Restore) Execute(ctx context.Context, agentID, backupID, destDir string) error {
	a, ok := uc.agents.Agent(agentID)
	if !ok {
		return fmt.Errorf("unknown agent: %s", agentID)
	}

	backup, err := a.Get(ctx, backupID)
	if err != nil {
		return fmt.Errorf("get backup: %w", err)
	}
	if backup == nil {
		return domain.ErrBackupNotFound
	}

	uc.logger.Infof("[%s] Restoring %q from %s...", backupID, backup.Name, agentID)

	stream, err := a.Download(ctx, backupID)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer stream.Close()

	stagedPath := filepath.Join(os.TempDir(), backupID+".restore")
	if err := stageStream(stream, stagedPath); err != nil {
		return err
	}
	defer os.Remove(stagedPath)

	archivePath := stagedPath
	gzipped, err := isGzip(stagedPath)
	if err != nil {
		return err
	}
	if gzipped {
		archivePath = stagedPath + ".tar"
		if err := uc.compressor.Decompress(stagedPath, archivePath); err != nil {
			return fmt.Errorf("decompression: %w", err)
		}
		defer os.Remove(archivePath)
	}

	if err := uc.archiver.Extract(ctx, archivePath, destDir); err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	uc.logger.Infof("[%s] Restored to %s", backupID, destDir)
	return nil
}

func stageStream(stream io.Reader, destPath string) error {
	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to stage download: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, stream); err != nil {
		return fmt.Errorf("failed to stage download: %w", err)
	}
	return nil
}

// isGzip sniffs the staged file for the gzip magic number.
func isGzip(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open staged file: %w", err)
	}
	defer file.Close()

	var magic uint16
	if err := binary.Read(file, binary.BigEndian, &magic); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, fmt.Errorf("failed to read staged file: %w", err)
	}
	return magic == 0x1f8b, nil
}
