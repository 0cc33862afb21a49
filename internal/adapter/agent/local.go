package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/semmidev/kustos/internal/domain"
)

// LocalAgent stores backups on the local filesystem: the content of backup
// <id> lives in <base>/<id>.tar next to a <base>/<id>.metadata.json record
// sidecar. The in-memory index preserves insertion order.
type LocalAgent struct {
	basePath string

	mu     sync.Mutex
	index  map[string]domain.Backup
	order  []string
	loaded bool
}

func NewLocal(basePath string) (*LocalAgent, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	return &LocalAgent{
		basePath: basePath,
		index:    make(map[string]domain.Backup),
	}, nil
}

func (a *LocalAgent) Domain() string   { return domain.BackupDomain }
func (a *LocalAgent) UniqueID() string { return "local" }
func (a *LocalAgent) Name() string     { return "local" }

// MarkLoaded skips the initial directory scan. Used when the caller has
// already seeded the agent through Upload.
func (a *LocalAgent) MarkLoaded() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loaded = true
}

// ensureLoaded reads record sidecars left by previous runs. Records found
// on disk are indexed in file-name order.
func (a *LocalAgent) ensureLoaded() error {
	if a.loaded {
		return nil
	}

	entries, err := os.ReadDir(a.basePath)
	if err != nil {
		return fmt.Errorf("failed to read backup directory: %w", err)
	}

	var sidecars []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".metadata.json") {
			sidecars = append(sidecars, entry.Name())
		}
	}
	sort.Strings(sidecars)

	for _, name := range sidecars {
		data, err := os.ReadFile(filepath.Join(a.basePath, name))
		if err != nil {
			return fmt.Errorf("failed to read record %s: %w", name, err)
		}

		var backup domain.Backup
		if err := json.Unmarshal(data, &backup); err != nil {
			return fmt.Errorf("failed to parse record %s: %w", name, err)
		}

		if _, ok := a.index[backup.ID]; !ok {
			a.order = append(a.order, backup.ID)
		}
		a.index[backup.ID] = backup
	}

	a.loaded = true
	return nil
}

func (a *LocalAgent) List(ctx context.Context) ([]domain.Backup, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureLoaded(); err != nil {
		return nil, err
	}

	backups := make([]domain.Backup, 0, len(a.order))
	for _, id := range a.order {
		backups = append(backups, a.index[id])
	}
	return backups, nil
}

func (a *LocalAgent) Get(ctx context.Context, backupID string) (*domain.Backup, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureLoaded(); err != nil {
		return nil, err
	}

	backup, ok := a.index[backupID]
	if !ok {
		return nil, nil
	}
	return &backup, nil
}

func (a *LocalAgent) Upload(ctx context.Context, open domain.OpenStream, backup domain.Backup) error {
	stream, err := open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open backup stream: %w", err)
	}
	defer stream.Close()

	contentPath := a.contentPath(backup.ID)
	file, err := os.Create(contentPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}

	if _, err := io.Copy(file, stream); err != nil {
		file.Close()
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close backup file: %w", err)
	}

	record, err := json.Marshal(backup)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if err := os.WriteFile(a.sidecarPath(backup.ID), record, 0644); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.index[backup.ID]; !ok {
		a.order = append(a.order, backup.ID)
	}
	a.index[backup.ID] = backup

	return nil
}

func (a *LocalAgent) Download(ctx context.Context, backupID string) (io.ReadCloser, error) {
	backup, err := a.Get(ctx, backupID)
	if err != nil {
		return nil, err
	}
	if backup == nil {
		return nil, domain.ErrBackupNotFound
	}

	file, err := os.Open(a.contentPath(backupID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrBackupNotFound
		}
		return nil, fmt.Errorf("failed to open backup file: %w", err)
	}
	return file, nil
}

func (a *LocalAgent) Delete(ctx context.Context, backupID string) error {
	backup, err := a.Get(ctx, backupID)
	if err != nil {
		return err
	}
	if backup == nil {
		return domain.ErrBackupNotFound
	}

	if err := os.Remove(a.contentPath(backupID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete backup file: %w", err)
	}
	if err := os.Remove(a.sidecarPath(backupID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.index, backupID)
	for i, id := range a.order {
		if id == backupID {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}

	return nil
}

func (a *LocalAgent) contentPath(backupID string) string {
	return filepath.Join(a.basePath, backupID+".tar")
}

func (a *LocalAgent) sidecarPath(backupID string) string {
	return filepath.Join(a.basePath, backupID+".metadata.json")
}
