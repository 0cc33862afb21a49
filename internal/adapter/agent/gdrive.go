package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	appconfig "github.com/semmidev/kustos/internal/config"
	"github.com/semmidev/kustos/internal/domain"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GDriveAgent keeps each backup as one Drive file named <id>.tar inside a
// folder, with the record JSON carried in the file description.
type GDriveAgent struct {
	service  *drive.Service
	folderID string
	name     string
}

func NewGDrive(cfg *appconfig.AgentTarget) (*GDriveAgent, error) {
	ctx := context.Background()

	service, err := drive.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	name := cfg.Name
	if name == "" {
		name = "gdrive"
	}

	return &GDriveAgent{
		service:  service,
		folderID: cfg.FolderID,
		name:     name,
	}, nil
}

func (a *GDriveAgent) Domain() string   { return "gdrive" }
func (a *GDriveAgent) UniqueID() string { return a.name }
func (a *GDriveAgent) Name() string     { return a.name }

func (a *GDriveAgent) List(ctx context.Context) ([]domain.Backup, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false", a.folderID)

	fileList, err := a.service.Files.List().
		Q(query).
		Fields("files(id, name, description)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	var backups []domain.Backup
	for _, file := range fileList.Files {
		if file.Description == "" {
			continue
		}

		var backup domain.Backup
		if err := json.Unmarshal([]byte(file.Description), &backup); err != nil {
			return nil, fmt.Errorf("failed to parse record for %s: %w", file.Name, err)
		}
		backups = append(backups, backup)
	}

	return backups, nil
}

func (a *GDriveAgent) Get(ctx context.Context, backupID string) (*domain.Backup, error) {
	file, err := a.findFile(ctx, backupID, "files(id, description)")
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, nil
	}

	var backup domain.Backup
	if err := json.Unmarshal([]byte(file.Description), &backup); err != nil {
		return nil, fmt.Errorf("failed to parse record for %s: %w", backupID, err)
	}
	return &backup, nil
}

func (a *GDriveAgent) Upload(ctx context.Context, open domain.OpenStream, backup domain.Backup) error {
	stream, err := open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open backup stream: %w", err)
	}
	defer stream.Close()

	record, err := json.Marshal(backup)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	fileMetadata := &drive.File{
		Name:        backup.ID + ".tar",
		Description: string(record),
		Parents:     []string{a.folderID},
	}

	if _, err := a.service.Files.Create(fileMetadata).
		Media(stream).
		Context(ctx).
		Do(); err != nil {
		return fmt.Errorf("failed to upload to gdrive: %w", err)
	}

	return nil
}

func (a *GDriveAgent) Download(ctx context.Context, backupID string) (io.ReadCloser, error) {
	file, err := a.findFile(ctx, backupID, "files(id)")
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, domain.ErrBackupNotFound
	}

	resp, err := a.service.Files.Get(file.Id).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download from gdrive: %w", err)
	}
	return resp.Body, nil
}

func (a *GDriveAgent) Delete(ctx context.Context, backupID string) error {
	file, err := a.findFile(ctx, backupID, "files(id)")
	if err != nil {
		return err
	}
	if file == nil {
		return domain.ErrBackupNotFound
	}

	if err := a.service.Files.Delete(file.Id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (a *GDriveAgent) findFile(ctx context.Context, backupID, fields string) (*drive.File, error) {
	query := fmt.Sprintf("'%s' in parents and name='%s.tar' and trashed=false",
		a.folderID, backupID)

	fileList, err := a.service.Files.List().
		Q(query).
		Fields(googleapi.Field(fields)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to find file: %w", err)
	}

	if len(fileList.Files) == 0 {
		return nil, nil
	}
	return fileList.Files[0], nil
}
