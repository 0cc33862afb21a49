package agenttest

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/semmidev/kustos/internal/domain"
)

var _ domain.Agent = (*Agent)(nil)

// Agent is an in-memory fake backup agent. It keeps records in insertion
// order and captures uploaded content, so tests can observe the five
// operations without a real backend. Not safe for concurrent use; tests
// drive it from a single goroutine.
type Agent struct {
	name    string
	backups map[string]domain.Backup
	order   []string
	data    []byte
}

// NewAgent builds a fake holding the given records. A nil slice seeds one
// default record; pass an empty slice for an empty agent.
func NewAgent(name string, backups []domain.Backup) *Agent {
	if backups == nil {
		backups = []domain.Backup{
			{
				ID:               "abc123",
				Name:             "Test",
				Date:             time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
				DatabaseIncluded: true,
				CoreIncluded:     true,
				CoreVersion:      "1.12.0",
				Folders:          []domain.Folder{domain.FolderMedia, domain.FolderShare},
				Addons: []domain.AddonInfo{
					{Name: "Test", Slug: "test", Version: "1.0.0"},
				},
				Size:          13,
				Protected:     false,
				ExtraMetadata: map[string]any{},
			},
		}
	}

	a := &Agent{
		name:    name,
		backups: make(map[string]domain.Backup, len(backups)),
	}
	for _, b := range backups {
		a.backups[b.ID] = b
		a.order = append(a.order, b.ID)
	}
	return a
}

func (a *Agent) Domain() string   { return Domain }
func (a *Agent) UniqueID() string { return a.name }
func (a *Agent) Name() string     { return a.name }

// Data returns the content drained by the last Upload.
func (a *Agent) Data() []byte { return a.data }

func (a *Agent) List(ctx context.Context) ([]domain.Backup, error) {
	backups := make([]domain.Backup, 0, len(a.order))
	for _, id := range a.order {
		backups = append(backups, a.backups[id])
	}
	return backups, nil
}

func (a *Agent) Get(ctx context.Context, backupID string) (*domain.Backup, error) {
	backup, ok := a.backups[backupID]
	if !ok {
		return nil, nil
	}
	return &backup, nil
}

func (a *Agent) Upload(ctx context.Context, open domain.OpenStream, backup domain.Backup) error {
	if _, ok := a.backups[backup.ID]; !ok {
		a.order = append(a.order, backup.ID)
	}
	a.backups[backup.ID] = backup

	stream, err := open(ctx)
	if err != nil {
		return err
	}
	defer stream.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, stream); err != nil {
		return err
	}
	a.data = buf.Bytes()

	return nil
}

// Download returns an empty placeholder stream. The fake holds no real
// content for a downloadable backup; tests needing content override the
// behavior through MockAgent instead.
func (a *Agent) Download(ctx context.Context, backupID string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(nil)), nil
}

// Delete is a stub: it satisfies the interface and removes nothing.
func (a *Agent) Delete(ctx context.Context, backupID string) error {
	return nil
}
