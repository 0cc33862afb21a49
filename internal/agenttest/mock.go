package agenttest

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/semmidev/kustos/internal/domain"
)

var _ domain.Agent = (*MockAgent)(nil)

// MockAgent is a strictly-typed testify mock of the agent contract, for
// tests that assert call patterns or inject failures without writing a
// full fake. NewMockAgent installs defaults: Get finds a record in the
// provided slice, List returns the slice verbatim, Download fails with
// ErrBackupNotFound, Upload and Delete succeed inertly. Override a
// default by Unset()ing it first, then registering your own On(...).
type MockAgent struct {
	mock.Mock

	name string
}

func NewMockAgent(name string, backups []domain.Backup) *MockAgent {
	m := &MockAgent{name: name}

	for i := range backups {
		backup := backups[i]
		m.On("Get", mock.Anything, backup.ID).Return(&backup, nil).Maybe()
	}
	m.On("Get", mock.Anything, mock.Anything).Return(nil, nil).Maybe()
	m.On("List", mock.Anything).Return(backups, nil).Maybe()
	m.On("Download", mock.Anything, mock.Anything).Return(nil, domain.ErrBackupNotFound).Maybe()
	m.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("Delete", mock.Anything, mock.Anything).Return(nil).Maybe()

	return m
}

func (m *MockAgent) Domain() string   { return Domain }
func (m *MockAgent) UniqueID() string { return m.name }
func (m *MockAgent) Name() string     { return m.name }

func (m *MockAgent) List(ctx context.Context) ([]domain.Backup, error) {
	args := m.Called(ctx)

	var backups []domain.Backup
	if v := args.Get(0); v != nil {
		backups = v.([]domain.Backup)
	}
	return backups, args.Error(1)
}

func (m *MockAgent) Get(ctx context.Context, backupID string) (*domain.Backup, error) {
	args := m.Called(ctx, backupID)

	var backup *domain.Backup
	if v := args.Get(0); v != nil {
		backup = v.(*domain.Backup)
	}
	return backup, args.Error(1)
}

func (m *MockAgent) Upload(ctx context.Context, open domain.OpenStream, backup domain.Backup) error {
	args := m.Called(ctx, open, backup)
	return args.Error(0)
}

func (m *MockAgent) Download(ctx context.Context, backupID string) (io.ReadCloser, error) {
	args := m.Called(ctx, backupID)

	var stream io.ReadCloser
	if v := args.Get(0); v != nil {
		stream = v.(io.ReadCloser)
	}
	return stream, args.Error(1)
}

func (m *MockAgent) Delete(ctx context.Context, backupID string) error {
	args := m.Called(ctx, backupID)
	return args.Error(0)
}
