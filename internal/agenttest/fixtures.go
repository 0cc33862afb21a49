// Package agenttest provides fixtures, fakes and setup helpers for tests
// exercising the backup agent contract.
package agenttest

import (
	"time"

	"github.com/semmidev/kustos/internal/domain"
)

// Domain is the component domain fake platforms and agents register under.
const Domain = "test"

// Archive path fixtures matching the two backup records.
const (
	BackupPathAbc123 = "abc123.tar"
	BackupPathDef456 = "custom_def456.tar"
)

// BackupAbc123 returns a fresh copy of the first fixture record: a full
// backup taken by an instance that recognizes it as its own.
func BackupAbc123() domain.Backup {
	return domain.Backup{
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
		Size:      0,
		Protected: false,
		ExtraMetadata: map[string]any{
			"instance_id":             "our_uuid",
			"with_automatic_settings": true,
		},
	}
}

// BackupDef456 returns a fresh copy of the second fixture record: a
// backup owned by an unknown instance, without the application database.
func BackupDef456() domain.Backup {
	return domain.Backup{
		ID:               "def456",
		Name:             "Test 2",
		Date:             time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
		DatabaseIncluded: false,
		CoreIncluded:     true,
		CoreVersion:      "1.12.0",
		Folders:          []domain.Folder{domain.FolderMedia, domain.FolderShare},
		Addons:           []domain.AddonInfo{},
		Size:             1,
		Protected:        false,
		ExtraMetadata: map[string]any{
			"instance_id":             "unknown_uuid",
			"with_automatic_settings": true,
		},
	}
}
