package domain

import (
	"context"
	"errors"
	"io"
)

// BackupDomain is the component domain of the backup subsystem itself.
// The built-in local agent is addressed as "backup.local".
const BackupDomain = "backup"

// ErrBackupNotFound is returned by download paths when no backup matches
// the requested ID.
var ErrBackupNotFound = errors.New("backup not found")

// OpenStream opens the content of a backup for reading. Upload takes a
// factory rather than a reader so an agent can defer opening until it is
// ready to consume the stream.
type OpenStream func(ctx context.Context) (io.ReadCloser, error)

// Agent is a pluggable backup storage backend.
//
// Get signals absence by returning (nil, nil); errors are reserved for
// backend failures. Upload stores the record and drains the stream without
// validating content against the record's declared size.
type Agent interface {
	Domain() string
	UniqueID() string
	Name() string

	List(ctx context.Context) ([]Backup, error)
	Get(ctx context.Context, backupID string) (*Backup, error)
	Upload(ctx context.Context, open OpenStream, backup Backup) error
	Download(ctx context.Context, backupID string) (io.ReadCloser, error)
	Delete(ctx context.Context, backupID string) error
}

// Platform is implemented by components that contribute backup agents.
type Platform interface {
	Agents(ctx context.Context) ([]Agent, error)
}

// AgentID addresses one agent instance: the owning component's domain
// joined with the agent's instance-unique ID.
func AgentID(domain, uniqueID string) string {
	return domain + "." + uniqueID
}
