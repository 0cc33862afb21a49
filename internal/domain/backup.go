package domain

import "time"

// Folder names an optional data subset that can be included in a backup.
type Folder string

const (
	FolderMedia  Folder = "media"
	FolderShare  Folder = "share"
	FolderSSL    Folder = "ssl"
	FolderAddons Folder = "addons/local"
)

type AddonInfo struct {
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Version string `json:"version"`
}

// Backup describes one backup held by an agent. Records are value objects:
// once constructed they are never mutated.
type Backup struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Date             time.Time      `json:"date"`
	DatabaseIncluded bool           `json:"database_included"`
	CoreIncluded     bool           `json:"core_included"`
	CoreVersion      string         `json:"core_version"`
	Folders          []Folder       `json:"folders"`
	Addons           []AddonInfo    `json:"addons"`
	Size             int64          `json:"size"`
	Protected        bool           `json:"protected"`
	ExtraMetadata    map[string]any `json:"extra_metadata"`
}
