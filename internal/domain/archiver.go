package domain

import "context"

type Archiver interface {
	Archive(ctx context.Context, sources []string, destPath string) error
	Extract(ctx context.Context, sourcePath string, destDir string) error
}
