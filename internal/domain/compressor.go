package domain

// Compressor shrinks a finished archive and restores it on the way back.
// Both operations work file to file so large backups never sit in memory.
type Compressor interface {
	Compress(sourcePath, destPath string) error
	Decompress(sourcePath, destPath string) error
}
