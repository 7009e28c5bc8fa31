package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalDestination writes JSONL data to a file in a local directory.
type LocalDestination struct {
	dir  string
	file string
}

// NewLocalDestination creates a local destination writing to dir/file.
func NewLocalDestination(dir, file string) *LocalDestination {
	return &LocalDestination{dir: dir, file: file}
}

// Write writes data to a temp file in the directory and renames it into
// place, so readers never see a partial export.
func (d *LocalDestination) Write(ctx context.Context, data []byte) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(d.dir, d.file+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, filepath.Join(d.dir, d.file)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
