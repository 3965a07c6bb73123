package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Archive keeps copies of generated ledger exports on disk.
type Archive struct {
	baseDir string
}

// NewArchive ensures the archive directory exists and returns a handle.
func NewArchive(baseDir string) (*Archive, error) {
	if baseDir == "" {
		baseDir = "./exports"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	return &Archive{baseDir: baseDir}, nil
}

// Save writes the payload under the archive directory and returns the
// relative filename.
func (a *Archive) Save(filename string, data []byte) (string, error) {
	path := a.resolve(filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare archive directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write archive file: %w", err)
	}
	return filename, nil
}

// Open returns a read-only handle for an archived export.
func (a *Archive) Open(filename string) (*os.File, error) {
	file, err := os.Open(a.resolve(filename))
	if err != nil {
		return nil, fmt.Errorf("open archive file: %w", err)
	}
	return file, nil
}

// CleanupOlderThan removes archived exports past the retention window and
// returns the deleted names.
func (a *Archive) CleanupOlderThan(retention time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-retention)
	deleted := make([]string, 0)
	err := filepath.WalkDir(a.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		rel, err := filepath.Rel(a.baseDir, path)
		if err != nil {
			rel = path
		}
		deleted = append(deleted, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cleanup archive: %w", err)
	}
	return deleted, nil
}

func (a *Archive) resolve(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(a.baseDir, filename)
}
