package report

import (
	"fmt"
	"os"
	"path/filepath"
)

// Writer stores a rendered document.
type Writer interface {
	// Write stores the document and returns the number of bytes written.
	Write(document string) (int, error)
}

// FileWriter writes the document to a file path.
// The file is replaced atomically: the document is written to a temporary
// file in the same directory and renamed over the target, so readers see
// either the previous report or the complete new one.
type FileWriter struct {
	path string
	perm os.FileMode
}

// NewFileWriter creates a FileWriter for path.
func NewFileWriter(path string) *FileWriter {
	return &FileWriter{path: path, perm: 0644}
}

// Path returns the target path.
func (w *FileWriter) Path() string {
	return w.path
}

// Write implements Writer. Missing parent directories are created.
func (w *FileWriter) Write(document string) (int, error) {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return 0, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	n, err := tmp.WriteString(document)
	if err != nil {
		_ = tmp.Close()
		return n, fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return n, fmt.Errorf("failed to sync report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("failed to close report: %w", err)
	}
	if err := os.Chmod(tmpName, w.perm); err != nil {
		return n, fmt.Errorf("failed to set report permissions: %w", err)
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		return n, fmt.Errorf("failed to move report into place: %w", err)
	}
	committed = true

	return n, nil
}
