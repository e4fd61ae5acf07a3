package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Manager provides basic file management relative to a base path.
type Manager struct {
	basePath string
}

// NewManager creates a file manager rooted at basePath.
func NewManager(basePath string) *Manager {
	return &Manager{basePath: basePath}
}

// FileExists checks if a file exists at the given path.
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(m.resolvePath(path))
	return err == nil
}

// CreateDirectory creates a directory with all parent directories.
func (m *Manager) CreateDirectory(path string) error {
	return os.MkdirAll(m.resolvePath(path), 0755)
}

// CopyFile copies a file from source to destination.
func (m *Manager) CopyFile(src, dst string) error {
	srcPath := m.resolvePath(src)
	dstPath := m.resolvePath(dst)

	slog.Debug("copying file",
		slog.String("src", srcPath),
		slog.String("dst", dstPath))

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	srcFile, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("copy file content: %w", err)
	}
	return dstFile.Sync()
}

// MoveFile moves a file, renaming when possible and falling back to
// copy-and-delete across filesystems.
func (m *Manager) MoveFile(src, dst string) error {
	srcPath := m.resolvePath(src)
	dstPath := m.resolvePath(dst)

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	if err := os.Rename(srcPath, dstPath); err == nil {
		return nil
	}
	if err := m.CopyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(srcPath)
}

// DeleteFile deletes a file.
func (m *Manager) DeleteFile(path string) error {
	return os.Remove(m.resolvePath(path))
}

// GetFileSize returns the size of a file in bytes.
func (m *Manager) GetFileSize(path string) (int64, error) {
	info, err := os.Stat(m.resolvePath(path))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// WriteFile writes data to a file, creating parent directories.
func (m *Manager) WriteFile(path string, data []byte) error {
	fullPath := m.resolvePath(path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(fullPath, data, 0644)
}

// ListFiles returns all file names in a directory, non-recursive.
func (m *Manager) ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(m.resolvePath(dir))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.basePath, path)
}
