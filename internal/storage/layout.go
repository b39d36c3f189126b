package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Permissions for created directories and files.
const (
	DirPerm  os.FileMode = 0o750
	FilePerm os.FileMode = 0o644
)

// ErrEmptyBase is returned when the layout has no base directory.
var ErrEmptyBase = errors.New("output directory is empty")

// threadFolderSeparator joins the thread id and title in a folder name.
const threadFolderSeparator = " - "

// ThreadFolderName returns the folder name of a thread.
func ThreadFolderName(id, title string) string {
	return id + threadFolderSeparator + title
}

// Layout maps threads to folders below a base directory.
type Layout struct {
	base string
}

// NewLayout creates a Layout rooted at base.
func NewLayout(base string) *Layout {
	return &Layout{base: base}
}

// Base returns the base directory.
func (l *Layout) Base() string {
	return l.base
}

// EnsureBase creates the base directory if needed.
func (l *Layout) EnsureBase() error {
	if l.base == "" {
		return ErrEmptyBase
	}
	return EnsureDir(l.base)
}

// ThreadFolder returns the folder path of a thread without creating it.
func (l *Layout) ThreadFolder(id, title string) string {
	return filepath.Join(l.base, ThreadFolderName(id, title))
}

// EnsureThreadFolder creates the folder of a thread, parents included,
// and returns its path. An existing folder is reused.
func (l *Layout) EnsureThreadFolder(id, title string) (string, error) {
	if l.base == "" {
		return "", ErrEmptyBase
	}
	folder := l.ThreadFolder(id, title)
	if err := EnsureDir(folder); err != nil {
		return "", err
	}
	return folder, nil
}

// EnsureDir creates dir and its parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// WriteFile writes data to folder/name, replacing any existing file.
// It returns the written path.
func WriteFile(folder, name string, data []byte) (string, error) {
	path := filepath.Join(folder, name)
	if err := os.WriteFile(path, data, FilePerm); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
