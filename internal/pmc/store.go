package pmc

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultBackupSuffix is appended to the file path to form the backup path.
const DefaultBackupSuffix = ".backup"

// defaultFileMode is used when the original file mode cannot be read.
const defaultFileMode = 0o644

// Logger defines the logging interface used by the Store.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Store loads PMC documents from disk and writes them back.
type Store struct {
	backupSuffix string
	logger       Logger
}

// NewStore creates a store using DefaultBackupSuffix.
func NewStore() *Store {
	return &Store{
		backupSuffix: DefaultBackupSuffix,
		logger:       noopLogger{},
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// SetBackupSuffix changes the suffix used for backup files.
func (s *Store) SetBackupSuffix(suffix string) {
	if suffix != "" {
		s.backupSuffix = suffix
	}
}

// BackupPath returns the backup path used for path.
func (s *Store) BackupPath(path string) string {
	return path + s.backupSuffix
}

// Load reads and parses the PMC file at path.
//
// Returns an error wrapping ErrFileNotFound if the file does not exist, or
// ErrParse if it is not a well-formed document.
func (s *Store) Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	doc, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	doc.path = path

	s.logger.Debug("pmc file loaded", "path", path, "devices", len(doc.Devices))
	if dups := doc.DuplicateNames(); len(dups) > 0 {
		s.logger.Warn("duplicate device names, lookups use the first match",
			"path", path, "names", dups)
	}
	return doc, nil
}

// Save writes doc back to the path it was loaded from.
//
// With backup set, the existing file is first renamed to BackupPath. The
// document is then written to a temporary file in the same directory and
// renamed over the original, so the target path never holds a partial
// write. On failure an error wrapping ErrPersist is returned and any backup
// already created is left in place.
func (s *Store) Save(doc *Document, backup bool) error {
	path := doc.Path()
	if path == "" {
		return fmt.Errorf("%w: document has no file path", ErrPersist)
	}

	var buf bytes.Buffer
	if err := doc.Encode(&buf); err != nil {
		return fmt.Errorf("%w: encoding document: %w", ErrPersist, err)
	}

	mode := fs.FileMode(defaultFileMode)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	if backup {
		backupPath := s.BackupPath(path)
		if err := os.Rename(path, backupPath); err != nil {
			return fmt.Errorf("%w: creating backup: %w", ErrPersist, err)
		}
		s.logger.Info("backup created", "path", backupPath)
	}

	if err := writeFileAtomic(path, buf.Bytes(), mode); err != nil {
		s.logger.Error("saving pmc file failed", "path", path, "error", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	s.logger.Info("pmc file saved", "path", path)
	return nil
}

// writeFileAtomic writes data to a temporary sibling of path and renames it
// into place.
func writeFileAtomic(path string, data []byte, mode fs.FileMode) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = os.Remove(tmpPath) //nolint:errcheck // best effort cleanup on error path
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec // already failing
		cleanup()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck,gosec // already failing
		cleanup()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		cleanup()
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
