package pmc

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.pmc")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func TestStoreLoad(t *testing.T) {
	path := writeTestFile(t, testPMC)
	store := NewStore()

	doc, err := store.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Path() != path {
		t.Errorf("Path() = %q, want %q", doc.Path(), path)
	}
	if len(doc.Devices) != 4 {
		t.Errorf("len(Devices) = %d, want 4", len(doc.Devices))
	}
}

func TestStoreLoad_Errors(t *testing.T) {
	store := NewStore()

	_, err := store.Load(filepath.Join(t.TempDir(), "missing.pmc"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrFileNotFound", err)
	}

	path := writeTestFile(t, "<pmc><device>")
	_, err = store.Load(path)
	if !errors.Is(err, ErrParse) {
		t.Errorf("Load(malformed) error = %v, want ErrParse", err)
	}
}

func TestStoreSave_WithBackup(t *testing.T) {
	path := writeTestFile(t, testPMC)
	store := NewStore()

	doc, err := store.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	d := mustDevice(t, doc, "psu0_vin")
	if _, err := d.SetValue("SDR_UPPER_CRITICAL", "0x6e"); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}

	if err := store.Save(doc, true); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	backup, err := os.ReadFile(path + DefaultBackupSuffix)
	if err != nil {
		t.Fatalf("reading backup: %v", err)
	}
	if string(backup) != testPMC {
		t.Error("backup content differs from original file")
	}

	saved, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved file: %v", err)
	}
	if !strings.HasPrefix(string(saved), `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Errorf("saved file missing declaration: %.60q", saved)
	}
	if !strings.Contains(string(saved), "<value>0x6e</value>") {
		t.Error("saved file missing updated value")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat saved file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
	}

	reloaded, err := store.Load(path)
	if err != nil {
		t.Fatalf("reloading saved file: %v", err)
	}
	if v, _ := mustDevice(t, reloaded, "psu0_vin").Value("SDR_UPPER_CRITICAL"); v != "0x6e" {
		t.Errorf("reloaded SDR_UPPER_CRITICAL = %q, want 0x6e", v)
	}
}

func TestStoreSave_NoBackup(t *testing.T) {
	path := writeTestFile(t, testPMC)
	store := NewStore()
	store.SetBackupSuffix(".orig")

	doc, err := store.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := store.Save(doc, false); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(store.BackupPath(path)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("backup exists after Save(backup=false): %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the saved file", len(entries))
	}
}

func TestStoreSave_Errors(t *testing.T) {
	store := NewStore()

	doc := mustParse(t, testPMC)
	if err := store.Save(doc, false); !errors.Is(err, ErrPersist) {
		t.Errorf("Save(document without path) error = %v, want ErrPersist", err)
	}

	path := writeTestFile(t, testPMC)
	loaded, err := store.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := os.RemoveAll(filepath.Dir(path)); err != nil {
		t.Fatalf("removing dir: %v", err)
	}

	for _, backup := range []bool{true, false} {
		if err := store.Save(loaded, backup); !errors.Is(err, ErrPersist) {
			t.Errorf("Save(backup=%v) into removed dir error = %v, want ErrPersist", backup, err)
		}
	}
}
