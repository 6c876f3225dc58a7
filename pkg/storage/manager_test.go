package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"igdm/pkg/table"
)

func sampleTable() *table.Table {
	t := table.New(2)
	t.Append(table.Row{Username: "@alice", Bio: "bio, with comma", LastPost: "post", GeneratedDM: "Hi Alice\nSee you"})
	t.Append(table.Row{Username: "@bob", Bio: "b", LastPost: "p", GeneratedDM: "[Error generating message: boom]", Failed: true})
	return t
}

func TestManager(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(tempDir, false)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if manager.GetExportedCount() != 0 {
		t.Error("Expected initial export count to be 0")
	}

	if manager.Exists("") {
		t.Error("Expected Exists to return false before any export")
	}

	path, err := manager.SaveTable(sampleTable(), "")
	if err != nil {
		t.Fatalf("Failed to save table: %v", err)
	}

	expectedPath := filepath.Join(tempDir, DefaultFileName)
	if path != expectedPath {
		t.Errorf("Expected path %s, got %s", expectedPath, path)
	}

	if _, err := os.Stat(expectedPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("Expected temporary file to be removed")
	}

	loaded, err := manager.LoadTable(DefaultFileName)
	if err != nil {
		t.Fatalf("Failed to load table: %v", err)
	}
	if loaded.Len() != 2 {
		t.Fatalf("Expected 2 rows, got %d", loaded.Len())
	}
	row, _ := loaded.Row(0)
	if row.GeneratedDM != "Hi Alice\nSee you" {
		t.Errorf("Unexpected message after reload: %q", row.GeneratedDM)
	}

	if !manager.Exists(DefaultFileName) {
		t.Error("Expected Exists to return true after export")
	}

	// Without overwrite the second export must fail
	_, err = manager.SaveTable(sampleTable(), DefaultFileName)
	if !errors.Is(err, ErrFileExists) {
		t.Errorf("Expected ErrFileExists, got %v", err)
	}

	// A new manager picks up files already on disk
	if err := os.WriteFile(filepath.Join(tempDir, "manual.csv"), []byte("Username,Bio,Last Post,Generated DM\n"), 0644); err != nil {
		t.Fatalf("Failed to create manual file: %v", err)
	}

	manager2, err := NewManager(tempDir, true)
	if err != nil {
		t.Fatalf("Failed to create second manager: %v", err)
	}

	if manager2.GetExportedCount() != 2 {
		t.Errorf("Expected export count to be 2 after scanning, got %d", manager2.GetExportedCount())
	}

	if _, err := manager2.SaveTable(sampleTable(), DefaultFileName); err != nil {
		t.Errorf("Expected overwrite to succeed, got %v", err)
	}
}

func TestSaveTableStripsDirectories(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(tempDir, true)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	path, err := manager.SaveTable(sampleTable(), "../escape.csv")
	if err != nil {
		t.Fatalf("Failed to save table: %v", err)
	}
	if filepath.Dir(path) != tempDir {
		t.Errorf("Expected export inside %s, got %s", tempDir, path)
	}
}
