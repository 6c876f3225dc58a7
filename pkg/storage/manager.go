package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"igdm/pkg/table"
)

// DefaultFileName is the export file name used when none is configured
const DefaultFileName = "generated_dms.csv"

// ErrFileExists is returned when an export would replace an existing file
var ErrFileExists = errors.New("export file already exists")

// Manager writes exports into one output directory
type Manager struct {
	outputDir string
	overwrite bool
	exported  map[string]bool
	mu        sync.RWMutex
}

// NewManager creates a new storage manager
func NewManager(outputDir string, overwrite bool) (*Manager, error) {
	// Create output directory if it doesn't exist
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manager := &Manager{
		outputDir: outputDir,
		overwrite: overwrite,
		exported:  make(map[string]bool),
	}

	if err := manager.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}

	return manager, nil
}

// scanExistingFiles records the CSV files already in the output directory
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			m.exported[entry.Name()] = true
		}
	}

	return nil
}

// Exists checks if an export with the given file name is present
func (m *Manager) Exists(name string) bool {
	name = fileName(name)

	m.mu.RLock()
	known := m.exported[name]
	m.mu.RUnlock()
	if known {
		return true
	}

	if _, err := os.Stat(filepath.Join(m.outputDir, name)); err == nil {
		m.mu.Lock()
		m.exported[name] = true
		m.mu.Unlock()
		return true
	}
	return false
}

// SaveTable writes t as CSV and returns the path written
func (m *Manager) SaveTable(t *table.Table, name string) (string, error) {
	name = fileName(name)
	if !m.overwrite && m.Exists(name) {
		return "", fmt.Errorf("%w: %s", ErrFileExists, name)
	}

	filename := filepath.Join(m.outputDir, name)

	// Create temporary file first
	tempFile := filename + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	err = t.WriteCSV(out)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to write CSV: %w", err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to close file: %w", closeErr)
	}

	// Atomic rename
	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.exported[name] = true
	m.mu.Unlock()

	return filename, nil
}

// LoadTable reads a previously exported table
func (m *Manager) LoadTable(name string) (*table.Table, error) {
	f, err := os.Open(filepath.Join(m.outputDir, fileName(name)))
	if err != nil {
		return nil, fmt.Errorf("failed to open export: %w", err)
	}
	defer f.Close()

	return table.ReadCSV(f)
}

// GetExportedCount returns the number of CSV files known in the directory
func (m *Manager) GetExportedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.exported)
}

func fileName(name string) string {
	if name == "" {
		return DefaultFileName
	}
	return filepath.Base(name)
}
