package pipeline

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// MemoryWriter implements Writer for testing without filesystem I/O.
type MemoryWriter struct {
	mu    sync.RWMutex
	Files map[string][]byte
	// Resets records every directory passed to Reset.
	Resets []string
}

// WriteFile stores a copy of data in memory.
func (m *MemoryWriter) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Files == nil {
		m.Files = make(map[string][]byte)
	}
	m.Files[path] = append([]byte(nil), data...)
	return nil
}

// Reset drops every stored file under dir.
func (m *MemoryWriter) Reset(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Resets = append(m.Resets, dir)
	prefix := filepath.Clean(dir) + string(filepath.Separator)
	for path := range m.Files {
		if strings.HasPrefix(filepath.Clean(path), prefix) {
			delete(m.Files, path)
		}
	}
	return nil
}

// GetFile retrieves a file's content.
func (m *MemoryWriter) GetFile(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.Files[path]
	return data, ok
}

// Paths returns the stored paths in lexical order.
func (m *MemoryWriter) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.Files))
	for path := range m.Files {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}

var (
	_ Writer   = (*MemoryWriter)(nil)
	_ Resetter = (*MemoryWriter)(nil)
)
