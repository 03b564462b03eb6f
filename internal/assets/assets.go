// Package assets locates and caches files the viewer loads at runtime,
// chiefly the per-element sphere textures.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/golang/groupcache/lru"
	"go.uber.org/zap"

	"github.com/Faultbox/smolview/internal/logger"
)

// ErrNotFound is returned when no source holds the requested file.
var ErrNotFound = errors.New("asset not found")

// DefaultCacheEntries bounds how many files a Manager keeps in memory.
const DefaultCacheEntries = 128

type source struct {
	name string
	fsys fs.FS
}

// Manager reads files from a stack of sources. Later sources shadow
// earlier ones.
type Manager struct {
	mu      sync.Mutex
	sources []source
	cache   *lru.Cache
	hits    int
	misses  int
}

func NewManager() *Manager {
	return NewManagerSize(DefaultCacheEntries)
}

// NewManagerSize keeps at most entries files cached, evicting the least
// recently used.
func NewManagerSize(entries int) *Manager {
	return &Manager{cache: lru.New(entries)}
}

// AddDir pushes a directory on disk. Textures are optional, so a missing
// directory is logged and skipped.
func (m *Manager) AddDir(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Debug("asset directory missing", zap.String("path", path))
		return nil
	case err != nil:
		return fmt.Errorf("opening asset directory %s: %w", path, err)
	case !info.IsDir():
		return fmt.Errorf("asset path %s is not a directory", path)
	}
	m.AddFS(path, os.DirFS(path))
	return nil
}

// AddFS pushes fsys under a display name used in logs.
func (m *Manager) AddFS(name string, fsys fs.FS) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = append(m.sources, source{name: name, fsys: fsys})
}

// Load returns the contents of name from the topmost source holding it.
func (m *Manager) Load(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.cache.Get(name); ok {
		m.hits++
		return v.([]byte), nil
	}
	m.misses++

	for i := len(m.sources) - 1; i >= 0; i-- {
		src := m.sources[i]
		data, err := fs.ReadFile(src.fsys, name)
		if err != nil {
			continue
		}
		m.cache.Add(name, data)
		logger.Debug("asset loaded",
			zap.String("name", name),
			zap.String("source", src.name),
			zap.Int("bytes", len(data)))
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Stats returns the cache hit and miss counts.
func (m *Manager) Stats() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}

// Close drops all sources and cached data.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = nil
	m.cache.Clear()
	m.hits, m.misses = 0, 0
}
