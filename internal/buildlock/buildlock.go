// Package buildlock guarantees at most one build per playout at a time, both
// inside this process and across processes sharing the same lock directory.
package buildlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another build holds the playout's lock
var ErrLocked = errors.New("playout is locked by another build")

// IsLocked checks if the error is a lock contention error
func IsLocked(err error) bool {
	return errors.Is(err, ErrLocked)
}

// Manager hands out per-playout locks
type Manager struct {
	dir  string
	mu   sync.Mutex
	held map[uint]bool
}

// New creates a lock manager. An empty dir disables the cross-process file lock.
func New(dir string) (*Manager, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create lock directory: %w", err)
		}
	}
	return &Manager{dir: dir, held: make(map[uint]bool)}, nil
}

// Path returns the lock file of a playout
func (m *Manager) Path(playoutID uint) string {
	return filepath.Join(m.dir, fmt.Sprintf("playout-%d.lock", playoutID))
}

// TryLock acquires the playout's lock without waiting. The returned function
// releases it and must be called exactly once.
func (m *Manager) TryLock(playoutID uint) (func(), error) {
	m.mu.Lock()
	if m.held[playoutID] {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: playout %d", ErrLocked, playoutID)
	}
	m.held[playoutID] = true
	m.mu.Unlock()

	release := func() {
		m.mu.Lock()
		delete(m.held, playoutID)
		m.mu.Unlock()
	}

	if m.dir == "" {
		return release, nil
	}

	fl := flock.New(m.Path(playoutID))
	ok, err := fl.TryLock()
	if err != nil {
		release()
		return nil, fmt.Errorf("failed to lock %s: %w", fl.Path(), err)
	}
	if !ok {
		release()
		return nil, fmt.Errorf("%w: playout %d held by another process", ErrLocked, playoutID)
	}

	return func() {
		_ = fl.Unlock()
		release()
	}, nil
}
