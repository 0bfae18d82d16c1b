// Package cache keeps a device-local copy of the application state so the
// client can keep working when the remote store is unreachable.
package cache

import (
	"context"
	"sync"

	"kindling/internal/domain"
)

// Cache persists whole AppData snapshots.
type Cache interface {
	// Load returns the last saved snapshot. ok is false when nothing has been saved yet.
	Load(ctx context.Context) (data domain.AppData, ok bool, err error)
	Save(ctx context.Context, data domain.AppData) error
}

// Memory is a process-local cache used in tests and when no cache file is configured.
type Memory struct {
	mu      sync.Mutex
	data    *domain.AppData
	saves   int
	failErr error
}

var _ Cache = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) (domain.AppData, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return domain.AppData{}, false, nil
	}
	return m.data.Clone(), true, nil
}

func (m *Memory) Save(ctx context.Context, data domain.AppData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	snapshot := data.Clone()
	m.data = &snapshot
	m.saves++
	return nil
}

// Saves reports how many snapshots have been written.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FailWith makes subsequent saves return err. Pass nil to clear.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}
