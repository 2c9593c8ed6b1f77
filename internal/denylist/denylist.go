// Package denylist records session tokens revoked before their expiry.
package denylist

import (
	"context"
	"sync"
	"time"
)

// Store keeps revoked token ids until the token would have expired anyway.
type Store interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Memory is a process-local Store.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *Memory) Revoke(_ context.Context, tokenID string, until time.Time) error {
	if !until.After(m.now()) {
		return nil
	}
	m.mu.Lock()
	m.entries[tokenID] = until
	m.mu.Unlock()
	return nil
}

func (m *Memory) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.RLock()
	until, ok := m.entries[tokenID]
	m.mu.RUnlock()
	return ok && m.now().Before(until), nil
}

// Prune forgets entries whose tokens have expired.
func (m *Memory) Prune() {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, until := range m.entries {
		if !now.Before(until) {
			delete(m.entries, id)
		}
	}
}

// Run prunes periodically until ctx is done.
func (m *Memory) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Prune()
		}
	}
}
