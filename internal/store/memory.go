package store

import (
	"context"
	"sync"
)

// Memory is an in-process Store used by the terminal demo and whenever no
// DATABASE_URL is configured. Contents do not survive a restart.
type Memory struct {
	mu       sync.Mutex
	setup    *SetupRecord
	joined   bool
	waitlist []WaitlistEntry
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) LoadSetup(ctx context.Context) (*SetupRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setup == nil {
		return nil, ErrNotFound
	}
	rec := *m.setup
	return &rec, nil
}

func (m *Memory) SaveSetup(ctx context.Context, rec SetupRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setup = &rec
	return nil
}

func (m *Memory) WaitlistJoined(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.joined, nil
}

func (m *Memory) JoinWaitlist(ctx context.Context, entry WaitlistEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waitlist = append(m.waitlist, entry)
	m.joined = true
	return nil
}
