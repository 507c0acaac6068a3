// Package memory implements the challenge store in memory.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ledgerworks/blockchain/foundation/blockchain/auth"
	"github.com/ledgerworks/blockchain/foundation/blockchain/database"
)

type session struct {
	token   string
	expires time.Time
}

// Memory keeps the challenges in a map. Expired challenges are removed when
// they are taken or when a new challenge is stored.
type Memory struct {
	mu       sync.Mutex
	sessions map[database.Address]session
	now      func() time.Time
}

// New constructs a memory store using the system clock.
func New() *Memory {
	return NewWithClock(time.Now)
}

// NewWithClock constructs a memory store using the specified clock.
func NewWithClock(now func() time.Time) *Memory {
	return &Memory{
		sessions: make(map[database.Address]session),
		now:      now,
	}
}

// Put binds the token to the sender.
func (m *Memory) Put(ctx context.Context, sender database.Address, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for addr, s := range m.sessions {
		if now.After(s.expires) {
			delete(m.sessions, addr)
		}
	}

	m.sessions[sender] = session{token: token, expires: now.Add(ttl)}

	return nil
}

// Take removes and returns the token bound to the sender.
func (m *Memory) Take(ctx context.Context, sender database.Address) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, exists := m.sessions[sender]
	if !exists {
		return "", auth.ErrMissingChallenge
	}
	delete(m.sessions, sender)

	if m.now().After(s.expires) {
		return "", auth.ErrExpiredChallenge
	}

	return s.token, nil
}

// Len returns the number of challenges being held.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}
