// Package session implements the shared-password gate and per-session
// workflow state. One password, no per-user accounts, no token expiry.
package session

import (
	"crypto/subtle"
	"sync"

	"github.com/google/uuid"

	"reception_agent/internal/extract"
)

// Pending holds an analyzed-but-unsaved call so a failed save can be
// retried without re-running transcription or extraction.
type Pending struct {
	Filename   string
	Transcript string
	Analysis   extract.Result
}

type state struct {
	pending *Pending
}

// Manager tracks authenticated sessions in memory, keyed by uuid token.
type Manager struct {
	mu       sync.Mutex
	password string
	sessions map[string]*state
}

func NewManager(password string) *Manager {
	return &Manager{password: password, sessions: make(map[string]*state)}
}

// Login compares the supplied password in constant time and, on success,
// returns a fresh session token.
func (m *Manager) Login(password string) (string, bool) {
	if subtle.ConstantTimeCompare([]byte(password), []byte(m.password)) != 1 {
		return "", false
	}
	token := uuid.NewString()
	m.mu.Lock()
	m.sessions[token] = &state{}
	m.mu.Unlock()
	return token, true
}

func (m *Manager) Logout(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

func (m *Manager) Authenticated(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[token]
	return ok
}

func (m *Manager) SetPending(token string, p Pending) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.sessions[token]; ok {
		st.pending = &p
	}
}

func (m *Manager) Pending(token string) (*Pending, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.sessions[token]
	if !ok || st.pending == nil {
		return nil, false
	}
	p := *st.pending
	return &p, true
}

func (m *Manager) ClearPending(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.sessions[token]; ok {
		st.pending = nil
	}
}
