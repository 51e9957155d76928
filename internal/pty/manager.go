package pty

import (
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/peterje/shelll/internal/events"
)

// Manager is the session registry. One lock serializes map mutations;
// per-session locks are only taken after it is released.
type Manager struct {
	spawner Spawner
	emitter events.Emitter

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(emitter events.Emitter, spawner Spawner) *Manager {
	if emitter == nil {
		emitter = events.Discard
	}
	return &Manager{
		spawner:  spawner,
		emitter:  emitter,
		sessions: make(map[string]*Session),
	}
}

// Create spawns a shell, registers it and starts its reader pump.
// Nothing is registered if the spawn fails.
func (m *Manager) Create() (string, error) {
	ptmx, cmd, err := m.spawner.Spawn()
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	sess := newSession(id, cmd, ptmx)

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	go sess.pump(m.emitter)
	go sess.wait()

	log.Printf("pty: session %s started (pid %d)", id, sess.PID())
	return id, nil
}

func (m *Manager) getSession(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Get returns the session handle, or nil if id is not registered.
func (m *Manager) Get(id string) SessionHandle {
	sess := m.getSession(id)
	if sess == nil {
		return nil
	}
	return sess
}

// Write sends data verbatim to the session. Unknown ids and write failures
// are ignored; the UI may race a teardown.
func (m *Manager) Write(id string, data []byte) {
	sess := m.getSession(id)
	if sess == nil {
		return
	}
	if err := sess.write(data); err != nil {
		log.Printf("pty: write to session %s failed: %v", id, err)
	}
}

// Resize is best effort and never reports failure.
func (m *Manager) Resize(id string, rows, cols uint16) {
	sess := m.getSession(id)
	if sess == nil {
		return
	}
	if err := sess.resize(rows, cols); err != nil {
		log.Printf("pty: resize session %s to %dx%d failed: %v", id, rows, cols, err)
	}
}

// Close unregisters the session and terminates its shell and pump.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	sess.terminate()
	log.Printf("pty: session %s closed", id)
}

// List returns the ids of all registered sessions, sorted.
func (m *Manager) List() []string {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

func (m *Manager) CloseAll() {
	for _, id := range m.List() {
		m.Close(id)
	}
}

var _ SessionManager = (*Manager)(nil)
