// Package session owns caches on behalf of adapters that serve more than one
// caller, such as the HTTP server.
//
// A Session holds at most one cache and serializes all operations on it. A
// Manager hands out sessions by ID.
package session

import (
	"errors"
	"sort"
	"sync"

	"github.com/rs/xid"

	"github.com/sarchlab/cachesim/hooking"
	"github.com/sarchlab/cachesim/mem/cache"
)

// ErrNotInitialized is returned when a session is used before a cache was
// created in it.
var ErrNotInitialized = errors.New("no active cache, create a cache first")

// ErrUnknownSession is returned when a Manager has no session with an ID.
var ErrUnknownSession = errors.New("unknown session")

// A Session holds one cache and the hooks that every cache created in the
// session receives.
type Session struct {
	mu    sync.Mutex
	id    string
	name  string
	cache *cache.Cache
	hooks []hooking.Hook
}

// New creates an empty session.
func New(id string, hooks ...hooking.Hook) *Session {
	return &Session{
		id:    id,
		name:  "Cache",
		hooks: hooks,
	}
}

// ID returns the ID of the session.
func (s *Session) ID() string {
	return s.id
}

// Create replaces the cache of the session with a new one. On error the
// previous cache is kept.
func (s *Session) Create(config cache.Config) (cache.Snapshot, error) {
	c, err := cache.MakeBuilder().
		WithName(s.name).
		WithConfig(config).
		Build()
	if err != nil {
		return cache.Snapshot{}, err
	}

	for _, h := range s.hooks {
		c.AcceptHook(h)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache = c

	return c.State(), nil
}

// Access performs an access on the cache of the session. If data is nil, the
// address is stored as the value.
func (s *Session) Access(
	address uint64,
	op cache.Operation,
	data *uint64,
) (cache.AccessResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache == nil {
		return cache.AccessResult{}, ErrNotInitialized
	}

	if data == nil {
		return s.cache.Access(address, op), nil
	}

	return s.cache.AccessWithData(address, op, *data), nil
}

// State returns a snapshot of the cache of the session.
func (s *Session) State() (cache.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache == nil {
		return cache.Snapshot{}, ErrNotInitialized
	}

	return s.cache.State(), nil
}

// Reset replaces the cache of the session with a fresh one that has the same
// configuration.
func (s *Session) Reset() (cache.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache == nil {
		return cache.Snapshot{}, ErrNotInitialized
	}

	s.cache = s.cache.Reset()

	return s.cache.State(), nil
}

// Inspect calls fn with the cache of the session while holding the session
// lock. fn must not keep the cache after it returns.
func (s *Session) Inspect(fn func(c *cache.Cache) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache == nil {
		return ErrNotInitialized
	}

	return fn(s.cache)
}

// A Manager keeps sessions by ID.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	hooks    []hooking.Hook
}

// NewManager creates a Manager. The hooks are registered on every cache
// created in any of its sessions.
func NewManager(hooks ...hooking.Hook) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		hooks:    hooks,
	}
}

// Open creates an empty session with a generated ID.
func (m *Manager) Open() *Session {
	s := New(xid.New().String(), m.hooks...)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.id] = s

	return s
}

// Create opens a session and creates a cache in it. No session is kept if
// the configuration is invalid.
func (m *Manager) Create(config cache.Config) (*Session, cache.Snapshot, error) {
	s := New(xid.New().String(), m.hooks...)

	snapshot, err := s.Create(config)
	if err != nil {
		return nil, cache.Snapshot{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.id] = s

	return s, snapshot, nil
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}

	return s, nil
}

// Close removes the session with the given ID.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrUnknownSession
	}

	delete(m.sessions, id)

	return nil
}

// IDs returns the IDs of all sessions, sorted.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}
