// Package session tracks focused conversation sessions per user and
// channel: a session pins a collection, style, and mode until ended.
package session

import (
	"sync"
	"time"

	"github.com/pustakabot/pustaka/internal/memory"
)

// State is one session's settings and counters.
type State struct {
	On                bool
	StartedAt         string
	Topic             string
	DefaultCollection string
	Style             string
	Mode              string
	Turns             int
}

type key struct {
	userID    string
	channelID string
}

// Manager holds active sessions keyed by (user, channel).
type Manager struct {
	mu       sync.Mutex
	sessions map[key]*State
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates an empty Manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[key]*State),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start opens (or replaces) the session for the user and channel. Blank
// style and mode fall back to the session defaults.
func (m *Manager) Start(userID, channelID, defaultCollection, style, mode, topic string) *State {
	if style == "" {
		style = "hangat"
	}
	if mode == "" {
		mode = "ringkas"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &State{
		On:                true,
		StartedAt:         m.now().In(memory.Jakarta).Format(time.RFC3339),
		Topic:             topic,
		DefaultCollection: defaultCollection,
		Style:             style,
		Mode:              mode,
	}
	m.sessions[key{userID, channelID}] = s
	return s
}

// End marks the session off and returns it, or nil when none exists.
func (m *Manager) End(userID, channelID string) *State {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[key{userID, channelID}]
	if s != nil {
		s.On = false
	}
	return s
}

// Get returns the session for the user and channel, or nil.
func (m *Manager) Get(userID, channelID string) *State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[key{userID, channelID}]
}

// SetTopic updates the session topic when a session exists.
func (m *Manager) SetTopic(userID, channelID, topic string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.sessions[key{userID, channelID}]; s != nil {
		s.Topic = topic
	}
}

// BumpTurn increments the session turn counter when a session exists.
func (m *Manager) BumpTurn(userID, channelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.sessions[key{userID, channelID}]; s != nil {
		s.Turns++
	}
}
