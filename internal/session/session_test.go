package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Lifecycle(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	m := NewManager(WithClock(func() time.Time { return now }))

	assert.Nil(t, m.Get("u", "c"))

	s := m.Start("u", "c", "psy", "terapis", "ringkas", "makna hidup")
	require.NotNil(t, s)
	assert.True(t, s.On)
	assert.Equal(t, "psy", s.DefaultCollection)
	assert.Equal(t, "2025-03-10T19:00:00+07:00", s.StartedAt)

	m.BumpTurn("u", "c")
	m.BumpTurn("u", "c")
	m.SetTopic("u", "c", "logoterapi")

	got := m.Get("u", "c")
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Turns)
	assert.Equal(t, "logoterapi", got.Topic)

	ended := m.End("u", "c")
	require.NotNil(t, ended)
	assert.False(t, ended.On)
}

func TestManager_StartAppliesDefaults(t *testing.T) {
	m := NewManager()
	s := m.Start("u", "c", "", "", "", "")
	assert.Equal(t, "hangat", s.Style)
	assert.Equal(t, "ringkas", s.Mode)
}

func TestManager_SessionsAreScopedPerChannel(t *testing.T) {
	m := NewManager()
	m.Start("u", "c1", "", "hangat", "ringkas", "")

	assert.Nil(t, m.Get("u", "c2"))
	assert.Nil(t, m.End("u", "c2"))
	m.BumpTurn("u", "c2")
	assert.Nil(t, m.Get("u", "c2"))
}
