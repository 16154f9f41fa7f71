package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_WarnsBelowThreshold(t *testing.T) {
	var warns []int
	m := NewMonitor(3, func(n int, limit string) {
		warns = append(warns, n)
		assert.Equal(t, "3", limit)
	}, nil)
	m.Attach()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	m.Violation(now, "window lost focus")
	m.Violation(now.Add(time.Minute), "page visibility hidden")

	assert.Equal(t, []int{1, 2}, warns)
	assert.Equal(t, 2, m.Count())
	lines := m.Log()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "window lost focus (attempt 1 of 3)")
	assert.Contains(t, lines[1], "page visibility hidden (attempt 2 of 3)")
}

func TestMonitor_LockoutAtThreshold(t *testing.T) {
	var locked int
	m := NewMonitor(2, nil, func(time.Time) { locked++ })
	m.Attach()

	now := time.Now()
	m.Violation(now, "window lost focus")
	m.Violation(now, "window lost focus")
	assert.Equal(t, 1, locked)
	assert.False(t, m.Attached())

	// events after lockout are not counted
	m.Violation(now, "window lost focus")
	assert.Equal(t, 2, m.Count())
	assert.Equal(t, 1, locked)
}

func TestMonitor_DetachedIgnoresEvents(t *testing.T) {
	m := NewMonitor(0, nil, nil)
	m.Violation(time.Now(), "window lost focus")
	assert.Zero(t, m.Count())

	m.Attach()
	m.Violation(time.Now(), "window lost focus")
	m.Detach()
	m.Detach() // idempotent
	m.Violation(time.Now(), "window lost focus")
	assert.Equal(t, 1, m.Count())
}

func TestMonitor_UnlimitedNeverLocks(t *testing.T) {
	locked := false
	m := NewMonitor(0, nil, func(time.Time) { locked = true })
	m.Attach()
	for i := 0; i < 50; i++ {
		m.Violation(time.Now(), "window lost focus")
	}
	assert.False(t, locked)
	assert.Equal(t, 50, m.Count())
	assert.Equal(t, UnlimitedLabel, m.LimitLabel())
	assert.Contains(t, m.Log()[0], "attempt 1 of "+UnlimitedLabel)
}

func TestMonitor_Resume(t *testing.T) {
	m := NewMonitor(3, nil, nil)
	m.Resume(2, []string{"line1", "line2"})
	m.Attach()
	locked := false
	m.onLockout = func(time.Time) { locked = true }
	m.Violation(time.Now(), "window lost focus")
	assert.True(t, locked)
	assert.Equal(t, 3, m.Count())
	assert.Len(t, m.Log(), 3)
}
