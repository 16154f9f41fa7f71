package session

import (
	"fmt"
	"time"
)

// UnlimitedLabel is shown as the attempt ceiling when no maximum is
// configured.
const UnlimitedLabel = "∞"

// Monitor counts focus and visibility violations during an active
// session. The embedding layer feeds it the raw events; it escalates to
// lockout once a configured maximum is reached. max = 0 means
// unlimited: violations are counted and warned about but never lock
// the session.
type Monitor struct {
	max       int
	attached  bool
	count     int
	lines     []string
	onWarn    func(count int, limit string)
	onLockout func(now time.Time)
}

func NewMonitor(max int, onWarn func(count int, limit string), onLockout func(now time.Time)) *Monitor {
	return &Monitor{max: max, onWarn: onWarn, onLockout: onLockout}
}

// Resume rehydrates the running count and log from persisted state.
func (m *Monitor) Resume(count int, lines []string) {
	m.count = count
	m.lines = append([]string(nil), lines...)
}

// Attach starts counting. Idempotent.
func (m *Monitor) Attach() { m.attached = true }

// Detach stops counting. Idempotent; mandatory on completion so events
// after the test ends are never counted as violations.
func (m *Monitor) Detach() { m.attached = false }

func (m *Monitor) Attached() bool { return m.attached }

func (m *Monitor) Count() int { return m.count }

// Log returns the timestamped violation lines recorded so far.
func (m *Monitor) Log() []string { return append([]string(nil), m.lines...) }

// LimitLabel is the display form of the configured maximum.
func (m *Monitor) LimitLabel() string {
	if m.max <= 0 {
		return UnlimitedLabel
	}
	return fmt.Sprintf("%d", m.max)
}

// Violation records one focus or visibility loss. Events arriving while
// detached (before start, after finish, after lockout) are ignored.
// Reaching the configured maximum detaches the monitor and fires the
// lockout callback instead of a warning.
func (m *Monitor) Violation(now time.Time, reason string) {
	if !m.attached {
		return
	}
	m.count++
	m.lines = append(m.lines, fmt.Sprintf("%s %s (attempt %d of %s)",
		now.UTC().Format(time.RFC3339), reason, m.count, m.LimitLabel()))

	if m.max > 0 && m.count >= m.max {
		m.attached = false
		if m.onLockout != nil {
			m.onLockout(now)
		}
		return
	}
	if m.onWarn != nil {
		m.onWarn(m.count, m.LimitLabel())
	}
}
