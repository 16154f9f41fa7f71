package session

import (
	"fmt"
	"time"
)

// Timer is the wall-clock countdown for an active session. Nothing
// about it is persisted: remaining time is derived fresh on every tick
// from the session start, so a session resumed after a reload keeps
// counting down from the right place.
type Timer struct {
	startMS  int64
	limitMS  int64
	onExpire func()
	expired  bool
}

// NewTimer builds a countdown from a session start (unix ms) and a
// limit in minutes. onExpire fires exactly once, from the tick that
// first observes no time remaining.
func NewTimer(startMS int64, limitMin int, onExpire func()) *Timer {
	return &Timer{
		startMS:  startMS,
		limitMS:  int64(limitMin) * 60_000,
		onExpire: onExpire,
	}
}

// Remaining is the time left at now, clamped to zero.
func (t *Timer) Remaining(now time.Time) time.Duration {
	elapsed := now.UnixMilli() - t.startMS
	left := t.limitMS - elapsed
	if left < 0 {
		left = 0
	}
	return time.Duration(left) * time.Millisecond
}

// Tick drives the countdown. Callers invoke it about once per second
// while the session is in progress.
func (t *Timer) Tick(now time.Time) {
	if t.expired {
		return
	}
	if t.Remaining(now) > 0 {
		return
	}
	t.expired = true
	if t.onExpire != nil {
		t.onExpire()
	}
}

// FormatRemaining renders a duration as MM:SS, never negative.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
