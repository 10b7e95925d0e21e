package session

import "time"

// This file is only for test purpose and is only loaded by test framework.

// SetClock overrides the clock used by the given manager.
func SetClock(m Manager, now func() time.Time) {
	m.(*manager).nowFunc = now
}
