package model

import (
	"time"
)

// A Session represents a database record.
type Session struct {
	Base `msgpack:",inline" storm:"inline"`

	ExpireAt  time.Time `msgpack:"expire_at"`
	UserID    int       `msgpack:"user_id"    storm:"index"`
	UserAgent string    `msgpack:"user_agent"`
	Token     string    `msgpack:"token"      storm:"unique"`
}

// Expired returns true if the session can no longer be used.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpireAt.After(now)
}
