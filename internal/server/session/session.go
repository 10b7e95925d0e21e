package session

import (
	"net/http"
	"time"
)

const (
	// CookieName is the name of the cookie holding the session token.
	CookieName = "todo_session"

	issuer   = "todo"
	audience = "session"
	// claim holding the secure token of the session record.
	tokenClaim = "tk"
)

// Cookie returns the cookie carrying the given token.
func Cookie(token string, expireAt time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expireAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie returns a cookie that removes the session cookie from the browser.
func ExpiredCookie(secure bool) *http.Cookie {
	c := Cookie("", time.Unix(0, 0), secure)
	c.MaxAge = -1
	return c
}
