package middlewares

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/todo/internal/server/session"
	"github.com/mdouchement/todo/internal/sferror"
)

const (
	// CurrentUserContextKey is the key to retrieve the current_user from echo.Context.
	CurrentUserContextKey = "current_user"
	// CurrentSessionContextKey is the key to retrieve the current_session from echo.Context.
	CurrentSessionContextKey = "current_session"
)

// Session returns a cookie based Session auth middleware.
// It stores current_user and current_session into echo.Context.
// Unauthenticated requests are redirected to the login page.
func Session(m session.Manager, loginPath string, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(session.CookieName)
			if err != nil || cookie.Value == "" {
				return redirectToLogin(c, loginPath)
			}

			// Find, validate and store current_session & current_user for handlers.
			current, user, err := m.Validate(cookie.Value)
			if err != nil {
				if sferror.StatusCode(err) == http.StatusUnauthorized {
					c.SetCookie(session.ExpiredCookie(secure))
					return redirectToLogin(c, loginPath)
				}
				return err
			}

			c.Set(CurrentSessionContextKey, current)
			c.Set(CurrentUserContextKey, user)
			return next(c)
		}
	}
}

func redirectToLogin(c echo.Context, loginPath string) error {
	params := url.Values{}
	params.Set("next", c.Request().URL.RequestURI())
	return c.Redirect(http.StatusFound, loginPath+"?"+params.Encode())
}
