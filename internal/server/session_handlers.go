package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/todo/internal/database"
	"github.com/mdouchement/todo/internal/server/serializer"
	"github.com/mdouchement/todo/internal/server/service"
	"github.com/mdouchement/todo/internal/server/session"
	"github.com/mdouchement/todo/internal/sferror"
	"github.com/pkg/errors"
)

// sess contains all session handlers.
type sess struct {
	db           database.Client
	m            session.Manager
	secure       bool
	registration bool
}

///// Login
////
//

// LoginForm renders the login form.
func (h *sess) LoginForm(c echo.Context) error {
	return h.render(c, map[string]string{"next": c.QueryParam("next")}, nil)
}

// Login authenticates the user and opens a session stored in a cookie.
func (h *sess) Login(c echo.Context) error {
	// Filter params
	var params service.LoginParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	user, err := service.NewUser(h.db).Login(params)
	if err != nil {
		var verr *sferror.ValidationError
		if errors.As(err, &verr) {
			return h.render(c, map[string]string{
				"username": params.Username,
				"next":     params.Next,
			}, verr)
		}
		return err
	}

	current, err := h.m.Generate(user, c.Request().UserAgent())
	if err != nil {
		return err
	}

	token, err := h.m.Token(current)
	if err != nil {
		return err
	}

	c.SetCookie(session.Cookie(token, current.ExpireAt, h.secure))
	return c.Redirect(http.StatusFound, safeNext(params.Next))
}

///// Logout
////
//

// Logout revokes the current session.
func (h *sess) Logout(c echo.Context) error {
	if err := h.m.Revoke(currentSession(c)); err != nil {
		return err
	}

	c.SetCookie(session.ExpiredCookie(h.secure))
	return c.Redirect(http.StatusFound, LoginPath)
}

func (h *sess) render(c echo.Context, values map[string]string, verr *sferror.ValidationError) error {
	return c.Render(http.StatusOK, "login.html", serializer.Global(nil, csrf(c), map[string]any{
		"Form":         serializer.Form(values, verr),
		"Registration": h.registration,
	}))
}
