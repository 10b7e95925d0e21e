package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/todo/internal/database"
	"github.com/mdouchement/todo/internal/server/serializer"
	"github.com/mdouchement/todo/internal/server/service"
	"github.com/mdouchement/todo/internal/sferror"
	"github.com/pkg/errors"
)

// auth contains all registration handlers.
type auth struct {
	db database.Client
}

///// Register
////
//

// RegisterForm renders the registration form.
func (h *auth) RegisterForm(c echo.Context) error {
	return h.render(c, nil, nil)
}

// Register handler is used to register the user.
// The form is rendered again with the errors when the params are invalid.
func (h *auth) Register(c echo.Context) error {
	// Filter params
	var params service.RegisterParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	_, err := service.NewUser(h.db).Register(params)
	if err != nil {
		var verr *sferror.ValidationError
		if errors.As(err, &verr) {
			return h.render(c, map[string]string{"username": params.Username}, verr)
		}
		return err
	}

	return c.Redirect(http.StatusFound, LoginPath)
}

func (h *auth) render(c echo.Context, values map[string]string, verr *sferror.ValidationError) error {
	return c.Render(http.StatusOK, "register.html", serializer.Global(nil, csrf(c), map[string]any{
		"Form": serializer.Form(values, verr),
	}))
}
