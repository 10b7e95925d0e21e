package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/todo/internal/sferror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrorTemplate is the name of the template used to render errors.
const ErrorTemplate = "error.html"

// HTTPErrorHandler returns a handler that renders errors as HTML pages.
func HTTPErrorHandler(log logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		switch e := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if e.Internal != nil {
				log.WithError(e.Internal).Warn("echo error")
			}
			render(c, e.Code, fmt.Sprint(e.Message))
		case *sferror.SFError:
			status := sferror.StatusCode(e)
			if status < 500 {
				render(c, status, e.Error())
				return
			}

			internal(log, err, c)
		default:
			internal(log, err, c)
		}
	}
}

func internal(log logrus.FieldLogger, err error, c echo.Context) {
	id := uuid.Must(uuid.NewV4()).String()
	log.WithField("id", id).Errorf("%+v", err)

	render(c, http.StatusInternalServerError, fmt.Sprintf("Unexpected error (id: %s)", id))
}

func render(c echo.Context, status int, message string) {
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}

	data := echo.Map{
		"Status":  status,
		"Title":   http.StatusText(status),
		"Message": message,
	}

	if c.Echo().Renderer == nil {
		_ = c.String(status, message)
		return
	}
	_ = c.Render(status, ErrorTemplate, data)
}
