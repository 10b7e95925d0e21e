package middlewares

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/todo/pkg/structs"
)

type binder struct {
	echo.DefaultBinder
	methodsWithBody map[string]bool
}

// NewBinder returns a wrapp of the default binder implementation with extra checks.
// Bound fields tagged with `sanitize:"trim"` are trimmed.
// An empty form binds nothing so the validation reports the missing fields.
func NewBinder() echo.Binder {
	return &binder{
		methodsWithBody: map[string]bool{
			http.MethodPost:  true,
			http.MethodPatch: true,
			http.MethodPut:   true,
		},
	}
}

// Bind implements the echo.Bind interface.
func (b *binder) Bind(i any, c echo.Context) (err error) {
	req := c.Request()
	if req.ContentLength == 0 && b.methodsWithBody[req.Method] && strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return echo.NewHTTPError(http.StatusBadRequest, "Request body can't be empty")
	}

	if err = b.DefaultBinder.Bind(i, c); err != nil {
		return err
	}

	structs.TrimSpaces(i)
	return nil
}
