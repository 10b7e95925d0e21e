package middlewares

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// Logger logs the served requests.
func Logger(log logrus.FieldLogger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:        true,
		LogMethod:        true,
		LogURI:           true,
		LogLatency:       true,
		LogContentLength: true,
		LogError:         true,
		HandleError:      true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"bytes_in": v.ContentLength,
				"latency":  v.Latency.String(),
			})
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}

			entry.Infof("[%d] %s %s", v.Status, v.Method, v.URI)
			return nil
		},
	})
}
