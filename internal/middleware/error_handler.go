package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"marketplace/pkg/logger"
	jsonres "marketplace/pkg/response"
)

// ErrorHandler renders every error that reaches echo in the common error
// envelope. Domain errors keep their kind-specific status.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status int
		body   jsonres.ErrorResponse
	)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		msg, ok := he.Message.(string)
		if !ok {
			msg = http.StatusText(he.Code)
		}
		body = jsonres.Error(http.StatusText(he.Code), msg, nil)
	} else {
		status, body = jsonres.FromError(err)
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, body)
	}
	if werr != nil {
		logger.Error("failed to write error response", "error", werr)
	}
}
