package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/reelhub/backend/internal/apperr"
	"github.com/sirupsen/logrus"
)

// toHTTPError converts a service or repository error into the HTTP error the
// API reports. Internal failures keep their cause out of the response body.
func toHTTPError(err error) *echo.HTTPError {
	code := apperr.StatusCode(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "Internal server error"
	}
	return echo.NewHTTPError(code, msg).SetInternal(err)
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid %s", param))
	}
	return uint(id), nil
}

// ErrorHandler renders every error as {"error": "..."} and logs server-side
// failures with their internal cause.
func ErrorHandler(log *logrus.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := apperr.StatusCode(err)
		msg := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = fmt.Sprint(he.Message)
			if he.Internal != nil {
				err = he.Internal
			}
		}

		if code >= http.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"method": c.Request().Method,
				"uri":    c.Request().RequestURI,
				"status": code,
			}).Error("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, echo.Map{"error": msg})
		}
		if err != nil {
			log.WithError(err).Error("failed to write error response")
		}
	}
}
