// Package handler exposes the HTTP handlers of the recipe API. Every
// response uses the same envelope; errors are rendered by ErrorHandler.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/05Ashutosh/food-recipe/internal/apperror"
	"github.com/05Ashutosh/food-recipe/internal/logging"
)

// envelope is the success body.
type envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// errorBody is the failure body.
type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respond(c echo.Context, status int, data any, msg string) error {
	if data == nil {
		data = echo.Map{}
	}
	return c.JSON(status, envelope{StatusCode: status, Data: data, Message: msg, Success: status < 400})
}

// ErrorHandler renders errors as {"success":false,"message":...}. Taxonomy
// errors map to their status; echo errors keep theirs; anything else is a
// 500 with a generic message and the cause logged.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, msg := http.StatusInternalServerError, "Internal server error"

	var he *echo.HTTPError
	if ae, ok := apperror.As(err); ok {
		status = ae.Status()
		if ae.Kind != apperror.KindInternal {
			msg = ae.Message
		}
		if status >= 500 {
			logging.Ctx(c.Request().Context()).Error().Err(err).Str("kind", ae.Kind.String()).Msg("request failed")
			if ae.Kind == apperror.KindUpstream {
				msg = ae.Message
			}
		}
	} else if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(he.Code)
		}
	} else {
		logging.Ctx(c.Request().Context()).Error().Err(err).Msg("unhandled error")
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, errorBody{Success: false, Message: msg})
}

// paramID parses a positive numeric path parameter.
func paramID(c echo.Context, name, label string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Validation("Invalid " + label + " ID")
	}
	return id, nil
}

// queryInt reads an integer query parameter, returning def when absent or
// malformed.
func queryInt(c echo.Context, name string, def int) int {
	if v, err := strconv.Atoi(c.QueryParam(name)); err == nil {
		return v
	}
	return def
}
