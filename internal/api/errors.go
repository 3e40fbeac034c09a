package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Veraticus/coursemix/internal/common"
	"github.com/Veraticus/coursemix/internal/model"
	"github.com/Veraticus/coursemix/internal/progress"
	"github.com/labstack/echo/v4"
)

// newHTTPErrorHandler maps domain errors to status codes and hides internal failures.
func newHTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var (
			code    int
			message string
			httpErr *echo.HTTPError
		)

		switch {
		case errors.As(err, &httpErr):
			code = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		case errors.Is(err, progress.ErrMalformedRecord):
			// Stored data is corrupt; the request itself was fine.
			code = http.StatusInternalServerError
			message = http.StatusText(code)
			logger.Error("stored grade record is malformed",
				"path", ctx.Request().URL.Path,
				"error", err)
		case errors.Is(err, common.ErrNotFound):
			code = http.StatusNotFound
			message = err.Error()
		case errors.Is(err, model.ErrInvalid), errors.Is(err, common.ErrInvalidGrade),
			errors.Is(err, common.ErrGradeRequired):
			code = http.StatusBadRequest
			message = err.Error()
		default:
			code = http.StatusInternalServerError
			message = http.StatusText(code)
			logger.Error("request failed",
				"method", ctx.Request().Method,
				"path", ctx.Request().URL.Path,
				"error", err)
		}

		if ctx.Response().Committed {
			return
		}
		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, echo.Map{"error": message})
		}
		if err != nil {
			logger.Error("failed to write error response", "error", err)
		}
	}
}
