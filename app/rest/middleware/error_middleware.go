package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "planora/app/utils/errors"
	"planora/app/utils/logger"
)

// ErrorBody is the JSON shape of every error the server writes outside of an
// account operation result.
type ErrorBody struct {
	Success bool                   `json:"success"`
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details string                 `json:"details,omitempty"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// CustomHTTPErrorHandler renders AppError and echo.HTTPError values as
// ErrorBody and hides anything else behind a generic 500.
func CustomHTTPErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		requestID := c.Response().Header().Get(echo.HeaderXRequestID)

		var (
			status  int
			body    ErrorBody
			httpErr *echo.HTTPError
		)

		appErr, isAppErr := apperrors.AsAppError(err)
		switch {
		case isAppErr:
			status = appErr.StatusCode
			body = ErrorBody{
				Error:   appErr.Message,
				Code:    string(appErr.Code),
				Details: appErr.Details,
				Context: appErr.Context,
			}
			if status >= http.StatusInternalServerError {
				logger.LogError(log, err, "request failed", "request_id", requestID, "code", appErr.Code)
			}

		case errors.As(err, &httpErr):
			status = httpErr.Code
			msg := http.StatusText(status)
			if m, ok := httpErr.Message.(string); ok {
				msg = m
			}
			if status >= http.StatusInternalServerError {
				msg = "An unexpected error occurred"
			}
			body = ErrorBody{Error: msg, Code: "HTTP_ERROR"}

		default:
			status = http.StatusInternalServerError
			body = ErrorBody{Error: "An unexpected error occurred", Code: string(apperrors.ErrCodeInternalError)}
			logger.LogError(log, err, "unhandled error", "request_id", requestID)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.LogError(log, err, "failed to write error response", "request_id", requestID)
		}
	}
}
