package middleware

import (
	"net/http"
	"strings"

	"shopsphere/domain"
	"shopsphere/pkg/logger"
	jsonres "shopsphere/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler is the central echo error handler. Domain errors keep their
// status and code; anything else becomes an opaque 500 so internals never
// leak into responses.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	if appErr, ok := domain.AsAppError(err); ok {
		if writeErr := c.JSON(appErr.Status, jsonres.Error(appErr.Status, appErr.Code, appErr.Message, nil)); writeErr != nil {
			logger.Error("Failed to write error response", writeErr)
		}
		return
	}

	if httpErr, ok := err.(*echo.HTTPError); ok {
		message := http.StatusText(httpErr.Code)
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
		code := strings.ToUpper(strings.ReplaceAll(http.StatusText(httpErr.Code), " ", "_"))
		if writeErr := c.JSON(httpErr.Code, jsonres.Error(httpErr.Code, code, message, nil)); writeErr != nil {
			logger.Error("Failed to write error response", writeErr)
		}
		return
	}

	logger.Error("Unhandled error", err, "path", c.Path())
	if writeErr := c.JSON(http.StatusInternalServerError, jsonres.Error(
		http.StatusInternalServerError, "INTERNAL", "internal server error", nil,
	)); writeErr != nil {
		logger.Error("Failed to write error response", writeErr)
	}
}
