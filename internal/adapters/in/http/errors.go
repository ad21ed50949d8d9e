package http

import (
	"errors"
	"net/http"

	"kitchen/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// retryAfterSeconds is advertised on 503 responses caused by transient store errors.
const retryAfterSeconds = "1"

// Error is the body of every non-2xx response.
type Error struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func errorResponse(c echo.Context, status int, message string) error {
	return c.JSON(status, Error{Code: status, Message: message})
}

// writeError maps application errors onto status codes. fallback is the message of
// unexpected failures; the cause itself is logged, never returned.
func (s *Server) writeError(c echo.Context, err error, fallback string) error {
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "invalid request",
			Details: validationErr.Messages,
		})
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, errs.ErrValueIsInvalid):
		return errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrObjectNotFound):
		return errorResponse(c, http.StatusNotFound, "not found")
	case errors.Is(err, errs.ErrStaleSession):
		return errorResponse(c, http.StatusGone, "session expired")
	case errors.Is(err, errs.ErrVersionIsInvalid):
		return errorResponse(c, http.StatusConflict, "changed concurrently, retry")
	case errs.IsTransient(err):
		s.logger.Warn().Err(err).Str("path", c.Path()).Msg("transient store error")
		c.Response().Header().Set("Retry-After", retryAfterSeconds)
		return errorResponse(c, http.StatusServiceUnavailable, "temporarily unavailable, retry")
	default:
		s.logger.Error().Err(err).Str("path", c.Path()).Msg(fallback)
		return errorResponse(c, http.StatusInternalServerError, fallback)
	}
}
