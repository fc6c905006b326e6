package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/steward/internal/core"
	"github.com/agenthands/steward/internal/core/hierarchy"
	"github.com/agenthands/steward/internal/core/review"
	"github.com/agenthands/steward/internal/driver"
	"github.com/agenthands/steward/internal/transform"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Retry bool   `json:"retry"`
}

// classify maps a domain error to an HTTP status and whether repeating the
// same request may succeed.
func classify(err error) (int, bool) {
	var (
		validation *core.ValidationError
		cycle      *hierarchy.TreeCycleError
		queryErr   *driver.QueryError
		writeErr   *driver.WriteError
		transErr   *transform.TransformError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, false
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, false
	case errors.Is(err, review.ErrBusy), errors.Is(err, transform.ErrRunning):
		return http.StatusConflict, true
	case errors.Is(err, review.ErrInvalidState):
		return http.StatusConflict, false
	case errors.As(err, &cycle):
		return http.StatusUnprocessableEntity, false
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, true
	case errors.As(err, &queryErr), errors.As(err, &writeErr), errors.As(err, &transErr):
		return http.StatusBadGateway, true
	case errors.Is(err, core.ErrGraphDisabled), errors.Is(err, core.ErrAdvisorDisabled), errors.Is(err, core.ErrTransformMissing):
		return http.StatusServiceUnavailable, false
	default:
		return http.StatusInternalServerError, false
	}
}

func (s *Server) respondError(c *gin.Context, err error) {
	status, retry := classify(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.FullPath(), "status", status, "error", err)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), Retry: retry})
}
