package handlers

import (
	"errors"
	"net/http"

	"attendhq/internal/common"

	"github.com/labstack/echo/v4"
)

// respondError maps a domain error onto an HTTP status and the standard
// error envelope. Every handler funnels service and repository failures
// through here so the mapping stays in one place.
func respondError(c echo.Context, err error) error {
	var vErr *common.ValidationError
	if errors.As(err, &vErr) {
		return common.SendValidationError(c, vErr.Field, vErr.Message)
	}

	switch {
	case errors.Is(err, common.ErrDuplicateRecord):
		return c.JSON(http.StatusConflict, common.CreateErrorResponse(
			"DUPLICATE_RECORD",
			"Attendance has already been recorded for this date",
			nil,
		))
	case errors.Is(err, common.ErrNotFound):
		return common.SendNotFoundError(c, "Resource")
	case errors.Is(err, common.ErrSchemaMissing):
		return c.JSON(http.StatusInternalServerError, common.CreateErrorResponse(
			"SCHEMA_MISSING",
			"A required database object is missing; apply the latest schema",
			nil,
		))
	case errors.Is(err, common.ErrStoreUnavailable):
		return c.JSON(http.StatusServiceUnavailable, common.CreateErrorResponse(
			"STORE_UNAVAILABLE",
			"The data store is temporarily unavailable, retry shortly",
			nil,
		))
	}
	return common.SendServerError(c, "Internal server error")
}
