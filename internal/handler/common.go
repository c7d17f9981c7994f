package handler // handler contains the HTTP layer over the parking services

import (
	"database/sql" // sql is imported for sentinel errors like sql.ErrNoRows
	"errors"       // errors provides Is for sentinel comparison
	"net/http"     // http provides status code constants
	"strconv"      // strconv parses string identifiers to numeric types

	"github.com/iliyamo/parking-lot/internal/service" // service implements the domain operations
	"github.com/labstack/echo/v4"                     // echo is the web framework used for handlers
)

// parseID extracts the :id route parameter as a uint64.
func parseID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// writeErr maps service errors onto HTTP responses.  Domain rule
// violations become 409, missing rows become 404 and anything else is
// reported as a generic 500 without leaking internals.
func writeErr(c echo.Context, err error) error {
	var derr *service.DomainError
	if errors.As(err, &derr) {
		return c.JSON(http.StatusConflict, map[string]string{"error": derr.Reason})
	}
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

// badRequest writes a 400 with the given message.
func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}
