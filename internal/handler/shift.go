package handler // handler contains shift ledger endpoints

import (
	"net/http" // http provides status code constants

	"github.com/iliyamo/parking-lot/internal/service" // service implements the shift ledger
	"github.com/labstack/echo/v4"                     // echo is the web framework used for handlers
)

// ShiftHandler exposes the shift ledger over HTTP.
type ShiftHandler struct {
	Shifts *service.ShiftService // Shifts opens, closes and lists work sessions
}

// NewShiftHandler constructs a ShiftHandler and panics on a nil service.
func NewShiftHandler(shifts *service.ShiftService) *ShiftHandler {
	if shifts == nil {
		panic("nil service passed to NewShiftHandler")
	}
	return &ShiftHandler{Shifts: shifts}
}

// Open handles POST /v1/shifts and starts a work session for an
// operator.  An operator may only hold one open shift.
func (h *ShiftHandler) Open(c echo.Context) error {
	var body struct {
		OperatorID uint64  `json:"operator_id"` // OperatorID identifies the operator
		Notes      *string `json:"notes"`       // Notes is optional free text
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	sh, err := h.Shifts.Open(c.Request().Context(), body.OperatorID, body.Notes)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, sh)
}

// Close handles POST /v1/shifts/:id/close.  Closing aggregates the
// finalized tickets the operator opened during the session.
func (h *ShiftHandler) Close(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	sh, err := h.Shifts.Close(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, sh)
}

// Toggle handles POST /v1/shifts/:id/toggle, force-closing an open
// shift or reopening a closed one.
func (h *ShiftHandler) Toggle(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	sh, err := h.Shifts.Toggle(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, sh)
}

// Get handles GET /v1/shifts/:id.
func (h *ShiftHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	sh, err := h.Shifts.Get(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, sh)
}

// List handles GET /v1/shifts.
func (h *ShiftHandler) List(c echo.Context) error {
	items, err := h.Shifts.List(c.Request().Context())
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}
